/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-12 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-12 00:00:00
 * @FilePath: \go-vibemon\models\validator.go
 * @Description: 枚举验证器集中管理
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package models

import (
	"github.com/kamalyes/go-toolbox/pkg/types"
)

// 全局枚举验证器实例
var (
	// SessionStateValidator 会话状态验证器
	SessionStateValidator = types.NewEnumValidator(
		SessionStateConnecting,
		SessionStateOpen,
		SessionStateClosed,
		SessionStateReconnecting,
	)

	// MessageKindValidator 消息类别验证器
	MessageKindValidator = types.NewEnumValidator(
		MessageKindData,
		MessageKindStatus,
		MessageKindEvent,
		MessageKindConfig,
		MessageKindUnknown,
	)

	// CommandTypeValidator 命令类型验证器
	CommandTypeValidator = types.NewEnumValidator(
		CommandTypeGetStatus,
		CommandTypeConfig,
		CommandTypeResetPeak,
	)
)
