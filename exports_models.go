/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-12 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 19:12:27
 * @FilePath: \go-vibemon\exports_models.go
 * @Description: Models模块类型导出
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package vibemon

import (
	"github.com/kamalyes/go-vibemon/models"
	"github.com/kamalyes/go-vibemon/status"
)

// ==================== 基础类型 ====================
type (
	Sample          = models.Sample
	DeviceStatus    = models.DeviceStatus
	ThresholdConfig = models.ThresholdConfig
	Command         = models.Command
	Transition      = status.Transition
)

// ==================== 枚举类型 ====================
type (
	AlertLevel   = models.AlertLevel
	SessionState = models.SessionState
	MessageKind  = models.MessageKind
	CommandType  = models.CommandType
)

// ==================== 枚举常量 - AlertLevel ====================
const (
	AlertLevelOK        = models.AlertLevelOK
	AlertLevelWarning   = models.AlertLevelWarning
	AlertLevelCritical  = models.AlertLevelCritical
	AlertLevelEmergency = models.AlertLevelEmergency
)

// ==================== 枚举常量 - SessionState ====================
const (
	SessionStateConnecting   = models.SessionStateConnecting
	SessionStateOpen         = models.SessionStateOpen
	SessionStateClosed       = models.SessionStateClosed
	SessionStateReconnecting = models.SessionStateReconnecting
)

// ==================== 函数 ====================
var (
	DefaultThresholds = models.DefaultThresholds
	ParseAlertLevel   = models.ParseAlertLevel
	Evaluate          = status.Evaluate
)
