/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-12 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 22:05:41
 * @FilePath: \go-vibemon\models\errors.go
 * @Description: 监控会话错误定义 - 基于errorx.BaseError模式
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package models

import (
	"github.com/kamalyes/go-toolbox/pkg/errorx"
)

// ErrorType 错误类型定义，基于errorx.ErrorType
type ErrorType = errorx.ErrorType

// 振动监控错误码常量定义
// 使用 9xxxx 区间
const (
	// 传输错误 (90100-90199) - 由重连机制自动恢复
	ErrTypeTransportFault ErrorType = 90101 // 传输层故障（socket 错误或关闭）
	ErrTypeDialFailed     ErrorType = 90102 // 拨号失败
	ErrTypeWriteFailed    ErrorType = 90103 // 写入失败
	ErrTypeInboxFull      ErrorType = 90104 // 事件队列已满

	// 消息错误 (90200-90299) - 记录日志后丢弃
	ErrTypeParseError     ErrorType = 90201 // 无法解析的入站消息
	ErrTypeInvalidMessage ErrorType = 90202 // 字段缺失或非法

	// 配置错误 (90300-90399) - 发送前本地拒绝
	ErrTypeInvalidConfig ErrorType = 90301 // 阈值顺序非法

	// 命令错误 (90400-90499) - 同步返回给调用方
	ErrTypeNotConnected   ErrorType = 90401 // 会话未处于 Open 状态
	ErrTypeEncodeFailed   ErrorType = 90402 // 命令序列化失败
	ErrTypeSessionStopped ErrorType = 90403 // 会话已停止

	// 辅助通道错误 (90500-90699)
	ErrTypeLogDownloadFailed  ErrorType = 90501 // 日志下载失败
	ErrTypeRelayPublishFailed ErrorType = 90601 // 告警转发失败

	// 本地配置错误 (90700-90799)
	ErrTypeConfigValidationFailed ErrorType = 90701 // 配置校验失败
)

// init 初始化所有错误类型注册
func init() {
	errorx.RegisterError(ErrTypeTransportFault, "transport fault: %v")
	errorx.RegisterError(ErrTypeDialFailed, "dial %s failed: %v")
	errorx.RegisterError(ErrTypeWriteFailed, "write failed: %v")
	errorx.RegisterError(ErrTypeInboxFull, "inbox full: %d items")

	errorx.RegisterError(ErrTypeParseError, "malformed payload: %v")
	errorx.RegisterError(ErrTypeInvalidMessage, "invalid %s message: %s")

	errorx.RegisterError(ErrTypeInvalidConfig, "invalid thresholds: %s")

	errorx.RegisterError(ErrTypeNotConnected, "not connected")
	errorx.RegisterError(ErrTypeEncodeFailed, "encode %s command failed: %v")
	errorx.RegisterError(ErrTypeSessionStopped, "session stopped")

	errorx.RegisterError(ErrTypeLogDownloadFailed, "log download failed: %s")
	errorx.RegisterError(ErrTypeRelayPublishFailed, "relay publish failed: %v")

	errorx.RegisterError(ErrTypeConfigValidationFailed, "configuration validation failed: %s")
}

// 无参数的错误变量
// 包级变量先于 init 初始化，此时错误表尚未注册，直接携带类型构造
var (
	ErrNotConnected   = errorx.NewBaseError("not connected", ErrTypeNotConnected)
	ErrSessionStopped = errorx.NewBaseError("session stopped", ErrTypeSessionStopped)
)

// typeOf 取出错误链上的 errorx 类型
func typeOf(err error) (ErrorType, bool) {
	if err == nil {
		return 0, false
	}
	t := errorx.ClassifyError(err)
	return t, t != errorx.ErrTypeUnknownError
}

// IsErrorType 判断错误是否属于指定类型
func IsErrorType(err error, errType ErrorType) bool {
	t, ok := typeOf(err)
	return ok && t == errType
}

// IsNotConnectedError 判断是否为未连接错误
func IsNotConnectedError(err error) bool {
	return IsErrorType(err, ErrTypeNotConnected)
}

// IsInvalidConfigError 判断是否为阈值配置错误
func IsInvalidConfigError(err error) bool {
	return IsErrorType(err, ErrTypeInvalidConfig)
}

// IsParseError 判断是否为入站消息解析或校验错误
func IsParseError(err error) bool {
	t, ok := typeOf(err)
	return ok && (t == ErrTypeParseError || t == ErrTypeInvalidMessage)
}

// IsTransportFault 判断是否为传输层故障
func IsTransportFault(err error) bool {
	t, ok := typeOf(err)
	if !ok {
		return false
	}
	switch t {
	case ErrTypeTransportFault, ErrTypeDialFailed, ErrTypeWriteFailed:
		return true
	default:
		return false
	}
}
