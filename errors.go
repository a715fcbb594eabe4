/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-12 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 19:10:48
 * @FilePath: \go-vibemon\errors.go
 * @Description: 错误类型导出 - 定义位于 models，此处便于调用方只依赖根包
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package vibemon

import (
	"github.com/kamalyes/go-vibemon/models"
)

// ErrorType 错误类型定义，基于errorx.ErrorType
type ErrorType = models.ErrorType

// 错误码
const (
	ErrTypeTransportFault         = models.ErrTypeTransportFault
	ErrTypeDialFailed             = models.ErrTypeDialFailed
	ErrTypeWriteFailed            = models.ErrTypeWriteFailed
	ErrTypeInboxFull              = models.ErrTypeInboxFull
	ErrTypeParseError             = models.ErrTypeParseError
	ErrTypeInvalidMessage         = models.ErrTypeInvalidMessage
	ErrTypeInvalidConfig          = models.ErrTypeInvalidConfig
	ErrTypeNotConnected           = models.ErrTypeNotConnected
	ErrTypeEncodeFailed           = models.ErrTypeEncodeFailed
	ErrTypeSessionStopped         = models.ErrTypeSessionStopped
	ErrTypeLogDownloadFailed      = models.ErrTypeLogDownloadFailed
	ErrTypeRelayPublishFailed     = models.ErrTypeRelayPublishFailed
	ErrTypeConfigValidationFailed = models.ErrTypeConfigValidationFailed
)

// 无参数的错误变量
var (
	ErrNotConnected   = models.ErrNotConnected
	ErrSessionStopped = models.ErrSessionStopped
)

// IsErrorType 判断错误是否属于指定类型
func IsErrorType(err error, errType ErrorType) bool {
	return models.IsErrorType(err, errType)
}

// IsNotConnectedError 判断是否为未连接错误
func IsNotConnectedError(err error) bool {
	return models.IsNotConnectedError(err)
}

// IsInvalidConfigError 判断是否为阈值配置错误
func IsInvalidConfigError(err error) bool {
	return models.IsInvalidConfigError(err)
}

// IsParseError 判断是否为入站消息解析错误
func IsParseError(err error) bool {
	return models.IsParseError(err)
}

// IsTransportFault 判断是否为传输层故障
func IsTransportFault(err error) bool {
	return models.IsTransportFault(err)
}
