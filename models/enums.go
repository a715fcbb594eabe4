/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-12 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 21:40:12
 * @FilePath: \go-vibemon\models\enums.go
 * @Description: 枚举类型定义
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package models

import "strings"

// AlertLevel 告警级别，按严重程度全序排列
type AlertLevel int

const (
	AlertLevelOK        AlertLevel = iota // 正常
	AlertLevelWarning                     // 警告
	AlertLevelCritical                    // 严重
	AlertLevelEmergency                   // 紧急
)

// alertLevelNames 协议中使用的级别名称
var alertLevelNames = [...]string{
	AlertLevelOK:        "OK",
	AlertLevelWarning:   "WARNING",
	AlertLevelCritical:  "CRITICAL",
	AlertLevelEmergency: "EMERGENCY",
}

// String 实现Stringer接口
func (l AlertLevel) String() string {
	if !l.IsValid() {
		return "UNKNOWN"
	}
	return alertLevelNames[l]
}

// IsValid 检查告警级别是否有效
func (l AlertLevel) IsValid() bool {
	return l >= AlertLevelOK && l <= AlertLevelEmergency
}

// MoreSevereThan 判断是否比另一个级别更严重
func (l AlertLevel) MoreSevereThan(other AlertLevel) bool {
	return l > other
}

// ParseAlertLevel 解析设备上报的级别字符串（大小写不敏感）
func ParseAlertLevel(s string) (AlertLevel, bool) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for level, name := range alertLevelNames {
		if name == upper {
			return AlertLevel(level), true
		}
	}
	return AlertLevelOK, false
}

// SessionState 会话生命周期状态
type SessionState string

const (
	SessionStateConnecting   SessionState = "connecting"   // 连接中
	SessionStateOpen         SessionState = "open"         // 已连接
	SessionStateClosed       SessionState = "closed"       // 已关闭
	SessionStateReconnecting SessionState = "reconnecting" // 等待重连
)

// String 实现Stringer接口
func (s SessionState) String() string {
	return string(s)
}

// IsValid 检查会话状态是否有效
func (s SessionState) IsValid() bool {
	return SessionStateValidator.IsValid(s)
}

// IsConnected 是否处于可发送状态
func (s SessionState) IsConnected() bool {
	return s == SessionStateOpen
}

// MessageKind 入站消息类别（按 type 字段区分）
type MessageKind string

const (
	MessageKindData    MessageKind = "data"    // 采样数据
	MessageKindStatus  MessageKind = "status"  // 设备状态
	MessageKindEvent   MessageKind = "event"   // 设备事件
	MessageKindConfig  MessageKind = "config"  // 配置回显
	MessageKindUnknown MessageKind = "unknown" // 未识别类型
)

// String 实现Stringer接口
func (k MessageKind) String() string {
	return string(k)
}

// IsValid 检查消息类别是否有效
func (k MessageKind) IsValid() bool {
	return MessageKindValidator.IsValid(k)
}

// CommandType 出站命令类型
type CommandType string

const (
	CommandTypeGetStatus CommandType = "get_status" // 请求设备状态
	CommandTypeConfig    CommandType = "config"     // 保存阈值
	CommandTypeResetPeak CommandType = "reset_peak" // 清除峰值
)

// String 实现Stringer接口
func (t CommandType) String() string {
	return string(t)
}

// IsValid 检查命令类型是否有效
func (t CommandType) IsValid() bool {
	return CommandTypeValidator.IsValid(t)
}
