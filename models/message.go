/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-12 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 09:51:26
 * @FilePath: \go-vibemon\models\message.go
 * @Description: 入站消息（按类别的和类型）与出站命令
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package models

import "time"

// Message 入站消息，具体类型为下列 *XxxMessage 之一
type Message interface {
	Kind() MessageKind
}

// DataMessage 采样数据
type DataMessage struct {
	Sample Sample
}

// Kind 实现 Message
func (*DataMessage) Kind() MessageKind { return MessageKindData }

// StatusMessage 设备状态
type StatusMessage struct {
	Status DeviceStatus
}

// Kind 实现 Message
func (*StatusMessage) Kind() MessageKind { return MessageKindStatus }

// EventMessage 设备事件
type EventMessage struct {
	Level      AlertLevel // 解析后的级别
	RawLevel   string     // 原始级别字符串，未识别时保留
	Reason     string
	ReceivedAt time.Time
}

// Kind 实现 Message
func (*EventMessage) Kind() MessageKind { return MessageKindEvent }

// IsEmergency 是否为需要操作员确认的紧急事件
func (m *EventMessage) IsEmergency() bool {
	return m.Level == AlertLevelEmergency
}

// ReasonOrDefault 无原因时使用默认描述
func (m *EventMessage) ReasonOrDefault() string {
	if m.Reason == "" {
		return "Critical vibration detected"
	}
	return m.Reason
}

// ConfigMessage 设备回显的阈值配置
type ConfigMessage struct {
	Thresholds    ThresholdConfig
	HasThresholds bool
}

// Kind 实现 Message
func (*ConfigMessage) Kind() MessageKind { return MessageKindConfig }

// UnknownMessage 未识别的消息类型，保留原始内容以便排查
type UnknownMessage struct {
	Type string
	Raw  []byte
}

// Kind 实现 Message
func (*UnknownMessage) Kind() MessageKind { return MessageKindUnknown }

// Command 出站命令
type Command struct {
	Type       CommandType      `json:"type"`
	Thresholds *ThresholdConfig `json:"thresholds,omitempty"`
}

// NewGetStatusCommand 请求设备状态
func NewGetStatusCommand() Command {
	return Command{Type: CommandTypeGetStatus}
}

// NewConfigCommand 保存阈值
func NewConfigCommand(cfg ThresholdConfig) Command {
	return Command{Type: CommandTypeConfig, Thresholds: &cfg}
}

// NewResetPeakCommand 清除设备峰值
func NewResetPeakCommand() Command {
	return Command{Type: CommandTypeResetPeak}
}
