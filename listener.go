/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-12 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 21:55:13
 * @FilePath: \go-vibemon\listener.go
 * @Description: 展示层订阅接口
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package vibemon

import (
	"time"

	"github.com/kamalyes/go-vibemon/models"
)

// EmergencyNotice 需要操作员确认的紧急事件
type EmergencyNotice struct {
	ID         uint64    `json:"id"`
	Reason     string    `json:"reason"`
	RawLevel   string    `json:"raw_level"`
	ReceivedAt time.Time `json:"received_at"`
}

// DeviceEvent 非紧急的设备事件
type DeviceEvent struct {
	Level      AlertLevel `json:"level"`
	RawLevel   string     `json:"raw_level"`
	Reason     string     `json:"reason"`
	ReceivedAt time.Time  `json:"received_at"`
}

func newDeviceEvent(m *models.EventMessage) DeviceEvent {
	return DeviceEvent{
		Level:      m.Level,
		RawLevel:   m.RawLevel,
		Reason:     m.Reason,
		ReceivedAt: m.ReceivedAt,
	}
}

// Listener 会话事件订阅者
// 入站消息引起的回调在派发协程中串行调用，实现不应长时间阻塞
type Listener interface {
	// OnConnectionStatusChanged 进入 Open 为 true，离开 Open 为 false，每次边沿恰好一次
	OnConnectionStatusChanged(connected bool)
	// OnSample 新采样点及其本地评估级别
	OnSample(sample Sample, level AlertLevel)
	// OnAlertLevelChanged 级别变化（升级或降级）
	OnAlertLevelChanged(tr Transition)
	// OnAlertEntered 级别升级，用于一次性提示
	OnAlertEntered(tr Transition)
	// OnDeviceStatus 设备状态
	OnDeviceStatus(st DeviceStatus)
	// OnConfig 设备确认的阈值
	OnConfig(th ThresholdConfig)
	// OnEmergency 紧急事件，展示层需阻塞式提示直到确认
	OnEmergency(notice EmergencyNotice)
	// OnDeviceEvent 其他设备事件
	OnDeviceEvent(ev DeviceEvent)
	// OnPeakReset 本地峰值已清除
	OnPeakReset()
}

// BaseListener 空实现，嵌入后只需覆盖关心的方法
type BaseListener struct{}

func (BaseListener) OnConnectionStatusChanged(bool) {}
func (BaseListener) OnSample(Sample, AlertLevel) {}
func (BaseListener) OnAlertLevelChanged(Transition) {}
func (BaseListener) OnAlertEntered(Transition) {}
func (BaseListener) OnDeviceStatus(DeviceStatus) {}
func (BaseListener) OnConfig(ThresholdConfig) {}
func (BaseListener) OnEmergency(EmergencyNotice) {}
func (BaseListener) OnDeviceEvent(DeviceEvent) {}
func (BaseListener) OnPeakReset() {}
