/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-15 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 04:15:02
 * @FilePath: \go-vibemon\dashboard\bridge.go
 * @Description: 会话事件 → Bubble Tea 消息
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package dashboard

import (
	tea "github.com/charmbracelet/bubbletea"
	vibemon "github.com/kamalyes/go-vibemon"
)

// 会话事件消息
type (
	ConnectionMsg struct{ Connected bool }
	SampleMsg     struct {
		Sample vibemon.Sample
		Level  vibemon.AlertLevel
	}
	AlertEnteredMsg struct{ Transition vibemon.Transition }
	DeviceStatusMsg struct{ Status vibemon.DeviceStatus }
	ConfigMsg       struct{ Thresholds vibemon.ThresholdConfig }
	EmergencyMsg    struct{ Notice vibemon.EmergencyNotice }
	DeviceEventMsg  struct{ Event vibemon.DeviceEvent }
	PeakResetMsg    struct{}
)

// Sender *tea.Program 满足此接口
type Sender interface {
	Send(msg tea.Msg)
}

// Bridge 把 Listener 回调转成 program.Send，可在任意协程调用
type Bridge struct {
	vibemon.BaseListener
	program Sender
}

// NewBridge 创建桥接
func NewBridge(program Sender) *Bridge {
	return &Bridge{program: program}
}

func (b *Bridge) OnConnectionStatusChanged(connected bool) {
	b.program.Send(ConnectionMsg{Connected: connected})
}

func (b *Bridge) OnSample(sample vibemon.Sample, level vibemon.AlertLevel) {
	b.program.Send(SampleMsg{Sample: sample, Level: level})
}

func (b *Bridge) OnAlertEntered(tr vibemon.Transition) {
	b.program.Send(AlertEnteredMsg{Transition: tr})
}

func (b *Bridge) OnDeviceStatus(st vibemon.DeviceStatus) {
	b.program.Send(DeviceStatusMsg{Status: st})
}

func (b *Bridge) OnConfig(th vibemon.ThresholdConfig) {
	b.program.Send(ConfigMsg{Thresholds: th})
}

func (b *Bridge) OnEmergency(notice vibemon.EmergencyNotice) {
	b.program.Send(EmergencyMsg{Notice: notice})
}

func (b *Bridge) OnDeviceEvent(ev vibemon.DeviceEvent) {
	b.program.Send(DeviceEventMsg{Event: ev})
}

func (b *Bridge) OnPeakReset() {
	b.program.Send(PeakResetMsg{})
}

var _ vibemon.Listener = (*Bridge)(nil)
