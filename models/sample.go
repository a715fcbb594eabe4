/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-12 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-17 10:12:09
 * @FilePath: \go-vibemon\models\sample.go
 * @Description: 采样点与设备状态模型
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package models

import "time"

// Sample 一个遥测采样点，创建后不可变（按值传递）
type Sample struct {
	TimestampMs    int64      `json:"timestamp_ms"`          // 设备时间戳（毫秒）
	Magnitude      float64    `json:"magnitude"`             // 振动幅值（G）
	DeviceLevel    AlertLevel `json:"device_level"`          // 设备自评级别
	HasDeviceLevel bool       `json:"has_device_level"`      // 设备是否上报了级别
	ReceivedAt     time.Time  `json:"received_at,omitempty"` // 本地接收时间
}

// NewSample 创建采样点
func NewSample(timestampMs int64, magnitude float64) Sample {
	return Sample{
		TimestampMs: timestampMs,
		Magnitude:   magnitude,
		ReceivedAt:  time.Now(),
	}
}

// WithDeviceLevel 返回带设备级别的副本
func (s Sample) WithDeviceLevel(level AlertLevel) Sample {
	s.DeviceLevel = level
	s.HasDeviceLevel = true
	return s
}

// DeviceStatus 设备状态（status 消息），peak/rms 原样透传
type DeviceStatus struct {
	Version    string    `json:"version"`
	UptimeMs   int64     `json:"uptime_ms"`
	Peak       *float64  `json:"peak,omitempty"`
	RMS        *float64  `json:"rms,omitempty"`
	ReceivedAt time.Time `json:"received_at,omitempty"`
}

// HasPeak 是否携带峰值
func (d DeviceStatus) HasPeak() bool {
	return d.Peak != nil
}

// HasRMS 是否携带有效值
func (d DeviceStatus) HasRMS() bool {
	return d.RMS != nil
}

// Uptime 运行时长
func (d DeviceStatus) Uptime() time.Duration {
	return time.Duration(d.UptimeMs) * time.Millisecond
}
