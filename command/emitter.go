/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-12 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 21:26:09
 * @FilePath: \go-vibemon\command\emitter.go
 * @Description: 用户指令 → 出站命令，本地校验并按连接状态发送
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package command

import (
	"sync/atomic"

	"github.com/kamalyes/go-logger"
	"github.com/kamalyes/go-vibemon/models"
	"github.com/kamalyes/go-vibemon/protocol"
)

// Sender 出站通道，未连接时必须返回 ErrNotConnected
type Sender interface {
	Send(payload []byte) error
}

// Stats 命令统计
type Stats struct {
	Sent     int64 `json:"sent"`
	Rejected int64 `json:"rejected"` // 本地校验失败
	Dropped  int64 `json:"dropped"`  // 未连接或发送失败
}

// Emitter 把用户指令序列化后交给 Sender，从不排队
type Emitter struct {
	sender Sender
	logger logger.ILogger
	// onResult 每条命令的结果回调 func(models.CommandType, error)
	onResult atomic.Value

	sent     atomic.Int64
	rejected atomic.Int64
	dropped  atomic.Int64
}

// NewEmitter 创建命令发送器
func NewEmitter(sender Sender) *Emitter {
	return &Emitter{sender: sender, logger: logger.NewEmptyLogger()}
}

// WithLogger 设置日志器
func (e *Emitter) WithLogger(l logger.ILogger) *Emitter {
	if l != nil {
		e.logger = l
	}
	return e
}

// OnResult 设置命令结果回调
func (e *Emitter) OnResult(f func(cmd models.CommandType, err error)) {
	e.onResult.Store(f)
}

// SaveThresholds 校验 warning < critical < emergency 后发送
// 校验失败返回 ErrTypeInvalidConfig，不产生任何发送
func (e *Emitter) SaveThresholds(cfg models.ThresholdConfig) error {
	if err := cfg.Validate(); err != nil {
		e.rejected.Add(1)
		e.logger.WarnKV("阈值配置非法，未发送", "thresholds", cfg.String(), "error", err)
		e.report(models.CommandTypeConfig, err)
		return err
	}
	return e.emit(models.NewConfigCommand(cfg))
}

// ResetPeak 发送清除峰值命令
func (e *Emitter) ResetPeak() error {
	return e.emit(models.NewResetPeakCommand())
}

// RequestStatus 请求设备状态
func (e *Emitter) RequestStatus() error {
	return e.emit(models.NewGetStatusCommand())
}

// Stats 返回命令统计
func (e *Emitter) Stats() Stats {
	return Stats{
		Sent:     e.sent.Load(),
		Rejected: e.rejected.Load(),
		Dropped:  e.dropped.Load(),
	}
}

func (e *Emitter) emit(cmd models.Command) error {
	payload, err := protocol.EncodeCommand(cmd)
	if err != nil {
		e.rejected.Add(1)
		e.report(cmd.Type, err)
		return err
	}

	if err := e.sender.Send(payload); err != nil {
		e.dropped.Add(1)
		e.logger.WarnKV("命令未发送", "type", cmd.Type, "error", err)
		e.report(cmd.Type, err)
		return err
	}

	e.sent.Add(1)
	e.logger.DebugKV("命令已发送", "type", cmd.Type)
	e.report(cmd.Type, nil)
	return nil
}

func (e *Emitter) report(cmd models.CommandType, err error) {
	if f := e.onResult.Load(); f != nil {
		f.(func(models.CommandType, error))(cmd, err)
	}
}
