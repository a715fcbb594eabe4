/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-12 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 20:31:44
 * @FilePath: \go-vibemon\protocol\router.go
 * @Description: 入站消息路由 - 解析、按 type 分类并分发，单条消息失败互不影响
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package protocol

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/kamalyes/go-logger"
	"github.com/kamalyes/go-toolbox/pkg/errorx"
	"github.com/kamalyes/go-toolbox/pkg/json"
	"github.com/kamalyes/go-toolbox/pkg/syncx"
	"github.com/kamalyes/go-vibemon/models"
)

// Handler 按消息类别接收路由结果
type Handler interface {
	HandleData(msg *models.DataMessage)
	HandleStatus(msg *models.StatusMessage)
	HandleEvent(msg *models.EventMessage)
	HandleConfig(msg *models.ConfigMessage)
	HandleUnknown(msg *models.UnknownMessage)
}

// envelope 入站消息的宽松解码结构，字段均可缺省
type envelope struct {
	Type       *string        `json:"type"`
	Magnitude  *float64       `json:"magnitude"`
	Timestamp  *float64       `json:"timestamp"`
	Status     *string        `json:"status"`
	Version    *string        `json:"version"`
	Uptime     *float64       `json:"uptime"`
	Peak       *float64       `json:"peak"`
	RMS        *float64       `json:"rms"`
	Level      *string        `json:"level"`
	Reason     *string        `json:"reason"`
	Thresholds *rawThresholds `json:"thresholds"`
}

type rawThresholds struct {
	Warning   *float64 `json:"warning"`
	Critical  *float64 `json:"critical"`
	Emergency *float64 `json:"emergency"`
}

// RouterStats 路由统计
type RouterStats struct {
	Routed        int64 `json:"routed"`
	ParseErrors   int64 `json:"parse_errors"`
	InvalidFields int64 `json:"invalid_fields"`
	Unknown       int64 `json:"unknown"`
	HandlerPanics int64 `json:"handler_panics"`
}

// Router 无状态的消息分类器，附带计数
type Router struct {
	logger logger.ILogger
	now    func() time.Time

	routed        atomic.Int64
	parseErrors   atomic.Int64
	invalidFields atomic.Int64
	unknown       atomic.Int64
	handlerPanics atomic.Int64
}

// NewRouter 创建路由器，log 为 nil 时不输出日志
func NewRouter(log logger.ILogger) *Router {
	if log == nil {
		log = logger.NewEmptyLogger()
	}
	return &Router{logger: log, now: time.Now}
}

// WithClock 替换接收时间来源（测试用）
func (r *Router) WithClock(now func() time.Time) *Router {
	r.now = now
	return r
}

// Route 解析并分类一条原始消息
// 解析失败返回 ErrTypeParseError，字段非法返回 ErrTypeInvalidMessage
func (r *Router) Route(raw []byte) (models.Message, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		r.parseErrors.Add(1)
		return nil, errorx.NewError(models.ErrTypeParseError, err)
	}

	kind := ""
	if env.Type != nil {
		kind = *env.Type
	}

	var (
		msg models.Message
		err error
	)
	switch models.MessageKind(kind) {
	case models.MessageKindData:
		msg, err = r.decodeData(&env)
	case models.MessageKindStatus:
		msg = r.decodeStatus(&env)
	case models.MessageKindEvent:
		msg = r.decodeEvent(&env)
	case models.MessageKindConfig:
		msg, err = r.decodeConfig(&env)
	default:
		r.unknown.Add(1)
		raw := append([]byte(nil), raw...)
		msg = &models.UnknownMessage{Type: kind, Raw: raw}
	}

	if err != nil {
		r.invalidFields.Add(1)
		return nil, err
	}
	r.routed.Add(1)
	return msg, nil
}

// Dispatch 路由并调用对应处理器
// 解析错误只记录日志，处理器 panic 被捕获，后续消息不受影响
func (r *Router) Dispatch(raw []byte, h Handler) (msg models.Message, err error) {
	msg, err = r.Route(raw)
	if err != nil {
		r.logger.WarnKV("丢弃无法处理的消息", "error", err, "payload", truncate(raw, 256))
		return nil, err
	}

	defer syncx.RecoverWithHandler(func(rec interface{}) {
		r.handlerPanics.Add(1)
		r.logger.ErrorKV("消息处理器panic", "kind", msg.Kind(), "panic", rec)
		err = errorx.NewError(models.ErrTypeInvalidMessage, msg.Kind(), fmt.Sprintf("handler panic: %v", rec))
	})

	switch m := msg.(type) {
	case *models.DataMessage:
		h.HandleData(m)
	case *models.StatusMessage:
		h.HandleStatus(m)
	case *models.EventMessage:
		h.HandleEvent(m)
	case *models.ConfigMessage:
		h.HandleConfig(m)
	case *models.UnknownMessage:
		r.logger.WarnKV("忽略未知消息类型", "type", m.Type)
		h.HandleUnknown(m)
	}
	return msg, nil
}

// Stats 返回路由统计
func (r *Router) Stats() RouterStats {
	return RouterStats{
		Routed:        r.routed.Load(),
		ParseErrors:   r.parseErrors.Load(),
		InvalidFields: r.invalidFields.Load(),
		Unknown:       r.unknown.Load(),
		HandlerPanics: r.handlerPanics.Load(),
	}
}

func (r *Router) decodeData(env *envelope) (models.Message, error) {
	if env.Magnitude == nil {
		return nil, invalid(models.MessageKindData, "missing magnitude")
	}
	if env.Timestamp == nil {
		return nil, invalid(models.MessageKindData, "missing timestamp")
	}
	mag := *env.Magnitude
	if math.IsNaN(mag) || math.IsInf(mag, 0) || mag < 0 {
		return nil, invalid(models.MessageKindData, fmt.Sprintf("magnitude %v out of range", mag))
	}
	ts := *env.Timestamp
	if math.IsNaN(ts) || math.IsInf(ts, 0) {
		return nil, invalid(models.MessageKindData, "timestamp is not finite")
	}
	// float64(math.MaxInt64) 向上取整为 2^63，必须用开区间
	if ts >= maxTimestamp || ts < -maxTimestamp {
		return nil, invalid(models.MessageKindData, fmt.Sprintf("timestamp %g out of range", ts))
	}

	sample := models.Sample{
		TimestampMs: int64(ts),
		Magnitude:   mag,
		ReceivedAt:  r.now(),
	}
	if env.Status != nil {
		if level, ok := models.ParseAlertLevel(*env.Status); ok {
			sample = sample.WithDeviceLevel(level)
		}
	}
	return &models.DataMessage{Sample: sample}, nil
}

func (r *Router) decodeStatus(env *envelope) models.Message {
	st := models.DeviceStatus{
		Peak:       finiteOrNil(env.Peak),
		RMS:        finiteOrNil(env.RMS),
		ReceivedAt: r.now(),
	}
	if env.Version != nil {
		st.Version = *env.Version
	}
	if env.Uptime != nil && *env.Uptime > 0 && !math.IsInf(*env.Uptime, 0) {
		st.UptimeMs = int64(*env.Uptime)
	}
	return &models.StatusMessage{Status: st}
}

func (r *Router) decodeEvent(env *envelope) models.Message {
	msg := &models.EventMessage{ReceivedAt: r.now()}
	if env.Level != nil {
		msg.RawLevel = *env.Level
		msg.Level, _ = models.ParseAlertLevel(*env.Level)
	}
	if env.Reason != nil {
		msg.Reason = *env.Reason
	}
	return msg
}

func (r *Router) decodeConfig(env *envelope) (models.Message, error) {
	if env.Thresholds == nil {
		return &models.ConfigMessage{}, nil
	}
	t := env.Thresholds
	if t.Warning == nil || t.Critical == nil || t.Emergency == nil {
		return nil, invalid(models.MessageKindConfig, "incomplete thresholds")
	}
	return &models.ConfigMessage{
		Thresholds: models.ThresholdConfig{
			Warning:   *t.Warning,
			Critical:  *t.Critical,
			Emergency: *t.Emergency,
		},
		HasThresholds: true,
	}, nil
}

// maxTimestamp int64 可表示范围的上界 2^63
const maxTimestamp = float64(1 << 63)

func invalid(kind models.MessageKind, reason string) error {
	return errorx.NewError(models.ErrTypeInvalidMessage, kind, reason)
}

func finiteOrNil(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	out := *v
	return &out
}

func truncate(raw []byte, max int) string {
	if len(raw) <= max {
		return string(raw)
	}
	return string(raw[:max]) + "..."
}
