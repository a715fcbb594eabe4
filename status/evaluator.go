/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-12 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-16 20:44:57
 * @FilePath: \go-vibemon\status\evaluator.go
 * @Description: 幅值 → 告警级别的阶梯映射，以及级别变化的边沿检测
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package status

import (
	"sync"

	"github.com/kamalyes/go-vibemon/models"
)

// Evaluate 纯函数：按阈值把幅值映射为告警级别
//
//	magnitude <  warning            → OK
//	warning   <= magnitude < critical  → WARNING
//	critical  <= magnitude < emergency → CRITICAL
//	magnitude >= emergency          → EMERGENCY
func Evaluate(magnitude float64, thresholds models.ThresholdConfig) models.AlertLevel {
	switch {
	case magnitude >= thresholds.Emergency:
		return models.AlertLevelEmergency
	case magnitude >= thresholds.Critical:
		return models.AlertLevelCritical
	case magnitude >= thresholds.Warning:
		return models.AlertLevelWarning
	default:
		return models.AlertLevelOK
	}
}

// Transition 相邻两次评估之间的级别变化
type Transition struct {
	From      models.AlertLevel `json:"from"`
	To        models.AlertLevel `json:"to"`
	Magnitude float64           `json:"magnitude"`
}

// Changed 级别是否发生变化
func (t Transition) Changed() bool {
	return t.From != t.To
}

// Escalated 是否升级（触发一次性提示）
func (t Transition) Escalated() bool {
	return t.To.MoreSevereThan(t.From)
}

// Tracker 记住上一次评估的级别，按级别变化（而非时间）去抖
type Tracker struct {
	mu   sync.Mutex
	last models.AlertLevel
}

// NewTracker 创建跟踪器，初始级别为 OK
func NewTracker() *Tracker {
	return &Tracker{last: models.AlertLevelOK}
}

// Observe 评估一次并返回与上一次的变化
func (t *Tracker) Observe(magnitude float64, thresholds models.ThresholdConfig) Transition {
	level := Evaluate(magnitude, thresholds)

	t.mu.Lock()
	defer t.mu.Unlock()

	tr := Transition{From: t.last, To: level, Magnitude: magnitude}
	t.last = level
	return tr
}

// Current 上一次评估的级别
func (t *Tracker) Current() models.AlertLevel {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Reset 回到 OK，下一次进入告警级别会再次触发提示
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.last = models.AlertLevelOK
	t.mu.Unlock()
}
