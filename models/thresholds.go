/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-12 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-16 19:30:02
 * @FilePath: \go-vibemon\models\thresholds.go
 * @Description: 告警阈值配置
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package models

import (
	"fmt"
	"math"

	"github.com/kamalyes/go-toolbox/pkg/errorx"
)

// 设备固件出厂阈值（G）
const (
	DefaultWarningThreshold   = 2.0
	DefaultCriticalThreshold  = 4.0
	DefaultEmergencyThreshold = 6.0
)

// ThresholdConfig 三级阈值，要求 warning < critical < emergency
type ThresholdConfig struct {
	Warning   float64 `json:"warning" yaml:"warning" mapstructure:"warning"`
	Critical  float64 `json:"critical" yaml:"critical" mapstructure:"critical"`
	Emergency float64 `json:"emergency" yaml:"emergency" mapstructure:"emergency"`
}

// DefaultThresholds 返回出厂默认阈值
func DefaultThresholds() ThresholdConfig {
	return ThresholdConfig{
		Warning:   DefaultWarningThreshold,
		Critical:  DefaultCriticalThreshold,
		Emergency: DefaultEmergencyThreshold,
	}
}

// Validate 本地校验阈值，违反时返回 ErrTypeInvalidConfig
func (c ThresholdConfig) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"warning", c.Warning},
		{"critical", c.Critical},
		{"emergency", c.Emergency},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return errorx.NewError(ErrTypeInvalidConfig, fmt.Sprintf("%s must be a finite number", f.name))
		}
		if f.value < 0 {
			return errorx.NewError(ErrTypeInvalidConfig, fmt.Sprintf("%s must be non-negative, got %g", f.name, f.value))
		}
	}

	if c.Warning >= c.Critical {
		return errorx.NewError(ErrTypeInvalidConfig,
			fmt.Sprintf("warning (%g) must be below critical (%g)", c.Warning, c.Critical))
	}
	if c.Critical >= c.Emergency {
		return errorx.NewError(ErrTypeInvalidConfig,
			fmt.Sprintf("critical (%g) must be below emergency (%g)", c.Critical, c.Emergency))
	}
	return nil
}

// String 便于日志输出
func (c ThresholdConfig) String() string {
	return fmt.Sprintf("warning=%.2f critical=%.2f emergency=%.2f", c.Warning, c.Critical, c.Emergency)
}
