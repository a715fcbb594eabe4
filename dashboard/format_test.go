/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-15 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 05:02:48
 * @FilePath: \go-vibemon\dashboard\format_test.go
 * @Description:
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package dashboard

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "-"},
		{-5, "-"},
		{999, "0m 0s"},
		{61_000, "1m 1s"},
		{3_600_000, "1h 0m"},
		{7_384_000, "2h 3m"},
		{90_000_000, "1d 1h"},
		{3 * 86_400_000, "3d 0h"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUptime(tt.ms), tt.ms)
	}
}

func TestMeterPercent(t *testing.T) {
	assert.Equal(t, 0.0, MeterPercent(0))
	assert.Equal(t, 0.0, MeterPercent(-1))
	assert.Equal(t, 0.0, MeterPercent(math.NaN()))
	assert.Equal(t, 25.0, MeterPercent(2))
	assert.Equal(t, 100.0, MeterPercent(8))
	assert.Equal(t, 100.0, MeterPercent(12.5))
}

func TestFormatG(t *testing.T) {
	v := 3.14159
	assert.Equal(t, "3.14 G", FormatG(&v))
	assert.Equal(t, "-", FormatG(nil))
}

func TestSparkline(t *testing.T) {
	assert.Empty(t, Sparkline(nil, 10))
	assert.Empty(t, Sparkline([]float64{1}, 0))

	// 固定纵轴：0 最低，≥ 满量程最高
	assert.Equal(t, "▁█", Sparkline([]float64{0, 8}, 10))
	assert.Equal(t, "▁▁", Sparkline([]float64{0, 0}, 10))
	assert.Equal(t, "█", Sparkline([]float64{20}, 10))

	// 只保留最近 width 个点
	assert.Equal(t, []rune("▁█"), []rune(Sparkline([]float64{8, 8, 0, 8}, 2)))
}

func TestMeterBar(t *testing.T) {
	assert.Equal(t, "[░░░░]", MeterBar(0, 4))
	assert.Equal(t, "[██░░]", MeterBar(50, 4))
	assert.Equal(t, "[████]", MeterBar(150, 4))
	assert.Empty(t, MeterBar(50, 0))
}
