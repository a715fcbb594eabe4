/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-15 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 04:11:37
 * @FilePath: \go-vibemon\dashboard\sparkline.go
 * @Description: 幅值走势与仪表条
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// 8 级方块字符，由低到高
var sparklineBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline 以 [0, MeterFullScale] 为固定纵轴渲染最近 width 个点
// 固定纵轴使同一幅值在不同时刻高度一致
func Sparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}

	var sb strings.Builder
	sb.Grow(len(data) * 3)

	top := len(sparklineBlocks) - 1
	for _, v := range data {
		level := int(MeterPercent(v) / 100 * float64(top))
		if level > top {
			level = top
		}
		sb.WriteRune(sparklineBlocks[level])
	}
	return sb.String()
}

// RenderSparkline 按当前级别着色
func RenderSparkline(data []float64, width int, color lipgloss.Color) string {
	line := Sparkline(data, width)
	if line == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(color).Render(line)
}

// MeterBar 百分比仪表条，如 [██████░░░░]
func MeterBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(percent / 100 * float64(width))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}
