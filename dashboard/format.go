/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-15 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 04:02:33
 * @FilePath: \go-vibemon\dashboard\format.go
 * @Description: 展示格式化
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package dashboard

import (
	"fmt"
	"math"
)

// MeterFullScale 仪表满量程（G）
const MeterFullScale = 8.0

// FormatUptime 毫秒运行时长 → "Xd Yh" / "Xh Ym" / "Xm Ys"，0 或负数显示 "-"
func FormatUptime(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	seconds := ms / 1000
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours%24)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes%60)
	default:
		return fmt.Sprintf("%dm %ds", minutes, seconds%60)
	}
}

// MeterPercent 幅值占满量程的百分比，限制在 [0, 100]
func MeterPercent(magnitude float64) float64 {
	if math.IsNaN(magnitude) || magnitude <= 0 {
		return 0
	}
	return math.Min(magnitude/MeterFullScale*100, 100)
}

// FormatG 可选的 G 值，缺失显示 "-"
func FormatG(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f G", *v)
}

// orDash 空字符串显示 "-"
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
