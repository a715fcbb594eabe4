/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-15 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 04:05:50
 * @FilePath: \go-vibemon\dashboard\styles.go
 * @Description: lipgloss 样式
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package dashboard

import (
	"github.com/charmbracelet/lipgloss"
	vibemon "github.com/kamalyes/go-vibemon"
)

// ANSI 调色板，兼容 16 色终端
const (
	ColorOK        lipgloss.Color = "2" // 绿
	ColorWarning   lipgloss.Color = "3" // 黄
	ColorCritical  lipgloss.Color = "208"
	ColorEmergency lipgloss.Color = "1" // 红
	ColorInfo      lipgloss.Color = "6"
	ColorMuted     lipgloss.Color = "8"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(ColorInfo)
	labelStyle     = lipgloss.NewStyle().Foreground(ColorMuted).Width(12)
	valueStyle     = lipgloss.NewStyle().Bold(true)
	footerStyle    = lipgloss.NewStyle().Foreground(ColorMuted)
	flashStyle     = lipgloss.NewStyle().Foreground(ColorInfo)
	errorStyle     = lipgloss.NewStyle().Foreground(ColorEmergency)
	connectedStyle = lipgloss.NewStyle().Foreground(ColorOK)
	offlineStyle   = lipgloss.NewStyle().Foreground(ColorEmergency)
	selectedStyle  = lipgloss.NewStyle().Reverse(true)
	sectionStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1)
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ColorEmergency).
			Foreground(ColorEmergency).
			Bold(true).
			Padding(1, 4).
			Align(lipgloss.Center)
)

// LevelColor 告警级别对应的颜色
func LevelColor(level vibemon.AlertLevel) lipgloss.Color {
	switch level {
	case vibemon.AlertLevelEmergency:
		return ColorEmergency
	case vibemon.AlertLevelCritical:
		return ColorCritical
	case vibemon.AlertLevelWarning:
		return ColorWarning
	default:
		return ColorOK
	}
}

func levelStyle(level vibemon.AlertLevel) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(LevelColor(level))
}
