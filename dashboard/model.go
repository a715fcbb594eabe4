/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-15 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 04:48:19
 * @FilePath: \go-vibemon\dashboard\model.go
 * @Description: 振动监控终端界面
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package dashboard

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	vibemon "github.com/kamalyes/go-vibemon"
)

// Controller 界面需要的会话操作，*vibemon.Monitor 实现此接口
type Controller interface {
	URL() string
	Magnitudes() []float64
	Thresholds() vibemon.ThresholdConfig
	DefaultThresholds() vibemon.ThresholdConfig
	SaveThresholds(cfg vibemon.ThresholdConfig) error
	ResetPeak() error
	RequestStatus() error
	PendingEmergency() (vibemon.EmergencyNotice, bool)
	AcknowledgeEmergency() (vibemon.EmergencyNotice, bool)
}

// LogDownloader 下载设备日志，返回保存位置
type LogDownloader func(ctx context.Context) (string, error)

// 表单步进（G）
const thresholdStep = 0.1

// AcknowledgeKey 关闭紧急提示的唯一按键
const AcknowledgeKey = "enter"

// thresholdFields 表单字段顺序
var thresholdFields = []string{"warning", "critical", "emergency"}

// commandResultMsg 命令发送结果
type commandResultMsg struct {
	action string
	err    error
	saved  *vibemon.ThresholdConfig // 阈值保存成功时为已发送的值
}

// logDownloadedMsg 日志下载结果
type logDownloadedMsg struct {
	path string
	err  error
}

// Model Bubble Tea 模型
type Model struct {
	ctrl       Controller
	downloader LogDownloader

	width  int
	height int

	connected   bool
	hasSample   bool
	lastSample  vibemon.Sample
	level       vibemon.AlertLevel
	history     []float64
	status      vibemon.DeviceStatus
	hasStatus   bool
	thresholds  vibemon.ThresholdConfig
	form        vibemon.ThresholdConfig
	field       int
	emergency   *vibemon.EmergencyNotice
	lastEvent   string
	flash       string
	flashIsErr  bool
	downloading bool
	quitting    bool
}

// NewModel 创建模型，downloader 为 nil 时禁用日志下载
func NewModel(ctrl Controller, downloader LogDownloader) Model {
	th := ctrl.Thresholds()
	return Model{
		ctrl:       ctrl,
		downloader: downloader,
		thresholds: th,
		form:       th,
		level:      vibemon.AlertLevelOK,
	}
}

// Init 无初始命令，数据全部来自 Bridge
func (m Model) Init() tea.Cmd {
	return nil
}

// Update 处理消息
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ConnectionMsg:
		m.connected = msg.Connected
		return m, nil

	case SampleMsg:
		m.hasSample = true
		m.lastSample = msg.Sample
		m.level = msg.Level
		m.history = m.ctrl.Magnitudes()
		return m, nil

	case AlertEnteredMsg:
		m.setFlash(fmt.Sprintf("%s %.2f G", msg.Transition.To, msg.Transition.Magnitude), msg.Transition.To >= vibemon.AlertLevelCritical)
		return m, nil

	case DeviceStatusMsg:
		m.status = msg.Status
		m.hasStatus = true
		return m, nil

	case ConfigMsg:
		m.thresholds = msg.Thresholds
		m.form = msg.Thresholds
		m.setFlash("thresholds confirmed by device", false)
		return m, nil

	case EmergencyMsg:
		if m.emergency == nil {
			m.showNextEmergency()
		}
		return m, nil

	case DeviceEventMsg:
		m.lastEvent = fmt.Sprintf("%s %s", orDash(msg.Event.RawLevel), msg.Event.Reason)
		return m, nil

	case PeakResetMsg:
		m.status.Peak = nil
		return m, nil

	case commandResultMsg:
		if msg.err != nil {
			m.setFlash(fmt.Sprintf("%s failed: %v", msg.action, msg.err), true)
		} else {
			m.setFlash(msg.action+" sent", false)
		}
		if msg.saved != nil {
			// 本地已按新阈值评估，不等设备回显
			m.thresholds = *msg.saved
		}
		return m, nil

	case logDownloadedMsg:
		m.downloading = false
		if msg.err != nil {
			m.setFlash(fmt.Sprintf("log download failed: %v", msg.err), true)
		} else {
			m.setFlash("log saved to "+msg.path, false)
		}
		return m, nil
	}

	return m, nil
}

// handleKey 紧急提示显示期间只响应确认键
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.emergency != nil {
		if key == AcknowledgeKey {
			m.ctrl.AcknowledgeEmergency()
			m.emergency = nil
			m.showNextEmergency()
		}
		return m, nil
	}

	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "tab", "down", "j":
		m.field = (m.field + 1) % len(thresholdFields)
	case "shift+tab", "up", "k":
		m.field = (m.field + len(thresholdFields) - 1) % len(thresholdFields)
	case "+", "=", "right", "l":
		m.adjust(thresholdStep)
	case "-", "left", "h":
		m.adjust(-thresholdStep)

	case "d":
		// 仅复位表单，不发送
		m.form = m.ctrl.DefaultThresholds()
		m.setFlash("form reset to defaults, press s to save", false)

	case "s":
		form := m.form
		return m, func() tea.Msg {
			msg := commandResultMsg{action: "save thresholds", err: m.ctrl.SaveThresholds(form)}
			if msg.err == nil {
				msg.saved = &form
			}
			return msg
		}
	case "r":
		return m, runCommand("reset peak", m.ctrl.ResetPeak)
	case "g":
		return m, runCommand("status request", m.ctrl.RequestStatus)

	case "L":
		if m.downloader == nil || m.downloading {
			return m, nil
		}
		m.downloading = true
		m.setFlash("downloading log...", false)
		download := m.downloader
		return m, func() tea.Msg {
			path, err := download(context.Background())
			return logDownloadedMsg{path: path, err: err}
		}
	}
	return m, nil
}

func runCommand(action string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return commandResultMsg{action: action, err: fn()}
	}
}

func (m *Model) adjust(delta float64) {
	var v *float64
	switch m.field {
	case 0:
		v = &m.form.Warning
	case 1:
		v = &m.form.Critical
	default:
		v = &m.form.Emergency
	}
	*v = math.Max(0, math.Round((*v+delta)*10)/10)
}

func (m *Model) showNextEmergency() {
	if notice, ok := m.ctrl.PendingEmergency(); ok {
		m.emergency = &notice
	}
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashIsErr = isErr
}

// View 渲染界面
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.emergency != nil {
		return m.renderEmergency()
	}

	var sb strings.Builder
	sb.WriteString(m.renderHeader())
	sb.WriteString("\n\n")
	sb.WriteString(m.renderCurrent())
	sb.WriteString("\n")
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderDevice(), " ", m.renderThresholds()))
	sb.WriteString("\n")
	if m.flash != "" {
		style := flashStyle
		if m.flashIsErr {
			style = errorStyle
		}
		sb.WriteString(style.Render(m.flash))
		sb.WriteString("\n")
	}
	sb.WriteString(m.renderFooter())
	return sb.String()
}

func (m Model) renderHeader() string {
	indicator := offlineStyle.Render("● disconnected")
	if m.connected {
		indicator = connectedStyle.Render("● connected")
	}
	return titleStyle.Render("Vibration Monitor") + "  " + indicator + "  " + footerStyle.Render(m.ctrl.URL())
}

func (m Model) renderCurrent() string {
	var sb strings.Builder

	status := levelStyle(m.level).Render(m.level.String())
	if m.hasSample && m.lastSample.HasDeviceLevel && m.lastSample.DeviceLevel != m.level {
		status += footerStyle.Render(fmt.Sprintf(" (device: %s)", m.lastSample.DeviceLevel))
	}
	sb.WriteString(labelStyle.Render("Status") + status + "\n")

	current := "-"
	percent := 0.0
	if m.hasSample {
		current = fmt.Sprintf("%.2f G", m.lastSample.Magnitude)
		percent = MeterPercent(m.lastSample.Magnitude)
	}
	sb.WriteString(labelStyle.Render("Current") + valueStyle.Render(current) + " ")
	sb.WriteString(lipgloss.NewStyle().Foreground(LevelColor(m.level)).Render(MeterBar(percent, 20)))
	sb.WriteString(fmt.Sprintf(" %3.0f%%\n", percent))

	sb.WriteString(labelStyle.Render("History") + RenderSparkline(m.history, m.sparkWidth(), LevelColor(m.level)) + "\n")
	return sb.String()
}

func (m Model) sparkWidth() int {
	if m.width <= 0 {
		return 60
	}
	return max(m.width-14, 10)
}

func (m Model) renderDevice() string {
	rows := []string{
		titleStyle.Render("Device"),
		labelStyle.Render("Firmware") + orDash(m.status.Version),
		labelStyle.Render("Uptime") + FormatUptime(m.status.UptimeMs),
		labelStyle.Render("Peak") + FormatG(m.status.Peak),
		labelStyle.Render("RMS") + FormatG(m.status.RMS),
		labelStyle.Render("Last event") + orDash(strings.TrimSpace(m.lastEvent)),
	}
	return sectionStyle.Render(strings.Join(rows, "\n"))
}

func (m Model) renderThresholds() string {
	active := []float64{m.thresholds.Warning, m.thresholds.Critical, m.thresholds.Emergency}
	form := []float64{m.form.Warning, m.form.Critical, m.form.Emergency}
	levels := []vibemon.AlertLevel{vibemon.AlertLevelWarning, vibemon.AlertLevelCritical, vibemon.AlertLevelEmergency}

	rows := []string{titleStyle.Render("Thresholds (active → edit)")}
	for i, name := range thresholdFields {
		edit := fmt.Sprintf("%.1f", form[i])
		if i == m.field {
			edit = selectedStyle.Render(edit)
		}
		rows = append(rows, fmt.Sprintf("%s%.2f → %s",
			labelStyle.Foreground(LevelColor(levels[i])).Render(name), active[i], edit))
	}
	if m.form != m.thresholds {
		rows = append(rows, footerStyle.Render("unsaved changes"))
	}
	return sectionStyle.Render(strings.Join(rows, "\n"))
}

func (m Model) renderFooter() string {
	keys := "tab: field | +/-: adjust | s: save | d: defaults | r: reset peak | g: status"
	if m.downloader != nil {
		keys += " | L: download log"
	}
	return footerStyle.Render(keys + " | q: quit")
}

func (m Model) renderEmergency() string {
	body := fmt.Sprintf("EMERGENCY STOP!\n\n%s\n\npress enter to acknowledge", m.emergency.Reason)
	box := modalStyle.Render(body)
	if m.width <= 0 || m.height <= 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
