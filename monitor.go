/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-12 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 00:58:30
 * @FilePath: \go-vibemon\monitor.go
 * @Description: 遥测会话管理 - 串联连接、路由、历史缓冲、告警评估与命令发送
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package vibemon

import (
	"sync"
	"sync/atomic"

	"github.com/kamalyes/go-toolbox/pkg/syncx"
	"github.com/kamalyes/go-vibemon/client"
	"github.com/kamalyes/go-vibemon/command"
	"github.com/kamalyes/go-vibemon/models"
	"github.com/kamalyes/go-vibemon/protocol"
	"github.com/kamalyes/go-vibemon/series"
	"github.com/kamalyes/go-vibemon/status"
)

// Stats 会话管理统计
type Stats struct {
	Session             client.SupervisorStats `json:"session"`
	Router              protocol.RouterStats   `json:"router"`
	Commands            command.Stats          `json:"commands"`
	Buffer              map[string]interface{} `json:"buffer"`
	Level               AlertLevel             `json:"level"`
	Emergencies         int64                  `json:"emergencies"`
	PendingEmergencies  int                    `json:"pending_emergencies"`
	InvalidConfigEchoes int64                  `json:"invalid_config_echoes"`
}

// Monitor 一个设备的遥测会话
type Monitor struct {
	config     *Config
	logger     Logger
	supervisor *client.Supervisor
	router     *protocol.Router
	buffer     *series.Buffer
	tracker    *status.Tracker
	emitter    *command.Emitter

	// 重建连接管理器时保留的设置
	dialer          client.Dialer
	onCommandResult func(cmd CommandType, err error)

	mu              sync.RWMutex
	thresholds      ThresholdConfig
	deviceStatus    DeviceStatus
	hasDeviceStatus bool
	pending         []EmergencyNotice
	nextEmergencyID uint64

	listenersMu sync.RWMutex
	listeners   []Listener

	emergencies   atomic.Int64
	invalidEchoes atomic.Int64
}

// NewMonitor 创建会话管理器，cfg 为 nil 时使用默认配置
func NewMonitor(cfg *Config) (*Monitor, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Monitor{
		config:     cfg,
		logger:     NewLogger(cfg.Logging),
		buffer:     series.NewBuffer(cfg.HistorySize),
		tracker:    status.NewTracker(),
		thresholds: cfg.Thresholds,
	}
	m.router = protocol.NewRouter(m.logger)
	m.buildSupervisor(cfg.DeviceURL())
	return m, nil
}

// WithLogger 替换日志器，需在 Start 之前调用
// 会重建连接管理器，已设置的拨号器和命令结果回调保持不变
func (m *Monitor) WithLogger(l Logger) *Monitor {
	if l == nil {
		return m
	}
	m.logger = l
	m.router = protocol.NewRouter(l)
	m.buildSupervisor(m.supervisor.URL())
	return m
}

// WithDeviceURL 覆盖设备地址（测试设备或代理），需在 Start 之前调用
// 会重建连接管理器，已设置的拨号器和命令结果回调保持不变
func (m *Monitor) WithDeviceURL(url string) *Monitor {
	m.buildSupervisor(url)
	return m
}

// WithDialer 设置自定义拨号器，需在 Start 之前调用
func (m *Monitor) WithDialer(d client.Dialer) *Monitor {
	m.dialer = d
	m.supervisor.WithDialer(d)
	return m
}

// buildSupervisor 创建连接管理器并挂接回调
func (m *Monitor) buildSupervisor(url string) {
	sup := client.New(url).WithLogger(m.logger)
	sup.SetConfig(m.config.TransportConfig())
	sup.WithInboxCapacity(m.config.InboxMinCapacity, m.config.InboxMaxCapacity)
	if m.dialer != nil {
		sup.WithDialer(m.dialer)
	}
	sup.SetInitialRequest(protocol.MustEncodeCommand(models.NewGetStatusCommand()))

	handler := &inboundHandler{m: m}
	sup.OnMessage(func(payload []byte) {
		_, _ = m.router.Dispatch(payload, handler)
	})
	sup.OnConnectionChanged(m.handleConnectionChanged)
	sup.OnStateChanged(func(from, to models.SessionState) {
		m.logger.DebugKV("会话状态", "from", from, "to", to)
	})
	sup.OnTransportFault(func(err error) {
		m.logger.WarnKV("传输故障，等待自动重连", "error", err)
	})

	m.supervisor = sup
	m.emitter = command.NewEmitter(sup).WithLogger(m.logger)
	if m.onCommandResult != nil {
		m.emitter.OnResult(m.onCommandResult)
	}
}

// AddListener 注册订阅者
func (m *Monitor) AddListener(l Listener) {
	m.listenersMu.Lock()
	m.listeners = append(m.listeners, l)
	m.listenersMu.Unlock()
}

// OnCommandResult 订阅命令发送结果
func (m *Monitor) OnCommandResult(f func(cmd CommandType, err error)) {
	m.onCommandResult = f
	m.emitter.OnResult(f)
}

// Start 开始连接设备
func (m *Monitor) Start() {
	m.logger.InfoKV("启动振动监控", "url", m.supervisor.URL(), "history", m.buffer.Cap())
	m.supervisor.Start()
}

// Stop 释放连接与定时器
func (m *Monitor) Stop() {
	m.supervisor.Stop()
}

// State 会话状态
func (m *Monitor) State() SessionState {
	return m.supervisor.State()
}

// IsConnected 是否可发送命令
func (m *Monitor) IsConnected() bool {
	return m.supervisor.IsConnected()
}

// URL 设备地址
func (m *Monitor) URL() string {
	return m.supervisor.URL()
}

// Config 当前配置
func (m *Monitor) Config() *Config {
	return m.config
}

// Logger 日志器
func (m *Monitor) Logger() Logger {
	return m.logger
}

// Snapshot 历史采样副本（按到达顺序）
func (m *Monitor) Snapshot() []Sample {
	return m.buffer.Snapshot()
}

// Magnitudes 历史幅值副本
func (m *Monitor) Magnitudes() []float64 {
	return m.buffer.Magnitudes()
}

// Level 最近一次评估的告警级别
func (m *Monitor) Level() AlertLevel {
	return m.tracker.Current()
}

// Thresholds 当前生效的阈值
func (m *Monitor) Thresholds() ThresholdConfig {
	return syncx.WithRLockReturnValue(&m.mu, func() ThresholdConfig {
		return m.thresholds
	})
}

// DefaultThresholds 出厂阈值，仅用于本地表单复位，不发送
func (m *Monitor) DefaultThresholds() ThresholdConfig {
	return models.DefaultThresholds()
}

// DeviceStatus 最近一次设备状态
func (m *Monitor) DeviceStatus() (DeviceStatus, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.deviceStatus, m.hasDeviceStatus
}

// SaveThresholds 校验并发送阈值，成功后本地立即生效
// 设备回显仍以回显为准
func (m *Monitor) SaveThresholds(cfg ThresholdConfig) error {
	if err := m.emitter.SaveThresholds(cfg); err != nil {
		return err
	}
	syncx.WithLock(&m.mu, func() {
		m.thresholds = cfg
	})
	m.logger.InfoKV("阈值已发送", "thresholds", cfg.String())
	return nil
}

// ResetPeak 发送清除峰值命令，发送成功后乐观地清除本地峰值
func (m *Monitor) ResetPeak() error {
	if err := m.emitter.ResetPeak(); err != nil {
		return err
	}
	syncx.WithLock(&m.mu, func() {
		m.deviceStatus.Peak = nil
	})
	m.notify(func(l Listener) { l.OnPeakReset() })
	return nil
}

// RequestStatus 主动请求设备状态
func (m *Monitor) RequestStatus() error {
	return m.emitter.RequestStatus()
}

// PendingEmergency 最早一条未确认的紧急事件
func (m *Monitor) PendingEmergency() (EmergencyNotice, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.pending) == 0 {
		return EmergencyNotice{}, false
	}
	return m.pending[0], true
}

// PendingEmergencies 未确认的紧急事件数
func (m *Monitor) PendingEmergencies() int {
	return syncx.WithRLockReturnValue(&m.mu, func() int {
		return len(m.pending)
	})
}

// AcknowledgeEmergency 确认最早一条紧急事件
func (m *Monitor) AcknowledgeEmergency() (EmergencyNotice, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return EmergencyNotice{}, false
	}
	notice := m.pending[0]
	m.pending = m.pending[1:]
	m.logger.InfoKV("紧急事件已确认", "id", notice.ID, "reason", notice.Reason)
	return notice, true
}

// Stats 返回统计信息
func (m *Monitor) Stats() Stats {
	return Stats{
		Session:             m.supervisor.Stats(),
		Router:              m.router.Stats(),
		Commands:            m.emitter.Stats(),
		Buffer:              m.buffer.Stats(),
		Level:               m.tracker.Current(),
		Emergencies:         m.emergencies.Load(),
		PendingEmergencies:  m.PendingEmergencies(),
		InvalidConfigEchoes: m.invalidEchoes.Load(),
	}
}

func (m *Monitor) handleConnectionChanged(connected bool) {
	if connected {
		m.logger.InfoKV("设备已连接", "url", m.supervisor.URL())
	} else {
		m.logger.WarnKV("设备连接断开", "url", m.supervisor.URL())
	}
	m.notify(func(l Listener) { l.OnConnectionStatusChanged(connected) })
}

// notify 依次调用订阅者，单个订阅者 panic 不影响其他订阅者
func (m *Monitor) notify(fn func(l Listener)) {
	m.listenersMu.RLock()
	listeners := append([]Listener(nil), m.listeners...)
	m.listenersMu.RUnlock()

	for _, l := range listeners {
		func() {
			defer syncx.RecoverWithHandler(func(r interface{}) {
				m.logger.ErrorKV("订阅者panic", "panic", r)
			})
			fn(l)
		}()
	}
}

// inboundHandler 把路由结果落到会话状态上，只在派发协程中调用
type inboundHandler struct {
	m *Monitor
}

func (h *inboundHandler) HandleData(msg *models.DataMessage) {
	m := h.m
	sample := msg.Sample
	m.buffer.Append(sample)

	tr := m.tracker.Observe(sample.Magnitude, m.Thresholds())
	m.notify(func(l Listener) { l.OnSample(sample, tr.To) })

	if !tr.Changed() {
		return
	}
	m.notify(func(l Listener) { l.OnAlertLevelChanged(tr) })
	if tr.Escalated() {
		m.logger.WarnKV("告警级别升高", "from", tr.From, "to", tr.To, "magnitude", tr.Magnitude)
		m.notify(func(l Listener) { l.OnAlertEntered(tr) })
	}
}

func (h *inboundHandler) HandleStatus(msg *models.StatusMessage) {
	m := h.m
	syncx.WithLock(&m.mu, func() {
		m.deviceStatus = msg.Status
		m.hasDeviceStatus = true
	})
	m.notify(func(l Listener) { l.OnDeviceStatus(msg.Status) })
}

func (h *inboundHandler) HandleEvent(msg *models.EventMessage) {
	m := h.m
	if !msg.IsEmergency() {
		m.logger.InfoKV("设备事件", "level", msg.RawLevel, "reason", msg.Reason)
		ev := newDeviceEvent(msg)
		m.notify(func(l Listener) { l.OnDeviceEvent(ev) })
		return
	}

	m.emergencies.Add(1)
	var notice EmergencyNotice
	syncx.WithLock(&m.mu, func() {
		m.nextEmergencyID++
		notice = EmergencyNotice{
			ID:         m.nextEmergencyID,
			Reason:     msg.ReasonOrDefault(),
			RawLevel:   msg.RawLevel,
			ReceivedAt: msg.ReceivedAt,
		}
		m.pending = append(m.pending, notice)
	})
	m.logger.ErrorKV("紧急事件", "id", notice.ID, "reason", notice.Reason)
	m.notify(func(l Listener) { l.OnEmergency(notice) })
}

func (h *inboundHandler) HandleConfig(msg *models.ConfigMessage) {
	m := h.m
	if !msg.HasThresholds {
		m.logger.DebugKV("配置回显不含阈值")
		return
	}
	if err := msg.Thresholds.Validate(); err != nil {
		m.invalidEchoes.Add(1)
		m.logger.WarnKV("忽略非法的阈值回显", "thresholds", msg.Thresholds.String(), "error", err)
		return
	}

	syncx.WithLock(&m.mu, func() {
		m.thresholds = msg.Thresholds
	})
	m.notify(func(l Listener) { l.OnConfig(msg.Thresholds) })
}

func (h *inboundHandler) HandleUnknown(*models.UnknownMessage) {}
