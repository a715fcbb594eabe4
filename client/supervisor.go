/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-12 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 23:40:05
 * @FilePath: \go-vibemon\client\supervisor.go
 * @Description: Supervisor 结构体及其方法 - 持有唯一会话、状态机与重连定时器
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package client

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jpillora/backoff"
	wscconfig "github.com/kamalyes/go-config/pkg/wsc"
	"github.com/kamalyes/go-logger"
	"github.com/kamalyes/go-toolbox/pkg/safe"
	"github.com/kamalyes/go-toolbox/pkg/syncx"
	"github.com/kamalyes/go-vibemon/models"
)

// 默认传输参数
const (
	DefaultReconnectDelay   = 2 * time.Second
	DefaultWriteTimeout     = 5 * time.Second
	DefaultMaxMessageSize   = 64 * 1024
	DefaultInboxMinCapacity = 64
	DefaultInboxMaxCapacity = 65536
)

// Supervisor 管理到设备的单一流连接
// 每次连接尝试对应一个新的会话代号（generation），旧代号的帧、故障、定时器和拨号结果一律丢弃
type Supervisor struct {
	mu           sync.Mutex                                // 保护会话字段
	sendMu       sync.Mutex                                // 串行化写操作
	url          string                                    // 设备地址
	header       http.Header                               // 握手请求头
	Config       *wscconfig.WSC                            // 传输参数
	dialer       Dialer                                    // 拨号器
	logger       logger.ILogger                            // 日志
	stateMachine *syncx.StateMachine[models.SessionState] // 会话状态机
	backoff      *backoff.Backoff                          // 重连间隔（恒定）

	gen            uint64             // 当前会话代号
	conn           *websocket.Conn    // Open 状态下的连接
	dialCancel     context.CancelFunc // 取消进行中的拨号
	timer          *time.Timer        // 唯一的重连定时器
	stopped        bool               // 显式 Stop 后为 true
	inbox          *Inbox             // 派发队列
	dispatcherDone chan struct{}      // 当前派发协程退出信号
	initialRequest []byte             // 每次进入 Open 时自动发送
	inboxMinCap    int                // 派发队列最小容量，0 时取 Config.MessageBufferSize
	inboxMaxCap    int                // 派发队列最大容量

	dialAttempts   atomic.Int64
	reconnects     atomic.Int64
	framesReceived atomic.Int64
	messagesSent   atomic.Int64
	faults         atomic.Int64
	normalCloses   atomic.Int64 // 设备主动正常关闭
	inboxRejected  atomic.Int64

	onStateChanged      atomic.Value // func(from, to models.SessionState)
	onConnectionChanged atomic.Value // func(connected bool)
	onMessage           atomic.Value // func(payload []byte)
	onTransportFault    atomic.Value // func(err error)
}

// SupervisorStats 会话统计
type SupervisorStats struct {
	State          models.SessionState `json:"state"`
	DialAttempts   int64               `json:"dial_attempts"`
	Reconnects     int64               `json:"reconnects"`
	FramesReceived int64               `json:"frames_received"`
	MessagesSent   int64               `json:"messages_sent"`
	Faults         int64               `json:"faults"`
	NormalCloses   int64               `json:"normal_closes"`
	InboxLength    int                 `json:"inbox_length"`
	InboxCapacity  int                 `json:"inbox_capacity"`
	InboxRejected  int64               `json:"inbox_rejected"`
}

// DefaultTransportConfig 固定间隔重连的默认传输参数
func DefaultTransportConfig() *wscconfig.WSC {
	cfg := safe.MergeWithDefaults[wscconfig.WSC](nil, wscconfig.Default())
	cfg.WriteTimeout = DefaultWriteTimeout
	cfg.MaxMessageSize = DefaultMaxMessageSize
	cfg.MessageBufferSize = DefaultInboxMinCapacity
	cfg.MinRecTime = DefaultReconnectDelay
	cfg.MaxRecTime = DefaultReconnectDelay
	cfg.RecFactor = 1
	cfg.AutoReconnect = true
	return cfg
}

// New 创建一个新的 Supervisor，初始状态为 Closed
// 参数 url: 设备流地址，通常由 DeviceURL 构造
func New(url string) *Supervisor {
	sm := syncx.NewStateMachine(models.SessionStateClosed)
	sm.AllowTransitions(models.SessionStateClosed, models.SessionStateConnecting, models.SessionStateReconnecting)
	sm.AllowTransitions(models.SessionStateConnecting, models.SessionStateOpen, models.SessionStateClosed)
	sm.AllowTransitions(models.SessionStateOpen, models.SessionStateClosed)
	sm.AllowTransitions(models.SessionStateReconnecting, models.SessionStateConnecting, models.SessionStateClosed)

	s := &Supervisor{
		url:          url,
		header:       http.Header{},
		dialer:       NewDialer(DefaultWriteTimeout),
		logger:       logger.NewEmptyLogger(),
		stateMachine: sm,
		inboxMaxCap:  DefaultInboxMaxCapacity,
	}
	s.SetConfig(DefaultTransportConfig())
	return s
}

// SetConfig 设置传输参数，需在 Start 之前调用
func (s *Supervisor) SetConfig(cfg *wscconfig.WSC) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Config = cfg
	s.backoff = &backoff.Backoff{
		Min:    cfg.MinRecTime,
		Max:    cfg.MaxRecTime,
		Factor: cfg.RecFactor,
		Jitter: false,
	}
}

// WithInboxCapacity 设置派发队列容量范围，下次 Start 生效
// 队列达到 maxCap 后新事件被拒绝并计入 InboxRejected
func (s *Supervisor) WithInboxCapacity(minCap, maxCap int) *Supervisor {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inboxMinCap = minCap
	s.inboxMaxCap = maxCap
	return s
}

// WithDialer 设置自定义拨号器
func (s *Supervisor) WithDialer(dialer Dialer) *Supervisor {
	s.dialer = dialer
	return s
}

// WithRequestHeader 设置握手请求头
func (s *Supervisor) WithRequestHeader(header http.Header) *Supervisor {
	s.header = header
	return s
}

// WithLogger 设置日志器
func (s *Supervisor) WithLogger(l logger.ILogger) *Supervisor {
	if l != nil {
		s.logger = l
	}
	return s
}

// SetInitialRequest 设置每次进入 Open 时自动发送的请求
func (s *Supervisor) SetInitialRequest(payload []byte) {
	s.mu.Lock()
	s.initialRequest = payload
	s.mu.Unlock()
}

// OnStateChanged 设置状态变化回调，每次转换触发一次
func (s *Supervisor) OnStateChanged(f func(from, to models.SessionState)) {
	s.onStateChanged.Store(f)
}

// OnConnectionChanged 设置连通性回调：进入 Open 为 true，离开 Open 为 false
func (s *Supervisor) OnConnectionChanged(f func(connected bool)) {
	s.onConnectionChanged.Store(f)
}

// OnMessage 设置入站帧回调，按到达顺序串行调用
func (s *Supervisor) OnMessage(f func(payload []byte)) {
	s.onMessage.Store(f)
}

// OnTransportFault 设置传输故障回调（拨号失败、读写错误）
func (s *Supervisor) OnTransportFault(f func(err error)) {
	s.onTransportFault.Store(f)
}

// URL 设备地址
func (s *Supervisor) URL() string {
	return s.url
}

// State 当前会话状态
func (s *Supervisor) State() models.SessionState {
	return s.stateMachine.CurrentState()
}

// IsConnected 是否处于 Open 状态
func (s *Supervisor) IsConnected() bool {
	return s.State().IsConnected()
}

// IsStopped 是否已显式停止
func (s *Supervisor) IsStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// DialAttempts 累计拨号次数
func (s *Supervisor) DialAttempts() int64 {
	return s.dialAttempts.Load()
}

// Stats 返回会话统计
func (s *Supervisor) Stats() SupervisorStats {
	s.mu.Lock()
	var inbox InboxStats
	if s.inbox != nil {
		inbox = s.inbox.Stats()
	}
	s.mu.Unlock()

	return SupervisorStats{
		State:          s.State(),
		DialAttempts:   s.dialAttempts.Load(),
		Reconnects:     s.reconnects.Load(),
		FramesReceived: s.framesReceived.Load(),
		MessagesSent:   s.messagesSent.Load(),
		Faults:         s.faults.Load(),
		NormalCloses:   s.normalCloses.Load(),
		InboxLength:    inbox.Length,
		InboxCapacity:  inbox.Capacity,
		InboxRejected:  s.inboxRejected.Load(),
	}
}
