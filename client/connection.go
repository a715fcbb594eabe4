/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-12 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 00:31:52
 * @FilePath: \go-vibemon\client\connection.go
 * @Description: 连接管理逻辑 - 拨号、读循环、故障处理、固定间隔重连、停止
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package client

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kamalyes/go-toolbox/pkg/errorx"
	"github.com/kamalyes/go-toolbox/pkg/mathx"
	"github.com/kamalyes/go-toolbox/pkg/syncx"
	"github.com/kamalyes/go-vibemon/models"
)

// Start 打开到设备的流连接
// Connecting/Open 时为空操作；Reconnecting 时取消等待中的定时器并立即连接；Stop 之后可重新启动
func (s *Supervisor) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.inbox == nil {
		s.stopped = false
		s.startDispatcher()
	}

	switch s.stateMachine.CurrentState() {
	case models.SessionStateConnecting, models.SessionStateOpen:
		return
	case models.SessionStateReconnecting:
		s.cancelTimer()
		s.logger.InfoKV("跳过重连等待，立即连接", "url", s.url)
	}

	if !s.transition(models.SessionStateConnecting) {
		return
	}
	s.beginDial()
}

// Stop 释放所有资源：取消重连定时器、取消拨号、关闭连接
// 任意状态下可调用，可重复调用，可在回调中调用
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}

	s.stopped = true
	s.gen++
	s.cancelTimer()
	if s.dialCancel != nil {
		s.dialCancel()
		s.dialCancel = nil
	}
	conn := s.conn
	s.conn = nil

	if s.stateMachine.CurrentState() != models.SessionStateClosed {
		s.transition(models.SessionStateClosed)
	}

	inbox := s.inbox
	s.inbox = nil
	s.mu.Unlock()

	closeGracefully(conn, "stopped")
	if inbox != nil {
		inbox.Close()
	}
	s.logger.InfoKV("会话已停止", "url", s.url)
}

// Send 发送一条文本消息
// 会话不处于 Open 时立即返回 ErrNotConnected，消息被丢弃且状态不变
func (s *Supervisor) Send(payload []byte) error {
	s.mu.Lock()
	if s.conn == nil || s.stateMachine.CurrentState() != models.SessionStateOpen {
		s.mu.Unlock()
		return models.ErrNotConnected
	}
	conn, gen, timeout := s.conn, s.gen, s.Config.WriteTimeout
	s.mu.Unlock()

	s.sendMu.Lock()
	if timeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(timeout))
	}
	err := conn.WriteMessage(websocket.TextMessage, payload)
	s.sendMu.Unlock()

	if err != nil {
		werr := errorx.NewError(models.ErrTypeWriteFailed, err)
		s.handleFault(gen, werr, false)
		return werr
	}
	s.messagesSent.Add(1)
	return nil
}

// startDispatcher 新建派发队列和协程（需要持有锁）
// 新协程等待上一个协程排空后才开始派发，保证跨重启的事件顺序
func (s *Supervisor) startDispatcher() {
	inbox := NewInbox(mathx.IF(s.inboxMinCap > 0, s.inboxMinCap, s.Config.MessageBufferSize), s.inboxMaxCap)
	prev := s.dispatcherDone
	done := make(chan struct{})
	s.inbox = inbox
	s.dispatcherDone = done

	syncx.Go().
		OnPanic(func(r any) {
			s.logger.ErrorKV("派发协程panic", "panic", r)
		}).
		Exec(func() {
			s.runDispatcher(inbox, prev, done)
		})
}

// runDispatcher 按入队顺序串行派发事件
func (s *Supervisor) runDispatcher(inbox *Inbox, prev <-chan struct{}, done chan struct{}) {
	defer close(done)
	if prev != nil {
		<-prev
	}
	for {
		item, err := inbox.Pop()
		if err != nil {
			return
		}
		s.deliver(item)
	}
}

// deliver 调用回调，单个回调 panic 不影响后续事件
func (s *Supervisor) deliver(item *inboxItem) {
	defer syncx.RecoverWithHandler(func(r interface{}) {
		s.logger.ErrorKV("会话回调panic", "kind", item.kind, "panic", r)
	})

	switch item.kind {
	case itemState:
		if f := s.onStateChanged.Load(); f != nil {
			f.(func(models.SessionState, models.SessionState))(item.from, item.to)
		}
		if f := s.onConnectionChanged.Load(); f != nil {
			switch {
			case item.to == models.SessionStateOpen:
				f.(func(bool))(true)
			case item.from == models.SessionStateOpen:
				f.(func(bool))(false)
			}
		}
	case itemFrame:
		if f := s.onMessage.Load(); f != nil {
			f.(func([]byte))(item.payload)
		}
	case itemFault:
		if f := s.onTransportFault.Load(); f != nil {
			f.(func(error))(item.err)
		}
	}
}

// enqueue 追加派发事件（需要持有锁）
func (s *Supervisor) enqueue(item *inboxItem) {
	if s.inbox == nil {
		return
	}
	if err := s.inbox.Push(item); err != nil {
		if models.IsErrorType(err, models.ErrTypeInboxFull) {
			s.inboxRejected.Add(1)
		}
		s.logger.WarnKV("派发队列拒绝事件", "kind", item.kind, "error", err)
	}
}

// transition 状态转换并入队通知（需要持有锁）
func (s *Supervisor) transition(to models.SessionState) bool {
	from := s.stateMachine.CurrentState()
	if err := s.stateMachine.TransitionTo(to); err != nil {
		s.logger.WarnKV("非法状态转换", "from", from, "to", to, "error", err)
		return false
	}
	s.logger.DebugKV("会话状态变化", "from", from, "to", to)
	s.enqueue(&inboxItem{kind: itemState, from: from, to: to})
	return true
}

// beginDial 以新的会话代号发起拨号（需要持有锁，状态为 Connecting）
func (s *Supervisor) beginDial() {
	s.gen++
	gen := s.gen
	ctx, cancel := context.WithCancel(context.Background())
	s.dialCancel = cancel
	s.dialAttempts.Add(1)

	s.logger.InfoKV("连接设备", "url", s.url, "attempt", s.dialAttempts.Load())

	syncx.Go().
		OnPanic(func(r any) {
			s.logger.ErrorKV("拨号协程panic", "panic", r)
		}).
		Exec(func() {
			s.dial(ctx, cancel, gen)
		})
}

// dial 执行拨号并根据结果推进状态机
func (s *Supervisor) dial(ctx context.Context, cancel context.CancelFunc, gen uint64) {
	conn, resp, err := s.dialer.DialContext(ctx, s.url, s.header)
	// 握手已结束，上下文只作用于拨号阶段
	cancel()
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	s.mu.Lock()
	if s.stopped || gen != s.gen {
		s.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	s.dialCancel = nil

	if err != nil {
		s.faults.Add(1)
		fault := errorx.NewError(models.ErrTypeDialFailed, s.url, err)
		s.logger.WarnKV("连接设备失败", "url", s.url, "error", err)
		s.transition(models.SessionStateClosed)
		s.enqueue(&inboxItem{kind: itemFault, err: fault})
		s.scheduleReconnect()
		s.mu.Unlock()
		return
	}

	conn.SetReadLimit(s.Config.MaxMessageSize)
	s.conn = conn
	s.backoff.Reset()
	s.transition(models.SessionStateOpen)
	initial := s.initialRequest
	s.mu.Unlock()

	s.logger.InfoKV("设备已连接", "url", s.url)

	syncx.Go().
		OnPanic(func(r any) {
			s.logger.ErrorKV("读协程panic", "panic", r)
		}).
		Exec(func() {
			s.readMessages(conn, gen)
		})

	if initial != nil {
		if err := s.Send(initial); err != nil {
			s.logger.WarnKV("初始状态请求发送失败", "error", err)
		}
	}
}

// readMessages 读循环，帧按到达顺序入队
func (s *Supervisor) readMessages(conn *websocket.Conn, gen uint64) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			s.handleFault(gen, errorx.NewError(models.ErrTypeTransportFault, err), IsNormalClose(err))
			return
		}

		s.mu.Lock()
		if gen != s.gen {
			s.mu.Unlock()
			return
		}
		s.framesReceived.Add(1)
		s.enqueue(&inboxItem{kind: itemFrame, payload: payload})
		s.mu.Unlock()
	}
}

// handleFault Open 状态下的传输故障：关闭连接并安排重连
// 旧会话代号或非 Open 状态的故障被忽略，保证每次断开只处理一次
// normal 为设备发出正常关闭帧，仍按故障重连，只降低日志级别
func (s *Supervisor) handleFault(gen uint64, err error, normal bool) {
	s.mu.Lock()
	if s.stopped || gen != s.gen || s.stateMachine.CurrentState() != models.SessionStateOpen {
		s.mu.Unlock()
		return
	}

	conn := s.conn
	s.conn = nil
	s.gen++
	s.faults.Add(1)

	if normal {
		s.normalCloses.Add(1)
		s.logger.InfoKV("设备关闭连接", "url", s.url, "reason", err)
	} else {
		s.logger.WarnKV("连接断开", "url", s.url, "error", err)
	}
	s.transition(models.SessionStateClosed)
	s.enqueue(&inboxItem{kind: itemFault, err: err})
	s.scheduleReconnect()
	s.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

// scheduleReconnect Closed → Reconnecting 并启动唯一的重连定时器（需要持有锁）
func (s *Supervisor) scheduleReconnect() {
	if !s.Config.AutoReconnect {
		s.logger.InfoKV("自动重连已关闭，会话保持 Closed", "url", s.url)
		return
	}
	if !s.transition(models.SessionStateReconnecting) {
		return
	}

	s.cancelTimer()
	delay := s.backoff.Duration()
	gen := s.gen
	s.reconnects.Add(1)
	s.timer = time.AfterFunc(delay, func() {
		s.onReconnectTimer(gen)
	})
	s.logger.InfoKV("等待重连", "url", s.url, "delay", delay)
}

// onReconnectTimer 定时器到期：Reconnecting → Connecting 并拨号
func (s *Supervisor) onReconnectTimer(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || gen != s.gen || s.stateMachine.CurrentState() != models.SessionStateReconnecting {
		return
	}
	s.timer = nil
	if s.transition(models.SessionStateConnecting) {
		s.beginDial()
	}
}

// cancelTimer 停止等待中的重连定时器（需要持有锁）
func (s *Supervisor) cancelTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
