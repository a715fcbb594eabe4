/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-13 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 23:12:40
 * @FilePath: \go-vibemon\client\inbox.go
 * @Description: 会话事件队列 - 动态扩容/缩容，Push 不阻塞，Pop 阻塞等待
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package client

import (
	"sync"
	"sync/atomic"

	"github.com/kamalyes/go-toolbox/pkg/errorx"
	"github.com/kamalyes/go-vibemon/models"
)

// itemKind 事件类别
type itemKind int

const (
	itemState itemKind = iota // 状态变化
	itemFrame                 // 入站帧
	itemFault                 // 传输故障
)

// inboxItem 派发协程按入队顺序依次处理的事件
type inboxItem struct {
	kind    itemKind
	from    models.SessionState
	to      models.SessionState
	payload []byte
	err     error
}

// Inbox 动态扩容的事件队列
type Inbox struct {
	items        []*inboxItem
	mu           sync.Mutex
	notEmpty     *sync.Cond
	head         int
	tail         int
	count        int64 // 当前事件数（原子）
	capacity     int
	minCapacity  int
	maxCapacity  int
	closed       int32 // 关闭标记（原子）
	resizeCount  int64
	shrinkCount  int64
	rejected     int64 // 因容量上限被拒绝的事件数
	growthFactor float64
}

// InboxStats 队列统计信息
type InboxStats struct {
	Length      int   `json:"length"`
	Capacity    int   `json:"capacity"`
	MinCapacity int   `json:"min_capacity"`
	MaxCapacity int   `json:"max_capacity"`
	Closed      bool  `json:"closed"`
	ResizeCount int64 `json:"resize_count"`
	ShrinkCount int64 `json:"shrink_count"`
	Rejected    int64 `json:"rejected"`
}

// NewInbox 创建事件队列
// minCap: 最小容量，maxCap: 最大容量
func NewInbox(minCap, maxCap int) *Inbox {
	if minCap <= 0 {
		minCap = 64
	}
	if maxCap <= 0 {
		maxCap = 65536
	}
	if minCap > maxCap {
		minCap = maxCap
	}

	q := &Inbox{
		items:        make([]*inboxItem, minCap),
		capacity:     minCap,
		minCapacity:  minCap,
		maxCapacity:  maxCap,
		growthFactor: 1.5,
	}
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// Push 追加事件，满时自动扩容，达到最大容量返回 ErrTypeInboxFull
func (q *Inbox) Push(item *inboxItem) error {
	if atomic.LoadInt32(&q.closed) == 1 {
		return models.ErrSessionStopped
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.isFull() {
		if q.capacity >= q.maxCapacity {
			atomic.AddInt64(&q.rejected, 1)
			return errorx.NewError(models.ErrTypeInboxFull, q.capacity)
		}
		q.resize(q.calculateGrowth())
	}

	q.items[q.tail] = item
	q.tail = (q.tail + 1) % q.capacity
	atomic.AddInt64(&q.count, 1)

	q.notEmpty.Signal()
	return nil
}

// Pop 取出事件，队列为空时阻塞
// 关闭后继续返回剩余事件，取空后返回 ErrSessionStopped
func (q *Inbox) Pop() (*inboxItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.isEmpty() && atomic.LoadInt32(&q.closed) == 0 {
		q.notEmpty.Wait()
	}

	if q.isEmpty() {
		return nil, models.ErrSessionStopped
	}

	item := q.items[q.head]
	q.items[q.head] = nil
	q.head = (q.head + 1) % q.capacity
	atomic.AddInt64(&q.count, -1)

	if q.shouldShrink() {
		q.resize(q.calculateShrink())
	}

	return item, nil
}

// Close 关闭队列并唤醒等待者
func (q *Inbox) Close() {
	if atomic.CompareAndSwapInt32(&q.closed, 0, 1) {
		q.mu.Lock()
		q.notEmpty.Broadcast()
		q.mu.Unlock()
	}
}

// Len 当前事件数
func (q *Inbox) Len() int {
	return int(atomic.LoadInt64(&q.count))
}

// Cap 当前容量
func (q *Inbox) Cap() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.capacity
}

// IsClosed 是否已关闭
func (q *Inbox) IsClosed() bool {
	return atomic.LoadInt32(&q.closed) == 1
}

func (q *Inbox) isEmpty() bool {
	return atomic.LoadInt64(&q.count) == 0
}

func (q *Inbox) isFull() bool {
	return atomic.LoadInt64(&q.count) >= int64(q.capacity)
}

// shouldShrink 使用率低于25%且容量大于最小容量时缩容
func (q *Inbox) shouldShrink() bool {
	count := atomic.LoadInt64(&q.count)
	return q.capacity > q.minCapacity && count < int64(q.capacity/4)
}

// calculateGrowth 小容量翻倍，大容量按增长因子
func (q *Inbox) calculateGrowth() int {
	newCap := q.capacity * 2
	if q.capacity >= 1024 {
		newCap = int(float64(q.capacity) * q.growthFactor)
	}
	if newCap > q.maxCapacity {
		newCap = q.maxCapacity
	}
	return newCap
}

// calculateShrink 缩为2/3，至少保留当前事件数的2倍
func (q *Inbox) calculateShrink() int {
	newCap := q.capacity * 2 / 3
	if minRequired := int(atomic.LoadInt64(&q.count)) * 2; newCap < minRequired {
		newCap = minRequired
	}
	return newCap
}

// resize 调整容量（需要持有锁）
func (q *Inbox) resize(newCap int) {
	if newCap < q.minCapacity {
		newCap = q.minCapacity
	}
	if newCap > q.maxCapacity {
		newCap = q.maxCapacity
	}
	if newCap == q.capacity {
		return
	}

	newItems := make([]*inboxItem, newCap)
	count := int(atomic.LoadInt64(&q.count))
	for i := 0; i < count; i++ {
		newItems[i] = q.items[(q.head+i)%q.capacity]
	}

	if newCap > q.capacity {
		atomic.AddInt64(&q.resizeCount, 1)
	} else {
		atomic.AddInt64(&q.shrinkCount, 1)
	}

	q.items = newItems
	q.head = 0
	q.tail = count % newCap
	q.capacity = newCap
}

// Stats 队列统计信息
func (q *Inbox) Stats() InboxStats {
	q.mu.Lock()
	defer q.mu.Unlock()

	return InboxStats{
		Length:      int(atomic.LoadInt64(&q.count)),
		Capacity:    q.capacity,
		MinCapacity: q.minCapacity,
		MaxCapacity: q.maxCapacity,
		Closed:      atomic.LoadInt32(&q.closed) == 1,
		ResizeCount: atomic.LoadInt64(&q.resizeCount),
		ShrinkCount: atomic.LoadInt64(&q.shrinkCount),
		Rejected:    atomic.LoadInt64(&q.rejected),
	}
}
