/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-12 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-17 23:18:40
 * @FilePath: \go-vibemon\series\buffer.go
 * @Description: 固定容量的采样历史环形缓冲区（满时淘汰最旧）
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package series

import (
	"sync"

	"github.com/kamalyes/go-toolbox/pkg/syncx"
	"github.com/kamalyes/go-vibemon/models"
)

// DefaultCapacity 默认保留的采样点数
const DefaultCapacity = 100

// Buffer 按到达顺序保存最近 N 个采样点
// 不变式: Len() <= Cap()，快照按到达顺序排列
type Buffer struct {
	mu       sync.RWMutex
	items    []models.Sample
	head     int // 最旧元素索引
	count    int
	capacity int
	appended uint64 // 累计追加次数
	evicted  uint64 // 累计淘汰次数
}

// NewBuffer 创建缓冲区，capacity <= 0 时使用 DefaultCapacity
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		items:    make([]models.Sample, capacity),
		capacity: capacity,
	}
}

// Append 追加采样点，满时原子地淘汰最旧的一个
// 返回被淘汰的采样点（如有）
func (b *Buffer) Append(sample models.Sample) (evicted models.Sample, didEvict bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.appended++
	if b.count == b.capacity {
		evicted = b.items[b.head]
		b.items[b.head] = sample
		b.head = (b.head + 1) % b.capacity
		b.evicted++
		return evicted, true
	}

	tail := (b.head + b.count) % b.capacity
	b.items[tail] = sample
	b.count++
	return models.Sample{}, false
}

// Snapshot 返回按到达顺序排列的副本，调用方可随意修改
func (b *Buffer) Snapshot() []models.Sample {
	return syncx.WithRLockReturnValue(&b.mu, func() []models.Sample {
		out := make([]models.Sample, b.count)
		for i := 0; i < b.count; i++ {
			out[i] = b.items[(b.head+i)%b.capacity]
		}
		return out
	})
}

// Magnitudes 返回按到达顺序排列的幅值序列（用于趋势图）
func (b *Buffer) Magnitudes() []float64 {
	return syncx.WithRLockReturnValue(&b.mu, func() []float64 {
		out := make([]float64, b.count)
		for i := 0; i < b.count; i++ {
			out[i] = b.items[(b.head+i)%b.capacity].Magnitude
		}
		return out
	})
}

// Latest 最近一次追加的采样点
func (b *Buffer) Latest() (models.Sample, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.count == 0 {
		return models.Sample{}, false
	}
	return b.items[(b.head+b.count-1)%b.capacity], true
}

// Len 当前元素数
func (b *Buffer) Len() int {
	return syncx.WithRLockReturnValue(&b.mu, func() int {
		return b.count
	})
}

// Cap 容量
func (b *Buffer) Cap() int {
	return b.capacity
}

// Reset 清空缓冲区，保留容量
func (b *Buffer) Reset() {
	syncx.WithLock(&b.mu, func() {
		for i := range b.items {
			b.items[i] = models.Sample{}
		}
		b.head = 0
		b.count = 0
	})
}

// Stats 返回缓冲区统计信息
func (b *Buffer) Stats() map[string]interface{} {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return map[string]interface{}{
		"length":      b.count,
		"capacity":    b.capacity,
		"appended":    b.appended,
		"evicted":     b.evicted,
		"utilization": float64(b.count) / float64(b.capacity) * 100,
	}
}
