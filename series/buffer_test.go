/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-13 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-17 23:20:11
 * @FilePath: \go-vibemon\series\buffer_test.go
 * @Description:
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package series

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/kamalyes/go-vibemon/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(i int) models.Sample {
	return models.Sample{TimestampMs: int64(i), Magnitude: float64(i) / 10}
}

func TestNewBufferDefaults(t *testing.T) {
	b := NewBuffer(0)
	assert.Equal(t, DefaultCapacity, b.Cap())
	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.Snapshot())

	_, ok := b.Latest()
	assert.False(t, ok)
}

func TestAppendWithinCapacity(t *testing.T) {
	b := NewBuffer(5)
	for i := 0; i < 3; i++ {
		_, evicted := b.Append(sample(i))
		assert.False(t, evicted)
	}

	snap := b.Snapshot()
	require.Len(t, snap, 3)
	for i, s := range snap {
		assert.Equal(t, int64(i), s.TimestampMs)
	}

	latest, ok := b.Latest()
	require.True(t, ok)
	assert.Equal(t, int64(2), latest.TimestampMs)
}

func TestAppendEvictsOldest(t *testing.T) {
	b := NewBuffer(3)
	for i := 0; i < 3; i++ {
		b.Append(sample(i))
	}

	evicted, didEvict := b.Append(sample(3))
	require.True(t, didEvict)
	assert.Equal(t, int64(0), evicted.TimestampMs)

	snap := b.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{snap[0].TimestampMs, snap[1].TimestampMs, snap[2].TimestampMs})
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, b.Magnitudes())
}

// TestArrivalOrderNotTimestampOrder 顺序以到达为准，不按设备时间戳重排
func TestArrivalOrderNotTimestampOrder(t *testing.T) {
	b := NewBuffer(4)
	for _, ts := range []int64{50, 10, 40, 20} {
		b.Append(models.Sample{TimestampMs: ts})
	}

	snap := b.Snapshot()
	got := make([]int64, 0, len(snap))
	for _, s := range snap {
		got = append(got, s.TimestampMs)
	}
	assert.Equal(t, []int64{50, 10, 40, 20}, got)
}

// TestSnapshotKeepsLastN 任意追加序列下快照恰为最近 N 个
func TestSnapshotKeepsLastN(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, capacity := range []int{1, 2, 7, 100} {
		b := NewBuffer(capacity)
		var all []models.Sample
		n := rng.Intn(400) + 1
		for i := 0; i < n; i++ {
			s := sample(i)
			all = append(all, s)
			b.Append(s)

			snap := b.Snapshot()
			require.LessOrEqual(t, len(snap), capacity)

			start := len(all) - capacity
			if start < 0 {
				start = 0
			}
			require.Equal(t, all[start:], snap)
		}
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	b := NewBuffer(2)
	b.Append(sample(1))

	snap := b.Snapshot()
	snap[0].Magnitude = 99

	again := b.Snapshot()
	assert.Equal(t, 0.1, again[0].Magnitude)
}

func TestReset(t *testing.T) {
	b := NewBuffer(3)
	for i := 0; i < 5; i++ {
		b.Append(sample(i))
	}
	b.Reset()

	assert.Equal(t, 0, b.Len())
	b.Append(sample(9))
	assert.Equal(t, []float64{0.9}, b.Magnitudes())
}

func TestStats(t *testing.T) {
	b := NewBuffer(2)
	for i := 0; i < 5; i++ {
		b.Append(sample(i))
	}

	stats := b.Stats()
	assert.Equal(t, 2, stats["length"])
	assert.Equal(t, uint64(5), stats["appended"])
	assert.Equal(t, uint64(3), stats["evicted"])
}

func TestConcurrentSnapshot(t *testing.T) {
	b := NewBuffer(16)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			b.Append(sample(i))
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				snap := b.Snapshot()
				assert.LessOrEqual(t, len(snap), 16)
				for j := 1; j < len(snap); j++ {
					assert.Less(t, snap[j-1].TimestampMs, snap[j].TimestampMs)
				}
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, 16, b.Len())
}
