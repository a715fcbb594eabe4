/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-14 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 03:02:17
 * @FilePath: \go-vibemon\relay\redis_relay.go
 * @Description: 告警转发 - 通过 Redis 发布告警并保留最近记录
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package relay

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kamalyes/go-logger"
	"github.com/kamalyes/go-toolbox/pkg/errorx"
	"github.com/kamalyes/go-toolbox/pkg/json"
	"github.com/kamalyes/go-toolbox/pkg/mathx"
	"github.com/kamalyes/go-toolbox/pkg/syncx"
	vibemon "github.com/kamalyes/go-vibemon"
	"github.com/kamalyes/go-vibemon/models"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultChannel        = "vibemon:alerts"
	DefaultHistoryLength  = 100
	DefaultPublishTimeout = 2 * time.Second
	DefaultQueueSize      = 256
)

// RecordKind 告警记录类别
type RecordKind string

const (
	RecordKindAlert        RecordKind = "alert"        // 本地评估升级
	RecordKindEmergency    RecordKind = "emergency"    // 设备紧急事件
	RecordKindConnectivity RecordKind = "connectivity" // 连接状态变化
)

// AlertRecord 发布到频道的告警记录
type AlertRecord struct {
	Kind      RecordKind `json:"kind"`
	Host      string     `json:"host"`
	Level     string     `json:"level,omitempty"`
	From      string     `json:"from,omitempty"`
	Magnitude float64    `json:"magnitude,omitempty"`
	Reason    string     `json:"reason,omitempty"`
	Connected *bool      `json:"connected,omitempty"`
	At        time.Time  `json:"at"`
}

// Stats 转发统计
type Stats struct {
	Published int64 `json:"published"`
	Failed    int64 `json:"failed"`
	Dropped   int64 `json:"dropped"` // 队列已满或已关闭时丢弃
}

// RedisRelay 订阅会话事件并发布到 Redis 频道
// 同时把记录写入 <channel>:history 列表，只保留最近 historyLength 条
// 订阅回调只把记录放入有界队列，由后台协程发布，Redis 不可用时不阻塞会话派发
type RedisRelay struct {
	vibemon.BaseListener

	client        *redis.Client
	channel       string
	host          string
	historyLength int64
	timeout       time.Duration
	queueSize     int
	logger        logger.ILogger
	now           func() time.Time

	mu        sync.RWMutex
	queue     chan AlertRecord
	started   bool
	closed    bool
	done      chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	published atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// NewClient 按配置创建 Redis 客户端
func NewClient(cfg vibemon.RelayConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewRedisRelay 创建告警转发器
// 参数:
//   - client: Redis 客户端 (github.com/redis/go-redis/v9)
//   - cfg: 转发配置，Channel 为空时使用默认频道
//   - host: 设备主机名，写入每条记录
func NewRedisRelay(client *redis.Client, cfg vibemon.RelayConfig, host string) *RedisRelay {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisRelay{
		client:        client,
		channel:       mathx.IF(cfg.Channel == "", DefaultChannel, cfg.Channel),
		host:          host,
		historyLength: DefaultHistoryLength,
		timeout:       DefaultPublishTimeout,
		queueSize:     DefaultQueueSize,
		logger:        logger.NewEmptyLogger(),
		now:           time.Now,
		done:          make(chan struct{}),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// WithLogger 设置日志器
func (r *RedisRelay) WithLogger(l logger.ILogger) *RedisRelay {
	if l != nil {
		r.logger = l
	}
	return r
}

// WithHistoryLength 设置保留的记录条数
func (r *RedisRelay) WithHistoryLength(n int64) *RedisRelay {
	r.historyLength = mathx.IF(n <= 0, int64(DefaultHistoryLength), n)
	return r
}

// WithTimeout 设置单次发布超时
func (r *RedisRelay) WithTimeout(d time.Duration) *RedisRelay {
	r.timeout = mathx.IF(d <= 0, DefaultPublishTimeout, d)
	return r
}

// WithQueueSize 设置待发布队列长度，需在首个事件之前调用
func (r *RedisRelay) WithQueueSize(n int) *RedisRelay {
	r.queueSize = mathx.IF(n <= 0, DefaultQueueSize, n)
	return r
}

// Channel 发布频道
func (r *RedisRelay) Channel() string {
	return r.channel
}

// HistoryKey 最近记录列表的 key
func (r *RedisRelay) HistoryKey() string {
	return fmt.Sprintf("%s:history", r.channel)
}

// Ping 检查 Redis 可用
func (r *RedisRelay) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Publish 发布一条记录
func (r *RedisRelay) Publish(ctx context.Context, record AlertRecord) error {
	if record.Host == "" {
		record.Host = r.host
	}
	if record.At.IsZero() {
		record.At = r.now()
	}

	data, err := json.Marshal(record)
	if err != nil {
		r.failed.Add(1)
		return errorx.NewError(models.ErrTypeRelayPublishFailed, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Publish(ctx, r.channel, data)
	pipe.LPush(ctx, r.HistoryKey(), data)
	pipe.LTrim(ctx, r.HistoryKey(), 0, r.historyLength-1)
	if _, err := pipe.Exec(ctx); err != nil {
		r.failed.Add(1)
		return errorx.NewError(models.ErrTypeRelayPublishFailed, err)
	}

	r.published.Add(1)
	return nil
}

// Recent 最近的 n 条记录，新记录在前
func (r *RedisRelay) Recent(ctx context.Context, n int64) ([]AlertRecord, error) {
	if n <= 0 {
		return nil, nil
	}
	items, err := r.client.LRange(ctx, r.HistoryKey(), 0, n-1).Result()
	if err != nil {
		return nil, errorx.WrapError("failed to read alert history", err)
	}

	records := make([]AlertRecord, 0, len(items))
	for _, item := range items {
		var rec AlertRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			r.logger.WarnKV("跳过无法解析的告警记录", "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Stats 返回统计信息
func (r *RedisRelay) Stats() Stats {
	return Stats{
		Published: r.published.Load(),
		Failed:    r.failed.Load(),
		Dropped:   r.dropped.Load(),
	}
}

// Close 停止接收新记录，在一个发布超时内尽量发完队列后关闭 Redis 客户端
// 超时后剩余记录立即失败，可重复调用
func (r *RedisRelay) Close() error {
	var err error
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		started := r.started
		if started {
			close(r.queue)
		}
		r.mu.Unlock()

		if started {
			select {
			case <-r.done:
			case <-time.After(r.timeout):
				r.logger.WarnKV("告警队列未能按时发完，放弃剩余记录", "channel", r.channel)
				r.cancel()
				<-r.done
			}
		}
		r.cancel()
		err = r.client.Close()
	})
	return err
}

// enqueue 在订阅回调中调用，只入队不等待 Redis
func (r *RedisRelay) enqueue(record AlertRecord) {
	if record.At.IsZero() {
		record.At = r.now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.dropped.Add(1)
		return
	}
	if !r.started {
		r.started = true
		r.queue = make(chan AlertRecord, r.queueSize)
		syncx.Go().
			OnPanic(func(p any) {
				r.logger.ErrorKV("告警转发协程panic", "panic", p)
			}).
			Exec(r.run)
	}

	select {
	case r.queue <- record:
	default:
		r.dropped.Add(1)
		r.logger.WarnKV("告警队列已满，丢弃记录", "kind", record.Kind, "channel", r.channel)
	}
}

// run 按入队顺序逐条发布
func (r *RedisRelay) run() {
	defer close(r.done)
	for record := range r.queue {
		r.publish(record)
	}
}

// publish 失败只记日志
func (r *RedisRelay) publish(record AlertRecord) {
	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()
	if err := r.Publish(ctx, record); err != nil {
		r.logger.WarnKV("告警转发失败", "kind", record.Kind, "channel", r.channel, "error", err)
	}
}

func (r *RedisRelay) OnAlertEntered(tr vibemon.Transition) {
	r.enqueue(AlertRecord{
		Kind:      RecordKindAlert,
		Level:     tr.To.String(),
		From:      tr.From.String(),
		Magnitude: tr.Magnitude,
	})
}

func (r *RedisRelay) OnEmergency(notice vibemon.EmergencyNotice) {
	r.enqueue(AlertRecord{
		Kind:   RecordKindEmergency,
		Level:  vibemon.AlertLevelEmergency.String(),
		Reason: notice.Reason,
		At:     notice.ReceivedAt,
	})
}

func (r *RedisRelay) OnConnectionStatusChanged(connected bool) {
	r.enqueue(AlertRecord{
		Kind:      RecordKindConnectivity,
		Connected: &connected,
	})
}

var _ vibemon.Listener = (*RedisRelay)(nil)
