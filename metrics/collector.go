/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-14 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 02:31:08
 * @FilePath: \go-vibemon\metrics\collector.go
 * @Description: Prometheus 指标 - 采样、告警、连接与会话统计
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package metrics

import (
	"net/http"

	vibemon "github.com/kamalyes/go-vibemon"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vibemon"

// StatsSource 提供会话统计，*vibemon.Monitor 实现此接口
type StatsSource interface {
	Stats() vibemon.Stats
}

// Collector 把会话事件写入独立的 Registry
// 事件类指标由订阅回调驱动，累计类指标在抓取时从 StatsSource 读取
type Collector struct {
	vibemon.BaseListener

	registry *prometheus.Registry

	samples       prometheus.Counter
	magnitude     prometheus.Gauge
	magnitudeDist prometheus.Histogram
	level         prometheus.Gauge
	connected     prometheus.Gauge
	transitions   *prometheus.CounterVec
	alertsEntered *prometheus.CounterVec
	deviceEvents  *prometheus.CounterVec
	devicePeak    prometheus.Gauge
	deviceRMS     prometheus.Gauge
	deviceUptime  prometheus.Gauge
	thresholds    *prometheus.GaugeVec
	peakResets    prometheus.Counter
}

// NewCollector 创建指标收集器，source 为 nil 时不注册会话统计类指标
func NewCollector(source StatsSource) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_total",
			Help:      "Total vibration samples received from the device.",
		}),
		magnitude: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "magnitude_g",
			Help:      "Most recent vibration magnitude in G.",
		}),
		magnitudeDist: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "magnitude_distribution_g",
			Help:      "Distribution of vibration magnitudes in G.",
			Buckets:   []float64{0.5, 1, 2, 3, 4, 5, 6, 8, 12},
		}),
		level: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alert_level",
			Help:      "Locally evaluated alert level (0=OK 1=WARNING 2=CRITICAL 3=EMERGENCY).",
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected",
			Help:      "1 while the device session is open.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_transitions_total",
			Help:      "Alert level changes by target level.",
		}, []string{"to"}),
		alertsEntered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_entered_total",
			Help:      "Escalations into an alert level.",
		}, []string{"level"}),
		deviceEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "device_events_total",
			Help:      "Events reported by the device, by level.",
		}, []string{"level"}),
		devicePeak: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "device_peak_g",
			Help:      "Peak magnitude reported by the device.",
		}),
		deviceRMS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "device_rms_g",
			Help:      "RMS magnitude reported by the device.",
		}),
		deviceUptime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "device_uptime_seconds",
			Help:      "Device uptime from the last status message.",
		}),
		thresholds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "threshold_g",
			Help:      "Active alert thresholds confirmed by the device.",
		}, []string{"level"}),
		peakResets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "peak_resets_total",
			Help:      "Peak resets sent to the device.",
		}),
	}

	c.registry.MustRegister(
		c.samples, c.magnitude, c.magnitudeDist, c.level, c.connected,
		c.transitions, c.alertsEntered, c.deviceEvents,
		c.devicePeak, c.deviceRMS, c.deviceUptime, c.thresholds, c.peakResets,
	)
	if source != nil {
		c.registerStats(source)
	}
	return c
}

// registerStats 累计计数在抓取时读取，避免与会话内部计数器重复维护
func (c *Collector) registerStats(source StatsSource) {
	counter := func(name, help string, read func(s vibemon.Stats) float64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, func() float64 { return read(source.Stats()) })
	}
	gauge := func(name, help string, read func(s vibemon.Stats) float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, func() float64 { return read(source.Stats()) })
	}

	c.registry.MustRegister(
		counter("dial_attempts_total", "Connection attempts to the device.",
			func(s vibemon.Stats) float64 { return float64(s.Session.DialAttempts) }),
		counter("reconnects_total", "Reconnects scheduled after the session closed.",
			func(s vibemon.Stats) float64 { return float64(s.Session.Reconnects) }),
		counter("transport_faults_total", "Transport faults observed on the session.",
			func(s vibemon.Stats) float64 { return float64(s.Session.Faults) }),
		counter("frames_received_total", "Inbound frames read from the device.",
			func(s vibemon.Stats) float64 { return float64(s.Session.FramesReceived) }),
		counter("parse_errors_total", "Inbound frames that were not valid JSON.",
			func(s vibemon.Stats) float64 { return float64(s.Router.ParseErrors) }),
		counter("invalid_messages_total", "Inbound messages with missing or invalid fields.",
			func(s vibemon.Stats) float64 { return float64(s.Router.InvalidFields) }),
		counter("unknown_messages_total", "Inbound messages with an unrecognized type.",
			func(s vibemon.Stats) float64 { return float64(s.Router.Unknown) }),
		counter("commands_sent_total", "Commands written to the device.",
			func(s vibemon.Stats) float64 { return float64(s.Commands.Sent) }),
		counter("commands_rejected_total", "Commands rejected by local validation.",
			func(s vibemon.Stats) float64 { return float64(s.Commands.Rejected) }),
		counter("commands_dropped_total", "Commands dropped while disconnected or on write failure.",
			func(s vibemon.Stats) float64 { return float64(s.Commands.Dropped) }),
		counter("emergencies_total", "Emergency events received from the device.",
			func(s vibemon.Stats) float64 { return float64(s.Emergencies) }),
		gauge("pending_emergencies", "Emergency notices awaiting acknowledgement.",
			func(s vibemon.Stats) float64 { return float64(s.PendingEmergencies) }),
		gauge("inbox_length", "Session events waiting for dispatch.",
			func(s vibemon.Stats) float64 { return float64(s.Session.InboxLength) }),
		counter("inbox_rejected_total", "Session events rejected because the inbox reached its maximum capacity.",
			func(s vibemon.Stats) float64 { return float64(s.Session.InboxRejected) }),
		counter("device_normal_closes_total", "Sessions closed by the device with a normal close frame.",
			func(s vibemon.Stats) float64 { return float64(s.Session.NormalCloses) }),
	)
}

// Registry 指标注册表
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler 暴露 /metrics
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) OnConnectionStatusChanged(connected bool) {
	if connected {
		c.connected.Set(1)
		return
	}
	c.connected.Set(0)
}

func (c *Collector) OnSample(sample vibemon.Sample, level vibemon.AlertLevel) {
	c.samples.Inc()
	c.magnitude.Set(sample.Magnitude)
	c.magnitudeDist.Observe(sample.Magnitude)
	c.level.Set(float64(level))
}

func (c *Collector) OnAlertLevelChanged(tr vibemon.Transition) {
	c.transitions.WithLabelValues(tr.To.String()).Inc()
}

func (c *Collector) OnAlertEntered(tr vibemon.Transition) {
	c.alertsEntered.WithLabelValues(tr.To.String()).Inc()
}

func (c *Collector) OnDeviceStatus(st vibemon.DeviceStatus) {
	if st.HasPeak() {
		c.devicePeak.Set(*st.Peak)
	}
	if st.HasRMS() {
		c.deviceRMS.Set(*st.RMS)
	}
	c.deviceUptime.Set(st.Uptime().Seconds())
}

func (c *Collector) OnConfig(th vibemon.ThresholdConfig) {
	c.thresholds.WithLabelValues(vibemon.AlertLevelWarning.String()).Set(th.Warning)
	c.thresholds.WithLabelValues(vibemon.AlertLevelCritical.String()).Set(th.Critical)
	c.thresholds.WithLabelValues(vibemon.AlertLevelEmergency.String()).Set(th.Emergency)
}

func (c *Collector) OnEmergency(vibemon.EmergencyNotice) {
	c.deviceEvents.WithLabelValues(vibemon.AlertLevelEmergency.String()).Inc()
}

func (c *Collector) OnDeviceEvent(ev vibemon.DeviceEvent) {
	c.deviceEvents.WithLabelValues(ev.Level.String()).Inc()
}

func (c *Collector) OnPeakReset() {
	c.peakResets.Inc()
	c.devicePeak.Set(0)
}

var _ vibemon.Listener = (*Collector)(nil)
