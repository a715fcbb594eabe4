/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-14 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 02:40:51
 * @FilePath: \go-vibemon\metrics\collector_test.go
 * @Description:
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	vibemon "github.com/kamalyes/go-vibemon"
	"github.com/kamalyes/go-vibemon/client"
	"github.com/kamalyes/go-vibemon/command"
	"github.com/kamalyes/go-vibemon/protocol"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedStats struct {
	stats vibemon.Stats
}

func (f *fixedStats) Stats() vibemon.Stats { return f.stats }

func TestCollectorListenerMetrics(t *testing.T) {
	c := NewCollector(nil)

	c.OnConnectionStatusChanged(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.connected))
	c.OnConnectionStatusChanged(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(c.connected))

	c.OnSample(vibemon.Sample{Magnitude: 2.5}, vibemon.AlertLevelWarning)
	c.OnSample(vibemon.Sample{Magnitude: 4.5}, vibemon.AlertLevelCritical)
	assert.Equal(t, 2.0, testutil.ToFloat64(c.samples))
	assert.Equal(t, 4.5, testutil.ToFloat64(c.magnitude))
	assert.Equal(t, float64(vibemon.AlertLevelCritical), testutil.ToFloat64(c.level))
	assert.Equal(t, 1, testutil.CollectAndCount(c.magnitudeDist))

	tr := vibemon.Transition{From: vibemon.AlertLevelOK, To: vibemon.AlertLevelWarning}
	c.OnAlertLevelChanged(tr)
	c.OnAlertEntered(tr)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.alertsEntered.WithLabelValues("WARNING")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transitions.WithLabelValues("WARNING")))

	peak, rms := 7.5, 0.9
	c.OnDeviceStatus(vibemon.DeviceStatus{UptimeMs: 90_000, Peak: &peak, RMS: &rms})
	assert.Equal(t, 7.5, testutil.ToFloat64(c.devicePeak))
	assert.Equal(t, 0.9, testutil.ToFloat64(c.deviceRMS))
	assert.Equal(t, 90.0, testutil.ToFloat64(c.deviceUptime))

	c.OnPeakReset()
	assert.Equal(t, 0.0, testutil.ToFloat64(c.devicePeak))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.peakResets))

	c.OnConfig(vibemon.ThresholdConfig{Warning: 1, Critical: 3, Emergency: 5})
	assert.Equal(t, 3.0, testutil.ToFloat64(c.thresholds.WithLabelValues("CRITICAL")))

	c.OnEmergency(vibemon.EmergencyNotice{ID: 1})
	c.OnDeviceEvent(vibemon.DeviceEvent{Level: vibemon.AlertLevelWarning})
	assert.Equal(t, 1.0, testutil.ToFloat64(c.deviceEvents.WithLabelValues("EMERGENCY")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.deviceEvents.WithLabelValues("WARNING")))
}

func TestCollectorStatsFuncs(t *testing.T) {
	source := &fixedStats{stats: vibemon.Stats{
		Session:            client.SupervisorStats{DialAttempts: 3, Reconnects: 2, Faults: 1, FramesReceived: 40, InboxRejected: 7},
		Router:             protocol.RouterStats{ParseErrors: 4, Unknown: 1},
		Commands:           command.Stats{Sent: 5, Rejected: 1, Dropped: 2},
		Emergencies:        2,
		PendingEmergencies: 1,
	}}
	c := NewCollector(source)

	expected := `
# HELP vibemon_parse_errors_total Inbound frames that were not valid JSON.
# TYPE vibemon_parse_errors_total counter
vibemon_parse_errors_total 4
# HELP vibemon_pending_emergencies Emergency notices awaiting acknowledgement.
# TYPE vibemon_pending_emergencies gauge
vibemon_pending_emergencies 1
# HELP vibemon_dial_attempts_total Connection attempts to the device.
# TYPE vibemon_dial_attempts_total counter
vibemon_dial_attempts_total 3
# HELP vibemon_inbox_rejected_total Session events rejected because the inbox reached its maximum capacity.
# TYPE vibemon_inbox_rejected_total counter
vibemon_inbox_rejected_total 7
`
	err := testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected),
		"vibemon_parse_errors_total", "vibemon_pending_emergencies", "vibemon_dial_attempts_total",
		"vibemon_inbox_rejected_total")
	assert.NoError(t, err)

	source.stats.Router.ParseErrors = 9
	count, err := testutil.GatherAndCount(c.Registry(), "vibemon_parse_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCollectorHandler(t *testing.T) {
	c := NewCollector(&fixedStats{})
	c.OnSample(vibemon.Sample{Magnitude: 1.25}, vibemon.AlertLevelOK)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "vibemon_magnitude_g 1.25")
	assert.Contains(t, string(body), "vibemon_commands_sent_total 0")
}
