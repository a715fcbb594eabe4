/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-13 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 21:02:17
 * @FilePath: \go-vibemon\protocol\router_test.go
 * @Description:
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/kamalyes/go-vibemon/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	data    []*models.DataMessage
	status  []*models.StatusMessage
	events  []*models.EventMessage
	configs []*models.ConfigMessage
	unknown []*models.UnknownMessage
	panicOn models.MessageKind
}

func (h *recordingHandler) HandleData(m *models.DataMessage) {
	if h.panicOn == models.MessageKindData {
		panic("boom")
	}
	h.data = append(h.data, m)
}
func (h *recordingHandler) HandleStatus(m *models.StatusMessage)   { h.status = append(h.status, m) }
func (h *recordingHandler) HandleEvent(m *models.EventMessage)     { h.events = append(h.events, m) }
func (h *recordingHandler) HandleConfig(m *models.ConfigMessage)   { h.configs = append(h.configs, m) }
func (h *recordingHandler) HandleUnknown(m *models.UnknownMessage) { h.unknown = append(h.unknown, m) }

func fixedClock() time.Time { return time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC) }

func TestRouteData(t *testing.T) {
	r := NewRouter(nil).WithClock(fixedClock)

	msg, err := r.Route([]byte(`{"type":"data","magnitude":2.5,"timestamp":12345}`))
	require.NoError(t, err)

	data, ok := msg.(*models.DataMessage)
	require.True(t, ok)
	assert.Equal(t, models.MessageKindData, data.Kind())
	assert.Equal(t, int64(12345), data.Sample.TimestampMs)
	assert.Equal(t, 2.5, data.Sample.Magnitude)
	assert.False(t, data.Sample.HasDeviceLevel)
	assert.Equal(t, fixedClock(), data.Sample.ReceivedAt)
}

func TestRouteDataTimestampBounds(t *testing.T) {
	r := NewRouter(nil)

	msg, err := r.Route([]byte(`{"type":"data","magnitude":1,"timestamp":9e18}`))
	require.NoError(t, err)
	assert.Equal(t, int64(9e18), msg.(*models.DataMessage).Sample.TimestampMs)

	_, err = r.Route([]byte(`{"type":"data","magnitude":1,"timestamp":9.223372036854775807e18}`))
	assert.True(t, models.IsErrorType(err, models.ErrTypeInvalidMessage))
}

func TestRouteDataWithDeviceStatus(t *testing.T) {
	r := NewRouter(nil)

	msg, err := r.Route([]byte(`{"type":"data","magnitude":4.1,"timestamp":1,"status":"critical"}`))
	require.NoError(t, err)

	data := msg.(*models.DataMessage)
	assert.True(t, data.Sample.HasDeviceLevel)
	assert.Equal(t, models.AlertLevelCritical, data.Sample.DeviceLevel)
}

func TestRouteDataInvalid(t *testing.T) {
	r := NewRouter(nil)

	for _, raw := range []string{
		`{"type":"data","timestamp":1}`,
		`{"type":"data","magnitude":1}`,
		`{"type":"data","magnitude":-1,"timestamp":1}`,
		`{"type":"data","magnitude":"big","timestamp":1}`,
		`{"type":"data","magnitude":1,"timestamp":9.3e18}`,
		`{"type":"data","magnitude":1,"timestamp":-1e19}`,
		`{"type":"data","magnitude":1,"timestamp":1e300}`,
	} {
		_, err := r.Route([]byte(raw))
		require.Error(t, err, raw)
		assert.True(t, models.IsParseError(err), raw)
	}
}

func TestRouteStatus(t *testing.T) {
	r := NewRouter(nil)

	msg, err := r.Route([]byte(`{"type":"status","version":"1.2.0","uptime":93784000,"peak":5.5,"rms":1.25}`))
	require.NoError(t, err)

	st := msg.(*models.StatusMessage).Status
	assert.Equal(t, "1.2.0", st.Version)
	assert.Equal(t, int64(93784000), st.UptimeMs)
	require.True(t, st.HasPeak())
	require.True(t, st.HasRMS())
	assert.Equal(t, 5.5, *st.Peak)
	assert.Equal(t, 1.25, *st.RMS)
}

func TestRouteStatusPartial(t *testing.T) {
	r := NewRouter(nil)

	msg, err := r.Route([]byte(`{"type":"status"}`))
	require.NoError(t, err)

	st := msg.(*models.StatusMessage).Status
	assert.Empty(t, st.Version)
	assert.Zero(t, st.UptimeMs)
	assert.False(t, st.HasPeak())
	assert.False(t, st.HasRMS())
}

func TestRouteEvent(t *testing.T) {
	r := NewRouter(nil)

	msg, err := r.Route([]byte(`{"type":"event","level":"EMERGENCY","reason":"bearing failure"}`))
	require.NoError(t, err)

	ev := msg.(*models.EventMessage)
	assert.True(t, ev.IsEmergency())
	assert.Equal(t, "bearing failure", ev.ReasonOrDefault())

	msg, err = r.Route([]byte(`{"type":"event","level":"NOTICE"}`))
	require.NoError(t, err)
	ev = msg.(*models.EventMessage)
	assert.False(t, ev.IsEmergency())
	assert.Equal(t, "NOTICE", ev.RawLevel)
}

func TestRouteConfig(t *testing.T) {
	r := NewRouter(nil)

	msg, err := r.Route([]byte(`{"type":"config","thresholds":{"warning":1.5,"critical":3,"emergency":5}}`))
	require.NoError(t, err)

	cfg := msg.(*models.ConfigMessage)
	require.True(t, cfg.HasThresholds)
	assert.Equal(t, models.ThresholdConfig{Warning: 1.5, Critical: 3, Emergency: 5}, cfg.Thresholds)

	_, err = r.Route([]byte(`{"type":"config","thresholds":{"warning":1.5}}`))
	assert.True(t, models.IsParseError(err))

	msg, err = r.Route([]byte(`{"type":"config"}`))
	require.NoError(t, err)
	assert.False(t, msg.(*models.ConfigMessage).HasThresholds)
}

func TestRouteUnknown(t *testing.T) {
	r := NewRouter(nil)

	msg, err := r.Route([]byte(`{"type":"telemetry","x":1}`))
	require.NoError(t, err)

	u := msg.(*models.UnknownMessage)
	assert.Equal(t, "telemetry", u.Type)
	assert.JSONEq(t, `{"type":"telemetry","x":1}`, string(u.Raw))

	msg, err = r.Route([]byte(`{"magnitude":1}`))
	require.NoError(t, err)
	assert.Equal(t, models.MessageKindUnknown, msg.Kind())
}

func TestRouteMalformed(t *testing.T) {
	r := NewRouter(nil)

	for _, raw := range []string{`{not json`, ``, `[1,2,3]`} {
		_, err := r.Route([]byte(raw))
		require.Error(t, err, raw)
		assert.True(t, models.IsParseError(err), raw)
	}
	assert.Equal(t, int64(3), r.Stats().ParseErrors)
}

// TestDispatchIsolatesFailures 坏消息不影响前后消息
func TestDispatchIsolatesFailures(t *testing.T) {
	r := NewRouter(nil)
	h := &recordingHandler{}

	_, err := r.Dispatch([]byte(`{"type":"data","magnitude":1,"timestamp":1}`), h)
	require.NoError(t, err)
	_, err = r.Dispatch([]byte(`{"type":"data",`), h)
	require.Error(t, err)
	_, err = r.Dispatch([]byte(`{"type":"data","magnitude":2,"timestamp":2}`), h)
	require.NoError(t, err)

	require.Len(t, h.data, 2)
	assert.Equal(t, 1.0, h.data[0].Sample.Magnitude)
	assert.Equal(t, 2.0, h.data[1].Sample.Magnitude)

	stats := r.Stats()
	assert.Equal(t, int64(2), stats.Routed)
	assert.Equal(t, int64(1), stats.ParseErrors)
}

func TestDispatchAllKinds(t *testing.T) {
	r := NewRouter(nil)
	h := &recordingHandler{}

	for _, raw := range []string{
		`{"type":"data","magnitude":1,"timestamp":1}`,
		`{"type":"status","version":"v"}`,
		`{"type":"event","level":"WARNING"}`,
		`{"type":"config","thresholds":{"warning":1,"critical":2,"emergency":3}}`,
		`{"type":"other"}`,
	} {
		_, err := r.Dispatch([]byte(raw), h)
		require.NoError(t, err)
	}

	assert.Len(t, h.data, 1)
	assert.Len(t, h.status, 1)
	assert.Len(t, h.events, 1)
	assert.Len(t, h.configs, 1)
	assert.Len(t, h.unknown, 1)
	assert.Equal(t, int64(1), r.Stats().Unknown)
}

func TestDispatchRecoversHandlerPanic(t *testing.T) {
	r := NewRouter(nil)
	h := &recordingHandler{panicOn: models.MessageKindData}

	assert.NotPanics(t, func() {
		_, err := r.Dispatch([]byte(`{"type":"data","magnitude":1,"timestamp":1}`), h)
		assert.Error(t, err)
	})
	assert.Equal(t, int64(1), r.Stats().HandlerPanics)

	_, err := r.Dispatch([]byte(`{"type":"status"}`), h)
	assert.NoError(t, err)
	assert.Len(t, h.status, 1)
}

func TestEncodeCommand(t *testing.T) {
	data, err := EncodeCommand(models.NewGetStatusCommand())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"get_status"}`, string(data))

	data, err = EncodeCommand(models.NewResetPeakCommand())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"reset_peak"}`, string(data))

	data, err = EncodeCommand(models.NewConfigCommand(models.ThresholdConfig{Warning: 2, Critical: 4, Emergency: 6}))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "config", decoded["type"])
	th := decoded["thresholds"].(map[string]interface{})
	assert.Equal(t, 2.0, th["warning"])
	assert.Equal(t, 4.0, th["critical"])
	assert.Equal(t, 6.0, th["emergency"])
}

func TestEncodeCommandRejectsBadInput(t *testing.T) {
	_, err := EncodeCommand(models.Command{Type: "reboot"})
	assert.True(t, models.IsErrorType(err, models.ErrTypeEncodeFailed))

	_, err = EncodeCommand(models.Command{Type: models.CommandTypeConfig})
	assert.True(t, models.IsErrorType(err, models.ErrTypeEncodeFailed))

	assert.Panics(t, func() { MustEncodeCommand(models.Command{Type: "x"}) })
}
