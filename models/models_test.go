/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-13 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 22:10:03
 * @FilePath: \go-vibemon\models\models_test.go
 * @Description:
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package models

import (
	"fmt"
	"math"
	"testing"

	"github.com/kamalyes/go-toolbox/pkg/errorx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertLevelOrdering(t *testing.T) {
	assert.True(t, AlertLevelWarning.MoreSevereThan(AlertLevelOK))
	assert.True(t, AlertLevelCritical.MoreSevereThan(AlertLevelWarning))
	assert.True(t, AlertLevelEmergency.MoreSevereThan(AlertLevelCritical))
	assert.False(t, AlertLevelOK.MoreSevereThan(AlertLevelOK))
}

func TestParseAlertLevel(t *testing.T) {
	tests := []struct {
		in    string
		want  AlertLevel
		valid bool
	}{
		{"OK", AlertLevelOK, true},
		{"warning", AlertLevelWarning, true},
		{" Critical ", AlertLevelCritical, true},
		{"EMERGENCY", AlertLevelEmergency, true},
		{"panic", AlertLevelOK, false},
		{"", AlertLevelOK, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAlertLevel(tt.in)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAlertLevelString(t *testing.T) {
	assert.Equal(t, "EMERGENCY", AlertLevelEmergency.String())
	assert.Equal(t, "UNKNOWN", AlertLevel(42).String())
}

func TestEnumValidators(t *testing.T) {
	assert.True(t, SessionStateReconnecting.IsValid())
	assert.False(t, SessionState("half-open").IsValid())
	assert.True(t, MessageKindConfig.IsValid())
	assert.True(t, CommandTypeResetPeak.IsValid())
	assert.False(t, CommandType("reboot").IsValid())
	assert.True(t, SessionStateOpen.IsConnected())
	assert.False(t, SessionStateReconnecting.IsConnected())
}

func TestThresholdConfigValidate(t *testing.T) {
	require.NoError(t, DefaultThresholds().Validate())

	tests := []struct {
		name string
		cfg  ThresholdConfig
	}{
		{"warning above critical", ThresholdConfig{Warning: 5, Critical: 3, Emergency: 6}},
		{"critical equals emergency", ThresholdConfig{Warning: 1, Critical: 6, Emergency: 6}},
		{"negative", ThresholdConfig{Warning: -1, Critical: 3, Emergency: 6}},
		{"nan", ThresholdConfig{Warning: math.NaN(), Critical: 3, Emergency: 6}},
		{"inf", ThresholdConfig{Warning: 1, Critical: 3, Emergency: math.Inf(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.True(t, IsInvalidConfigError(err))
			assert.False(t, IsNotConnectedError(err))
		})
	}
}

func TestCommandConstructors(t *testing.T) {
	cmd := NewConfigCommand(DefaultThresholds())
	require.NotNil(t, cmd.Thresholds)
	assert.Equal(t, CommandTypeConfig, cmd.Type)
	assert.Equal(t, 4.0, cmd.Thresholds.Critical)

	assert.Nil(t, NewGetStatusCommand().Thresholds)
	assert.Equal(t, CommandTypeResetPeak, NewResetPeakCommand().Type)
}

func TestErrorPredicates(t *testing.T) {
	assert.True(t, IsNotConnectedError(ErrNotConnected))
	assert.False(t, IsNotConnectedError(nil))
	assert.False(t, IsTransportFault(ErrNotConnected))
	assert.False(t, IsParseError(assert.AnError))

	assert.True(t, IsInvalidConfigError(errorx.NewError(ErrTypeInvalidConfig, "warning >= critical")))
	assert.True(t, IsParseError(errorx.NewError(ErrTypeParseError, "eof")))
	assert.True(t, IsParseError(errorx.NewError(ErrTypeInvalidMessage, "data", "magnitude missing")))
	assert.True(t, IsTransportFault(errorx.NewError(ErrTypeDialFailed, "ws://x:81/", "refused")))
	assert.Equal(t, ErrTypeNotConnected, errorx.ClassifyError(ErrNotConnected))
	assert.Equal(t, ErrTypeSessionStopped, errorx.ClassifyError(ErrSessionStopped))

	// 包装后仍可识别
	wrapped := fmt.Errorf("save: %w", errorx.NewError(ErrTypeInvalidConfig, "order"))
	assert.True(t, IsInvalidConfigError(wrapped))
	assert.True(t, IsNotConnectedError(fmt.Errorf("send: %w", ErrNotConnected)))
	assert.False(t, IsErrorType(assert.AnError, ErrTypeParseError))
}

func TestEventMessageReason(t *testing.T) {
	msg := &EventMessage{Level: AlertLevelEmergency}
	assert.True(t, msg.IsEmergency())
	assert.Equal(t, "Critical vibration detected", msg.ReasonOrDefault())

	msg.Reason = "spindle crash"
	assert.Equal(t, "spindle crash", msg.ReasonOrDefault())
}
