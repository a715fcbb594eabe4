/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-16 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 06:12:30
 * @FilePath: \go-vibemon\cmd\vibemon\main_test.go
 * @Description:
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	vibemon "github.com/kamalyes/go-vibemon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		configPath, hostFlag, initForce, checkFix = "", "", false, false
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestInitWritesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vibemon.yaml")

	out, err := execute(t, "init", "--config", path, "--host", "10.1.2.3")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	cfg, err := vibemon.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "10.1.2.3", cfg.Host)

	_, err = execute(t, "init", "--config", path)
	assert.Error(t, err)

	_, err = execute(t, "init", "--config", path, "--force")
	assert.NoError(t, err)
}

func TestLoadConfigHostOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vibemon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host: from-file.local\n"), 0o644))

	configPath, hostFlag = path, ""
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-file.local", cfg.Host)

	hostFlag = " bench.local "
	cfg, err = loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "bench.local", cfg.Host)

	configPath, hostFlag = "", ""
}

func TestDownloadLogToStdout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("boot ok\n"))
	}))
	defer srv.Close()
	t.Setenv("VIBEMON_LOG_DOWNLOAD_BASE_URL", srv.URL)

	_, err := execute(t, "download-log", "--config", filepath.Join(t.TempDir(), "absent.yaml"), "-o", "-")
	// 指定的配置文件不存在时报错
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "vibemon.yaml")
	require.NoError(t, vibemon.WriteConfig(path, vibemon.DefaultConfig(), false))
	out, err := execute(t, "download-log", "--config", path, "-o", "-")
	require.NoError(t, err)
	assert.Equal(t, "boot ok\n", out)
}

func TestCheckReportsAndFixes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vibemon.yaml")
	broken := "host: bench.local\nhistory_size: 0\nthresholds:\n  warning: 5\n  critical: 3\n  emergency: 6\n"
	require.NoError(t, os.WriteFile(path, []byte(broken), 0o644))

	out, err := execute(t, "check", "--config", path)
	assert.True(t, vibemon.IsErrorType(err, vibemon.ErrTypeConfigValidationFailed))
	assert.Contains(t, out, "配置验证报告")
	assert.Contains(t, out, "HistorySize")
	assert.Contains(t, out, "Thresholds")

	out, err = execute(t, "check", "--config", path, "--fix")
	require.NoError(t, err)
	assert.Contains(t, out, "fixed HistorySize")
	assert.Contains(t, out, "wrote "+path)

	cfg, err := vibemon.LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "bench.local", cfg.Host)
	assert.Equal(t, vibemon.DefaultConfig().HistorySize, cfg.HistorySize)
	assert.Equal(t, vibemon.DefaultThresholds(), cfg.Thresholds)

	out, err = execute(t, "check", "--config", path)
	require.NoError(t, err)
	assert.NotContains(t, out, "wrote")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "vibemon dev")
}
