/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-14 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 03:38:02
 * @FilePath: \go-vibemon\logfetch\fetcher_test.go
 * @Description:
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package logfetch

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	vibemon "github.com/kamalyes/go-vibemon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deviceLog = "[0] boot\n[12] wifi connected\n[40] EMERGENCY 6.3g\n"

func newLogServer(t *testing.T, status int) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != DefaultPath {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(deviceLog))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestFetcher(baseURL string) *Fetcher {
	cfg := vibemon.DefaultConfig()
	cfg.LogDownload.BaseURL = baseURL
	cfg.LogDownload.Timeout = 2 * time.Second
	f := NewFetcher(cfg)
	f.httpClient.SetRetryCount(0)
	return f
}

func TestFetcherURL(t *testing.T) {
	f := NewFetcher(vibemon.DefaultConfig().WithHost("192.168.4.1"))
	assert.Equal(t, "http://192.168.4.1/api/download_log", f.URL())
}

func TestDownloadWritesBody(t *testing.T) {
	srv := newLogServer(t, http.StatusOK)
	f := newTestFetcher(srv.URL)

	var buf bytes.Buffer
	n, err := f.Download(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(deviceLog)), n)
	assert.Equal(t, deviceLog, buf.String())
}

func TestDownloadHTTPError(t *testing.T) {
	srv := newLogServer(t, http.StatusInternalServerError)
	f := newTestFetcher(srv.URL)

	var buf bytes.Buffer
	_, err := f.Download(context.Background(), &buf)
	require.Error(t, err)
	assert.True(t, vibemon.IsErrorType(err, vibemon.ErrTypeLogDownloadFailed))
	assert.Zero(t, buf.Len())
}

func TestDownloadToFile(t *testing.T) {
	srv := newLogServer(t, http.StatusOK)
	f := newTestFetcher(srv.URL)

	path := filepath.Join(t.TempDir(), "logs", "device.log")
	n, err := f.DownloadToFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(deviceLog)), n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, deviceLog, string(data))
}

func TestDownloadToFileFailureLeavesNothing(t *testing.T) {
	srv := newLogServer(t, http.StatusNotFound)
	f := newTestFetcher(srv.URL)

	dir := t.TempDir()
	_, err := f.DownloadToFile(context.Background(), filepath.Join(dir, "device.log"))
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDownloadUnreachable(t *testing.T) {
	f := newTestFetcher("http://127.0.0.1:1")

	_, err := f.Download(context.Background(), &bytes.Buffer{})
	assert.True(t, vibemon.IsErrorType(err, vibemon.ErrTypeLogDownloadFailed))
}

func TestDefaultFileName(t *testing.T) {
	name := DefaultFileName(time.Date(2026, 10, 19, 8, 5, 9, 0, time.UTC))
	assert.Equal(t, "vibemon-20261019-080509.log", name)
}
