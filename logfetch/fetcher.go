/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-14 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 03:30:26
 * @FilePath: \go-vibemon\logfetch\fetcher.go
 * @Description: 设备日志下载 - HTTP 旁路通道，与遥测会话互不影响
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package logfetch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kamalyes/go-logger"
	"github.com/kamalyes/go-toolbox/pkg/errorx"
	"github.com/kamalyes/go-toolbox/pkg/mathx"
	vibemon "github.com/kamalyes/go-vibemon"
	"github.com/kamalyes/go-vibemon/models"
)

const (
	DefaultPath    = "/api/download_log"
	DefaultTimeout = 30 * time.Second
)

// Fetcher 下载设备日志
type Fetcher struct {
	httpClient *resty.Client
	baseURL    string
	path       string
	logger     logger.ILogger
}

// NewFetcher 按配置创建下载器
func NewFetcher(cfg *vibemon.Config) *Fetcher {
	baseURL := cfg.LogBaseURL()
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(mathx.IF(cfg.LogDownload.Timeout <= 0, DefaultTimeout, cfg.LogDownload.Timeout)).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)

	return &Fetcher{
		httpClient: client,
		baseURL:    baseURL,
		path:       mathx.IF(cfg.LogDownload.Path == "", DefaultPath, cfg.LogDownload.Path),
		logger:     logger.NewEmptyLogger(),
	}
}

// WithLogger 设置日志器
func (f *Fetcher) WithLogger(l logger.ILogger) *Fetcher {
	if l != nil {
		f.logger = l
	}
	return f
}

// URL 完整下载地址
func (f *Fetcher) URL() string {
	return f.baseURL + f.path
}

// Download 把日志写入 w，返回写入字节数
func (f *Fetcher) Download(ctx context.Context, w io.Writer) (int64, error) {
	f.logger.InfoKV("下载设备日志", "url", f.URL())

	resp, err := f.httpClient.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(f.path)
	if err != nil {
		return 0, errorx.NewError(models.ErrTypeLogDownloadFailed, err.Error())
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		return 0, errorx.NewError(models.ErrTypeLogDownloadFailed, fmt.Sprintf("%s returned %s", f.URL(), resp.Status()))
	}

	n, err := io.Copy(w, body)
	if err != nil {
		return n, errorx.NewError(models.ErrTypeLogDownloadFailed, err.Error())
	}

	f.logger.InfoKV("设备日志已下载", "bytes", n)
	return n, nil
}

// DownloadToFile 下载到文件，失败时不留下残缺文件
func (f *Fetcher) DownloadToFile(ctx context.Context, path string) (int64, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, errorx.WrapError("create log dir failed", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".vibemon-log-*")
	if err != nil {
		return 0, errorx.WrapError("create temp file failed", err)
	}
	tmpName := tmp.Name()

	n, err := f.Download(ctx, tmp)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = errorx.WrapError("close temp file failed", closeErr)
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return n, err
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return n, errorx.WrapError(fmt.Sprintf("move log to %s failed", path), err)
	}
	return n, nil
}

// DefaultFileName 按时间生成日志文件名
func DefaultFileName(now time.Time) string {
	return fmt.Sprintf("vibemon-%s.log", now.Format("20060102-150405"))
}
