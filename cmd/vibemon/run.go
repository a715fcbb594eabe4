/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-16 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 05:58:26
 * @FilePath: \go-vibemon\cmd\vibemon\run.go
 * @Description: run 命令 - 会话、指标、告警转发与终端界面
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kamalyes/go-toolbox/pkg/syncx"
	vibemon "github.com/kamalyes/go-vibemon"
	"github.com/kamalyes/go-vibemon/dashboard"
	"github.com/kamalyes/go-vibemon/logfetch"
	"github.com/kamalyes/go-vibemon/metrics"
	"github.com/kamalyes/go-vibemon/relay"
	"github.com/spf13/cobra"
)

// 界面占用终端时日志写入此文件
const dashboardLogFile = "vibemon.log"

var headless bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to the device and show the live dashboard",
	Long: `Connect to the device and show the live dashboard.

Keys: tab/+/- edit thresholds, s save, d load defaults, r reset peak,
g request status, L download the device log, q quit. An emergency event
opens a prompt that must be acknowledged with enter.

With --headless no dashboard is shown; the session runs until interrupted
and is observable through logs, Prometheus metrics and the Redis relay.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runMonitor(ctx, cfg, headless)
	},
}

func init() {
	runCmd.Flags().BoolVar(&headless, "headless", false, "run without the dashboard")
}

func runMonitor(ctx context.Context, cfg *vibemon.Config, headless bool) error {
	if !headless && cfg.Logging.Enabled && cfg.Logging.Output != vibemon.LogOutputFile {
		cfg.Logging.Output = vibemon.LogOutputFile
		cfg.Logging.FilePath = dashboardLogFile
	}

	monitor, err := vibemon.NewMonitor(cfg)
	if err != nil {
		return err
	}
	log := monitor.Logger()

	if cfg.Metrics.Enabled {
		collector := metrics.NewCollector(monitor)
		monitor.AddListener(collector)
		shutdown := serveMetrics(cfg.Metrics.Addr, collector, log)
		defer shutdown()
	}

	if cfg.Relay.Enabled {
		r := relay.NewRedisRelay(relay.NewClient(cfg.Relay), cfg.Relay, cfg.Host).WithLogger(log)
		defer r.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := r.Ping(pingCtx); err != nil {
			log.WarnKV("Redis 不可用，告警转发将在恢复后生效", "addr", cfg.Relay.Addr, "error", err)
		}
		cancel()
		monitor.AddListener(r)
	}

	if headless {
		monitor.Start()
		<-ctx.Done()
		monitor.Stop()
		return nil
	}

	fetcher := logfetch.NewFetcher(cfg).WithLogger(log)
	download := func(ctx context.Context) (string, error) {
		path := logfetch.DefaultFileName(time.Now())
		if _, err := fetcher.DownloadToFile(ctx, path); err != nil {
			return "", err
		}
		return path, nil
	}
	return dashboard.Run(ctx, monitor, download)
}

// serveMetrics 在后台暴露 /metrics，返回关闭函数
func serveMetrics(addr string, collector *metrics.Collector, log vibemon.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	syncx.Go().
		OnPanic(func(r any) {
			log.ErrorKV("指标服务panic", "panic", r)
		}).
		Exec(func() {
			log.InfoKV("指标服务已启动", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.ErrorKV("指标服务退出", "addr", addr, "error", err)
			}
		})

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
