/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-12 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 19:02:31
 * @FilePath: \go-vibemon\logger.go
 * @Description: go-vibemon 日志接口，直接复用 go-logger
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package vibemon

import (
	"os"
	"strings"
	"time"

	"github.com/kamalyes/go-logger"
)

// LogPrefix 日志前缀
const LogPrefix = "[VIBEMON] "

// Logger 直接使用 go-logger.ILogger
type Logger = logger.ILogger

// NewDefaultLogger 创建默认配置的日志器
func NewDefaultLogger() Logger {
	config := logger.DefaultConfig().
		WithLevel(logger.INFO).
		WithPrefix(LogPrefix).
		WithShowCaller(false).
		WithColorful(true).
		WithTimeFormat(time.DateTime)

	return logger.NewLogger(config)
}

// NewNoOpLogger 创建空日志实例
func NewNoOpLogger() Logger {
	return logger.NewEmptyLogger()
}

// NewLogger 根据配置创建日志器，未启用时返回空日志器
func NewLogger(cfg LoggingConfig) Logger {
	if !cfg.Enabled {
		return NewNoOpLogger()
	}

	loggerConfig := logger.DefaultConfig().
		WithLevel(parseLogLevel(cfg.Level)).
		WithPrefix(LogPrefix).
		WithShowCaller(false).
		WithColorful(cfg.Output != LogOutputFile).
		WithTimeFormat(time.DateTime)

	switch cfg.Output {
	case LogOutputFile:
		if cfg.FilePath != "" {
			if cfg.MaxSize > 0 && cfg.MaxBackups > 0 {
				rotateWriter := logger.NewRotateWriter(
					cfg.FilePath,
					int64(cfg.MaxSize)*1024*1024, // MB → 字节
					cfg.MaxBackups,
				)
				loggerConfig = loggerConfig.WithOutput(rotateWriter)
			} else {
				loggerConfig = loggerConfig.WithOutput(logger.NewFileWriter(cfg.FilePath))
			}
		}
	default:
		loggerConfig = loggerConfig.WithOutput(logger.NewConsoleWriter(os.Stdout))
	}

	return logger.NewLogger(loggerConfig)
}

// parseLogLevel 解析日志级别字符串
func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logger.DEBUG
	case "info":
		return logger.INFO
	case "warn", "warning":
		return logger.WARN
	case "error":
		return logger.ERROR
	case "fatal":
		return logger.FATAL
	default:
		return logger.INFO
	}
}
