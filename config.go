/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-12 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 19:44:10
 * @FilePath: \go-vibemon\config.go
 * @Description: Config 结构体 - 默认值、链式设置、文件加载与写出
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package vibemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	wscconfig "github.com/kamalyes/go-config/pkg/wsc"
	"github.com/kamalyes/go-toolbox/pkg/errorx"
	"github.com/kamalyes/go-vibemon/client"
	"github.com/kamalyes/go-vibemon/models"
	"github.com/kamalyes/go-vibemon/series"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// 配置文件与环境变量
const (
	DefaultConfigFile = "vibemon.yaml"
	EnvPrefix         = "VIBEMON"
	DefaultHost       = "pico-vibmon.local"
	LogOutputConsole  = "console"
	LogOutputFile     = "file"
)

// LoggingConfig 日志配置
type LoggingConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	Level      string `mapstructure:"level" yaml:"level"`
	Output     string `mapstructure:"output" yaml:"output"` // console | file
	FilePath   string `mapstructure:"file_path" yaml:"file_path"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
}

// LogDownloadConfig 设备日志下载（HTTP 旁路通道）
type LogDownloadConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"` // 为空时使用 http://<host>
	Path    string        `mapstructure:"path" yaml:"path"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// MetricsConfig Prometheus 指标
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr"`
}

// RelayConfig 告警转发到 Redis
type RelayConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
	Channel  string `mapstructure:"channel" yaml:"channel"`
}

// Config 监控会话配置
type Config struct {
	Host             string                 `mapstructure:"host" yaml:"host"`
	ReconnectDelay   time.Duration          `mapstructure:"reconnect_delay" yaml:"reconnect_delay"`
	AutoReconnect    bool                   `mapstructure:"auto_reconnect" yaml:"auto_reconnect"`
	HistorySize      int                    `mapstructure:"history_size" yaml:"history_size"`
	WriteTimeout     time.Duration          `mapstructure:"write_timeout" yaml:"write_timeout"`
	MaxMessageSize   int64                  `mapstructure:"max_message_size" yaml:"max_message_size"`
	InboxMinCapacity int                    `mapstructure:"inbox_min_capacity" yaml:"inbox_min_capacity"`
	InboxMaxCapacity int                    `mapstructure:"inbox_max_capacity" yaml:"inbox_max_capacity"`
	Thresholds       models.ThresholdConfig `mapstructure:"thresholds" yaml:"thresholds"`
	LogDownload      LogDownloadConfig      `mapstructure:"log_download" yaml:"log_download"`
	Logging          LoggingConfig          `mapstructure:"logging" yaml:"logging"`
	Metrics          MetricsConfig          `mapstructure:"metrics" yaml:"metrics"`
	Relay            RelayConfig            `mapstructure:"relay" yaml:"relay"`
}

// DefaultConfig 创建默认配置
func DefaultConfig() *Config {
	return &Config{
		Host:             DefaultHost,
		ReconnectDelay:   client.DefaultReconnectDelay,
		AutoReconnect:    true,
		HistorySize:      series.DefaultCapacity,
		WriteTimeout:     client.DefaultWriteTimeout,
		MaxMessageSize:   client.DefaultMaxMessageSize,
		InboxMinCapacity: client.DefaultInboxMinCapacity,
		InboxMaxCapacity: client.DefaultInboxMaxCapacity,
		Thresholds:       models.DefaultThresholds(),
		LogDownload: LogDownloadConfig{
			Path:    "/api/download_log",
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
			Output:  LogOutputConsole,
		},
		Metrics: MetricsConfig{
			Addr: ":9109",
		},
		Relay: RelayConfig{
			Addr:    "127.0.0.1:6379",
			Channel: "vibemon:alerts",
		},
	}
}

// WithHost 设置设备主机名并返回当前配置对象
func (c *Config) WithHost(host string) *Config {
	c.Host = host
	return c
}

// WithReconnectDelay 设置重连间隔并返回当前配置对象
func (c *Config) WithReconnectDelay(d time.Duration) *Config {
	c.ReconnectDelay = d
	return c
}

// WithAutoReconnect 设置是否自动重连并返回当前配置对象
func (c *Config) WithAutoReconnect(enabled bool) *Config {
	c.AutoReconnect = enabled
	return c
}

// WithHistorySize 设置历史采样点数并返回当前配置对象
func (c *Config) WithHistorySize(n int) *Config {
	c.HistorySize = n
	return c
}

// WithWriteTimeout 设置写超时并返回当前配置对象
func (c *Config) WithWriteTimeout(d time.Duration) *Config {
	c.WriteTimeout = d
	return c
}

// WithThresholds 设置初始阈值并返回当前配置对象
func (c *Config) WithThresholds(t models.ThresholdConfig) *Config {
	c.Thresholds = t
	return c
}

// WithLogging 设置日志配置并返回当前配置对象
func (c *Config) WithLogging(l LoggingConfig) *Config {
	c.Logging = l
	return c
}

// WithMetrics 设置指标配置并返回当前配置对象
func (c *Config) WithMetrics(m MetricsConfig) *Config {
	c.Metrics = m
	return c
}

// WithRelay 设置告警转发配置并返回当前配置对象
func (c *Config) WithRelay(r RelayConfig) *Config {
	c.Relay = r
	return c
}

// DeviceURL 设备流地址
func (c *Config) DeviceURL() string {
	return client.DeviceURL(c.Host)
}

// LogBaseURL 日志下载地址前缀
func (c *Config) LogBaseURL() string {
	if c.LogDownload.BaseURL != "" {
		return strings.TrimRight(c.LogDownload.BaseURL, "/")
	}
	return fmt.Sprintf("http://%s", c.Host)
}

// TransportConfig 投影为 go-config 的 WSC 传输参数（恒定间隔重连）
func (c *Config) TransportConfig() *wscconfig.WSC {
	cfg := client.DefaultTransportConfig()
	cfg.WriteTimeout = c.WriteTimeout
	cfg.MaxMessageSize = c.MaxMessageSize
	cfg.MessageBufferSize = c.InboxMinCapacity
	cfg.MinRecTime = c.ReconnectDelay
	cfg.MaxRecTime = c.ReconnectDelay
	cfg.RecFactor = 1
	cfg.AutoReconnect = c.AutoReconnect
	return cfg
}

// LoadConfig 读取配置：默认值 < 配置文件 < VIBEMON_ 环境变量
// path 为空时只使用默认值和环境变量
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errorx.WrapError(fmt.Sprintf("read config %s failed", path), err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errorx.WrapError("decode config failed", err)
	}
	return cfg, nil
}

// WriteConfig 以 YAML 写出配置，目标已存在且 overwrite=false 时报错
func WriteConfig(path string, cfg *Config, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errorx.NewError(models.ErrTypeConfigValidationFailed, fmt.Sprintf("%s already exists", path))
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errorx.WrapError("encode config failed", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errorx.WrapError("create config dir failed", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errorx.WrapError(fmt.Sprintf("write config %s failed", path), err)
	}
	return nil
}

// setDefaults 注册全部键，使环境变量能覆盖未出现在文件中的字段
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("host", d.Host)
	v.SetDefault("reconnect_delay", d.ReconnectDelay)
	v.SetDefault("auto_reconnect", d.AutoReconnect)
	v.SetDefault("history_size", d.HistorySize)
	v.SetDefault("write_timeout", d.WriteTimeout)
	v.SetDefault("max_message_size", d.MaxMessageSize)
	v.SetDefault("inbox_min_capacity", d.InboxMinCapacity)
	v.SetDefault("inbox_max_capacity", d.InboxMaxCapacity)
	v.SetDefault("thresholds.warning", d.Thresholds.Warning)
	v.SetDefault("thresholds.critical", d.Thresholds.Critical)
	v.SetDefault("thresholds.emergency", d.Thresholds.Emergency)
	v.SetDefault("log_download.base_url", d.LogDownload.BaseURL)
	v.SetDefault("log_download.path", d.LogDownload.Path)
	v.SetDefault("log_download.timeout", d.LogDownload.Timeout)
	v.SetDefault("logging.enabled", d.Logging.Enabled)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.output", d.Logging.Output)
	v.SetDefault("logging.file_path", d.Logging.FilePath)
	v.SetDefault("logging.max_size", d.Logging.MaxSize)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
	v.SetDefault("relay.enabled", d.Relay.Enabled)
	v.SetDefault("relay.addr", d.Relay.Addr)
	v.SetDefault("relay.password", d.Relay.Password)
	v.SetDefault("relay.db", d.Relay.DB)
	v.SetDefault("relay.channel", d.Relay.Channel)
}
