/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-12 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 20:02:57
 * @FilePath: \go-vibemon\config_validator.go
 * @Description: 配置验证和自动修复机制
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package vibemon

import (
	"fmt"
	"strings"

	"github.com/kamalyes/go-toolbox/pkg/errorx"
	"github.com/kamalyes/go-vibemon/client"
	"github.com/kamalyes/go-vibemon/models"
	"github.com/kamalyes/go-vibemon/series"
)

// ValidationLevel 验证级别
type ValidationLevel int

const (
	ValidationLevelInfo     ValidationLevel = 1 // 信息级别
	ValidationLevelWarning  ValidationLevel = 2 // 警告级别
	ValidationLevelError    ValidationLevel = 3 // 错误级别
	ValidationLevelCritical ValidationLevel = 4 // 严重级别
)

// ValidationResult 验证结果
type ValidationResult struct {
	Level       ValidationLevel     `json:"level"`
	Field       string              `json:"field"`
	Message     string              `json:"message"`
	Suggestion  string              `json:"suggestion"`
	AutoFixable bool                `json:"auto_fixable"`
	FixAction   func(*Config) error `json:"-"`
}

// ValidationRule 验证规则接口
type ValidationRule interface {
	// Validate 验证配置
	Validate(config *Config) []ValidationResult

	// GetName 获取规则名称
	GetName() string
}

// ConfigValidator 配置验证器
type ConfigValidator struct {
	rules []ValidationRule
}

// NewConfigValidator 创建配置验证器
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		rules: []ValidationRule{
			&ConnectionConfigRule{},
			&ThresholdConfigRule{},
			&LoggingConfigRule{},
			&SideChannelConfigRule{},
		},
	}
}

// AddRule 添加验证规则
func (cv *ConfigValidator) AddRule(rule ValidationRule) {
	cv.rules = append(cv.rules, rule)
}

// Validate 验证配置
func (cv *ConfigValidator) Validate(config *Config) []ValidationResult {
	var results []ValidationResult
	for _, rule := range cv.rules {
		results = append(results, rule.Validate(config)...)
	}
	return results
}

// AutoFix 自动修复可修复的问题，返回已修复项
func (cv *ConfigValidator) AutoFix(config *Config) ([]ValidationResult, error) {
	fixed := make([]ValidationResult, 0)
	for _, result := range cv.Validate(config) {
		if !result.AutoFixable || result.FixAction == nil {
			continue
		}
		if err := result.FixAction(config); err != nil {
			return fixed, errorx.NewError(models.ErrTypeConfigValidationFailed, fmt.Sprintf("fix %s: %v", result.Field, err))
		}
		fixed = append(fixed, ValidationResult{
			Level:      ValidationLevelInfo,
			Field:      result.Field,
			Message:    fmt.Sprintf("已自动修复: %s", result.Message),
			Suggestion: result.Suggestion,
		})
	}
	return fixed, nil
}

// ValidateAndReport 验证并生成报告
func (cv *ConfigValidator) ValidateAndReport(config *Config) string {
	var report strings.Builder
	report.WriteString("配置验证报告\n")
	report.WriteString("================\n\n")

	counts := map[ValidationLevel]int{}
	for _, result := range cv.Validate(config) {
		counts[result.Level]++
		report.WriteString(fmt.Sprintf("[%s] %s: %s\n", levelLabel(result.Level), result.Field, result.Message))
		if result.Suggestion != "" {
			report.WriteString(fmt.Sprintf("   建议: %s\n", result.Suggestion))
		}
		if result.AutoFixable {
			report.WriteString("   可自动修复\n")
		}
		report.WriteString("\n")
	}

	report.WriteString(fmt.Sprintf("汇总: 严重=%d, 错误=%d, 警告=%d, 信息=%d\n",
		counts[ValidationLevelCritical], counts[ValidationLevelError],
		counts[ValidationLevelWarning], counts[ValidationLevelInfo]))
	return report.String()
}

func levelLabel(level ValidationLevel) string {
	switch level {
	case ValidationLevelCritical:
		return "严重"
	case ValidationLevelError:
		return "错误"
	case ValidationLevelWarning:
		return "警告"
	default:
		return "信息"
	}
}

// Validate 错误及以上级别的问题汇总为 ErrTypeConfigValidationFailed
func (c *Config) Validate() error {
	var problems []string
	for _, r := range NewConfigValidator().Validate(c) {
		if r.Level >= ValidationLevelError {
			problems = append(problems, fmt.Sprintf("%s: %s", r.Field, r.Message))
		}
	}
	if len(problems) > 0 {
		return errorx.NewError(models.ErrTypeConfigValidationFailed, strings.Join(problems, "; "))
	}
	return nil
}

// ========== 具体验证规则实现 ==========

// ConnectionConfigRule 连接参数验证规则
type ConnectionConfigRule struct{}

func (r *ConnectionConfigRule) GetName() string {
	return "ConnectionConfig"
}

func (r *ConnectionConfigRule) Validate(config *Config) []ValidationResult {
	var results []ValidationResult

	if strings.TrimSpace(config.Host) == "" {
		results = append(results, ValidationResult{
			Level:       ValidationLevelCritical,
			Field:       "Host",
			Message:     "设备主机名未设置",
			Suggestion:  fmt.Sprintf("设置为设备的 mDNS 名称，默认 %s", DefaultHost),
			AutoFixable: true,
			FixAction: func(c *Config) error {
				c.Host = DefaultHost
				return nil
			},
		})
	} else if strings.Contains(config.Host, ":") && !strings.HasPrefix(config.Host, "[") {
		results = append(results, ValidationResult{
			Level:      ValidationLevelWarning,
			Field:      "Host",
			Message:    fmt.Sprintf("主机名包含端口: %s", config.Host),
			Suggestion: fmt.Sprintf("设备端口固定为 %d，只需填写主机名", client.DevicePort),
		})
	}

	if config.ReconnectDelay <= 0 {
		results = append(results, ValidationResult{
			Level:       ValidationLevelError,
			Field:       "ReconnectDelay",
			Message:     "重连间隔必须大于0",
			Suggestion:  "推荐设置为2秒",
			AutoFixable: true,
			FixAction: func(c *Config) error {
				c.ReconnectDelay = client.DefaultReconnectDelay
				return nil
			},
		})
	}

	if config.HistorySize < 1 {
		results = append(results, ValidationResult{
			Level:       ValidationLevelError,
			Field:       "HistorySize",
			Message:     fmt.Sprintf("历史点数无效: %d", config.HistorySize),
			Suggestion:  fmt.Sprintf("推荐设置为%d", series.DefaultCapacity),
			AutoFixable: true,
			FixAction: func(c *Config) error {
				c.HistorySize = series.DefaultCapacity
				return nil
			},
		})
	}

	if config.WriteTimeout <= 0 {
		results = append(results, ValidationResult{
			Level:       ValidationLevelError,
			Field:       "WriteTimeout",
			Message:     "写超时必须大于0",
			AutoFixable: true,
			FixAction: func(c *Config) error {
				c.WriteTimeout = client.DefaultWriteTimeout
				return nil
			},
		})
	}

	if config.MaxMessageSize <= 0 {
		results = append(results, ValidationResult{
			Level:       ValidationLevelError,
			Field:       "MaxMessageSize",
			Message:     "最大消息长度必须大于0",
			AutoFixable: true,
			FixAction: func(c *Config) error {
				c.MaxMessageSize = client.DefaultMaxMessageSize
				return nil
			},
		})
	}

	if config.InboxMinCapacity <= 0 || config.InboxMaxCapacity < config.InboxMinCapacity {
		results = append(results, ValidationResult{
			Level:       ValidationLevelWarning,
			Field:       "InboxCapacity",
			Message:     fmt.Sprintf("事件队列容量无效: min=%d max=%d", config.InboxMinCapacity, config.InboxMaxCapacity),
			AutoFixable: true,
			FixAction: func(c *Config) error {
				c.InboxMinCapacity = client.DefaultInboxMinCapacity
				c.InboxMaxCapacity = client.DefaultInboxMaxCapacity
				return nil
			},
		})
	}

	return results
}

// ThresholdConfigRule 初始阈值验证规则
type ThresholdConfigRule struct{}

func (r *ThresholdConfigRule) GetName() string {
	return "ThresholdConfig"
}

func (r *ThresholdConfigRule) Validate(config *Config) []ValidationResult {
	if err := config.Thresholds.Validate(); err != nil {
		return []ValidationResult{{
			Level:       ValidationLevelError,
			Field:       "Thresholds",
			Message:     err.Error(),
			Suggestion:  "需满足 warning < critical < emergency",
			AutoFixable: true,
			FixAction: func(c *Config) error {
				c.Thresholds = models.DefaultThresholds()
				return nil
			},
		}}
	}
	return nil
}

// LoggingConfigRule 日志配置验证规则
type LoggingConfigRule struct{}

func (r *LoggingConfigRule) GetName() string {
	return "LoggingConfig"
}

func (r *LoggingConfigRule) Validate(config *Config) []ValidationResult {
	var results []ValidationResult
	if !config.Logging.Enabled {
		return results
	}

	switch config.Logging.Output {
	case "", LogOutputConsole:
	case LogOutputFile:
		if config.Logging.FilePath == "" {
			results = append(results, ValidationResult{
				Level:      ValidationLevelError,
				Field:      "Logging.FilePath",
				Message:    "文件输出未指定路径",
				Suggestion: "设置 logging.file_path，或改用 console 输出",
			})
		}
	default:
		results = append(results, ValidationResult{
			Level:       ValidationLevelWarning,
			Field:       "Logging.Output",
			Message:     fmt.Sprintf("未知的日志输出: %s", config.Logging.Output),
			AutoFixable: true,
			FixAction: func(c *Config) error {
				c.Logging.Output = LogOutputConsole
				return nil
			},
		})
	}
	return results
}

// SideChannelConfigRule 指标、告警转发、日志下载验证规则
type SideChannelConfigRule struct{}

func (r *SideChannelConfigRule) GetName() string {
	return "SideChannelConfig"
}

func (r *SideChannelConfigRule) Validate(config *Config) []ValidationResult {
	var results []ValidationResult

	if config.Metrics.Enabled && config.Metrics.Addr == "" {
		results = append(results, ValidationResult{
			Level:       ValidationLevelError,
			Field:       "Metrics.Addr",
			Message:     "启用指标但未设置监听地址",
			AutoFixable: true,
			FixAction: func(c *Config) error {
				c.Metrics.Addr = DefaultConfig().Metrics.Addr
				return nil
			},
		})
	}

	if config.Relay.Enabled {
		if config.Relay.Addr == "" {
			results = append(results, ValidationResult{
				Level:   ValidationLevelError,
				Field:   "Relay.Addr",
				Message: "启用告警转发但未设置 Redis 地址",
			})
		}
		if config.Relay.Channel == "" {
			results = append(results, ValidationResult{
				Level:       ValidationLevelWarning,
				Field:       "Relay.Channel",
				Message:     "告警频道为空",
				AutoFixable: true,
				FixAction: func(c *Config) error {
					c.Relay.Channel = DefaultConfig().Relay.Channel
					return nil
				},
			})
		}
	}

	if !strings.HasPrefix(config.LogDownload.Path, "/") {
		results = append(results, ValidationResult{
			Level:       ValidationLevelWarning,
			Field:       "LogDownload.Path",
			Message:     fmt.Sprintf("日志路径应以 / 开头: %q", config.LogDownload.Path),
			AutoFixable: true,
			FixAction: func(c *Config) error {
				c.LogDownload.Path = "/" + strings.TrimLeft(c.LogDownload.Path, "/")
				return nil
			},
		})
	}

	return results
}
