/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-16 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 05:41:09
 * @FilePath: \go-vibemon\cmd\vibemon\main.go
 * @Description: vibemon 命令行入口
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package main

import (
	"fmt"
	"os"
	"strings"

	vibemon "github.com/kamalyes/go-vibemon"
	"github.com/spf13/cobra"
)

// 构建时通过 ldflags 注入:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "none"
)

var (
	configPath string
	hostFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "vibemon",
	Short: "Live vibration telemetry monitor for the pico-vibmon sensor",
	Long: `vibemon connects to a vibration sensor over WebSocket, keeps a rolling
history of magnitudes, evaluates alert levels against configurable thresholds
and lets the operator push new thresholds or reset the device peak.

Configuration is read from vibemon.yaml (if present) and VIBEMON_* environment
variables, e.g. VIBEMON_HOST=192.168.4.1.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "vibemon %s (%s)\n", version, commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./vibemon.yaml when present)")
	rootCmd.PersistentFlags().StringVar(&hostFlag, "host", "", "device host name, overrides the config file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(downloadLogCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveConfigPath --config 优先，否则当前目录存在 vibemon.yaml 时使用它
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if _, err := os.Stat(vibemon.DefaultConfigFile); err == nil {
		return vibemon.DefaultConfigFile
	}
	return ""
}

// loadConfig 读取配置并应用命令行覆盖
func loadConfig() (*vibemon.Config, error) {
	cfg, err := vibemon.LoadConfig(resolveConfigPath())
	if err != nil {
		return nil, err
	}
	if h := strings.TrimSpace(hostFlag); h != "" {
		cfg.Host = h
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
