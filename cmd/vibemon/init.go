/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-16 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 06:04:55
 * @FilePath: \go-vibemon\cmd\vibemon\init.go
 * @Description: init 与 download-log 命令
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package main

import (
	"fmt"
	"time"

	vibemon "github.com/kamalyes/go-vibemon"
	"github.com/kamalyes/go-vibemon/logfetch"
	"github.com/spf13/cobra"
)

var (
	initForce  bool
	outputPath string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default vibemon.yaml",
	Long: `Write the default configuration to vibemon.yaml (or --config).

Examples:
  vibemon init
  vibemon init --host 192.168.4.1 --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = vibemon.DefaultConfigFile
		}

		cfg := vibemon.DefaultConfig()
		if hostFlag != "" {
			cfg.WithHost(hostFlag)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := vibemon.WriteConfig(path, cfg, initForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

var downloadLogCmd = &cobra.Command{
	Use:   "download-log",
	Short: "Download the device log over HTTP",
	Long: `Download the device log from http://<host>/api/download_log.

Use --output - to write to stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if outputPath == "-" {
			// 标准输出留给日志内容
			fetcher := logfetch.NewFetcher(cfg)
			_, err := fetcher.Download(cmd.Context(), cmd.OutOrStdout())
			return err
		}

		fetcher := logfetch.NewFetcher(cfg).WithLogger(vibemon.NewLogger(cfg.Logging))

		n, err := fetcher.DownloadToFile(cmd.Context(), outputPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved %d bytes to %s\n", n, outputPath)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")
	downloadLogCmd.Flags().StringVarP(&outputPath, "output", "o", logfetch.DefaultFileName(time.Now()), "output file, - for stdout")
}
