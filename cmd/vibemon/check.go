/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-19 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 14:20:06
 * @FilePath: \go-vibemon\cmd\vibemon\check.go
 * @Description: check 命令 - 配置校验报告与自动修复
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package main

import (
	"fmt"

	"github.com/kamalyes/go-toolbox/pkg/errorx"
	vibemon "github.com/kamalyes/go-vibemon"
	"github.com/spf13/cobra"
)

var checkFix bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration and print a report",
	Long: `Validate vibemon.yaml (or --config) together with VIBEMON_* overrides
and print every finding. With --fix, auto-fixable findings are repaired
and the result is written back to the config file.

Examples:
  vibemon check
  vibemon check --config bench.yaml --fix`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		validator := vibemon.NewConfigValidator()
		fmt.Fprint(out, validator.ValidateAndReport(cfg))

		if checkFix {
			path := resolveConfigPath()
			if path == "" {
				return errorx.NewError(vibemon.ErrTypeConfigValidationFailed, "no config file to fix, run vibemon init first")
			}
			fixed, err := validator.AutoFix(cfg)
			if err != nil {
				return err
			}
			for _, f := range fixed {
				fmt.Fprintf(out, "fixed %s: %s\n", f.Field, f.Message)
			}
			if len(fixed) > 0 {
				if err := vibemon.WriteConfig(path, cfg, true); err != nil {
					return err
				}
				fmt.Fprintf(out, "wrote %s\n", path)
			}
		}
		return cfg.Validate()
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkFix, "fix", false, "repair auto-fixable findings and rewrite the config file")
}
