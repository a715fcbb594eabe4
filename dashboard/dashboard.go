/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-15 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 04:56:40
 * @FilePath: \go-vibemon\dashboard\dashboard.go
 * @Description: 终端界面入口 - 会话在后台运行，界面占用主协程
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package dashboard

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	vibemon "github.com/kamalyes/go-vibemon"
)

// Run 启动会话与界面，界面退出或 ctx 取消时停止会话
func Run(ctx context.Context, monitor *vibemon.Monitor, downloader LogDownloader) error {
	program := tea.NewProgram(
		NewModel(monitor, downloader),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	monitor.AddListener(NewBridge(program))
	monitor.Start()
	defer monitor.Stop()

	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
