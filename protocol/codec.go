/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-12 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 20:40:02
 * @FilePath: \go-vibemon\protocol\codec.go
 * @Description: 出站命令编码
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package protocol

import (
	"github.com/kamalyes/go-toolbox/pkg/errorx"
	"github.com/kamalyes/go-toolbox/pkg/json"
	"github.com/kamalyes/go-vibemon/models"
)

// EncodeCommand 把命令编码为单个 JSON 文本帧
func EncodeCommand(cmd models.Command) ([]byte, error) {
	if !cmd.Type.IsValid() {
		return nil, errorx.NewError(models.ErrTypeEncodeFailed, cmd.Type, "unknown command type")
	}
	if cmd.Type == models.CommandTypeConfig && cmd.Thresholds == nil {
		return nil, errorx.NewError(models.ErrTypeEncodeFailed, cmd.Type, "thresholds required")
	}

	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, errorx.NewError(models.ErrTypeEncodeFailed, cmd.Type, err)
	}
	return data, nil
}

// MustEncodeCommand 编码失败时 panic，仅用于固定命令
func MustEncodeCommand(cmd models.Command) []byte {
	data, err := EncodeCommand(cmd)
	if err != nil {
		panic(err)
	}
	return data
}
