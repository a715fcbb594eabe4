/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-12 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-18 22:47:19
 * @FilePath: \go-vibemon\client\websocket.go
 * @Description: 底层 WebSocket 传输 - 拨号器抽象与地址构造
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package client

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

// DevicePort 设备流端口（固定）
const DevicePort = 81

// Dialer 建立 WebSocket 连接，*websocket.Dialer 满足该接口
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, requestHeader http.Header) (*websocket.Conn, *http.Response, error)
}

// NewDialer 创建带握手超时的默认拨号器
func NewDialer(handshakeTimeout time.Duration) *websocket.Dialer {
	return &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: handshakeTimeout,
	}
}

// DeviceURL 根据主机名构造设备流地址 ws://<host>:81/
func DeviceURL(host string) string {
	return fmt.Sprintf("ws://%s/", net.JoinHostPort(host, strconv.Itoa(DevicePort)))
}

// DefaultUpgrader 测试设备使用的升级器
var DefaultUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// IsNormalClose 检查WebSocket关闭是否为正常关闭
func IsNormalClose(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}

// closeGracefully 发送关闭帧后断开连接
func closeGracefully(conn *websocket.Conn, reason string) {
	if conn == nil {
		return
	}
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason), deadline)
	_ = conn.Close()
}
