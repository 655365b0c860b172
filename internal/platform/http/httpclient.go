package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient はローカルゲートウェイ呼び出し用に設定されたHTTPクライアントを作成します。
//
// 設定:
//   - Proxy: 使用しない（ゲートウェイは同一ホスト上のプロセスのため）
//   - Dialer.Timeout: TCP接続タイムアウト
//   - MaxIdleConns: 1回の実行で使うセッションは1つなので少数に抑える
//   - Client.Timeout: リクエスト全体のタイムアウト（0の場合は無制限）
//
// 注意:
//   - ゲートウェイの接続待ち（EnsureConnected）は長時間ブロックし得るため、timeoutは十分に長く設定すること
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: nil,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:    4,
		IdleConnTimeout: 30 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
