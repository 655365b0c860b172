// Package dto はゲートウェイAPIレスポンスのデータ転送オブジェクトを定義します。
package dto

// StatusResponse はすべてのレスポンスに共通するステータス部分です。
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// StatusInfo は埋め込み先のレスポンスからステータス部分を取り出します。
func (r StatusResponse) StatusInfo() StatusResponse { return r }

// SessionResponse は POST /v1/sessions のレスポンスです。
type SessionResponse struct {
	StatusResponse
	SessionID string `json:"session_id"`
}

// ConnectResponse は POST /v1/sessions/{id}/connect のレスポンスです。
type ConnectResponse struct {
	StatusResponse
	Connected bool `json:"connected"`
}

// ChartResponse は日足・分足チャートのレスポンスです。
// rowsの各セルは文字列または数値で返されます。
type ChartResponse struct {
	StatusResponse
	Code    string   `json:"code"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}
