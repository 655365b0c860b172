package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"stock_chartdata/internal/feature/chartdata/adapters/gateway/dto"
	"stock_chartdata/internal/feature/chartdata/domain/entity"
	"stock_chartdata/internal/feature/chartdata/usecase"
	"stock_chartdata/internal/shared/ratelimiter"
)

const (
	dailyDateLayout  = "20060102"
	minuteDateLayout = "20060102150405"

	sessionHeader = "X-Session-ID"
)

// 数値セルを json.Number のまま受け取り、価格の丸めを防ぐ
var jsonAPI = sonic.Config{UseNumber: true}.Froze()

// Opener はゲートウェイのセッションを開くDataSourceOpener実装です。
type Opener struct {
	cfg Config
	api api
	log *zap.Logger
}

// OpenerがDataSourceOpenerを実装していることをコンパイル時に検証します。
var _ usecase.DataSourceOpener = (*Opener)(nil)

// NewOpener は指定された設定とHTTPクライアントでOpenerを生成します。
// 同じOpenerから開いたセッションはリクエスト頻度の制限を共有します。
func NewOpener(cfg Config, client *http.Client, log *zap.Logger) *Opener {
	if log == nil {
		log = zap.NewNop()
	}
	limiter := ratelimiter.NewRateLimiter(cfg.RateLimit, cfg.RateInterval, log.Named("ratelimit"))
	return &Opener{cfg: cfg, api: api{client: client, limiter: limiter}, log: log}
}

// Open はゲートウェイに新しいセッションを作成します。
func (o *Opener) Open(ctx context.Context, port int) (usecase.DataSource, error) {
	base := o.cfg.BaseURL(port)

	var body dto.SessionResponse
	if err := o.api.do(ctx, http.MethodPost, base+"/v1/sessions", "", &body); err != nil {
		return nil, errors.Wrapf(err, "open gateway session at %s", base)
	}
	if body.SessionID == "" {
		return nil, errors.Errorf("open gateway session at %s: empty session id", base)
	}

	o.log.Debug("gateway session opened", zap.String("url", base), zap.String("session", body.SessionID))
	return &Session{baseURL: base, id: body.SessionID, api: o.api, log: o.log}, nil
}

// Session はゲートウェイとの1回分のセッションです。利用後は必ずCloseを呼び出してください。
type Session struct {
	baseURL string
	id      string
	api     api
	log     *zap.Logger
	closed  bool
}

// SessionがDataSourceを実装していることをコンパイル時に検証します。
var _ usecase.DataSource = (*Session)(nil)

// EnsureConnected はゲートウェイがブローカーへ接続するまで待機します。
func (s *Session) EnsureConnected(ctx context.Context) error {
	var body dto.ConnectResponse
	if err := s.api.do(ctx, http.MethodPost, s.sessionURL()+"/connect", s.id, &body); err != nil {
		return errors.Wrap(err, "ensure connected")
	}
	if !body.Connected {
		return errors.New("ensure connected: gateway reports not connected")
	}
	return nil
}

// GetDailyStockData は日足チャートを取得します。
func (s *Session) GetDailyStockData(ctx context.Context, code string, start, end *time.Time) (*entity.Table, error) {
	q := url.Values{}
	setDate(q, "start", start, dailyDateLayout)
	setDate(q, "end", end, dailyDateLayout)
	return s.chart(ctx, code, "daily", q)
}

// GetMinuteStockData は分足チャートを取得します。
func (s *Session) GetMinuteStockData(ctx context.Context, code string, interval entity.Interval, start, end *time.Time) (*entity.Table, error) {
	q := url.Values{}
	q.Set("interval", strconv.Itoa(int(interval)))
	setDate(q, "start", start, minuteDateLayout)
	setDate(q, "end", end, minuteDateLayout)
	return s.chart(ctx, code, "minute", q)
}

// Close はセッションを削除し、アイドル接続を解放します。複数回呼び出しても安全です。
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	defer s.api.client.CloseIdleConnections()

	// 呼び出し元のctxがキャンセル済みでもセッションは削除する
	var body dto.StatusResponse
	if err := doJSON(context.Background(), s.api.client, http.MethodDelete, s.sessionURL(), s.id, &body); err != nil {
		return errors.Wrapf(err, "close gateway session %s", s.id)
	}
	s.log.Debug("gateway session closed", zap.String("session", s.id))
	return nil
}

func (s *Session) sessionURL() string {
	return s.baseURL + "/v1/sessions/" + url.PathEscape(s.id)
}

func (s *Session) chart(ctx context.Context, code, kind string, q url.Values) (*entity.Table, error) {
	u := fmt.Sprintf("%s/v1/stocks/%s/chart/%s", s.baseURL, url.PathEscape(code), kind)
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}

	var body dto.ChartResponse
	if err := s.api.do(ctx, http.MethodGet, u, s.id, &body); err != nil {
		return nil, errors.Wrapf(err, "get %s chart for %q", kind, code)
	}

	for i, row := range body.Rows {
		if len(row) != len(body.Columns) {
			return nil, errors.Errorf("get %s chart for %q: row %d has %d cells, want %d", kind, code, i, len(row), len(body.Columns))
		}
	}
	if body.Rows == nil {
		body.Rows = [][]any{}
	}
	return &entity.Table{Columns: body.Columns, Rows: body.Rows}, nil
}

func setDate(q url.Values, key string, t *time.Time, layout string) {
	if t == nil {
		return
	}
	q.Set(key, t.Format(layout))
}

// statusHolder はレスポンスのstatus/messageを取り出すためのインターフェースです。
type statusHolder interface {
	StatusInfo() dto.StatusResponse
}

// api はリクエスト頻度を制限しながらゲートウェイを呼び出します。
type api struct {
	client  *http.Client
	limiter ratelimiter.Limiter
}

func (a api) do(ctx context.Context, method, u, sessionID string, out statusHolder) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}
	return doJSON(ctx, a.client, method, u, sessionID, out)
}

func doJSON(ctx context.Context, client *http.Client, method, u, sessionID string, out statusHolder) error {
	// リクエストオブジェクトを作成
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if sessionID != "" {
		req.Header.Set(sessionHeader, sessionID)
	}

	// リクエストを実行
	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.StatusCode >= 400 {
		var st dto.StatusResponse
		if jsonAPI.NewDecoder(res.Body).Decode(&st) == nil && st.Message != "" {
			return fmt.Errorf("gateway http %d: %s", res.StatusCode, st.Message)
		}
		return fmt.Errorf("gateway http %d", res.StatusCode)
	}

	if res.StatusCode == http.StatusNoContent {
		return nil
	}

	// JSONレスポンスをDTOにデコード
	if err := jsonAPI.NewDecoder(res.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode gateway response")
	}
	if st := out.StatusInfo(); strings.EqualFold(st.Status, "error") {
		return fmt.Errorf("gateway: %s", st.Message)
	}
	return nil
}
