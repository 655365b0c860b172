// Package usecase はチャートデータの取得・正規化・出力パイプラインを実装します。
package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"stock_chartdata/internal/feature/chartdata/domain"
	"stock_chartdata/internal/feature/chartdata/domain/entity"
)

// DataSource はゲートウェイとの1回分のセッションを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type DataSource interface {
	// EnsureConnected はゲートウェイがブローカーに接続済みになるまで待機します。
	EnsureConnected(ctx context.Context) error
	// GetDailyStockData は日足データを取得します。startが最新側、endが古い側（含まない）の境界です。
	GetDailyStockData(ctx context.Context, code string, start, end *time.Time) (*entity.Table, error)
	// GetMinuteStockData は分足データを取得します。
	GetMinuteStockData(ctx context.Context, code string, interval entity.Interval, start, end *time.Time) (*entity.Table, error)
	// Close はセッションを解放します。
	Close() error
}

// DataSourceOpener はゲートウェイセッションを開きます。portが0の場合は設定値を使用します。
type DataSourceOpener interface {
	Open(ctx context.Context, port int) (DataSource, error)
}

// Sink は正規化済みテーブルを指定された形式でファイルに書き出します。
type Sink interface {
	Write(ctx context.Context, table *entity.Table, target entity.Target) error
}

// ExportResult は1回のエクスポートの結果です。
type ExportResult struct {
	Output       string                     // 出力先パス
	Rows         int                        // 書き出した行数
	NormalizeErr *domain.NormalizationError // 正規化に失敗した場合のエラー（致命的ではない）
}

// ExportUsecase は検証 → 取得 → 正規化 → 出力 を順に実行します。
type ExportUsecase struct {
	opener DataSourceOpener
	sink   Sink
	log    *zap.Logger
}

// NewExportUsecase は新しい ExportUsecase を作成します。
func NewExportUsecase(opener DataSourceOpener, sink Sink, log *zap.Logger) *ExportUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExportUsecase{opener: opener, sink: sink, log: log}
}

// ExportDaily は日足データを取得してファイルに出力します。
func (u *ExportUsecase) ExportDaily(ctx context.Context, q entity.Query) (*ExportResult, error) {
	q = withDefaults(q)
	if err := ValidateDaily(q); err != nil {
		return nil, err
	}
	return u.run(ctx, q, func(ctx context.Context, ds DataSource) (*entity.Table, error) {
		return ds.GetDailyStockData(ctx, q.Code, q.Start, q.End)
	})
}

// ExportMinute は分足データを取得してファイルに出力します。
func (u *ExportUsecase) ExportMinute(ctx context.Context, q entity.Query) (*ExportResult, error) {
	q = withDefaults(q)
	if err := ValidateMinute(q); err != nil {
		return nil, err
	}
	return u.run(ctx, q, func(ctx context.Context, ds DataSource) (*entity.Table, error) {
		return ds.GetMinuteStockData(ctx, q.Code, q.Interval, q.Start, q.End)
	})
}

func withDefaults(q entity.Query) entity.Query {
	if q.Format == "" {
		q.Format = entity.FormatCSV
	}
	return q
}

func (u *ExportUsecase) run(ctx context.Context, q entity.Query, query func(context.Context, DataSource) (*entity.Table, error)) (*ExportResult, error) {
	output := ResolveOutputPath(q)

	table, err := u.fetch(ctx, q, query)
	if err != nil {
		return nil, err
	}

	res := Normalize(table)
	if res.Err != nil {
		// 正規化の失敗は致命的ではないため、記録したうえで出力処理を続行する
		u.log.Warn("failed to normalize chart data",
			zap.String("column", res.Err.Column),
			zap.Error(res.Err),
			zap.Strings("columns", res.Table.Columns),
			zap.Int("rows", res.Table.Len()),
		)
	}

	target := entity.Target{Path: output, Format: q.Format, Code: q.Code}
	if err := u.sink.Write(ctx, res.Table, target); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSink, err)
	}

	return &ExportResult{Output: output, Rows: res.Table.Len(), NormalizeErr: res.Err}, nil
}

// fetch はセッションを開き、接続を確認してからクエリを1回だけ実行します。
// セッションはどの経路で抜けても必ず閉じられます。
func (u *ExportUsecase) fetch(ctx context.Context, q entity.Query, query func(context.Context, DataSource) (*entity.Table, error)) (table *entity.Table, err error) {
	ds, err := u.opener.Open(ctx, q.Port)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConnectivity, err)
	}
	defer func() {
		if cerr := ds.Close(); cerr != nil {
			u.log.Warn("failed to close gateway session", zap.Error(cerr))
		}
	}()

	if err := ds.EnsureConnected(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConnectivity, err)
	}

	u.log.Debug("querying chart data",
		zap.String("code", q.Code),
		zap.Int("interval", int(q.Interval)),
		zap.Timep("start", q.Start),
		zap.Timep("end", q.End),
	)
	table, err = query(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRemoteQuery, err)
	}
	if table == nil {
		table = &entity.Table{}
	}
	return table, nil
}
