// Package sink はチャートテーブルをファイルに書き出すアダプターを提供します。
package sink

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"stock_chartdata/internal/feature/chartdata/domain"
	"stock_chartdata/internal/feature/chartdata/domain/entity"
	"stock_chartdata/internal/feature/chartdata/usecase"
)

// TimeLayout はCSV・ワークブックに書き出す時刻の形式です。
const TimeLayout = "2006-01-02 15:04:05"

// formatWriter は1つの出力形式を担当します。
type formatWriter interface {
	write(ctx context.Context, table *entity.Table, target entity.Target) error
}

// Writer は出力形式ごとのライターに処理を振り分けるSink実装です。
type Writer struct {
	writers map[entity.Format]formatWriter
	log     *zap.Logger
}

// WriterがSinkを実装していることをコンパイル時に検証します。
var _ usecase.Sink = (*Writer)(nil)

// NewWriter はcsv・xls・sqlite3に対応したWriterを生成します。
func NewWriter(log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{
		writers: map[entity.Format]formatWriter{
			entity.FormatCSV:     csvWriter{},
			entity.FormatXLS:     xlsxWriter{},
			entity.FormatSQLite3: sqliteWriter{},
		},
		log: log,
	}
}

// Write はtarget.Formatに応じてテーブルを書き出し、出力先をログに記録します。
func (w *Writer) Write(ctx context.Context, table *entity.Table, target entity.Target) error {
	fw, ok := w.writers[target.Format]
	if !ok {
		return errors.Wrapf(domain.ErrUnsupportedFormat, "format %q", target.Format)
	}
	if table == nil {
		table = &entity.Table{}
	}
	if err := fw.write(ctx, table, target); err != nil {
		return err
	}

	if target.Format == entity.FormatSQLite3 {
		w.log.Info("Saved data to file with tablename",
			zap.String("path", target.Path), zap.String("table", target.TableName()))
		return nil
	}
	w.log.Info("Saved data to file", zap.String("path", target.Path))
	return nil
}

// formatCell はセルの値をテキスト表現に変換します。nilは空文字になります。
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case time.Time:
		return x.Format(TimeLayout)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
