package sink

import (
	"context"
	"encoding/csv"
	"os"

	"github.com/pkg/errors"

	"stock_chartdata/internal/feature/chartdata/domain/entity"
)

// csvWriter はヘッダー付き・インデックス列なしのUTF-8 CSVを書き出します。
type csvWriter struct{}

func (csvWriter) write(_ context.Context, table *entity.Table, target entity.Target) error {
	f, err := os.Create(target.Path)
	if err != nil {
		return errors.Wrap(err, "create csv file")
	}

	w := csv.NewWriter(f)
	if err := w.Write(table.Columns); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "write csv header")
	}
	record := make([]string, len(table.Columns))
	for i, row := range table.Rows {
		for j := range record {
			record[j] = ""
			if j < len(row) {
				record[j] = formatCell(row[j])
			}
		}
		if err := w.Write(record); err != nil {
			_ = f.Close()
			return errors.Wrapf(err, "write csv row %d", i)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "flush csv")
	}
	return errors.Wrap(f.Close(), "close csv file")
}
