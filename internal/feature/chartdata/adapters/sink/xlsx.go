package sink

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/tealeg/xlsx"

	"stock_chartdata/internal/feature/chartdata/domain/entity"
)

// SheetName は書き出すワークシート名です。
const SheetName = "Sheet1"

// DateTimeFormat は取引時刻セルの表示形式です。CSVの TimeLayout と同じ表記になります。
const DateTimeFormat = "yyyy-mm-dd hh:mm:ss"

// excelEpoch はExcelの1900年日付系におけるシリアル値0の日付です。
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// xlsxWriter はヘッダー付き・インデックス列なしの1シートのワークブックを書き出します。
type xlsxWriter struct{}

func (xlsxWriter) write(_ context.Context, table *entity.Table, target entity.Target) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(SheetName)
	if err != nil {
		return errors.Wrap(err, "add sheet")
	}

	header := sheet.AddRow()
	for _, c := range table.Columns {
		header.AddCell().SetString(c)
	}
	for _, r := range table.Rows {
		row := sheet.AddRow()
		for j := range table.Columns {
			var v any
			if j < len(r) {
				v = r[j]
			}
			setCell(row.AddCell(), v)
		}
	}

	if err := file.Save(target.Path); err != nil {
		return errors.Wrap(err, "save workbook")
	}
	return nil
}

// setCell は値の型に応じたセル型で書き込みます。
func setCell(cell *xlsx.Cell, v any) {
	switch x := v.(type) {
	case nil:
		cell.SetString("")
	case int64:
		cell.SetInt64(x)
	case int:
		cell.SetInt(x)
	case float64:
		cell.SetFloat(x)
	case time.Time:
		cell.SetFloatWithFormat(excelSerial(x), DateTimeFormat)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			cell.SetInt64(n)
		} else if f, err := x.Float64(); err == nil {
			cell.SetFloat(f)
		} else {
			cell.SetString(x.String())
		}
	default:
		cell.SetString(formatCell(x))
	}
}

// excelSerial はtの壁時計時刻（タイムゾーン変換なし）を秒単位に丸めたExcelのシリアル値に変換します。
// ワークブックにはタイムゾーンがないため、CSVと同じ現地時刻を書き込みます。
func excelSerial(t time.Time) float64 {
	wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC).
		Round(time.Second)
	days := wall.Truncate(24 * time.Hour)
	secs := wall.Sub(days) / time.Second
	return float64(days.Sub(excelEpoch)/(24*time.Hour)) + float64(secs)/86400
}
