package sink

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"stock_chartdata/internal/feature/chartdata/domain"
	"stock_chartdata/internal/feature/chartdata/domain/entity"
	"stock_chartdata/internal/platform/db"
)

var kst = time.FixedZone("KST", 9*60*60)

// normalizedTable は正規化済みの2行のチャートテーブルを返します。
func normalizedTable() *entity.Table {
	return &entity.Table{
		Columns: []string{entity.ColTradeTime, entity.ColCurrent, entity.ColOpen, entity.ColHigh, entity.ColLow},
		Rows: [][]any{
			{time.Date(2024, 1, 2, 15, 30, 0, 0, kst), int64(78500), int64(78200), int64(79000), int64(77900)},
			{time.Date(2024, 1, 2, 15, 29, 0, 0, kst), int64(78400), int64(78100), int64(78800), int64(77800)},
		},
	}
}

func newObservedWriter() (*Writer, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return NewWriter(zap.New(core)), logs
}

func TestWriter_CSV(t *testing.T) {
	t.Parallel()

	w, logs := newObservedWriter()
	path := filepath.Join(t.TempDir(), "005930.csv")

	err := w.Write(context.Background(), normalizedTable(), entity.Target{Path: path, Format: entity.FormatCSV, Code: "005930"})
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"체결시간", "현재가", "시가", "고가", "저가"}, records[0])
	assert.Equal(t, []string{"2024-01-02 15:30:00", "78500", "78200", "79000", "77900"}, records[1])

	entries := logs.FilterMessage("Saved data to file").All()
	require.Len(t, entries, 1)
	assert.Equal(t, path, entries[0].ContextMap()["path"])
}

func TestWriter_CSV_UnnormalizedCells(t *testing.T) {
	t.Parallel()

	w := NewWriter(nil)
	path := filepath.Join(t.TempDir(), "raw.csv")
	tbl := &entity.Table{
		Columns: []string{"체결시간", "현재가"},
		Rows:    [][]any{{"20240102153000", json.Number("-78500")}, {nil}},
	}

	require.NoError(t, w.Write(context.Background(), tbl, entity.Target{Path: path, Format: entity.FormatCSV}))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "체결시간,현재가\n20240102153000,-78500\n,\n", string(b))
}

func TestWriter_CSV_Overwrites(t *testing.T) {
	t.Parallel()

	w := NewWriter(nil)
	path := filepath.Join(t.TempDir(), "005930.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale contents that are longer than the new file\n"), 0o600))

	tbl := &entity.Table{Columns: []string{"a"}, Rows: [][]any{{int64(1)}}}
	require.NoError(t, w.Write(context.Background(), tbl, entity.Target{Path: path, Format: entity.FormatCSV}))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n", string(b))
}

func TestWriter_XLS(t *testing.T) {
	t.Parallel()

	w, logs := newObservedWriter()
	path := filepath.Join(t.TempDir(), "005930.xls")

	err := w.Write(context.Background(), normalizedTable(), entity.Target{Path: path, Format: entity.FormatXLS, Code: "005930"})
	require.NoError(t, err)

	file, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet, ok := file.Sheet[SheetName]
	require.True(t, ok, "sheet %s not found", SheetName)
	require.Len(t, sheet.Rows, 3)

	header := make([]string, 0, len(sheet.Rows[0].Cells))
	for _, c := range sheet.Rows[0].Cells {
		header = append(header, c.Value)
	}
	assert.Equal(t, []string{"체결시간", "현재가", "시가", "고가", "저가"}, header)
	assert.Equal(t, "78500", sheet.Rows[1].Cells[1].Value)
	assert.Equal(t, "77800", sheet.Rows[2].Cells[4].Value)

	// 取引時刻はCSVと同じ現地時刻（KST）で書き込まれる
	serial, err := sheet.Rows[1].Cells[0].Float()
	require.NoError(t, err)
	got := xlsx.TimeFromExcelTime(serial, false).Round(time.Second)
	assert.Equal(t, "2024-01-02 15:30:00", got.Format(TimeLayout))

	assert.Equal(t, 1, logs.FilterMessage("Saved data to file").Len())
}

func TestExcelSerial(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   time.Time
		want float64
	}{
		{"kst afternoon", time.Date(2024, 1, 2, 15, 30, 0, 0, kst), 45293 + 55800.0/86400},
		{"utc midnight", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), 45293},
		{"kst early morning stays on the same date", time.Date(2024, 1, 2, 8, 0, 0, 0, kst), 45293 + 28800.0/86400},
		{"sub-second rounds to the second", time.Date(2024, 1, 2, 9, 0, 0, 999_999_000, kst), 45293 + 32401.0/86400},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, excelSerial(tt.in), 1e-9, tt.name)
	}
}

func TestWriter_SQLite(t *testing.T) {
	t.Parallel()

	w, logs := newObservedWriter()
	path := filepath.Join(t.TempDir(), "005930.sqlite3")
	target := entity.Target{Path: path, Format: entity.FormatSQLite3, Code: "005930"}

	require.NoError(t, w.Write(context.Background(), normalizedTable(), target))

	gdb, err := db.OpenSQLite(path)
	require.NoError(t, err)
	defer func() { _ = db.Close(gdb) }()

	require.True(t, gdb.Migrator().HasTable("A005930"))

	var count int64
	require.NoError(t, gdb.Table("A005930").Count(&count).Error)
	assert.Equal(t, int64(2), count)

	// インデックス列は作成されない
	rows, err := gdb.Raw(`SELECT * FROM "A005930"`).Rows()
	require.NoError(t, err)
	names, err := rows.Columns()
	require.NoError(t, err)
	require.NoError(t, rows.Close())
	assert.Equal(t, []string{"체결시간", "현재가", "시가", "고가", "저가"}, names)

	var high int64
	require.NoError(t, gdb.Raw(`SELECT MAX("고가") FROM "A005930"`).Scan(&high).Error)
	assert.Equal(t, int64(79000), high)

	entries := logs.FilterMessage("Saved data to file with tablename").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "A005930", entries[0].ContextMap()["table"])
}

func TestWriter_SQLite_TableExists(t *testing.T) {
	t.Parallel()

	w, logs := newObservedWriter()
	path := filepath.Join(t.TempDir(), "chart.sqlite3")
	target := entity.Target{Path: path, Format: entity.FormatSQLite3, Code: "005930"}

	require.NoError(t, w.Write(context.Background(), normalizedTable(), target))

	err := w.Write(context.Background(), normalizedTable(), target)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTableExists), "got %v", err)
	assert.Equal(t, 1, logs.FilterMessage("Saved data to file with tablename").Len())

	// 既存テーブルの行は増えない
	gdb, err := db.OpenSQLite(path)
	require.NoError(t, err)
	defer func() { _ = db.Close(gdb) }()
	var count int64
	require.NoError(t, gdb.Table("A005930").Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestWriter_SQLite_OtherCodeSharesFile(t *testing.T) {
	t.Parallel()

	w := NewWriter(nil)
	path := filepath.Join(t.TempDir(), "chart.sqlite3")

	require.NoError(t, w.Write(context.Background(), normalizedTable(), entity.Target{Path: path, Format: entity.FormatSQLite3, Code: "005930"}))
	require.NoError(t, w.Write(context.Background(), normalizedTable(), entity.Target{Path: path, Format: entity.FormatSQLite3, Code: "000660"}))

	gdb, err := db.OpenSQLite(path)
	require.NoError(t, err)
	defer func() { _ = db.Close(gdb) }()
	assert.True(t, gdb.Migrator().HasTable("A005930"))
	assert.True(t, gdb.Migrator().HasTable("A000660"))
}

func TestWriter_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	w, logs := newObservedWriter()
	path := filepath.Join(t.TempDir(), "out.parquet")

	err := w.Write(context.Background(), normalizedTable(), entity.Target{Path: path, Format: entity.Format("parquet")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedFormat), "got %v", err)
	assert.Equal(t, 0, logs.Len())

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no file should be created")
}

func TestWriter_CSV_UnwritablePath(t *testing.T) {
	t.Parallel()

	w := NewWriter(nil)
	path := filepath.Join(t.TempDir(), "missing", "out.csv")

	err := w.Write(context.Background(), normalizedTable(), entity.Target{Path: path, Format: entity.FormatCSV})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create csv file")
}

func TestColumnType(t *testing.T) {
	t.Parallel()

	tbl := &entity.Table{
		Columns: []string{"t", "i", "f", "s", "n", "empty"},
		Rows: [][]any{
			{time.Now(), int64(1), 1.5, "x", json.Number("12"), nil},
		},
	}
	want := []string{"TIMESTAMP", "INTEGER", "REAL", "TEXT", "INTEGER", "TEXT"}
	for j, w := range want {
		assert.Equal(t, w, columnType(tbl, j), "column %s", tbl.Columns[j])
	}
	assert.Equal(t, `CREATE TABLE "A1" ("t" TIMESTAMP, "i" INTEGER, "f" REAL, "s" TEXT, "n" INTEGER, "empty" TEXT)`, createTableSQL("A1", tbl))
}
