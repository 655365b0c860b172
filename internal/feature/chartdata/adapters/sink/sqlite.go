package sink

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"stock_chartdata/internal/feature/chartdata/domain"
	"stock_chartdata/internal/feature/chartdata/domain/entity"
	"stock_chartdata/internal/platform/db"
)

// sqliteWriter はSQLiteファイルに "A<code>" テーブルを作成して行を挿入します。
// 同名のテーブルが既に存在する場合は何も書き込まずにErrTableExistsを返します。
type sqliteWriter struct{}

func (sqliteWriter) write(ctx context.Context, table *entity.Table, target entity.Target) error {
	if len(table.Columns) == 0 {
		return errors.New("sqlite: table has no columns")
	}

	gdb, err := db.OpenSQLite(target.Path)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close(gdb)
	}()

	name := target.TableName()
	if gdb.WithContext(ctx).Migrator().HasTable(name) {
		return errors.Wrapf(domain.ErrTableExists, "table %s in %s", name, target.Path)
	}

	ddl := createTableSQL(name, table)
	insert := insertSQL(name, table.Columns)

	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(ddl).Error; err != nil {
			return errors.Wrapf(err, "create table %s", name)
		}
		for i, row := range table.Rows {
			if err := tx.Exec(insert, sqlValues(row, len(table.Columns))...).Error; err != nil {
				return errors.Wrapf(err, "insert row %d into %s", i, name)
			}
		}
		return nil
	})
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func createTableSQL(name string, table *entity.Table) string {
	defs := make([]string, len(table.Columns))
	for j, c := range table.Columns {
		defs[j] = quoteIdent(c) + " " + columnType(table, j)
	}
	return "CREATE TABLE " + quoteIdent(name) + " (" + strings.Join(defs, ", ") + ")"
}

func insertSQL(name string, columns []string) string {
	cols := make([]string, len(columns))
	marks := make([]string, len(columns))
	for j, c := range columns {
		cols[j] = quoteIdent(c)
		marks[j] = "?"
	}
	return "INSERT INTO " + quoteIdent(name) + " (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
}

// columnType は最初の非nilセルからカラム型を推定します。
func columnType(table *entity.Table, j int) string {
	for _, row := range table.Rows {
		if j >= len(row) || row[j] == nil {
			continue
		}
		switch x := row[j].(type) {
		case int64, int, int32:
			return "INTEGER"
		case float64:
			return "REAL"
		case time.Time:
			return "TIMESTAMP"
		case json.Number:
			if _, err := x.Int64(); err == nil {
				return "INTEGER"
			}
			if _, err := x.Float64(); err == nil {
				return "REAL"
			}
			return "TEXT"
		default:
			return "TEXT"
		}
	}
	return "TEXT"
}

func sqlValues(row []any, n int) []any {
	out := make([]any, n)
	for j := 0; j < n && j < len(row); j++ {
		switch x := row[j].(type) {
		case json.Number:
			if v, err := x.Int64(); err == nil {
				out[j] = v
			} else if v, err := x.Float64(); err == nil {
				out[j] = v
			} else {
				out[j] = x.String()
			}
		default:
			out[j] = x
		}
	}
	return out
}
