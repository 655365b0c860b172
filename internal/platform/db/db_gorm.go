// Package db はgormのデータベース接続を提供します。
package db

import (
	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Opener はDSNからgormの接続を開く関数です。テストで差し替えられます。
type Opener func(dsn string) (*gorm.DB, error)

// DefaultOpener はSQLiteドライバでデータベースファイルを開きます（存在しない場合は作成されます）。
func DefaultOpener(dsn string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

// OpenSQLite はpathのSQLiteファイルを開きます。
func OpenSQLite(path string) (*gorm.DB, error) {
	return OpenWith(path, DefaultOpener)
}

// OpenWith は指定されたopenerで接続を開き、疎通を確認します。
func OpenWith(path string, open Opener) (*gorm.DB, error) {
	if path == "" {
		return nil, errors.New("open sqlite: empty path")
	}
	gdb, err := open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite %s", path)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql.DB")
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrapf(err, "ping sqlite %s", path)
	}
	return gdb, nil
}

// Close は基盤となるsql.DBを閉じます。
func Close(gdb *gorm.DB) error {
	if gdb == nil {
		return nil
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
