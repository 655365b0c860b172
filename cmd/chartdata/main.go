package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"stock_chartdata/internal/app/di"
	"stock_chartdata/internal/feature/chartdata/transport/cli"
	"stock_chartdata/internal/platform/config"
)

func main() {
	// .envを読み込む
	if !config.LoadDotEnv() {
		if _, err := os.Stat(".env"); err == nil {
			fmt.Fprintln(os.Stderr, "[WARN] .env exists but could not be loaded")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	var log *zap.Logger
	root := cli.NewRootCommand(di.NewChartdataFactory(config.New(), func(l *zap.Logger) { log = l }))

	code := cli.Execute(ctx, root, os.Stderr)

	if log != nil {
		_ = log.Sync()
	}
	stop()
	os.Exit(code)
}
