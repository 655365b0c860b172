package di

import (
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"stock_chartdata/internal/feature/chartdata/adapters/sink"
	"stock_chartdata/internal/feature/chartdata/transport/cli"
	"stock_chartdata/internal/feature/chartdata/usecase"
	"stock_chartdata/internal/platform/config"
	"stock_chartdata/internal/platform/logger"
)

// NewChartdataFactory returns a cli.Factory that builds the export usecase once
// flags are parsed, so the logger level follows -v. Built loggers are passed
// to onLogger so the caller can flush them on exit.
func NewChartdataFactory(v *viper.Viper, onLogger func(*zap.Logger)) cli.Factory {
	return func(verbosity int) (cli.ChartUsecase, error) {
		log := logger.New(verbosity)
		if onLogger != nil {
			onLogger(log)
		}

		cfg, err := config.Load(v)
		if err != nil {
			return nil, err
		}
		log.Debug("config loaded",
			zap.String("gateway_host", cfg.GatewayHost),
			zap.Int("gateway_port", cfg.GatewayPort),
			zap.Duration("gateway_timeout", cfg.GatewayTimeout),
		)

		opener := NewGatewayOpener(cfg, log)
		writer := sink.NewWriter(log.Named("sink"))
		return usecase.NewExportUsecase(opener, writer, log), nil
	}
}
