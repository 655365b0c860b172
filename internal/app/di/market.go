// Package di provides dependency injection factories for creating application components.
package di

import (
	"go.uber.org/zap"

	"stock_chartdata/internal/feature/chartdata/adapters/gateway"
	"stock_chartdata/internal/platform/config"
	infrahttp "stock_chartdata/internal/platform/http"
)

// NewGatewayOpener creates a gateway session opener with a configured HTTP client.
func NewGatewayOpener(cfg *config.Config, log *zap.Logger) *gateway.Opener {
	gcfg := gateway.Config{
		Host:    cfg.GatewayHost,
		Port:    cfg.GatewayPort,
		Timeout: cfg.GatewayTimeout,

		RateLimit:    cfg.GatewayRateLimit,
		RateInterval: cfg.GatewayRateInterval,
	}
	httpClient := infrahttp.NewHTTPClient(gcfg.Timeout)
	return gateway.NewOpener(gcfg, httpClient, log.Named("gateway"))
}
