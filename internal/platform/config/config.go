// Package config loads CLI configuration from .env, environment variables and an optional config file.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Keys understood by Load. Environment variables use the CHARTDATA_ prefix,
// e.g. CHARTDATA_GATEWAY_PORT.
const (
	KeyGatewayHost    = "gateway.host"
	KeyGatewayPort    = "gateway.port"
	KeyGatewayTimeout = "gateway.timeout"

	KeyGatewayRateLimit    = "gateway.rate_limit"
	KeyGatewayRateInterval = "gateway.rate_interval"
)

// Config holds the resolved settings for one invocation.
type Config struct {
	GatewayHost    string
	GatewayPort    int
	GatewayTimeout time.Duration

	// ゲートウェイへのリクエストは RateInterval あたり RateLimit 回まで
	GatewayRateLimit    int
	GatewayRateInterval time.Duration
}

// New returns a viper instance with defaults and environment binding applied.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyGatewayHost, "127.0.0.1")
	v.SetDefault(KeyGatewayPort, 5943)
	v.SetDefault(KeyGatewayTimeout, "30s")
	v.SetDefault(KeyGatewayRateLimit, 5)
	v.SetDefault(KeyGatewayRateInterval, "1s")

	v.SetEnvPrefix("chartdata")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("chartdata")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.chartdata")
	return v
}

// LoadDotEnv loads .env into the process environment. A missing file is not an error.
func LoadDotEnv(paths ...string) bool {
	return godotenv.Load(paths...) == nil
}

// Load reads the optional config file and resolves Config from v.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config file")
		}
	}

	cfg := &Config{
		GatewayHost:    v.GetString(KeyGatewayHost),
		GatewayPort:    v.GetInt(KeyGatewayPort),
		GatewayTimeout: v.GetDuration(KeyGatewayTimeout),

		GatewayRateLimit:    v.GetInt(KeyGatewayRateLimit),
		GatewayRateInterval: v.GetDuration(KeyGatewayRateInterval),
	}
	if cfg.GatewayPort <= 0 || cfg.GatewayPort > 65535 {
		return nil, errors.Errorf("invalid %s: %d", KeyGatewayPort, cfg.GatewayPort)
	}
	if cfg.GatewayTimeout < 0 {
		return nil, errors.Errorf("invalid %s: %s", KeyGatewayTimeout, cfg.GatewayTimeout)
	}
	if cfg.GatewayRateLimit < 0 {
		return nil, errors.Errorf("invalid %s: %d", KeyGatewayRateLimit, cfg.GatewayRateLimit)
	}
	if cfg.GatewayRateLimit > 0 && cfg.GatewayRateInterval <= 0 {
		return nil, errors.Errorf("invalid %s: %s", KeyGatewayRateInterval, cfg.GatewayRateInterval)
	}
	return cfg, nil
}
