package config

import (
	"os"
	"strconv"
)

// Config holds the process level settings read from the environment.
// Per-run strategy parameters live in the backtest config and come
// from flags.
type Config struct {
	Environment string
	LogLevel    string

	Exchange struct {
		APIKey  string
		Secret  string
		Testnet bool
	}

	Data struct {
		Root     string
		Category string
	}

	Results struct {
		Dir string
	}

	Monitoring struct {
		Enabled        bool
		PrometheusPort int
	}
}

// Load reads the config from environment variables, applying defaults
// for anything unset.
func Load() *Config {
	cfg := &Config{
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	cfg.Exchange.APIKey = getEnv("BYBIT_API_KEY", "")
	cfg.Exchange.Secret = getEnv("BYBIT_API_SECRET", "")
	cfg.Exchange.Testnet = getEnvBool("BYBIT_TESTNET", false)

	cfg.Data.Root = getEnv("DATA_ROOT", "data")
	cfg.Data.Category = getEnv("BYBIT_CATEGORY", "spot")

	cfg.Results.Dir = getEnv("RESULTS_DIR", "results")

	cfg.Monitoring.Enabled = getEnvBool("METRICS_ENABLED", false)
	cfg.Monitoring.PrometheusPort = getEnvInt("PROMETHEUS_PORT", 8080)

	return cfg
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return c.LogLevel == "debug"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}
