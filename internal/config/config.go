package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the full process configuration, populated from environment
// variables. Secrets are never given literal defaults.
type Config struct {
	Environment string
	LogLevel    string
	LogFile     string

	Exchange struct {
		APIKey  string
		Secret  string
		BaseURL string
		Testnet bool
	}

	Trading struct {
		QuoteAsset      string
		MinNotional     float64
		DustThreshold   float64
		TargetProfitPct float64
	}

	Session struct {
		MaxDrawdownPct      float64
		MaxProfitPct        float64
		EnableDrawdownCap   bool
		EnableProfitCap     bool
		EnablePositionCheck bool
		StateFile           string
	}

	Server struct {
		Port        int
		MetricsPort int
		RateLimit   int
	}

	Notifications struct {
		TelegramToken  string
		TelegramChatID string
	}
}

func Load() *Config {
	cfg := &Config{
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     getEnv("LOG_FILE", ""),
	}

	cfg.Exchange.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.Exchange.Secret = getEnv("BINANCE_SECRET_KEY", "")
	cfg.Exchange.BaseURL = getEnv("BINANCE_BASE_URL", "")
	cfg.Exchange.Testnet = getEnvBool("BINANCE_TESTNET", false)

	cfg.Trading.QuoteAsset = strings.ToUpper(getEnv("QUOTE_ASSET", "USDC"))
	cfg.Trading.MinNotional = getEnvFloat("MIN_NOTIONAL", 5.0)
	cfg.Trading.DustThreshold = getEnvFloat("DUST_THRESHOLD", 0.001)
	cfg.Trading.TargetProfitPct = getEnvFloat("TARGET_PROFIT_PCT", 0)

	cfg.Session.MaxDrawdownPct = getEnvFloat("MAX_DRAWDOWN_PCT", 5.0)
	cfg.Session.MaxProfitPct = getEnvFloat("MAX_PROFIT_PCT", 10.0)
	cfg.Session.EnableDrawdownCap = getEnvBool("ENABLE_DRAWDOWN_CAP", true)
	cfg.Session.EnableProfitCap = getEnvBool("ENABLE_PROFIT_CAP", true)
	cfg.Session.EnablePositionCheck = getEnvBool("ENABLE_POSITION_CHECK", true)
	cfg.Session.StateFile = getEnv("SESSION_STATE_FILE", "")

	cfg.Server.Port = getEnvInt("PORT", 8080)
	cfg.Server.MetricsPort = getEnvInt("METRICS_PORT", 9090)
	cfg.Server.RateLimit = getEnvInt("WEBHOOK_RATE_LIMIT", 10)

	cfg.Notifications.TelegramToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	cfg.Notifications.TelegramChatID = getEnv("TELEGRAM_CHAT_ID", "")

	return cfg
}

// Validate checks that the configuration is complete enough to trade.
func (c *Config) Validate() error {
	if c.Exchange.APIKey == "" {
		return fmt.Errorf("BINANCE_API_KEY is required")
	}
	if c.Exchange.Secret == "" {
		return fmt.Errorf("BINANCE_SECRET_KEY is required")
	}
	if c.Trading.QuoteAsset == "" {
		return fmt.Errorf("QUOTE_ASSET must not be empty")
	}
	if c.Trading.MinNotional < 0 {
		return fmt.Errorf("MIN_NOTIONAL must not be negative, got %.2f", c.Trading.MinNotional)
	}
	if c.Session.MaxDrawdownPct < 0 || c.Session.MaxProfitPct < 0 {
		return fmt.Errorf("session caps must not be negative")
	}
	if c.Trading.TargetProfitPct < 0 {
		return fmt.Errorf("TARGET_PROFIT_PCT must not be negative, got %.2f", c.Trading.TargetProfitPct)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT %d is out of range", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("WEBHOOK_RATE_LIMIT must not be negative, got %d", c.Server.RateLimit)
	}
	return nil
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

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}
