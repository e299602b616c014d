package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the explicit configuration for every binary: the execution
// source, the ledger locations, and the strategy label stamped on rows.
type Config struct {
	GatewayURL string // IB web gateway base URL
	AccountID  string
	LedgerPath string // canonical CSV ledger
	DBPath     string // embedded reporting store
	Strategy   string // opaque label carried onto every trade row
	ListenAddr string // report API listen address
}

// WSBaseURL derives the gateway's websocket endpoint from the HTTP base.
func (c *Config) WSBaseURL() string {
	ws := strings.Replace(c.GatewayURL, "https://", "wss://", 1)
	ws = strings.Replace(ws, "http://", "ws://", 1)
	return ws + "/ws"
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		GatewayURL: getEnvDefault("IB_GATEWAY_URL", "https://localhost:5000/v1/api"),
		AccountID:  os.Getenv("IB_ACCOUNT_ID"),
		LedgerPath: getEnvDefault("LEDGER_PATH", "./data/trading_results.csv"),
		DBPath:     getEnvDefault("TRADELOG_DB", "./data/tradelog.db"),
		Strategy:   getEnvDefault("STRATEGY", "Unknown"),
		ListenAddr: getEnvDefault("LISTEN_ADDR", ":8090"),
	}

	if !strings.HasPrefix(cfg.GatewayURL, "http://") && !strings.HasPrefix(cfg.GatewayURL, "https://") {
		return nil, fmt.Errorf("IB_GATEWAY_URL must be http(s), got %q", cfg.GatewayURL)
	}

	return cfg, nil
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
