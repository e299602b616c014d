package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("IB_GATEWAY_URL", "")
	t.Setenv("IB_ACCOUNT_ID", "DU12345")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LedgerPath != "./data/trading_results.csv" {
		t.Errorf("ledger path = %q", cfg.LedgerPath)
	}
	if cfg.Strategy != "Unknown" {
		t.Errorf("strategy = %q", cfg.Strategy)
	}
	if cfg.AccountID != "DU12345" {
		t.Errorf("account = %q", cfg.AccountID)
	}
}

func TestLoadRejectsBadGatewayURL(t *testing.T) {
	t.Setenv("IB_GATEWAY_URL", "localhost:5000")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-http gateway URL")
	}
}

func TestWSBaseURL(t *testing.T) {
	tests := []struct{ in, want string }{
		{"https://localhost:5000/v1/api", "wss://localhost:5000/v1/api/ws"},
		{"http://gw:8000/v1", "ws://gw:8000/v1/ws"},
	}
	for _, tt := range tests {
		cfg := &Config{GatewayURL: tt.in}
		if got := cfg.WSBaseURL(); got != tt.want {
			t.Errorf("WSBaseURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
