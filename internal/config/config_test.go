package config

import (
	"os"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Sources: SourcesConfig{
			DealFeed: SourceConfig{Enabled: true, URL: "https://deals.example.com/api/v1/deals"},
			Timeout:  30 * time.Second,
			Limit:    50,
		},
		Hunt: HuntConfig{
			PollInterval: time.Hour,
			Lookback:     4 * time.Hour,
			Allowlist:    []string{"deal"},
		},
		Decision: DecisionConfig{
			Default:           CategoryThresholds{MinDiscount: 35, MaxPrice: 15000, MinRating: 4.0},
			LowPriceThreshold: 2000,
		},
		Trends:    TrendsConfig{Capacity: 20, AlertThresholdPct: 10},
		Lifecycle: LifecycleConfig{TTL: 24 * time.Hour},
		Storage:   StorageConfig{DBPath: "./data/test.db"},
		Logging:   LoggingConfig{Level: "info", Format: "json"},
	}
}

func TestLoadAndValidate(t *testing.T) {
	// Create temp config file
	content := `
sources:
  deal_feed:
    enabled: true
    url: "https://deals.example.com/api/v1/deals"
  job_board:
    enabled: false
  timeout: 10s
  limit: 25

hunt:
  poll_interval: 30m
  lookback: 2h
  allowlist:
    - deal
    - laptop

decision:
  low_price_threshold: 1500
  categories:
    electronics:
      min_discount: 25
      max_price: 40000
      min_rating: 4.1

trends:
  capacity: 10
  alert_threshold_pct: 5

lifecycle:
  ttl: 48h

telegram:
  enabled: true
  bot_token: "test_token"
  chat_id: "12345"

storage:
  db_path: "./data/test.db"

logging:
  level: "debug"
  format: "text"
`
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Remove(tmpfile.Name()) }()

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	// Test Load
	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Verify values
	if cfg.Hunt.PollInterval != 30*time.Minute {
		t.Errorf("Unexpected poll interval: %v", cfg.Hunt.PollInterval)
	}

	if cfg.Sources.Limit != 25 {
		t.Errorf("Unexpected source limit: %d", cfg.Sources.Limit)
	}

	if len(cfg.Hunt.Allowlist) != 2 {
		t.Errorf("Expected 2 allowlist terms, got %d", len(cfg.Hunt.Allowlist))
	}

	if cfg.Lifecycle.TTL != 48*time.Hour {
		t.Errorf("Unexpected lifecycle TTL: %v", cfg.Lifecycle.TTL)
	}

	// The file's electronics row overrides the built-in one.
	if got := cfg.Decision.Categories["electronics"].MinDiscount; got != 25 {
		t.Errorf("Unexpected electronics min_discount: %v", got)
	}

	// Categories the file omits fall back to the built-in table.
	if got := cfg.Decision.Categories["fashion"].MaxPrice; got != 5000 {
		t.Errorf("Unexpected fashion max_price fallback: %v", got)
	}

	// Test Validate
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "no sources enabled",
			mutate: func(c *Config) {
				c.Sources.DealFeed.Enabled = false
			},
			wantErr: true,
		},
		{
			name: "missing telegram token when enabled",
			mutate: func(c *Config) {
				c.Telegram.Enabled = true
				c.Telegram.ChatID = "12345"
			},
			wantErr: true,
		},
		{
			name: "lookback shorter than poll interval",
			mutate: func(c *Config) {
				c.Hunt.Lookback = 30 * time.Minute
			},
			wantErr: true,
		},
		{
			name: "empty allowlist",
			mutate: func(c *Config) {
				c.Hunt.Allowlist = nil
			},
			wantErr: true,
		},
		{
			name: "trend capacity too small",
			mutate: func(c *Config) {
				c.Trends.Capacity = 1
			},
			wantErr: true,
		},
		{
			name: "category discount out of range",
			mutate: func(c *Config) {
				c.Decision.Categories = map[string]CategoryThresholds{
					"electronics": {MinDiscount: 120, MaxPrice: 50000, MinRating: 4.0},
				}
			},
			wantErr: true,
		},
		{
			name: "missing db path",
			mutate: func(c *Config) {
				c.Storage.DBPath = ""
			},
			wantErr: true,
		},
		{
			name: "invalid log level",
			mutate: func(c *Config) {
				c.Logging.Level = "verbose"
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
