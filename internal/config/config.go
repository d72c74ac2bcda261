package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Sources   SourcesConfig   `mapstructure:"sources"`
	Hunt      HuntConfig      `mapstructure:"hunt"`
	Decision  DecisionConfig  `mapstructure:"decision"`
	Trends    TrendsConfig    `mapstructure:"trends"`
	Lifecycle LifecycleConfig `mapstructure:"lifecycle"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Export    ExportConfig    `mapstructure:"export"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// SourceConfig holds one source adapter's settings
type SourceConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// SourcesConfig holds per-source adapter configuration
type SourcesConfig struct {
	DealFeed SourceConfig  `mapstructure:"deal_feed"`
	JobBoard SourceConfig  `mapstructure:"job_board"`
	DealPage SourceConfig  `mapstructure:"deal_page"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Limit    int           `mapstructure:"limit"`
}

// HuntConfig holds cycle scheduling and relevance configuration
type HuntConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Lookback     time.Duration `mapstructure:"lookback"`
	Keywords     []string      `mapstructure:"keywords"`
	Allowlist    []string      `mapstructure:"allowlist"`
}

// CategoryThresholds is one row of the category decision table
type CategoryThresholds struct {
	MinDiscount float64 `mapstructure:"min_discount"`
	MaxPrice    float64 `mapstructure:"max_price"`
	MinRating   float64 `mapstructure:"min_rating"`
}

// DecisionConfig holds the verdict cascade's tunables
type DecisionConfig struct {
	Categories        map[string]CategoryThresholds `mapstructure:"categories"`
	Default           CategoryThresholds            `mapstructure:"default"`
	LowPriceThreshold float64                       `mapstructure:"low_price_threshold"`
}

// TrendsConfig holds trend series configuration
type TrendsConfig struct {
	Capacity          int     `mapstructure:"capacity"`
	AlertThresholdPct float64 `mapstructure:"alert_threshold_pct"`
}

// LifecycleConfig holds listing lifecycle configuration
type LifecycleConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// StorageConfig holds persistence configuration
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// ExportConfig holds optional decided-listing sink configuration
type ExportConfig struct {
	CSVEnabled      bool   `mapstructure:"csv_enabled"`
	CSVPath         string `mapstructure:"csv_path"`
	PostgresEnabled bool   `mapstructure:"postgres_enabled"`
	PostgresDSN     string `mapstructure:"postgres_dsn"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	setDefaults(v)

	v.SetEnvPrefix("DEALHAWK")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyCategoryDefaults(&cfg)

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Source defaults
	v.SetDefault("sources.deal_feed.enabled", true)
	v.SetDefault("sources.deal_feed.url", "https://deals.example.com/api/v1/deals")
	v.SetDefault("sources.job_board.enabled", true)
	v.SetDefault("sources.job_board.url", "https://jobs.example.com/api/listings")
	v.SetDefault("sources.deal_page.enabled", false)
	v.SetDefault("sources.deal_page.url", "https://deals.example.com/today")
	v.SetDefault("sources.timeout", "30s")
	v.SetDefault("sources.limit", 50)

	// Hunt defaults
	v.SetDefault("hunt.poll_interval", "1h")
	v.SetDefault("hunt.lookback", "4h")
	v.SetDefault("hunt.keywords", []string{
		"Software Engineer", "Frontend Developer", "Machine Learning",
		"Product Intern", "Research Intern",
	})
	v.SetDefault("hunt.allowlist", []string{
		"software", "developer", "design", "machine learning", "ai",
		"engineer", "data", "intern", "deal", "discount", "sale",
	})

	// Decision defaults
	v.SetDefault("decision.default.min_discount", 20.0)
	v.SetDefault("decision.default.max_price", 10000.0)
	v.SetDefault("decision.default.min_rating", 4.0)
	v.SetDefault("decision.low_price_threshold", 2000.0)

	// Trend defaults
	v.SetDefault("trends.capacity", 20)
	v.SetDefault("trends.alert_threshold_pct", 10.0)

	// Lifecycle defaults
	v.SetDefault("lifecycle.ttl", "24h")

	// Telegram defaults
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	// Storage defaults
	v.SetDefault("storage.db_path", "./data/dealhawk.db")

	// Export defaults
	v.SetDefault("export.csv_enabled", false)
	v.SetDefault("export.csv_path", "./data/decided.csv")
	v.SetDefault("export.postgres_enabled", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// defaultCategoryRules is the built-in category threshold table. Rows
// present in the config file override the built-ins per category.
func defaultCategoryRules() map[string]CategoryThresholds {
	return map[string]CategoryThresholds{
		"electronics":  {MinDiscount: 15, MaxPrice: 50000, MinRating: 4.0},
		"fashion":      {MinDiscount: 30, MaxPrice: 5000, MinRating: 4.0},
		"beauty":       {MinDiscount: 40, MaxPrice: 2000, MinRating: 4.0},
		"sports":       {MinDiscount: 25, MaxPrice: 15000, MinRating: 4.2},
		"home_kitchen": {MinDiscount: 20, MaxPrice: 50000, MinRating: 4.0},
		"books":        {MinDiscount: 50, MaxPrice: 500, MinRating: 4.5},
	}
}

func applyCategoryDefaults(cfg *Config) {
	if cfg.Decision.Categories == nil {
		cfg.Decision.Categories = make(map[string]CategoryThresholds)
	}
	for name, row := range defaultCategoryRules() {
		if _, ok := cfg.Decision.Categories[name]; !ok {
			cfg.Decision.Categories[name] = row
		}
	}
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate sources config
	if !c.Sources.DealFeed.Enabled && !c.Sources.JobBoard.Enabled && !c.Sources.DealPage.Enabled {
		return fmt.Errorf("at least one source must be enabled")
	}
	if c.Sources.DealFeed.Enabled && c.Sources.DealFeed.URL == "" {
		return fmt.Errorf("sources.deal_feed.url is required when the deal feed is enabled")
	}
	if c.Sources.JobBoard.Enabled && c.Sources.JobBoard.URL == "" {
		return fmt.Errorf("sources.job_board.url is required when the job board is enabled")
	}
	if c.Sources.DealPage.Enabled && c.Sources.DealPage.URL == "" {
		return fmt.Errorf("sources.deal_page.url is required when the deal page is enabled")
	}
	if c.Sources.Timeout < time.Second {
		return fmt.Errorf("sources.timeout must be at least 1 second")
	}
	if c.Sources.Limit < 1 || c.Sources.Limit > 500 {
		return fmt.Errorf("sources.limit must be between 1 and 500")
	}

	// Validate hunt config
	if c.Hunt.PollInterval < time.Minute {
		return fmt.Errorf("hunt.poll_interval must be at least 1 minute")
	}
	if c.Hunt.Lookback < c.Hunt.PollInterval {
		return fmt.Errorf("hunt.lookback must not be shorter than hunt.poll_interval")
	}
	if len(c.Hunt.Allowlist) == 0 {
		return fmt.Errorf("hunt.allowlist must contain at least one term")
	}

	// Validate decision config
	if c.Decision.LowPriceThreshold <= 0 {
		return fmt.Errorf("decision.low_price_threshold must be positive")
	}
	if c.Decision.Default.MinRating < 0 || c.Decision.Default.MinRating > 5 {
		return fmt.Errorf("decision.default.min_rating must be between 0 and 5")
	}
	for name, row := range c.Decision.Categories {
		if row.MinDiscount < 0 || row.MinDiscount > 100 {
			return fmt.Errorf("decision.categories.%s.min_discount must be between 0 and 100", name)
		}
		if row.MinRating < 0 || row.MinRating > 5 {
			return fmt.Errorf("decision.categories.%s.min_rating must be between 0 and 5", name)
		}
		if row.MaxPrice <= 0 {
			return fmt.Errorf("decision.categories.%s.max_price must be positive", name)
		}
	}

	// Validate trends config
	if c.Trends.Capacity < 2 {
		return fmt.Errorf("trends.capacity must be at least 2")
	}
	if c.Trends.AlertThresholdPct <= 0 {
		return fmt.Errorf("trends.alert_threshold_pct must be positive")
	}

	// Validate lifecycle config
	if c.Lifecycle.TTL < time.Hour {
		return fmt.Errorf("lifecycle.ttl must be at least 1 hour")
	}

	// Validate telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	// Validate storage config
	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}

	// Validate export config
	if c.Export.CSVEnabled && c.Export.CSVPath == "" {
		return fmt.Errorf("export.csv_path is required when CSV export is enabled")
	}
	if c.Export.PostgresEnabled && c.Export.PostgresDSN == "" {
		return fmt.Errorf("export.postgres_dsn is required when Postgres export is enabled")
	}

	// Validate logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
