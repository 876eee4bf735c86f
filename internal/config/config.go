package config

import (
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Listen string `yaml:"listen"`
	} `yaml:"server"`
	DataSource struct {
		SnapshotURL     string        `yaml:"snapshot_url"`
		HistoryProvider string        `yaml:"history_provider"`
		HistoryBaseURL  string        `yaml:"history_base_url"`
		MarketSuffix    string        `yaml:"market_suffix"`
		Lookback        string        `yaml:"lookback"`
		Timeout         time.Duration `yaml:"timeout"`
	} `yaml:"data_source"`
	Cache struct {
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Schedule struct {
		SnapshotRefreshCron string `yaml:"snapshot_refresh_cron"`
	} `yaml:"schedule"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv("SNAPSHOT_URL"); v != "" {
		cfg.DataSource.SnapshotURL = v
	}
	if v := os.Getenv("HISTORY_PROVIDER"); v != "" {
		cfg.DataSource.HistoryProvider = v
	}
	if v := os.Getenv("HISTORY_BASE_URL"); v != "" {
		cfg.DataSource.HistoryBaseURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse CACHE_TTL: %w", err)
		}
		cfg.Cache.TTL = d
	}

	// Defaults
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8501"
	}
	if cfg.DataSource.SnapshotURL == "" {
		cfg.DataSource.SnapshotURL = "https://www.saudiexchange.sa/tadawul.eportal.theme.helper/TickerServlet"
	}
	if cfg.DataSource.HistoryProvider == "" {
		cfg.DataSource.HistoryProvider = "yahoo"
	}
	if cfg.DataSource.HistoryBaseURL == "" {
		cfg.DataSource.HistoryBaseURL = "https://query1.finance.yahoo.com"
	}
	if cfg.DataSource.MarketSuffix == "" {
		cfg.DataSource.MarketSuffix = ".SR"
	}
	if cfg.DataSource.Lookback == "" {
		cfg.DataSource.Lookback = "10y"
	}
	if cfg.DataSource.Timeout == 0 {
		cfg.DataSource.Timeout = 15 * time.Second
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 15 * time.Minute
	}
	if cfg.Schedule.SnapshotRefreshCron == "" {
		cfg.Schedule.SnapshotRefreshCron = "0 */15 * * * *"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// Validate checks that all values are usable.
func (c *Config) Validate() error {
	switch c.DataSource.HistoryProvider {
	case "yahoo", "mock":
	default:
		return fmt.Errorf("data_source.history_provider must be yahoo or mock, got %q", c.DataSource.HistoryProvider)
	}
	if c.DataSource.Timeout <= 0 {
		return fmt.Errorf("data_source.timeout must be positive")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Schedule.SnapshotRefreshCron); err != nil {
		return fmt.Errorf("schedule.snapshot_refresh_cron: %w", err)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error", "prod":
	default:
		return fmt.Errorf("log.level must be debug, info, warn, error or prod, got %q", c.Log.Level)
	}
	return nil
}
