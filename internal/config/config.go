package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Symbol is one tracked ticker and its display name.
type Symbol struct {
	Ticker string `yaml:"ticker" json:"ticker"`
	Name   string `yaml:"name" json:"name"`
}

// ScheduleConfig holds the cron expressions for the posting slots.
type ScheduleConfig struct {
	Morning string `yaml:"morning" json:"morning"`
	Evening string `yaml:"evening" json:"evening"`
	Revenue string `yaml:"revenue" json:"revenue"`
}

// RetryConfig controls the publish retry policy.
type RetryConfig struct {
	MaxAttempts   int     `yaml:"max_attempts" json:"max_attempts"`
	BackoffFactor float64 `yaml:"backoff_factor" json:"backoff_factor"`
}

// MarketConfig controls the financial-data API client.
type MarketConfig struct {
	BaseURL        string `yaml:"base_url" json:"base_url"`
	MaxDataAgeDays int    `yaml:"max_data_age_days" json:"max_data_age_days"`
	RequestTimeout string `yaml:"request_timeout" json:"request_timeout"`
	PauseBetween   string `yaml:"pause_between" json:"pause_between"`
}

// NewsConfig controls the headline API client.
type NewsConfig struct {
	BaseURL        string `yaml:"base_url" json:"base_url"`
	PageSize       int    `yaml:"page_size" json:"page_size"`
	RequestTimeout string `yaml:"request_timeout" json:"request_timeout"`
}

// MonitoringConfig controls the on-disk status documents.
type MonitoringConfig struct {
	Dir       string `yaml:"dir" json:"dir"`
	MaxEvents int    `yaml:"max_events" json:"max_events"`
}

// Config is the top-level daemon configuration parsed from marketbat.yaml.
// API credentials deliberately live in the environment, not here.
type Config struct {
	Listen     string           `yaml:"listen" json:"listen"`
	DataDir    string           `yaml:"data_dir" json:"data_dir"`
	LogLevel   string           `yaml:"log_level" json:"log_level"`
	LogFile    string           `yaml:"log_file" json:"log_file,omitempty"`
	Watchlist  []Symbol         `yaml:"watchlist" json:"watchlist"`
	Schedule   ScheduleConfig   `yaml:"schedule" json:"schedule"`
	Retry      RetryConfig      `yaml:"retry" json:"retry"`
	Market     MarketConfig     `yaml:"market" json:"market"`
	News       NewsConfig       `yaml:"news" json:"news"`
	Monitoring MonitoringConfig `yaml:"monitoring" json:"monitoring"`
}

func applyDefaults(c *Config) {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	c.DataDir = expandPath(c.DataDir)
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFile != "" {
		c.LogFile = expandPath(c.LogFile)
	}
	if len(c.Watchlist) == 0 {
		c.Watchlist = []Symbol{
			{Ticker: "AAPL", Name: "Apple"},
			{Ticker: "MSFT", Name: "Microsoft"},
			{Ticker: "GOOGL", Name: "Google"},
			{Ticker: "TSLA", Name: "Tesla"},
			{Ticker: "NVDA", Name: "NVIDIA"},
		}
	}
	if c.Schedule.Morning == "" {
		c.Schedule.Morning = "0 8 * * *"
	}
	if c.Schedule.Evening == "" {
		c.Schedule.Evening = "0 20 * * *"
	}
	if c.Schedule.Revenue == "" {
		c.Schedule.Revenue = "30 8 * * 1-5"
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.BackoffFactor <= 0 {
		c.Retry.BackoffFactor = 2.0
	}
	if c.Market.BaseURL == "" {
		c.Market.BaseURL = "https://www.alphavantage.co/query"
	}
	if c.Market.MaxDataAgeDays <= 0 {
		c.Market.MaxDataAgeDays = 3
	}
	if c.Market.RequestTimeout == "" {
		c.Market.RequestTimeout = "10s"
	}
	if c.Market.PauseBetween == "" {
		c.Market.PauseBetween = "1s"
	}
	if c.News.BaseURL == "" {
		c.News.BaseURL = "https://newsapi.org/v2/everything"
	}
	if c.News.PageSize <= 0 {
		c.News.PageSize = 5
	}
	if c.News.RequestTimeout == "" {
		c.News.RequestTimeout = "10s"
	}
	if c.Monitoring.Dir == "" {
		c.Monitoring.Dir = filepath.Join(c.DataDir, "monitoring")
	} else {
		c.Monitoring.Dir = expandPath(c.Monitoring.Dir)
	}
	if c.Monitoring.MaxEvents <= 0 {
		c.Monitoring.MaxEvents = 50
	}
}

func expandPath(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return value
	}

	v = os.ExpandEnv(v)

	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return v
	}

	if v == "~" {
		return home
	}
	if strings.HasPrefix(v, "~/") {
		return filepath.Join(home, v[2:])
	}
	return v
}

// ParseTimeout parses a duration string, returning fallback when the
// value is empty or invalid.
func ParseTimeout(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// LoadConfig reads a YAML configuration file from path and returns a
// Config with defaults applied for any unset fields. A missing file is
// not an error: the defaults alone form a usable configuration.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}
