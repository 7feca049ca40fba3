package config

import (
	"time"

	"golang-crypto-sentinel/pkg/config"
)

const (
	defaultHistoryLimit   = 100
	defaultStageTimeout   = 2 * time.Minute
	defaultRelevanceFloor = 0.3
	defaultMaxConcurrent  = 4
)

// Schedule triggers a workflow run on a cron expression.
type Schedule struct {
	Cron   string `mapstructure:"cron"`
	Symbol string `mapstructure:"symbol"`
}

// Pipeline holds orchestrator configuration.
type Pipeline struct {
	HistoryLimit int           `mapstructure:"history_limit"`
	StageTimeout time.Duration `mapstructure:"stage_timeout"`
	Schedules    []Schedule    `mapstructure:"schedules"`
}

// Source configures one harvester data source.
type Source struct {
	ID                  string `mapstructure:"id"`
	Name                string `mapstructure:"name"`
	Type                string `mapstructure:"type"`
	URL                 string `mapstructure:"url"`
	Active              bool   `mapstructure:"active"`
	Preset              string `mapstructure:"preset"`
	MaxItems            int    `mapstructure:"max_items"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	FetchFullContent    bool   `mapstructure:"fetch_full_content"`
}

// Harvester holds harvester configuration.
type Harvester struct {
	RelevanceFloor float64       `mapstructure:"relevance_floor"`
	SourceCacheTTL time.Duration `mapstructure:"source_cache_ttl"`
	MaxConcurrent  int           `mapstructure:"max_concurrent"`
	Sources        []Source      `mapstructure:"sources"`
}

// Market holds the market data provider configuration.
type Market struct {
	Provider            string `mapstructure:"provider"`
	Seed                int64  `mapstructure:"seed"`
	BaseURL             string `mapstructure:"base_url"`
	APIKey              string `mapstructure:"api_key"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the pipeline service.
type Config struct {
	App       config.App      `mapstructure:"app"`
	Logger    config.Logger   `mapstructure:"logger"`
	Database  config.Database `mapstructure:"database"`
	Redis     config.Redis    `mapstructure:"redis"`
	API       config.API      `mapstructure:"api"`
	Pipeline  Pipeline        `mapstructure:"pipeline"`
	Harvester Harvester       `mapstructure:"harvester"`
	Market    Market          `mapstructure:"market"`
	Telegram  Telegram        `mapstructure:"telegram"`
}

// Load loads the pipeline configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Pipeline.HistoryLimit <= 0 {
		c.Pipeline.HistoryLimit = defaultHistoryLimit
	}
	if c.Pipeline.StageTimeout <= 0 {
		c.Pipeline.StageTimeout = defaultStageTimeout
	}
	if c.Harvester.RelevanceFloor <= 0 {
		c.Harvester.RelevanceFloor = defaultRelevanceFloor
	}
	if c.Harvester.MaxConcurrent <= 0 {
		c.Harvester.MaxConcurrent = defaultMaxConcurrent
	}
	if c.Market.Provider == "" {
		c.Market.Provider = "simulated"
	}
}
