package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg, err := Load("testdata/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "pipeline-service", cfg.App.Name)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, int64(500), cfg.Redis.StreamMaxLen)
	assert.False(t, cfg.Database.Enabled)

	assert.Equal(t, 50, cfg.Pipeline.HistoryLimit)
	assert.Equal(t, 2*time.Minute, cfg.Pipeline.StageTimeout)
	require.Len(t, cfg.Pipeline.Schedules, 2)
	assert.Equal(t, "@every 15m", cfg.Pipeline.Schedules[0].Cron)
	assert.Equal(t, "BTC", cfg.Pipeline.Schedules[0].Symbol)

	assert.Equal(t, 0.3, cfg.Harvester.RelevanceFloor)
	assert.Equal(t, time.Minute, cfg.Harvester.SourceCacheTTL)
	require.Len(t, cfg.Harvester.Sources, 2)
	assert.Equal(t, "social", cfg.Harvester.Sources[0].Preset)
	assert.False(t, cfg.Harvester.Sources[1].Active)
	assert.Equal(t, 30, cfg.Harvester.Sources[1].MaxRequestPerMinute)

	assert.Equal(t, "simulated", cfg.Market.Provider)
	assert.Equal(t, int64(42), cfg.Market.Seed)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MARKET_PROVIDER", "coingecko")
	t.Setenv("PIPELINE_HISTORY_LIMIT", "7")

	cfg, err := Load("testdata/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "coingecko", cfg.Market.Provider)
	assert.Equal(t, 7, cfg.Pipeline.HistoryLimit)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("testdata/does-not-exist.yaml")
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Pipeline.HistoryLimit)
	assert.Equal(t, 4, cfg.Harvester.MaxConcurrent)
	assert.Equal(t, "simulated", cfg.Market.Provider)
}
