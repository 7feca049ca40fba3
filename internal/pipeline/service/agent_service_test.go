package service

import (
	"context"
	"errors"
	"testing"

	"golang-crypto-sentinel/internal/pipeline/analyzer"
	"golang-crypto-sentinel/internal/pipeline/correlator"
	"golang-crypto-sentinel/internal/pipeline/dto"
	"golang-crypto-sentinel/internal/pipeline/harvester"
	"golang-crypto-sentinel/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	id  string
	err error
}

func (s staticSource) Info() dto.DataSource {
	return dto.DataSource{ID: s.id, Name: s.id, Type: dto.SourceTypeSample}
}

func (s staticSource) Fetch(context.Context, string) ([]dto.RawItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []dto.RawItem{{Content: "BTC crypto market rally with bullish price action"}}, nil
}

type flatMarket struct{}

func (flatMarket) Snapshot(_ context.Context, symbol string) (dto.MarketSnapshot, error) {
	return dto.MarketSnapshot{Symbol: symbol, Price: 1}, nil
}

func newTestAgentService(sources ...harvester.Source) (AgentService, *harvester.Harvester) {
	log := logger.NewNop()
	scorer := analyzer.NewScorer(log)
	h := harvester.New(log, scorer, harvester.Options{})
	for _, src := range sources {
		h.Register(src, true)
	}
	return NewAgentService(h, scorer, correlator.New(log, flatMarket{})), h
}

func TestAgentService_Health(t *testing.T) {
	svc, h := newTestAgentService(staticSource{id: "ok"}, staticSource{id: "broken", err: errors.New("timeout")})
	ctx := context.Background()

	health := svc.Health(ctx)
	assert.Equal(t, dto.AgentOnline, health.Agents["harvester"].Status)
	assert.Equal(t, dto.AgentOnline, health.Agents["nlp-processor"].Status)
	assert.Equal(t, dto.AgentOnline, health.Agents["correlator"].Status)
	assert.Empty(t, health.SourceHealth)

	_, err := svc.Harvest(ctx, "BTC")
	require.NoError(t, err)
	health = svc.Health(ctx)
	assert.Equal(t, map[string]bool{"ok": true}, health.SourceHealth)
	assert.Equal(t, dto.AgentOnline, health.Agents["harvester"].Status)

	require.NoError(t, h.SetActive("ok", false))
	health = svc.Health(ctx)
	assert.Equal(t, dto.AgentOffline, health.Agents["harvester"].Status)
}

func TestAgentService_HarvesterOfflineWithoutSources(t *testing.T) {
	svc, _ := newTestAgentService()
	assert.Equal(t, dto.AgentOffline, svc.Health(context.Background()).Agents["harvester"].Status)
	assert.Empty(t, svc.DataSources(context.Background()))
}

func TestAgentService_ScoreAndCorrelate(t *testing.T) {
	svc, _ := newTestAgentService(staticSource{id: "ok"})
	ctx := context.Background()

	analysis := svc.Score(ctx, "dump crash scam")
	assert.Equal(t, dto.SentimentNegative, analysis.Sentiment)

	resp := svc.Correlate(ctx, []dto.SentimentSummary{{Symbol: "BTC", Sentiment: dto.SentimentNeutral, Confidence: 0.3}})
	require.Len(t, resp.Results, 1)
	assert.Equal(t, dto.AlignmentNeutral, resp.Results[0].Alignment)
	assert.Empty(t, resp.Alerts)

	health := svc.Health(ctx)
	assert.Equal(t, 1, health.Correlator.TrackedSymbols)

	sources := svc.DataSources(ctx)
	require.Len(t, sources, 1)
	assert.True(t, sources[0].Active)
}
