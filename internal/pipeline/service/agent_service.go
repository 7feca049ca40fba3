package service

import (
	"context"

	"golang-crypto-sentinel/internal/pipeline/dto"
)

// SourceRegistry is the harvester as seen by the agent service.
type SourceRegistry interface {
	Harvest(ctx context.Context, symbol string) ([]dto.HarvestedItem, error)
	Sources() []dto.DataSource
	SourceHealth() map[string]bool
	DegradedSources() []string
}

// TextAnalyzer scores a single text.
type TextAnalyzer interface {
	Analyze(text string) dto.TextAnalysis
}

// MarketCorrelator is the correlator as seen by the agent service.
type MarketCorrelator interface {
	Correlate(ctx context.Context, sentiments []dto.SentimentSummary) []dto.CorrelationResult
	GenerateAlerts(results []dto.CorrelationResult) []dto.MarketAlert
	Summary() dto.CorrelatorSummary
}

// AgentService exposes health and direct invocation of each pipeline stage.
type AgentService interface {
	Health(ctx context.Context) dto.AgentHealthResponse
	DataSources(ctx context.Context) []dto.DataSource
	Harvest(ctx context.Context, symbol string) ([]dto.HarvestedItem, error)
	Score(ctx context.Context, text string) dto.TextAnalysis
	Correlate(ctx context.Context, sentiments []dto.SentimentSummary) dto.CorrelateResponse
}

func NewAgentService(sources SourceRegistry, analyzer TextAnalyzer, correlator MarketCorrelator) AgentService {
	return &agentService{sources: sources, analyzer: analyzer, correlator: correlator}
}

type agentService struct {
	sources    SourceRegistry
	analyzer   TextAnalyzer
	correlator MarketCorrelator
}

// Health reports the harvester offline when it has no active source or the
// last fetch of every active source failed.
func (s *agentService) Health(ctx context.Context) dto.AgentHealthResponse {
	degraded := map[string]struct{}{}
	for _, id := range s.sources.DegradedSources() {
		degraded[id] = struct{}{}
	}

	harvester := dto.AgentOffline
	for _, src := range s.sources.Sources() {
		if !src.Active {
			continue
		}
		if _, failed := degraded[src.ID]; !failed {
			harvester = dto.AgentOnline
			break
		}
	}

	return dto.AgentHealthResponse{
		Agents: map[string]dto.AgentHealth{
			"harvester":     {Status: harvester},
			"nlp-processor": {Status: dto.AgentOnline},
			"correlator":    {Status: dto.AgentOnline},
		},
		SourceHealth: s.sources.SourceHealth(),
		Correlator:   s.correlator.Summary(),
	}
}

func (s *agentService) DataSources(ctx context.Context) []dto.DataSource {
	return s.sources.Sources()
}

func (s *agentService) Harvest(ctx context.Context, symbol string) ([]dto.HarvestedItem, error) {
	return s.sources.Harvest(ctx, symbol)
}

func (s *agentService) Score(ctx context.Context, text string) dto.TextAnalysis {
	return s.analyzer.Analyze(text)
}

func (s *agentService) Correlate(ctx context.Context, sentiments []dto.SentimentSummary) dto.CorrelateResponse {
	results := s.correlator.Correlate(ctx, sentiments)
	return dto.CorrelateResponse{
		Results: results,
		Alerts:  s.correlator.GenerateAlerts(results),
	}
}
