package strategy

import (
	"context"

	"golang-crypto-sentinel/internal/entity"
	"golang-crypto-sentinel/internal/pipeline/dto"
)

// StepExecutor runs one pipeline stage against a workflow run. The returned
// output is recorded on the step.
type StepExecutor interface {
	Execute(ctx context.Context, run *dto.PipelineRun) (interface{}, error)
	GetName() entity.StepName
	GetAgent() string
}

// Harvester collects relevant items for a symbol.
type Harvester interface {
	Harvest(ctx context.Context, symbol string) ([]dto.HarvestedItem, error)
}

// BatchProcessor enriches harvested items with text analysis.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, items []dto.HarvestedItem) []dto.ProcessedItem
	AggregateForSymbol(texts []string, symbol string) dto.SentimentSummary
}

// Correlator turns sentiment summaries into verdicts and alerts.
type Correlator interface {
	Correlate(ctx context.Context, sentiments []dto.SentimentSummary) []dto.CorrelationResult
	GenerateAlerts(results []dto.CorrelationResult) []dto.MarketAlert
}
