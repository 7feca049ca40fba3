package strategy

import (
	"context"
	"strings"

	"golang-crypto-sentinel/internal/entity"
	"golang-crypto-sentinel/internal/pipeline/analyzer"
	"golang-crypto-sentinel/internal/pipeline/dto"
	"golang-crypto-sentinel/internal/pipeline/notifier"
	"golang-crypto-sentinel/pkg/logger"
)

// CorrelationOutput is recorded on the correlation step.
type CorrelationOutput struct {
	Symbols []string `json:"symbols"`
	Results int      `json:"results"`
	Alerts  int      `json:"alerts"`
}

// CorrelationStrategy aggregates sentiment per symbol, correlates it with the
// market and hands the alerts to the notifier.
type CorrelationStrategy struct {
	logger     *logger.Logger
	aggregator BatchProcessor
	correlator Correlator
	notifier   notifier.AlertNotifier
}

func NewCorrelationStrategy(log *logger.Logger, aggregator BatchProcessor, correlator Correlator, n notifier.AlertNotifier) StepExecutor {
	return &CorrelationStrategy{
		logger:     log,
		aggregator: aggregator,
		correlator: correlator,
		notifier:   n,
	}
}

func (s *CorrelationStrategy) GetName() entity.StepName {
	return entity.StepCorrelation
}

func (s *CorrelationStrategy) GetAgent() string {
	return "correlator"
}

func (s *CorrelationStrategy) Execute(ctx context.Context, run *dto.PipelineRun) (interface{}, error) {
	symbols := targetSymbols(run)

	texts := make([]string, 0, len(run.Processed))
	for _, p := range run.Processed {
		texts = append(texts, p.Content)
	}

	summaries := make([]dto.SentimentSummary, 0, len(symbols))
	for _, sym := range symbols {
		summaries = append(summaries, s.aggregator.AggregateForSymbol(texts, sym))
	}

	run.TrackedSymbols = symbols
	run.Correlated = s.correlator.Correlate(ctx, summaries)
	run.Alerts = s.correlator.GenerateAlerts(run.Correlated)

	report := dto.AlertReport{WorkflowID: run.WorkflowID, Results: run.Correlated, Alerts: run.Alerts}
	if err := s.notifier.Notify(ctx, report); err != nil {
		s.logger.WarnContext(ctx, "Failed to notify market alerts", logger.ErrorField(err))
	}

	return CorrelationOutput{
		Symbols: symbols,
		Results: len(run.Correlated),
		Alerts:  len(run.Alerts),
	}, nil
}

// targetSymbols is the requested symbol, or every symbol mentioned in the
// processed items when none was requested.
func targetSymbols(run *dto.PipelineRun) []string {
	if sym := strings.ToUpper(strings.TrimSpace(run.Symbol)); sym != "" {
		return []string{sym}
	}
	return analyzer.Symbols(run.Processed)
}
