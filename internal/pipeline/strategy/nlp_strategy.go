package strategy

import (
	"context"

	"golang-crypto-sentinel/internal/entity"
	"golang-crypto-sentinel/internal/pipeline/analyzer"
	"golang-crypto-sentinel/internal/pipeline/dto"
	"golang-crypto-sentinel/pkg/logger"
)

// NLPOutput is recorded on the nlp-processing step.
type NLPOutput struct {
	Processed int      `json:"processed"`
	Skipped   int      `json:"skipped"`
	Symbols   []string `json:"symbols"`
}

// NLPStrategy scores every harvested item.
type NLPStrategy struct {
	logger    *logger.Logger
	processor BatchProcessor
}

func NewNLPStrategy(log *logger.Logger, processor BatchProcessor) StepExecutor {
	return &NLPStrategy{logger: log, processor: processor}
}

func (s *NLPStrategy) GetName() entity.StepName {
	return entity.StepNLPProcessing
}

func (s *NLPStrategy) GetAgent() string {
	return "nlp-processor"
}

func (s *NLPStrategy) Execute(ctx context.Context, run *dto.PipelineRun) (interface{}, error) {
	run.Processed = s.processor.ProcessBatch(ctx, run.Harvested)

	out := NLPOutput{
		Processed: len(run.Processed),
		Skipped:   len(run.Harvested) - len(run.Processed),
		Symbols:   analyzer.Symbols(run.Processed),
	}
	s.logger.DebugContext(ctx, "Processed harvested items",
		logger.IntField("processed", out.Processed), logger.IntField("skipped", out.Skipped))
	return out, nil
}
