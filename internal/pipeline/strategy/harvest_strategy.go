package strategy

import (
	"context"
	"fmt"

	"golang-crypto-sentinel/internal/entity"
	"golang-crypto-sentinel/internal/pipeline/dto"
	"golang-crypto-sentinel/pkg/logger"
)

// HarvestOutput is recorded on the harvest step.
type HarvestOutput struct {
	Items int `json:"items"`
}

// HarvestStrategy runs the harvest stage.
type HarvestStrategy struct {
	logger    *logger.Logger
	harvester Harvester
}

func NewHarvestStrategy(log *logger.Logger, harvester Harvester) StepExecutor {
	return &HarvestStrategy{logger: log, harvester: harvester}
}

func (s *HarvestStrategy) GetName() entity.StepName {
	return entity.StepHarvest
}

func (s *HarvestStrategy) GetAgent() string {
	return "harvester"
}

func (s *HarvestStrategy) Execute(ctx context.Context, run *dto.PipelineRun) (interface{}, error) {
	items, err := s.harvester.Harvest(ctx, run.Symbol)
	if err != nil {
		s.logger.ErrorContext(ctx, "Harvest failed", logger.StringField("symbol", run.Symbol), logger.ErrorField(err))
		return nil, fmt.Errorf("harvest failed: %w", err)
	}
	run.Harvested = items
	return HarvestOutput{Items: len(items)}, nil
}
