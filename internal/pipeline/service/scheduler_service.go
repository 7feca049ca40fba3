package service

import (
	"context"
	"fmt"

	"golang-crypto-sentinel/internal/pipeline/config"
	"golang-crypto-sentinel/pkg/logger"

	"github.com/robfig/cron/v3"
)

// SchedulerService starts workflows on cron schedules.
type SchedulerService interface {
	Start()
	Stop() context.Context
	Entries() int
}

// NewSchedulerService validates every schedule up front; an invalid cron
// expression is a configuration error.
func NewSchedulerService(log *logger.Logger, orchestrator OrchestratorService, schedules []config.Schedule) (SchedulerService, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	s := &schedulerService{
		logger:       log,
		orchestrator: orchestrator,
		cron:         cron.New(cron.WithParser(parser)),
	}

	for _, sc := range schedules {
		sc := sc
		if _, err := s.cron.AddFunc(sc.Cron, func() { s.trigger(sc) }); err != nil {
			return nil, fmt.Errorf("invalid schedule %q: %w", sc.Cron, err)
		}
	}
	return s, nil
}

type schedulerService struct {
	logger       *logger.Logger
	orchestrator OrchestratorService
	cron         *cron.Cron
}

func (s *schedulerService) Start() {
	s.logger.Info("Scheduler service starting", logger.IntField("entries", s.Entries()))
	s.cron.Start()
}

// Stop halts the cron loop; the returned context is done once running
// triggers have returned.
func (s *schedulerService) Stop() context.Context {
	s.logger.Info("Scheduler service stopping")
	return s.cron.Stop()
}

func (s *schedulerService) Entries() int {
	return len(s.cron.Entries())
}

func (s *schedulerService) trigger(sc config.Schedule) {
	id, err := s.orchestrator.Start(context.Background(), sc.Symbol)
	if err != nil {
		s.logger.Error("Failed to start scheduled workflow",
			logger.ErrorField(err), logger.StringField("cron", sc.Cron), logger.StringField("symbol", sc.Symbol))
		return
	}
	s.logger.Info("Scheduled workflow started",
		logger.StringField("workflow_id", id), logger.StringField("cron", sc.Cron), logger.StringField("symbol", sc.Symbol))
}
