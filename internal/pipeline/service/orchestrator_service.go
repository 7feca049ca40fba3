package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang-crypto-sentinel/internal/entity"
	"golang-crypto-sentinel/internal/pipeline/dto"
	"golang-crypto-sentinel/internal/pipeline/repository"
	"golang-crypto-sentinel/internal/pipeline/strategy"
	"golang-crypto-sentinel/pkg/common"
	"golang-crypto-sentinel/pkg/logger"
	"golang-crypto-sentinel/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var (
	ErrWorkflowNotFound = errors.New("workflow not found")
	ErrNotCancellable   = errors.New("workflow is not cancellable")
	ErrStepTimeout      = errors.New("step timed out")
	ErrShuttingDown     = errors.New("orchestrator is shutting down")
)

const (
	DefaultHistoryLimit = 100
	DefaultStageTimeout = 2 * time.Minute
	persistTimeout      = 5 * time.Second
)

// OrchestratorService drives workflows through the fixed pipeline steps.
type OrchestratorService interface {
	Start(ctx context.Context, symbol string) (string, error)
	Status(ctx context.Context, id string) (*entity.Workflow, error)
	Cancel(ctx context.Context, id string) error
	List(ctx context.Context) dto.WorkflowListResponse
	Metrics() dto.MetricsSnapshot
	Restore(ctx context.Context) (int, error)
	Shutdown(ctx context.Context) error
}

// OrchestratorOptions tunes history retention and step timeouts.
type OrchestratorOptions struct {
	HistoryLimit int
	StageTimeout time.Duration
}

type workflowRun struct {
	workflow  *entity.Workflow
	cancelled chan struct{}
	persistMu sync.Mutex
}

func (r *workflowRun) isCancelled() bool {
	select {
	case <-r.cancelled:
		return true
	default:
		return false
	}
}

type orchestratorService struct {
	logger  *logger.Logger
	repo    repository.WorkflowRepository
	steps   []strategy.StepExecutor
	opts    OrchestratorOptions
	metrics *Metrics
	now     func() time.Time

	baseCtx context.Context
	stop    context.CancelFunc
	wg      sync.WaitGroup

	mu           sync.RWMutex
	closing      bool
	active       map[string]*workflowRun
	history      map[string]*entity.Workflow
	historyOrder []string
}

// NewOrchestratorService creates an orchestrator running steps in the given
// order. The steps must be harvest, nlp-processing and correlation.
func NewOrchestratorService(
	log *logger.Logger,
	repo repository.WorkflowRepository,
	steps []strategy.StepExecutor,
	metrics *Metrics,
	opts OrchestratorOptions,
) (OrchestratorService, error) {
	if len(steps) != len(entity.PipelineSteps) {
		return nil, fmt.Errorf("expected %d steps, got %d", len(entity.PipelineSteps), len(steps))
	}
	for i, s := range steps {
		if s.GetName() != entity.PipelineSteps[i] {
			return nil, fmt.Errorf("step %d must be %s, got %s", i, entity.PipelineSteps[i], s.GetName())
		}
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.StageTimeout <= 0 {
		opts.StageTimeout = DefaultStageTimeout
	}

	baseCtx, stop := context.WithCancel(context.Background())
	return &orchestratorService{
		logger:  log,
		repo:    repo,
		steps:   steps,
		opts:    opts,
		metrics: metrics,
		now:     time.Now,
		baseCtx: baseCtx,
		stop:    stop,
		active:  map[string]*workflowRun{},
		history: map[string]*entity.Workflow{},
	}, nil
}

// Start registers a pending workflow and runs it in the background.
func (s *orchestratorService) Start(ctx context.Context, symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	id := uuid.NewString()
	now := s.now()

	wf := &entity.Workflow{
		ID:        id,
		Status:    entity.StatusPending,
		Symbol:    symbol,
		StartedAt: now,
		Steps:     make([]entity.WorkflowStep, len(s.steps)),
	}
	for i, step := range s.steps {
		wf.Steps[i] = entity.WorkflowStep{
			ID:         fmt.Sprintf("%s-%s", id, step.GetName()),
			WorkflowID: id,
			Name:       step.GetName(),
			Agent:      step.GetAgent(),
			Position:   i,
			Status:     entity.StatusPending,
		}
	}
	run := &workflowRun{workflow: wf, cancelled: make(chan struct{})}

	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return "", ErrShuttingDown
	}
	s.active[id] = run
	s.wg.Add(1)
	s.mu.Unlock()

	s.metrics.WorkflowsStarted.Inc()
	s.logger.InfoContext(logger.WithWorkflowID(ctx, id), "Workflow started", logger.StringField("symbol", symbol))

	utils.GoSafe(func() {
		defer s.wg.Done()
		s.execute(logger.WithWorkflowID(s.baseCtx, id), run)
	})

	return id, nil
}

func (s *orchestratorService) execute(ctx context.Context, run *workflowRun) {
	if !s.update(run, entity.StatusRunning, func(*entity.Workflow) {}) {
		return
	}
	s.persist(ctx, run)

	wf := run.workflow
	state := &dto.PipelineRun{WorkflowID: wf.ID, Symbol: wf.Symbol}

	for i, step := range s.steps {
		if run.isCancelled() {
			s.logger.InfoContext(ctx, "Workflow cancelled, skipping remaining steps",
				logger.StringField("next_step", string(step.GetName())))
			return
		}

		input := stepInput(step.GetName(), state)
		started := s.now()
		ok := s.update(run, entity.StatusRunning, func(wf *entity.Workflow) {
			st := &wf.Steps[i]
			st.Status = entity.StatusRunning
			st.StartedAt = utils.ToPointer(started)
			st.Input = mustJSON(input)
			wf.CurrentStep = st.ID
		})
		if !ok {
			return
		}
		s.persist(ctx, run)

		s.logger.DebugContext(ctx, "Running step", logger.StringField("step", string(step.GetName())))
		next, output, err := s.runStep(ctx, step, state)
		s.metrics.StepDuration.WithLabelValues(string(step.GetName()), stepStatus(err)).Observe(s.now().Sub(started).Seconds())

		if err != nil {
			s.logger.ErrorContext(ctx, "Step failed",
				logger.StringField("step", string(step.GetName())), logger.ErrorField(err))
			s.fail(ctx, run, i, err, state)
			return
		}

		*state = next
		ok = s.update(run, entity.StatusRunning, func(wf *entity.Workflow) {
			st := &wf.Steps[i]
			st.Status = entity.StatusCompleted
			st.CompletedAt = utils.ToPointer(s.now())
			st.Output = mustJSON(output)
			wf.Result = mustJSON(state.Result())
		})
		if !ok {
			s.logger.InfoContext(ctx, "Discarding output of step finished after cancellation",
				logger.StringField("step", string(step.GetName())))
			return
		}
		s.persist(ctx, run)
	}

	s.complete(ctx, run, state)
}

// runStep executes a step on a copy of the run state so a step abandoned by
// its timeout can never race with later readers.
func (s *orchestratorService) runStep(ctx context.Context, step strategy.StepExecutor, state *dto.PipelineRun) (dto.PipelineRun, interface{}, error) {
	stepCtx, cancel := context.WithTimeout(ctx, s.opts.StageTimeout)
	defer cancel()

	type result struct {
		state  dto.PipelineRun
		output interface{}
		err    error
	}
	done := make(chan result, 1)
	next := *state

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("step %s panicked: %v", step.GetName(), r)}
			}
		}()
		out, err := step.Execute(stepCtx, &next)
		done <- result{state: next, output: out, err: err}
	}()

	select {
	case res := <-done:
		return res.state, res.output, res.err
	case <-stepCtx.Done():
		if errors.Is(stepCtx.Err(), context.DeadlineExceeded) {
			return dto.PipelineRun{}, nil, fmt.Errorf("%s %w after %s", step.GetName(), ErrStepTimeout, s.opts.StageTimeout)
		}
		return dto.PipelineRun{}, nil, stepCtx.Err()
	}
}

func (s *orchestratorService) fail(ctx context.Context, run *workflowRun, index int, err error, state *dto.PipelineRun) {
	now := s.now()
	ok := s.finish(run, entity.StatusFailed, func(wf *entity.Workflow) {
		st := &wf.Steps[index]
		st.Status = entity.StatusFailed
		st.Error = err.Error()
		st.CompletedAt = utils.ToPointer(now)
		wf.Error = err.Error()
		wf.CompletedAt = utils.ToPointer(now)
		wf.Result = mustJSON(state.Result())
	})
	if !ok {
		return
	}
	s.persist(ctx, run)
	s.logger.WarnContext(ctx, "Workflow failed", logger.ErrorField(err))
}

func (s *orchestratorService) complete(ctx context.Context, run *workflowRun, state *dto.PipelineRun) {
	ok := s.finish(run, entity.StatusCompleted, func(wf *entity.Workflow) {
		wf.CompletedAt = utils.ToPointer(s.now())
		wf.CurrentStep = ""
		wf.TrackedSymbols = state.TrackedSymbols
		wf.Result = mustJSON(state.Result())
	})
	if !ok {
		return
	}
	for _, a := range state.Alerts {
		s.metrics.AlertsEmitted.WithLabelValues(string(a.Type)).Inc()
	}
	s.persist(ctx, run)
	s.logger.InfoContext(ctx, "Workflow completed",
		logger.IntField("harvested", len(state.Harvested)),
		logger.IntField("correlated", len(state.Correlated)),
		logger.IntField("alerts", len(state.Alerts)),
		logger.DurationField("duration", run.workflow.Duration()))
}

// canMove reports whether a workflow in status cur may be mutated into next.
// Staying in a non-terminal status is allowed for step bookkeeping.
func canMove(cur, next entity.Status) bool {
	if cur == next {
		return !cur.IsTerminal()
	}
	return cur.CanTransition(next)
}

// update mutates the workflow and moves it to next. It reports false when the
// move is not allowed, e.g. once Cancel made the workflow terminal.
func (s *orchestratorService) update(run *workflowRun, next entity.Status, fn func(wf *entity.Workflow)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !canMove(run.workflow.Status, next) {
		return false
	}
	fn(run.workflow)
	run.workflow.Status = next
	return true
}

// finish applies a terminal mutation and moves the workflow into history.
func (s *orchestratorService) finish(run *workflowRun, next entity.Status, fn func(wf *entity.Workflow)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !next.IsTerminal() || !canMove(run.workflow.Status, next) {
		return false
	}
	fn(run.workflow)
	run.workflow.Status = next
	s.archive(run.workflow)
	s.metrics.WorkflowsFinished.WithLabelValues(string(run.workflow.Status)).Inc()
	return true
}

// archive must be called with s.mu held.
func (s *orchestratorService) archive(wf *entity.Workflow) {
	delete(s.active, wf.ID)
	s.history[wf.ID] = wf
	s.historyOrder = append(s.historyOrder, wf.ID)
	for len(s.historyOrder) > s.opts.HistoryLimit {
		delete(s.history, s.historyOrder[0])
		s.historyOrder = s.historyOrder[1:]
	}
}

// persist saves the latest state of the run. Saves of one run are
// serialised so the last write always carries the newest state.
func (s *orchestratorService) persist(ctx context.Context, run *workflowRun) {
	run.persistMu.Lock()
	defer run.persistMu.Unlock()

	s.mu.RLock()
	snapshot := run.workflow.Clone()
	s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if err := s.repo.Save(ctx, snapshot); err != nil {
		s.logger.WarnContext(ctx, "Failed to persist workflow", logger.ErrorField(err))
	}
}

// Status looks in the active set, then the history, then the record store.
func (s *orchestratorService) Status(ctx context.Context, id string) (*entity.Workflow, error) {
	s.mu.RLock()
	if run, ok := s.active[id]; ok {
		wf := run.workflow.Clone()
		s.mu.RUnlock()
		return wf, nil
	}
	if wf, ok := s.history[id]; ok {
		c := wf.Clone()
		s.mu.RUnlock()
		return c, nil
	}
	s.mu.RUnlock()

	wf, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, ErrWorkflowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow %s: %w", id, err)
	}
	return wf, nil
}

// Cancel fails a running workflow. The step in flight is not interrupted;
// whatever it returns is discarded.
func (s *orchestratorService) Cancel(ctx context.Context, id string) error {
	s.mu.Lock()
	run, ok := s.active[id]
	if !ok {
		_, inHistory := s.history[id]
		s.mu.Unlock()
		if inHistory {
			return ErrNotCancellable
		}
		if _, err := s.repo.FindByID(ctx, id); err == nil {
			return ErrNotCancellable
		}
		return ErrWorkflowNotFound
	}

	wf := run.workflow
	if !wf.Status.CanTransition(entity.StatusFailed) {
		s.mu.Unlock()
		return ErrNotCancellable
	}

	now := s.now()
	for i := range wf.Steps {
		if wf.Steps[i].Status.CanTransition(entity.StatusFailed) {
			wf.Steps[i].Status = entity.StatusFailed
			wf.Steps[i].Error = common.CancelledByUser
			wf.Steps[i].CompletedAt = utils.ToPointer(now)
		}
	}
	wf.Status = entity.StatusFailed
	wf.Error = common.CancelledByUser
	wf.CompletedAt = utils.ToPointer(now)
	s.archive(wf)
	close(run.cancelled)
	s.mu.Unlock()

	s.metrics.WorkflowsFinished.WithLabelValues(string(entity.StatusFailed)).Inc()
	s.persist(logger.WithWorkflowID(ctx, id), run)
	s.logger.InfoContext(logger.WithWorkflowID(ctx, id), "Workflow cancelled")
	return nil
}

// List returns active workflows oldest first and retained history newest first.
func (s *orchestratorService) List(ctx context.Context) dto.WorkflowListResponse {
	s.mu.RLock()
	resp := dto.WorkflowListResponse{
		Active:    make([]*entity.Workflow, 0, len(s.active)),
		Completed: make([]*entity.Workflow, 0, len(s.historyOrder)),
		Metrics:   s.metricsLocked(),
	}
	for _, run := range s.active {
		resp.Active = append(resp.Active, run.workflow.Clone())
	}
	for i := len(s.historyOrder) - 1; i >= 0; i-- {
		resp.Completed = append(resp.Completed, s.history[s.historyOrder[i]].Clone())
	}
	s.mu.RUnlock()

	sort.Slice(resp.Active, func(i, j int) bool {
		return resp.Active[i].StartedAt.Before(resp.Active[j].StartedAt)
	})
	return resp
}

// Metrics summarises the retained history.
func (s *orchestratorService) Metrics() dto.MetricsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metricsLocked()
}

func (s *orchestratorService) metricsLocked() dto.MetricsSnapshot {
	m := dto.MetricsSnapshot{Active: len(s.active)}
	var total time.Duration
	for _, wf := range s.history {
		switch wf.Status {
		case entity.StatusCompleted:
			m.Completed++
			total += wf.Duration()
		case entity.StatusFailed:
			m.Failed++
		}
	}
	if m.Completed > 0 {
		m.AverageDurationMs = float64(total.Milliseconds()) / float64(m.Completed)
	}
	if finished := m.Completed + m.Failed; finished > 0 {
		m.SuccessRate = float64(m.Completed) / float64(finished)
	}
	return m
}

// Restore seeds the history with the most recent terminal workflows from the
// record store. Records left pending or running by a previous process are
// skipped. It returns the number of workflows restored.
func (s *orchestratorService) Restore(ctx context.Context) (int, error) {
	workflows, err := s.repo.FindRecent(ctx, s.opts.HistoryLimit)
	if err != nil {
		return 0, fmt.Errorf("failed to load recent workflows: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	restored := 0
	// oldest first so the newest end up last in historyOrder
	for i := len(workflows) - 1; i >= 0; i-- {
		wf := workflows[i]
		if !wf.Status.IsTerminal() {
			continue
		}
		if _, ok := s.history[wf.ID]; ok {
			continue
		}
		if _, ok := s.active[wf.ID]; ok {
			continue
		}
		s.archive(&wf)
		restored++
	}
	return restored, nil
}

// Shutdown stops accepting workflows and waits for in-flight runs. When ctx
// expires first the remaining runs are cancelled.
func (s *orchestratorService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.stop()
		return nil
	case <-ctx.Done():
		s.stop()
		<-done
		return ctx.Err()
	}
}

func stepInput(name entity.StepName, state *dto.PipelineRun) dto.StepInput {
	in := dto.StepInput{Symbol: state.Symbol}
	switch name {
	case entity.StepNLPProcessing:
		in.Items = len(state.Harvested)
	case entity.StepCorrelation:
		in.Items = len(state.Processed)
	}
	return in
}

func stepStatus(err error) string {
	if err != nil {
		return string(entity.StatusFailed)
	}
	return string(entity.StatusCompleted)
}

func mustJSON(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON(fmt.Sprintf(`{"error":%q}`, err.Error()))
	}
	return datatypes.JSON(b)
}
