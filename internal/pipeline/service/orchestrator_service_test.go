package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"golang-crypto-sentinel/internal/entity"
	"golang-crypto-sentinel/internal/pipeline/analyzer"
	"golang-crypto-sentinel/internal/pipeline/correlator"
	"golang-crypto-sentinel/internal/pipeline/dto"
	"golang-crypto-sentinel/internal/pipeline/harvester"
	"golang-crypto-sentinel/internal/pipeline/notifier"
	"golang-crypto-sentinel/internal/pipeline/repository"
	"golang-crypto-sentinel/internal/pipeline/strategy"
	"golang-crypto-sentinel/pkg/common"
	"golang-crypto-sentinel/pkg/logger"
	"golang-crypto-sentinel/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStep struct {
	name entity.StepName
	fn   func(ctx context.Context, run *dto.PipelineRun) (interface{}, error)
}

func (f *fakeStep) Execute(ctx context.Context, run *dto.PipelineRun) (interface{}, error) {
	return f.fn(ctx, run)
}

func (f *fakeStep) GetName() entity.StepName { return f.name }
func (f *fakeStep) GetAgent() string         { return string(f.name) + "-agent" }

// stepRecorder builds three steps that log their execution order.
type stepRecorder struct {
	mu    sync.Mutex
	order []entity.StepName
}

func (r *stepRecorder) visited() []entity.StepName {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.StepName(nil), r.order...)
}

func (r *stepRecorder) steps(overrides map[entity.StepName]func(ctx context.Context, run *dto.PipelineRun) (interface{}, error)) []strategy.StepExecutor {
	steps := make([]strategy.StepExecutor, 0, len(entity.PipelineSteps))
	for _, name := range entity.PipelineSteps {
		name := name
		fn := overrides[name]
		steps = append(steps, &fakeStep{name: name, fn: func(ctx context.Context, run *dto.PipelineRun) (interface{}, error) {
			r.mu.Lock()
			r.order = append(r.order, name)
			r.mu.Unlock()
			if fn != nil {
				return fn(ctx, run)
			}
			switch name {
			case entity.StepHarvest:
				run.Harvested = []dto.HarvestedItem{{ID: "h1", Content: "BTC rally", Relevance: 0.9}}
			case entity.StepNLPProcessing:
				run.Processed = []dto.ProcessedItem{{HarvestedItem: run.Harvested[0]}}
			case entity.StepCorrelation:
				run.TrackedSymbols = []string{"BTC"}
				run.Correlated = []dto.CorrelationResult{{Symbol: "BTC"}}
				run.Alerts = []dto.MarketAlert{{ID: "a1", Type: dto.AlertOpportunity, Symbol: "BTC"}}
			}
			return map[string]string{"step": string(name)}, nil
		}})
	}
	return steps
}

type memoryRepository struct {
	mu    sync.Mutex
	saved map[string]*entity.Workflow
	err   error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{saved: map[string]*entity.Workflow{}}
}

func (m *memoryRepository) Save(_ context.Context, wf *entity.Workflow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saved[wf.ID] = wf.Clone()
	return nil
}

func (m *memoryRepository) FindByID(_ context.Context, id string) (*entity.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wf, ok := m.saved[id]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	return wf.Clone(), nil
}

func (m *memoryRepository) FindRecent(_ context.Context, limit int) ([]entity.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]entity.Workflow, 0, len(m.saved))
	for _, wf := range m.saved {
		out = append(out, *wf.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestOrchestrator(t *testing.T, repo repository.WorkflowRepository, steps []strategy.StepExecutor, opts OrchestratorOptions) (*orchestratorService, *Metrics) {
	t.Helper()
	metrics := NewMetrics(prometheus.NewRegistry())
	o, err := NewOrchestratorService(logger.NewNop(), repo, steps, metrics, opts)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = o.Shutdown(ctx)
	})
	return o.(*orchestratorService), metrics
}

func waitForStatus(t *testing.T, o OrchestratorService, id string, want entity.Status) *entity.Workflow {
	t.Helper()
	var wf *entity.Workflow
	require.Eventually(t, func() bool {
		var err error
		wf, err = o.Status(context.Background(), id)
		return err == nil && wf.Status == want
	}, 5*time.Second, 5*time.Millisecond)
	return wf
}

func TestOrchestrator_RunsStepsInOrder(t *testing.T) {
	rec := &stepRecorder{}
	repo := newMemoryRepository()
	o, metrics := newTestOrchestrator(t, repo, rec.steps(nil), OrchestratorOptions{})

	id, err := o.Start(context.Background(), " btc ")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	wf := waitForStatus(t, o, id, entity.StatusCompleted)
	assert.Equal(t, entity.PipelineSteps, rec.visited())
	assert.Equal(t, "BTC", wf.Symbol)
	assert.NotNil(t, wf.CompletedAt)
	assert.Empty(t, wf.Error)
	assert.Equal(t, []string{"BTC"}, []string(wf.TrackedSymbols))

	require.Len(t, wf.Steps, 3)
	for i, st := range wf.Steps {
		assert.Equal(t, entity.PipelineSteps[i], st.Name)
		assert.Equal(t, i, st.Position)
		assert.Equal(t, entity.StatusCompleted, st.Status)
		assert.Equal(t, id+"-"+string(st.Name), st.ID)
		assert.NotNil(t, st.StartedAt)
		assert.NotNil(t, st.CompletedAt)
	}

	var in dto.StepInput
	require.NoError(t, json.Unmarshal(wf.Step(entity.StepNLPProcessing).Input, &in))
	assert.Equal(t, dto.StepInput{Symbol: "BTC", Items: 1}, in)

	var result dto.WorkflowResult
	require.NoError(t, json.Unmarshal(wf.Result, &result))
	assert.Len(t, result.Harvested, 1)
	assert.Len(t, result.Processed, 1)
	assert.Len(t, result.Correlated, 1)
	assert.Len(t, result.Alerts, 1)

	m := o.Metrics()
	assert.Equal(t, dto.MetricsSnapshot{Completed: 1, SuccessRate: 1, AverageDurationMs: m.AverageDurationMs}, m)
	assert.GreaterOrEqual(t, m.AverageDurationMs, 0.0)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WorkflowsStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WorkflowsFinished.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AlertsEmitted.WithLabelValues("opportunity")))

	require.Eventually(t, func() bool {
		saved, err := repo.FindByID(context.Background(), id)
		return err == nil && saved.Status == entity.StatusCompleted
	}, time.Second, 5*time.Millisecond)
}

func TestOrchestrator_FailureLeavesLaterStepsPending(t *testing.T) {
	rec := &stepRecorder{}
	steps := rec.steps(map[entity.StepName]func(context.Context, *dto.PipelineRun) (interface{}, error){
		entity.StepNLPProcessing: func(context.Context, *dto.PipelineRun) (interface{}, error) {
			return nil, errors.New("lexicon unavailable")
		},
	})
	o, metrics := newTestOrchestrator(t, newMemoryRepository(), steps, OrchestratorOptions{})

	id, err := o.Start(context.Background(), "ETH")
	require.NoError(t, err)

	wf := waitForStatus(t, o, id, entity.StatusFailed)
	assert.Equal(t, []entity.StepName{entity.StepHarvest, entity.StepNLPProcessing}, rec.visited())
	assert.Equal(t, "lexicon unavailable", wf.Error)
	assert.NotNil(t, wf.CompletedAt)

	assert.Equal(t, entity.StatusCompleted, wf.Step(entity.StepHarvest).Status)
	nlp := wf.Step(entity.StepNLPProcessing)
	assert.Equal(t, entity.StatusFailed, nlp.Status)
	assert.Equal(t, "lexicon unavailable", nlp.Error)
	corr := wf.Step(entity.StepCorrelation)
	assert.Equal(t, entity.StatusPending, corr.Status)
	assert.Nil(t, corr.StartedAt)

	var result dto.WorkflowResult
	require.NoError(t, json.Unmarshal(wf.Result, &result))
	assert.Len(t, result.Harvested, 1)
	assert.Empty(t, result.Processed)

	m := o.Metrics()
	assert.Equal(t, 1, m.Failed)
	assert.Equal(t, 0.0, m.SuccessRate)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WorkflowsFinished.WithLabelValues("failed")))
}

func TestOrchestrator_StepTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	rec := &stepRecorder{}
	steps := rec.steps(map[entity.StepName]func(context.Context, *dto.PipelineRun) (interface{}, error){
		entity.StepHarvest: func(context.Context, *dto.PipelineRun) (interface{}, error) {
			<-release
			return nil, nil
		},
	})
	o, _ := newTestOrchestrator(t, newMemoryRepository(), steps, OrchestratorOptions{StageTimeout: 30 * time.Millisecond})

	id, err := o.Start(context.Background(), "SOL")
	require.NoError(t, err)

	wf := waitForStatus(t, o, id, entity.StatusFailed)
	assert.Contains(t, wf.Error, ErrStepTimeout.Error())
	assert.Equal(t, entity.StatusFailed, wf.Step(entity.StepHarvest).Status)
	assert.Equal(t, entity.StatusPending, wf.Step(entity.StepNLPProcessing).Status)
}

func TestOrchestrator_StepPanicFailsWorkflow(t *testing.T) {
	rec := &stepRecorder{}
	steps := rec.steps(map[entity.StepName]func(context.Context, *dto.PipelineRun) (interface{}, error){
		entity.StepCorrelation: func(context.Context, *dto.PipelineRun) (interface{}, error) {
			panic("nil market")
		},
	})
	o, _ := newTestOrchestrator(t, newMemoryRepository(), steps, OrchestratorOptions{})

	id, err := o.Start(context.Background(), "")
	require.NoError(t, err)

	wf := waitForStatus(t, o, id, entity.StatusFailed)
	assert.Contains(t, wf.Error, "panicked")
	assert.Equal(t, entity.StatusFailed, wf.Step(entity.StepCorrelation).Status)
}

func TestOrchestrator_CancelRunningWorkflow(t *testing.T) {
	release := make(chan struct{})
	rec := &stepRecorder{}
	steps := rec.steps(map[entity.StepName]func(context.Context, *dto.PipelineRun) (interface{}, error){
		entity.StepHarvest: func(_ context.Context, run *dto.PipelineRun) (interface{}, error) {
			<-release
			run.Harvested = []dto.HarvestedItem{{ID: "late"}}
			return nil, nil
		},
	})
	o, _ := newTestOrchestrator(t, newMemoryRepository(), steps, OrchestratorOptions{})
	ctx := context.Background()

	id, err := o.Start(ctx, "BTC")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		wf, err := o.Status(ctx, id)
		return err == nil && wf.Step(entity.StepHarvest).Status == entity.StatusRunning
	}, 5*time.Second, 5*time.Millisecond)

	require.NoError(t, o.Cancel(ctx, id))

	wf, err := o.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusFailed, wf.Status)
	assert.Equal(t, common.CancelledByUser, wf.Error)
	assert.Equal(t, entity.StatusFailed, wf.Step(entity.StepHarvest).Status)
	assert.Equal(t, common.CancelledByUser, wf.Step(entity.StepHarvest).Error)

	close(release)
	require.Eventually(t, func() bool { return o.Metrics().Active == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, o.Shutdown(ctx))

	wf, err = o.Status(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusFailed, wf.Status)
	assert.Equal(t, entity.StatusPending, wf.Step(entity.StepNLPProcessing).Status)
	assert.Empty(t, wf.Result)
	assert.Equal(t, []entity.StepName{entity.StepHarvest}, rec.visited())

	assert.ErrorIs(t, o.Cancel(ctx, id), ErrNotCancellable)
}

func TestOrchestrator_CancelTerminalOrUnknown(t *testing.T) {
	o, _ := newTestOrchestrator(t, newMemoryRepository(), (&stepRecorder{}).steps(nil), OrchestratorOptions{})
	ctx := context.Background()

	id, err := o.Start(ctx, "ADA")
	require.NoError(t, err)
	waitForStatus(t, o, id, entity.StatusCompleted)

	assert.ErrorIs(t, o.Cancel(ctx, id), ErrNotCancellable)
	assert.ErrorIs(t, o.Cancel(ctx, "missing"), ErrWorkflowNotFound)

	_, err = o.Status(ctx, "missing")
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestCanMove(t *testing.T) {
	tests := []struct {
		cur, next entity.Status
		want      bool
	}{
		{entity.StatusPending, entity.StatusRunning, true},
		{entity.StatusRunning, entity.StatusRunning, true},
		{entity.StatusRunning, entity.StatusCompleted, true},
		{entity.StatusRunning, entity.StatusFailed, true},
		{entity.StatusPending, entity.StatusPending, true},
		{entity.StatusPending, entity.StatusFailed, false},
		{entity.StatusPending, entity.StatusCompleted, false},
		{entity.StatusCompleted, entity.StatusCompleted, false},
		{entity.StatusFailed, entity.StatusRunning, false},
		{entity.StatusCompleted, entity.StatusFailed, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, canMove(tt.cur, tt.next), "%s -> %s", tt.cur, tt.next)
	}
}

func TestOrchestrator_FinishRejectsIllegalTransitions(t *testing.T) {
	o, metrics := newTestOrchestrator(t, newMemoryRepository(), (&stepRecorder{}).steps(nil), OrchestratorOptions{})
	run := &workflowRun{
		workflow:  &entity.Workflow{ID: "wf-pending", Status: entity.StatusPending},
		cancelled: make(chan struct{}),
	}

	called := false
	assert.False(t, o.finish(run, entity.StatusCompleted, func(*entity.Workflow) { called = true }))
	assert.False(t, o.update(run, entity.StatusFailed, func(*entity.Workflow) { called = true }))
	assert.False(t, called)
	assert.Equal(t, entity.StatusPending, run.workflow.Status)

	require.True(t, o.update(run, entity.StatusRunning, func(*entity.Workflow) {}))
	assert.False(t, o.finish(run, entity.StatusRunning, func(*entity.Workflow) {}))
	require.True(t, o.finish(run, entity.StatusCompleted, func(*entity.Workflow) {}))
	assert.False(t, o.update(run, entity.StatusRunning, func(*entity.Workflow) {}))
	assert.Equal(t, entity.StatusCompleted, run.workflow.Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WorkflowsFinished.WithLabelValues("completed")))
}

func TestOrchestrator_RestoreSeedsHistory(t *testing.T) {
	repo := newMemoryRepository()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, st := range []entity.Status{entity.StatusCompleted, entity.StatusFailed, entity.StatusRunning, entity.StatusCompleted} {
		started := base.Add(time.Duration(i) * time.Minute)
		wf := &entity.Workflow{ID: fmt.Sprintf("wf-%d", i), Status: st, StartedAt: started}
		if st.IsTerminal() {
			wf.CompletedAt = utils.ToPointer(started.Add(time.Second))
		}
		require.NoError(t, repo.Save(ctx, wf))
	}

	o, _ := newTestOrchestrator(t, repo, (&stepRecorder{}).steps(nil), OrchestratorOptions{HistoryLimit: 2})
	restored, err := o.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, restored)

	list := o.List(ctx)
	require.Len(t, list.Completed, 1)
	assert.Equal(t, "wf-3", list.Completed[0].ID)
	assert.Equal(t, 1, list.Metrics.Completed)

	o, _ = newTestOrchestrator(t, repo, (&stepRecorder{}).steps(nil), OrchestratorOptions{HistoryLimit: 10})
	restored, err = o.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, restored)
	list = o.List(ctx)
	require.Len(t, list.Completed, 3)
	assert.Equal(t, []string{"wf-3", "wf-1", "wf-0"}, []string{list.Completed[0].ID, list.Completed[1].ID, list.Completed[2].ID})

	restored, err = o.Restore(ctx)
	require.NoError(t, err)
	assert.Zero(t, restored)

	repo.err = errors.New("db down")
	_, err = o.Restore(ctx)
	assert.ErrorContains(t, err, "db down")
}

func TestOrchestrator_MetricsOnEmptyHistory(t *testing.T) {
	o, _ := newTestOrchestrator(t, repository.NewNoopWorkflowRepository(), (&stepRecorder{}).steps(nil), OrchestratorOptions{})
	assert.Equal(t, dto.MetricsSnapshot{}, o.Metrics())

	list := o.List(context.Background())
	assert.Empty(t, list.Active)
	assert.Empty(t, list.Completed)
	assert.Equal(t, dto.MetricsSnapshot{}, list.Metrics)
}

func TestOrchestrator_HistoryEvictionFallsBackToRepository(t *testing.T) {
	repo := newMemoryRepository()
	o, _ := newTestOrchestrator(t, repo, (&stepRecorder{}).steps(nil), OrchestratorOptions{HistoryLimit: 2})
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := o.Start(ctx, "BTC")
		require.NoError(t, err)
		waitForStatus(t, o, id, entity.StatusCompleted)
		ids = append(ids, id)
	}

	list := o.List(ctx)
	require.Len(t, list.Completed, 2)
	assert.Equal(t, ids[2], list.Completed[0].ID)
	assert.Equal(t, ids[1], list.Completed[1].ID)
	assert.Equal(t, 2, list.Metrics.Completed)

	// evicted from history, served by the record store
	require.Eventually(t, func() bool {
		wf, err := o.Status(ctx, ids[0])
		return err == nil && wf.Status == entity.StatusCompleted
	}, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, o.Cancel(ctx, ids[0]), ErrNotCancellable)

	noop, _ := newTestOrchestrator(t, repository.NewNoopWorkflowRepository(), (&stepRecorder{}).steps(nil), OrchestratorOptions{HistoryLimit: 1})
	first, err := noop.Start(ctx, "ETH")
	require.NoError(t, err)
	waitForStatus(t, noop, first, entity.StatusCompleted)
	second, err := noop.Start(ctx, "ETH")
	require.NoError(t, err)
	waitForStatus(t, noop, second, entity.StatusCompleted)

	_, err = noop.Status(ctx, first)
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestOrchestrator_PersistenceFailureDoesNotFailWorkflow(t *testing.T) {
	repo := newMemoryRepository()
	repo.err = errors.New("db down")
	o, _ := newTestOrchestrator(t, repo, (&stepRecorder{}).steps(nil), OrchestratorOptions{})

	id, err := o.Start(context.Background(), "DOT")
	require.NoError(t, err)
	waitForStatus(t, o, id, entity.StatusCompleted)
}

func TestOrchestrator_ShutdownRejectsNewWorkflows(t *testing.T) {
	o, _ := newTestOrchestrator(t, newMemoryRepository(), (&stepRecorder{}).steps(nil), OrchestratorOptions{})
	require.NoError(t, o.Shutdown(context.Background()))

	_, err := o.Start(context.Background(), "BTC")
	assert.ErrorIs(t, err, ErrShuttingDown)
}

func TestNewOrchestratorService_RejectsWrongStepOrder(t *testing.T) {
	steps := (&stepRecorder{}).steps(nil)
	steps[0], steps[1] = steps[1], steps[0]
	_, err := NewOrchestratorService(logger.NewNop(), repository.NewNoopWorkflowRepository(), steps,
		NewMetrics(prometheus.NewRegistry()), OrchestratorOptions{})
	assert.Error(t, err)

	_, err = NewOrchestratorService(logger.NewNop(), repository.NewNoopWorkflowRepository(), steps[:2],
		NewMetrics(prometheus.NewRegistry()), OrchestratorOptions{})
	assert.Error(t, err)
}

func TestOrchestrator_EndToEndWithSampleSources(t *testing.T) {
	log := logger.NewNop()
	scorer := analyzer.NewScorer(log)
	h := harvester.New(log, scorer, harvester.Options{})
	h.Register(harvester.NewSampleSource("social", "Social Feed", "https://social.example.com", harvester.DefaultSocialPosts), true)
	h.Register(harvester.NewSampleSource("news", "News Feed", "https://news.example.com", harvester.DefaultNewsPosts), true)
	c := correlator.New(log, repository.NewSimulatedMarketRepository(42))

	steps := []strategy.StepExecutor{
		strategy.NewHarvestStrategy(log, h),
		strategy.NewNLPStrategy(log, scorer),
		strategy.NewCorrelationStrategy(log, scorer, c, notifier.NewNoopNotifier()),
	}
	o, _ := newTestOrchestrator(t, repository.NewNoopWorkflowRepository(), steps, OrchestratorOptions{})

	id, err := o.Start(context.Background(), "BTC")
	require.NoError(t, err)
	wf := waitForStatus(t, o, id, entity.StatusCompleted)

	var result dto.WorkflowResult
	require.NoError(t, json.Unmarshal(wf.Result, &result))
	require.NotEmpty(t, result.Harvested)

	found := false
	for _, item := range result.Harvested {
		assert.Greater(t, item.Relevance, 0.3)
		if item.Content == harvester.DefaultSocialPosts[0].Content {
			found = true
		}
	}
	assert.True(t, found, "scenario post should be retained")
	require.Len(t, result.Correlated, 1)
	assert.Equal(t, "BTC", result.Correlated[0].Symbol)
	assert.Equal(t, 1, c.Summary().TrackedSymbols)
}
