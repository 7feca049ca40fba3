package dto

import "golang-crypto-sentinel/internal/entity"

// StartWorkflowRequest is the body of POST /workflows.
type StartWorkflowRequest struct {
	Symbol string `json:"symbol"`
}

type StartWorkflowResponse struct {
	WorkflowID string `json:"workflowId"`
	Status     string `json:"status"`
}

// WorkflowResult is the payload retained on a completed workflow.
type WorkflowResult struct {
	Harvested  []HarvestedItem     `json:"harvested"`
	Processed  []ProcessedItem     `json:"processed"`
	Correlated []CorrelationResult `json:"correlated"`
	Alerts     []MarketAlert       `json:"alerts"`
}

// MetricsSnapshot summarises the retained workflow history.
type MetricsSnapshot struct {
	Active            int     `json:"active"`
	Completed         int     `json:"completed"`
	Failed            int     `json:"failed"`
	AverageDurationMs float64 `json:"average_duration_ms"`
	SuccessRate       float64 `json:"success_rate"`
}

type WorkflowListResponse struct {
	Active    []*entity.Workflow `json:"active"`
	Completed []*entity.Workflow `json:"completed"`
	Metrics   MetricsSnapshot    `json:"metrics"`
}

type AgentStatus string

const (
	AgentOnline  AgentStatus = "online"
	AgentOffline AgentStatus = "offline"
)

type AgentHealth struct {
	Status AgentStatus `json:"status"`
}

// AgentHealthResponse is returned by GET /agents/health.
type AgentHealthResponse struct {
	Agents       map[string]AgentHealth `json:"agents"`
	SourceHealth map[string]bool        `json:"source_health"`
	Correlator   CorrelatorSummary      `json:"correlator"`
}

type HarvestRequest struct {
	Symbol string `json:"symbol"`
}

type ScoreRequest struct {
	Text string `json:"text"`
}

type CorrelateRequest struct {
	Sentiments []SentimentSummary `json:"sentiments"`
}

type CorrelateResponse struct {
	Results []CorrelationResult `json:"results"`
	Alerts  []MarketAlert       `json:"alerts"`
}

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PipelineRun carries the data flowing between the stages of one workflow.
// Each stage reads what the previous one produced and fills in its own part.
type PipelineRun struct {
	WorkflowID     string
	Symbol         string
	Harvested      []HarvestedItem
	Processed      []ProcessedItem
	Correlated     []CorrelationResult
	Alerts         []MarketAlert
	TrackedSymbols []string
}

// Result returns the payload retained on the workflow record.
func (r *PipelineRun) Result() WorkflowResult {
	return WorkflowResult{
		Harvested:  r.Harvested,
		Processed:  r.Processed,
		Correlated: r.Correlated,
		Alerts:     r.Alerts,
	}
}

// StepInput is recorded on a step when it starts.
type StepInput struct {
	Symbol string `json:"symbol,omitempty"`
	Items  int    `json:"items"`
}
