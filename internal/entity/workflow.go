package entity

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Status is the lifecycle state shared by workflows and their steps.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether s may move to next.
// pending -> running -> (completed | failed); terminal states never change.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusRunning
	case StatusRunning:
		return next == StatusCompleted || next == StatusFailed
	}
	return false
}

// StepName identifies one of the fixed pipeline stages.
type StepName string

const (
	StepHarvest       StepName = "harvest"
	StepNLPProcessing StepName = "nlp-processing"
	StepCorrelation   StepName = "correlation"
)

func (n StepName) IsValid() bool {
	switch n {
	case StepHarvest, StepNLPProcessing, StepCorrelation:
		return true
	}
	return false
}

// PipelineSteps is the fixed execution order of every workflow.
var PipelineSteps = []StepName{StepHarvest, StepNLPProcessing, StepCorrelation}

// Workflow is one pipeline run.
type Workflow struct {
	ID             string         `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Status         Status         `gorm:"type:varchar(16);not null;index" json:"status"`
	CurrentStep    string         `gorm:"type:varchar(96)" json:"current_step,omitempty"`
	Symbol         string         `gorm:"type:varchar(16)" json:"symbol,omitempty"`
	Steps          []WorkflowStep `gorm:"foreignKey:WorkflowID;constraint:OnDelete:CASCADE" json:"steps"`
	Result         datatypes.JSON `gorm:"type:jsonb" json:"result,omitempty" swaggertype:"object"`
	TrackedSymbols pq.StringArray `gorm:"type:text[]" json:"tracked_symbols,omitempty" swaggertype:"array,string"`
	Error          string         `json:"error,omitempty"`
	StartedAt      time.Time      `json:"started_at"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"-"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"-"`
}

func (Workflow) TableName() string {
	return "workflows"
}

// Duration returns the run time of a terminal workflow, zero otherwise.
func (w *Workflow) Duration() time.Duration {
	if w.CompletedAt == nil {
		return 0
	}
	return w.CompletedAt.Sub(w.StartedAt)
}

// Step returns the step with the given name, or nil.
func (w *Workflow) Step(name StepName) *WorkflowStep {
	for i := range w.Steps {
		if w.Steps[i].Name == name {
			return &w.Steps[i]
		}
	}
	return nil
}

// Clone returns a deep copy safe to hand out while the original keeps changing.
func (w *Workflow) Clone() *Workflow {
	c := *w
	c.Steps = make([]WorkflowStep, len(w.Steps))
	for i, s := range w.Steps {
		c.Steps[i] = s.clone()
	}
	c.Result = cloneJSON(w.Result)
	if w.TrackedSymbols != nil {
		c.TrackedSymbols = append(pq.StringArray(nil), w.TrackedSymbols...)
	}
	if w.CompletedAt != nil {
		t := *w.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// WorkflowStep is one stage within a workflow run.
type WorkflowStep struct {
	ID          string         `gorm:"primaryKey;type:varchar(96)" json:"id"`
	WorkflowID  string         `gorm:"type:varchar(64);not null;index" json:"workflow_id"`
	Name        StepName       `gorm:"type:varchar(32);not null" json:"name"`
	Agent       string         `gorm:"type:varchar(32)" json:"agent"`
	Position    int            `json:"position"`
	Status      Status         `gorm:"type:varchar(16);not null" json:"status"`
	Input       datatypes.JSON `gorm:"type:jsonb" json:"input,omitempty" swaggertype:"object"`
	Output      datatypes.JSON `gorm:"type:jsonb" json:"output,omitempty" swaggertype:"object"`
	Error       string         `json:"error,omitempty"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

func (WorkflowStep) TableName() string {
	return "workflow_steps"
}

func (s WorkflowStep) clone() WorkflowStep {
	c := s
	c.Input = cloneJSON(s.Input)
	c.Output = cloneJSON(s.Output)
	if s.StartedAt != nil {
		t := *s.StartedAt
		c.StartedAt = &t
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	return c
}

func cloneJSON(j datatypes.JSON) datatypes.JSON {
	if j == nil {
		return nil
	}
	return append(datatypes.JSON(nil), j...)
}
