package repository

import (
	"context"
	"errors"

	"golang-crypto-sentinel/internal/entity"

	"gorm.io/gorm"
)

// ErrRecordNotFound is returned when no workflow record exists for an id.
var ErrRecordNotFound = errors.New("workflow record not found")

// WorkflowRepository persists workflow records keyed by workflow id.
type WorkflowRepository interface {
	Save(ctx context.Context, workflow *entity.Workflow) error
	FindByID(ctx context.Context, id string) (*entity.Workflow, error)
	FindRecent(ctx context.Context, limit int) ([]entity.Workflow, error)
}

// NewWorkflowRepository creates a new GORM-based workflow repository.
func NewWorkflowRepository(db *gorm.DB) WorkflowRepository {
	return &workflowRepository{db: db}
}

type workflowRepository struct {
	db *gorm.DB
}

// Save upserts the workflow together with its steps.
func (r *workflowRepository) Save(ctx context.Context, workflow *entity.Workflow) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(workflow).Error
}

// FindByID retrieves a workflow and its ordered steps.
func (r *workflowRepository) FindByID(ctx context.Context, id string) (*entity.Workflow, error) {
	var workflow entity.Workflow
	err := r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", id).
		First(&workflow).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &workflow, nil
}

// FindRecent returns the most recently started workflows.
func (r *workflowRepository) FindRecent(ctx context.Context, limit int) ([]entity.Workflow, error) {
	var workflows []entity.Workflow
	err := r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("started_at DESC").
		Limit(limit).
		Find(&workflows).Error
	if err != nil {
		return nil, err
	}
	return workflows, nil
}

// NewNoopWorkflowRepository returns a store that keeps nothing, used when
// the database is disabled.
func NewNoopWorkflowRepository() WorkflowRepository {
	return noopWorkflowRepository{}
}

type noopWorkflowRepository struct{}

func (noopWorkflowRepository) Save(context.Context, *entity.Workflow) error { return nil }

func (noopWorkflowRepository) FindByID(context.Context, string) (*entity.Workflow, error) {
	return nil, ErrRecordNotFound
}

func (noopWorkflowRepository) FindRecent(context.Context, int) ([]entity.Workflow, error) {
	return nil, nil
}
