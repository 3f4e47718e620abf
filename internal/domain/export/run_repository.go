package export

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RunFilter narrows run listings
type RunFilter struct {
	Target      *Target
	Status      *Status
	StartedFrom *time.Time
	StartedTo   *time.Time
}

// RunListResult is a paginated run listing
type RunListResult struct {
	Items      []*Run `json:"items"`
	TotalCount int64  `json:"total_count"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}

// RunRepository persists export runs
type RunRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Run, error)
	FindAll(ctx context.Context, filter RunFilter, page, pageSize int) (*RunListResult, error)
	// FindLatestByTarget returns the most recently started run for a target,
	// or shared.ErrNotFound when the target never ran
	FindLatestByTarget(ctx context.Context, target Target) (*Run, error)
	Save(ctx context.Context, run *Run) error
}
