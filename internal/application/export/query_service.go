package export

import (
	"context"

	"github.com/google/uuid"

	domainexport "github.com/feedbridge/backend/internal/domain/export"
)

// RunQueryService answers read-only questions about export run history
type RunQueryService struct {
	runs domainexport.RunRepository
}

// NewRunQueryService creates the run query service
func NewRunQueryService(runs domainexport.RunRepository) *RunQueryService {
	return &RunQueryService{runs: runs}
}

// GetRun returns a single run by its identifier
func (s *RunQueryService) GetRun(ctx context.Context, id uuid.UUID) (*domainexport.Run, error) {
	return s.runs.FindByID(ctx, id)
}

// ListRuns returns runs matching the filter, most recent first
func (s *RunQueryService) ListRuns(
	ctx context.Context,
	filter domainexport.RunFilter,
	page, pageSize int,
) (*domainexport.RunListResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return s.runs.FindAll(ctx, filter, page, pageSize)
}

// LatestRun returns the most recently started run for a target
func (s *RunQueryService) LatestRun(ctx context.Context, target domainexport.Target) (*domainexport.Run, error) {
	return s.runs.FindLatestByTarget(ctx, target)
}
