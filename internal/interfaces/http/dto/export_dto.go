package dto

import (
	"time"

	"github.com/feedbridge/backend/internal/domain/export"
)

// ListRunsRequest represents the run history query parameters
type ListRunsRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Target   string `form:"target" binding:"omitempty,oneof=ad_catalog commerce_platform"`
	Status   string `form:"status"`
}

// RunIDRequest represents a request with a run ID path parameter
type RunIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// RunResponse represents one export run in API responses
type RunResponse struct {
	ID          string     `json:"id"`
	RunID       string     `json:"run_id"`
	Target      string     `json:"target"`
	Status      string     `json:"status"`
	RecordCount int        `json:"record_count"`
	FileName    string     `json:"file_name,omitempty"`
	FileSize    int64      `json:"file_size,omitempty"`
	FileURL     string     `json:"file_url,omitempty"`
	JobID       string     `json:"job_id,omitempty"`
	FailureCode string     `json:"failure_code,omitempty"`
	FailureMsg  string     `json:"failure_message,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	DurationMS  int64      `json:"duration_ms"`
}

// RunResponseFromDomain converts a domain run to its API representation
func RunResponseFromDomain(run *export.Run) RunResponse {
	return RunResponse{
		ID:          run.ID.String(),
		RunID:       run.RunID,
		Target:      string(run.Target),
		Status:      string(run.Status),
		RecordCount: run.RecordCount,
		FileName:    run.FileName,
		FileSize:    run.FileSize,
		FileURL:     run.FileURL,
		JobID:       run.JobID,
		FailureCode: run.FailureCode,
		FailureMsg:  run.FailureMsg,
		StartedAt:   run.StartedAt,
		CompletedAt: run.CompletedAt,
		DurationMS:  run.Duration().Milliseconds(),
	}
}
