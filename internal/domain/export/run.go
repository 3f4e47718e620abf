package export

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/feedbridge/backend/internal/domain/shared"
)

// Target identifies which feed a run exports
type Target string

const (
	TargetAdCatalog        Target = "ad_catalog"
	TargetCommercePlatform Target = "commerce_platform"
)

// IsValid checks if the target is valid
func (t Target) IsValid() bool {
	switch t {
	case TargetAdCatalog, TargetCommercePlatform:
		return true
	}
	return false
}

// Status represents the state of an export run. Runs move forward only:
//
//	idle → snapshot_ready → serialized → staged_upload_created →
//	file_uploaded → job_triggered → completed | failed
//
// The ad-catalog path uses the subset idle → snapshot_ready → serialized →
// completed. An empty snapshot completes directly from snapshot_ready.
type Status string

const (
	StatusIdle                Status = "idle"
	StatusSnapshotReady       Status = "snapshot_ready"
	StatusSerialized          Status = "serialized"
	StatusStagedUploadCreated Status = "staged_upload_created"
	StatusFileUploaded        Status = "file_uploaded"
	StatusJobTriggered        Status = "job_triggered"
	StatusCompleted           Status = "completed"
	StatusFailed              Status = "failed"
)

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusIdle, StatusSnapshotReady, StatusSerialized, StatusStagedUploadCreated,
		StatusFileUploaded, StatusJobTriggered, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// IsTerminal returns true if this is a terminal state
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Run tracks one export invocation from snapshot to outcome
type Run struct {
	ID          uuid.UUID `json:"id"`
	RunID       string    `json:"run_id"`
	Target      Target    `json:"target"`
	Status      Status    `json:"status"`
	RecordCount int       `json:"record_count"`
	FileName    string    `json:"file_name,omitempty"`
	FileSize    int64     `json:"file_size,omitempty"`
	// FileURL is the published location of the feed file, set on completion
	// of the ad-catalog path
	FileURL string `json:"file_url,omitempty"`
	// JobID is the remote bulk job handle, set once the job is triggered
	JobID       string     `json:"job_id,omitempty"`
	FailureCode string     `json:"failure_code,omitempty"`
	FailureMsg  string     `json:"failure_message,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewRun creates a run in the idle state. runID is the run-scoped log
// identifier derived from the start time.
func NewRun(target Target, runID string, startedAt time.Time) (*Run, error) {
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_TARGET", fmt.Sprintf("Invalid export target: %s", target))
	}
	if runID == "" {
		return nil, shared.NewDomainError("INVALID_RUN_ID", "Run ID cannot be empty")
	}
	now := time.Now()
	return &Run{
		ID:        uuid.New(),
		RunID:     runID,
		Target:    target,
		Status:    StatusIdle,
		StartedAt: startedAt,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (r *Run) transition(from, to Status) error {
	if r.Status != from {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot transition to %s from state: %s", to, r.Status))
	}
	r.Status = to
	r.UpdatedAt = time.Now()
	return nil
}

// MarkSnapshotReady records the transformed record count
func (r *Run) MarkSnapshotReady(recordCount int) error {
	if recordCount < 0 {
		return shared.NewDomainError("INVALID_RECORD_COUNT", "Record count cannot be negative")
	}
	if err := r.transition(StatusIdle, StatusSnapshotReady); err != nil {
		return err
	}
	r.RecordCount = recordCount
	return nil
}

// MarkSerialized records the local feed file the run produced
func (r *Run) MarkSerialized(fileName string, fileSize int64) error {
	if err := r.transition(StatusSnapshotReady, StatusSerialized); err != nil {
		return err
	}
	r.FileName = fileName
	r.FileSize = fileSize
	return nil
}

// MarkStagedUploadCreated records that the staged upload slot exists
func (r *Run) MarkStagedUploadCreated() error {
	return r.transition(StatusSerialized, StatusStagedUploadCreated)
}

// MarkFileUploaded records the successful file transfer
func (r *Run) MarkFileUploaded() error {
	return r.transition(StatusStagedUploadCreated, StatusFileUploaded)
}

// MarkJobTriggered records the remote job handle
func (r *Run) MarkJobTriggered(jobID string) error {
	if jobID == "" {
		return shared.NewDomainError("INVALID_JOB_ID", "Job ID cannot be empty")
	}
	if err := r.transition(StatusFileUploaded, StatusJobTriggered); err != nil {
		return err
	}
	r.JobID = jobID
	return nil
}

// Complete marks the run completed. Valid from snapshot_ready (empty
// snapshot, nothing to export), serialized (tabular path) and job_triggered.
func (r *Run) Complete(fileURL string) error {
	switch r.Status {
	case StatusSnapshotReady, StatusSerialized, StatusJobTriggered:
	default:
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot complete from state: %s", r.Status))
	}
	r.Status = StatusCompleted
	r.FileURL = fileURL
	now := time.Now()
	r.CompletedAt = &now
	r.UpdatedAt = now
	return nil
}

// Fail marks the run failed with the failure discriminant and message
func (r *Run) Fail(code, message string) error {
	if r.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot fail from terminal state: %s", r.Status))
	}
	r.Status = StatusFailed
	r.FailureCode = code
	r.FailureMsg = message
	now := time.Now()
	r.CompletedAt = &now
	r.UpdatedAt = now
	return nil
}

// IsCompleted returns true if the run completed successfully
func (r *Run) IsCompleted() bool {
	return r.Status == StatusCompleted
}

// IsFailed returns true if the run failed
func (r *Run) IsFailed() bool {
	return r.Status == StatusFailed
}

// Duration returns how long the run has been running, or took in total
func (r *Run) Duration() time.Duration {
	end := time.Now()
	if r.CompletedAt != nil {
		end = *r.CompletedAt
	}
	return end.Sub(r.StartedAt)
}
