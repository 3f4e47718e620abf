// Package integration defines the port to the destination commerce platform
// and the typed failures its adapters surface.
package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// CommercePlatform Errors
// ---------------------------------------------------------------------------

var (
	// ErrPlatformNotConfigured indicates missing destination credentials
	ErrPlatformNotConfigured = errors.New("integration: platform not configured")
	// ErrPlatformRequestFailed indicates a transport-level failure: network
	// error, timeout, or a non-2xx response
	ErrPlatformRequestFailed = errors.New("integration: platform request failed")
	// ErrPlatformInvalidResponse indicates a response that could not be parsed
	ErrPlatformInvalidResponse = errors.New("integration: invalid platform response")
	// ErrPlatformUserError indicates application-level errors reported by the
	// platform alongside a successful transport response
	ErrPlatformUserError = errors.New("integration: platform reported user errors")
	// ErrStagedUploadMissing indicates the platform returned no staged target
	ErrStagedUploadMissing = errors.New("integration: no staged upload target returned")
)

// UserError is one application-level error reported by the platform in an
// otherwise successful response.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// UserErrorsToError folds platform user errors into a single typed error, nil
// when the slice is empty.
func UserErrorsToError(errs []UserError) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(errs))
	for _, ue := range errs {
		if len(ue.Field) > 0 {
			msgs = append(msgs, fmt.Sprintf("%s: %s", strings.Join(ue.Field, "."), ue.Message))
		} else {
			msgs = append(msgs, ue.Message)
		}
	}
	return fmt.Errorf("%w: %s", ErrPlatformUserError, strings.Join(msgs, "; "))
}

// ---------------------------------------------------------------------------
// Staged Upload
// ---------------------------------------------------------------------------

// StagedUploadRequest asks the platform for a temporary signed upload target
type StagedUploadRequest struct {
	Filename string
	MimeType string
	// FileSize is the exact byte size of the file to be transferred
	FileSize int64
	// Resource is the platform resource class of the upload
	Resource string
}

// StagedUploadParameter is one form parameter of a staged target. The raw PUT
// transfer method intentionally does not use them.
type StagedUploadParameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// StagedUpload is a temporary signed remote storage location that accepts one
// file before a bulk job consumes it.
type StagedUpload struct {
	// URL is the signed target the file is PUT to
	URL string
	// ResourceURL is the locator a bulk job references the upload by
	ResourceURL string
	Parameters  []StagedUploadParameter
}

// ---------------------------------------------------------------------------
// Bulk Import Job
// ---------------------------------------------------------------------------

// BulkImportJob is the handle of an asynchronous remote bulk operation. The
// orchestrator records it and never polls it to completion.
type BulkImportJob struct {
	ID          string
	Status      string
	ErrorCode   string
	ObjectCount int64
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// CommercePlatform is the destination platform port: the three remote calls
// of the bulk import workflow.
type CommercePlatform interface {
	// CreateStagedUpload requests a signed upload target for a file of known
	// size and MIME type
	CreateStagedUpload(ctx context.Context, req StagedUploadRequest) (*StagedUpload, error)

	// UploadFile streams the local file to the staged target via HTTP PUT.
	// The local file handle is released on every exit path.
	UploadFile(ctx context.Context, staged *StagedUpload, filePath string) error

	// RunBulkMutation starts the asynchronous bulk job consuming the staged
	// upload, referenced by its remote resource locator
	RunBulkMutation(ctx context.Context, resourceURL string) (*BulkImportJob, error)
}
