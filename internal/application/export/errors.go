package export

import (
	"errors"

	"github.com/feedbridge/backend/internal/domain/integration"
	"github.com/feedbridge/backend/internal/infrastructure/feedfile"
)

// Failure discriminants recorded on failed runs
const (
	FailureConfiguration     = "CONFIGURATION"
	FailureCatalogSource     = "CATALOG_SOURCE"
	FailureSerialization     = "SERIALIZATION"
	FailureRemoteTransport   = "REMOTE_TRANSPORT"
	FailureRemoteApplication = "REMOTE_APPLICATION"
	FailureFileSystem        = "FILESYSTEM"
	FailureRunInProgress     = "RUN_IN_PROGRESS"
	FailureInternal          = "INTERNAL"
)

// ErrRunInProgress is returned when another run already holds the
// destination lock
var ErrRunInProgress = errors.New("export: another run is already in progress")

// sourceError tags catalog source failures so they classify as
// CATALOG_SOURCE rather than INTERNAL.
type sourceError struct {
	err error
}

func (e *sourceError) Error() string {
	return e.err.Error()
}

func (e *sourceError) Unwrap() error {
	return e.err
}

// classifyFailure maps an error to its failure discriminant
func classifyFailure(err error) string {
	var recordErr *feedfile.RecordError
	var srcErr *sourceError
	switch {
	case errors.Is(err, ErrRunInProgress):
		return FailureRunInProgress
	case errors.As(err, &srcErr):
		return FailureCatalogSource
	case errors.Is(err, integration.ErrPlatformNotConfigured):
		return FailureConfiguration
	case errors.Is(err, integration.ErrPlatformUserError):
		return FailureRemoteApplication
	case errors.Is(err, integration.ErrPlatformRequestFailed),
		errors.Is(err, integration.ErrPlatformInvalidResponse),
		errors.Is(err, integration.ErrStagedUploadMissing):
		return FailureRemoteTransport
	case errors.As(err, &recordErr):
		return FailureSerialization
	case errors.Is(err, feedfile.ErrExportDirUnavailable):
		return FailureFileSystem
	default:
		return FailureInternal
	}
}
