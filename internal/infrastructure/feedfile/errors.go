// Package feedfile serializes feed records into the export file formats:
// delimited tabular with a byte-order marker, and newline-delimited JSON
// mutation inputs.
package feedfile

import (
	"errors"
	"fmt"
)

// ErrCodeExportRecordWrite marks a serialization failure scoped to one record
const ErrCodeExportRecordWrite = "ERR_EXPORT_RECORD_WRITE"

// ErrExportDirUnavailable is returned when the export directory cannot be
// created or accessed
var ErrExportDirUnavailable = errors.New("feedfile: export directory unavailable")

// RecordError identifies the record on which serialization failed
type RecordError struct {
	// SourceID is the id of the record that could not be written
	SourceID int64
	Code     string
	Err      error
}

// Error implements the error interface
func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.SourceID, e.Err)
}

// Unwrap returns the underlying cause
func (e *RecordError) Unwrap() error {
	return e.Err
}

// NewRecordError creates a new RecordError
func NewRecordError(sourceID int64, code string, err error) *RecordError {
	return &RecordError{SourceID: sourceID, Code: code, Err: err}
}
