package feedfile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/feedbridge/backend/internal/domain/feed"
)

// mutationLine wraps one mutation input in the destination API's envelope:
// each JSONL line is an independent {"input": ...} object.
type mutationLine struct {
	Input feed.ProductInput `json:"input"`
}

// JSONLWriter serializes typed mutation inputs into a newline-delimited JSON
// file, one compact object per line. A failure on any line aborts the write
// and names the failing record.
type JSONLWriter struct{}

// NewJSONLWriter creates a JSONL writer
func NewJSONLWriter() *JSONLWriter {
	return &JSONLWriter{}
}

// WriteFile writes one envelope-wrapped JSON object per input to a file under
// dir and returns the file's absolute path and byte size.
func (j *JSONLWriter) WriteFile(dir, name string, inputs []feed.ImportInput) (string, int64, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrExportDirUnavailable, err)
	}

	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrExportDirUnavailable, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for i := range inputs {
		line, err := json.Marshal(mutationLine{Input: inputs[i].Input})
		if err != nil {
			return "", 0, NewRecordError(inputs[i].SourceID, ErrCodeExportRecordWrite, err)
		}
		if _, err := w.Write(line); err != nil {
			return "", 0, NewRecordError(inputs[i].SourceID, ErrCodeExportRecordWrite, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return "", 0, NewRecordError(inputs[i].SourceID, ErrCodeExportRecordWrite, err)
		}
	}
	if err := w.Flush(); err != nil {
		return "", 0, fmt.Errorf("feedfile: cannot flush import file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		return "", 0, fmt.Errorf("feedfile: cannot stat import file: %w", err)
	}
	return path, info.Size(), nil
}
