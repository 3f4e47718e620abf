package feedfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/feedbridge/backend/internal/domain/feed"
)

// utf8BOM marks the tabular feed files as UTF-8 for spreadsheet consumers
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter serializes feed records into a delimited tabular file: UTF-8 with
// byte-order marker, one fixed header row, one row per record in schema
// order.
type CSVWriter struct {
	delimiter rune
	writeBOM  bool
}

// CSVWriterOption is a functional option for configuring the CSVWriter
type CSVWriterOption func(*CSVWriter)

// WithDelimiter sets the field delimiter (default ',')
func WithDelimiter(d rune) CSVWriterOption {
	return func(w *CSVWriter) {
		w.delimiter = d
	}
}

// WithoutBOM disables the UTF-8 byte-order marker
func WithoutBOM() CSVWriterOption {
	return func(w *CSVWriter) {
		w.writeBOM = false
	}
}

// NewCSVWriter creates a CSV writer with the given options
func NewCSVWriter(opts ...CSVWriterOption) *CSVWriter {
	w := &CSVWriter{
		delimiter: ',',
		writeBOM:  true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write serializes the records of one schema to w. Every record must carry
// the schema's full field set; the header row is the schema's field list.
func (c *CSVWriter) Write(w io.Writer, schema feed.Schema, records []feed.Record) error {
	if c.writeBOM {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("feedfile: cannot write BOM: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	cw.Comma = c.delimiter

	if err := cw.Write(schema.Fields); err != nil {
		return fmt.Errorf("feedfile: cannot write header: %w", err)
	}
	for i := range records {
		if err := cw.Write(records[i].Values()); err != nil {
			return fmt.Errorf("feedfile: cannot write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile serializes the records to a file under dir, creating the
// directory when missing, and returns the file's absolute path and size.
func (c *CSVWriter) WriteFile(dir, name string, schema feed.Schema, records []feed.Record) (string, int64, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrExportDirUnavailable, err)
	}

	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrExportDirUnavailable, err)
	}
	defer file.Close()

	if err := c.Write(file, schema, records); err != nil {
		return "", 0, err
	}

	info, err := file.Stat()
	if err != nil {
		return "", 0, fmt.Errorf("feedfile: cannot stat feed file: %w", err)
	}
	return path, info.Size(), nil
}
