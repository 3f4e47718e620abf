package runlog

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunContext(t *testing.T) {
	started := time.Date(2026, 8, 28, 14, 30, 5, 0, time.UTC)
	rc := NewRunContext(started)

	assert.Equal(t, "2026-08-28_14-30-05", rc.ID)
	assert.Equal(t, started, rc.StartedAt)
	assert.Equal(t, "2026-08-28_14-30-05_bulk_import.jsonl", rc.FileName("bulk_import.jsonl"))
}

func TestLogger_WritesLines(t *testing.T) {
	dir := t.TempDir()
	rc := NewRunContext(time.Date(2026, 8, 28, 14, 30, 5, 0, time.UTC))

	logger, err := Open(dir, rc, "bulk_import.log", nil)
	require.NoError(t, err)

	logger.Infof("Fetched %d products", 42)
	logger.Warnf("Backup file skipped")
	logger.Errorf("Upload returned status %d", 403)
	logger.Debugf("payload size %d", 1024)
	require.NoError(t, logger.Close())

	assert.Equal(t, filepath.Join(dir, "2026-08-28_14-30-05_bulk_import.log"), logger.Path())

	data, err := os.ReadFile(logger.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 4)

	lineFormat := regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] (INFO|WARNING|ERROR|DEBUG): .+$`)
	for _, line := range lines {
		assert.Regexp(t, lineFormat, line)
	}
	assert.Contains(t, lines[0], "INFO: Fetched 42 products")
	assert.Contains(t, lines[1], "WARNING: Backup file skipped")
	assert.Contains(t, lines[2], "ERROR: Upload returned status 403")
	assert.Contains(t, lines[3], "DEBUG: payload size 1024")
}

func TestLogger_AppendsAcrossOpens(t *testing.T) {
	dir := t.TempDir()
	rc := NewRunContext(time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC))

	first, err := Open(dir, rc, "run.log", nil)
	require.NoError(t, err)
	first.Infof("first")
	require.NoError(t, first.Close())

	second, err := Open(dir, rc, "run.log", nil)
	require.NoError(t, err)
	second.Infof("second")
	require.NoError(t, second.Close())

	data, err := os.ReadFile(second.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "first")
	assert.Contains(t, string(data), "second")
}

func TestOpen_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports", "logs")
	rc := NewRunContext(time.Now())

	logger, err := Open(dir, rc, "run.log", nil)
	require.NoError(t, err)
	defer logger.Close()

	_, err = os.Stat(logger.Path())
	assert.NoError(t, err)
}
