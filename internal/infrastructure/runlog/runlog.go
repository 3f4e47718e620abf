// Package runlog provides the append-only, run-scoped log artifact: one text
// file per export run, every line carrying a timestamp and severity. It is a
// forensic trail, not a metrics system.
package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// runIDFormat derives the run identifier from the run start time
const runIDFormat = "2006-01-02_15-04-05"

// lineTimeFormat is the timestamp format of each log line
const lineTimeFormat = "2006-01-02 15:04:05"

// RunContext identifies one export run. It is created once at run start and
// passed explicitly into every component that logs or names artifacts for the
// run; no process-wide state is involved, so every line of one invocation
// lands in one log artifact.
type RunContext struct {
	ID        string
	StartedAt time.Time
}

// NewRunContext creates a run context with an identifier derived from the
// start time.
func NewRunContext(startedAt time.Time) RunContext {
	return RunContext{
		ID:        startedAt.Format(runIDFormat),
		StartedAt: startedAt,
	}
}

// FileName builds a run-scoped artifact name: "<runID>_<suffix>"
func (rc RunContext) FileName(suffix string) string {
	return rc.ID + "_" + suffix
}

// Logger is the append-only sink of one run. It is a single writer within a
// run; the mutex only guards against interleaved lines from deferred cleanup.
type Logger struct {
	run  RunContext
	file *os.File
	zlog *zap.Logger
	mu   sync.Mutex
}

// Open creates the run log file under dir, creating the directory when
// missing. Lines are additionally mirrored to the service logger.
func Open(dir string, run RunContext, suffix string, zlog *zap.Logger) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("runlog: cannot create log directory: %w", err)
	}
	path := filepath.Join(dir, run.FileName(suffix))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("runlog: cannot open log file: %w", err)
	}
	if zlog == nil {
		zlog = zap.NewNop()
	}
	return &Logger{run: run, file: file, zlog: zlog}, nil
}

// Run returns the run context this logger belongs to
func (l *Logger) Run() RunContext {
	return l.run
}

// Path returns the log artifact path
func (l *Logger) Path() string {
	return l.file.Name()
}

// Close releases the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// Infof appends an informational line
func (l *Logger) Infof(format string, args ...any) {
	l.write("INFO", format, args...)
	l.zlog.Info(fmt.Sprintf(format, args...), zap.String("run_id", l.run.ID))
}

// Warnf appends a warning line
func (l *Logger) Warnf(format string, args ...any) {
	l.write("WARNING", format, args...)
	l.zlog.Warn(fmt.Sprintf(format, args...), zap.String("run_id", l.run.ID))
}

// Errorf appends an error line
func (l *Logger) Errorf(format string, args ...any) {
	l.write("ERROR", format, args...)
	l.zlog.Error(fmt.Sprintf(format, args...), zap.String("run_id", l.run.ID))
}

// Debugf appends a debug line
func (l *Logger) Debugf(format string, args ...any) {
	l.write("DEBUG", format, args...)
	l.zlog.Debug(fmt.Sprintf(format, args...), zap.String("run_id", l.run.ID))
}

func (l *Logger) write(level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	line := fmt.Sprintf("[%s] %s: %s\n", time.Now().Format(lineTimeFormat), level, fmt.Sprintf(format, args...))
	// A failed append must not abort the run the log describes
	_, _ = l.file.WriteString(line)
}
