// Package scheduler triggers periodic export runs: the advertising feed on a
// short cycle and the bulk import on a long one.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	domainexport "github.com/feedbridge/backend/internal/domain/export"
)

// Runner executes one export run to completion
type Runner interface {
	Run(ctx context.Context) (*domainexport.Run, error)
}

// ExportSchedulerConfig holds the trigger cadence per target
type ExportSchedulerConfig struct {
	// CheckInterval is how often due targets are evaluated
	CheckInterval time.Duration

	// AdFeedInterval is the pause between advertising feed exports
	AdFeedInterval time.Duration

	// BulkImportInterval is the pause between bulk import runs
	BulkImportInterval time.Duration
}

// DefaultExportSchedulerConfig returns default configuration
func DefaultExportSchedulerConfig() ExportSchedulerConfig {
	return ExportSchedulerConfig{
		CheckInterval:      time.Minute,
		AdFeedInterval:     time.Hour,
		BulkImportInterval: 24 * time.Hour,
	}
}

// ExportScheduler runs due export targets on their configured cadence. Runs
// for one target never overlap here; cross-instance overlap is rejected by
// the run lock inside the runners themselves.
type ExportScheduler struct {
	config     ExportSchedulerConfig
	adFeed     Runner
	bulkImport Runner
	logger     *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	lastRunMu sync.Mutex
	lastRun   map[domainexport.Target]time.Time
}

// NewExportScheduler creates a new export scheduler
func NewExportScheduler(
	config ExportSchedulerConfig,
	adFeed Runner,
	bulkImport Runner,
	logger *zap.Logger,
) *ExportScheduler {
	return &ExportScheduler{
		config:     config,
		adFeed:     adFeed,
		bulkImport: bulkImport,
		logger:     logger,
		lastRun:    make(map[domainexport.Target]time.Time),
	}
}

// Start starts the scheduler loop
func (s *ExportScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Export scheduler started",
		zap.Duration("check_interval", s.config.CheckInterval),
		zap.Duration("ad_feed_interval", s.config.AdFeedInterval),
		zap.Duration("bulk_import_interval", s.config.BulkImportInterval),
	)
	return nil
}

// Stop stops the scheduler and waits for an in-flight run to finish
func (s *ExportScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Export scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ExportScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	// Run due targets immediately on start
	s.checkAndRun(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkAndRun(ctx)
		}
	}
}

// checkAndRun executes every target whose interval has elapsed
func (s *ExportScheduler) checkAndRun(ctx context.Context) {
	now := time.Now()
	if s.due(domainexport.TargetAdCatalog, now, s.config.AdFeedInterval) {
		s.runTarget(ctx, domainexport.TargetAdCatalog, s.adFeed, now)
	}
	if s.due(domainexport.TargetCommercePlatform, now, s.config.BulkImportInterval) {
		s.runTarget(ctx, domainexport.TargetCommercePlatform, s.bulkImport, now)
	}
}

func (s *ExportScheduler) due(target domainexport.Target, now time.Time, interval time.Duration) bool {
	s.lastRunMu.Lock()
	defer s.lastRunMu.Unlock()
	last, ok := s.lastRun[target]
	return !ok || now.Sub(last) >= interval
}

func (s *ExportScheduler) runTarget(ctx context.Context, target domainexport.Target, runner Runner, now time.Time) {
	s.lastRunMu.Lock()
	s.lastRun[target] = now
	s.lastRunMu.Unlock()

	s.logger.Info("Scheduled export run starting", zap.String("target", string(target)))

	run, err := runner.Run(ctx)
	if err != nil {
		s.logger.Error("Scheduled export run failed",
			zap.String("target", string(target)),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("Scheduled export run finished",
		zap.String("target", string(target)),
		zap.String("run_id", run.RunID),
		zap.String("status", string(run.Status)),
		zap.Int("record_count", run.RecordCount),
	)
}
