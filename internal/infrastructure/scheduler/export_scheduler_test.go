package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainexport "github.com/feedbridge/backend/internal/domain/export"
)

type countingRunner struct {
	runs atomic.Int64
	err  error
}

func (r *countingRunner) Run(ctx context.Context) (*domainexport.Run, error) {
	r.runs.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	run, err := domainexport.NewRun(domainexport.TargetAdCatalog, "2026-08-28_12-00-00", time.Now())
	if err != nil {
		return nil, err
	}
	return run, nil
}

func testSchedulerConfig() ExportSchedulerConfig {
	return ExportSchedulerConfig{
		CheckInterval:      10 * time.Millisecond,
		AdFeedInterval:     time.Hour,
		BulkImportInterval: time.Hour,
	}
}

func TestDefaultExportSchedulerConfig(t *testing.T) {
	cfg := DefaultExportSchedulerConfig()
	assert.Equal(t, time.Minute, cfg.CheckInterval)
	assert.Equal(t, time.Hour, cfg.AdFeedInterval)
	assert.Equal(t, 24*time.Hour, cfg.BulkImportInterval)
}

func TestExportScheduler_RunsBothTargetsOnStart(t *testing.T) {
	adFeed := &countingRunner{}
	bulkImport := &countingRunner{}
	s := NewExportScheduler(testSchedulerConfig(), adFeed, bulkImport, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	require.Eventually(t, func() bool {
		return adFeed.runs.Load() == 1 && bulkImport.runs.Load() == 1
	}, time.Second, 5*time.Millisecond)

	// Intervals have not elapsed, so no further runs happen
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(1), adFeed.runs.Load())
	assert.Equal(t, int64(1), bulkImport.runs.Load())
}

func TestExportScheduler_ReRunsWhenIntervalElapses(t *testing.T) {
	adFeed := &countingRunner{}
	bulkImport := &countingRunner{}
	cfg := testSchedulerConfig()
	cfg.AdFeedInterval = 20 * time.Millisecond

	s := NewExportScheduler(cfg, adFeed, bulkImport, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	require.Eventually(t, func() bool {
		return adFeed.runs.Load() >= 3
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(1), bulkImport.runs.Load())
}

func TestExportScheduler_RunnerErrorDoesNotStopLoop(t *testing.T) {
	adFeed := &countingRunner{err: errors.New("source unreachable")}
	bulkImport := &countingRunner{}
	cfg := testSchedulerConfig()
	cfg.AdFeedInterval = 20 * time.Millisecond

	s := NewExportScheduler(cfg, adFeed, bulkImport, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	require.Eventually(t, func() bool {
		return adFeed.runs.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestExportScheduler_StartIsIdempotent(t *testing.T) {
	adFeed := &countingRunner{}
	bulkImport := &countingRunner{}
	s := NewExportScheduler(testSchedulerConfig(), adFeed, bulkImport, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	require.Eventually(t, func() bool {
		return adFeed.runs.Load() >= 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(1), adFeed.runs.Load())
}

func TestExportScheduler_Stop(t *testing.T) {
	adFeed := &countingRunner{}
	bulkImport := &countingRunner{}
	s := NewExportScheduler(testSchedulerConfig(), adFeed, bulkImport, zap.NewNop())

	require.NoError(t, s.Start(context.Background()))
	require.Eventually(t, func() bool {
		return adFeed.runs.Load() >= 1
	}, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	count := adFeed.runs.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, count, adFeed.runs.Load())

	// Stopping twice is harmless
	require.NoError(t, s.Stop(ctx))
}
