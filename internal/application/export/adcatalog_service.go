package export

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/feedbridge/backend/internal/domain/catalog"
	domainexport "github.com/feedbridge/backend/internal/domain/export"
	"github.com/feedbridge/backend/internal/domain/feed"
	"github.com/feedbridge/backend/internal/infrastructure/feedfile"
	"github.com/feedbridge/backend/internal/infrastructure/runlog"
)

const (
	adFeedFileSuffix = "ad_catalog.csv"
	adFeedLogSuffix  = "ad_catalog.log"
	adFeedKeyPrefix  = "feeds/"
	csvContentType   = "text/csv; charset=utf-8"

	adFeedLockKey = "export:lock:ad_catalog"
)

// AdCatalogExportService generates the advertising catalog feed: snapshot,
// transform, tabular serialization, publish to object storage. The published
// URL is recorded on the completed run.
type AdCatalogExportService struct {
	source      catalog.Source
	scope       catalog.Scope
	transformer *feed.AdCatalogTransformer
	serializer  *feedfile.CSVWriter
	storage     ObjectStorage
	runs        domainexport.RunRepository
	lock        RunLock
	logger      *zap.Logger
	exportDir   string
}

// NewAdCatalogExportService creates the advertising feed export service
func NewAdCatalogExportService(
	source catalog.Source,
	scope catalog.Scope,
	transformer *feed.AdCatalogTransformer,
	serializer *feedfile.CSVWriter,
	storage ObjectStorage,
	runs domainexport.RunRepository,
	lock RunLock,
	exportDir string,
	logger *zap.Logger,
) *AdCatalogExportService {
	return &AdCatalogExportService{
		source:      source,
		scope:       scope,
		transformer: transformer,
		serializer:  serializer,
		storage:     storage,
		runs:        runs,
		lock:        lock,
		logger:      logger,
		exportDir:   exportDir,
	}
}

// Run executes one advertising feed export to completion and returns the
// terminal run record.
func (s *AdCatalogExportService) Run(ctx context.Context) (*domainexport.Run, error) {
	rc := runlog.NewRunContext(time.Now())
	run, err := domainexport.NewRun(domainexport.TargetAdCatalog, rc.ID, rc.StartedAt)
	if err != nil {
		return nil, err
	}

	rlog, err := runlog.Open(s.exportDir, rc, adFeedLogSuffix, s.logger)
	if err != nil {
		run.Fail(FailureFileSystem, err.Error())
		s.persist(ctx, run)
		return run, err
	}
	defer rlog.Close()

	acquired, err := s.lock.Acquire(ctx, adFeedLockKey, rc.ID, lockTTL)
	if err == nil && !acquired {
		err = ErrRunInProgress
	}
	if err != nil {
		return run, s.fail(ctx, run, rlog, err)
	}
	defer s.lock.Release(context.WithoutCancel(ctx), adFeedLockKey, rc.ID)

	rlog.Infof("Starting advertising feed export %s", rc.ID)

	if err := s.execute(ctx, run, rlog); err != nil {
		return run, s.fail(ctx, run, rlog, err)
	}
	rlog.Infof("Advertising feed export %s completed", rc.ID)
	return run, nil
}

func (s *AdCatalogExportService) execute(ctx context.Context, run *domainexport.Run, rlog *runlog.Logger) error {
	snap, err := s.source.FetchSnapshot(ctx, s.scope)
	if err != nil {
		return &sourceError{err}
	}

	records, err := s.transformer.Transform(snap)
	if err != nil {
		return err
	}
	if err := run.MarkSnapshotReady(len(records)); err != nil {
		return err
	}
	s.persist(ctx, run)
	rlog.Infof("Snapshot ready: %d products, %d records", len(snap.Products), len(records))

	if len(records) == 0 {
		rlog.Infof("No records to export, skipping feed file")
		if err := run.Complete(""); err != nil {
			return err
		}
		s.persist(ctx, run)
		return nil
	}

	fileName := rlog.Run().FileName(adFeedFileSuffix)
	filePath, fileSize, err := s.serializer.WriteFile(s.exportDir, fileName, s.transformer.Schema(), records)
	if err != nil {
		return err
	}
	if err := run.MarkSerialized(fileName, fileSize); err != nil {
		return err
	}
	s.persist(ctx, run)
	rlog.Infof("Serialized %d records to %s (%d bytes)", len(records), fileName, fileSize)

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("%w: %v", feedfile.ErrExportDirUnavailable, err)
	}
	key := adFeedKeyPrefix + fileName
	if err := s.storage.Upload(ctx, key, data, csvContentType); err != nil {
		return err
	}
	url := s.storage.PublicURL(key)
	rlog.Infof("Feed published to %s", url)

	if err := run.Complete(url); err != nil {
		return err
	}
	s.persist(ctx, run)
	return nil
}

func (s *AdCatalogExportService) fail(ctx context.Context, run *domainexport.Run, rlog *runlog.Logger, err error) error {
	code := classifyFailure(err)
	rlog.Errorf("Run failed [%s]: %v", code, err)
	if ferr := run.Fail(code, err.Error()); ferr != nil {
		s.logger.Error("Cannot mark run failed", zap.Error(ferr))
	}
	s.persist(ctx, run)
	return err
}

func (s *AdCatalogExportService) persist(ctx context.Context, run *domainexport.Run) {
	if err := s.runs.Save(ctx, run); err != nil {
		s.logger.Error("Cannot persist export run",
			zap.String("run_id", run.RunID),
			zap.Error(err),
		)
	}
}
