package export

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/feedbridge/backend/internal/domain/catalog"
	domainexport "github.com/feedbridge/backend/internal/domain/export"
	"github.com/feedbridge/backend/internal/domain/feed"
	"github.com/feedbridge/backend/internal/domain/integration"
	"github.com/feedbridge/backend/internal/infrastructure/feedfile"
	"github.com/feedbridge/backend/internal/infrastructure/runlog"
)

// Bulk import workflow constants
const (
	bulkMutationResource = "BULK_MUTATION_VARIABLES"
	jsonlMimeType        = "application/jsonl"
	importFileSuffix     = "bulk_import.jsonl"
	importLogSuffix      = "bulk_import.log"
	backupFileSuffix     = "commerce_products.csv"

	// bulkImportLockKey serializes runs against the destination catalog
	bulkImportLockKey = "export:lock:bulk_import"
	// lockTTL bounds how long a crashed run can block the destination
	lockTTL = 30 * time.Minute
)

// BulkImportOrchestrator drives the three-step bulk import workflow against
// the commerce platform: create staged upload, stream the serialized file,
// trigger the asynchronous bulk mutation job. Execution is strictly
// sequential per run; the orchestrator never polls the remote job and never
// retries. Two runs targeting the same destination are rejected via the run
// lock.
type BulkImportOrchestrator struct {
	source      catalog.Source
	scope       catalog.Scope
	transformer *feed.CommerceTransformer
	serializer  *feedfile.JSONLWriter
	backup      *feedfile.CSVWriter
	platform    integration.CommercePlatform
	runs        domainexport.RunRepository
	lock        RunLock
	logger      *zap.Logger
	exportDir   string
}

// NewBulkImportOrchestrator creates the bulk import orchestrator
func NewBulkImportOrchestrator(
	source catalog.Source,
	scope catalog.Scope,
	transformer *feed.CommerceTransformer,
	platform integration.CommercePlatform,
	runs domainexport.RunRepository,
	lock RunLock,
	exportDir string,
	logger *zap.Logger,
) *BulkImportOrchestrator {
	return &BulkImportOrchestrator{
		source:      source,
		scope:       scope,
		transformer: transformer,
		serializer:  feedfile.NewJSONLWriter(),
		backup:      feedfile.NewCSVWriter(),
		platform:    platform,
		runs:        runs,
		lock:        lock,
		logger:      logger,
		exportDir:   exportDir,
	}
}

// Run executes one bulk import run to completion. It returns the terminal
// run record; the returned error is the failure that ended the run, nil when
// the run completed.
func (o *BulkImportOrchestrator) Run(ctx context.Context) (*domainexport.Run, error) {
	rc := runlog.NewRunContext(time.Now())
	run, err := domainexport.NewRun(domainexport.TargetCommercePlatform, rc.ID, rc.StartedAt)
	if err != nil {
		return nil, err
	}

	rlog, err := runlog.Open(o.exportDir, rc, importLogSuffix, o.logger)
	if err != nil {
		run.Fail(FailureFileSystem, err.Error())
		o.persist(ctx, run)
		return run, err
	}
	defer rlog.Close()

	acquired, err := o.lock.Acquire(ctx, bulkImportLockKey, rc.ID, lockTTL)
	if err == nil && !acquired {
		err = ErrRunInProgress
	}
	if err != nil {
		return run, o.fail(ctx, run, rlog, err)
	}
	defer o.lock.Release(context.WithoutCancel(ctx), bulkImportLockKey, rc.ID)

	rlog.Infof("Starting bulk import run %s", rc.ID)

	job, err := o.execute(ctx, run, rlog)
	if err != nil {
		return run, o.fail(ctx, run, rlog, err)
	}

	if job != nil {
		rlog.Infof("Bulk import run %s completed, job %s (status %s)", rc.ID, job.ID, job.Status)
	} else {
		rlog.Infof("Bulk import run %s completed with nothing to export", rc.ID)
	}
	return run, nil
}

// execute walks the run forward through its states. A nil job on a nil error
// means the snapshot was empty and no remote call was made.
func (o *BulkImportOrchestrator) execute(ctx context.Context, run *domainexport.Run, rlog *runlog.Logger) (*integration.BulkImportJob, error) {
	snap, err := o.source.FetchSnapshot(ctx, o.scope)
	if err != nil {
		return nil, &sourceError{err}
	}

	inputs, err := o.transformer.TransformInputs(snap)
	if err != nil {
		return nil, err
	}
	if err := run.MarkSnapshotReady(len(inputs)); err != nil {
		return nil, err
	}
	o.persist(ctx, run)
	rlog.Infof("Snapshot ready: %d products, %d records", len(snap.Products), len(inputs))

	if len(inputs) == 0 {
		rlog.Infof("No records to export, skipping remote workflow")
		if err := run.Complete(""); err != nil {
			return nil, err
		}
		o.persist(ctx, run)
		return nil, nil
	}

	fileName := rlog.Run().FileName(importFileSuffix)
	filePath, fileSize, err := o.serializer.WriteFile(o.exportDir, fileName, inputs)
	if err != nil {
		return nil, err
	}
	if err := run.MarkSerialized(fileName, fileSize); err != nil {
		return nil, err
	}
	o.persist(ctx, run)
	rlog.Infof("Serialized %d records to %s (%d bytes)", len(inputs), fileName, fileSize)

	staged, err := o.platform.CreateStagedUpload(ctx, integration.StagedUploadRequest{
		Filename: fileName,
		MimeType: jsonlMimeType,
		FileSize: fileSize,
		Resource: bulkMutationResource,
	})
	if err != nil {
		return nil, err
	}
	if err := run.MarkStagedUploadCreated(); err != nil {
		return nil, err
	}
	o.persist(ctx, run)
	rlog.Infof("Staged upload created: %s", staged.ResourceURL)
	rlog.Debugf("Staged target %s carries %d form parameters, transferring via raw PUT", staged.URL, len(staged.Parameters))

	if err := o.platform.UploadFile(ctx, staged, filePath); err != nil {
		return nil, err
	}
	if err := run.MarkFileUploaded(); err != nil {
		return nil, err
	}
	o.persist(ctx, run)
	rlog.Infof("File uploaded to staged target")

	job, err := o.platform.RunBulkMutation(ctx, staged.ResourceURL)
	if err != nil {
		return nil, err
	}
	if err := run.MarkJobTriggered(job.ID); err != nil {
		return nil, err
	}
	o.persist(ctx, run)
	rlog.Infof("Bulk mutation job triggered: %s (status %s)", job.ID, job.Status)

	// Tabular backup of the same run, written after the remote workflow so a
	// backup failure never blocks the import
	o.writeBackup(snap, rlog)

	if err := run.Complete(""); err != nil {
		return nil, err
	}
	o.persist(ctx, run)
	return job, nil
}

// writeBackup writes the commerce records as a CSV next to the import file
func (o *BulkImportOrchestrator) writeBackup(snap *catalog.Snapshot, rlog *runlog.Logger) {
	records, err := o.transformer.Transform(snap)
	if err != nil {
		rlog.Warnf("Backup transform failed: %v", err)
		return
	}
	name := rlog.Run().FileName(backupFileSuffix)
	if _, _, err := o.backup.WriteFile(o.exportDir, name, o.transformer.Schema(), records); err != nil {
		rlog.Warnf("Backup feed write failed: %v", err)
		return
	}
	rlog.Infof("Backup feed written to %s", name)
}

// fail marks the run failed with the error's discriminant, logs it, persists
// the run and returns the original error.
func (o *BulkImportOrchestrator) fail(ctx context.Context, run *domainexport.Run, rlog *runlog.Logger, err error) error {
	code := classifyFailure(err)
	rlog.Errorf("Run failed [%s]: %v", code, err)
	if ferr := run.Fail(code, err.Error()); ferr != nil {
		o.logger.Error("Cannot mark run failed", zap.Error(ferr))
	}
	o.persist(ctx, run)
	return err
}

// persist saves the run; persistence failures are logged and never abort the
// run they describe.
func (o *BulkImportOrchestrator) persist(ctx context.Context, run *domainexport.Run) {
	if err := o.runs.Save(ctx, run); err != nil {
		o.logger.Error("Cannot persist export run",
			zap.String("run_id", run.RunID),
			zap.Error(err),
		)
	}
}
