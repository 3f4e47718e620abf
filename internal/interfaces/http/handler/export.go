package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	exportapp "github.com/feedbridge/backend/internal/application/export"
	domainexport "github.com/feedbridge/backend/internal/domain/export"
	"github.com/feedbridge/backend/internal/domain/integration"
	"github.com/feedbridge/backend/internal/interfaces/http/dto"
)

// ExportRunner executes one export run to completion
type ExportRunner interface {
	Run(ctx context.Context) (*domainexport.Run, error)
}

// RunQueries answers read-only questions about run history
type RunQueries interface {
	GetRun(ctx context.Context, id uuid.UUID) (*domainexport.Run, error)
	ListRuns(ctx context.Context, filter domainexport.RunFilter, page, pageSize int) (*domainexport.RunListResult, error)
	LatestRun(ctx context.Context, target domainexport.Target) (*domainexport.Run, error)
}

// ExportHandler exposes manual export triggers and run history
type ExportHandler struct {
	BaseHandler
	adFeed     ExportRunner
	bulkImport ExportRunner
	queries    RunQueries
	logger     *zap.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(
	adFeed ExportRunner,
	bulkImport ExportRunner,
	queries RunQueries,
	logger *zap.Logger,
) *ExportHandler {
	return &ExportHandler{
		adFeed:     adFeed,
		bulkImport: bulkImport,
		queries:    queries,
		logger:     logger,
	}
}

// RegisterRoutes registers export routes
func (h *ExportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	exports := rg.Group("/exports")
	{
		exports.POST("/ad-catalog", h.TriggerAdCatalogExport)
		exports.POST("/bulk-import", h.TriggerBulkImport)
		exports.GET("/runs", h.ListRuns)
		exports.GET("/runs/latest", h.LatestRun)
		exports.GET("/runs/:id", h.GetRun)
	}
}

// TriggerAdCatalogExport runs the advertising feed export synchronously and
// returns the terminal run.
func (h *ExportHandler) TriggerAdCatalogExport(c *gin.Context) {
	run, err := h.adFeed.Run(c.Request.Context())
	h.respondRun(c, run, err)
}

// TriggerBulkImport runs the bulk import workflow synchronously and returns
// the terminal run. The remote job keeps processing after the response.
func (h *ExportHandler) TriggerBulkImport(c *gin.Context) {
	run, err := h.bulkImport.Run(c.Request.Context())
	h.respondRun(c, run, err)
}

// respondRun maps a finished run and its failure to an HTTP response. The run
// record itself is included on failure responses so callers see the failure
// discriminant without a second request.
func (h *ExportHandler) respondRun(c *gin.Context, run *domainexport.Run, err error) {
	if err == nil {
		h.Success(c, dto.RunResponseFromDomain(run))
		return
	}
	if run == nil {
		h.HandleError(c, err)
		return
	}

	h.logger.Warn("Manual export run failed",
		zap.String("run_id", run.RunID),
		zap.String("target", string(run.Target)),
		zap.String("failure_code", run.FailureCode),
		zap.Error(err),
	)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, exportapp.ErrRunInProgress):
		status = http.StatusConflict
	case errors.Is(err, integration.ErrPlatformRequestFailed),
		errors.Is(err, integration.ErrPlatformInvalidResponse),
		errors.Is(err, integration.ErrPlatformUserError),
		errors.Is(err, integration.ErrStagedUploadMissing):
		status = http.StatusBadGateway
	}

	resp := dto.NewErrorResponse(run.FailureCode, run.FailureMsg)
	resp.Data = dto.RunResponseFromDomain(run)
	c.JSON(status, resp)
}

// ListRuns returns export run history, most recent first
func (h *ExportHandler) ListRuns(c *gin.Context) {
	req := dto.ListRunsRequest{Page: 1, PageSize: 20}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := domainexport.RunFilter{}
	if req.Target != "" {
		target := domainexport.Target(req.Target)
		filter.Target = &target
	}
	if req.Status != "" {
		status := domainexport.Status(req.Status)
		if !status.IsValid() {
			h.BadRequest(c, "Invalid status: "+req.Status)
			return
		}
		filter.Status = &status
	}

	result, err := h.queries.ListRuns(c.Request.Context(), filter, req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]dto.RunResponse, len(result.Items))
	for i, run := range result.Items {
		items[i] = dto.RunResponseFromDomain(run)
	}
	h.SuccessWithMeta(c, items, result.TotalCount, result.Page, result.PageSize)
}

// GetRun returns a single run by ID
func (h *ExportHandler) GetRun(c *gin.Context) {
	var req dto.RunIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid run ID")
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid run ID")
		return
	}

	run, err := h.queries.GetRun(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.RunResponseFromDomain(run))
}

// LatestRun returns the most recent run for a target
func (h *ExportHandler) LatestRun(c *gin.Context) {
	target := domainexport.Target(c.Query("target"))
	if !target.IsValid() {
		h.BadRequest(c, "Query parameter 'target' must be ad_catalog or commerce_platform")
		return
	}

	run, err := h.queries.LatestRun(c.Request.Context(), target)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.RunResponseFromDomain(run))
}
