package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feedbridge/backend/internal/domain/export"
	"github.com/feedbridge/backend/internal/domain/shared"
	"github.com/feedbridge/backend/internal/infrastructure/persistence/models"
)

// GormRunRepository implements export.RunRepository using GORM
type GormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a new GormRunRepository
func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// FindByID finds an export run by ID
func (r *GormRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*export.Run, error) {
	var model models.ExportRunModel
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns export runs with pagination and filtering, most recent first
func (r *GormRunRepository) FindAll(
	ctx context.Context,
	filter export.RunFilter,
	page, pageSize int,
) (*export.RunListResult, error) {
	query := r.db.WithContext(ctx).Model(&models.ExportRunModel{})
	query = applyRunFilters(query, filter)

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, err
	}

	if page > 0 && pageSize > 0 {
		offset := (page - 1) * pageSize
		query = query.Offset(offset).Limit(pageSize)
	}
	query = query.Order("started_at DESC")

	var runModels []models.ExportRunModel
	if err := query.Find(&runModels).Error; err != nil {
		return nil, err
	}

	runs := make([]*export.Run, len(runModels))
	for i, model := range runModels {
		runs[i] = model.ToDomain()
	}

	return &export.RunListResult{
		Items:      runs,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// FindLatestByTarget returns the most recently started run for a target
func (r *GormRunRepository) FindLatestByTarget(ctx context.Context, target export.Target) (*export.Run, error) {
	var model models.ExportRunModel
	if err := r.db.WithContext(ctx).
		Where("target = ?", target).
		Order("started_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save saves an export run (create or update)
func (r *GormRunRepository) Save(ctx context.Context, run *export.Run) error {
	model := models.ExportRunModelFromDomain(run)
	return r.db.WithContext(ctx).Save(model).Error
}

func applyRunFilters(query *gorm.DB, filter export.RunFilter) *gorm.DB {
	if filter.Target != nil {
		query = query.Where("target = ?", *filter.Target)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.StartedFrom != nil {
		query = query.Where("started_at >= ?", *filter.StartedFrom)
	}
	if filter.StartedTo != nil {
		query = query.Where("started_at <= ?", *filter.StartedTo)
	}
	return query
}

// Compile-time interface compliance check
var _ export.RunRepository = (*GormRunRepository)(nil)
