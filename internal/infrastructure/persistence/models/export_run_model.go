// Package models contains the GORM persistence models and their mapping to
// domain entities.
package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/feedbridge/backend/internal/domain/export"
)

// ExportRunModel is the persistence model for export runs
type ExportRunModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	RunID       string    `gorm:"type:varchar(32);not null;index"`
	Target      string    `gorm:"type:varchar(32);not null;index"`
	Status      string    `gorm:"type:varchar(32);not null;index"`
	RecordCount int       `gorm:"not null;default:0"`
	FileName    string    `gorm:"type:varchar(255)"`
	FileSize    int64     `gorm:"not null;default:0"`
	FileURL     string    `gorm:"type:text"`
	JobID       string    `gorm:"type:varchar(255)"`
	FailureCode string    `gorm:"type:varchar(64)"`
	FailureMsg  string    `gorm:"type:text"`
	StartedAt   time.Time `gorm:"not null;index"`
	CompletedAt *time.Time
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ExportRunModel) TableName() string {
	return "export_runs"
}

// ToDomain converts the model to a domain entity
func (m *ExportRunModel) ToDomain() *export.Run {
	return &export.Run{
		ID:          m.ID,
		RunID:       m.RunID,
		Target:      export.Target(m.Target),
		Status:      export.Status(m.Status),
		RecordCount: m.RecordCount,
		FileName:    m.FileName,
		FileSize:    m.FileSize,
		FileURL:     m.FileURL,
		JobID:       m.JobID,
		FailureCode: m.FailureCode,
		FailureMsg:  m.FailureMsg,
		StartedAt:   m.StartedAt,
		CompletedAt: m.CompletedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ExportRunModelFromDomain converts a domain entity to the persistence model
func ExportRunModelFromDomain(run *export.Run) *ExportRunModel {
	return &ExportRunModel{
		ID:          run.ID,
		RunID:       run.RunID,
		Target:      string(run.Target),
		Status:      string(run.Status),
		RecordCount: run.RecordCount,
		FileName:    run.FileName,
		FileSize:    run.FileSize,
		FileURL:     run.FileURL,
		JobID:       run.JobID,
		FailureCode: run.FailureCode,
		FailureMsg:  run.FailureMsg,
		StartedAt:   run.StartedAt,
		CompletedAt: run.CompletedAt,
		CreatedAt:   run.CreatedAt,
		UpdatedAt:   run.UpdatedAt,
	}
}
