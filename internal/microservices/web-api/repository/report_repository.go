package repository

import (
	"context"

	"storyhub/internal/microservices/web-api/models"

	"gorm.io/gorm"
)

type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id int64) (*models.Report, error)
	List(ctx context.Context, status string, page, pageSize int) ([]models.Report, int64, error)
	Update(ctx context.Context, report *models.Report) error
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	if report.Status == "" {
		report.Status = models.ReportPending
	}
	return r.db.WithContext(ctx).Omit("User").Create(report).Error
}

func (r *reportRepository) GetByID(ctx context.Context, id int64) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).Preload("User").First(&report, id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// List returns reports newest first, optionally filtered by status.
func (r *reportRepository) List(ctx context.Context, status string, page, pageSize int) ([]models.Report, int64, error) {
	var (
		reports []models.Report
		total   int64
	)

	query := r.db.WithContext(ctx).Model(&models.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query = query.Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("User").
		Order("created_at DESC").
		Order("id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&reports).Error
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *reportRepository) Update(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Model(report).
		Select("status", "moderator_notes", "reviewed_by", "reviewed_at", "updated_at").
		Updates(report).Error
}
