package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"storyhub/internal/metrics"
	"storyhub/internal/microservices/web-api/contentclient"
	"storyhub/internal/microservices/web-api/models"
	"storyhub/internal/microservices/web-api/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ModerationService interface {
	Report(ctx context.Context, viewer Viewer, storyID int64, reason, description string) (*models.Report, error)
	ListReports(ctx context.Context, status string, page, pageSize int) ([]models.Report, int64, error)
	Review(ctx context.Context, admin Viewer, reportID int64, status, notes string) (*models.Report, error)
	Suspend(ctx context.Context, admin Viewer, storyID int64) (*contentclient.Story, error)
	Unsuspend(ctx context.Context, admin Viewer, storyID int64) (*contentclient.Story, error)
}

type moderationService struct {
	content contentclient.API
	reports repository.ReportRepository
	logger  *zap.Logger
}

func NewModerationService(content contentclient.API, reports repository.ReportRepository, logger *zap.Logger) ModerationService {
	return &moderationService{content: content, reports: reports, logger: logger}
}

func validReportStatus(status string) bool {
	switch status {
	case models.ReportPending, models.ReportReviewing, models.ReportResolved, models.ReportDismissed:
		return true
	}
	return false
}

func (s *moderationService) Report(ctx context.Context, viewer Viewer, storyID int64, reason, description string) (*models.Report, error) {
	if !slices.Contains(models.ReportReasons, reason) {
		return nil, ErrInvalidReason
	}
	if _, err := visibleStory(ctx, s.content, viewer, storyID); err != nil {
		return nil, err
	}

	report := &models.Report{
		StoryID:     storyID,
		UserID:      viewer.UserID,
		Reason:      reason,
		Description: strings.TrimSpace(description),
		Status:      models.ReportPending,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	metrics.ReportsCreated.Inc()
	s.logger.Info("Story reported",
		zap.Int64("report_id", report.ID),
		zap.Int64("story_id", storyID),
		zap.String("reason", reason))
	return report, nil
}

func (s *moderationService) ListReports(ctx context.Context, status string, page, pageSize int) ([]models.Report, int64, error) {
	if status != "" && !validReportStatus(status) {
		return nil, 0, ErrInvalidReportStatus
	}
	page, pageSize = normalizePage(page, pageSize)
	return s.reports.List(ctx, status, page, pageSize)
}

func (s *moderationService) Review(ctx context.Context, admin Viewer, reportID int64, status, notes string) (*models.Report, error) {
	if !validReportStatus(status) {
		return nil, ErrInvalidReportStatus
	}

	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("get report: %w", err)
	}

	now := time.Now()
	report.Status = status
	report.ModeratorNotes = strings.TrimSpace(notes)
	report.ReviewedBy = admin.userPtr()
	report.ReviewedAt = &now
	if err := s.reports.Update(ctx, report); err != nil {
		return nil, fmt.Errorf("update report: %w", err)
	}

	s.logger.Info("Report reviewed",
		zap.Int64("report_id", reportID),
		zap.String("status", status),
		zap.String("by", admin.UserID))
	return s.reports.GetByID(ctx, reportID)
}

func (s *moderationService) Suspend(ctx context.Context, admin Viewer, storyID int64) (*contentclient.Story, error) {
	return s.setStatus(ctx, admin, storyID, contentclient.StatusSuspended)
}

// Unsuspend puts the story back to published.
func (s *moderationService) Unsuspend(ctx context.Context, admin Viewer, storyID int64) (*contentclient.Story, error) {
	return s.setStatus(ctx, admin, storyID, contentclient.StatusPublished)
}

func (s *moderationService) setStatus(ctx context.Context, admin Viewer, storyID int64, status string) (*contentclient.Story, error) {
	story, err := s.content.UpdateStory(ctx, storyID, contentclient.UpdateStoryInput{Status: &status})
	if err != nil {
		return nil, mapContent(err, ErrStoryNotFound, "update story status")
	}
	s.logger.Info("Story status changed by moderator",
		zap.Int64("story_id", storyID),
		zap.String("status", status),
		zap.String("by", admin.UserID))
	return story, nil
}
