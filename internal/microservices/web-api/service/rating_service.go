package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storyhub/internal/metrics"
	"storyhub/internal/microservices/web-api/contentclient"
	"storyhub/internal/microservices/web-api/models"
	"storyhub/internal/microservices/web-api/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RatingPage struct {
	Ratings       []models.Rating `json:"ratings"`
	Total         int64           `json:"total"`
	Page          int             `json:"page"`
	PageSize      int             `json:"page_size"`
	AverageRating float64         `json:"average_rating"`
}

type RatingService interface {
	// Rate creates or replaces the viewer's rating of a published story.
	Rate(ctx context.Context, viewer Viewer, storyID int64, rating int, comment string) (*models.Rating, error)
	Delete(ctx context.Context, viewer Viewer, storyID int64) error
	Mine(ctx context.Context, viewer Viewer, storyID int64) (*models.Rating, error)
	List(ctx context.Context, viewer Viewer, storyID int64, page, pageSize int) (*RatingPage, error)
}

type ratingService struct {
	content contentclient.API
	repo    repository.RatingRepository
	logger  *zap.Logger
}

func NewRatingService(content contentclient.API, repo repository.RatingRepository, logger *zap.Logger) RatingService {
	return &ratingService{content: content, repo: repo, logger: logger}
}

func (s *ratingService) Rate(ctx context.Context, viewer Viewer, storyID int64, rating int, comment string) (*models.Rating, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	story, err := visibleStory(ctx, s.content, viewer, storyID)
	if err != nil {
		return nil, err
	}
	if story.Status != contentclient.StatusPublished {
		return nil, ErrStoryNotPublished
	}

	r := &models.Rating{
		StoryID: storyID,
		UserID:  viewer.UserID,
		Rating:  rating,
		Comment: strings.TrimSpace(comment),
	}
	if err := s.repo.Upsert(ctx, r); err != nil {
		return nil, fmt.Errorf("save rating: %w", err)
	}

	metrics.RatingsSubmitted.Inc()
	s.logger.Debug("Rating saved", zap.Int64("story_id", storyID), zap.Int("rating", rating))
	return r, nil
}

func (s *ratingService) Delete(ctx context.Context, viewer Viewer, storyID int64) error {
	if err := s.repo.Delete(ctx, viewer.UserID, storyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRatingNotFound
		}
		return fmt.Errorf("delete rating: %w", err)
	}
	return nil
}

func (s *ratingService) Mine(ctx context.Context, viewer Viewer, storyID int64) (*models.Rating, error) {
	r, err := s.repo.GetByUserAndStory(ctx, viewer.UserID, storyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, fmt.Errorf("get rating: %w", err)
	}
	return r, nil
}

func (s *ratingService) List(ctx context.Context, viewer Viewer, storyID int64, page, pageSize int) (*RatingPage, error) {
	if _, err := visibleStory(ctx, s.content, viewer, storyID); err != nil {
		return nil, err
	}

	page, pageSize = normalizePage(page, pageSize)
	ratings, total, err := s.repo.ListByStory(ctx, storyID, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	sum, err := s.repo.Summary(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("rating summary: %w", err)
	}

	return &RatingPage{
		Ratings:       ratings,
		Total:         total,
		Page:          page,
		PageSize:      pageSize,
		AverageRating: round1(sum.Average),
	}, nil
}
