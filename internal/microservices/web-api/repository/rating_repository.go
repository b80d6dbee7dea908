package repository

import (
	"context"
	"time"

	"storyhub/internal/microservices/web-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RatingSummary is the aggregate of every rating a story received.
type RatingSummary struct {
	StoryID int64
	Average float64
	Count   int64
}

type RatingRepository interface {
	Upsert(ctx context.Context, rating *models.Rating) error
	Delete(ctx context.Context, userID string, storyID int64) error
	GetByUserAndStory(ctx context.Context, userID string, storyID int64) (*models.Rating, error)
	ListByStory(ctx context.Context, storyID int64, page, pageSize int) ([]models.Rating, int64, error)
	Summary(ctx context.Context, storyID int64) (RatingSummary, error)
	Summaries(ctx context.Context, storyIDs []int64) (map[int64]RatingSummary, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// Upsert creates the rating or overwrites the caller's previous one for the same story.
func (r *ratingRepository) Upsert(ctx context.Context, rating *models.Rating) error {
	now := time.Now()
	rating.UpdatedAt = now
	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = now
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "story_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "updated_at"}),
	}).Omit("User").Create(rating).Error
	if err != nil {
		return err
	}

	stored, err := r.GetByUserAndStory(ctx, rating.UserID, rating.StoryID)
	if err != nil {
		return err
	}
	*rating = *stored
	return nil
}

func (r *ratingRepository) Delete(ctx context.Context, userID string, storyID int64) error {
	result := r.db.WithContext(ctx).Where("user_id = ? AND story_id = ?", userID, storyID).Delete(&models.Rating{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ratingRepository) GetByUserAndStory(ctx context.Context, userID string, storyID int64) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.WithContext(ctx).Where("user_id = ? AND story_id = ?", userID, storyID).
		Preload("User").
		First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// ListByStory retrieves the ratings of a story with pagination, newest first
func (r *ratingRepository) ListByStory(ctx context.Context, storyID int64, page, pageSize int) ([]models.Rating, int64, error) {
	var (
		ratings []models.Rating
		total   int64
	)

	if err := r.db.WithContext(ctx).Model(&models.Rating{}).Where("story_id = ?", storyID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).Where("story_id = ?", storyID).
		Preload("User").
		Order("updated_at DESC").
		Order("id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&ratings).Error
	if err != nil {
		return nil, 0, err
	}
	return ratings, total, nil
}

func (r *ratingRepository) Summary(ctx context.Context, storyID int64) (RatingSummary, error) {
	summaries, err := r.Summaries(ctx, []int64{storyID})
	if err != nil {
		return RatingSummary{}, err
	}
	summary, ok := summaries[storyID]
	if !ok {
		return RatingSummary{StoryID: storyID}, nil
	}
	return summary, nil
}

// Summaries aggregates many stories in one GROUP BY. Unrated stories are absent from the map.
func (r *ratingRepository) Summaries(ctx context.Context, storyIDs []int64) (map[int64]RatingSummary, error) {
	out := make(map[int64]RatingSummary, len(storyIDs))
	if len(storyIDs) == 0 {
		return out, nil
	}

	var rows []RatingSummary
	err := r.db.WithContext(ctx).Model(&models.Rating{}).
		Select("story_id, COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("story_id IN ?", storyIDs).
		Group("story_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.StoryID] = row
	}
	return out, nil
}
