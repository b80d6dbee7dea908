package repository

import (
	"context"

	"storyhub/internal/microservices/web-api/models"

	"gorm.io/gorm"
)

type EndingCount struct {
	EndingPageID int64
	Count        int64
}

type StoryPlayTotals struct {
	StoryID       int64
	TotalPlays    int64
	UniquePlayers int64
}

type PlayRepository interface {
	Create(ctx context.Context, play *models.Play) error
	CountByEnding(ctx context.Context, storyID int64) ([]EndingCount, error)
	TotalsByStory(ctx context.Context, storyIDs []int64) (map[int64]StoryPlayTotals, error)
	ListByUser(ctx context.Context, userID string) ([]models.Play, error)
	CountAll(ctx context.Context) (int64, error)
}

type playRepository struct {
	db *gorm.DB
}

func NewPlayRepository(db *gorm.DB) PlayRepository {
	return &playRepository{db: db}
}

func (r *playRepository) Create(ctx context.Context, play *models.Play) error {
	if play.Path == nil {
		play.Path = []int64{}
	}
	return r.db.WithContext(ctx).Create(play).Error
}

// CountByEnding groups the plays of a story by ending, most reached first.
func (r *playRepository) CountByEnding(ctx context.Context, storyID int64) ([]EndingCount, error) {
	var rows []EndingCount
	err := r.db.WithContext(ctx).Model(&models.Play{}).
		Select("ending_page_id, COUNT(*) AS count").
		Where("story_id = ?", storyID).
		Group("ending_page_id").
		Order("count DESC").
		Order("ending_page_id ASC").
		Scan(&rows).Error
	return rows, err
}

// TotalsByStory counts plays and distinct signed-in players per story. Anonymous plays count
// toward the total only.
func (r *playRepository) TotalsByStory(ctx context.Context, storyIDs []int64) (map[int64]StoryPlayTotals, error) {
	out := make(map[int64]StoryPlayTotals, len(storyIDs))
	if len(storyIDs) == 0 {
		return out, nil
	}

	var rows []StoryPlayTotals
	err := r.db.WithContext(ctx).Model(&models.Play{}).
		Select("story_id, COUNT(*) AS total_plays, COUNT(DISTINCT user_id) AS unique_players").
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

func (r *playRepository) ListByUser(ctx context.Context, userID string) ([]models.Play, error) {
	var plays []models.Play
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&plays).Error
	return plays, err
}

func (r *playRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Play{}).Count(&count).Error
	return count, err
}
