package repository

import (
	"context"
	"time"

	"storyhub/internal/microservices/web-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PlaySessionRepository interface {
	Get(ctx context.Context, sessionKey string, storyID int64) (*models.PlaySession, error)
	Upsert(ctx context.Context, session *models.PlaySession) error
	Delete(ctx context.Context, sessionKey string, storyID int64) error
	DeleteByStory(ctx context.Context, storyID int64) ([]models.PlaySession, error)
	DeleteByPage(ctx context.Context, storyID, pageID int64) ([]models.PlaySession, error)
}

type playSessionRepository struct {
	db *gorm.DB
}

func NewPlaySessionRepository(db *gorm.DB) PlaySessionRepository {
	return &playSessionRepository{db: db}
}

func (r *playSessionRepository) Get(ctx context.Context, sessionKey string, storyID int64) (*models.PlaySession, error) {
	var session models.PlaySession
	err := r.db.WithContext(ctx).
		Where("session_key = ? AND story_id = ?", sessionKey, storyID).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Upsert keeps exactly one cursor per (session key, story).
func (r *playSessionRepository) Upsert(ctx context.Context, session *models.PlaySession) error {
	now := time.Now()
	session.UpdatedAt = now
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.Path == nil {
		session.Path = []int64{}
	}

	// the conflict target is the natural key, so the row is inserted without its id
	row := *session
	row.ID = 0
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_key"}, {Name: "story_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"current_page_id", "user_id", "path", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return err
	}
	if row.ID != 0 {
		session.ID = row.ID
	}
	return nil
}

func (r *playSessionRepository) Delete(ctx context.Context, sessionKey string, storyID int64) error {
	return r.db.WithContext(ctx).
		Where("session_key = ? AND story_id = ?", sessionKey, storyID).
		Delete(&models.PlaySession{}).Error
}

// DeleteByStory removes every cursor of a story and returns what was removed.
func (r *playSessionRepository) DeleteByStory(ctx context.Context, storyID int64) ([]models.PlaySession, error) {
	return r.deleteWhere(ctx, "story_id = ?", storyID)
}

// DeleteByPage removes the cursors currently resting on pageID.
func (r *playSessionRepository) DeleteByPage(ctx context.Context, storyID, pageID int64) ([]models.PlaySession, error) {
	return r.deleteWhere(ctx, "story_id = ? AND current_page_id = ?", storyID, pageID)
}

func (r *playSessionRepository) deleteWhere(ctx context.Context, query string, args ...interface{}) ([]models.PlaySession, error) {
	var removed []models.PlaySession
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(query, args...).Find(&removed).Error; err != nil {
			return err
		}
		if len(removed) == 0 {
			return nil
		}
		ids := make([]int64, 0, len(removed))
		for _, s := range removed {
			ids = append(ids, s.ID)
		}
		return tx.Where("id IN ?", ids).Delete(&models.PlaySession{}).Error
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
