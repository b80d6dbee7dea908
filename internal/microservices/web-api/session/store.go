package session

import (
	"context"
	"errors"
	"fmt"

	"storyhub/internal/microservices/web-api/models"
	"storyhub/internal/microservices/web-api/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store is the cursor storage used by gameplay.
type Store interface {
	// Get returns nil, nil when the session has no cursor in the story.
	Get(ctx context.Context, sessionKey string, storyID int64) (*models.PlaySession, error)
	Save(ctx context.Context, s *models.PlaySession) error
	Delete(ctx context.Context, sessionKey string, storyID int64) error
	PurgeStory(ctx context.Context, storyID int64) (int, error)
	PurgePage(ctx context.Context, storyID, pageID int64) (int, error)
}

// HybridStore combines Redis and PostgreSQL for play cursors.
// Postgres is the source of truth and is written synchronously; Redis is a read-through cache
// whose failures are logged and never surface to the caller.
type HybridStore struct {
	cache  *RedisCache
	repo   repository.PlaySessionRepository
	logger *zap.Logger
}

func NewHybridStore(cache *RedisCache, repo repository.PlaySessionRepository, logger *zap.Logger) *HybridStore {
	return &HybridStore{cache: cache, repo: repo, logger: logger}
}

func (h *HybridStore) Get(ctx context.Context, sessionKey string, storyID int64) (*models.PlaySession, error) {
	cached, err := h.cache.Get(ctx, sessionKey, storyID)
	if err != nil {
		h.logger.Warn("Session cache read failed", zap.Int64("story_id", storyID), zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	stored, err := h.repo.Get(ctx, sessionKey, storyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load play session: %w", err)
	}

	if err := h.cache.Save(ctx, stored); err != nil {
		h.logger.Warn("Session cache warm failed", zap.Int64("story_id", storyID), zap.Error(err))
	}
	return stored, nil
}

func (h *HybridStore) Save(ctx context.Context, s *models.PlaySession) error {
	if err := h.repo.Upsert(ctx, s); err != nil {
		return fmt.Errorf("save play session: %w", err)
	}
	if err := h.cache.Save(ctx, s); err != nil {
		h.logger.Warn("Session cache write failed", zap.Int64("story_id", s.StoryID), zap.Error(err))
	}
	return nil
}

func (h *HybridStore) Delete(ctx context.Context, sessionKey string, storyID int64) error {
	if err := h.cache.Delete(ctx, sessionKey, storyID); err != nil {
		h.logger.Warn("Session cache delete failed", zap.Int64("story_id", storyID), zap.Error(err))
	}
	if err := h.repo.Delete(ctx, sessionKey, storyID); err != nil {
		return fmt.Errorf("delete play session: %w", err)
	}
	return nil
}

// PurgeStory drops every cursor of a deleted story.
func (h *HybridStore) PurgeStory(ctx context.Context, storyID int64) (int, error) {
	removed, err := h.repo.DeleteByStory(ctx, storyID)
	if err != nil {
		return 0, err
	}
	h.evict(ctx, removed)
	return len(removed), nil
}

// PurgePage drops cursors resting on a deleted page.
func (h *HybridStore) PurgePage(ctx context.Context, storyID, pageID int64) (int, error) {
	removed, err := h.repo.DeleteByPage(ctx, storyID, pageID)
	if err != nil {
		return 0, err
	}
	h.evict(ctx, removed)
	return len(removed), nil
}

func (h *HybridStore) evict(ctx context.Context, sessions []models.PlaySession) {
	for _, s := range sessions {
		if err := h.cache.Delete(ctx, s.SessionKey, s.StoryID); err != nil {
			h.logger.Warn("Session cache evict failed", zap.Int64("story_id", s.StoryID), zap.Error(err))
		}
	}
}
