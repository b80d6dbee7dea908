package repository

import (
	"context"
	"errors"
	"strings"

	"storyhub/internal/microservices/content-api/models"

	"gorm.io/gorm"
)

// ErrPageNotInStory is returned when a graph write would reference a page of another story.
var ErrPageNotInStory = errors.New("page does not belong to story")

// StoryFilter narrows List results. Zero values are ignored.
type StoryFilter struct {
	Status   string
	Search   string
	Tags     []string
	AuthorID string
}

type StoryRepository interface {
	Create(ctx context.Context, story *models.Story) error
	GetByID(ctx context.Context, id int64) (*models.Story, error)
	GetWithPages(ctx context.Context, id int64) (*models.Story, error)
	List(ctx context.Context, filter StoryFilter) ([]models.Story, error)
	Update(ctx context.Context, story *models.Story) error
	Delete(ctx context.Context, id int64) error
}

type storyRepository struct {
	db *gorm.DB
}

func NewStoryRepository(db *gorm.DB) StoryRepository {
	return &storyRepository{db: db}
}

func (r *storyRepository) Create(ctx context.Context, story *models.Story) error {
	return r.db.WithContext(ctx).Create(story).Error
}

func (r *storyRepository) GetByID(ctx context.Context, id int64) (*models.Story, error) {
	var story models.Story
	if err := r.db.WithContext(ctx).First(&story, id).Error; err != nil {
		return nil, err
	}
	return &story, nil
}

// GetWithPages loads the story with every page and each page's outgoing choices.
func (r *storyRepository) GetWithPages(ctx context.Context, id int64) (*models.Story, error) {
	var story models.Story
	err := r.db.WithContext(ctx).
		Preload("Pages", func(db *gorm.DB) *gorm.DB { return db.Order("pages.id ASC") }).
		Preload("Pages.Choices", func(db *gorm.DB) *gorm.DB { return db.Order("choices.id ASC") }).
		First(&story, id).Error
	if err != nil {
		return nil, err
	}
	return &story, nil
}

func (r *storyRepository) List(ctx context.Context, filter StoryFilter) ([]models.Story, error) {
	query := r.db.WithContext(ctx).Model(&models.Story{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AuthorID != "" {
		query = query.Where("author_id = ?", filter.AuthorID)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		like := "%" + escapeLike(strings.ToLower(term)) + "%"
		query = query.Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, like, like)
	}
	// tags are stored lowercase as a JSON array, match each quoted element
	for _, tag := range filter.Tags {
		query = query.Where(`CAST(tags AS TEXT) LIKE ? ESCAPE '\'`, `%"`+escapeLike(tag)+`"%`)
	}

	var stories []models.Story
	if err := query.Order("created_at DESC").Order("id DESC").Find(&stories).Error; err != nil {
		return nil, err
	}
	return stories, nil
}

// Update saves the story. A non-nil StartPageID must name a page of the same story,
// checked inside the same transaction as the write.
func (r *storyRepository) Update(ctx context.Context, story *models.Story) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if story.StartPageID != nil {
			if err := pageBelongsTo(tx, *story.StartPageID, story.ID); err != nil {
				return err
			}
		}
		return tx.Omit("Pages").Save(story).Error
	})
}

// Delete removes the story together with its pages and choices.
func (r *storyRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pageIDs := tx.Model(&models.Page{}).Select("id").Where("story_id = ?", id)

		if err := tx.Where("page_id IN (?)", pageIDs).Delete(&models.Choice{}).Error; err != nil {
			return err
		}
		// break the start page reference before the pages go
		if err := tx.Model(&models.Story{}).Where("id = ?", id).Update("start_page_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("story_id = ?", id).Delete(&models.Page{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Story{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// pageBelongsTo returns ErrPageNotInStory unless pageID is a page of storyID.
func pageBelongsTo(tx *gorm.DB, pageID, storyID int64) error {
	var page models.Page
	if err := tx.Select("id", "story_id").First(&page, pageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPageNotInStory
		}
		return err
	}
	if page.StoryID != storyID {
		return ErrPageNotInStory
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match itself literally inside a LIKE pattern using '\' as escape.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
