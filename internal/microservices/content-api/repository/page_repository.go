package repository

import (
	"context"

	"storyhub/internal/microservices/content-api/models"

	"gorm.io/gorm"
)

type PageRepository interface {
	Create(ctx context.Context, page *models.Page) (becameStart bool, err error)
	GetByID(ctx context.Context, id int64) (*models.Page, error)
	ListByStory(ctx context.Context, storyID int64) ([]models.Page, error)
	Update(ctx context.Context, page *models.Page) error
	Delete(ctx context.Context, id int64) error
}

type pageRepository struct {
	db *gorm.DB
}

func NewPageRepository(db *gorm.DB) PageRepository {
	return &pageRepository{db: db}
}

// Create inserts the page. The first page of a story without a start page
// becomes its start page, reported through becameStart.
func (r *pageRepository) Create(ctx context.Context, page *models.Page) (bool, error) {
	becameStart := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var story models.Story
		if err := tx.Select("id", "start_page_id").First(&story, page.StoryID).Error; err != nil {
			return err
		}
		if err := tx.Omit("Choices").Create(page).Error; err != nil {
			return err
		}
		if story.StartPageID == nil {
			becameStart = true
			return tx.Model(&models.Story{}).Where("id = ?", story.ID).Update("start_page_id", page.ID).Error
		}
		return nil
	})
	return becameStart, err
}

// GetByID loads the page with its outgoing choices.
func (r *pageRepository) GetByID(ctx context.Context, id int64) (*models.Page, error) {
	var page models.Page
	err := r.db.WithContext(ctx).
		Preload("Choices", func(db *gorm.DB) *gorm.DB { return db.Order("choices.id ASC") }).
		First(&page, id).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *pageRepository) ListByStory(ctx context.Context, storyID int64) ([]models.Page, error) {
	var pages []models.Page
	err := r.db.WithContext(ctx).
		Preload("Choices", func(db *gorm.DB) *gorm.DB { return db.Order("choices.id ASC") }).
		Where("story_id = ?", storyID).
		Order("id ASC").
		Find(&pages).Error
	if err != nil {
		return nil, err
	}
	return pages, nil
}

func (r *pageRepository) Update(ctx context.Context, page *models.Page) error {
	result := r.db.WithContext(ctx).
		Model(&models.Page{}).
		Where("id = ?", page.ID).
		Select("text", "is_ending", "ending_label", "updated_at").
		Updates(page)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the page, every choice leaving or entering it, and
// clears the story start page when it pointed here.
func (r *pageRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("page_id = ? OR next_page_id = ?", id, id).Delete(&models.Choice{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Story{}).Where("start_page_id = ?", id).Update("start_page_id", nil).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Page{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
