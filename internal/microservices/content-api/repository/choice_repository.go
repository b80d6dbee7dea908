package repository

import (
	"context"
	"errors"

	"storyhub/internal/microservices/content-api/models"

	"gorm.io/gorm"
)

// ErrNextPageNotFound is returned when a choice points at a page that does not exist.
var ErrNextPageNotFound = errors.New("next page not found")

type ChoiceRepository interface {
	Create(ctx context.Context, choice *models.Choice) error
	GetByID(ctx context.Context, id int64) (*models.Choice, error)
	Update(ctx context.Context, choice *models.Choice) error
	Delete(ctx context.Context, id int64) error
}

type choiceRepository struct {
	db *gorm.DB
}

func NewChoiceRepository(db *gorm.DB) ChoiceRepository {
	return &choiceRepository{db: db}
}

// Create inserts the choice once both endpoints are confirmed to share a story.
func (r *choiceRepository) Create(ctx context.Context, choice *models.Choice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := sameStory(tx, choice.PageID, choice.NextPageID); err != nil {
			return err
		}
		return tx.Create(choice).Error
	})
}

func (r *choiceRepository) GetByID(ctx context.Context, id int64) (*models.Choice, error) {
	var choice models.Choice
	if err := r.db.WithContext(ctx).First(&choice, id).Error; err != nil {
		return nil, err
	}
	return &choice, nil
}

func (r *choiceRepository) Update(ctx context.Context, choice *models.Choice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := sameStory(tx, choice.PageID, choice.NextPageID); err != nil {
			return err
		}
		return tx.Model(&models.Choice{}).
			Where("id = ?", choice.ID).
			Select("text", "next_page_id", "updated_at").
			Updates(choice).Error
	})
}

func (r *choiceRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Choice{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// sameStory checks the edge pageID -> nextPageID stays inside one story.
// A missing source page yields gorm.ErrRecordNotFound.
func sameStory(tx *gorm.DB, pageID, nextPageID int64) error {
	var from models.Page
	if err := tx.Select("id", "story_id").First(&from, pageID).Error; err != nil {
		return err
	}

	var to models.Page
	if err := tx.Select("id", "story_id").First(&to, nextPageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNextPageNotFound
		}
		return err
	}

	if from.StoryID != to.StoryID {
		return ErrPageNotInStory
	}
	return nil
}
