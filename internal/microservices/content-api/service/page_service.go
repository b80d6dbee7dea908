package service

import (
	"context"
	"errors"
	"strings"

	"storyhub/internal/events"
	"storyhub/internal/metrics"
	"storyhub/internal/microservices/content-api/dto"
	"storyhub/internal/microservices/content-api/models"
	"storyhub/internal/microservices/content-api/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PageService interface {
	ListByStory(ctx context.Context, storyID int64) ([]models.Page, error)
	Create(ctx context.Context, storyID int64, req *dto.CreatePageRequest) (*models.Page, error)
	Get(ctx context.Context, id int64) (*models.Page, error)
	Update(ctx context.Context, id int64, req *dto.UpdatePageRequest) (*models.Page, error)
	Delete(ctx context.Context, id int64) error
}

type pageService struct {
	pages   repository.PageRepository
	stories repository.StoryRepository
	events  eventSink
	logger  *zap.Logger
}

func NewPageService(pages repository.PageRepository, stories repository.StoryRepository, publisher events.Publisher, logger *zap.Logger) PageService {
	return &pageService{
		pages:   pages,
		stories: stories,
		events:  eventSink{publisher: publisher, logger: logger},
		logger:  logger,
	}
}

func (s *pageService) ListByStory(ctx context.Context, storyID int64) ([]models.Page, error) {
	if _, err := s.stories.GetByID(ctx, storyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoryNotFound
		}
		return nil, err
	}
	return s.pages.ListByStory(ctx, storyID)
}

func (s *pageService) Create(ctx context.Context, storyID int64, req *dto.CreatePageRequest) (*models.Page, error) {
	page := req.ToModel(storyID)
	if strings.TrimSpace(page.Text) == "" {
		return nil, ErrTextRequired
	}

	becameStart, err := s.pages.Create(ctx, page)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoryNotFound
		}
		return nil, err
	}
	page.Choices = []models.Choice{}

	metrics.GraphMutations.WithLabelValues("page", "create").Inc()
	if becameStart {
		s.logger.Info("Start page assigned", zap.Int64("story_id", storyID), zap.Int64("page_id", page.ID))
	}
	s.events.emit(ctx, events.New(events.StoryUpdated, storyID))
	return page, nil
}

func (s *pageService) Get(ctx context.Context, id int64) (*models.Page, error) {
	page, err := s.pages.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return page, nil
}

func (s *pageService) Update(ctx context.Context, id int64, req *dto.UpdatePageRequest) (*models.Page, error) {
	page, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	req.ApplyTo(page)
	if strings.TrimSpace(page.Text) == "" {
		return nil, ErrTextRequired
	}
	if err := s.pages.Update(ctx, page); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}

	metrics.GraphMutations.WithLabelValues("page", "update").Inc()
	s.events.emit(ctx, events.New(events.StoryUpdated, page.StoryID))
	return page, nil
}

func (s *pageService) Delete(ctx context.Context, id int64) error {
	page, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.pages.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPageNotFound
		}
		return err
	}

	metrics.GraphMutations.WithLabelValues("page", "delete").Inc()
	event := events.New(events.PageDeleted, page.StoryID)
	event.PageID = id
	s.events.emit(ctx, event)
	return nil
}
