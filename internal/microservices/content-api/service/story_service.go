package service

import (
	"context"
	"errors"
	"fmt"

	"storyhub/internal/events"
	"storyhub/internal/metrics"
	"storyhub/internal/microservices/content-api/dto"
	"storyhub/internal/microservices/content-api/models"
	"storyhub/internal/microservices/content-api/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type StoryService interface {
	List(ctx context.Context, filter repository.StoryFilter) ([]models.Story, error)
	Get(ctx context.Context, id int64, includePages bool) (*models.Story, error)
	StartPage(ctx context.Context, id int64) (int64, error)
	Tree(ctx context.Context, id int64) (*dto.StoryTreeResponse, error)
	Create(ctx context.Context, req *dto.CreateStoryRequest) (*models.Story, error)
	Update(ctx context.Context, id int64, req *dto.UpdateStoryRequest) (*models.Story, error)
	Delete(ctx context.Context, id int64) error
}

type storyService struct {
	stories repository.StoryRepository
	events  eventSink
	logger  *zap.Logger
}

func NewStoryService(stories repository.StoryRepository, publisher events.Publisher, logger *zap.Logger) StoryService {
	return &storyService{
		stories: stories,
		events:  eventSink{publisher: publisher, logger: logger},
		logger:  logger,
	}
}

func (s *storyService) List(ctx context.Context, filter repository.StoryFilter) ([]models.Story, error) {
	if filter.Status != "" && !models.ValidStatus(filter.Status) {
		return nil, fmt.Errorf("invalid status %q", filter.Status)
	}
	return s.stories.List(ctx, filter)
}

func (s *storyService) Get(ctx context.Context, id int64, includePages bool) (*models.Story, error) {
	var (
		story *models.Story
		err   error
	)
	if includePages {
		story, err = s.stories.GetWithPages(ctx, id)
	} else {
		story, err = s.stories.GetByID(ctx, id)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoryNotFound
		}
		return nil, err
	}
	return story, nil
}

func (s *storyService) StartPage(ctx context.Context, id int64) (int64, error) {
	story, err := s.Get(ctx, id, false)
	if err != nil {
		return 0, err
	}
	if story.StartPageID == nil {
		return 0, ErrNoStartPage
	}
	return *story.StartPageID, nil
}

func (s *storyService) Tree(ctx context.Context, id int64) (*dto.StoryTreeResponse, error) {
	story, err := s.Get(ctx, id, true)
	if err != nil {
		return nil, err
	}

	report := AnalyzeGraph(story.StartPageID, story.Pages)
	pages := dto.FromModelsToPageResponses(story.Pages)

	storyResp := dto.FromModelToStoryResponse(story)
	storyResp.Pages = nil

	return &dto.StoryTreeResponse{
		Story:              storyResp,
		Pages:              pages,
		EndingPageIDs:      report.Endings,
		UnreachablePageIDs: report.Unreachable,
		DeadEndPageIDs:     report.DeadEnds,
	}, nil
}

func (s *storyService) Create(ctx context.Context, req *dto.CreateStoryRequest) (*models.Story, error) {
	story := req.ToModel()
	if story.Title == "" {
		return nil, ErrTitleRequired
	}
	if err := s.stories.Create(ctx, story); err != nil {
		return nil, err
	}

	metrics.GraphMutations.WithLabelValues("story", "create").Inc()
	s.logger.Info("Story created", zap.Int64("story_id", story.ID), zap.String("author_id", story.AuthorID))
	s.events.emit(ctx, events.New(events.StoryCreated, story.ID))
	return story, nil
}

func (s *storyService) Update(ctx context.Context, id int64, req *dto.UpdateStoryRequest) (*models.Story, error) {
	story, err := s.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}

	previousStatus := story.Status
	req.ApplyTo(story)
	if story.Title == "" {
		return nil, ErrTitleRequired
	}

	if err := s.stories.Update(ctx, story); err != nil {
		if errors.Is(err, repository.ErrPageNotInStory) {
			return nil, ErrStartPageNotInStory
		}
		return nil, err
	}

	metrics.GraphMutations.WithLabelValues("story", "update").Inc()
	s.events.emit(ctx, events.New(events.StoryUpdated, story.ID))
	if story.Status != previousStatus {
		event := events.New(events.StoryStatusChanged, story.ID)
		event.Status = story.Status
		s.events.emit(ctx, event)
		s.logger.Info("Story status changed",
			zap.Int64("story_id", story.ID),
			zap.String("from", previousStatus),
			zap.String("to", story.Status),
		)
	}
	return story, nil
}

func (s *storyService) Delete(ctx context.Context, id int64) error {
	if err := s.stories.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStoryNotFound
		}
		return err
	}

	metrics.GraphMutations.WithLabelValues("story", "delete").Inc()
	s.logger.Info("Story deleted", zap.Int64("story_id", id))
	s.events.emit(ctx, events.New(events.StoryDeleted, id))
	return nil
}
