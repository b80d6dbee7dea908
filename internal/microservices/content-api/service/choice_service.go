package service

import (
	"context"
	"errors"

	"storyhub/internal/metrics"
	"storyhub/internal/microservices/content-api/dto"
	"storyhub/internal/microservices/content-api/models"
	"storyhub/internal/microservices/content-api/repository"

	"gorm.io/gorm"
)

type ChoiceService interface {
	Create(ctx context.Context, pageID int64, req *dto.CreateChoiceRequest) (*models.Choice, error)
	Get(ctx context.Context, id int64) (*models.Choice, error)
	Update(ctx context.Context, id int64, req *dto.UpdateChoiceRequest) (*models.Choice, error)
	Delete(ctx context.Context, id int64) error
}

type choiceService struct {
	choices repository.ChoiceRepository
}

func NewChoiceService(choices repository.ChoiceRepository) ChoiceService {
	return &choiceService{choices: choices}
}

// mapEdgeError turns repository edge validation errors into service errors.
// notFound is what a missing source row means for the caller.
func mapEdgeError(err, notFound error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, repository.ErrNextPageNotFound):
		return ErrNextPageNotFound
	case errors.Is(err, repository.ErrPageNotInStory):
		return ErrNextPageNotInStory
	}
	return err
}

func (s *choiceService) Create(ctx context.Context, pageID int64, req *dto.CreateChoiceRequest) (*models.Choice, error) {
	choice := req.ToModel(pageID)
	if choice.Text == "" {
		return nil, ErrTextRequired
	}
	if err := s.choices.Create(ctx, choice); err != nil {
		return nil, mapEdgeError(err, ErrPageNotFound)
	}
	metrics.GraphMutations.WithLabelValues("choice", "create").Inc()
	return choice, nil
}

func (s *choiceService) Get(ctx context.Context, id int64) (*models.Choice, error) {
	choice, err := s.choices.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChoiceNotFound
		}
		return nil, err
	}
	return choice, nil
}

func (s *choiceService) Update(ctx context.Context, id int64, req *dto.UpdateChoiceRequest) (*models.Choice, error) {
	choice, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	req.ApplyTo(choice)
	if choice.Text == "" {
		return nil, ErrTextRequired
	}
	if err := s.choices.Update(ctx, choice); err != nil {
		return nil, mapEdgeError(err, ErrChoiceNotFound)
	}
	metrics.GraphMutations.WithLabelValues("choice", "update").Inc()
	return choice, nil
}

func (s *choiceService) Delete(ctx context.Context, id int64) error {
	if err := s.choices.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChoiceNotFound
		}
		return err
	}
	metrics.GraphMutations.WithLabelValues("choice", "delete").Inc()
	return nil
}
