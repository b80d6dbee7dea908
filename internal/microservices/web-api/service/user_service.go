package service

import (
	"context"
	"errors"
	"fmt"

	"storyhub/internal/microservices/web-api/models"
	"storyhub/internal/microservices/web-api/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserService interface {
	Get(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, page, pageSize int) ([]models.User, int64, error)
	ChangeRole(ctx context.Context, admin Viewer, userID, role string) (*models.User, error)
}

type userService struct {
	repo   repository.UserRepository
	tokens repository.RefreshTokenRepository
	logger *zap.Logger
}

func NewUserService(repo repository.UserRepository, tokens repository.RefreshTokenRepository, logger *zap.Logger) UserService {
	return &userService{repo: repo, tokens: tokens, logger: logger}
}

func (s *userService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, page, pageSize int) ([]models.User, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.repo.List(ctx, page, pageSize)
}

// ChangeRole updates a role and revokes the user's refresh tokens so the new role is picked up
// on the next login.
func (s *userService) ChangeRole(ctx context.Context, admin Viewer, userID, role string) (*models.User, error) {
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	if admin.UserID == userID {
		return nil, ErrCannotChangeOwnRole
	}
	if err := s.repo.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update role: %w", err)
	}
	if err := s.tokens.RevokeAllForUser(ctx, userID); err != nil {
		s.logger.Warn("Failed to revoke tokens after role change", zap.String("user_id", userID), zap.Error(err))
	}
	s.logger.Info("User role changed",
		zap.String("user_id", userID),
		zap.String("role", role),
		zap.String("by", admin.UserID))
	return s.Get(ctx, userID)
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
