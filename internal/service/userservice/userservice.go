package userservice

import (
	"context"
	"errors"

	"github.com/boostmart/boostmart/internal/domain"
	"go.uber.org/zap"
)

type Repo interface {
	List(ctx context.Context) ([]domain.User, error)
	UpdateRole(ctx context.Context, id int, role string) (*domain.User, error)
	Delete(ctx context.Context, id int) (bool, error)
	Count(ctx context.Context) (int, error)
}

type Service struct {
	userRepo Repo
}

func New(repo Repo) *Service {
	return &Service{
		userRepo: repo,
	}
}

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidRole  = errors.New("unknown role")
)

func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		zap.L().Error("failed to list users", zap.Error(err))
		return nil, err
	}
	return users, nil
}

func (s *Service) ChangeRole(ctx context.Context, userID int, role string) (*domain.User, error) {
	if !domain.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	user, err := s.userRepo.UpdateRole(ctx, userID, role)
	if err != nil {
		zap.L().Error("failed to change role", zap.Error(err))
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	zap.L().Info("user role changed", zap.Int("userID", userID), zap.String("role", role))
	return user, nil
}

// Remove deletes the user. A signed-in user who is removed loses access on
// their next gated call: every transition reloads the actor by id.
func (s *Service) Remove(ctx context.Context, userID int) error {
	deleted, err := s.userRepo.Delete(ctx, userID)
	if err != nil {
		zap.L().Error("failed to delete user", zap.Error(err))
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}
	zap.L().Info("user removed", zap.Int("userID", userID))
	return nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		zap.L().Error("failed to count users", zap.Error(err))
		return 0, err
	}
	return count, nil
}
