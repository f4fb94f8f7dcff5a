package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"eventcircle/internal/domain"
)

type viewerService struct {
	store          domain.ViewerStore
	userRepo       domain.UserRepository
	logger         *slog.Logger
	contextTimeout time.Duration
	intn           func(n int) int
}

// NewViewerService returns a ViewerService persisting selections in store.
func NewViewerService(store domain.ViewerStore, userRepo domain.UserRepository, logger *slog.Logger, timeout time.Duration) domain.ViewerService {
	return &viewerService{
		store:          store,
		userRepo:       userRepo,
		logger:         logger,
		contextTimeout: timeout,
		intn:           rand.IntN,
	}
}

func (s *viewerService) Current(ctx context.Context, scope string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	stored, err := s.store.Get(ctx, scope, domain.CurrentUserKey)
	switch {
	case err == nil:
		u, err := s.userRepo.GetByID(ctx, stored.ID)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, failure(fmt.Sprintf("get user %d", stored.ID), err)
		}
		s.logger.InfoContext(ctx, "stored viewer no longer exists", "scope", scope, "user_id", stored.ID)
	case errors.Is(err, domain.ErrNotFound):
	default:
		return nil, failure("load viewer", err)
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, failure("list users", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("pick viewer: no users: %w", domain.ErrNotFound)
	}
	picked := users[s.intn(len(users))]
	if err := s.store.Set(ctx, scope, domain.CurrentUserKey, &picked); err != nil {
		return nil, failure("save viewer", err)
	}
	s.logger.InfoContext(ctx, "viewer assigned", "scope", scope, "user_id", picked.ID)
	return &picked, nil
}

func (s *viewerService) Switch(ctx context.Context, scope string, userID int64) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, failure(fmt.Sprintf("get user %d", userID), err)
	}
	if err := s.store.Set(ctx, scope, domain.CurrentUserKey, u); err != nil {
		return nil, failure("save viewer", err)
	}
	s.logger.InfoContext(ctx, "viewer switched", "scope", scope, "user_id", u.ID)
	return u, nil
}
