package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/sakif/module-catalog/internal/apperror"
	"github.com/sakif/module-catalog/internal/repository"
)

// FavoriteService manages a user's favorite modules.
//
// The token proves who the caller was when it was issued, not that the
// account still exists, so every operation re-reads the user from the store
// and answers NotFound if it is gone.
type FavoriteService struct {
	users   repository.UserRepository
	modules repository.ModuleRepository
	logger  *slog.Logger
}

func NewFavoriteService(users repository.UserRepository, modules repository.ModuleRepository, logger *slog.Logger) *FavoriteService {
	return &FavoriteService{
		users:   users,
		modules: modules,
		logger:  logger,
	}
}

// ToggleResult is the state after a toggle.
type ToggleResult struct {
	IsFavorite bool     `json:"isFavorite"`
	Favorites  []string `json:"favorites"`
}

// List returns the user's favorite module IDs in the order they were added.
func (s *FavoriteService) List(ctx context.Context, userID string) ([]string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Favorites == nil {
		return []string{}, nil
	}
	return user.Favorites, nil
}

// Toggle adds the module to the user's favorites, or removes it if it is
// already there. Only existing modules can be added; removing always works,
// so a favorite whose module was deleted can still be cleared.
func (s *FavoriteService) Toggle(ctx context.Context, userID, moduleID string) (*ToggleResult, error) {
	moduleID = strings.TrimSpace(moduleID)
	if moduleID == "" {
		return nil, apperror.ValidationFailed("moduleId", "module ID is required")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(user.Favorites, moduleID) {
		if _, err := s.modules.GetByID(ctx, moduleID); err != nil {
			return nil, err
		}
	}

	favorites, added, err := s.users.ToggleFavorite(ctx, userID, moduleID)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, fmt.Errorf("toggling favorite: %w", err)
	}

	s.logger.Info("favorite toggled",
		slog.String("user_id", userID),
		slog.String("module_id", moduleID),
		slog.Bool("is_favorite", added),
	)
	return &ToggleResult{IsFavorite: added, Favorites: favorites}, nil
}
