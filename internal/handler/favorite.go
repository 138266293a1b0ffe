package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/module-catalog/internal/apperror"
	"github.com/sakif/module-catalog/internal/auth"
	"github.com/sakif/module-catalog/internal/service"
)

type FavoriteList interface {
	List(ctx context.Context, userID string) ([]string, error)
	Toggle(ctx context.Context, userID, moduleID string) (*service.ToggleResult, error)
}

// FavoriteHandler serves the caller's favorite modules. Both routes sit
// behind RequireAuth.
type FavoriteHandler struct {
	favorites FavoriteList
	logger    *slog.Logger
}

func NewFavoriteHandler(favorites FavoriteList, logger *slog.Logger) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, logger: logger}
}

type favoritesResponse struct {
	Favorites []string `json:"favorites"`
}

// HandleList returns the caller's favorite module IDs.
//
// HTTP: GET /api/favorites
// RESPONSE: 200 {"favorites": ["...", "..."]}
func (h *FavoriteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("authentication required"))
		return
	}

	favorites, err := h.favorites.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, favoritesResponse{Favorites: favorites})
}

// HandleToggle adds or removes one module.
//
// HTTP: POST /api/favorites/{moduleId}
// RESPONSE: 200 {"isFavorite": true, "favorites": [...]}
func (h *FavoriteHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("authentication required"))
		return
	}

	result, err := h.favorites.Toggle(r.Context(), userID, r.PathValue("moduleId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
