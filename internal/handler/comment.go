package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/module-catalog/internal/apperror"
	"github.com/sakif/module-catalog/internal/auth"
	"github.com/sakif/module-catalog/internal/model"
)

type CommentBoard interface {
	Create(ctx context.Context, author auth.Identity, moduleID, description string) (*model.Comment, error)
	ListByModule(ctx context.Context, moduleID string) ([]model.Comment, error)
	Delete(ctx context.Context, userID, id string) error
}

// CommentHandler serves module comments.
type CommentHandler struct {
	comments CommentBoard
	logger   *slog.Logger
}

func NewCommentHandler(comments CommentBoard, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

// HandleListByModule returns a module's comments, newest first.
//
// HTTP: GET /api/comments/module/{moduleId}
func (h *CommentHandler) HandleListByModule(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.ListByModule(r.Context(), r.PathValue("moduleId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

type createCommentRequest struct {
	ModuleID    string `json:"moduleId"`
	Description string `json:"description"`
}

// HandleCreate posts a comment as the authenticated user. Any userId or
// userName in the body is ignored.
//
// HTTP: POST /api/comments (behind RequireAuth)
// REQUEST BODY: {"moduleId": "...", "description": "..."}
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("authentication required"))
		return
	}

	var req createCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.comments.Create(r.Context(), id, req.ModuleID, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, c)
}

// HandleDelete removes one of the caller's own comments.
//
// HTTP: DELETE /api/comments/{id} (behind RequireAuth)
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("authentication required"))
		return
	}

	if err := h.comments.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "comment deleted"})
}
