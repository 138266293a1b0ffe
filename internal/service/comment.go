package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/module-catalog/internal/apperror"
	"github.com/sakif/module-catalog/internal/auth"
	"github.com/sakif/module-catalog/internal/model"
	"github.com/sakif/module-catalog/internal/repository"
)

const MaxCommentLength = 2000

// CommentService handles comments on modules.
//
// The author is always the authenticated identity: user ID and display name
// come from the verified token, never from the request body.
type CommentService struct {
	comments repository.CommentRepository
	modules  repository.ModuleRepository
	logger   *slog.Logger
}

func NewCommentService(comments repository.CommentRepository, modules repository.ModuleRepository, logger *slog.Logger) *CommentService {
	return &CommentService{
		comments: comments,
		modules:  modules,
		logger:   logger,
	}
}

// Create posts a comment on an existing module.
func (s *CommentService) Create(ctx context.Context, author auth.Identity, moduleID, description string) (*model.Comment, error) {
	moduleID = strings.TrimSpace(moduleID)
	description = strings.TrimSpace(description)

	if moduleID == "" {
		return nil, apperror.ValidationFailed("moduleId", "moduleId is required")
	}
	if description == "" {
		return nil, apperror.ValidationFailed("description", "description is required")
	}
	if utf8.RuneCountInString(description) > MaxCommentLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxCommentLength))
	}

	if _, err := s.modules.GetByID(ctx, moduleID); err != nil {
		return nil, err
	}

	c := &model.Comment{
		ModuleID:    moduleID,
		UserID:      author.UserID,
		UserName:    author.Name,
		Description: description,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		s.logger.Error("failed to create comment",
			slog.String("module_id", moduleID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	s.logger.Info("comment created",
		slog.String("id", c.ID),
		slog.String("module_id", moduleID),
		slog.String("user_id", author.UserID),
	)
	return c, nil
}

// ListByModule returns a module's comments, newest first. An unknown module
// simply has no comments.
func (s *CommentService) ListByModule(ctx context.Context, moduleID string) ([]model.Comment, error) {
	comments, err := s.comments.ListByModule(ctx, strings.TrimSpace(moduleID))
	if err != nil {
		s.logger.Error("failed to list comments", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return comments, nil
}

// Delete removes a comment. Only its author may delete it.
func (s *CommentService) Delete(ctx context.Context, userID, id string) error {
	c, err := s.comments.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if c.UserID != userID {
		s.logger.Warn("comment delete refused",
			slog.String("id", c.ID),
			slog.String("user_id", userID),
		)
		return apperror.Forbidden("you can only delete your own comments")
	}

	if err := s.comments.Delete(ctx, c.ID); err != nil {
		// Deleted by a concurrent request between the read and the delete.
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		return fmt.Errorf("deleting comment: %w", err)
	}

	s.logger.Info("comment deleted", slog.String("id", c.ID))
	return nil
}
