// Package repository declares the persistence contracts the services depend
// on. Backends live in the mongo and sqlite subpackages; both satisfy Store.
//
// Every backend follows the same error rules:
//   - a missing record is an apperror.NotFound
//   - a duplicate email is an apperror.Conflict on field "email"
//   - anything else is wrapped with a "<backend>: ..." prefix and is opaque
package repository

import (
	"context"

	"github.com/sakif/module-catalog/internal/model"
)

// UserRepository persists identities. Emails are stored exactly as given;
// callers normalize them first.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// ToggleFavorite adds moduleID to the user's favorites if absent and
	// removes it if present. It returns the resulting list and whether the
	// module is now a favorite.
	ToggleFavorite(ctx context.Context, userID, moduleID string) (favorites []string, added bool, err error)
}

// ModuleFilter narrows List. Empty slices and an empty Search match everything;
// values within one slice are OR-ed, different fields are AND-ed.
type ModuleFilter struct {
	Locations    []string
	StudyCredits []int
	Levels       []string
	Search       string // case-insensitive substring of name, shortdescription or description
}

type ModuleRepository interface {
	Create(ctx context.Context, module *model.Module) error
	GetByID(ctx context.Context, id string) (*model.Module, error)
	List(ctx context.Context, filter ModuleFilter) ([]model.Module, error)
	Update(ctx context.Context, module *model.Module) error
	Delete(ctx context.Context, id string) error
	FilterOptions(ctx context.Context) (*model.FilterOptions, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	// ListByModule returns the module's comments, newest first.
	ListByModule(ctx context.Context, moduleID string) ([]model.Comment, error)
	Delete(ctx context.Context, id string) error
}

// Store is a connected backend.
type Store interface {
	Users() UserRepository
	Modules() ModuleRepository
	Comments() CommentRepository

	// Ping reports whether the backend is reachable. Used by the readiness probe.
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
