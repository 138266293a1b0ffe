package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sakif/module-catalog/internal/apperror"
	"github.com/sakif/module-catalog/internal/model"
	"github.com/sakif/module-catalog/internal/repository"
)

// =========================================================================
// FAKE REPOSITORIES
// =========================================================================
//
// In-memory implementations of the repository interfaces. They follow the
// same error contract as the real backends (NotFound, Conflict on duplicate
// email) so the services cannot tell the difference.
//
// Each fake has an `err` field: when set, every method fails with it. That
// is how tests simulate a database outage.

var errStoreDown = errors.New("connection refused")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]*model.User
	nextID int
	err    error

	// getByEmailErr overrides err for GetByEmail only, so a test can let
	// the pre-check pass and fail the insert (or the other way round).
	getByEmailErr error
	createErr     error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if f.err != nil {
		return f.err
	}
	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return apperror.Conflict("email", "email already registered")
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	user.CreatedAt = time.Now()
	user.Favorites = []string{}
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	c := *u
	c.Favorites = slices.Clone(u.Favorites)
	return &c, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getByEmailErr != nil {
		return nil, f.getByEmailErr
	}
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUserRepo) ToggleFavorite(_ context.Context, userID, moduleID string) ([]string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, false, f.err
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, false, apperror.NotFound("user", userID)
	}
	if i := slices.Index(u.Favorites, moduleID); i >= 0 {
		u.Favorites = slices.Delete(u.Favorites, i, i+1)
		return slices.Clone(u.Favorites), false, nil
	}
	u.Favorites = append(u.Favorites, moduleID)
	return slices.Clone(u.Favorites), true, nil
}

func (f *fakeUserRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

type fakeModuleRepo struct {
	modules map[string]*model.Module
	nextID  int
	err     error

	lastFilter repository.ModuleFilter
}

func newFakeModuleRepo() *fakeModuleRepo {
	return &fakeModuleRepo{modules: make(map[string]*model.Module)}
}

func (f *fakeModuleRepo) Create(_ context.Context, m *model.Module) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	m.ID = fmt.Sprintf("mod-%d", f.nextID)
	stored := *m
	f.modules[m.ID] = &stored
	return nil
}

func (f *fakeModuleRepo) GetByID(_ context.Context, id string) (*model.Module, error) {
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.modules[id]
	if !ok {
		return nil, apperror.NotFound("module", id)
	}
	c := *m
	return &c, nil
}

func (f *fakeModuleRepo) List(_ context.Context, filter repository.ModuleFilter) ([]model.Module, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastFilter = filter
	out := make([]model.Module, 0, len(f.modules))
	for _, m := range f.modules {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeModuleRepo) Update(_ context.Context, m *model.Module) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.modules[m.ID]; !ok {
		return apperror.NotFound("module", m.ID)
	}
	stored := *m
	f.modules[m.ID] = &stored
	return nil
}

func (f *fakeModuleRepo) Delete(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.modules[id]; !ok {
		return apperror.NotFound("module", id)
	}
	delete(f.modules, id)
	return nil
}

func (f *fakeModuleRepo) FilterOptions(_ context.Context) (*model.FilterOptions, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.FilterOptions{
		Locations:    []model.FilterOption[string]{},
		StudyCredits: []model.FilterOption[int]{},
		Levels:       []model.FilterOption[string]{},
	}, nil
}

type fakeCommentRepo struct {
	comments []model.Comment
	nextID   int
	err      error
}

func (f *fakeCommentRepo) Create(_ context.Context, c *model.Comment) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	c.ID = fmt.Sprintf("comment-%d", f.nextID)
	// Strictly increasing timestamps so ordering is deterministic.
	c.CreatedAt = time.Date(2026, 1, 1, 0, 0, f.nextID, 0, time.UTC)
	f.comments = append(f.comments, *c)
	return nil
}

func (f *fakeCommentRepo) GetByID(_ context.Context, id string) (*model.Comment, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, c := range f.comments {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, apperror.NotFound("comment", id)
}

func (f *fakeCommentRepo) ListByModule(_ context.Context, moduleID string) ([]model.Comment, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []model.Comment{}
	for i := len(f.comments) - 1; i >= 0; i-- {
		if f.comments[i].ModuleID == moduleID {
			out = append(out, f.comments[i])
		}
	}
	return out, nil
}

func (f *fakeCommentRepo) Delete(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	for i, c := range f.comments {
		if c.ID == id {
			f.comments = slices.Delete(f.comments, i, i+1)
			return nil
		}
	}
	return apperror.NotFound("comment", id)
}
