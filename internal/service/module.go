// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services take repository interfaces, never a concrete backend. main.go
// decides whether that is MongoDB or SQLite; the tests pass in-memory fakes.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/module-catalog/internal/apperror"
	"github.com/sakif/module-catalog/internal/model"
	"github.com/sakif/module-catalog/internal/repository"
)

const MinStudyCredit = 1

// ModuleService handles business logic for catalog modules.
type ModuleService struct {
	repo   repository.ModuleRepository
	logger *slog.Logger
}

func NewModuleService(repo repository.ModuleRepository, logger *slog.Logger) *ModuleService {
	return &ModuleService{
		repo:   repo,
		logger: logger,
	}
}

// requiredField pairs a JSON field name with a pointer into the module, so
// trimming and the emptiness check are written once.
type requiredField struct {
	name  string
	value *string
}

func requiredFields(m *model.Module) []requiredField {
	return []requiredField{
		{"name", &m.Name},
		{"shortdescription", &m.ShortDescription},
		{"description", &m.Description},
		{"content", &m.Content},
		{"location", &m.Location},
		{"level", &m.Level},
		{"learningoutcomes", &m.LearningOutcomes},
	}
}

// Create validates and saves a new module. Every text field is trimmed and
// must be non-empty; studycredit must be at least 1.
func (s *ModuleService) Create(ctx context.Context, m model.Module) (*model.Module, error) {
	for _, f := range requiredFields(&m) {
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			return nil, apperror.ValidationFailed(f.name, f.name+" is required")
		}
	}
	if m.StudyCredit < MinStudyCredit {
		return nil, apperror.ValidationFailed("studycredit",
			fmt.Sprintf("studycredit must be at least %d", MinStudyCredit))
	}

	m.ID = ""
	if err := s.repo.Create(ctx, &m); err != nil {
		s.logger.Error("failed to create module",
			slog.String("name", m.Name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating module: %w", err)
	}

	s.logger.Info("module created",
		slog.String("id", m.ID),
		slog.String("name", m.Name),
	)
	return &m, nil
}

// GetByID returns apperror.ErrNotFound if the module doesn't exist.
func (s *ModuleService) GetByID(ctx context.Context, id string) (*model.Module, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "module ID is required")
	}
	return s.repo.GetByID(ctx, id)
}

// List returns the modules matching filter. Blank filter values are dropped,
// so "?locations=" behaves like no location filter at all.
func (s *ModuleService) List(ctx context.Context, filter repository.ModuleFilter) ([]model.Module, error) {
	filter.Locations = compact(filter.Locations)
	filter.Levels = compact(filter.Levels)
	filter.Search = strings.TrimSpace(filter.Search)

	modules, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list modules", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing modules: %w", err)
	}
	return modules, nil
}

// Update applies a partial update.
//
// STRATEGY: "Fetch then update"
//  1. Validate only the fields that were sent
//  2. Fetch the existing module (NotFound if it doesn't exist)
//  3. Apply the changes to the fetched copy and save it
//
// A field that is sent must still be valid: "name": "   " is rejected rather
// than blanking the name.
func (s *ModuleService) Update(ctx context.Context, id string, upd model.ModuleUpdate) (*model.Module, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "module ID is required")
	}

	for _, f := range []struct {
		name  string
		value *string
	}{
		{"name", upd.Name},
		{"shortdescription", upd.ShortDescription},
		{"description", upd.Description},
		{"content", upd.Content},
		{"location", upd.Location},
		{"level", upd.Level},
		{"learningoutcomes", upd.LearningOutcomes},
	} {
		if f.value == nil {
			continue
		}
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			return nil, apperror.ValidationFailed(f.name, f.name+" cannot be empty")
		}
	}
	if upd.StudyCredit != nil && *upd.StudyCredit < MinStudyCredit {
		return nil, apperror.ValidationFailed("studycredit",
			fmt.Sprintf("studycredit must be at least %d", MinStudyCredit))
	}

	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	upd.Apply(m)

	if err := s.repo.Update(ctx, m); err != nil {
		s.logger.Error("failed to update module",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating module: %w", err)
	}

	s.logger.Info("module updated", slog.String("id", m.ID))
	return m, nil
}

// Delete removes a module. Comments and favorites that reference it are left
// in place.
func (s *ModuleService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "module ID is required")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("module deleted", slog.String("id", id))
	return nil
}

func (s *ModuleService) FilterOptions(ctx context.Context) (*model.FilterOptions, error) {
	opts, err := s.repo.FilterOptions(ctx)
	if err != nil {
		s.logger.Error("failed to load filter options", slog.String("error", err.Error()))
		return nil, fmt.Errorf("loading filter options: %w", err)
	}
	return opts, nil
}

// compact trims every value and drops the empty ones.
func compact(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
