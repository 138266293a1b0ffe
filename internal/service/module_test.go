package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/module-catalog/internal/apperror"
	"github.com/sakif/module-catalog/internal/model"
	"github.com/sakif/module-catalog/internal/repository"
)

func newTestModuleService(t *testing.T) (*ModuleService, *fakeModuleRepo) {
	t.Helper()
	repo := newFakeModuleRepo()
	return NewModuleService(repo, testLogger()), repo
}

func validModule() model.Module {
	return model.Module{
		Name:             "Databases",
		ShortDescription: "SQL and NoSQL",
		Description:      "Relational and document stores",
		Content:          "Normalization, indexing, transactions",
		StudyCredit:      15,
		Location:         "Breda",
		Level:            "NLQF5",
		LearningOutcomes: "Design a schema",
	}
}

func ptr[T any](v T) *T { return &v }

// =========================================================================
// CREATE
// =========================================================================

func TestModuleCreate(t *testing.T) {
	svc, repo := newTestModuleService(t)

	in := validModule()
	in.Name = "  Databases  "
	in.ID = "client-chosen"

	m, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if m.Name != "Databases" {
		t.Errorf("Name = %q, want trimmed", m.Name)
	}
	if m.ID == "" || m.ID == "client-chosen" {
		t.Errorf("ID = %q, want one assigned by the store", m.ID)
	}
	if _, ok := repo.modules[m.ID]; !ok {
		t.Error("module was not stored")
	}
}

func TestModuleCreate_Validation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*model.Module)
		wantField string
	}{
		{"empty name", func(m *model.Module) { m.Name = "" }, "name"},
		{"blank short description", func(m *model.Module) { m.ShortDescription = "   " }, "shortdescription"},
		{"missing content", func(m *model.Module) { m.Content = "" }, "content"},
		{"missing location", func(m *model.Module) { m.Location = "" }, "location"},
		{"missing level", func(m *model.Module) { m.Level = "\t" }, "level"},
		{"missing learning outcomes", func(m *model.Module) { m.LearningOutcomes = "" }, "learningoutcomes"},
		{"zero credits", func(m *model.Module) { m.StudyCredit = 0 }, "studycredit"},
		{"negative credits", func(m *model.Module) { m.StudyCredit = -5 }, "studycredit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestModuleService(t)
			in := validModule()
			tt.mutate(&in)

			_, err := svc.Create(context.Background(), in)

			var appErr *apperror.AppError
			if !errors.As(err, &appErr) || !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("Create() error = %v, want ErrValidation", err)
			}
			if appErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", appErr.Field, tt.wantField)
			}
			if len(repo.modules) != 0 {
				t.Error("invalid module was stored")
			}
		})
	}
}

func TestModuleCreate_StoreFailure(t *testing.T) {
	svc, repo := newTestModuleService(t)
	repo.err = errStoreDown

	_, err := svc.Create(context.Background(), validModule())
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("Create() error = %v, want wrapped errStoreDown", err)
	}
}

// =========================================================================
// READ
// =========================================================================

func TestModuleGetByID(t *testing.T) {
	svc, _ := newTestModuleService(t)
	created, _ := svc.Create(context.Background(), validModule())

	found, err := svc.GetByID(context.Background(), " "+created.ID+" ")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Name != created.Name {
		t.Errorf("Name = %q, want %q", found.Name, created.Name)
	}

	if _, err := svc.GetByID(context.Background(), "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := svc.GetByID(context.Background(), "  "); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("GetByID(blank) error = %v, want ErrValidation", err)
	}
}

func TestModuleList_CleansFilter(t *testing.T) {
	svc, repo := newTestModuleService(t)

	_, err := svc.List(context.Background(), repository.ModuleFilter{
		Locations:    []string{" Breda ", "", "  "},
		Levels:       []string{""},
		StudyCredits: []int{15},
		Search:       "  data ",
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	got := repo.lastFilter
	if len(got.Locations) != 1 || got.Locations[0] != "Breda" {
		t.Errorf("Locations = %q, want [Breda]", got.Locations)
	}
	if len(got.Levels) != 0 {
		t.Errorf("Levels = %q, want none", got.Levels)
	}
	if got.Search != "data" {
		t.Errorf("Search = %q, want %q", got.Search, "data")
	}
}

// =========================================================================
// UPDATE
// =========================================================================

func TestModuleUpdate_Partial(t *testing.T) {
	svc, _ := newTestModuleService(t)
	created, _ := svc.Create(context.Background(), validModule())

	updated, err := svc.Update(context.Background(), created.ID, model.ModuleUpdate{
		Name:        ptr("  Advanced Databases "),
		StudyCredit: ptr(30),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Name != "Advanced Databases" || updated.StudyCredit != 30 {
		t.Errorf("updated = %+v", updated)
	}
	if updated.Location != "Breda" || updated.Description != created.Description {
		t.Error("Update() changed fields that were not sent")
	}
}

func TestModuleUpdate_Validation(t *testing.T) {
	svc, repo := newTestModuleService(t)
	created, _ := svc.Create(context.Background(), validModule())

	for name, upd := range map[string]model.ModuleUpdate{
		"blank name":   {Name: ptr("   ")},
		"zero credits": {StudyCredit: ptr(0)},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Update(context.Background(), created.ID, upd)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("Update() error = %v, want ErrValidation", err)
			}
			if repo.modules[created.ID].Name != "Databases" || repo.modules[created.ID].StudyCredit != 15 {
				t.Error("rejected update reached the store")
			}
		})
	}
}

func TestModuleUpdate_NotFound(t *testing.T) {
	svc, _ := newTestModuleService(t)

	_, err := svc.Update(context.Background(), "ghost", model.ModuleUpdate{Name: ptr("x")})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Update() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// DELETE / FILTER OPTIONS
// =========================================================================

func TestModuleDelete(t *testing.T) {
	svc, repo := newTestModuleService(t)
	created, _ := svc.Create(context.Background(), validModule())

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(repo.modules) != 0 {
		t.Error("module still stored")
	}
	if err := svc.Delete(context.Background(), created.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestModuleFilterOptions_StoreFailure(t *testing.T) {
	svc, repo := newTestModuleService(t)
	repo.err = errStoreDown

	if _, err := svc.FilterOptions(context.Background()); !errors.Is(err, errStoreDown) {
		t.Fatalf("FilterOptions() error = %v, want wrapped errStoreDown", err)
	}
}
