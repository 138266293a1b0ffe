package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sakif/module-catalog/internal/model"
	"github.com/sakif/module-catalog/internal/repository"
)

// ModuleCatalog is the part of service.ModuleService the module routes use.
type ModuleCatalog interface {
	Create(ctx context.Context, m model.Module) (*model.Module, error)
	GetByID(ctx context.Context, id string) (*model.Module, error)
	List(ctx context.Context, filter repository.ModuleFilter) ([]model.Module, error)
	Update(ctx context.Context, id string, upd model.ModuleUpdate) (*model.Module, error)
	Delete(ctx context.Context, id string) error
	FilterOptions(ctx context.Context) (*model.FilterOptions, error)
}

// ModuleHandler manages CRUD operations for catalog modules.
type ModuleHandler struct {
	modules ModuleCatalog
	logger  *slog.Logger
}

func NewModuleHandler(modules ModuleCatalog, logger *slog.Logger) *ModuleHandler {
	return &ModuleHandler{modules: modules, logger: logger}
}

// HandleList returns the catalog, optionally filtered.
//
// HTTP: GET /api/modules?locations=Breda&locations=Tilburg&studyCredits=15&levels=NLQF5&search=data
//
// Every filter parameter may be repeated; values of one parameter are OR-ed,
// different parameters are AND-ed. Non-numeric studyCredits are ignored.
func (h *ModuleHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	modules, err := h.modules.List(r.Context(), parseModuleFilter(r.URL.Query()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, modules)
}

func parseModuleFilter(q url.Values) repository.ModuleFilter {
	filter := repository.ModuleFilter{
		Locations: q["locations"],
		Levels:    q["levels"],
		Search:    q.Get("search"),
	}
	for _, raw := range q["studyCredits"] {
		if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			filter.StudyCredits = append(filter.StudyCredits, n)
		}
	}
	return filter
}

// HandleFilterOptions returns the distinct locations, study credits and
// levels with their module counts, for the catalog sidebar.
//
// HTTP: GET /api/modules/filter-options
func (h *ModuleHandler) HandleFilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.modules.FilterOptions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, opts)
}

// HandleGet returns one module.
//
// HTTP: GET /api/modules/{id}
func (h *ModuleHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	m, err := h.modules.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, m)
}

// HandleCreate adds a module.
//
// HTTP: POST /api/modules (behind RequireAuth)
func (h *ModuleHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in model.Module
	if !decodeJSON(w, r, &in) {
		return
	}

	m, err := h.modules.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, m)
}

// HandleUpdate applies a partial update: only the fields present in the body
// change.
//
// HTTP: PUT /api/modules/{id} (behind RequireAuth)
func (h *ModuleHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var upd model.ModuleUpdate
	if !decodeJSON(w, r, &upd) {
		return
	}

	m, err := h.modules.Update(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, m)
}

// HandleDelete removes a module.
//
// HTTP: DELETE /api/modules/{id} (behind RequireAuth)
func (h *ModuleHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.modules.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "module deleted"})
}
