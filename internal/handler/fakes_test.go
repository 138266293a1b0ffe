package handler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/sakif/module-catalog/internal/auth"
	"github.com/sakif/module-catalog/internal/model"
	"github.com/sakif/module-catalog/internal/repository"
	"github.com/sakif/module-catalog/internal/service"
)

// errBoom stands in for any unexpected failure below the handler.
var errBoom = errors.New("mongo: connection reset by peer")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockAuthenticator records the last call and returns canned results.
type MockAuthenticator struct {
	CapturedName     string
	CapturedEmail    string
	CapturedPassword string
	ReturnRes        *service.AuthResult
	ReturnErr        error
}

func (m *MockAuthenticator) Register(_ context.Context, name, email, password string) (*service.AuthResult, error) {
	m.CapturedName, m.CapturedEmail, m.CapturedPassword = name, email, password
	return m.ReturnRes, m.ReturnErr
}

func (m *MockAuthenticator) Login(_ context.Context, email, password string) (*service.AuthResult, error) {
	m.CapturedEmail, m.CapturedPassword = email, password
	return m.ReturnRes, m.ReturnErr
}

type MockModuleCatalog struct {
	CapturedID     string
	CapturedModule model.Module
	CapturedUpdate model.ModuleUpdate
	CapturedFilter repository.ModuleFilter
	ReturnModule   *model.Module
	ReturnList     []model.Module
	ReturnOptions  *model.FilterOptions
	ReturnErr      error
}

func (m *MockModuleCatalog) Create(_ context.Context, in model.Module) (*model.Module, error) {
	m.CapturedModule = in
	return m.ReturnModule, m.ReturnErr
}

func (m *MockModuleCatalog) GetByID(_ context.Context, id string) (*model.Module, error) {
	m.CapturedID = id
	return m.ReturnModule, m.ReturnErr
}

func (m *MockModuleCatalog) List(_ context.Context, filter repository.ModuleFilter) ([]model.Module, error) {
	m.CapturedFilter = filter
	return m.ReturnList, m.ReturnErr
}

func (m *MockModuleCatalog) Update(_ context.Context, id string, upd model.ModuleUpdate) (*model.Module, error) {
	m.CapturedID, m.CapturedUpdate = id, upd
	return m.ReturnModule, m.ReturnErr
}

func (m *MockModuleCatalog) Delete(_ context.Context, id string) error {
	m.CapturedID = id
	return m.ReturnErr
}

func (m *MockModuleCatalog) FilterOptions(_ context.Context) (*model.FilterOptions, error) {
	return m.ReturnOptions, m.ReturnErr
}

type MockCommentBoard struct {
	CapturedAuthor      auth.Identity
	CapturedModuleID    string
	CapturedDescription string
	CapturedUserID      string
	CapturedID          string
	ReturnComment       *model.Comment
	ReturnList          []model.Comment
	ReturnErr           error
}

func (m *MockCommentBoard) Create(_ context.Context, author auth.Identity, moduleID, description string) (*model.Comment, error) {
	m.CapturedAuthor, m.CapturedModuleID, m.CapturedDescription = author, moduleID, description
	return m.ReturnComment, m.ReturnErr
}

func (m *MockCommentBoard) ListByModule(_ context.Context, moduleID string) ([]model.Comment, error) {
	m.CapturedModuleID = moduleID
	return m.ReturnList, m.ReturnErr
}

func (m *MockCommentBoard) Delete(_ context.Context, userID, id string) error {
	m.CapturedUserID, m.CapturedID = userID, id
	return m.ReturnErr
}

type MockFavoriteList struct {
	CapturedUserID   string
	CapturedModuleID string
	ReturnList       []string
	ReturnToggle     *service.ToggleResult
	ReturnErr        error
}

func (m *MockFavoriteList) List(_ context.Context, userID string) ([]string, error) {
	m.CapturedUserID = userID
	return m.ReturnList, m.ReturnErr
}

func (m *MockFavoriteList) Toggle(_ context.Context, userID, moduleID string) (*service.ToggleResult, error) {
	m.CapturedUserID, m.CapturedModuleID = userID, moduleID
	return m.ReturnToggle, m.ReturnErr
}

type MockPinger struct {
	Err error
}

func (m *MockPinger) Ping(context.Context) error { return m.Err }
