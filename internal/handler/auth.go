// Package handler contains the HTTP request handlers for the catalog API.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the incoming HTTP request (path values, query params, JSON body)
//  2. Call the service layer
//  3. Write the HTTP response (status code, headers, JSON body)
//
// Handlers contain no business logic. Each one depends on a small interface
// describing the service methods it calls, so tests can hand it a fake.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/module-catalog/internal/apperror"
	"github.com/sakif/module-catalog/internal/auth"
	"github.com/sakif/module-catalog/internal/service"
)

// Authenticator is the part of service.AuthService the auth routes use.
type Authenticator interface {
	Register(ctx context.Context, name, email, password string) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
}

// AuthHandler serves registration, login and the current-identity probe.
//
// Tokens travel in the response body and come back in the Authorization
// header; nothing is stored in cookies.
type AuthHandler struct {
	auth   Authenticator
	logger *slog.Logger
}

func NewAuthHandler(a Authenticator, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: a, logger: logger}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates an account.
//
// HTTP: POST /auth/register
// REQUEST BODY: {"name": "Jan Jansen", "email": "jan@example.com", "password": "..."}
// RESPONSE: 201 {"token": "...", "user": {"id": "...", "name": "...", "email": "..."}}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// HandleLogin exchanges credentials for a token.
//
// HTTP: POST /auth/login
// REQUEST BODY: {"email": "jan@example.com", "password": "..."}
// RESPONSE: 200 {"token": "...", "user": {...}} or 401 {"error": "unauthorized", "message": "invalid credentials"}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleMe returns the ID carried by the caller's token. It does not hit the
// store; it only proves the token is valid.
//
// HTTP: GET /auth/me (behind RequireAuth)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("authentication required"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": userID})
}
