// Package service: authentication business logic.
//
// AuthService is the business logic layer for authentication. It sits between
// the HTTP handlers and the repository/auth utilities:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ PasswordService (bcrypt)
//	                   ↘ TokenService (JWT)
//
// REGISTRATION AND LOGIN ARE DELIBERATELY ASYMMETRIC:
// Registration tells the client that an email is already taken (otherwise the
// user could never find out why they cannot sign up). Login never reveals
// whether an email exists: an unknown email and a wrong password produce the
// same error, and take roughly the same time.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sakif/module-catalog/internal/apperror"
	"github.com/sakif/module-catalog/internal/auth"
	"github.com/sakif/module-catalog/internal/model"
	"github.com/sakif/module-catalog/internal/repository"
)

const (
	msgInvalidCredentials = "invalid credentials"
	msgLoginInput         = "a valid email and password are required"
	msgEmailTaken         = "email already registered"
)

// AuthService handles the authentication business logic.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users      repository.UserRepository  → read/write user records
//   - tokens     *auth.TokenService         → issue JWTs
//   - passwords  *auth.PasswordService      → bcrypt hashing on a bounded pool
//   - logger     *slog.Logger               → structured logging
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger

	// decoyHash is compared against when the email is unknown, so a failed
	// login costs one bcrypt comparison whether or not the account exists.
	decoyHash func() (string, error)
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
		decoyHash: sync.OnceValues(func() (string, error) {
			return passwords.Hash(context.Background(), "decoy-Password-1!")
		}),
	}
}

// AuthResult is what register and login hand back to the client. User is the
// public projection, so the password hash cannot end up in a response.
type AuthResult struct {
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

// Register creates an account and logs it in.
//
// FLOW:
//  1. Normalize name and email (password is never touched)
//  2. Validate; the first failing field is reported
//  3. Reject an email that is already registered
//  4. Hash the password and store the user
//  5. Issue a token
//
// Steps 3 and 4 are not atomic. Two concurrent registrations for the same
// email can both pass step 3; the store's unique index then rejects the
// second insert with the same Conflict step 3 would have produced.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = auth.NormalizeName(name)
	email = auth.NormalizeEmail(email)

	if res := auth.ValidateRegistration(name, email, password); !res.Valid {
		return nil, apperror.ValidationFailed(res.Field, res.Message)
	}

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperror.Conflict("email", msgEmailTaken)
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("service/auth: checking email: %w", err)
	}

	hash, err := s.passwords.Hash(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to create user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", slog.String("user_id", user.ID))
	return result, nil
}

// Login checks credentials and issues a token.
//
// Only the email is normalized: passwords are compared exactly as typed.
// Every way of getting the credentials wrong ends in the same
// Unauthenticated("invalid credentials").
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = auth.NormalizeEmail(email)

	if res := auth.ValidateLogin(email, password); !res.Valid {
		return nil, apperror.ValidationFailed("", msgLoginInput)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("service/auth: looking up user: %w", err)
		}
		if err := s.burnDecoy(ctx, password); err != nil {
			return nil, err
		}
		s.logger.Warn("login failed", slog.String("reason", "unknown email"))
		return nil, apperror.Unauthenticated(msgInvalidCredentials)
	}

	ok, err := s.passwords.Verify(ctx, user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: verifying password: %w", err)
	}
	if !ok {
		s.logger.Warn("login failed",
			slog.String("reason", "wrong password"),
			slog.String("user_id", user.ID),
		)
		return nil, apperror.Unauthenticated(msgInvalidCredentials)
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	return result, nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Name)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token: %w", err)
	}
	return &AuthResult{Token: token, User: user.Public()}, nil
}

func (s *AuthService) burnDecoy(ctx context.Context, password string) error {
	hash, err := s.decoyHash()
	if err != nil {
		return fmt.Errorf("service/auth: preparing decoy hash: %w", err)
	}
	if _, err := s.passwords.Verify(ctx, hash, password); err != nil {
		return fmt.Errorf("service/auth: verifying password: %w", err)
	}
	return nil
}
