// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services take repository interfaces, not concrete sqlite types, so tests
// inject in-memory fakes and the HTTP layer never touches SQL.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/auth"
	"github.com/sakif/messagely/internal/model"
	"github.com/sakif/messagely/internal/repository"
)

// AuthService owns registration and login.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users     repository.UserRepository → read/write user records
//   - tokens    *auth.TokenService        → issue/validate JWTs
//   - passwords *auth.PasswordService     → bcrypt hashing
//   - logger    *slog.Logger              → structured logging
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
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
	}
}

// AuthResult bundles the user record and the issued JWT so the handler can
// respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// RegisterParams are the five fields a new account needs. All are required.
type RegisterParams struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// Register creates a new account and logs it in.
//
// The password is hashed before it goes anywhere near the repository — the
// plaintext lives only on the stack of this call. A duplicate username
// surfaces as a conflict error from the store's uniqueness constraint.
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (*AuthResult, error) {
	p.Username = strings.TrimSpace(p.Username)
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Phone = strings.TrimSpace(p.Phone)

	switch {
	case p.Username == "":
		return nil, apperror.ValidationFailed("username", "username is required")
	case p.Password == "":
		return nil, apperror.ValidationFailed("password", "password is required")
	case p.FirstName == "":
		return nil, apperror.ValidationFailed("first_name", "first_name is required")
	case p.LastName == "":
		return nil, apperror.ValidationFailed("last_name", "last_name is required")
	case p.Phone == "":
		return nil, apperror.ValidationFailed("phone", "phone is required")
	}

	hash, err := s.passwords.Hash(p.Password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{
		Username:     p.Username,
		PasswordHash: hash,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Phone:        p.Phone,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to create user",
			slog.String("username", p.Username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("registering user: %w", err)
	}

	token, err := s.tokens.Generate(user.Username)
	if err != nil {
		return nil, fmt.Errorf("issuing token for %s: %w", user.Username, err)
	}

	s.logger.Info("user registered", slog.String("username", user.Username))

	return &AuthResult{User: user, Token: token}, nil
}

// Authenticate reports whether the username/password pair is valid.
//
// Returns a not-found error for an unknown username and (false, nil) for a
// wrong password — a bad guess is an expected outcome, not a failure. Login
// flattens both cases into one uniform error; callers that are allowed to
// know the difference (and there are legitimate ones, e.g. admin tooling)
// use this directly.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return false, err
	}

	ok, err := s.passwords.Verify(user.PasswordHash, password)
	if err != nil {
		return false, fmt.Errorf("verifying password for %s: %w", username, err)
	}
	return ok, nil
}

// Login verifies credentials and issues a token.
//
// FAILURE MESSAGING:
// An unknown username and a wrong password produce the exact same error.
// Distinguishing them would let anyone probe the login endpoint to find out
// which usernames exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	if username == "" || password == "" {
		return nil, apperror.ValidationFailed("", "username and password are required")
	}

	ok, err := s.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("authenticating %s: %w", username, err)
	}
	if !ok {
		return nil, apperror.InvalidCredentials()
	}

	if err := s.users.UpdateLoginTimestamp(ctx, username); err != nil {
		return nil, fmt.Errorf("updating login timestamp for %s: %w", username, err)
	}

	token, err := s.tokens.Generate(username)
	if err != nil {
		return nil, fmt.Errorf("issuing token for %s: %w", username, err)
	}

	s.logger.Info("user logged in", slog.String("username", username))

	return &AuthResult{Token: token}, nil
}
