package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/model"
	"github.com/sakif/messagely/internal/repository"
)

// UserService exposes the user directory and per-user message listings.
type UserService struct {
	users    repository.UserRepository
	messages repository.MessageRepository
	logger   *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(
	users repository.UserRepository,
	messages repository.MessageRepository,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:    users,
		messages: messages,
		logger:   logger,
	}
}

// List returns the summary view of every registered user. Any authenticated
// user may browse the directory — that's how you find someone to message.
func (s *UserService) List(ctx context.Context) ([]model.UserSummary, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// Get returns the full profile for a username, timestamps included.
func (s *UserService) Get(ctx context.Context, username string) (*model.User, error) {
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	return s.users.GetByUsername(ctx, username)
}

// MessagesFrom lists the messages a user has sent. Only the user themself
// may read their outbox.
func (s *UserService) MessagesFrom(ctx context.Context, username, caller string) ([]model.SentMessage, error) {
	if username != caller {
		return nil, apperror.Unauthorized("you may only list your own messages")
	}
	return s.messages.From(ctx, username)
}

// MessagesTo lists the messages a user has received. Only the user themself
// may read their inbox.
func (s *UserService) MessagesTo(ctx context.Context, username, caller string) ([]model.ReceivedMessage, error) {
	if username != caller {
		return nil, apperror.Unauthorized("you may only list your own messages")
	}
	return s.messages.To(ctx, username)
}
