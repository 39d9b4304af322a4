package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/model"
	"github.com/sakif/messagely/internal/repository"
)

// MaxBodyLength caps message bodies. SQLite would happily store megabytes;
// nothing legitimate needs more than this in a text message.
const MaxBodyLength = 10000

// MessageService wraps the message store with the authorization rules:
// only the sender or recipient may read a message, only the recipient may
// mark it read, and the sender of a new message is always the caller.
type MessageService struct {
	messages repository.MessageRepository
	logger   *slog.Logger
}

// NewMessageService creates a MessageService.
func NewMessageService(messages repository.MessageRepository, logger *slog.Logger) *MessageService {
	return &MessageService{
		messages: messages,
		logger:   logger,
	}
}

// Get returns the full detail of a message, provided the caller is one of
// its two parties.
//
// ORDER OF CHECKS:
// The fetch happens first, so a message that doesn't exist reports not found
// to everyone — there's nothing to protect about a nonexistent id. Only an
// existing message yields an authorization error.
func (s *MessageService) Get(ctx context.Context, id, caller string) (*model.MessageDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "message ID is required")
	}

	detail, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if detail.FromUser.Username != caller && detail.ToUser.Username != caller {
		s.logger.Warn("unauthorized message read attempt",
			slog.String("message_id", id),
			slog.String("caller", caller),
		)
		return nil, apperror.Unauthorized("you are not a party to this message")
	}

	return detail, nil
}

// Send creates a message from the caller to the given recipient.
//
// SENDER IDENTITY:
// The sender is the authenticated caller, full stop. It is never read from
// client input — accepting a from_username field would let any logged-in
// user forge messages from anyone else.
func (s *MessageService) Send(ctx context.Context, caller, toUsername, body string) (*model.Message, error) {
	toUsername = strings.TrimSpace(toUsername)

	if toUsername == "" {
		return nil, apperror.ValidationFailed("to_username", "to_username is required")
	}
	if strings.TrimSpace(body) == "" {
		return nil, apperror.ValidationFailed("body", "body is required")
	}
	if len(body) > MaxBodyLength {
		return nil, apperror.ValidationFailed("body",
			fmt.Sprintf("body must be %d characters or less", MaxBodyLength))
	}

	msg := &model.Message{
		FromUsername: caller,
		ToUsername:   toUsername,
		Body:         body,
	}

	if err := s.messages.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.logger.Info("message sent",
		slog.String("id", msg.ID),
		slog.String("from", msg.FromUsername),
		slog.String("to", msg.ToUsername),
	)

	return msg, nil
}

// MarkRead stamps a message as read, provided the caller is its recipient.
// The sender cannot mark their own message read — read state belongs to the
// receiving side.
func (s *MessageService) MarkRead(ctx context.Context, id, caller string) (*model.ReadReceipt, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "message ID is required")
	}

	detail, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if detail.ToUser.Username != caller {
		s.logger.Warn("unauthorized mark-read attempt",
			slog.String("message_id", id),
			slog.String("caller", caller),
		)
		return nil, apperror.Unauthorized("only the recipient may mark a message read")
	}

	receipt, err := s.messages.MarkRead(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("message marked read",
		slog.String("id", id),
		slog.String("by", caller),
	)

	return receipt, nil
}
