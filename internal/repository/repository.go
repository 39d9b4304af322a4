package repository

import (
	"context"

	"github.com/sakif/messagely/internal/model"
)

// UserRepository is the persistence contract for user records. The password
// field always holds the bcrypt hash — hashing happens in the service layer,
// the repository never sees a plaintext password.
type UserRepository interface {
	// CreateUser inserts a new user. Returns a conflict error if the
	// username is already taken.
	CreateUser(ctx context.Context, user *model.User) error
	// GetByUsername returns the full record including the password hash.
	// Returns a not-found error if the username doesn't exist.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// UpdateLoginTimestamp sets last_login_at to now. Returns a not-found
	// error if the username doesn't exist.
	UpdateLoginTimestamp(ctx context.Context, username string) error
	// List returns the summary view of every user. Order is not guaranteed.
	List(ctx context.Context) ([]model.UserSummary, error)
}

// MessageRepository is the persistence contract for messages.
type MessageRepository interface {
	// CreateMessage inserts a new message. Returns a validation error if
	// either username doesn't reference an existing user.
	CreateMessage(ctx context.Context, msg *model.Message) error
	// GetByID returns the full detail view with both parties resolved to
	// summary profiles. Returns a not-found error if the id doesn't exist.
	GetByID(ctx context.Context, id string) (*model.MessageDetail, error)
	// MarkRead stamps read_at with the current instant and returns the
	// receipt. A second call re-stamps; it does not fail.
	MarkRead(ctx context.Context, id string) (*model.ReadReceipt, error)
	// From returns all messages sent by the user, recipients resolved.
	From(ctx context.Context, username string) ([]model.SentMessage, error)
	// To returns all messages received by the user, senders resolved.
	To(ctx context.Context, username string) ([]model.ReceivedMessage, error)
}
