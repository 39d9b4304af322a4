package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/model"
	"github.com/sakif/messagely/internal/repository"
)

// compile-time check that *DB implements repository.MessageRepository
var _ repository.MessageRepository = (*DB)(nil)

// CreateMessage inserts a new message.
//
// ID GENERATION WITH xid:
// xid IDs are 20 chars, URL-safe, and sortable by creation time — handy for
// messages, which are almost always listed chronologically.
//
// Referential integrity is the database's job: both usernames carry FOREIGN
// KEY constraints, and a violation is translated to a validation error. The
// caller supplied a username that doesn't exist — that's bad input, not a
// missing resource.
func (db *DB) CreateMessage(ctx context.Context, msg *model.Message) error {
	msg.ID = xid.New().String()
	msg.SentAt = time.Now()
	msg.ReadAt = nil

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO messages (id, from_username, to_username, body, sent_at, read_at)
		 VALUES (?, ?, ?, ?, ?, NULL)`,
		msg.ID,
		msg.FromUsername,
		msg.ToUsername,
		msg.Body,
		msg.SentAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.ValidationFailed("to_username",
				"both sender and recipient must be registered users")
		}
		return fmt.Errorf("sqlite: creating message: %w", err)
	}

	return nil
}

// GetByID retrieves the full detail view of a message. The sender and
// recipient summaries are resolved with JOINs at read time — the messages
// table stores only the usernames.
func (db *DB) GetByID(ctx context.Context, id string) (*model.MessageDetail, error) {
	var (
		d      model.MessageDetail
		readAt sql.NullTime
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        f.username, f.first_name, f.last_name, f.phone,
		        t.username, t.first_name, t.last_name, t.phone
		 FROM messages m
		 JOIN users f ON f.username = m.from_username
		 JOIN users t ON t.username = m.to_username
		 WHERE m.id = ?`,
		id,
	).Scan(
		&d.ID, &d.Body, &d.SentAt, &readAt,
		&d.FromUser.Username, &d.FromUser.FirstName, &d.FromUser.LastName, &d.FromUser.Phone,
		&d.ToUser.Username, &d.ToUser.FirstName, &d.ToUser.LastName, &d.ToUser.Phone,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("message", id)
		}
		return nil, fmt.Errorf("sqlite: getting message %s: %w", id, err)
	}

	if readAt.Valid {
		d.ReadAt = &readAt.Time
	}

	return &d, nil
}

// MarkRead stamps read_at with the current instant.
//
// A message that's already read is re-stamped — marking read is idempotent
// from the recipient's point of view, and only the recipient ever reaches
// this call.
func (db *DB) MarkRead(ctx context.Context, id string) (*model.ReadReceipt, error) {
	readAt := time.Now()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE messages SET read_at = ? WHERE id = ?`,
		readAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: marking message %s read: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: rows affected for message %s: %w", id, err)
	}
	if affected == 0 {
		return nil, apperror.NotFound("message", id)
	}

	return &model.ReadReceipt{ID: id, ReadAt: readAt}, nil
}

// From returns all messages sent by the user, each with the recipient
// resolved to a summary profile.
func (db *DB) From(ctx context.Context, username string) ([]model.SentMessage, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        t.username, t.first_name, t.last_name, t.phone
		 FROM messages m
		 JOIN users t ON t.username = m.to_username
		 WHERE m.from_username = ?
		 ORDER BY m.sent_at`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing messages from %s: %w", username, err)
	}
	defer rows.Close()

	messages := []model.SentMessage{}
	for rows.Next() {
		var (
			m      model.SentMessage
			readAt sql.NullTime
		)
		if err := rows.Scan(
			&m.ID, &m.Body, &m.SentAt, &readAt,
			&m.ToUser.Username, &m.ToUser.FirstName, &m.ToUser.LastName, &m.ToUser.Phone,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning sent message: %w", err)
		}
		if readAt.Valid {
			m.ReadAt = &readAt.Time
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating sent messages: %w", err)
	}

	return messages, nil
}

// To returns all messages received by the user, each with the sender
// resolved to a summary profile.
func (db *DB) To(ctx context.Context, username string) ([]model.ReceivedMessage, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT m.id, m.body, m.sent_at, m.read_at,
		        f.username, f.first_name, f.last_name, f.phone
		 FROM messages m
		 JOIN users f ON f.username = m.from_username
		 WHERE m.to_username = ?
		 ORDER BY m.sent_at`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing messages to %s: %w", username, err)
	}
	defer rows.Close()

	messages := []model.ReceivedMessage{}
	for rows.Next() {
		var (
			m      model.ReceivedMessage
			readAt sql.NullTime
		)
		if err := rows.Scan(
			&m.ID, &m.Body, &m.SentAt, &readAt,
			&m.FromUser.Username, &m.FromUser.FirstName, &m.FromUser.LastName, &m.FromUser.Phone,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning received message: %w", err)
		}
		if readAt.Valid {
			m.ReadAt = &readAt.Time
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating received messages: %w", err)
	}

	return messages, nil
}
