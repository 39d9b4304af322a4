package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/messagely/internal/apperror"
	"github.com/sakif/messagely/internal/model"
	"github.com/sakif/messagely/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new user.
//
// join_at and last_login_at are both set to the creation instant — a brand
// new account counts as logged in, since registration immediately issues a
// token.
//
// The username has a UNIQUE (primary key) constraint, so a duplicate insert
// fails at the database and is translated to a conflict error here. Checking
// with a prior SELECT would race: two concurrent registrations could both
// pass the check and one insert would still blow up.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.JoinAt = now
	user.LastLoginAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (username, password, first_name, last_name, phone, join_at, last_login_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.JoinAt,
		user.LastLoginAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Username)
		}
		return fmt.Errorf("sqlite: creating user %s: %w", user.Username, err)
	}

	return nil
}

// GetByUsername retrieves the full user record, password hash included.
// Returns apperror.ErrNotFound if no user exists with that username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT username, password, first_name, last_name, phone, join_at, last_login_at
		 FROM users WHERE username = ?`,
		username,
	).Scan(
		&u.Username,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Phone,
		&u.JoinAt,
		&u.LastLoginAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", username, err)
	}

	return &u, nil
}

// UpdateLoginTimestamp sets last_login_at to the current instant.
//
// RowsAffected distinguishes "user doesn't exist" from "updated": an UPDATE
// on a missing row succeeds with zero rows, which we surface as not found.
func (db *DB) UpdateLoginTimestamp(ctx context.Context, username string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET last_login_at = ? WHERE username = ?`,
		time.Now(), username,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating login timestamp for %s: %w", username, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected for %s: %w", username, err)
	}
	if affected == 0 {
		return apperror.NotFound("user", username)
	}

	return nil
}

// List returns the summary view of every user. No ordering is promised, but
// username order makes the output stable for clients anyway.
func (db *DB) List(ctx context.Context) ([]model.UserSummary, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT username, first_name, last_name, phone FROM users ORDER BY username`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := []model.UserSummary{}
	for rows.Next() {
		var u model.UserSummary
		if err := rows.Scan(&u.Username, &u.FirstName, &u.LastName, &u.Phone); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}

	return users, nil
}
