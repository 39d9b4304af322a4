// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// The username is the primary identifier — it's chosen at registration and
// never changes, so messages reference it directly without a surrogate key.
//
// WHY PasswordHash AND NOT Password?
// We only ever store the bcrypt hash of the password. The hash is salted and
// one-way, so even a full database dump doesn't reveal anyone's password.
// The `json:"-"` tag makes it impossible to accidentally serialize the hash
// into an API response.
type User struct {
	Username     string    `json:"username"      db:"username"`
	PasswordHash string    `json:"-"             db:"password"`
	FirstName    string    `json:"first_name"    db:"first_name"`
	LastName     string    `json:"last_name"     db:"last_name"`
	Phone        string    `json:"phone"         db:"phone"`
	JoinAt       time.Time `json:"join_at"       db:"join_at"`
	LastLoginAt  time.Time `json:"last_login_at" db:"last_login_at"`
}

// UserSummary is the reduced user view embedded in message records and
// returned by the user listing. No timestamps, no hash — just enough to
// identify and display the counterpart of a conversation.
type UserSummary struct {
	Username  string `json:"username"   db:"username"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name"  db:"last_name"`
	Phone     string `json:"phone"      db:"phone"`
}

// Summary returns the reduced view of this user.
func (u *User) Summary() UserSummary {
	return UserSummary{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
}
