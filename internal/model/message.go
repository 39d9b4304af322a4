package model

import "time"

// Message is a directed message between two registered users, as stored.
//
// WHY *time.Time FOR ReadAt?
// read_at is genuinely nullable: a nil pointer means "never read", which is
// different from the zero time. The JSON encoding of nil is `null`, matching
// the wire contract exactly.
type Message struct {
	ID           string     `json:"id"            db:"id"`
	FromUsername string     `json:"from_username" db:"from_username"`
	ToUsername   string     `json:"to_username"   db:"to_username"`
	Body         string     `json:"body"          db:"body"`
	SentAt       time.Time  `json:"sent_at"       db:"sent_at"`
	ReadAt       *time.Time `json:"read_at"       db:"read_at"`
}

// MessageDetail is the full read view of a message: the sender and recipient
// are resolved to their summary profiles at read time, not denormalized into
// the messages table.
type MessageDetail struct {
	ID       string      `json:"id"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sent_at"`
	ReadAt   *time.Time  `json:"read_at"`
	FromUser UserSummary `json:"from_user"`
	ToUser   UserSummary `json:"to_user"`
}

// ReadReceipt is the response to marking a message read.
type ReadReceipt struct {
	ID     string    `json:"id"`
	ReadAt time.Time `json:"read_at"`
}

// SentMessage is one row in a user's outbox: the recipient is resolved to a
// summary profile.
type SentMessage struct {
	ID     string      `json:"id"`
	ToUser UserSummary `json:"to_user"`
	Body   string      `json:"body"`
	SentAt time.Time   `json:"sent_at"`
	ReadAt *time.Time  `json:"read_at"`
}

// ReceivedMessage is one row in a user's inbox: the sender is resolved to a
// summary profile.
type ReceivedMessage struct {
	ID       string      `json:"id"`
	FromUser UserSummary `json:"from_user"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sent_at"`
	ReadAt   *time.Time  `json:"read_at"`
}
