package model

import "time"

// User lifecycle statuses. Accounts are never physically deleted; they are
// flagged with StatusDeleted instead.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusDeleted   = "deleted"
)

// User represents an identity record as stored in the `users` table.
//
// Fields:
//
//	ID            – opaque UUID primary key.
//	Email         – unique, normalized (lower-case) email address.
//	Phone         – unique optional phone number (NULL when absent).
//	PasswordHash  – bcrypt digest; the plaintext is never stored.
//	FullName      – display name.
//	EmailVerified – whether the email has been confirmed.
//	Status        – one of the Status* constants above.
//	LastLoginAt   – timestamp of the most recent successful login (nullable).
//	CreatedAt     – timestamp of creation.
//	UpdatedAt     – timestamp of last update.
type User struct {
	ID            string
	Email         string
	Phone         *string
	PasswordHash  string
	FullName      string
	EmailVerified bool
	Status        string
	LastLoginAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
