package models

import "time"

// User is a locally managed account for the postgres store driver.
type User struct {
	UserID       string         `db:"user_id"`
	Email        string         `db:"email"`
	Phone        *string        `db:"phone"`
	PasswordHash string         `db:"password_hash"`
	Metadata     map[string]any `db:"metadata"` // Mirrors the provider's user metadata
	CreatedAt    time.Time      `db:"created_at"`
}
