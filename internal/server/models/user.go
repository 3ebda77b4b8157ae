// Package models contains the server's persisted record types.
package models

import "time"

// User is one row of the users table.
//
// PasswordHash always holds a bcrypt hash, never the plaintext. LastLogin has
// date precision and is the zero time when the column is NULL.
type User struct {
	ID           int64
	Role         string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	LastLogin    time.Time
}
