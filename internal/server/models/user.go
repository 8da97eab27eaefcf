// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account. ID is a UUIDv7 so ids sort by creation time.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash []byte
	CreatedAt    time.Time
}
