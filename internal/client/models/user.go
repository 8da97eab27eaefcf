// Package models defines the records kept in the client's local store.
package models

import "time"

// User is a local account. ID is a UUIDv7 and therefore ordered by creation.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
