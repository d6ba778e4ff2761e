package models

import "time"

// User is a local account. PasswordHash is a bcrypt hash and is never
// exposed outside the auth package.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}
