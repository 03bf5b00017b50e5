// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered account that owns todos.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the resolved caller of an authenticated request.
// It deliberately carries no credential material.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Identity returns the request identity for the user.
func (u *User) Identity() *Identity {
	return &Identity{
		UserID: u.ID,
		Email:  u.Email,
	}
}
