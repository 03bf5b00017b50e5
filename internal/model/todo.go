// Package model defines domain entities for the application.
package model

import "time"

// TodoStatus represents the lifecycle state of a todo.
type TodoStatus string

const (
	TodoStatusPending   TodoStatus = "pending"
	TodoStatusCompleted TodoStatus = "completed"
)

// IsValid checks if the status is one of the known values.
func (s TodoStatus) IsValid() bool {
	return s == TodoStatusPending || s == TodoStatusCompleted
}

// Todo represents a task owned by a single user.
type Todo struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      TodoStatus `json:"status"`
	UserID      string     `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TodoFilter restricts a todo listing. UserID is mandatory.
type TodoFilter struct {
	UserID string
	Status *TodoStatus
}
