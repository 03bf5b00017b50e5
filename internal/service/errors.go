// Package service provides business logic for the application.
package service

import (
	"errors"

	"github.com/tasktrack/tasktrack/internal/auth"
)

// Service errors. The handler layer maps each onto an HTTP status.
var (
	// ErrInvalidInput is wrapped with the offending field.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmailTaken is a signup for an already registered email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrUnauthorized is the identity resolver's rejection.
	ErrUnauthorized = auth.ErrUnauthorized
	// ErrForbidden is reserved for authenticated callers acting outside their scope.
	ErrForbidden = errors.New("forbidden")
	// ErrTodoNotFound is returned for missing and foreign todos alike.
	ErrTodoNotFound = errors.New("todo not found")
	// ErrConflict is reserved for unique violations outside signup.
	ErrConflict = errors.New("conflict")
)
