package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/tasktrack/tasktrack/internal/metrics"
	"github.com/tasktrack/tasktrack/internal/model"
	"github.com/tasktrack/tasktrack/internal/repository"
)

// Listing bounds.
const (
	DefaultListLimit = 10
	MaxListLimit     = 100
	maxTitleLength   = 200
)

// TodoStore persists todos. Every lookup is scoped by owner.
type TodoStore interface {
	CreateTodo(ctx context.Context, todo *model.Todo) error
	GetTodo(ctx context.Context, id, userID string) (*model.Todo, error)
	ListTodos(ctx context.Context, filter model.TodoFilter, skip, limit int) ([]*model.Todo, int, error)
	UpdateTodo(ctx context.Context, todo *model.Todo) error
	DeleteTodo(ctx context.Context, id, userID string) error
}

// TodoService handles todo business logic.
type TodoService struct {
	store   TodoStore
	metrics metrics.Recorder
}

// NewTodoService creates a new TodoService.
func NewTodoService(store TodoStore, recorder metrics.Recorder) *TodoService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TodoService{store: store, metrics: recorder}
}

// CreateTodoInput defines input for creating a todo.
type CreateTodoInput struct {
	UserID      string
	Title       string
	Description *string
}

// CreateTodo creates a pending todo owned by the caller.
func (s *TodoService) CreateTodo(ctx context.Context, input CreateTodoInput) (*model.Todo, error) {
	if err := validateTitle(input.Title); err != nil {
		return nil, err
	}

	todo := &model.Todo{
		ID:          ulid.Make().String(),
		Title:       input.Title,
		Description: input.Description,
		Status:      model.TodoStatusPending,
		UserID:      input.UserID,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}

	if err := s.store.CreateTodo(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	s.metrics.IncTodoCreated()
	return todo, nil
}

// ListTodosInput defines input for listing todos.
// Nil Skip and Limit take their defaults.
type ListTodosInput struct {
	UserID string
	Skip   *int
	Limit  *int
	Status *model.TodoStatus
}

// ListTodosOutput is one page of todos.
type ListTodosOutput struct {
	Todos []*model.Todo
	Total int
	Skip  int
	Limit int
}

// ListTodos returns one page of the caller's todos, newest first.
func (s *TodoService) ListTodos(ctx context.Context, input ListTodosInput) (*ListTodosOutput, error) {
	skip, limit := 0, DefaultListLimit
	if input.Skip != nil {
		skip = *input.Skip
	}
	if input.Limit != nil {
		limit = *input.Limit
	}

	if skip < 0 {
		return nil, fmt.Errorf("%w: skip must be non-negative", ErrInvalidInput)
	}
	if limit <= 0 || limit > MaxListLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, MaxListLimit)
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, fmt.Errorf("%w: status must be pending or completed", ErrInvalidInput)
	}

	filter := model.TodoFilter{UserID: input.UserID, Status: input.Status}

	todos, total, err := s.store.ListTodos(ctx, filter, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	return &ListTodosOutput{
		Todos: todos,
		Total: total,
		Skip:  skip,
		Limit: limit,
	}, nil
}

// GetTodo returns one of the caller's todos.
func (s *TodoService) GetTodo(ctx context.Context, id, userID string) (*model.Todo, error) {
	todo, err := s.store.GetTodo(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}
	return todo, nil
}

// UpdateTodoInput defines a partial update. Nil fields are left unchanged.
type UpdateTodoInput struct {
	ID               string
	UserID           string
	Title            *string
	Description      *string
	ClearDescription bool // If true, set description to null
	Status           *model.TodoStatus
}

// UpdateTodo applies a partial update to one of the caller's todos.
func (s *TodoService) UpdateTodo(ctx context.Context, input UpdateTodoInput) (*model.Todo, error) {
	if input.Title != nil {
		if err := validateTitle(*input.Title); err != nil {
			return nil, err
		}
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, fmt.Errorf("%w: status must be pending or completed", ErrInvalidInput)
	}

	todo, err := s.GetTodo(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		todo.Title = *input.Title
	}
	if input.ClearDescription {
		todo.Description = nil
	} else if input.Description != nil {
		todo.Description = input.Description
	}
	if input.Status != nil {
		todo.Status = *input.Status
	}

	if err := s.store.UpdateTodo(ctx, todo); err != nil {
		// Deleted between read and write.
		if errors.Is(err, repository.ErrTodoNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	s.metrics.IncTodoUpdated()
	return todo, nil
}

// DeleteTodo removes one of the caller's todos.
func (s *TodoService) DeleteTodo(ctx context.Context, id, userID string) error {
	if err := s.store.DeleteTodo(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return ErrTodoNotFound
		}
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	s.metrics.IncTodoDeleted()
	return nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return fmt.Errorf("%w: title must be at most %d characters", ErrInvalidInput, maxTitleLength)
	}
	return nil
}
