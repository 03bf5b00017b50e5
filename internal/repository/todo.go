package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tasktrack/tasktrack/internal/model"
)

const todoColumns = `id, title, description, status, user_id, created_at`

// CreateTodo inserts a new todo.
func (r *Repository) CreateTodo(ctx context.Context, todo *model.Todo) error {
	query := `
		INSERT INTO todos (id, title, description, status, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		todo.ID,
		todo.Title,
		todo.Description,
		string(todo.Status),
		todo.UserID,
		todo.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}

	return nil
}

// GetTodo retrieves a todo owned by userID.
// A todo owned by someone else is reported as ErrTodoNotFound.
func (r *Repository) GetTodo(ctx context.Context, id, userID string) (*model.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1 AND user_id = $2`

	todo, err := scanTodo(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}

	return todo, nil
}

// ListTodos returns one page of the filter's todos, newest first, and the
// total number of matches.
func (r *Repository) ListTodos(ctx context.Context, filter model.TodoFilter, skip, limit int) ([]*model.Todo, int, error) {
	where := ` WHERE user_id = $1`
	args := []any{filter.UserID}

	if filter.Status != nil {
		where += ` AND status = $2`
		args = append(args, string(*filter.Status))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM todos`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count todos: %w", err)
	}

	query := `SELECT ` + todoColumns + ` FROM todos` + where +
		fmt.Sprintf(` ORDER BY created_at DESC, id DESC OFFSET $%d LIMIT $%d`, len(args)+1, len(args)+2)
	args = append(args, skip, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := make([]*model.Todo, 0, limit)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate todos: %w", err)
	}

	return todos, total, nil
}

// UpdateTodo writes title, description, and status of an owned todo.
func (r *Repository) UpdateTodo(ctx context.Context, todo *model.Todo) error {
	query := `
		UPDATE todos
		SET title = $3, description = $4, status = $5
		WHERE id = $1 AND user_id = $2
	`

	tag, err := r.pool.Exec(ctx, query,
		todo.ID,
		todo.UserID,
		todo.Title,
		todo.Description,
		string(todo.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTodoNotFound
	}

	return nil
}

// DeleteTodo removes an owned todo.
func (r *Repository) DeleteTodo(ctx context.Context, id, userID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTodoNotFound
	}
	return nil
}

func scanTodo(row pgx.Row) (*model.Todo, error) {
	var (
		todo   model.Todo
		status string
	)
	err := row.Scan(
		&todo.ID,
		&todo.Title,
		&todo.Description,
		&status,
		&todo.UserID,
		&todo.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	todo.Status = model.TodoStatus(status)
	return &todo, nil
}
