// Package sqlite implements the user and todo stores on an embedded SQLite
// database. It backs local development and the in-process test suites.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/tasktrack/tasktrack/internal/model"
	"github.com/tasktrack/tasktrack/internal/repository"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT NOT NULL PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS todos (
	id          TEXT NOT NULL PRIMARY KEY,
	title       TEXT NOT NULL CHECK (length(title) BETWEEN 1 AND 200),
	description TEXT,
	status      TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'completed')),
	user_id     TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	created_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_todos_user_created ON todos (user_id, created_at DESC, id DESC);
`

// Store provides user and todo persistence on SQLite.
type Store struct {
	db *sql.DB
}

// Open opens the database at path. ":memory:" creates a private
// in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	memory := path == ":memory:" || strings.Contains(path, "mode=memory")

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if memory {
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	return &Store{db: db}, nil
}

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply sqlite schema: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateUser inserts a new user. A duplicate email yields
// repository.ErrEmailExists.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt.UnixMicro(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.getUser(ctx, `WHERE id = ?`, id)
}

// GetUserByEmail retrieves a user by their email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser(ctx, `WHERE email = ?`, email)
}

func (s *Store) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var (
		user    model.User
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users `+where, arg,
	).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.CreatedAt = time.UnixMicro(created).UTC()
	return &user, nil
}

// UpdatePasswordHash replaces a user's stored password hash.
func (s *Store) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, hash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}
	return requireRow(res, repository.ErrUserNotFound)
}

// CreateTodo inserts a new todo.
func (s *Store) CreateTodo(ctx context.Context, todo *model.Todo) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO todos (id, title, description, status, user_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		todo.ID, todo.Title, nullString(todo.Description), string(todo.Status), todo.UserID, todo.CreatedAt.UnixMicro(),
	)
	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}
	return nil
}

// GetTodo retrieves a todo owned by userID.
func (s *Store) GetTodo(ctx context.Context, id, userID string) (*model.Todo, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, status, user_id, created_at FROM todos WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	todo, err := scanTodo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}
	return todo, nil
}

// ListTodos returns one page of the filter's todos, newest first, and the
// total number of matches.
func (s *Store) ListTodos(ctx context.Context, filter model.TodoFilter, skip, limit int) ([]*model.Todo, int, error) {
	where := ` WHERE user_id = ?`
	args := []any{filter.UserID}
	if filter.Status != nil {
		where += ` AND status = ?`
		args = append(args, string(*filter.Status))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM todos`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count todos: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, status, user_id, created_at FROM todos`+where+
			` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, limit, skip)...,
	)
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
func (s *Store) UpdateTodo(ctx context.Context, todo *model.Todo) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE todos SET title = ?, description = ?, status = ? WHERE id = ? AND user_id = ?`,
		todo.Title, nullString(todo.Description), string(todo.Status), todo.ID, todo.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}
	return requireRow(res, repository.ErrTodoNotFound)
}

// DeleteTodo removes an owned todo.
func (s *Store) DeleteTodo(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return requireRow(res, repository.ErrTodoNotFound)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(row scanner) (*model.Todo, error) {
	var (
		todo        model.Todo
		description sql.NullString
		status      string
		created     int64
	)
	if err := row.Scan(&todo.ID, &todo.Title, &description, &status, &todo.UserID, &created); err != nil {
		return nil, err
	}
	if description.Valid {
		todo.Description = &description.String
	}
	todo.Status = model.TodoStatus(status)
	todo.CreatedAt = time.UnixMicro(created).UTC()
	return &todo, nil
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
