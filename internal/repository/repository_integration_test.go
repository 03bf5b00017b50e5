//go:build integration

package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tasktrack/tasktrack/internal/model"
	"github.com/tasktrack/tasktrack/internal/testutil"
)

// ============================================================================
// User Repository Integration Tests
// ============================================================================

func TestIntegrationUserRepository_CreateAndGet(t *testing.T) {
	ctx, repo := newTestEnv(t)

	user := testutil.NewTestUser(t)
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	byID, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.Email != user.Email || byID.Name != user.Name || byID.PasswordHash != user.PasswordHash {
		t.Errorf("user mismatch: got %+v, want %+v", byID, user)
	}

	byEmail, err := repo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("ID mismatch: got %q, want %q", byEmail.ID, user.ID)
	}
}

func TestIntegrationUserRepository_DuplicateEmail(t *testing.T) {
	ctx, repo := newTestEnv(t)

	first := testutil.NewTestUser(t)
	second := testutil.NewTestUser(t)
	second.Email = first.Email

	if err := repo.CreateUser(ctx, first); err != nil {
		t.Fatalf("CreateUser (first) failed: %v", err)
	}
	if err := repo.CreateUser(ctx, second); !errors.Is(err, ErrEmailExists) {
		t.Errorf("Expected ErrEmailExists, got: %v", err)
	}
}

func TestIntegrationUserRepository_NotFound(t *testing.T) {
	ctx, repo := newTestEnv(t)

	if _, err := repo.GetUserByID(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got: %v", err)
	}
	if _, err := repo.GetUserByEmail(ctx, "missing@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got: %v", err)
	}
	if err := repo.UpdatePasswordHash(ctx, "missing", "x"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got: %v", err)
	}
}

func TestIntegrationUserRepository_UpdatePasswordHash(t *testing.T) {
	ctx, repo := newTestEnv(t)

	user := testutil.NewTestUser(t)
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := repo.UpdatePasswordHash(ctx, user.ID, "$2a$12$upgraded"); err != nil {
		t.Fatalf("UpdatePasswordHash failed: %v", err)
	}

	got, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if got.PasswordHash != "$2a$12$upgraded" {
		t.Errorf("expected upgraded hash, got %q", got.PasswordHash)
	}
}

// ============================================================================
// Todo Repository Integration Tests
// ============================================================================

func TestIntegrationTodoRepository_CRUD(t *testing.T) {
	ctx, repo := newTestEnv(t)
	owner := createUser(t, ctx, repo)

	todo := testutil.NewTestTodo(t, owner.ID, "write tests")
	desc := "integration"
	todo.Description = &desc

	if err := repo.CreateTodo(ctx, todo); err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}

	got, err := repo.GetTodo(ctx, todo.ID, owner.ID)
	if err != nil {
		t.Fatalf("GetTodo failed: %v", err)
	}
	if got.Title != "write tests" || got.Description == nil || *got.Description != "integration" {
		t.Errorf("unexpected todo: %+v", got)
	}
	if got.Status != model.TodoStatusPending {
		t.Errorf("expected pending, got %s", got.Status)
	}

	got.Status = model.TodoStatusCompleted
	got.Description = nil
	if err := repo.UpdateTodo(ctx, got); err != nil {
		t.Fatalf("UpdateTodo failed: %v", err)
	}

	updated, err := repo.GetTodo(ctx, todo.ID, owner.ID)
	if err != nil {
		t.Fatalf("GetTodo failed: %v", err)
	}
	if updated.Status != model.TodoStatusCompleted || updated.Description != nil {
		t.Errorf("update not applied: %+v", updated)
	}

	if err := repo.DeleteTodo(ctx, todo.ID, owner.ID); err != nil {
		t.Fatalf("DeleteTodo failed: %v", err)
	}
	if _, err := repo.GetTodo(ctx, todo.ID, owner.ID); !errors.Is(err, ErrTodoNotFound) {
		t.Errorf("Expected ErrTodoNotFound after delete, got: %v", err)
	}
}

func TestIntegrationTodoRepository_OwnerScoping(t *testing.T) {
	ctx, repo := newTestEnv(t)
	owner := createUser(t, ctx, repo)
	other := createUser(t, ctx, repo)

	todo := testutil.NewTestTodo(t, owner.ID, "private")
	if err := repo.CreateTodo(ctx, todo); err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}

	if _, err := repo.GetTodo(ctx, todo.ID, other.ID); !errors.Is(err, ErrTodoNotFound) {
		t.Errorf("GetTodo: expected ErrTodoNotFound, got %v", err)
	}

	stolen := *todo
	stolen.UserID = other.ID
	stolen.Title = "hijacked"
	if err := repo.UpdateTodo(ctx, &stolen); !errors.Is(err, ErrTodoNotFound) {
		t.Errorf("UpdateTodo: expected ErrTodoNotFound, got %v", err)
	}

	if err := repo.DeleteTodo(ctx, todo.ID, other.ID); !errors.Is(err, ErrTodoNotFound) {
		t.Errorf("DeleteTodo: expected ErrTodoNotFound, got %v", err)
	}

	got, err := repo.GetTodo(ctx, todo.ID, owner.ID)
	if err != nil {
		t.Fatalf("GetTodo failed: %v", err)
	}
	if got.Title != "private" {
		t.Errorf("todo was modified by another user: %+v", got)
	}
}

func TestIntegrationTodoRepository_ListPagination(t *testing.T) {
	ctx, repo := newTestEnv(t)
	owner := createUser(t, ctx, repo)

	base := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 15; i++ {
		todo := testutil.NewTestTodo(t, owner.ID, fmt.Sprintf("todo %02d", i))
		todo.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if i%3 == 0 {
			todo.Status = model.TodoStatusCompleted
		}
		if err := repo.CreateTodo(ctx, todo); err != nil {
			t.Fatalf("CreateTodo failed: %v", err)
		}
	}

	page, total, err := repo.ListTodos(ctx, model.TodoFilter{UserID: owner.ID}, 0, 10)
	if err != nil {
		t.Fatalf("ListTodos failed: %v", err)
	}
	if total != 15 || len(page) != 10 {
		t.Fatalf("expected 10 of 15, got %d of %d", len(page), total)
	}
	if page[0].Title != "todo 14" {
		t.Errorf("expected newest first, got %q", page[0].Title)
	}

	rest, _, err := repo.ListTodos(ctx, model.TodoFilter{UserID: owner.ID}, 10, 10)
	if err != nil {
		t.Fatalf("ListTodos failed: %v", err)
	}
	if len(rest) != 5 {
		t.Errorf("expected 5 remaining, got %d", len(rest))
	}

	completed := model.TodoStatusCompleted
	done, doneTotal, err := repo.ListTodos(ctx, model.TodoFilter{UserID: owner.ID, Status: &completed}, 0, 100)
	if err != nil {
		t.Fatalf("ListTodos failed: %v", err)
	}
	if doneTotal != 5 || len(done) != 5 {
		t.Errorf("expected 5 completed, got %d (total %d)", len(done), doneTotal)
	}
}

func TestIntegrationTodoRepository_CascadeOnUserDelete(t *testing.T) {
	ctx, repo := newTestEnv(t)
	owner := createUser(t, ctx, repo)

	todo := testutil.NewTestTodo(t, owner.ID, "orphan")
	if err := repo.CreateTodo(ctx, todo); err != nil {
		t.Fatalf("CreateTodo failed: %v", err)
	}

	if _, err := repo.Pool().Exec(ctx, `DELETE FROM users WHERE id = $1`, owner.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	if _, err := repo.GetTodo(ctx, todo.ID, owner.ID); !errors.Is(err, ErrTodoNotFound) {
		t.Errorf("Expected todos to be removed with their owner, got: %v", err)
	}
}

func TestIntegrationTodoRepository_ForeignKey(t *testing.T) {
	ctx, repo := newTestEnv(t)

	todo := testutil.NewTestTodo(t, "no-such-user", "dangling")
	if err := repo.CreateTodo(ctx, todo); err == nil {
		t.Error("expected foreign key violation, got nil")
	}
}

// ============================================================================
// Helpers
// ============================================================================

func createUser(t *testing.T, ctx context.Context, repo *Repository) *model.User {
	t.Helper()
	user := testutil.NewTestUser(t)
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func newTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()

	ctx := context.Background()
	dbURL := testutil.PostgresURL(t)

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, repo
}
