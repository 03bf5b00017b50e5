package service

import (
	"context"
	"sort"
	"sync"

	"github.com/tasktrack/tasktrack/internal/model"
	"github.com/tasktrack/tasktrack/internal/repository"
)

// memStore is an in-memory UserStore and TodoStore.
type memStore struct {
	mu    sync.Mutex
	users map[string]*model.User
	todos map[string]*model.Todo

	// Injected failures.
	createUserErr error
	updateHashErr error
	listErr       error
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[string]*model.User),
		todos: make(map[string]*model.Todo),
	}
}

func (m *memStore) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createUserErr != nil {
		return m.createUserErr
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memStore) UpdatePasswordHash(_ context.Context, userID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateHashErr != nil {
		return m.updateHashErr
	}
	u, ok := m.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memStore) userCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func (m *memStore) CreateTodo(_ context.Context, todo *model.Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *todo
	m.todos[todo.ID] = &cp
	return nil
}

func (m *memStore) GetTodo(_ context.Context, id, userID string) (*model.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.todos[id]
	if !ok || t.UserID != userID {
		return nil, repository.ErrTodoNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memStore) ListTodos(_ context.Context, filter model.TodoFilter, skip, limit int) ([]*model.Todo, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, 0, m.listErr
	}

	var matched []*model.Todo
	for _, t := range m.todos {
		if t.UserID != filter.UserID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		cp := *t
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if skip >= total {
		return []*model.Todo{}, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return matched[skip:end], total, nil
}

func (m *memStore) UpdateTodo(_ context.Context, todo *model.Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.todos[todo.ID]
	if !ok || t.UserID != todo.UserID {
		return repository.ErrTodoNotFound
	}
	cp := *todo
	m.todos[todo.ID] = &cp
	return nil
}

func (m *memStore) DeleteTodo(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.todos[id]
	if !ok || t.UserID != userID {
		return repository.ErrTodoNotFound
	}
	delete(m.todos, id)
	return nil
}
