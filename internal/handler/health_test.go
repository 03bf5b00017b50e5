package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// mockHealthChecker is a mock implementation of HealthChecker for testing.
type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) Ping(ctx context.Context) error {
	return m.err
}

func readyz(t *testing.T, h *HealthHandler) (int, HealthResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	h.Readyz(rec, req)

	var response HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return rec.Code, response
}

func TestHealthHandler_Healthz(t *testing.T) {
	h := NewHealthHandler(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	h.Healthz(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	var response HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Status != "ok" {
		t.Errorf("expected status 'ok', got %s", response.Status)
	}
}

func TestHealthHandler_Readyz(t *testing.T) {
	tests := []struct {
		name       string
		db         HealthChecker
		cache      HealthChecker
		wantCode   int
		wantDB     string
		wantRedis  string
		wantStatus string
	}{
		{
			name:       "all healthy",
			db:         &mockHealthChecker{},
			cache:      &mockHealthChecker{},
			wantCode:   http.StatusOK,
			wantDB:     "ok",
			wantRedis:  "ok",
			wantStatus: "ok",
		},
		{
			name:       "redis not configured",
			db:         &mockHealthChecker{},
			wantCode:   http.StatusOK,
			wantDB:     "ok",
			wantRedis:  "not configured",
			wantStatus: "ok",
		},
		{
			name:       "database down",
			db:         &mockHealthChecker{err: errors.New("connection refused")},
			cache:      &mockHealthChecker{},
			wantCode:   http.StatusServiceUnavailable,
			wantDB:     "unavailable",
			wantRedis:  "ok",
			wantStatus: "unhealthy",
		},
		{
			name:       "redis down",
			db:         &mockHealthChecker{},
			cache:      &mockHealthChecker{err: errors.New("i/o timeout")},
			wantCode:   http.StatusServiceUnavailable,
			wantDB:     "ok",
			wantRedis:  "unavailable",
			wantStatus: "unhealthy",
		},
		{
			name:       "no database",
			wantCode:   http.StatusServiceUnavailable,
			wantDB:     "not configured",
			wantRedis:  "not configured",
			wantStatus: "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, response := readyz(t, NewHealthHandler(tt.db, tt.cache))

			if code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, code)
			}
			if response.Status != tt.wantStatus {
				t.Errorf("expected status %q, got %q", tt.wantStatus, response.Status)
			}
			if response.Checks["database"] != tt.wantDB {
				t.Errorf("database check = %q, want %q", response.Checks["database"], tt.wantDB)
			}
			if response.Checks["redis"] != tt.wantRedis {
				t.Errorf("redis check = %q, want %q", response.Checks["redis"], tt.wantRedis)
			}
		})
	}
}

func TestHealthHandler_ReadyzHidesErrorDetail(t *testing.T) {
	db := &mockHealthChecker{err: errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")}

	_, response := readyz(t, NewHealthHandler(db, nil))

	for name, check := range response.Checks {
		if strings.Contains(check, "10.0.0.5") {
			t.Errorf("%s check leaks infrastructure detail: %q", name, check)
		}
	}
}
