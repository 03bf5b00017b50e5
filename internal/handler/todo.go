package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tasktrack/tasktrack/internal/auth"
	"github.com/tasktrack/tasktrack/internal/handler/dto"
	"github.com/tasktrack/tasktrack/internal/model"
	"github.com/tasktrack/tasktrack/internal/service"
)

// TodoHandler handles HTTP requests for todo operations.
// Every route runs behind the auth middleware.
type TodoHandler struct {
	svc    *service.TodoService
	logger *slog.Logger
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(svc *service.TodoService, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /todos/.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDecodeError(w, err)
		return
	}

	todo, err := h.svc.CreateTodo(r.Context(), service.CreateTodoInput{
		UserID:      auth.UserIDFromContext(r.Context()),
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	h.logger.Info("todo_created",
		"todo_id", todo.ID,
		"user_id", todo.UserID,
	)

	writeJSON(w, http.StatusCreated, dto.NewTodoResponse(todo))
}

// List handles GET /todos/?skip=&limit=&status=.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	input := service.ListTodosInput{
		UserID: auth.UserIDFromContext(r.Context()),
	}

	var ok bool
	if input.Skip, ok = queryInt(w, query.Get("skip"), "skip"); !ok {
		return
	}
	if input.Limit, ok = queryInt(w, query.Get("limit"), "limit"); !ok {
		return
	}
	if s := query.Get("status"); s != "" {
		status := model.TodoStatus(s)
		input.Status = &status
	}

	result, err := h.svc.ListTodos(r.Context(), input)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	todos := make([]dto.TodoResponse, 0, len(result.Todos))
	for _, todo := range result.Todos {
		todos = append(todos, dto.NewTodoResponse(todo))
	}

	writeJSON(w, http.StatusOK, dto.TodoListResponse{
		Todos: todos,
		Total: result.Total,
		Skip:  result.Skip,
		Limit: result.Limit,
	})
}

// Get handles GET /todos/{id}.
func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	todo, err := h.svc.GetTodo(r.Context(), chi.URLParam(r, "id"), auth.UserIDFromContext(r.Context()))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewTodoResponse(todo))
}

// Update handles PUT /todos/{id}. Only fields present in the body change.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDecodeError(w, err)
		return
	}

	input := service.UpdateTodoInput{
		ID:     chi.URLParam(r, "id"),
		UserID: auth.UserIDFromContext(r.Context()),
	}

	if req.Title.Set {
		if req.Title.Null {
			writeError(w, http.StatusBadRequest, dto.CodeBadRequest, "title cannot be null")
			return
		}
		input.Title = &req.Title.Value
	}
	if req.Description.Set {
		if req.Description.Null {
			input.ClearDescription = true
		} else {
			input.Description = &req.Description.Value
		}
	}
	if req.Status.Set {
		if req.Status.Null {
			writeError(w, http.StatusBadRequest, dto.CodeBadRequest, "status cannot be null")
			return
		}
		status := model.TodoStatus(req.Status.Value)
		input.Status = &status
	}

	todo, err := h.svc.UpdateTodo(r.Context(), input)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	h.logger.Info("todo_updated",
		"todo_id", todo.ID,
		"user_id", todo.UserID,
	)

	writeJSON(w, http.StatusOK, dto.NewTodoResponse(todo))
}

// Delete handles DELETE /todos/{id}.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := auth.UserIDFromContext(r.Context())

	if err := h.svc.DeleteTodo(r.Context(), id, userID); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	h.logger.Info("todo_deleted", "todo_id", id, "user_id", userID)

	w.WriteHeader(http.StatusNoContent)
}

// queryInt parses an optional integer query parameter. On a malformed value
// it writes a 400 and returns ok=false.
func queryInt(w http.ResponseWriter, raw, name string) (value *int, ok bool) {
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, dto.CodeBadRequest, name+" must be an integer")
		return nil, false
	}
	return &n, true
}
