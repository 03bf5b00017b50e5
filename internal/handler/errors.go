package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tasktrack/tasktrack/internal/handler/dto"
	"github.com/tasktrack/tasktrack/internal/middleware"
	"github.com/tasktrack/tasktrack/internal/service"
)

// respondError maps service errors to HTTP responses. Anything unmapped is
// logged and reported as a 500 without detail.
func respondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, dto.CodeEmailTaken, "Email already registered")
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, dto.CodeBadRequest, inputMessage(err))
	case errors.Is(err, service.ErrInvalidCredentials):
		middleware.WriteUnauthorized(w, "Incorrect email or password")
	case errors.Is(err, service.ErrUnauthorized):
		middleware.WriteUnauthorized(w, "Could not validate credentials")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, dto.CodeForbidden, "Forbidden")
	case errors.Is(err, service.ErrTodoNotFound):
		writeError(w, http.StatusNotFound, dto.CodeNotFound, "Todo not found")
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, dto.CodeConflict, "Resource already exists")
	default:
		logger.Error("internal_error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, dto.CodeInternal, "Internal server error")
	}
}

// inputMessage strips the sentinel prefix from a validation error,
// leaving the field-level detail.
func inputMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": ")
	if msg == "" {
		return "Invalid input"
	}
	return msg
}

// respondDecodeError reports a request body that could not be parsed.
func respondDecodeError(w http.ResponseWriter, err error) {
	if middleware.IsBodyTooLarge(err) {
		writeError(w, http.StatusRequestEntityTooLarge, dto.CodePayloadTooLarge, "Request body too large")
		return
	}
	writeError(w, http.StatusBadRequest, dto.CodeBadRequest, "Invalid request body")
}
