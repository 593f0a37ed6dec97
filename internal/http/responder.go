package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/room-planner/internal/application"
	"github.com/example/room-planner/internal/scheduler"
)

var (
	errBadRequestBody = errors.New("request body must be valid JSON")
	errMissingToken   = errors.New("bearer token is required")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, code string, err error) {
	message := http.StatusText(status)
	if err != nil && err.Error() != "" {
		message = err.Error()
	}
	r.writeJSON(ctx, w, status, errorResponse{ErrorCode: code, Message: message})
}

// handleServiceError is the single place service and domain errors become
// HTTP statuses.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	kind := application.ErrorKind(err)
	status, message := statusFor(kind)

	var rej *scheduler.Rejection
	if errors.As(err, &rej) && rej.Reason != "" {
		message = rej.Reason
	}

	resp := errorResponse{ErrorCode: kind, Message: message}
	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		resp.Errors = vErr.FieldErrors
	}
	if status == http.StatusInternalServerError {
		resp.ErrorCode = "internal_error"
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "error", err, "error_kind", kind)
	}

	r.writeJSON(ctx, w, status, resp)
}

func statusFor(kind string) (int, string) {
	switch kind {
	case "validation_error":
		return http.StatusUnprocessableEntity, "input is invalid"
	case "not_found":
		return http.StatusNotFound, "resource not found"
	case "no_slots_configured":
		return http.StatusNotFound, "room has no configured slots"
	case "invalid_slot":
		return http.StatusBadRequest, "slot does not belong to the room"
	case "slot_already_booked":
		return http.StatusConflict, "slot is already booked for that date"
	case "not_found_or_forbidden":
		return http.StatusNotFound, "reservation not found"
	case "unauthorized":
		return http.StatusForbidden, "operation not permitted"
	case "invalid_credentials":
		return http.StatusUnauthorized, "invalid credentials"
	case "email_taken":
		return http.StatusConflict, "email is already registered"
	case "update_failed":
		return http.StatusInternalServerError, "update failed"
	}
	return http.StatusInternalServerError, "internal server error"
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
