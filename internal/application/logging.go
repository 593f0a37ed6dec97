package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/room-planner/internal/logging"
	"github.com/example/room-planner/internal/scheduler"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// logFailure records a failed operation. Rejections a client can cause are
// logged at WARN, anything else at ERROR.
func logFailure(ctx context.Context, logger *slog.Logger, msg string, err error) {
	kind := ErrorKind(err)
	level := slog.LevelError
	if isExpectedKind(kind) {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, msg, "error", err, "error_kind", kind)
}

func isExpectedKind(kind string) bool {
	switch kind {
	case "not_found", "no_slots_configured", "invalid_slot", "slot_already_booked",
		"not_found_or_forbidden", "validation_error", "unauthorized",
		"invalid_credentials", "email_taken":
		return true
	}
	return false
}

// ErrorKind maps sentinel, domain and validation errors to a stable label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrEmailTaken):
		return "email_taken"
	case errors.Is(err, scheduler.ErrNoSlotsConfigured):
		return "no_slots_configured"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation_error"
	}

	if kind := scheduler.KindOf(err); kind != "" {
		return string(kind)
	}
	return "unexpected"
}
