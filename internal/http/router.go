package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RouterConfig collects the handlers and middleware the router mounts.
type RouterConfig struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Rooms         *RoomHandler
	Reservations  *ReservationHandler
	Authenticator TokenAuthenticator
	Health        HealthChecker
	Logger        *slog.Logger
	Middleware    []mux.MiddlewareFunc
}

// NewRouter builds the API router.
func NewRouter(cfg RouterConfig) *mux.Router {
	logger := defaultLogger(cfg.Logger)
	resp := newResponder(logger)

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		resp.writeError(req.Context(), w, http.StatusNotFound, "route_not_found", nil)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		resp.writeError(req.Context(), w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})
	for _, mw := range cfg.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if cfg.Health != nil {
			if err := cfg.Health.Ping(req.Context()); err != nil {
				logger.WarnContext(req.Context(), "health check failed", "error", err)
				resp.writeError(req.Context(), w, http.StatusServiceUnavailable, "unavailable", nil)
				return
			}
		}
		resp.writeJSON(req.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	protect := func(h http.HandlerFunc) http.Handler {
		if cfg.Authenticator == nil {
			return h
		}
		return RequireToken(cfg.Authenticator, logger)(h)
	}

	if cfg.Users != nil {
		r.HandleFunc("/users", cfg.Users.Register).Methods(http.MethodPost)
		r.Handle("/users/me", protect(cfg.Users.Me)).Methods(http.MethodGet)
	}
	if cfg.Auth != nil {
		r.HandleFunc("/users/login", cfg.Auth.Login).Methods(http.MethodPost)
	}

	if cfg.Rooms != nil {
		r.Handle("/rooms", protect(cfg.Rooms.List)).Methods(http.MethodGet)
		r.Handle("/rooms", protect(cfg.Rooms.Create)).Methods(http.MethodPost)
		r.Handle("/rooms/{roomID}", protect(cfg.Rooms.Get)).Methods(http.MethodGet)
		r.Handle("/rooms/{roomID}/schedules", protect(cfg.Rooms.Schedules)).Methods(http.MethodGet)
		r.Handle("/rooms/{roomID}/schedules", protect(cfg.Rooms.AddSlot)).Methods(http.MethodPost)
		r.Handle("/rooms/{roomID}/availability", protect(cfg.Rooms.Availability)).Methods(http.MethodGet)
	}

	if cfg.Reservations != nil {
		r.Handle("/reservations", protect(cfg.Reservations.List)).Methods(http.MethodGet)
		r.Handle("/reservations", protect(cfg.Reservations.Create)).Methods(http.MethodPost)
		r.Handle("/reservations/{reservationID}", protect(cfg.Reservations.Update)).Methods(http.MethodPut)
		r.Handle("/reservations/{reservationID}", protect(cfg.Reservations.Cancel)).Methods(http.MethodDelete)
	}

	return r
}
