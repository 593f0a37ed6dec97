package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	httptransport "github.com/example/room-planner/internal/http"
	"github.com/example/room-planner/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := logging.New(cfg.LogLevel, cfg.LogFormat)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := buildComponents(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := app.Close(); cerr != nil {
					logger.Error("failed to release resources", "error", cerr)
				}
			}()

			router := httptransport.NewRouter(httptransport.RouterConfig{
				Auth:          httptransport.NewAuthHandler(app.auth, logger),
				Users:         httptransport.NewUserHandler(app.users, logger),
				Rooms:         httptransport.NewRoomHandler(app.rooms, logger),
				Reservations:  httptransport.NewReservationHandler(app.reservations, logger),
				Authenticator: app.auth,
				Health:        app.store,
				Logger:        logger,
				Middleware:    []mux.MiddlewareFunc{httptransport.RequestLogger(logger)},
			})

			server := &http.Server{
				Addr:              cfg.HTTPAddr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       30 * time.Second,
				WriteTimeout:      30 * time.Second,
				IdleTimeout:       60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("planner API listening", "addr", server.Addr, "store", app.store.Dialect())
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return err
			}
			return <-errCh
		},
	}
}
