package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"restaurant-directory/internal/data/repository"
	"restaurant-directory/internal/wire"
	"restaurant-directory/pkg/database"
	"restaurant-directory/pkg/storage"
	"restaurant-directory/pkg/telemetry"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var autoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "apply pending migrations before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	shutdownTracing, err := telemetry.Setup(ctx, config.App.Name, config.Telemetry)
	if err != nil {
		logger.Warn("Tracing disabled", zap.Error(err))
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}()

	db, err := database.InitDB(ctx, config.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()
	logger.Info("Database connected successfully")

	if autoMigrate {
		applied, err := database.Migrate(ctx, db)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("Migrations applied", zap.Strings("files", applied))
	}

	store, err := storage.NewLocalStorage(config.Storage, logger)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	repos := repository.NewRepository(db, logger)
	app := wire.Wiring(repos, store, config, logger)

	go cleanSessions(ctx, repos.Session)

	return APIServer(ctx, app.Router)
}

// APIServer serves handler until ctx is cancelled, then drains in-flight
// requests for at most ShutdownTimeout.
func APIServer(ctx context.Context, handler http.Handler) error {
	srv := &http.Server{
		Addr:              ":" + config.App.Port,
		Handler:           handler,
		ReadTimeout:       config.App.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      config.App.WriteTimeout,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.App.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

// cleanSessions purges expired sessions every hour until ctx ends.
func cleanSessions(ctx context.Context, sessions repository.SessionRepository) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := sessions.CleanExpiredSessions(ctx)
			if err != nil {
				logger.Warn("Failed to clean expired sessions", zap.Error(err))
				continue
			}
			logger.Debug("Expired sessions cleaned", zap.Int64("removed", removed))
		}
	}
}
