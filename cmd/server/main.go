package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/ReviewSheet/internal/application"
	"github.com/JonMunkholm/ReviewSheet/internal/config"
	"github.com/JonMunkholm/ReviewSheet/internal/logging"
	"github.com/JonMunkholm/ReviewSheet/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	switch err := godotenv.Overload(); {
	case errors.Is(err, fs.ErrNotExist):
		slog.Info("no .env file found, using environment variables")
	case err != nil:
		slog.Error("failed to load .env file", "error", err)
		os.Exit(1)
	default:
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	app, err := application.New(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to start pipeline", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	server := web.NewServer(app.Service, cfg.Server)

	// Create cancellable context for background jobs
	bgCtx, cancelBackground := context.WithCancel(context.Background())
	go app.Service.StartRetentionSweeper(bgCtx, cfg.Pipeline.SweepInterval)

	// Graceful shutdown
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelBackground()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		// Running jobs stop at their next safe point.
		if lock := app.Service.LockStatus(); lock.Held {
			slog.Info("cancelling running job", "job_id", lock.Holder)
		}
		if err := app.Service.Shutdown(shutdownCtx); err != nil {
			slog.Warn("jobs did not stop in time", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		cancelBackground()
		os.Exit(1)
	}
	<-stopped
	slog.Info("server stopped")
}
