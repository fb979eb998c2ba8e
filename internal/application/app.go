// Package application assembles the pipeline service from configuration.
// Both the HTTP server and the command-line tool start here.
package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/ReviewSheet/internal/config"
	"github.com/JonMunkholm/ReviewSheet/internal/core"
	"github.com/JonMunkholm/ReviewSheet/internal/lookup"
	"github.com/JonMunkholm/ReviewSheet/internal/pgload"
	"github.com/JonMunkholm/ReviewSheet/internal/textnorm"
)

// App owns the service and the resources behind it.
type App struct {
	Config  *config.Config
	Service *core.Service

	pool *pgxpool.Pool
}

// New builds the service described by cfg. The database is connected only
// when cfg names one; without it the load stage reports itself skipped.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	years, err := lookup.LoadYearMap(cfg.Pipeline.YearMapFile)
	if err != nil {
		return nil, err
	}
	if cfg.Pipeline.YearMapFile != "" {
		slog.Info("year map loaded", "file", cfg.Pipeline.YearMapFile, "tokens", len(years.Tokens()))
	}

	app := &App{Config: cfg}

	var loader core.TableLoader
	if cfg.Database.Enabled() {
		app.pool, err = pgload.Connect(ctx, cfg.Database.URL, pgload.PoolOptions{
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		})
		if err != nil {
			return nil, err
		}
		slog.Info("connected to database", "name", pgload.DatabaseName(cfg.Database.URL), "schema", cfg.Database.Schema)
		loader = pgload.New(app.pool, cfg.Database.Schema)
	} else {
		slog.Info("no database configured; the load stage will be skipped")
	}

	dirs := core.DirsUnder(cfg.Pipeline.DataDir)
	if err := dirs.Ensure(); err != nil {
		app.Close()
		return nil, fmt.Errorf("prepare data directories: %w", err)
	}

	app.Service = core.NewService(core.Options{
		Dirs:      dirs,
		Stages:    core.DefaultStages(nil, textnorm.New(cfg.Pipeline.ReiwaThreshold), years, loader),
		Retention: cfg.Pipeline.JobRetention,
	})

	slog.Info("pipeline ready",
		"data_dir", cfg.Pipeline.DataDir,
		"stages", len(app.Service.Stages()),
		"reiwa_threshold", cfg.Pipeline.ReiwaThreshold,
	)
	return app, nil
}

// Close releases the database pool, if any.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}
