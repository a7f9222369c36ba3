// Package app wires configuration, logging, storage and the HTTP router
// together for the workoutd commands.
package app

import (
	"alcyxob/workout-tracker/internal/api"
	"alcyxob/workout-tracker/internal/config"
	"alcyxob/workout-tracker/internal/identity"
	"alcyxob/workout-tracker/internal/metrics"
	"alcyxob/workout-tracker/internal/service"
	"alcyxob/workout-tracker/internal/storage"
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// App owns the long-lived resources of one process.
type App struct {
	Config  config.Config
	Log     logrus.FieldLogger
	Metrics *metrics.Metrics
	Store   *Store
}

// New validates cfg, opens the store and, when configured, migrates it.
func New(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	store, err := OpenStore(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	log.WithField("driver", cfg.Database.Driver).Info("database connection established")

	if cfg.Database.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close(ctx)
			return nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info("database schema is up to date")
	}

	return &App{Config: cfg, Log: log, Metrics: metrics.New(), Store: store}, nil
}

// WorkoutService builds the read/merge service over the store.
func (a *App) WorkoutService() service.WorkoutService {
	return service.NewWorkoutService(a.Store.Users, a.Store.Workouts, a.Metrics, a.Log)
}

// Router builds the HTTP handler. It needs valid identity settings.
func (a *App) Router() (*gin.Engine, error) {
	if err := a.Config.ValidateIdentity(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	verifier, err := identity.FromConfig(a.Config.Identity, &http.Client{})
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, verifier, a.WorkoutService(), a.Config.Merge, a.Metrics, a.Log)
	return router, nil
}

// ExportService builds the export service over the configured bucket.
func (a *App) ExportService(ctx context.Context) (service.ExportService, error) {
	archive, err := storage.NewS3Archive(ctx, a.Config.S3, a.Log)
	if err != nil {
		return nil, err
	}
	return service.NewExportService(a.Store.Users, archive, a.Config.S3.Prefix, a.Log), nil
}

// Close releases everything New opened.
func (a *App) Close(ctx context.Context) error {
	return a.Store.Close(ctx)
}
