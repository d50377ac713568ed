// Package api wires storage, sync, session and services into one
// application context and exposes the operations a front end calls.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"sticky-wall/internal/config"
	"sticky-wall/internal/logging"
	"sticky-wall/internal/remote"
	"sticky-wall/internal/repository"
	"sticky-wall/internal/schedule"
	"sticky-wall/internal/services"
	"sticky-wall/internal/session"
	"sticky-wall/internal/store"
	"sticky-wall/internal/syncer"
	"sticky-wall/internal/validation"
)

// Options overrides collaborators, mostly for tests.
type Options struct {
	Logger     *slog.Logger
	Clock      schedule.Clock
	IDs        store.IDGenerator
	HTTPClient *http.Client
	Observer   services.Observer
}

// App owns every long-lived component. It is created at startup and torn
// down with Close.
type App struct {
	Config     *config.Config
	Repo       repository.Repository
	Remote     *remote.Client
	Engine     *syncer.Engine
	Pusher     *syncer.Pusher
	Session    *session.Manager
	Store      *store.Store
	Tasks      services.TaskService
	Categories services.CategoryService

	logger *slog.Logger
}

// New opens the configured repository and builds the application.
func New(cfg *config.Config, opts Options) (*App, error) {
	repo, err := config.CreateRepository(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithRepository(cfg, repo, opts), nil
}

// NewWithRepository builds the application over an open repository, which
// the App takes ownership of.
func NewWithRepository(cfg *config.Config, repo repository.Repository, opts Options) *App {
	logger := logging.OrDiscard(opts.Logger)
	clock := opts.Clock
	if clock == nil {
		loc, err := cfg.GetLocation()
		if err != nil {
			logger.Warn("unknown time zone, using local time", "location", cfg.Tasks.Location, "error", err)
			loc = time.Local
		}
		clock = schedule.SystemClock{Location: loc}
	}

	clientOpts := []remote.Option{remote.WithTimeout(cfg.Sync.Timeout), remote.WithLogger(logger)}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, remote.WithHTTPClient(opts.HTTPClient))
	}
	client := remote.NewClient(cfg.Sync.BaseURL, clientOpts...)

	a := &App{
		Config: cfg,
		Repo:   repo,
		Remote: client,
		logger: logging.Component(logger, "app"),
	}

	var cache session.CacheInvalidator
	storeOpts := store.Options{Clock: clock, IDs: opts.IDs, Logger: logger}
	if cfg.Sync.Enabled {
		a.Engine = syncer.NewEngine(client, syncer.Options{CacheTTL: cfg.Sync.CacheTTL, Clock: clock, Logger: logger})
		a.Pusher = syncer.NewPusher(a.Engine, syncer.PusherOptions{
			MaxRetries: cfg.Sync.MaxRetries,
			BaseDelay:  cfg.Sync.RetryBaseDelay,
			Logger:     logger,
		})
		cache = a.Engine
		storeOpts.Remote = a.Engine
		storeOpts.Queue = a.Pusher
	}

	a.Session = session.NewManager(repo, client, cache, logger)
	storeOpts.Identity = a.Session
	a.Store = store.New(repo, storeOpts)

	validator := validation.NewValidatorWithConfig(cfg)
	a.Categories = services.NewCategoryService(repo, a.Store, services.CategoryServiceOptions{
		Validator: validator,
		Defaults:  cfg.Categories.Defaults,
		Clock:     clock,
		Observer:  opts.Observer,
		Logger:    logger,
	})
	a.Tasks = services.NewTaskService(a.Store, a.Categories, schedule.NewClassifier(clock), services.TaskServiceOptions{
		Validator: validator,
		Observer:  opts.Observer,
		Logger:    logger,
	})
	return a
}

// Flush waits for queued pushes to finish.
func (a *App) Flush(ctx context.Context) error {
	if a.Pusher == nil {
		return nil
	}
	return a.Pusher.Flush(ctx)
}

// Close flushes pending pushes, stops the push worker and closes storage.
// A flush that does not finish before ctx ends is abandoned.
func (a *App) Close(ctx context.Context) error {
	if a.Pusher != nil {
		if err := a.Pusher.Flush(ctx); err != nil {
			a.logger.Warn("pending push abandoned", "error", err)
		}
		a.Pusher.Close()
	}
	return a.Repo.Close()
}
