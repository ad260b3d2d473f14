package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rpggio/sitetrack/internal/config"
	"github.com/rpggio/sitetrack/internal/domain/metrics"
	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/rpggio/sitetrack/internal/mcp"
	"github.com/rpggio/sitetrack/internal/notify"
	"github.com/rpggio/sitetrack/internal/remote"
	"github.com/rpggio/sitetrack/internal/sqlite"
)

const noticeBufferSize = 100

// App holds the shared dependencies of every command.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Store    *project.Store
	Cache    *sqlite.ProjectCache
	Engine   *metrics.Engine
	Recorder *notify.Recorder
	Notifier project.Notifier
	Handler  *mcp.Handler

	closers []func()
}

// NewApp opens the local cache and the remote store and builds the project
// store on top of them. The store is not loaded yet.
func NewApp(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	policy, err := metrics.ParseStatusPolicy(cfg.Metrics.StatusPolicy)
	if err != nil {
		return nil, err
	}
	conflicts, err := project.ParseConflictPolicy(cfg.Sync.ConflictPolicy)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Logger: logger}

	db, err := sqlite.Open(cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local cache: %w", err)
	}
	app.closers = append(app.closers, func() { _ = db.Close() })

	cache := sqlite.NewProjectCache(db, cfg.Cache.Key)
	app.Cache = cache

	rs, closeRemote, err := remote.Open(cfg.Remote, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to open remote store: %w", err)
	}
	app.closers = append(app.closers, closeRemote)

	// The in-process store starts empty each run; seed it from the cache so a
	// load does not wipe what earlier runs saved.
	if _, ok := rs.(*remote.MemoryStore); ok {
		cached, _, err := cache.Read(context.Background())
		if err != nil {
			logger.Warn("seeding memory store from cache failed", "error", err)
		}
		rs = remote.NewMemoryStore(cached...)
	}

	app.Recorder = notify.NewRecorder(noticeBufferSize)
	app.Notifier = notify.Multi{notify.NewLog(logger), app.Recorder}
	app.Engine = metrics.NewEngine(policy)
	app.Store = project.NewStore(rs, cache,
		project.WithLogger(logger),
		project.WithNotifier(app.Notifier),
		project.WithConflictPolicy(conflicts),
	)
	app.Handler = mcp.NewHandler(app.Store, app.Engine, app.Recorder, mcp.HandlerOptions{
		States:     cfg.States,
		WindowDays: cfg.Deadlines.WindowDays,
		Logger:     logger,
	})
	return app, nil
}

// Load performs the initial load. A local cache write failure is only
// logged; the loaded set is usable without it.
func (a *App) Load(ctx context.Context) project.LoadResult {
	result, err := a.Store.Load(ctx)
	if err != nil {
		a.Logger.Warn("initial load incomplete", "error", err)
	}
	return result
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
