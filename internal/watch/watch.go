// Package watch periodically scans the project set for approaching deadlines.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rpggio/sitetrack/internal/domain/metrics"
	"github.com/rpggio/sitetrack/internal/domain/project"
)

const (
	DefaultInterval   = 24 * time.Hour
	DefaultWindowDays = 7
)

// Source supplies the current project snapshot.
type Source interface {
	Snapshot() []project.Project
}

// Config configures a Watcher. Zero values fall back to the defaults.
type Config struct {
	Interval   time.Duration
	WindowDays int
	Now        func() time.Time
	Logger     *slog.Logger
}

// Watcher emits a warning notice for every project due within the window.
type Watcher struct {
	source   Source
	notifier project.Notifier
	interval time.Duration
	window   int
	now      func() time.Time
	logger   *slog.Logger
}

func New(source Source, notifier project.Notifier, cfg Config) *Watcher {
	w := &Watcher{
		source:   source,
		notifier: notifier,
		interval: cfg.Interval,
		window:   cfg.WindowDays,
		now:      cfg.Now,
		logger:   cfg.Logger,
	}
	if w.interval <= 0 {
		w.interval = DefaultInterval
	}
	if w.window <= 0 {
		w.window = DefaultWindowDays
	}
	if w.now == nil {
		w.now = time.Now
	}
	if w.logger == nil {
		w.logger = slog.New(slog.DiscardHandler)
	}
	return w
}

// Check scans the snapshot once and notifies for each upcoming deadline.
func (w *Watcher) Check(ctx context.Context) []metrics.DeadlineAlert {
	now := w.now()
	alerts := metrics.UpcomingDeadlines(now, w.source.Snapshot(), w.window)
	for _, a := range alerts {
		w.notifier.Notify(ctx, project.Notice{
			Level:   project.NoticeWarning,
			Message: fmt.Sprintf("Project %q deadline is in %d day(s)", a.Name, a.DaysLeft),
			At:      now,
		})
	}
	w.logger.Debug("deadline check finished", "alerts", len(alerts))
	return alerts
}

// Run checks immediately and then once per interval until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	w.logger.Info("deadline watcher started", "interval", w.interval, "window_days", w.window)
	w.Check(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("deadline watcher stopped")
			return
		case <-ticker.C:
			w.Check(ctx)
		}
	}
}
