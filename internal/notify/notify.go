// Package notify delivers user-facing notices about sync outcomes and
// approaching deadlines.
package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rpggio/sitetrack/internal/domain/project"
)

// Log writes notices to a structured logger.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a notifier that logs every notice.
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Log{logger: logger}
}

func (l *Log) Notify(ctx context.Context, n project.Notice) {
	level := slog.LevelInfo
	switch n.Level {
	case project.NoticeWarning:
		level = slog.LevelWarn
	case project.NoticeError:
		level = slog.LevelError
	}
	l.logger.Log(ctx, level, "notice", "level", string(n.Level), "message", n.Message)
}

// Recorder keeps the most recent notices in a ring buffer so clients can
// poll them.
type Recorder struct {
	mu    sync.Mutex
	buf   []project.Notice
	next  int
	full  bool
	total int
}

// NewRecorder creates a recorder holding at most size notices.
func NewRecorder(size int) *Recorder {
	if size < 1 {
		size = 1
	}
	return &Recorder{buf: make([]project.Notice, size)}
}

func (r *Recorder) Notify(_ context.Context, n project.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = n
	r.next = (r.next + 1) % len(r.buf)
	if r.next == 0 {
		r.full = true
	}
	r.total++
}

// Recent returns up to limit notices, newest first. A limit of zero or less
// returns everything held.
func (r *Recorder) Recent(limit int) []project.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()

	held := r.next
	if r.full {
		held = len(r.buf)
	}
	if limit <= 0 || limit > held {
		limit = held
	}
	out := make([]project.Notice, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (r.next - i + len(r.buf)) % len(r.buf)
		out = append(out, r.buf[idx])
	}
	return out
}

// Total returns how many notices were ever recorded.
func (r *Recorder) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// Multi fans a notice out to several notifiers in order.
type Multi []project.Notifier

func (m Multi) Notify(ctx context.Context, n project.Notice) {
	for _, target := range m {
		if target != nil {
			target.Notify(ctx, n)
		}
	}
}
