package notify

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/stretchr/testify/require"
)

func notice(msg string) project.Notice {
	return project.Notice{Level: project.NoticeInfo, Message: msg, At: time.Unix(0, 0)}
}

func TestRecorder_RecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	r := NewRecorder(3)
	require.Empty(t, r.Recent(0))

	r.Notify(ctx, notice("one"))
	r.Notify(ctx, notice("two"))
	got := r.Recent(0)
	require.Len(t, got, 2)
	require.Equal(t, "two", got[0].Message)
	require.Equal(t, "one", got[1].Message)
}

func TestRecorder_Wraps(t *testing.T) {
	ctx := context.Background()
	r := NewRecorder(2)
	for _, msg := range []string{"a", "b", "c"} {
		r.Notify(ctx, notice(msg))
	}
	got := r.Recent(10)
	require.Len(t, got, 2)
	require.Equal(t, "c", got[0].Message)
	require.Equal(t, "b", got[1].Message)
	require.Equal(t, 3, r.Total())

	require.Len(t, r.Recent(1), 1)
}

func TestLog_LevelMapping(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	l := NewLog(logger)

	l.Notify(context.Background(), notice("quiet"))
	require.Empty(t, buf.String())

	l.Notify(context.Background(), project.Notice{Level: project.NoticeWarning, Message: "Using offline data"})
	require.Contains(t, buf.String(), "Using offline data")
	require.Contains(t, buf.String(), "level=WARN")
}

func TestMulti(t *testing.T) {
	a, b := NewRecorder(4), NewRecorder(4)
	Multi{a, nil, b}.Notify(context.Background(), notice("hello"))
	require.Equal(t, 1, a.Total())
	require.Equal(t, 1, b.Total())
}
