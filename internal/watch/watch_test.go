package watch

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/rpggio/sitetrack/internal/notify"
	"github.com/stretchr/testify/require"
)

type staticSource []project.Project

func (s staticSource) Snapshot() []project.Project { return s }

var now = time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)

func dueOn(id, date string) project.Project {
	return project.Project{ID: id, Name: id, Status: project.StatusActive, TargetDate: project.MustDate(date).Ptr()}
}

func TestCheck_NotifiesWithinWindow(t *testing.T) {
	rec := notify.NewRecorder(10)
	w := New(staticSource{
		dueOn("soon", "2024-06-18"),
		dueOn("far", "2024-07-30"),
		dueOn("past", "2024-06-01"),
	}, rec, Config{Now: func() time.Time { return now }})

	alerts := w.Check(context.Background())
	require.Len(t, alerts, 1)
	require.Equal(t, "soon", alerts[0].ProjectID)

	notices := rec.Recent(0)
	require.Len(t, notices, 1)
	require.Equal(t, project.NoticeWarning, notices[0].Level)
	require.Equal(t, `Project "soon" deadline is in 3 day(s)`, notices[0].Message)
}

func TestNew_Defaults(t *testing.T) {
	w := New(staticSource{}, notify.NewRecorder(1), Config{})
	require.Equal(t, DefaultInterval, w.interval)
	require.Equal(t, DefaultWindowDays, w.window)
}

func TestRun_ChecksOnStartAndStops(t *testing.T) {
	rec := notify.NewRecorder(100)
	w := New(staticSource{dueOn("soon", "2024-06-18")}, rec, Config{
		Interval: 10 * time.Millisecond,
		Now:      func() time.Time { return now },
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return rec.Total() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
