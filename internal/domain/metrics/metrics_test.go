package metrics

import (
	"testing"
	"time"

	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func bridge() project.Project {
	return project.Normalize(project.Project{
		ID:        "p1",
		Name:      "Bridge",
		State:     "Delhi",
		StartDate: project.MustDate("2024-01-01"),
		Value:     1000000,
	})
}

func TestProjectCost_Scenario(t *testing.T) {
	p := bridge()
	require.Zero(t, ProjectCost(p))
	require.Equal(t, 1000000.0, RemainingBudget(p))

	p.Labours = append(p.Labours, project.LabourEntry{ID: "l1", Count: 10, Rate: 500})
	require.Equal(t, 5000.0, ProjectCost(p))

	p.Materials = append(p.Materials, project.MaterialEntry{ID: "m1", Quantity: 20, UnitCost: 300})
	require.Equal(t, 11000.0, ProjectCost(p))
	require.Equal(t, LabourCost(p)+MaterialCost(p), ProjectCost(p))
	require.Equal(t, 989000.0, RemainingBudget(p))
	require.InDelta(t, 1.1, BudgetUtilization(p), 1e-9)
}

func TestProjectCost_NilChildren(t *testing.T) {
	p := project.Project{Value: 10}
	require.Zero(t, LabourCost(p))
	require.Zero(t, MaterialCost(p))
	require.Zero(t, Headcount(p))
}

func TestBudgetUtilization_ZeroValue(t *testing.T) {
	p := project.Project{Labours: []project.LabourEntry{{Count: 3, Rate: 100}}}
	require.Zero(t, BudgetUtilization(p))
	require.Equal(t, -300.0, RemainingBudget(p))
}

func TestDaysUntil(t *testing.T) {
	require.Equal(t, NoDeadline, DaysUntil(now, nil))
	require.False(t, DaysUntil(now, &project.Date{}).Set)

	// 2024-06-20T00:00Z is 4.5 days away, rounded up
	d := DaysUntil(now, project.MustDate("2024-06-20").Ptr())
	require.True(t, d.Set)
	require.Equal(t, 5, d.Days)

	d = DaysUntil(now, project.MustDate("2024-06-10").Ptr())
	require.Equal(t, -5, d.Days)
	require.True(t, d.Overdue())

	// earlier today rounds toward zero
	d = DaysUntil(now, project.MustDate("2024-06-15").Ptr())
	require.True(t, d.Set)
	require.Equal(t, 0, d.Days)
	require.False(t, d.Overdue())
}

func TestScheduleProgress(t *testing.T) {
	p := bridge()
	require.False(t, ScheduleProgress(now, p).Set)

	p.StartDate = project.MustDate("2024-06-01")
	p.TargetDate = project.MustDate("2024-07-01").Ptr()
	got := ScheduleProgress(now, p)
	require.True(t, got.Set)
	require.Equal(t, 48.0, got.Percent)

	p.TargetDate = project.MustDate("2024-06-05").Ptr()
	require.Equal(t, 100.0, ScheduleProgress(now, p).Percent)

	p.StartDate = project.MustDate("2024-07-01")
	p.TargetDate = project.MustDate("2024-08-01").Ptr()
	require.Equal(t, 0.0, ScheduleProgress(now, p).Percent)
}

func TestScheduleProgress_TargetEqualsStart(t *testing.T) {
	p := bridge()
	p.StartDate = project.MustDate("2024-06-01")
	p.TargetDate = project.MustDate("2024-06-01").Ptr()
	require.Equal(t, Progress{Percent: 100, Set: true}, ScheduleProgress(now, p))

	p.StartDate = project.MustDate("2024-07-01")
	p.TargetDate = project.MustDate("2024-07-01").Ptr()
	require.Equal(t, Progress{Percent: 0, Set: true}, ScheduleProgress(now, p))
}

func TestClassify(t *testing.T) {
	past := project.MustDate("2024-06-01").Ptr()
	future := project.MustDate("2024-12-01").Ptr()

	cases := []struct {
		name   string
		status project.Status
		target *project.Date
		policy StatusPolicy
		want   Classification
	}{
		{"stored active future", project.StatusActive, future, PolicyStoredStatus, ClassActive},
		{"stored active past", project.StatusActive, past, PolicyStoredStatus, ClassDelayed},
		{"stored completed past", project.StatusCompleted, past, PolicyStoredStatus, ClassCompleted},
		{"stored completed future", project.StatusCompleted, future, PolicyStoredStatus, ClassCompleted},
		{"stored cancelled past", project.StatusCancelled, past, PolicyStoredStatus, ClassActive},
		{"stored no target", project.StatusOnHold, nil, PolicyStoredStatus, ClassActive},
		{"date past", project.StatusActive, past, PolicyDateOnly, ClassCompleted},
		{"date future ignores stored", project.StatusCompleted, future, PolicyDateOnly, ClassActive},
		{"date no target", project.StatusActive, nil, PolicyDateOnly, ClassActive},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := bridge()
			p.Status = tc.status
			p.TargetDate = tc.target
			require.Equal(t, tc.want, Classify(now, p, tc.policy))
		})
	}
}

func TestParseStatusPolicy(t *testing.T) {
	p, err := ParseStatusPolicy("date")
	require.NoError(t, err)
	require.Equal(t, PolicyDateOnly, p)

	p, err = ParseStatusPolicy("")
	require.NoError(t, err)
	require.Equal(t, PolicyStoredStatus, p)

	_, err = ParseStatusPolicy("vibes")
	require.Error(t, err)
}

func TestEngine_UsesClock(t *testing.T) {
	e := &Engine{Now: func() time.Time { return now }, Policy: PolicyDateOnly}
	p := bridge()
	p.TargetDate = project.MustDate("2024-06-01").Ptr()
	require.Equal(t, ClassCompleted, e.Classify(p))
	require.Equal(t, 1, e.Totals([]project.Project{p}).Completed)
	require.Equal(t, ClassCompleted, e.Summary(p).Classification)
}
