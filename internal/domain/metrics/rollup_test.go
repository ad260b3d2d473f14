package metrics

import (
	"testing"

	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/stretchr/testify/require"
)

func projectIn(id, state string, value float64) project.Project {
	return project.Normalize(project.Project{
		ID:        id,
		Name:      "Project " + id,
		State:     state,
		StartDate: project.MustDate("2024-01-01"),
		Value:     value,
	})
}

func TestRollup_Scenario(t *testing.T) {
	projects := []project.Project{
		projectIn("a", "Delhi", 10),
		projectIn("b", "Delhi", 20),
		projectIn("c", "Tamil Nadu", 30),
	}
	groups := Rollup(projects, GroupByState, now, PolicyStoredStatus)
	require.Equal(t, []Group{
		{Key: "Delhi", Count: 2, TotalValue: 30},
		{Key: "Tamil Nadu", Count: 1, TotalValue: 30},
	}, groups)
}

func TestRollup_OrderIndependent(t *testing.T) {
	a := []project.Project{projectIn("a", "Delhi", 10), projectIn("b", "Uttar Pradesh", 5), projectIn("c", "Delhi", 1)}
	b := []project.Project{a[2], a[1], a[0]}
	require.Equal(t, Rollup(a, GroupByState, now, PolicyStoredStatus), Rollup(b, GroupByState, now, PolicyStoredStatus))
}

func TestRollup_CompletionRate(t *testing.T) {
	done := projectIn("a", "Delhi", 10)
	done.Status = project.StatusCompleted
	late := projectIn("b", "Delhi", 10)
	late.TargetDate = project.MustDate("2024-02-01").Ptr()

	groups := Rollup([]project.Project{done, late}, GroupByState, now, PolicyStoredStatus)
	require.Len(t, groups, 1)
	require.Equal(t, 0.5, groups[0].CompletionRate)

	byStatus := Rollup([]project.Project{done, late}, GroupByStatus, now, PolicyStoredStatus)
	require.Equal(t, []string{"completed", "delayed"}, []string{byStatus[0].Key, byStatus[1].Key})
}

func TestRollup_Empty(t *testing.T) {
	require.Empty(t, Rollup(nil, GroupByEngineer, now, PolicyStoredStatus))
}

func TestStateOverview_IncludesEmptyStates(t *testing.T) {
	projects := []project.Project{projectIn("a", "Delhi", 10), projectIn("b", "Kerala", 7)}
	groups := StateOverview([]string{"Tamil Nadu", "Delhi"}, projects, now, PolicyStoredStatus)
	require.Equal(t, []Group{
		{Key: "Tamil Nadu"},
		{Key: "Delhi", Count: 1, TotalValue: 10},
		{Key: "Kerala", Count: 1, TotalValue: 7},
	}, groups)
}

func TestDashboardTotals(t *testing.T) {
	a := projectIn("a", "Delhi", 100)
	a.Labours = []project.LabourEntry{{Count: 2, Rate: 10}}
	b := projectIn("b", "Delhi", 50)
	b.Status = project.StatusCompleted
	b.Materials = []project.MaterialEntry{{UnitCost: 5, Quantity: 3}}
	c := projectIn("c", "Delhi", 0)
	c.TargetDate = project.MustDate("2024-03-01").Ptr()

	got := DashboardTotals([]project.Project{a, b, c}, now, PolicyStoredStatus)
	require.Equal(t, Totals{
		Projects:     3,
		TotalValue:   150,
		LabourCost:   20,
		MaterialCost: 15,
		Active:       1,
		Completed:    1,
		Delayed:      1,
	}, got)
}
