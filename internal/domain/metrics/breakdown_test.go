package metrics

import (
	"testing"

	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/stretchr/testify/require"
)

func TestLabourByRole(t *testing.T) {
	p := bridge()
	p.Labours = []project.LabourEntry{
		{Role: "Mason", Count: 4, Rate: 800},
		{Role: "Helper", Count: 10, Rate: 400},
		{Role: "Mason", Count: 2, Rate: 800},
		{Count: 1, Rate: 0},
	}
	got := LabourByRole(p)
	require.Len(t, got, 3)
	require.Equal(t, "Mason", got[0].Key)
	require.Equal(t, 2, got[0].Entries)
	require.Equal(t, 6.0, got[0].Quantity)
	require.Equal(t, 4800.0, got[0].Cost)
	require.InDelta(t, 54.545, got[0].Share, 0.001)
	require.Equal(t, "Helper", got[1].Key)
	require.Equal(t, "Unknown", got[2].Key)
	require.Zero(t, got[2].Share)
}

func TestMaterialsByCategory(t *testing.T) {
	p := bridge()
	p.Materials = []project.MaterialEntry{
		{Category: "Cement & Concrete", UnitCost: 400, Quantity: 50},
		{UnitCost: 10, Quantity: 100},
	}
	got := MaterialsByCategory(p)
	require.Len(t, got, 2)
	require.Equal(t, "Cement & Concrete", got[0].Key)
	require.InDelta(t, 95.238, got[0].Share, 0.001)
	require.Equal(t, "Uncategorized", got[1].Key)
	require.Equal(t, 1.0, got[1].Quantity)
}

func TestUpcomingDeadlines(t *testing.T) {
	due := func(id, date string, status project.Status) project.Project {
		p := projectIn(id, "Delhi", 1)
		p.Name = id
		p.Status = status
		if date != "" {
			p.TargetDate = project.MustDate(date).Ptr()
		}
		return p
	}
	projects := []project.Project{
		due("later", "2024-06-22", project.StatusActive),   // 7 days
		due("soon", "2024-06-17", project.StatusActive),    // 2 days
		due("too-far", "2024-06-23", project.StatusActive), // 8 days
		due("today", "2024-06-15", project.StatusActive),   // 0 days
		due("overdue", "2024-06-01", project.StatusActive), // negative
		due("done", "2024-06-16", project.StatusCompleted), // skipped
		due("none", "", project.StatusActive),              // no deadline
	}
	got := UpcomingDeadlines(now, projects, 7)
	require.Len(t, got, 2)
	require.Equal(t, "soon", got[0].ProjectID)
	require.Equal(t, 2, got[0].DaysLeft)
	require.Equal(t, "later", got[1].ProjectID)
	require.Equal(t, 7, got[1].DaysLeft)
}

func TestSummary(t *testing.T) {
	p := bridge()
	p.TargetDate = project.MustDate("2024-12-31").Ptr()
	p.Labours = []project.LabourEntry{{Count: 10, Rate: 500, Role: "Mason"}}
	p.Materials = []project.MaterialEntry{{Quantity: 20, UnitCost: 300}}

	s := Summary(now, p, PolicyStoredStatus)
	require.Equal(t, 11000.0, s.TotalCost)
	require.Equal(t, 10, s.Headcount)
	require.Equal(t, 1, s.LabourEntries)
	require.True(t, s.Deadline.Set)
	require.True(t, s.Progress.Set)
	require.Equal(t, ClassActive, s.Classification)
	require.Len(t, s.LabourByRole, 1)
	require.Len(t, s.MaterialsByCat, 1)
}
