package metrics

import (
	"cmp"
	"slices"
	"time"

	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/samber/lo"
)

// GroupBy names the project field a rollup groups on.
type GroupBy string

const (
	GroupByState    GroupBy = "state"
	GroupByStatus   GroupBy = "status"
	GroupByEngineer GroupBy = "engineer"
)

// Valid reports whether g is a known grouping.
func (g GroupBy) Valid() bool {
	switch g {
	case GroupByState, GroupByStatus, GroupByEngineer:
		return true
	}
	return false
}

// Group is the aggregate for one value of the grouping field.
type Group struct {
	Key            string  `json:"key"`
	Count          int     `json:"count"`
	TotalValue     float64 `json:"totalValue"`
	CompletionRate float64 `json:"completionRate"`
}

// Rollup aggregates projects by the given field. Groups are sorted by key
// and groups with no members are never reported. GroupByStatus groups on the
// derived classification.
func Rollup(projects []project.Project, by GroupBy, now time.Time, policy StatusPolicy) []Group {
	grouped := lo.GroupBy(projects, func(p project.Project) string {
		switch by {
		case GroupByStatus:
			return string(Classify(now, p, policy))
		case GroupByEngineer:
			return p.Engineer
		default:
			return p.State
		}
	})
	out := make([]Group, 0, len(grouped))
	for key, members := range grouped {
		out = append(out, aggregate(key, members, now, policy))
	}
	slices.SortFunc(out, func(a, b Group) int { return cmp.Compare(a.Key, b.Key) })
	return out
}

// StateOverview returns one group per configured state in the given order,
// including states without projects, followed by any other states found in
// projects sorted by name.
func StateOverview(states []string, projects []project.Project, now time.Time, policy StatusPolicy) []Group {
	grouped := lo.GroupBy(projects, func(p project.Project) string { return p.State })
	out := make([]Group, 0, len(states))
	for _, state := range states {
		out = append(out, aggregate(state, grouped[state], now, policy))
		delete(grouped, state)
	}
	extra := lo.Keys(grouped)
	slices.Sort(extra)
	for _, state := range extra {
		out = append(out, aggregate(state, grouped[state], now, policy))
	}
	return out
}

func aggregate(key string, members []project.Project, now time.Time, policy StatusPolicy) Group {
	g := Group{Key: key, Count: len(members)}
	if len(members) == 0 {
		return g
	}
	g.TotalValue = lo.SumBy(members, func(p project.Project) float64 { return p.Value })
	completed := lo.CountBy(members, func(p project.Project) bool {
		return Classify(now, p, policy) == ClassCompleted
	})
	g.CompletionRate = float64(completed) / float64(len(members))
	return g
}

// Totals are dashboard-wide aggregates over the whole project set.
type Totals struct {
	Projects     int     `json:"projects"`
	TotalValue   float64 `json:"totalValue"`
	LabourCost   float64 `json:"labourCost"`
	MaterialCost float64 `json:"materialCost"`
	Active       int     `json:"active"`
	Completed    int     `json:"completed"`
	Delayed      int     `json:"delayed"`
}

// DashboardTotals computes Totals in a single pass.
func DashboardTotals(projects []project.Project, now time.Time, policy StatusPolicy) Totals {
	var t Totals
	for _, p := range projects {
		t.Projects++
		t.TotalValue += p.Value
		t.LabourCost += LabourCost(p)
		t.MaterialCost += MaterialCost(p)
		switch Classify(now, p, policy) {
		case ClassCompleted:
			t.Completed++
		case ClassDelayed:
			t.Delayed++
		default:
			t.Active++
		}
	}
	return t
}
