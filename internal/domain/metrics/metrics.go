// Package metrics derives costs, schedule figures and rollups from project
// snapshots. Every function is pure; "now" is always passed in.
package metrics

import (
	"math"
	"time"

	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/samber/lo"
)

// LabourCost is Σ count × rate over the project's labour entries.
func LabourCost(p project.Project) float64 {
	return lo.SumBy(p.Labours, func(l project.LabourEntry) float64 { return l.DailyCost() })
}

// MaterialCost is Σ unit cost × quantity over the project's material entries.
func MaterialCost(p project.Project) float64 {
	return lo.SumBy(p.Materials, func(m project.MaterialEntry) float64 { return m.LineCost() })
}

// ProjectCost is labour cost plus material cost.
func ProjectCost(p project.Project) float64 {
	return LabourCost(p) + MaterialCost(p)
}

// BudgetUtilization is cost as a percentage of the project value. It is 0
// when the value is not positive.
func BudgetUtilization(p project.Project) float64 {
	if p.Value <= 0 {
		return 0
	}
	return ProjectCost(p) / p.Value * 100
}

// RemainingBudget is value minus cost; negative when over budget.
func RemainingBudget(p project.Project) float64 {
	return p.Value - ProjectCost(p)
}

// Headcount is the total number of workers across labour entries.
func Headcount(p project.Project) int {
	return lo.SumBy(p.Labours, func(l project.LabourEntry) int { return l.Count })
}

// Deadline is a day count to a target date. Set is false when the project has
// no target date, which is distinct from a deadline of zero days.
type Deadline struct {
	Days int  `json:"days"`
	Set  bool `json:"set"`
}

// NoDeadline is returned when there is no target date.
var NoDeadline = Deadline{}

// Overdue reports whether the deadline has passed.
func (d Deadline) Overdue() bool {
	return d.Set && d.Days < 0
}

// DaysUntil returns the ceiling-rounded number of days from now to target.
func DaysUntil(now time.Time, target *project.Date) Deadline {
	if target == nil || target.IsZero() {
		return NoDeadline
	}
	days := math.Ceil(target.Sub(now).Hours() / 24)
	return Deadline{Days: int(days), Set: true}
}

// Progress is the elapsed share of the schedule in percent. Set is false when
// the project has no target date.
type Progress struct {
	Percent float64 `json:"percent"`
	Set     bool    `json:"set"`
}

// ScheduleProgress returns the elapsed fraction of the time between the start
// date and the target date, rounded and clamped to [0, 100].
func ScheduleProgress(now time.Time, p project.Project) Progress {
	if p.TargetDate == nil || p.TargetDate.IsZero() || p.StartDate.IsZero() {
		return Progress{}
	}
	total := p.TargetDate.Sub(p.StartDate.Time)
	if total <= 0 {
		if now.Before(p.StartDate.Time) {
			return Progress{Percent: 0, Set: true}
		}
		return Progress{Percent: 100, Set: true}
	}
	elapsed := now.Sub(p.StartDate.Time)
	pct := math.Round(float64(elapsed) / float64(total) * 100)
	return Progress{Percent: project.ClampPercent(pct), Set: true}
}
