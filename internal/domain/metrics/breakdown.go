package metrics

import (
	"cmp"
	"slices"
	"time"

	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/samber/lo"
)

const (
	unknownRole       = "Unknown"
	uncategorizedName = "Uncategorized"
)

// Breakdown is one slice of a project's ledger grouped by role or category.
// Quantity is the headcount for labour and the number of entries for
// materials. Share is the slice's percentage of the ledger's total cost.
type Breakdown struct {
	Key      string  `json:"key"`
	Entries  int     `json:"entries"`
	Quantity float64 `json:"quantity"`
	Cost     float64 `json:"cost"`
	Share    float64 `json:"share"`
}

// LabourByRole groups labour entries by role; entries without a role are
// reported as "Unknown".
func LabourByRole(p project.Project) []Breakdown {
	grouped := lo.GroupBy(p.Labours, func(l project.LabourEntry) string {
		return lo.Ternary(l.Role == "", unknownRole, l.Role)
	})
	total := LabourCost(p)
	out := make([]Breakdown, 0, len(grouped))
	for role, entries := range grouped {
		cost := lo.SumBy(entries, func(l project.LabourEntry) float64 { return l.DailyCost() })
		out = append(out, Breakdown{
			Key:      role,
			Entries:  len(entries),
			Quantity: float64(lo.SumBy(entries, func(l project.LabourEntry) int { return l.Count })),
			Cost:     cost,
			Share:    share(cost, total),
		})
	}
	sortBreakdown(out)
	return out
}

// MaterialsByCategory groups material entries by category; entries without
// one are reported as "Uncategorized".
func MaterialsByCategory(p project.Project) []Breakdown {
	grouped := lo.GroupBy(p.Materials, func(m project.MaterialEntry) string {
		return lo.Ternary(m.Category == "", uncategorizedName, m.Category)
	})
	total := MaterialCost(p)
	out := make([]Breakdown, 0, len(grouped))
	for category, entries := range grouped {
		cost := lo.SumBy(entries, func(m project.MaterialEntry) float64 { return m.LineCost() })
		out = append(out, Breakdown{
			Key:      category,
			Entries:  len(entries),
			Quantity: float64(len(entries)),
			Cost:     cost,
			Share:    share(cost, total),
		})
	}
	sortBreakdown(out)
	return out
}

// highest cost first, then by key
func sortBreakdown(out []Breakdown) {
	slices.SortFunc(out, func(a, b Breakdown) int {
		if c := cmp.Compare(b.Cost, a.Cost); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
}

func share(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return part / total * 100
}

// DeadlineAlert flags a project whose target date is close.
type DeadlineAlert struct {
	ProjectID  string       `json:"projectId"`
	Name       string       `json:"projectName"`
	State      string       `json:"state"`
	Engineer   string       `json:"siteEngineer"`
	TargetDate project.Date `json:"tentativeCompletion"`
	DaysLeft   int          `json:"daysLeft"`
}

// UpcomingDeadlines returns projects due within 1..window days, soonest first.
// Completed and cancelled projects are skipped.
func UpcomingDeadlines(now time.Time, projects []project.Project, window int) []DeadlineAlert {
	var out []DeadlineAlert
	for _, p := range projects {
		if p.Status == project.StatusCompleted || p.Status == project.StatusCancelled {
			continue
		}
		d := DaysUntil(now, p.TargetDate)
		if !d.Set || d.Days <= 0 || d.Days > window {
			continue
		}
		out = append(out, DeadlineAlert{
			ProjectID:  p.ID,
			Name:       p.Name,
			State:      p.State,
			Engineer:   p.Engineer,
			TargetDate: *p.TargetDate,
			DaysLeft:   d.Days,
		})
	}
	slices.SortFunc(out, func(a, b DeadlineAlert) int {
		if c := cmp.Compare(a.DaysLeft, b.DaysLeft); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// ProjectSummary bundles every per-project figure.
type ProjectSummary struct {
	ProjectID         string         `json:"projectId"`
	Name              string         `json:"projectName"`
	Value             float64        `json:"projectValue"`
	LabourCost        float64        `json:"labourCost"`
	MaterialCost      float64        `json:"materialCost"`
	TotalCost         float64        `json:"totalCost"`
	BudgetUtilization float64        `json:"budgetUtilization"`
	RemainingBudget   float64        `json:"remainingBudget"`
	Headcount         int            `json:"headcount"`
	LabourEntries     int            `json:"labourEntries"`
	MaterialEntries   int            `json:"materialEntries"`
	Deadline          Deadline       `json:"deadline"`
	Progress          Progress       `json:"progress"`
	PercentComplete   *float64       `json:"percentageComplete,omitempty"`
	Classification    Classification `json:"classification"`
	LabourByRole      []Breakdown    `json:"labourByRole"`
	MaterialsByCat    []Breakdown    `json:"materialsByCategory"`
}

// Summary computes the ProjectSummary of p at now.
func Summary(now time.Time, p project.Project, policy StatusPolicy) ProjectSummary {
	labour, material := LabourCost(p), MaterialCost(p)
	return ProjectSummary{
		ProjectID:         p.ID,
		Name:              p.Name,
		Value:             p.Value,
		LabourCost:        labour,
		MaterialCost:      material,
		TotalCost:         labour + material,
		BudgetUtilization: BudgetUtilization(p),
		RemainingBudget:   RemainingBudget(p),
		Headcount:         Headcount(p),
		LabourEntries:     len(p.Labours),
		MaterialEntries:   len(p.Materials),
		Deadline:          DaysUntil(now, p.TargetDate),
		Progress:          ScheduleProgress(now, p),
		PercentComplete:   p.PercentComplete,
		Classification:    Classify(now, p, policy),
		LabourByRole:      LabourByRole(p),
		MaterialsByCat:    MaterialsByCategory(p),
	}
}
