// Package export turns a filtered project set into a tabular report and
// writes it as a spreadsheet or delimited text.
package export

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/samber/lo"
)

// ErrNothingToExport is returned when the filter leaves no projects.
var ErrNothingToExport = errors.New("no data available to export")

// Range selects projects by creation time.
type Range string

const (
	RangeCurrentMonth   Range = "currentMonth"
	RangeLastMonth      Range = "lastMonth"
	RangeCurrentQuarter Range = "currentQuarter"
	RangeAll            Range = "all"
)

// ParseRange validates a range name. The empty string means currentMonth.
func ParseRange(s string) (Range, error) {
	switch r := Range(strings.TrimSpace(s)); r {
	case "":
		return RangeCurrentMonth, nil
	case RangeCurrentMonth, RangeLastMonth, RangeCurrentQuarter, RangeAll:
		return r, nil
	}
	return "", fmt.Errorf("unknown date range %q", s)
}

// Since returns the earliest creation time kept by r, or the zero time for
// RangeAll.
func (r Range) Since(now time.Time) time.Time {
	switch r {
	case RangeAll:
		return time.Time{}
	case RangeLastMonth:
		return now.AddDate(0, -1, 0)
	case RangeCurrentQuarter:
		return now.AddDate(0, -3, 0)
	default:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	}
}

// Filter selects what goes into a report. An empty State or "all" keeps
// every state.
type Filter struct {
	State            string `json:"state,omitempty"`
	Range            Range  `json:"dateRange,omitempty"`
	IncludeLabours   bool   `json:"includeLabours"`
	IncludeMaterials bool   `json:"includeMaterials"`
}

// Sheet is one named table of a report.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// Report is the tabular export of a project set.
type Report struct {
	GeneratedAt time.Time
	Filter      Filter
	Projects    int
	TotalValue  float64
	Sheets      []Sheet
}

// Sheet returns the sheet with the given name.
func (r Report) Sheet(name string) (Sheet, bool) {
	return lo.Find(r.Sheets, func(s Sheet) bool { return s.Name == name })
}

const (
	SheetProjects  = "Projects"
	SheetLabours   = "Labours"
	SheetMaterials = "Materials"
	SheetSummary   = "Summary"
)

// Select applies the filter to projects.
func Select(projects []project.Project, f Filter, now time.Time) []project.Project {
	since := f.Range.Since(now)
	return lo.Filter(projects, func(p project.Project, _ int) bool {
		if f.State != "" && f.State != "all" && p.State != f.State {
			return false
		}
		return !p.CreatedAt.Before(since)
	})
}

// Build produces the report for the projects kept by f. Labour and material
// sheets are only present when requested and non-empty.
func Build(projects []project.Project, f Filter, now time.Time) (Report, error) {
	if f.Range == "" {
		f.Range = RangeCurrentMonth
	}
	selected := Select(projects, f, now)
	if len(selected) == 0 {
		return Report{}, ErrNothingToExport
	}

	projectsSheet := Sheet{
		Name: SheetProjects,
		Header: []string{
			"Project ID", "Project Name", "Description", "State", "Status", "Site Engineer",
			"Start Date", "Completion Date", "Project Value (₹)", "Total Labour Entries",
			"Total Material Entries", "Created Date",
		},
	}
	labours := Sheet{
		Name: SheetLabours,
		Header: []string{
			"Project ID", "Project Name", "State", "Date", "Role", "Number of Labours",
			"Daily Salary (₹)", "Total Daily Salary (₹)", "Work Description",
		},
	}
	materials := Sheet{
		Name: SheetMaterials,
		Header: []string{
			"Project ID", "Project Name", "State", "Material Name", "Category", "Unit Cost (₹)",
			"Quantity", "Unit", "Total Cost (₹)", "Purchase Date", "Supplier",
		},
	}

	for _, p := range selected {
		completion := "N/A"
		if p.TargetDate != nil && !p.TargetDate.IsZero() {
			completion = p.TargetDate.String()
		}
		status := p.Status
		if status == "" {
			status = project.StatusActive
		}
		projectsSheet.Rows = append(projectsSheet.Rows, []any{
			p.ID, p.Name, p.Description, p.State, string(status), p.Engineer,
			p.StartDate.String(), completion, p.Value, len(p.Labours),
			len(p.Materials), p.CreatedAt.Format("2006-01-02"),
		})
		for _, l := range p.Labours {
			labours.Rows = append(labours.Rows, []any{
				p.ID, p.Name, p.State, l.Date.String(), l.Role, l.Count,
				l.Rate, l.DailyCost(), l.WorkDescription,
			})
		}
		for _, m := range p.Materials {
			materials.Rows = append(materials.Rows, []any{
				p.ID, p.Name, p.State, m.Name, m.Category, m.UnitCost,
				m.Quantity, m.Unit, m.LineCost(), m.PurchaseDate.String(), m.Supplier,
			})
		}
	}

	total := lo.SumBy(selected, func(p project.Project) float64 { return p.Value })
	summary := Sheet{
		Name: SheetSummary,
		Header: []string{
			"Report Generated", "Total Projects", "Total Project Value",
			"Total Labour Entries", "Total Material Entries",
		},
		Rows: [][]any{{
			now.Format("2006-01-02 15:04:05"), len(selected), FormatINR(total),
			len(labours.Rows), len(materials.Rows),
		}},
	}

	r := Report{
		GeneratedAt: now,
		Filter:      f,
		Projects:    len(selected),
		TotalValue:  total,
		Sheets:      []Sheet{projectsSheet},
	}
	if f.IncludeLabours && len(labours.Rows) > 0 {
		r.Sheets = append(r.Sheets, labours)
	}
	if f.IncludeMaterials && len(materials.Rows) > 0 {
		r.Sheets = append(r.Sheets, materials)
	}
	r.Sheets = append(r.Sheets, summary)
	return r, nil
}

// FileName returns "HEC_Export_<range>_<Month>_<Year>.<ext>".
func FileName(f Filter, now time.Time, ext string) string {
	rng := f.Range
	if rng == "" {
		rng = RangeCurrentMonth
	}
	return fmt.Sprintf("HEC_Export_%s_%s_%d.%s", rng, now.Month(), now.Year(), strings.TrimPrefix(ext, "."))
}
