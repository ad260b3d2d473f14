package mcp

import (
	"time"

	"github.com/rpggio/sitetrack/internal/domain/metrics"
	"github.com/rpggio/sitetrack/internal/domain/project"
)

type SelectStateParams struct {
	State string `json:"state"`
}

type ListProjectsParams struct {
	State  string `json:"state,omitempty"`
	Status string `json:"status,omitempty"`
	Search string `json:"search,omitempty"`
	SortBy string `json:"sortBy,omitempty"`
}

type GetProjectParams struct {
	ID     string `json:"id"`
	Select bool   `json:"select,omitempty"`
}

type CreateProjectParams struct {
	project.Draft
}

// UpdateProjectParams is a partial edit; nil fields keep their value.
type UpdateProjectParams struct {
	ID              string          `json:"id"`
	Name            *string         `json:"projectName,omitempty"`
	Description     *string         `json:"description,omitempty"`
	State           *string         `json:"state,omitempty"`
	Engineer        *string         `json:"siteEngineer,omitempty"`
	StartDate       *project.Date   `json:"startDate,omitempty"`
	TargetDate      *project.Date   `json:"tentativeCompletion,omitempty"`
	Value           *project.Number `json:"projectValue,omitempty"`
	Status          *project.Status `json:"status,omitempty"`
	PercentComplete *float64        `json:"percentageComplete,omitempty"`
}

type DeleteProjectParams struct {
	ID      string `json:"id"`
	Confirm bool   `json:"confirm"`
}

// LabourParams nests the entry; LabourEntry decodes itself and would
// swallow project_id if embedded.
type LabourParams struct {
	ProjectID string              `json:"project_id"`
	Entry     project.LabourEntry `json:"entry"`
}

type MaterialParams struct {
	ProjectID string                `json:"project_id"`
	Entry     project.MaterialEntry `json:"entry"`
}

type DeleteEntryParams struct {
	ProjectID string `json:"project_id"`
	ID        string `json:"id"`
	Confirm   bool   `json:"confirm"`
}

type ProjectSummaryParams struct {
	ID string `json:"id"`
}

type RollupParams struct {
	By string `json:"by"`
}

type UpcomingDeadlinesParams struct {
	WindowDays int `json:"window_days,omitempty"`
}

type ExportReportParams struct {
	State            string `json:"state,omitempty"`
	DateRange        string `json:"dateRange,omitempty"`
	IncludeLabours   bool   `json:"includeLabours"`
	IncludeMaterials bool   `json:"includeMaterials"`
	Format           string `json:"format,omitempty"`
}

type RecentNoticesParams struct {
	Limit int `json:"limit,omitempty"`
}

type StatesResponse struct {
	States   []string `json:"states"`
	Selected string   `json:"selected,omitempty"`
}

type SelectStateResponse struct {
	State    string        `json:"state"`
	Overview metrics.Group `json:"overview"`
	Projects []ProjectRow  `json:"projects"`
}

// ProjectRow is the listing view of a project with its derived figures.
type ProjectRow struct {
	ID                string                 `json:"id"`
	Name              string                 `json:"projectName"`
	State             string                 `json:"state"`
	Engineer          string                 `json:"siteEngineer"`
	Status            project.Status         `json:"status"`
	Classification    metrics.Classification `json:"classification"`
	Value             float64                `json:"projectValue"`
	TotalCost         float64                `json:"totalCost"`
	BudgetUtilization float64                `json:"budgetUtilization"`
	DaysLeft          *int                   `json:"daysLeft,omitempty"`
	CreatedAt         time.Time              `json:"createdAt"`
}

type ProjectDetailResponse struct {
	Project project.Project        `json:"project"`
	Summary metrics.ProjectSummary `json:"summary"`
}

// MutationResponse reports the sync outcome of a write. Warning is set when
// the change was applied in memory but could not be cached on this device.
type MutationResponse struct {
	Project *project.Project   `json:"project,omitempty"`
	Sync    project.SyncStatus `json:"sync"`
	Warning string             `json:"warning,omitempty"`
}

type LabourResponse struct {
	ProjectID string               `json:"project_id"`
	Entry     *project.LabourEntry `json:"entry,omitempty"`
	Sync      project.SyncStatus   `json:"sync"`
	Warning   string               `json:"warning,omitempty"`
}

type MaterialResponse struct {
	ProjectID string                 `json:"project_id"`
	Entry     *project.MaterialEntry `json:"entry,omitempty"`
	Sync      project.SyncStatus     `json:"sync"`
	Warning   string                 `json:"warning,omitempty"`
}

type DeleteResponse struct {
	ID      string             `json:"id"`
	Deleted bool               `json:"deleted"`
	Sync    project.SyncStatus `json:"sync"`
	Warning string             `json:"warning,omitempty"`
}

type DashboardResponse struct {
	Totals   metrics.Totals          `json:"totals"`
	States   []metrics.Group         `json:"states"`
	Upcoming []metrics.DeadlineAlert `json:"upcoming"`
	Selected string                  `json:"selectedState,omitempty"`
}

type RollupResponse struct {
	By     metrics.GroupBy `json:"by"`
	Groups []metrics.Group `json:"groups"`
}

type UpcomingDeadlinesResponse struct {
	WindowDays int                     `json:"window_days"`
	Alerts     []metrics.DeadlineAlert `json:"alerts"`
}

// ExportReportResponse carries the rendered report. Content is CSV text, or
// base64 for xlsx.
type ExportReportResponse struct {
	FileName   string  `json:"fileName"`
	Format     string  `json:"format"`
	MimeType   string  `json:"mimeType"`
	Encoding   string  `json:"encoding"`
	Content    string  `json:"content"`
	Projects   int     `json:"projects"`
	TotalValue float64 `json:"totalValue"`
}

type ReloadResponse struct {
	Source   project.LoadSource `json:"source"`
	Count    int                `json:"count"`
	Diverged []string           `json:"diverged,omitempty"`
	Warning  string             `json:"warning,omitempty"`
}

type RecentNoticesResponse struct {
	Notices []project.Notice `json:"notices"`
	Total   int              `json:"total"`
}
