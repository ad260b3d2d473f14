package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/rpggio/sitetrack/internal/domain/metrics"
	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/rpggio/sitetrack/internal/export"
)

const defaultNoticeLimit = 20

// ProjectStore defines the project operations needed by MCP.
type ProjectStore interface {
	Load(ctx context.Context) (project.LoadResult, error)
	Create(ctx context.Context, d project.Draft) (*project.Project, project.SyncStatus, error)
	Patch(ctx context.Context, id string, edit func(*project.Project) error) (*project.Project, project.SyncStatus, error)
	Delete(ctx context.Context, id string) (project.SyncStatus, error)
	AddLabour(ctx context.Context, projectID string, entry project.LabourEntry) (*project.LabourEntry, project.SyncStatus, error)
	EditLabour(ctx context.Context, projectID string, entry project.LabourEntry) (*project.LabourEntry, project.SyncStatus, error)
	RemoveLabour(ctx context.Context, projectID, entryID string) (project.SyncStatus, error)
	AddMaterial(ctx context.Context, projectID string, entry project.MaterialEntry) (*project.MaterialEntry, project.SyncStatus, error)
	EditMaterial(ctx context.Context, projectID string, entry project.MaterialEntry) (*project.MaterialEntry, project.SyncStatus, error)
	RemoveMaterial(ctx context.Context, projectID, entryID string) (project.SyncStatus, error)
	Snapshot() []project.Project
	Get(id string) (*project.Project, bool)
	Select(id string) (*project.Project, bool)
	SelectState(state string)
	SelectedState() string
	Query(q project.Query) []project.Project
}

// NoticeSource exposes recently delivered notices.
type NoticeSource interface {
	Recent(limit int) []project.Notice
	Total() int
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	States     []string
	WindowDays int
	Logger     *slog.Logger
}

// Handler dispatches MCP commands.
type Handler struct {
	store      ProjectStore
	engine     *metrics.Engine
	notices    NoticeSource
	states     []string
	windowDays int
	logger     *slog.Logger
}

// NewHandler creates a new MCP handler. notices may be nil.
func NewHandler(store ProjectStore, engine *metrics.Engine, notices NoticeSource, opts HandlerOptions) *Handler {
	if engine == nil {
		engine = metrics.NewEngine(metrics.PolicyStoredStatus)
	}
	if opts.WindowDays <= 0 {
		opts.WindowDays = 7
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		store:      store,
		engine:     engine,
		notices:    notices,
		states:     opts.States,
		windowDays: opts.WindowDays,
		logger:     opts.Logger,
	}
}

// Handle dispatches MCP requests to the store and the metrics engine.
func (h *Handler) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case "list_states":
		return StatesResponse{States: h.states, Selected: h.store.SelectedState()}, nil
	case "select_state":
		var req SelectStateParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.checkState(req.State); err != nil {
			return nil, mapError(err)
		}
		h.store.SelectState(req.State)
		members := h.store.Query(project.Query{State: req.State})
		return SelectStateResponse{
			State:    req.State,
			Overview: h.engine.StateOverview([]string{req.State}, members)[0],
			Projects: h.rows(members),
		}, nil
	case "list_projects":
		var req ListProjectsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		q, err := h.listQuery(req)
		if err != nil {
			return nil, mapError(err)
		}
		return h.rows(h.store.Query(q)), nil
	case "get_project":
		var req GetProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		get := h.store.Get
		if req.Select {
			get = h.store.Select
		}
		proj, ok := get(req.ID)
		if !ok {
			return nil, mapError(project.ErrProjectNotFound)
		}
		return ProjectDetailResponse{Project: *proj, Summary: h.engine.Summary(*proj)}, nil
	case "create_project":
		var req CreateProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := project.ValidateDraft(req.Draft, h.states); err != nil {
			return nil, mapError(err)
		}
		proj, sync, err := h.store.Create(ctx, req.Draft)
		warning, err := h.cacheWarning(err)
		if err != nil {
			return nil, err
		}
		return MutationResponse{Project: proj, Sync: sync, Warning: warning}, nil
	case "update_project":
		var req UpdateProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		updated, sync, err := h.store.Patch(ctx, req.ID, func(p *project.Project) error {
			*p = applyPatch(*p, req)
			return project.ValidateProject(*p, h.states)
		})
		warning, err := h.cacheWarning(err)
		if err != nil {
			return nil, err
		}
		return MutationResponse{Project: updated, Sync: sync, Warning: warning}, nil
	case "delete_project":
		var req DeleteProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if !req.Confirm {
			return nil, mapError(fmt.Errorf("%w: deleting a project removes its labour and material entries", ErrConfirmationRequired))
		}
		if _, ok := h.store.Get(req.ID); !ok {
			return nil, mapError(project.ErrProjectNotFound)
		}
		sync, err := h.store.Delete(ctx, req.ID)
		warning, err := h.cacheWarning(err)
		if err != nil {
			return nil, err
		}
		return DeleteResponse{ID: req.ID, Deleted: true, Sync: sync, Warning: warning}, nil
	case "add_labour":
		var req LabourParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := project.ValidateLabour(req.Entry); err != nil {
			return nil, mapError(err)
		}
		entry, sync, err := h.store.AddLabour(ctx, req.ProjectID, req.Entry)
		warning, err := h.cacheWarning(err)
		if err != nil {
			return nil, err
		}
		return LabourResponse{ProjectID: req.ProjectID, Entry: entry, Sync: sync, Warning: warning}, nil
	case "update_labour":
		var req LabourParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if req.Entry.ID == "" {
			return nil, mapError(invalidParams(errors.New("entry.id required")))
		}
		if err := project.ValidateLabour(req.Entry); err != nil {
			return nil, mapError(err)
		}
		entry, sync, err := h.store.EditLabour(ctx, req.ProjectID, req.Entry)
		warning, err := h.cacheWarning(err)
		if err != nil {
			return nil, err
		}
		return LabourResponse{ProjectID: req.ProjectID, Entry: entry, Sync: sync, Warning: warning}, nil
	case "delete_labour":
		var req DeleteEntryParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if !req.Confirm {
			return nil, mapError(ErrConfirmationRequired)
		}
		sync, err := h.store.RemoveLabour(ctx, req.ProjectID, req.ID)
		warning, err := h.cacheWarning(err)
		if err != nil {
			return nil, err
		}
		return DeleteResponse{ID: req.ID, Deleted: true, Sync: sync, Warning: warning}, nil
	case "add_material":
		var req MaterialParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := project.ValidateMaterial(req.Entry); err != nil {
			return nil, mapError(err)
		}
		entry, sync, err := h.store.AddMaterial(ctx, req.ProjectID, req.Entry)
		warning, err := h.cacheWarning(err)
		if err != nil {
			return nil, err
		}
		return MaterialResponse{ProjectID: req.ProjectID, Entry: entry, Sync: sync, Warning: warning}, nil
	case "update_material":
		var req MaterialParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if req.Entry.ID == "" {
			return nil, mapError(invalidParams(errors.New("entry.id required")))
		}
		if err := project.ValidateMaterial(req.Entry); err != nil {
			return nil, mapError(err)
		}
		entry, sync, err := h.store.EditMaterial(ctx, req.ProjectID, req.Entry)
		warning, err := h.cacheWarning(err)
		if err != nil {
			return nil, err
		}
		return MaterialResponse{ProjectID: req.ProjectID, Entry: entry, Sync: sync, Warning: warning}, nil
	case "delete_material":
		var req DeleteEntryParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if !req.Confirm {
			return nil, mapError(ErrConfirmationRequired)
		}
		sync, err := h.store.RemoveMaterial(ctx, req.ProjectID, req.ID)
		warning, err := h.cacheWarning(err)
		if err != nil {
			return nil, err
		}
		return DeleteResponse{ID: req.ID, Deleted: true, Sync: sync, Warning: warning}, nil
	case "project_summary":
		var req ProjectSummaryParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		proj, ok := h.store.Get(req.ID)
		if !ok {
			return nil, mapError(project.ErrProjectNotFound)
		}
		return h.engine.Summary(*proj), nil
	case "dashboard":
		snapshot := h.store.Snapshot()
		return DashboardResponse{
			Totals:   h.engine.Totals(snapshot),
			States:   h.engine.StateOverview(h.states, snapshot),
			Upcoming: h.engine.UpcomingDeadlines(snapshot, h.windowDays),
			Selected: h.store.SelectedState(),
		}, nil
	case "rollup":
		var req RollupParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		by := metrics.GroupBy(req.By)
		if by == "" {
			by = metrics.GroupByState
		}
		if !by.Valid() {
			return nil, mapError(invalidParams(fmt.Errorf("unknown grouping %q", req.By)))
		}
		return RollupResponse{By: by, Groups: h.engine.Rollup(h.store.Snapshot(), by)}, nil
	case "upcoming_deadlines":
		var req UpcomingDeadlinesParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		window := req.WindowDays
		if window <= 0 {
			window = h.windowDays
		}
		return UpcomingDeadlinesResponse{
			WindowDays: window,
			Alerts:     h.engine.UpcomingDeadlines(h.store.Snapshot(), window),
		}, nil
	case "export_report":
		var req ExportReportParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.exportReport(req)
	case "reload":
		result, err := h.store.Load(ctx)
		warning, err := h.cacheWarning(err)
		if err != nil {
			return nil, err
		}
		return ReloadResponse{Source: result.Source, Count: result.Count, Diverged: result.Diverged, Warning: warning}, nil
	case "recent_notices":
		var req RecentNoticesParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if h.notices == nil {
			return RecentNoticesResponse{Notices: []project.Notice{}}, nil
		}
		limit := req.Limit
		if limit <= 0 {
			limit = defaultNoticeLimit
		}
		return RecentNoticesResponse{Notices: h.notices.Recent(limit), Total: h.notices.Total()}, nil
	default:
		return nil, mapError(fmt.Errorf("%w: %s", ErrUnknownMethod, method))
	}
}

func (h *Handler) exportReport(req ExportReportParams) (any, error) {
	rng, err := export.ParseRange(req.DateRange)
	if err != nil {
		return nil, mapError(invalidParams(err))
	}
	filter := export.Filter{
		State:            req.State,
		Range:            rng,
		IncludeLabours:   req.IncludeLabours,
		IncludeMaterials: req.IncludeMaterials,
	}
	now := h.now()
	report, err := export.Build(h.store.Snapshot(), filter, now)
	if err != nil {
		return nil, mapError(err)
	}

	var buf bytes.Buffer
	resp := ExportReportResponse{Projects: report.Projects, TotalValue: report.TotalValue}
	switch req.Format {
	case "", "xlsx":
		if err := export.WriteXLSX(&buf, report); err != nil {
			return nil, err
		}
		resp.Format = "xlsx"
		resp.MimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		resp.Encoding = "base64"
		resp.Content = base64.StdEncoding.EncodeToString(buf.Bytes())
	case "csv":
		if err := export.WriteCSV(&buf, report); err != nil {
			return nil, err
		}
		resp.Format = "csv"
		resp.MimeType = "text/csv"
		resp.Encoding = "utf-8"
		resp.Content = buf.String()
	default:
		return nil, mapError(invalidParams(fmt.Errorf("unknown format %q", req.Format)))
	}
	resp.FileName = export.FileName(filter, now, resp.Format)
	h.logger.Info("report exported", "file", resp.FileName, "projects", resp.Projects)
	return resp, nil
}

func (h *Handler) listQuery(req ListProjectsParams) (project.Query, error) {
	sortKey, ok := project.ParseSortKey(req.SortBy)
	if !ok {
		return project.Query{}, invalidParams(fmt.Errorf("unknown sort key %q", req.SortBy))
	}
	status := project.Status(req.Status)
	if status != "" && !status.Valid() {
		return project.Query{}, invalidParams(fmt.Errorf("unknown status %q", req.Status))
	}
	state := req.State
	switch state {
	case "":
		state = h.store.SelectedState()
	case "all":
		state = ""
	}
	return project.Query{State: state, Status: status, Text: req.Search, Sort: sortKey}, nil
}

func (h *Handler) checkState(state string) error {
	if state == "" {
		return invalidParams(errors.New("state required"))
	}
	if len(h.states) > 0 && !slices.Contains(h.states, state) {
		return invalidParams(fmt.Errorf("unknown state %q", state))
	}
	return nil
}

func (h *Handler) rows(projects []project.Project) []ProjectRow {
	out := make([]ProjectRow, 0, len(projects))
	for _, p := range projects {
		sum := h.engine.Summary(p)
		row := ProjectRow{
			ID:                p.ID,
			Name:              p.Name,
			State:             p.State,
			Engineer:          p.Engineer,
			Status:            p.Status,
			Classification:    sum.Classification,
			Value:             p.Value,
			TotalCost:         sum.TotalCost,
			BudgetUtilization: sum.BudgetUtilization,
			CreatedAt:         p.CreatedAt,
		}
		if sum.Deadline.Set {
			days := sum.Deadline.Days
			row.DaysLeft = &days
		}
		out = append(out, row)
	}
	return out
}

// cacheWarning turns a local cache failure into a warning: the change is
// already applied in memory.
func (h *Handler) cacheWarning(err error) (string, error) {
	if err == nil {
		return "", nil
	}
	if errors.Is(err, project.ErrLocalCache) {
		h.logger.Warn("local cache write failed", "error", err)
		return err.Error(), nil
	}
	return "", mapError(err)
}

func (h *Handler) now() time.Time {
	if h.engine.Now != nil {
		return h.engine.Now()
	}
	return time.Now()
}

func applyPatch(p project.Project, req UpdateProjectParams) project.Project {
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.State != nil {
		p.State = *req.State
	}
	if req.Engineer != nil {
		p.Engineer = *req.Engineer
	}
	if req.StartDate != nil {
		p.StartDate = *req.StartDate
	}
	if req.TargetDate != nil {
		p.TargetDate = req.TargetDate.Ptr()
	}
	if req.Value != nil {
		p.Value = float64(*req.Value)
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.PercentComplete != nil {
		v := *req.PercentComplete
		p.PercentComplete = &v
	}
	return p
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return mapError(invalidParams(err))
	}
	return nil
}
