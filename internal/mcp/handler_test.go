package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rpggio/sitetrack/internal/domain/metrics"
	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/rpggio/sitetrack/internal/notify"
	"github.com/rpggio/sitetrack/internal/remote"
	"github.com/rpggio/sitetrack/internal/sqlite"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

var testStates = []string{"Tamil Nadu", "Delhi", "Uttar Pradesh"}

type fixture struct {
	handler  *Handler
	store    *project.Store
	remote   *remote.MemoryStore
	recorder *notify.Recorder
}

type brokenCache struct{}

func (brokenCache) Read(context.Context) ([]project.Project, bool, error) { return nil, false, nil }
func (brokenCache) Write(context.Context, []project.Project) error {
	return errors.New("disk full")
}

func newFixture(t *testing.T, cache project.LocalCache) *fixture {
	t.Helper()
	if cache == nil {
		db, err := sqlite.New(":memory:")
		require.NoError(t, err)
		require.NoError(t, db.RunMigrations())
		t.Cleanup(func() { db.Close() })
		cache = sqlite.NewProjectCache(db, "hec-projects")
	}

	n := 0
	rs := remote.NewMemoryStore()
	recorder := notify.NewRecorder(50)
	store := project.NewStore(rs, cache,
		project.WithClock(func() time.Time { return testNow }),
		project.WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
		project.WithNotifier(recorder),
	)
	engine := &metrics.Engine{Now: func() time.Time { return testNow }}
	handler := NewHandler(store, engine, recorder, HandlerOptions{States: testStates, WindowDays: 7})
	return &fixture{handler: handler, store: store, remote: rs, recorder: recorder}
}

func (f *fixture) call(t *testing.T, method string, params any) (any, error) {
	t.Helper()
	var raw json.RawMessage
	switch p := params.(type) {
	case nil:
	case string:
		raw = json.RawMessage(p)
	default:
		data, err := json.Marshal(p)
		require.NoError(t, err)
		raw = data
	}
	return f.handler.Handle(context.Background(), method, raw)
}

func (f *fixture) mustCall(t *testing.T, method string, params any) any {
	t.Helper()
	result, err := f.call(t, method, params)
	require.NoError(t, err)
	return result
}

func (f *fixture) createBridge(t *testing.T) string {
	t.Helper()
	result := f.mustCall(t, "create_project", `{"projectName":"Bridge","state":"Delhi","siteEngineer":"R. Kumar","startDate":"2024-06-01","tentativeCompletion":"2024-06-20","projectValue":"1000000"}`)
	resp := result.(MutationResponse)
	require.NotNil(t, resp.Project)
	return resp.Project.ID
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, code, apiErr.Code)
}

func TestHandler_CreateAndList(t *testing.T) {
	f := newFixture(t, nil)
	id := f.createBridge(t)

	require.Equal(t, 1, f.remote.Len())

	rows := f.mustCall(t, "list_projects", `{"state":"all"}`).([]ProjectRow)
	require.Len(t, rows, 1)
	require.Equal(t, id, rows[0].ID)
	require.Equal(t, float64(1000000), rows[0].Value)
	require.NotNil(t, rows[0].DaysLeft)
	require.Equal(t, 5, *rows[0].DaysLeft)
}

func TestHandler_CreateValidation(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.call(t, "create_project", `{"state":"Delhi","startDate":"2024-06-01"}`)
	requireCode(t, err, CodeInvalidInput)

	_, err = f.call(t, "create_project", `{"projectName":"X","state":"Kerala","startDate":"2024-06-01"}`)
	requireCode(t, err, CodeInvalidInput)

	_, err = f.call(t, "create_project", `{"projectName":`)
	requireCode(t, err, CodeInvalidInput)

	require.Empty(t, f.store.Snapshot())
}

func TestHandler_CreateWhileRemoteDown(t *testing.T) {
	f := newFixture(t, nil)
	f.remote.SetFailing(true)

	resp := f.mustCall(t, "create_project", `{"projectName":"Depot","state":"Delhi","startDate":"2024-06-01"}`).(MutationResponse)
	require.Equal(t, project.SyncLocalOnly, resp.Sync)
	require.Len(t, f.store.Snapshot(), 1)

	notices := f.mustCall(t, "recent_notices", `{"limit":1}`).(RecentNoticesResponse)
	require.Len(t, notices.Notices, 1)
	require.Equal(t, project.NoticeWarning, notices.Notices[0].Level)
	require.Equal(t, "Project saved locally", notices.Notices[0].Message)
}

func TestHandler_CacheFailureIsAWarning(t *testing.T) {
	f := newFixture(t, brokenCache{})

	resp := f.mustCall(t, "create_project", `{"projectName":"Depot","state":"Delhi","startDate":"2024-06-01"}`).(MutationResponse)
	require.Equal(t, project.SyncSynced, resp.Sync)
	require.NotEmpty(t, resp.Warning)
	require.Len(t, f.store.Snapshot(), 1)
}

func TestHandler_UpdateProjectPatch(t *testing.T) {
	f := newFixture(t, nil)
	id := f.createBridge(t)

	resp := f.mustCall(t, "update_project", map[string]any{"id": id, "status": "on-hold"}).(MutationResponse)
	require.Equal(t, project.SyncSynced, resp.Sync)
	require.Equal(t, project.StatusOnHold, resp.Project.Status)
	require.Equal(t, "Bridge", resp.Project.Name)

	_, err := f.call(t, "update_project", map[string]any{"id": id, "projectName": " "})
	requireCode(t, err, CodeInvalidInput)

	_, err = f.call(t, "update_project", map[string]any{"id": "missing", "status": "active"})
	requireCode(t, err, CodeNotFound)
}

func TestHandler_DeleteRequiresConfirm(t *testing.T) {
	f := newFixture(t, nil)
	id := f.createBridge(t)

	_, err := f.call(t, "delete_project", map[string]any{"id": id})
	requireCode(t, err, CodeConfirmationRequired)
	require.Len(t, f.store.Snapshot(), 1)

	resp := f.mustCall(t, "delete_project", map[string]any{"id": id, "confirm": true}).(DeleteResponse)
	require.True(t, resp.Deleted)
	require.Equal(t, 0, f.remote.Len())

	_, err = f.call(t, "get_project", map[string]any{"id": id})
	requireCode(t, err, CodeNotFound)

	_, err = f.call(t, "delete_project", map[string]any{"id": id, "confirm": true})
	requireCode(t, err, CodeNotFound)
}

func TestHandler_LedgersAndSummary(t *testing.T) {
	f := newFixture(t, nil)
	id := f.createBridge(t)

	labour := f.mustCall(t, "add_labour", map[string]any{
		"project_id": id,
		"entry":      map[string]any{"date": "2024-06-10", "numberOfLabours": 10, "dailySalary": 500, "role": "Mason"},
	}).(LabourResponse)
	require.NotEmpty(t, labour.Entry.ID)

	f.mustCall(t, "add_material", map[string]any{
		"project_id": id,
		"entry":      map[string]any{"materialName": "Cement", "cost": "600", "quantity": 10, "dateOfPurchase": "2024-06-11"},
	})

	sum := f.mustCall(t, "project_summary", map[string]any{"id": id}).(metrics.ProjectSummary)
	require.Equal(t, float64(5000), sum.LabourCost)
	require.Equal(t, float64(6000), sum.MaterialCost)
	require.Equal(t, float64(11000), sum.TotalCost)
	require.InDelta(t, 1.1, sum.BudgetUtilization, 1e-9)
	require.Equal(t, 10, sum.Headcount)

	edited := f.mustCall(t, "update_labour", map[string]any{
		"project_id": id,
		"entry":      map[string]any{"id": labour.Entry.ID, "date": "2024-06-10", "numberOfLabours": 4, "dailySalary": 500},
	}).(LabourResponse)
	require.Equal(t, 4, edited.Entry.Count)
	require.Equal(t, testNow, edited.Entry.CreatedAt)
	sum = f.mustCall(t, "project_summary", map[string]any{"id": id}).(metrics.ProjectSummary)
	require.Equal(t, float64(2000), sum.LabourCost)

	_, err := f.call(t, "delete_labour", map[string]any{"project_id": id, "id": labour.Entry.ID})
	requireCode(t, err, CodeConfirmationRequired)

	f.mustCall(t, "delete_labour", map[string]any{"project_id": id, "id": labour.Entry.ID, "confirm": true})
	sum = f.mustCall(t, "project_summary", map[string]any{"id": id}).(metrics.ProjectSummary)
	require.Zero(t, sum.LabourCost)
	require.Zero(t, sum.Headcount)
}

func TestHandler_LedgerErrors(t *testing.T) {
	f := newFixture(t, nil)
	id := f.createBridge(t)

	_, err := f.call(t, "add_labour", map[string]any{
		"project_id": id,
		"entry":      map[string]any{"date": "2024-06-10", "numberOfLabours": 0, "dailySalary": 500},
	})
	requireCode(t, err, CodeInvalidInput)

	_, err = f.call(t, "add_material", map[string]any{
		"project_id": "missing",
		"entry":      map[string]any{"materialName": "Sand", "cost": 1, "quantity": 1, "dateOfPurchase": "2024-06-11"},
	})
	requireCode(t, err, CodeNotFound)

	_, err = f.call(t, "update_material", map[string]any{
		"project_id": id,
		"entry":      map[string]any{"materialName": "Sand", "cost": 1, "quantity": 1, "dateOfPurchase": "2024-06-11"},
	})
	requireCode(t, err, CodeInvalidInput)

	_, err = f.call(t, "delete_material", map[string]any{"project_id": id, "id": "nope", "confirm": true})
	requireCode(t, err, CodeNotFound)
}

func TestHandler_RejectsNonFiniteAndFractionalNumbers(t *testing.T) {
	f := newFixture(t, nil)

	for _, value := range []string{`"NaN"`, `"Inf"`, `"-Infinity"`} {
		_, err := f.call(t, "create_project", `{"projectName":"X","state":"Delhi","startDate":"2024-06-01","projectValue":`+value+`}`)
		requireCode(t, err, CodeInvalidInput)
	}
	require.Empty(t, f.store.Snapshot())

	id := f.createBridge(t)
	_, err := f.call(t, "update_project", `{"id":"`+id+`","projectValue":"NaN"}`)
	requireCode(t, err, CodeInvalidInput)

	_, err = f.call(t, "add_labour", map[string]any{
		"project_id": id,
		"entry":      map[string]any{"date": "2024-06-10", "numberOfLabours": 2.5, "dailySalary": 500},
	})
	requireCode(t, err, CodeInvalidInput)

	_, err = f.call(t, "add_material", map[string]any{
		"project_id": id,
		"entry":      map[string]any{"materialName": "Sand", "cost": "NaN", "quantity": 1, "dateOfPurchase": "2024-06-11"},
	})
	requireCode(t, err, CodeInvalidInput)

	// The snapshot stays encodable, so later writes still reach the remote store.
	_, err = json.Marshal(f.store.Snapshot())
	require.NoError(t, err)
	f.mustCall(t, "create_project", `{"projectName":"Depot","state":"Delhi","startDate":"2024-06-01"}`)
	require.Equal(t, 2, f.remote.Len())
}

func TestHandler_SelectStateScopesListing(t *testing.T) {
	f := newFixture(t, nil)
	f.createBridge(t)
	f.mustCall(t, "create_project", `{"projectName":"Canal","state":"Tamil Nadu","startDate":"2024-06-01","projectValue":500}`)

	sel := f.mustCall(t, "select_state", `{"state":"Tamil Nadu"}`).(SelectStateResponse)
	require.Equal(t, 1, sel.Overview.Count)
	require.Equal(t, float64(500), sel.Overview.TotalValue)
	require.Len(t, sel.Projects, 1)

	rows := f.mustCall(t, "list_projects", nil).([]ProjectRow)
	require.Len(t, rows, 1)
	require.Equal(t, "Canal", rows[0].Name)

	rows = f.mustCall(t, "list_projects", `{"state":"all","sortBy":"value"}`).([]ProjectRow)
	require.Len(t, rows, 2)
	require.Equal(t, "Bridge", rows[0].Name)

	states := f.mustCall(t, "list_states", nil).(StatesResponse)
	require.Equal(t, "Tamil Nadu", states.Selected)

	_, err := f.call(t, "select_state", `{"state":"Kerala"}`)
	requireCode(t, err, CodeInvalidInput)

	_, err = f.call(t, "list_projects", `{"sortBy":"height"}`)
	requireCode(t, err, CodeInvalidInput)
}

func TestHandler_DashboardAndRollup(t *testing.T) {
	f := newFixture(t, nil)
	f.createBridge(t)

	dash := f.mustCall(t, "dashboard", nil).(DashboardResponse)
	require.Equal(t, 1, dash.Totals.Projects)
	require.Len(t, dash.States, len(testStates))
	require.Len(t, dash.Upcoming, 1)
	require.Equal(t, 5, dash.Upcoming[0].DaysLeft)

	roll := f.mustCall(t, "rollup", `{"by":"engineer"}`).(RollupResponse)
	require.Equal(t, metrics.GroupByEngineer, roll.By)
	require.Len(t, roll.Groups, 1)
	require.Equal(t, "R. Kumar", roll.Groups[0].Key)

	_, err := f.call(t, "rollup", `{"by":"colour"}`)
	requireCode(t, err, CodeInvalidInput)

	upcoming := f.mustCall(t, "upcoming_deadlines", `{"window_days":3}`).(UpcomingDeadlinesResponse)
	require.Equal(t, 3, upcoming.WindowDays)
	require.Empty(t, upcoming.Alerts)
}

func TestHandler_ExportReport(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.call(t, "export_report", `{"dateRange":"all"}`)
	requireCode(t, err, CodeNothingToExport)

	f.createBridge(t)

	csv := f.mustCall(t, "export_report", `{"format":"csv"}`).(ExportReportResponse)
	require.Equal(t, "HEC_Export_currentMonth_June_2024.csv", csv.FileName)
	require.Contains(t, csv.Content, "Bridge")
	require.Equal(t, 1, csv.Projects)

	xlsx := f.mustCall(t, "export_report", `{"dateRange":"all","includeLabours":true}`).(ExportReportResponse)
	require.Equal(t, "xlsx", xlsx.Format)
	data, err := base64.StdEncoding.DecodeString(xlsx.Content)
	require.NoError(t, err)
	require.Equal(t, "PK", string(data[:2]))

	_, err = f.call(t, "export_report", `{"dateRange":"lastYear"}`)
	requireCode(t, err, CodeInvalidInput)

	_, err = f.call(t, "export_report", `{"format":"pdf"}`)
	requireCode(t, err, CodeInvalidInput)
}

func TestHandler_Reload(t *testing.T) {
	f := newFixture(t, nil)
	f.createBridge(t)

	resp := f.mustCall(t, "reload", nil).(ReloadResponse)
	require.Equal(t, project.SourceRemote, resp.Source)
	require.Equal(t, 1, resp.Count)

	f.remote.SetFailing(true)
	resp = f.mustCall(t, "reload", nil).(ReloadResponse)
	require.Equal(t, project.SourceCache, resp.Source)
	require.Equal(t, 1, resp.Count)
}

func TestHandler_UnknownMethod(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.call(t, "drop_tables", nil)
	requireCode(t, err, CodeUnknownMethod)
}

func TestToolCatalogMatchesDispatch(t *testing.T) {
	f := newFixture(t, nil)
	seen := map[string]bool{}
	for _, tool := range buildToolCatalog() {
		require.False(t, seen[tool.Name], "duplicate tool %s", tool.Name)
		seen[tool.Name] = true
		require.Equal(t, "object", tool.InputSchema["type"])

		_, err := f.call(t, tool.Name, `{}`)
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			require.NotEqual(t, CodeUnknownMethod, apiErr.Code, tool.Name)
		}
	}
	require.Len(t, seen, 20)
}

func TestMapError(t *testing.T) {
	require.Nil(t, MapError(nil))
	require.Nil(t, MapError(errors.New("boom")))
	require.Equal(t, CodeInternal, AsAPIError(errors.New("boom")).Code)
	require.Equal(t, CodeNotFound, MapError(fmt.Errorf("wrap: %w", project.ErrEntryNotFound)).Code)
}
