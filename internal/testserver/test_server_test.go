package testserver

import (
	"testing"
	"time"

	"github.com/rpggio/sitetrack/internal/domain/metrics"
	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/rpggio/sitetrack/internal/mcp"
	"github.com/rpggio/sitetrack/internal/transport"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

func TestEndToEnd_ProjectLifecycle(t *testing.T) {
	ts := New(t, now)

	var created mcp.MutationResponse
	require.Nil(t, ts.Call(t, "create_project", map[string]any{
		"projectName":         "Bridge",
		"state":               "Delhi",
		"siteEngineer":        "R. Kumar",
		"startDate":           "2024-06-01",
		"tentativeCompletion": "2024-06-18",
		"projectValue":        1000000,
	}, &created))
	require.Equal(t, project.SyncSynced, created.Sync)
	id := created.Project.ID

	require.Nil(t, ts.Call(t, "add_labour", map[string]any{
		"project_id": id,
		"entry":      map[string]any{"date": "2024-06-10", "numberOfLabours": 10, "dailySalary": 500},
	}, nil))
	require.Nil(t, ts.Call(t, "add_material", map[string]any{
		"project_id": id,
		"entry":      map[string]any{"materialName": "Steel", "cost": 1500, "quantity": 4, "dateOfPurchase": "2024-06-12"},
	}, nil))

	var summary metrics.ProjectSummary
	require.Nil(t, ts.Call(t, "project_summary", map[string]any{"id": id}, &summary))
	require.Equal(t, float64(11000), summary.TotalCost)
	require.Equal(t, 3, summary.Deadline.Days)

	// The remote copy and the cache both carry the ledgers.
	docs, err := ts.Remote.GetAll(t.Context())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Len(t, docs[0].Labours, 1)
	require.Len(t, docs[0].Materials, 1)

	var deadlines mcp.UpcomingDeadlinesResponse
	require.Nil(t, ts.Call(t, "upcoming_deadlines", nil, &deadlines))
	require.Len(t, deadlines.Alerts, 1)

	rpcErr := ts.Call(t, "delete_project", map[string]any{"id": id}, nil)
	require.NotNil(t, rpcErr)
	require.Equal(t, transport.ErrApplication, rpcErr.Code)

	require.Nil(t, ts.Call(t, "delete_project", map[string]any{"id": id, "confirm": true}, nil))
	require.Empty(t, ts.Store.Snapshot())
	require.Equal(t, 0, ts.Remote.Len())
}

func TestEndToEnd_OfflineThenReload(t *testing.T) {
	ts := New(t, now)
	ts.Remote.SetFailing(true)

	var created mcp.MutationResponse
	require.Nil(t, ts.Call(t, "create_project", map[string]any{
		"projectName": "Depot", "state": "Tamil Nadu", "startDate": "2024-06-01",
	}, &created))
	require.Equal(t, project.SyncLocalOnly, created.Sync)

	var reload mcp.ReloadResponse
	require.Nil(t, ts.Call(t, "reload", nil, &reload))
	require.Equal(t, project.SourceCache, reload.Source)
	require.Equal(t, 1, reload.Count)

	var notices mcp.RecentNoticesResponse
	require.Nil(t, ts.Call(t, "recent_notices", map[string]any{"limit": 2}, &notices))
	require.Equal(t, "Using offline data", notices.Notices[0].Message)
	require.Equal(t, "Project saved locally", notices.Notices[1].Message)
}

func TestEndToEnd_InvalidParams(t *testing.T) {
	ts := New(t, now)

	rpcErr := ts.Call(t, "create_project", map[string]any{"state": "Delhi"}, nil)
	require.NotNil(t, rpcErr)
	require.Equal(t, transport.ErrInvalidParams, rpcErr.Code)

	rpcErr = ts.Call(t, "teleport", nil, nil)
	require.NotNil(t, rpcErr)
	require.Equal(t, transport.ErrMethodNotFound, rpcErr.Code)
}
