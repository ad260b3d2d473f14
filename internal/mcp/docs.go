package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `sitetrack tracks construction projects: budget, schedule, labour and material ledgers.

Model:
- Project: name, region (state), site engineer, start/target dates, contract value, status, labour and material entries.
- Labour entry: date, headcount, daily wage. Daily cost = headcount x wage.
- Material entry: name, unit cost, quantity, purchase date. Line cost = cost x quantity.
- Every figure (costs, budget utilisation, days left, schedule progress, rollups) is derived on read, never stored.

Writes are optimistic: they apply locally first, then the remote store is asked to persist.
The "sync" field of a write result is synced, local_only (remote unavailable, kept on this device) or skipped.

Typical flow:
1) list_states, then select_state to focus on one region.
2) list_projects / get_project / project_summary to inspect.
3) create_project, update_project, add_labour, add_material to record work.
4) dashboard, rollup and upcoming_deadlines for the overview; export_report for spreadsheets.
5) recent_notices shows sync outcomes and deadline warnings. reload re-reads the remote store.

Deletes require confirm=true.

Docs:
- sitetrack://docs/index
- sitetrack://docs/metrics
- sitetrack://docs/sync
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "sitetrack://docs/index",
		Name:        "docs_index",
		Title:       "sitetrack docs index",
		Description: "What the tools do and which doc to read next.",
		Content: `# sitetrack docs

## Tools by purpose

- Regions: ` + "`list_states`" + `, ` + "`select_state`" + `
- Projects: ` + "`list_projects`" + `, ` + "`get_project`" + `, ` + "`create_project`" + `, ` + "`update_project`" + `, ` + "`delete_project`" + `
- Ledgers: ` + "`add_labour`" + `, ` + "`update_labour`" + `, ` + "`delete_labour`" + `, ` + "`add_material`" + `, ` + "`update_material`" + `, ` + "`delete_material`" + `
- Figures: ` + "`project_summary`" + `, ` + "`dashboard`" + `, ` + "`rollup`" + `, ` + "`upcoming_deadlines`" + `
- Output: ` + "`export_report`" + `
- Sync: ` + "`reload`" + `, ` + "`recent_notices`" + `

## Read next

- ` + "`sitetrack://docs/metrics`" + ` for how each figure is computed.
- ` + "`sitetrack://docs/sync`" + ` for what local_only means and how reloads behave.
`,
	},
	{
		URI:         "sitetrack://docs/metrics",
		Name:        "docs_metrics",
		Title:       "Derived figures",
		Description: "Formulas behind costs, budget utilisation, deadlines, progress and rollups.",
		Content: `# Derived figures

- labourCost = sum of headcount x daily wage over labour entries.
- materialCost = sum of unit cost x quantity over material entries.
- totalCost = labourCost + materialCost.
- budgetUtilization = totalCost / projectValue x 100, or 0 when the value is 0. It may exceed 100.
- remainingBudget = projectValue - totalCost, may be negative.
- headcount = sum of headcount over labour entries.
- deadline.days = days to the target date rounded up; negative means overdue. deadline.set is false without a target date.
- progress.percent = elapsed share of start..target, rounded and clamped to 0..100.
- classification (stored policy): completed when status is completed, delayed when past target unless cancelled,
  else active. The date policy ignores the stored status: past target means completed.

## Rollups

` + "`rollup`" + ` groups by state, status (derived classification) or engineer. Each group reports count, total value
and completion rate (share of members classified completed, 0 to 1). Groups without members are omitted.
` + "`dashboard`" + ` lists every configured region, including empty ones.
`,
	},
	{
		URI:         "sitetrack://docs/sync",
		Name:        "docs_sync",
		Title:       "Sync behaviour",
		Description: "Optimistic writes, the device cache and remote reloads.",
		Content: `# Sync behaviour

Every write changes the in-memory set first, then asks the remote store to persist it, then rewrites the device cache.

- sync=synced: the remote store accepted the write.
- sync=local_only: the remote store failed. The change stays on this device and a warning notice is recorded.
  There is no automatic retry; the next successful write of the same project, or a reload, reconciles.
- sync=skipped: the target did not exist; nothing was written.
- warning set on a result: the device cache could not be written. The change is still live in memory.

` + "`reload`" + ` replaces the in-memory set with the remote one. If the remote store is unreachable the device cache is used
and source=cache is reported. With the warn conflict policy, ids whose local copy differs from the remote copy are listed
in diverged before being overwritten.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
