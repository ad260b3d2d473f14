package mcp

import (
	"context"
	"encoding/json"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolDefinition describes a callable tool.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

func object(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

func enum(description string, values ...string) map[string]any {
	return map[string]any{"type": "string", "description": description, "enum": values}
}

var confirmProp = prop("boolean", "Must be true; deletion cannot be undone")

func labourEntrySchema() map[string]any {
	return object(map[string]any{
		"id":              prop("string", "Entry ID (required for update_labour)"),
		"date":            prop("string", "Work date (YYYY-MM-DD)"),
		"numberOfLabours": prop("integer", "Headcount, at least 1"),
		"dailySalary":     prop("number", "Daily wage per worker"),
		"role":            prop("string", "Worker role"),
		"workDescription": prop("string", "What was done"),
		"overtimeHours":   prop("number", "Overtime hours"),
	}, "date", "numberOfLabours", "dailySalary")
}

func materialEntrySchema() map[string]any {
	return object(map[string]any{
		"id":             prop("string", "Entry ID (required for update_material)"),
		"materialName":   prop("string", "Material name"),
		"cost":           prop("number", "Unit cost"),
		"quantity":       prop("number", "Quantity purchased, greater than 0"),
		"dateOfPurchase": prop("string", "Purchase date (YYYY-MM-DD)"),
		"supplier":       prop("string", "Supplier"),
		"category":       prop("string", "Material category"),
		"unit":           prop("string", "Unit of measure"),
		"specifications": prop("string", "Specifications"),
	}, "materialName", "cost", "quantity", "dateOfPurchase")
}

func projectFields() map[string]any {
	return map[string]any{
		"projectName":         prop("string", "Project name"),
		"description":         prop("string", "Description"),
		"state":               prop("string", "Region the project belongs to (see list_states)"),
		"siteEngineer":        prop("string", "Responsible site engineer"),
		"startDate":           prop("string", "Start date (YYYY-MM-DD)"),
		"tentativeCompletion": prop("string", "Target completion date (YYYY-MM-DD)"),
		"projectValue":        prop("number", "Contract value"),
		"status":              enum("Lifecycle status", "active", "completed", "on-hold", "cancelled"),
		"percentageComplete":  prop("number", "Reported completion, 0 to 100"),
	}
}

func buildToolCatalog() []ToolDefinition {
	updateFields := projectFields()
	updateFields["id"] = prop("string", "Project ID")

	return []ToolDefinition{
		{
			Name:        "list_states",
			Description: "List the configured regions and the currently selected one",
			InputSchema: object(map[string]any{}),
		},
		{
			Name:        "select_state",
			Description: "Select a region; returns its overview and projects",
			InputSchema: object(map[string]any{
				"state": prop("string", "Region name"),
			}, "state"),
		},
		{
			Name:        "list_projects",
			Description: "List projects with derived figures. Defaults to the selected region; pass state=all for every region",
			InputSchema: object(map[string]any{
				"state":  prop("string", "Region name or all"),
				"status": enum("Stored status filter", "active", "completed", "on-hold", "cancelled"),
				"search": prop("string", "Case-insensitive match on name, engineer or region"),
				"sortBy": enum("Sort order", "name", "value", "date", "completion"),
			}),
		},
		{
			Name:        "get_project",
			Description: "Get a project with its ledgers and summary",
			InputSchema: object(map[string]any{
				"id":     prop("string", "Project ID"),
				"select": prop("boolean", "Also make it the selected project"),
			}, "id"),
		},
		{
			Name:        "create_project",
			Description: "Create a project. Applied locally at once; sync reports whether the remote store accepted it",
			InputSchema: object(projectFields(), "projectName", "state", "startDate"),
		},
		{
			Name:        "update_project",
			Description: "Edit project fields; omitted fields keep their value",
			InputSchema: object(updateFields, "id"),
		},
		{
			Name:        "delete_project",
			Description: "Delete a project and all its entries",
			InputSchema: object(map[string]any{
				"id":      prop("string", "Project ID"),
				"confirm": confirmProp,
			}, "id", "confirm"),
		},
		{
			Name:        "add_labour",
			Description: "Add a labour entry to a project",
			InputSchema: object(map[string]any{
				"project_id": prop("string", "Project ID"),
				"entry":      labourEntrySchema(),
			}, "project_id", "entry"),
		},
		{
			Name:        "update_labour",
			Description: "Replace a labour entry",
			InputSchema: object(map[string]any{
				"project_id": prop("string", "Project ID"),
				"entry":      labourEntrySchema(),
			}, "project_id", "entry"),
		},
		{
			Name:        "delete_labour",
			Description: "Delete a labour entry",
			InputSchema: object(map[string]any{
				"project_id": prop("string", "Project ID"),
				"id":         prop("string", "Entry ID"),
				"confirm":    confirmProp,
			}, "project_id", "id", "confirm"),
		},
		{
			Name:        "add_material",
			Description: "Add a material entry to a project",
			InputSchema: object(map[string]any{
				"project_id": prop("string", "Project ID"),
				"entry":      materialEntrySchema(),
			}, "project_id", "entry"),
		},
		{
			Name:        "update_material",
			Description: "Replace a material entry",
			InputSchema: object(map[string]any{
				"project_id": prop("string", "Project ID"),
				"entry":      materialEntrySchema(),
			}, "project_id", "entry"),
		},
		{
			Name:        "delete_material",
			Description: "Delete a material entry",
			InputSchema: object(map[string]any{
				"project_id": prop("string", "Project ID"),
				"id":         prop("string", "Entry ID"),
				"confirm":    confirmProp,
			}, "project_id", "id", "confirm"),
		},
		{
			Name:        "project_summary",
			Description: "Costs, budget utilisation, headcount, deadline, schedule progress and breakdowns for one project",
			InputSchema: object(map[string]any{
				"id": prop("string", "Project ID"),
			}, "id"),
		},
		{
			Name:        "dashboard",
			Description: "Totals across all projects, per-region overview and upcoming deadlines",
			InputSchema: object(map[string]any{}),
		},
		{
			Name:        "rollup",
			Description: "Aggregate project count, total value and completion rate by a field",
			InputSchema: object(map[string]any{
				"by": enum("Grouping field", "state", "status", "engineer"),
			}),
		},
		{
			Name:        "upcoming_deadlines",
			Description: "Projects due within the next N days",
			InputSchema: object(map[string]any{
				"window_days": prop("integer", "Window in days (default from config)"),
			}),
		},
		{
			Name:        "export_report",
			Description: "Export projects as a spreadsheet (xlsx, base64) or CSV text",
			InputSchema: object(map[string]any{
				"state":            prop("string", "Region name or all"),
				"dateRange":        enum("Creation window", "currentMonth", "lastMonth", "currentQuarter", "all"),
				"includeLabours":   prop("boolean", "Add a Labours sheet"),
				"includeMaterials": prop("boolean", "Add a Materials sheet"),
				"format":           enum("Output format", "xlsx", "csv"),
			}),
		},
		{
			Name:        "reload",
			Description: "Reload projects from the remote store, falling back to the local cache",
			InputSchema: object(map[string]any{}),
		},
		{
			Name:        "recent_notices",
			Description: "Recent sync and deadline notices, newest first",
			InputSchema: object(map[string]any{
				"limit": prop("integer", "Maximum notices (default 20)"),
			}),
		},
	}
}

// registerTools exposes every catalog entry as an SDK tool backed by the
// handler. Domain errors become tool results with IsError set.
func registerTools(server *sdkmcp.Server, handler *Handler) {
	for _, def := range buildToolCatalog() {
		name := def.Name
		server.AddTool(&sdkmcp.Tool{
			Name:        name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
			var args json.RawMessage
			if req != nil && req.Params != nil {
				args = req.Params.Arguments
			}
			result, err := handler.Handle(ctx, name, args)
			if err != nil {
				return toolResult(AsAPIError(err), true)
			}
			return toolResult(result, false)
		})
	}
}

func toolResult(payload any, isError bool) (*sdkmcp.CallToolResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
		IsError: isError,
	}, nil
}
