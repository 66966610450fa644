package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/slatehq/slate/internal/store"
)

// RunSelectTool handles the run_select MCP tool — the read-only query
// gate over the tracker database.
type RunSelectTool struct {
	store        *store.Store
	defaultLimit int64
}

// NewRunSelectTool creates a RunSelectTool. defaultLimit caps result
// sets when the caller provides neither a limit argument nor a LIMIT
// clause; values <= 0 fall back to store.DefaultQueryLimit.
func NewRunSelectTool(s *store.Store, defaultLimit int64) *RunSelectTool {
	if defaultLimit <= 0 {
		defaultLimit = store.DefaultQueryLimit
	}
	return &RunSelectTool{store: s, defaultLimit: defaultLimit}
}

// Definition returns the MCP tool definition for run_select.
func (t *RunSelectTool) Definition() mcp.Tool {
	return mcp.NewTool("run_select",
		mcp.WithDescription(
			"Run a read-only SQL query against the tracker database. Only SELECT statements are "+
				"allowed. A LIMIT clause is appended automatically when the query has none.",
		),
		mcp.WithString("sql",
			mcp.Required(),
			mcp.Description("The SELECT statement to run"),
		),
		mcp.WithObject("params",
			mcp.Description("Named bind parameters referenced as :name in the query"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Row cap applied when the query has no LIMIT clause (default: 100)"),
		),
	)
}

// Handle processes the run_select tool call. Non-SELECT statements are a
// policy violation, never silently downgraded.
func (t *RunSelectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("sql", "")
	if query == "" {
		return mcp.NewToolResultError("'sql' is required"), nil
	}

	rows, err := t.store.RunSelect(query, mapArg(req, "params"), int(intArg(req, "limit", t.defaultLimit)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return jsonResult(rows), nil
}

// ─── ListTablesTool ─────────────────────────────────────────────────────────

// ListTablesTool handles the list_tables MCP tool.
type ListTablesTool struct {
	store *store.Store
}

// NewListTablesTool creates a ListTablesTool.
func NewListTablesTool(s *store.Store) *ListTablesTool {
	return &ListTablesTool{store: s}
}

// Definition returns the MCP tool definition for list_tables.
func (t *ListTablesTool) Definition() mcp.Tool {
	return mcp.NewTool("list_tables",
		mcp.WithDescription("List the names of all tables in the tracker database."),
	)
}

// Handle processes the list_tables tool call.
func (t *ListTablesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := t.store.ListTables()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list tables: %v", err)), nil
	}
	if names == nil {
		names = []string{}
	}
	return jsonResult(names), nil
}

// ─── SchemaTool ─────────────────────────────────────────────────────────────

// SchemaTool handles the schema MCP tool.
type SchemaTool struct {
	store *store.Store
}

// NewSchemaTool creates a SchemaTool.
func NewSchemaTool(s *store.Store) *SchemaTool {
	return &SchemaTool{store: s}
}

// Definition returns the MCP tool definition for schema.
func (t *SchemaTool) Definition() mcp.Tool {
	return mcp.NewTool("schema",
		mcp.WithDescription(
			"Describe one table's columns: name, declared type, nullability, default, primary key flag.",
		),
		mcp.WithString("table",
			mcp.Required(),
			mcp.Description("Table name"),
		),
	)
}

// Handle processes the schema tool call.
func (t *SchemaTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table := req.GetString("table", "")
	if table == "" {
		return mcp.NewToolResultError("'table' is required"), nil
	}

	cols, err := t.store.TableInfo(table)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if cols == nil {
		cols = []store.Column{}
	}
	return jsonResult(cols), nil
}
