package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/slatehq/slate/internal/model"
	"github.com/slatehq/slate/internal/store"
)

// AddTodoTool handles the add_todo MCP tool.
type AddTodoTool struct {
	store *store.Store
}

// NewAddTodoTool creates an AddTodoTool with the given store.
func NewAddTodoTool(s *store.Store) *AddTodoTool {
	return &AddTodoTool{store: s}
}

// Definition returns the MCP tool definition for add_todo.
func (t *AddTodoTool) Definition() mcp.Tool {
	return mcp.NewTool("add_todo",
		mcp.WithDescription(
			"Add a todo (sub-task) to an existing ticket. Returns the id of the created todo.",
		),
		mcp.WithNumber("ticket_id",
			mcp.Required(),
			mcp.Description("Id of the parent ticket"),
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("Todo description (1-1000 characters)"),
		),
		mcp.WithString("status",
			mcp.Description("Status: pending, in-progress, done (default: pending)"),
		),
		mcp.WithString("due_date",
			mcp.Description("Optional due date, ISO 8601 (YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS)"),
		),
	)
}

// Handle processes the add_todo tool call. A ticket_id with no matching
// ticket fails with the storage engine's foreign key error.
func (t *AddTodoTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	todo, err := model.NewTodoCreate(
		intArg(req, "ticket_id", 0),
		req.GetString("description", ""),
		req.GetString("status", ""),
		req.GetString("due_date", ""),
	)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	id, err := t.store.AddTodo(todo)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add todo: %v", err)), nil
	}
	return jsonResult(map[string]int64{"id": id}), nil
}

// ─── ListTodosTool ──────────────────────────────────────────────────────────

// ListTodosTool handles the list_todos MCP tool.
type ListTodosTool struct {
	store *store.Store
}

// NewListTodosTool creates a ListTodosTool.
func NewListTodosTool(s *store.Store) *ListTodosTool {
	return &ListTodosTool{store: s}
}

// Definition returns the MCP tool definition for list_todos.
func (t *ListTodosTool) Definition() mcp.Tool {
	return mcp.NewTool("list_todos",
		mcp.WithDescription("List the todos of a ticket in creation order."),
		mcp.WithNumber("ticket_id",
			mcp.Required(),
			mcp.Description("Id of the parent ticket"),
		),
	)
}

// Handle processes the list_todos tool call. An unknown ticket_id yields
// an empty list.
func (t *ListTodosTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	todos, err := t.store.ListTodos(intArg(req, "ticket_id", 0))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list todos: %v", err)), nil
	}
	if todos == nil {
		todos = []model.TodoResponse{}
	}
	return jsonResult(todos), nil
}

// ─── UpdateTodoStatusTool ───────────────────────────────────────────────────

// UpdateTodoStatusTool handles the update_todo_status MCP tool.
type UpdateTodoStatusTool struct {
	store *store.Store
}

// NewUpdateTodoStatusTool creates an UpdateTodoStatusTool.
func NewUpdateTodoStatusTool(s *store.Store) *UpdateTodoStatusTool {
	return &UpdateTodoStatusTool{store: s}
}

// Definition returns the MCP tool definition for update_todo_status.
func (t *UpdateTodoStatusTool) Definition() mcp.Tool {
	return mcp.NewTool("update_todo_status",
		mcp.WithDescription(
			"Set the status of a todo. Returns true if the todo existed, false otherwise.",
		),
		mcp.WithNumber("todo_id",
			mcp.Required(),
			mcp.Description("Todo id"),
		),
		mcp.WithString("status",
			mcp.Required(),
			mcp.Description("New status: pending, in-progress, done"),
		),
	)
}

// Handle processes the update_todo_status tool call. A missing todo_id is
// a false return, not an error.
func (t *UpdateTodoStatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := model.ParseTodoStatus(req.GetString("status", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	updated, err := t.store.UpdateTodoStatus(intArg(req, "todo_id", 0), status)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update todo: %v", err)), nil
	}
	return jsonResult(updated), nil
}
