package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/slatehq/slate/internal/model"
	"github.com/slatehq/slate/internal/store"
)

// AddTicketTool handles the add_ticket MCP tool.
type AddTicketTool struct {
	store *store.Store
}

// NewAddTicketTool creates an AddTicketTool with the given store.
func NewAddTicketTool(s *store.Store) *AddTicketTool {
	return &AddTicketTool{store: s}
}

// Definition returns the MCP tool definition for add_ticket.
func (t *AddTicketTool) Definition() mcp.Tool {
	return mcp.NewTool("add_ticket",
		mcp.WithDescription(
			"Create a new ticket in a project. Returns the id of the created ticket.",
		),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("Project identifier (1-100 characters)"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Ticket title (1-255 characters)"),
		),
		mcp.WithString("description",
			mcp.Description("Optional description (up to 1000 characters)"),
		),
		mcp.WithString("status",
			mcp.Description("Status: open, in-progress, blocked, closed (default: open)"),
		),
		mcp.WithString("priority",
			mcp.Description("Priority: low, medium, high, urgent (default: medium)"),
		),
	)
}

// Handle processes the add_ticket tool call.
func (t *AddTicketTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ticket, err := model.NewTicketCreate(
		req.GetString("project_id", ""),
		req.GetString("title", ""),
		req.GetString("description", ""),
		req.GetString("status", ""),
		req.GetString("priority", ""),
	)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	id, err := t.store.AddTicket(ticket)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add ticket: %v", err)), nil
	}
	return jsonResult(map[string]int64{"id": id}), nil
}

// ─── ListTicketsTool ────────────────────────────────────────────────────────

// ListTicketsTool handles the list_tickets MCP tool.
type ListTicketsTool struct {
	store *store.Store
}

// NewListTicketsTool creates a ListTicketsTool.
func NewListTicketsTool(s *store.Store) *ListTicketsTool {
	return &ListTicketsTool{store: s}
}

// Definition returns the MCP tool definition for list_tickets.
func (t *ListTicketsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_tickets",
		mcp.WithDescription("List all tickets, newest first."),
	)
}

// Handle processes the list_tickets tool call.
func (t *ListTicketsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tickets, err := t.store.ListTickets()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list tickets: %v", err)), nil
	}
	if tickets == nil {
		tickets = []model.TicketResponse{}
	}
	return jsonResult(tickets), nil
}

// ─── GetTicketTool ──────────────────────────────────────────────────────────

// GetTicketTool handles the get_ticket MCP tool.
type GetTicketTool struct {
	store *store.Store
}

// NewGetTicketTool creates a GetTicketTool.
func NewGetTicketTool(s *store.Store) *GetTicketTool {
	return &GetTicketTool{store: s}
}

// Definition returns the MCP tool definition for get_ticket.
func (t *GetTicketTool) Definition() mcp.Tool {
	return mcp.NewTool("get_ticket",
		mcp.WithDescription("Fetch one ticket by id. Returns null if it does not exist."),
		mcp.WithNumber("ticket_id",
			mcp.Required(),
			mcp.Description("Ticket id"),
		),
	)
}

// Handle processes the get_ticket tool call. A missing ticket is a null
// result, not an error — callers must check for it.
func (t *GetTicketTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := intArg(req, "ticket_id", 0)

	ticket, err := t.store.GetTicket(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get ticket: %v", err)), nil
	}
	if ticket == nil {
		return jsonResult(nil), nil
	}
	return jsonResult(ticket), nil
}

// ─── UpdateTicketTool ───────────────────────────────────────────────────────

// UpdateTicketTool handles the update_ticket MCP tool.
type UpdateTicketTool struct {
	store *store.Store
}

// NewUpdateTicketTool creates an UpdateTicketTool.
func NewUpdateTicketTool(s *store.Store) *UpdateTicketTool {
	return &UpdateTicketTool{store: s}
}

// Definition returns the MCP tool definition for update_ticket.
func (t *UpdateTicketTool) Definition() mcp.Tool {
	return mcp.NewTool("update_ticket",
		mcp.WithDescription(
			"Update one or more fields of an existing ticket. Only the provided fields change. "+
				"Returns true if the ticket existed.",
		),
		mcp.WithNumber("ticket_id",
			mcp.Required(),
			mcp.Description("Ticket id"),
		),
		mcp.WithString("project_id",
			mcp.Description("New project identifier (1-100 characters)"),
		),
		mcp.WithString("title",
			mcp.Description("New title (1-255 characters)"),
		),
		mcp.WithString("description",
			mcp.Description("New description (up to 1000 characters)"),
		),
		mcp.WithString("status",
			mcp.Description("New status: open, in-progress, blocked, closed"),
		),
		mcp.WithString("priority",
			mcp.Description("New priority: low, medium, high, urgent"),
		),
	)
}

// Handle processes the update_ticket tool call.
func (t *UpdateTicketTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := intArg(req, "ticket_id", 0)
	if id <= 0 {
		return mcp.NewToolResultError("ticket_id must be a positive integer"), nil
	}

	update, err := model.NewTicketUpdate(
		optStringArg(req, "project_id"),
		optStringArg(req, "title"),
		optStringArg(req, "description"),
		optStringArg(req, "status"),
		optStringArg(req, "priority"),
	)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	updated, err := t.store.UpdateTicket(id, update)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update ticket: %v", err)), nil
	}
	return jsonResult(updated), nil
}
