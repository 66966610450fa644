// Package server wires the store and tools into the MCP server instance.
//
// This is the composition root: it opens the concrete store and injects
// it into the tool handlers. No business logic lives here — only wiring.
package server

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/slatehq/slate/internal/config"
	"github.com/slatehq/slate/internal/store"
	"github.com/slatehq/slate/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools registered.
//
// The returned cleanup function closes the store's database connection
// and must be called on shutdown (typically via defer). Opening the
// store is the first thing that happens, so a missing or unusable
// database path fails here before any tool is registered.
func New(cfg config.Config) (*server.MCPServer, func(), error) {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}
	cleanup := func() { _ = st.Close() }

	s := server.NewMCPServer(
		"slate",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Ticket tools ---

	addTicket := tools.NewAddTicketTool(st)
	s.AddTool(addTicket.Definition(), addTicket.Handle)

	listTickets := tools.NewListTicketsTool(st)
	s.AddTool(listTickets.Definition(), listTickets.Handle)

	getTicket := tools.NewGetTicketTool(st)
	s.AddTool(getTicket.Definition(), getTicket.Handle)

	updateTicket := tools.NewUpdateTicketTool(st)
	s.AddTool(updateTicket.Definition(), updateTicket.Handle)

	// --- Todo tools ---

	addTodo := tools.NewAddTodoTool(st)
	s.AddTool(addTodo.Definition(), addTodo.Handle)

	listTodos := tools.NewListTodosTool(st)
	s.AddTool(listTodos.Definition(), listTodos.Handle)

	updateTodoStatus := tools.NewUpdateTodoStatusTool(st)
	s.AddTool(updateTodoStatus.Definition(), updateTodoStatus.Handle)

	// --- Query gate & reflection ---

	runSelect := tools.NewRunSelectTool(st, int64(cfg.QueryLimit))
	s.AddTool(runSelect.Definition(), runSelect.Handle)

	listTables := tools.NewListTablesTool(st)
	s.AddTool(listTables.Definition(), listTables.Handle)

	schemaTool := tools.NewSchemaTool(st)
	s.AddTool(schemaTool.Definition(), schemaTool.Handle)

	return s, cleanup, nil
}

// serverInstructions returns the usage notes sent to the connected AI.
func serverInstructions() string {
	return `You have access to slate, a lightweight ticket and todo tracker.

Tickets are units of work scoped to a project (free-text project_id).
Each ticket can have todos — sub-tasks with their own status and an
optional due date.

Typical flow:
1. add_ticket(project_id, title, ...) to create a ticket
2. add_todo(ticket_id, description, ...) to break it into sub-tasks
3. update_todo_status(todo_id, status) as work progresses
4. update_ticket(ticket_id, status=...) to move the ticket itself

Reading:
- list_tickets shows everything, newest first
- get_ticket(ticket_id) returns one ticket, or null if it does not exist
- list_todos(ticket_id) returns a ticket's todos in creation order
- run_select lets you run any SELECT against the database; use
  list_tables and schema(table) to discover the layout first

Rules worth knowing:
- ticket statuses: open, in-progress, blocked, closed
- ticket priorities: low, medium, high, urgent
- todo statuses: pending, in-progress, done
- due dates are ISO 8601 (YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS)
- run_select accepts SELECT only, and caps results at 100 rows unless
  your query has its own LIMIT`
}
