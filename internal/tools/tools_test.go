package tools

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/slatehq/slate/internal/store"
)

// --- Test helpers ---

// newTestStore opens a store backed by a temp directory.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "slate.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// callReq builds a CallToolRequest with the given arguments.
func callReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// isErrorResult checks if the result is a tool error.
func isErrorResult(result *mcp.CallToolResult) bool {
	return result != nil && result.IsError
}

// getResultText extracts the text content from a CallToolResult.
func getResultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// decodeResult unmarshals the JSON payload of a successful result into v.
func decodeResult(t *testing.T, result *mcp.CallToolResult, v any) {
	t.Helper()
	if isErrorResult(result) {
		t.Fatalf("unexpected tool error: %s", getResultText(result))
	}
	if err := json.Unmarshal([]byte(getResultText(result)), v); err != nil {
		t.Fatalf("decoding result %q: %v", getResultText(result), err)
	}
}

// addTicket creates a ticket through the tool layer and returns its id.
func addTicket(t *testing.T, s *store.Store, projectID, title string) int64 {
	t.Helper()
	result, err := NewAddTicketTool(s).Handle(context.Background(), callReq(map[string]interface{}{
		"project_id": projectID,
		"title":      title,
	}))
	if err != nil {
		t.Fatalf("add_ticket handle: %v", err)
	}
	var out struct {
		ID int64 `json:"id"`
	}
	decodeResult(t, result, &out)
	return out.ID
}

// --- add_ticket ---

func TestAddTicketTool_Success(t *testing.T) {
	s := newTestStore(t)
	id := addTicket(t, s, "proj-1", "Fix bug")
	if id != 1 {
		t.Errorf("first ticket id = %d, want 1", id)
	}
}

func TestAddTicketTool_ValidationError(t *testing.T) {
	s := newTestStore(t)
	result, err := NewAddTicketTool(s).Handle(context.Background(), callReq(map[string]interface{}{
		"project_id": "   ",
		"title":      "Fix bug",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("want tool error for whitespace project_id")
	}
	if !strings.Contains(getResultText(result), "project_id") {
		t.Errorf("error %q should name the field", getResultText(result))
	}
}

func TestAddTicketTool_InvalidEnum(t *testing.T) {
	s := newTestStore(t)
	result, err := NewAddTicketTool(s).Handle(context.Background(), callReq(map[string]interface{}{
		"project_id": "proj",
		"title":      "Fix bug",
		"priority":   "extreme",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("want tool error for invalid priority")
	}
}

// --- get_ticket / list_tickets ---

func TestGetTicketTool_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	id := addTicket(t, s, "proj-1", "Fix bug")

	result, err := NewGetTicketTool(s).Handle(context.Background(), callReq(map[string]interface{}{
		"ticket_id": float64(id),
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	var ticket struct {
		ID          int64   `json:"id"`
		ProjectID   string  `json:"project_id"`
		Title       string  `json:"title"`
		Description *string `json:"description"`
		Status      string  `json:"status"`
		Priority    string  `json:"priority"`
	}
	decodeResult(t, result, &ticket)
	if ticket.ID != id || ticket.ProjectID != "proj-1" || ticket.Title != "Fix bug" {
		t.Errorf("unexpected ticket: %+v", ticket)
	}
	if ticket.Status != "open" || ticket.Priority != "medium" {
		t.Errorf("defaults = %s/%s, want open/medium", ticket.Status, ticket.Priority)
	}
	if ticket.Description != nil {
		t.Errorf("description = %v, want absent", ticket.Description)
	}
}

func TestGetTicketTool_NotFoundIsNull(t *testing.T) {
	s := newTestStore(t)
	result, err := NewGetTicketTool(s).Handle(context.Background(), callReq(map[string]interface{}{
		"ticket_id": float64(9999),
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("missing ticket should not be an error: %s", getResultText(result))
	}
	if got := getResultText(result); got != "null" {
		t.Errorf("result = %q, want null", got)
	}
}

func TestListTicketsTool_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	addTicket(t, s, "proj", "First")
	addTicket(t, s, "proj", "Second")

	result, err := NewListTicketsTool(s).Handle(context.Background(), callReq(nil))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	var tickets []struct {
		Title string `json:"title"`
	}
	decodeResult(t, result, &tickets)
	if len(tickets) != 2 {
		t.Fatalf("got %d tickets, want 2", len(tickets))
	}
	if tickets[0].Title != "Second" || tickets[1].Title != "First" {
		t.Errorf("order = %s, %s; want Second, First", tickets[0].Title, tickets[1].Title)
	}
}

// --- update_ticket ---

func TestUpdateTicketTool_Partial(t *testing.T) {
	s := newTestStore(t)
	id := addTicket(t, s, "proj", "Fix bug")

	result, err := NewUpdateTicketTool(s).Handle(context.Background(), callReq(map[string]interface{}{
		"ticket_id": float64(id),
		"status":    "closed",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	var updated bool
	decodeResult(t, result, &updated)
	if !updated {
		t.Fatal("update of existing ticket should return true")
	}

	ticket, err := s.GetTicket(id)
	if err != nil {
		t.Fatalf("get ticket: %v", err)
	}
	if string(ticket.Status) != "closed" {
		t.Errorf("status = %q, want closed", ticket.Status)
	}
	if ticket.Title != "Fix bug" {
		t.Errorf("title = %q, want untouched", ticket.Title)
	}
}

func TestUpdateTicketTool_NoFields(t *testing.T) {
	s := newTestStore(t)
	id := addTicket(t, s, "proj", "Fix bug")

	result, err := NewUpdateTicketTool(s).Handle(context.Background(), callReq(map[string]interface{}{
		"ticket_id": float64(id),
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("want tool error when no update fields are provided")
	}
}

// --- add_todo / list_todos / update_todo_status ---

func TestAddTodoTool_Success(t *testing.T) {
	s := newTestStore(t)
	ticketID := addTicket(t, s, "proj-1", "Fix bug")

	result, err := NewAddTodoTool(s).Handle(context.Background(), callReq(map[string]interface{}{
		"ticket_id":   float64(ticketID),
		"description": "Write test",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	var out struct {
		ID int64 `json:"id"`
	}
	decodeResult(t, result, &out)
	if out.ID != 1 {
		t.Errorf("first todo id = %d, want 1", out.ID)
	}
}

func TestAddTodoTool_MissingTicket(t *testing.T) {
	s := newTestStore(t)
	result, err := NewAddTodoTool(s).Handle(context.Background(), callReq(map[string]interface{}{
		"ticket_id":   float64(42),
		"description": "Orphan",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("want referential integrity error for nonexistent ticket")
	}
}

func TestAddTodoTool_BadDueDate(t *testing.T) {
	s := newTestStore(t)
	ticketID := addTicket(t, s, "proj-1", "Fix bug")

	result, err := NewAddTodoTool(s).Handle(context.Background(), callReq(map[string]interface{}{
		"ticket_id":   float64(ticketID),
		"description": "Write test",
		"due_date":    "2024-13-45",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("want tool error for impossible due date")
	}
	if !strings.Contains(getResultText(result), "valid date") {
		t.Errorf("error %q should be the calendar-validity one", getResultText(result))
	}
}

func TestUpdateTodoStatusTool_Flow(t *testing.T) {
	s := newTestStore(t)
	ticketID := addTicket(t, s, "proj-1", "Fix bug")

	addResult, err := NewAddTodoTool(s).Handle(context.Background(), callReq(map[string]interface{}{
		"ticket_id":   float64(ticketID),
		"description": "Write test",
	}))
	if err != nil {
		t.Fatalf("add_todo handle: %v", err)
	}
	var added struct {
		ID int64 `json:"id"`
	}
	decodeResult(t, addResult, &added)

	updResult, err := NewUpdateTodoStatusTool(s).Handle(context.Background(), callReq(map[string]interface{}{
		"todo_id": float64(added.ID),
		"status":  "done",
	}))
	if err != nil {
		t.Fatalf("update_todo_status handle: %v", err)
	}
	var updated bool
	decodeResult(t, updResult, &updated)
	if !updated {
		t.Fatal("update of existing todo should return true")
	}

	listResult, err := NewListTodosTool(s).Handle(context.Background(), callReq(map[string]interface{}{
		"ticket_id": float64(ticketID),
	}))
	if err != nil {
		t.Fatalf("list_todos handle: %v", err)
	}
	var todos []struct {
		Status string `json:"status"`
	}
	decodeResult(t, listResult, &todos)
	if len(todos) != 1 || todos[0].Status != "done" {
		t.Errorf("todos = %+v, want one with status done", todos)
	}
}

func TestUpdateTodoStatusTool_MissingTodoIsFalse(t *testing.T) {
	s := newTestStore(t)
	result, err := NewUpdateTodoStatusTool(s).Handle(context.Background(), callReq(map[string]interface{}{
		"todo_id": float64(9999),
		"status":  "done",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	var updated bool
	decodeResult(t, result, &updated)
	if updated {
		t.Error("missing todo should yield false, not true")
	}
}

func TestUpdateTodoStatusTool_InvalidStatus(t *testing.T) {
	s := newTestStore(t)
	result, err := NewUpdateTodoStatusTool(s).Handle(context.Background(), callReq(map[string]interface{}{
		"todo_id": float64(1),
		"status":  "finished",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("want tool error for invalid status")
	}
	text := getResultText(result)
	for _, legal := range []string{"pending", "in-progress", "done"} {
		if !strings.Contains(text, legal) {
			t.Errorf("error %q should list legal value %q", text, legal)
		}
	}
}

func TestListTodosTool_UnknownTicketIsEmptyList(t *testing.T) {
	s := newTestStore(t)
	result, err := NewListTodosTool(s).Handle(context.Background(), callReq(map[string]interface{}{
		"ticket_id": float64(9999),
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if got := getResultText(result); got != "[]" {
		t.Errorf("result = %q, want empty list", got)
	}
}

// --- query gate tools ---

func TestRunSelectTool_RejectsWrites(t *testing.T) {
	s := newTestStore(t)
	tool := NewRunSelectTool(s, 100)
	for _, q := range []string{"DELETE FROM tickets", "DROP TABLE todos"} {
		result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
			"sql": q,
		}))
		if err != nil {
			t.Fatalf("Handle(%q): %v", q, err)
		}
		if !isErrorResult(result) {
			t.Errorf("query %q: want policy error", q)
		}
	}
}

func TestRunSelectTool_CallerLimit(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 4; i++ {
		addTicket(t, s, "proj", "Ticket")
	}

	result, err := NewRunSelectTool(s, 100).Handle(context.Background(), callReq(map[string]interface{}{
		"sql":   "SELECT * FROM tickets",
		"limit": float64(2),
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	var rows []map[string]any
	decodeResult(t, result, &rows)
	if len(rows) != 2 {
		t.Errorf("got %d rows, want caller limit of 2", len(rows))
	}
}

func TestListTablesTool(t *testing.T) {
	s := newTestStore(t)
	result, err := NewListTablesTool(s).Handle(context.Background(), callReq(nil))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	var names []string
	decodeResult(t, result, &names)
	found := map[string]bool{}
	for _, n := range names {
		found[n] = true
	}
	if !found["tickets"] || !found["todos"] {
		t.Errorf("tables = %v, want tickets and todos", names)
	}
}

func TestSchemaTool(t *testing.T) {
	s := newTestStore(t)
	result, err := NewSchemaTool(s).Handle(context.Background(), callReq(map[string]interface{}{
		"table": "tickets",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	var cols []struct {
		Name string `json:"name"`
		PK   int    `json:"pk"`
	}
	decodeResult(t, result, &cols)
	names := map[string]bool{}
	for _, c := range cols {
		names[c.Name] = true
	}
	for _, want := range []string{"id", "project_id", "title", "status", "priority"} {
		if !names[want] {
			t.Errorf("columns %v missing %q", names, want)
		}
	}
}
