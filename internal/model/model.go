// Package model defines the typed representations of tickets and todos
// and the validation rules that gate every write.
//
// Three variants exist per entity: a Create variant (required fields,
// defaults applied), an Update variant (all fields optional, at least one
// required), and a Response variant (the read-side shape, rebuilt and
// re-validated from stored rows). Each variant enforces only the
// constraints that matter at that point in the lifecycle.
package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// ─── Enums ───────────────────────────────────────────────────────────────────

// TicketStatus is the closed set of ticket states.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in-progress"
	TicketBlocked    TicketStatus = "blocked"
	TicketClosed     TicketStatus = "closed"
)

// TicketStatuses lists all valid ticket statuses in declaration order.
var TicketStatuses = []TicketStatus{TicketOpen, TicketInProgress, TicketBlocked, TicketClosed}

// ParseTicketStatus converts a raw string into a TicketStatus,
// rejecting anything outside the known set.
func ParseTicketStatus(s string) (TicketStatus, error) {
	for _, v := range TicketStatuses {
		if s == string(v) {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid status: %s. Must be one of: %s", s, joinTicketStatuses())
}

// TicketPriority is the closed set of ticket priorities.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
	PriorityUrgent TicketPriority = "urgent"
)

// TicketPriorities lists all valid priorities in declaration order.
var TicketPriorities = []TicketPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// ParseTicketPriority converts a raw string into a TicketPriority.
func ParseTicketPriority(s string) (TicketPriority, error) {
	for _, v := range TicketPriorities {
		if s == string(v) {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid priority: %s. Must be one of: %s", s, joinTicketPriorities())
}

// TodoStatus is the closed set of todo states.
type TodoStatus string

const (
	TodoPending    TodoStatus = "pending"
	TodoInProgress TodoStatus = "in-progress"
	TodoDone       TodoStatus = "done"
)

// TodoStatuses lists all valid todo statuses in declaration order.
var TodoStatuses = []TodoStatus{TodoPending, TodoInProgress, TodoDone}

// ParseTodoStatus converts a raw string into a TodoStatus.
func ParseTodoStatus(s string) (TodoStatus, error) {
	for _, v := range TodoStatuses {
		if s == string(v) {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid status: %s. Must be one of: %s", s, joinTodoStatuses())
}

func joinTicketStatuses() string {
	parts := make([]string, len(TicketStatuses))
	for i, v := range TicketStatuses {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

func joinTicketPriorities() string {
	parts := make([]string, len(TicketPriorities))
	for i, v := range TicketPriorities {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

func joinTodoStatuses() string {
	parts := make([]string, len(TodoStatuses))
	for i, v := range TodoStatuses {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// ─── Field rules ─────────────────────────────────────────────────────────────

const (
	MaxProjectIDLen   = 100
	MaxTitleLen       = 255
	MaxDescriptionLen = 1000
)

// ISO 8601 calendar date or date-time, with optional fractional seconds.
var dueDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(T\d{2}:\d{2}:\d{2}(\.\d+)?)?$`)

// requiredString trims v and enforces non-emptiness and a max rune length.
func requiredString(field, v string, max int) (string, error) {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return "", fmt.Errorf("%s cannot be empty or whitespace", field)
	}
	if utf8.RuneCountInString(trimmed) > max {
		return "", fmt.Errorf("%s must be at most %d characters", field, max)
	}
	return trimmed, nil
}

// optionalString trims v and normalizes empty/whitespace to nil.
func optionalString(field, v string, max int) (*string, error) {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > max {
		return nil, fmt.Errorf("%s must be at most %d characters", field, max)
	}
	return &trimmed, nil
}

// validateDueDate applies the two-stage check: a syntactic match first,
// then a calendar-validity parse. "2024-13-45" passes the first stage and
// must fail the second with a distinct error.
func validateDueDate(v string) (string, error) {
	if !dueDatePattern.MatchString(v) {
		return "", fmt.Errorf("due_date must be in ISO 8601 format (YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS)")
	}
	layout := "2006-01-02"
	if strings.ContainsRune(v, 'T') {
		// time.Parse accepts trailing fractional seconds even when the
		// layout omits them.
		layout = "2006-01-02T15:04:05"
	}
	if _, err := time.Parse(layout, v); err != nil {
		return "", fmt.Errorf("due_date must be a valid date")
	}
	return v, nil
}

// ─── Ticket variants ─────────────────────────────────────────────────────────

// TicketCreate is a validated, normalized ticket ready for insertion.
type TicketCreate struct {
	ProjectID   string
	Title       string
	Description *string
	Status      TicketStatus
	Priority    TicketPriority
}

// NewTicketCreate validates raw caller input and applies defaults.
// Empty status/priority default to open/medium; anything else must be a
// member of the enum.
func NewTicketCreate(projectID, title, description, status, priority string) (TicketCreate, error) {
	var c TicketCreate
	var err error

	if c.ProjectID, err = requiredString("project_id", projectID, MaxProjectIDLen); err != nil {
		return TicketCreate{}, err
	}
	if c.Title, err = requiredString("title", title, MaxTitleLen); err != nil {
		return TicketCreate{}, err
	}
	if c.Description, err = optionalString("description", description, MaxDescriptionLen); err != nil {
		return TicketCreate{}, err
	}

	c.Status = TicketOpen
	if status != "" {
		if c.Status, err = ParseTicketStatus(status); err != nil {
			return TicketCreate{}, err
		}
	}
	c.Priority = PriorityMedium
	if priority != "" {
		if c.Priority, err = ParseTicketPriority(priority); err != nil {
			return TicketCreate{}, err
		}
	}
	return c, nil
}

// TicketUpdate is a partial ticket update: only non-nil fields are applied.
type TicketUpdate struct {
	ProjectID   *string
	Title       *string
	Description *string
	Status      *TicketStatus
	Priority    *TicketPriority
}

// NewTicketUpdate validates a partial update. Provided fields follow the
// same per-field rules as creation; an update with no fields at all is
// rejected. Whether the target ticket exists is the operation layer's
// concern, not checked here.
func NewTicketUpdate(projectID, title, description, status, priority *string) (TicketUpdate, error) {
	var u TicketUpdate
	var err error

	if projectID != nil {
		var v string
		if v, err = requiredString("project_id", *projectID, MaxProjectIDLen); err != nil {
			return TicketUpdate{}, err
		}
		u.ProjectID = &v
	}
	if title != nil {
		var v string
		if v, err = requiredString("title", *title, MaxTitleLen); err != nil {
			return TicketUpdate{}, err
		}
		u.Title = &v
	}
	if description != nil {
		if u.Description, err = optionalString("description", *description, MaxDescriptionLen); err != nil {
			return TicketUpdate{}, err
		}
	}
	if status != nil {
		v, err := ParseTicketStatus(*status)
		if err != nil {
			return TicketUpdate{}, err
		}
		u.Status = &v
	}
	if priority != nil {
		v, err := ParseTicketPriority(*priority)
		if err != nil {
			return TicketUpdate{}, err
		}
		u.Priority = &v
	}

	if u.ProjectID == nil && u.Title == nil && u.Description == nil && u.Status == nil && u.Priority == nil {
		return TicketUpdate{}, fmt.Errorf("at least one field must be provided for update")
	}
	return u, nil
}

// TicketResponse is the read-side shape returned to callers.
type TicketResponse struct {
	ID          int64          `json:"id"`
	ProjectID   string         `json:"project_id"`
	Title       string         `json:"title"`
	Description *string        `json:"description"`
	Status      TicketStatus   `json:"status"`
	Priority    TicketPriority `json:"priority"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

// NewTicketResponse rebuilds a typed ticket from a stored row. Failure
// here means the schema and the validation layer have fallen out of sync
// and must surface as a defect, not leak unvalidated data.
func NewTicketResponse(id int64, projectID, title string, description *string, status, priority, createdAt, updatedAt string) (TicketResponse, error) {
	if id <= 0 {
		return TicketResponse{}, fmt.Errorf("ticket row %d: id must be positive", id)
	}
	if projectID == "" {
		return TicketResponse{}, fmt.Errorf("ticket row %d: project_id is empty", id)
	}
	if title == "" {
		return TicketResponse{}, fmt.Errorf("ticket row %d: title is empty", id)
	}
	st, err := ParseTicketStatus(status)
	if err != nil {
		return TicketResponse{}, fmt.Errorf("ticket row %d: %w", id, err)
	}
	pr, err := ParseTicketPriority(priority)
	if err != nil {
		return TicketResponse{}, fmt.Errorf("ticket row %d: %w", id, err)
	}
	if createdAt == "" || updatedAt == "" {
		return TicketResponse{}, fmt.Errorf("ticket row %d: missing timestamps", id)
	}
	return TicketResponse{
		ID:          id,
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		Status:      st,
		Priority:    pr,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

// ─── Todo variants ───────────────────────────────────────────────────────────

// TodoCreate is a validated, normalized todo ready for insertion.
type TodoCreate struct {
	TicketID    int64
	Description string
	Status      TodoStatus
	DueDate     *string
}

// NewTodoCreate validates raw caller input and applies defaults.
func NewTodoCreate(ticketID int64, description, status, dueDate string) (TodoCreate, error) {
	var c TodoCreate
	var err error

	if ticketID <= 0 {
		return TodoCreate{}, fmt.Errorf("ticket_id must be a positive integer")
	}
	c.TicketID = ticketID

	if c.Description, err = requiredString("description", description, MaxDescriptionLen); err != nil {
		return TodoCreate{}, err
	}

	c.Status = TodoPending
	if status != "" {
		if c.Status, err = ParseTodoStatus(status); err != nil {
			return TodoCreate{}, err
		}
	}
	if dueDate != "" {
		v, err := validateDueDate(dueDate)
		if err != nil {
			return TodoCreate{}, err
		}
		c.DueDate = &v
	}
	return c, nil
}

// TodoUpdate is a partial todo update: only non-nil fields are applied.
type TodoUpdate struct {
	Description *string
	Status      *TodoStatus
	DueDate     *string
}

// NewTodoUpdate validates a partial update, rejecting an empty one.
func NewTodoUpdate(description, status, dueDate *string) (TodoUpdate, error) {
	var u TodoUpdate

	if description != nil {
		v, err := requiredString("description", *description, MaxDescriptionLen)
		if err != nil {
			return TodoUpdate{}, err
		}
		u.Description = &v
	}
	if status != nil {
		v, err := ParseTodoStatus(*status)
		if err != nil {
			return TodoUpdate{}, err
		}
		u.Status = &v
	}
	if dueDate != nil {
		v, err := validateDueDate(*dueDate)
		if err != nil {
			return TodoUpdate{}, err
		}
		u.DueDate = &v
	}

	if u.Description == nil && u.Status == nil && u.DueDate == nil {
		return TodoUpdate{}, fmt.Errorf("at least one field must be provided for update")
	}
	return u, nil
}

// TodoResponse is the read-side shape returned to callers.
type TodoResponse struct {
	ID          int64      `json:"id"`
	TicketID    int64      `json:"ticket_id"`
	Description string     `json:"description"`
	Status      TodoStatus `json:"status"`
	DueDate     *string    `json:"due_date"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at"`
}

// NewTodoResponse rebuilds a typed todo from a stored row, re-validating
// every field the same way the write path does.
func NewTodoResponse(id, ticketID int64, description, status string, dueDate *string, createdAt, updatedAt string) (TodoResponse, error) {
	if id <= 0 {
		return TodoResponse{}, fmt.Errorf("todo row %d: id must be positive", id)
	}
	if ticketID <= 0 {
		return TodoResponse{}, fmt.Errorf("todo row %d: ticket_id must be positive", id)
	}
	if description == "" {
		return TodoResponse{}, fmt.Errorf("todo row %d: description is empty", id)
	}
	st, err := ParseTodoStatus(status)
	if err != nil {
		return TodoResponse{}, fmt.Errorf("todo row %d: %w", id, err)
	}
	if createdAt == "" || updatedAt == "" {
		return TodoResponse{}, fmt.Errorf("todo row %d: missing timestamps", id)
	}
	return TodoResponse{
		ID:          id,
		TicketID:    ticketID,
		Description: description,
		Status:      st,
		DueDate:     dueDate,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}
