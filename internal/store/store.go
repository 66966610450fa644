// Package store implements the SQLite persistence layer for tickets and
// todos, plus the restricted read-query gate.
//
// Every connection handed out by the pool runs in WAL mode with a 5000 ms
// busy timeout and foreign keys enforced; the pragmas travel in the DSN so
// the guarantees hold for each pooled connection, not just the first one.
// All validation happens in internal/model before any statement executes.
package store

import (
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/slatehq/slate/internal/model"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DefaultQueryLimit caps run_select result sets when the caller's
// statement carries no LIMIT clause of its own.
const DefaultQueryLimit = 100

const schema = `
	CREATE TABLE IF NOT EXISTS tickets (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id  TEXT    NOT NULL,
		title       TEXT    NOT NULL,
		description TEXT,
		status      TEXT    NOT NULL DEFAULT 'open',
		priority    TEXT    NOT NULL DEFAULT 'medium',
		created_at  TEXT    NOT NULL DEFAULT (datetime('now')),
		updated_at  TEXT    NOT NULL DEFAULT (datetime('now'))
	);

	CREATE TABLE IF NOT EXISTS todos (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		ticket_id   INTEGER NOT NULL,
		description TEXT    NOT NULL,
		status      TEXT    NOT NULL DEFAULT 'pending',
		due_date    TEXT,
		created_at  TEXT    NOT NULL DEFAULT (datetime('now')),
		updated_at  TEXT    NOT NULL DEFAULT (datetime('now')),
		FOREIGN KEY (ticket_id) REFERENCES tickets(id)
	);

	CREATE INDEX IF NOT EXISTS idx_tickets_project ON tickets(project_id);
	CREATE INDEX IF NOT EXISTS idx_tickets_created ON tickets(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_todos_ticket    ON todos(ticket_id);
`

// Store is the ticket/todo persistence engine backed by SQLite.
type Store struct {
	db *sql.DB
}

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Open opens (creating if needed) the database at path and applies the
// schema. The path must come from explicit configuration; an empty path
// is a configuration error.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store: no database path configured (set SLATE_DB)")
	}

	dsn := "file:" + path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=foreign_keys(1)"

	db, err := openDB("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies the fixed schema. Idempotent: every statement is
// CREATE ... IF NOT EXISTS, so reopening an existing database is safe.
func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

// ─── Tickets ─────────────────────────────────────────────────────────────────

// AddTicket inserts a validated ticket and returns its assigned id.
func (s *Store) AddTicket(c model.TicketCreate) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO tickets (project_id, title, description, status, priority) VALUES (?, ?, ?, ?, ?)`,
		c.ProjectID, c.Title, c.Description, string(c.Status), string(c.Priority),
	)
	if err != nil {
		return 0, fmt.Errorf("store: add ticket: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: add ticket: %w", err)
	}
	return id, nil
}

// ListTickets returns all tickets, newest first. The id tiebreaker keeps
// the order deterministic for rows created within the same second.
func (s *Store) ListTickets() ([]model.TicketResponse, error) {
	rows, err := s.db.Query(
		`SELECT id, project_id, title, description, status, priority, created_at, updated_at
		 FROM tickets ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("store: list tickets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tickets []model.TicketResponse
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// GetTicket returns the ticket with the given id, or nil if no such row
// exists. Absence is not an error.
func (s *Store) GetTicket(id int64) (*model.TicketResponse, error) {
	row := s.db.QueryRow(
		`SELECT id, project_id, title, description, status, priority, created_at, updated_at
		 FROM tickets WHERE id = ?`, id,
	)
	t, err := scanTicket(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTicket applies only the provided fields of a validated partial
// update and touches updated_at. Returns true iff a row was matched.
func (s *Store) UpdateTicket(id int64, u model.TicketUpdate) (bool, error) {
	sets := []string{}
	args := []any{}

	if u.ProjectID != nil {
		sets = append(sets, "project_id = ?")
		args = append(args, *u.ProjectID)
	}
	if u.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *u.Title)
	}
	if u.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *u.Description)
	}
	if u.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*u.Status))
	}
	if u.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, string(*u.Priority))
	}
	if len(sets) == 0 {
		return false, fmt.Errorf("store: update ticket %d: no fields to apply", id)
	}

	sets = append(sets, "updated_at = datetime('now')")
	args = append(args, id)

	res, err := s.db.Exec(
		"UPDATE tickets SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...,
	)
	if err != nil {
		return false, fmt.Errorf("store: update ticket %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store: update ticket %d: %w", id, err)
	}
	return n > 0, nil
}

// ─── Todos ───────────────────────────────────────────────────────────────────

// AddTodo inserts a validated todo and returns its assigned id. A
// ticket_id with no matching ticket surfaces as the driver's foreign key
// violation.
func (s *Store) AddTodo(c model.TodoCreate) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO todos (ticket_id, description, status, due_date) VALUES (?, ?, ?, ?)`,
		c.TicketID, c.Description, string(c.Status), c.DueDate,
	)
	if err != nil {
		return 0, fmt.Errorf("store: add todo: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: add todo: %w", err)
	}
	return id, nil
}

// ListTodos returns the todos belonging to a ticket in creation order.
// An unknown ticket_id yields an empty result, not an error.
func (s *Store) ListTodos(ticketID int64) ([]model.TodoResponse, error) {
	rows, err := s.db.Query(
		`SELECT id, ticket_id, description, status, due_date, created_at, updated_at
		 FROM todos WHERE ticket_id = ? ORDER BY created_at, id`, ticketID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: list todos: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var todos []model.TodoResponse
	for rows.Next() {
		td, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, td)
	}
	return todos, rows.Err()
}

// UpdateTodoStatus sets the status of the todo with the given id.
// Returns true iff a row was matched; a missing id is a false return,
// not an error.
func (s *Store) UpdateTodoStatus(id int64, status model.TodoStatus) (bool, error) {
	res, err := s.db.Exec(`UPDATE todos SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return false, fmt.Errorf("store: update todo %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store: update todo %d: %w", id, err)
	}
	return n > 0, nil
}

// ─── Row scanning ────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...any) error
}

// scanTicket rebuilds a TicketResponse from a row, re-validating every
// field through the model layer so schema drift fails loudly.
func scanTicket(row rowScanner) (model.TicketResponse, error) {
	var (
		id                   int64
		projectID, title     string
		description          sql.NullString
		status, priority     string
		createdAt, updatedAt string
	)
	if err := row.Scan(&id, &projectID, &title, &description, &status, &priority, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return model.TicketResponse{}, err
		}
		return model.TicketResponse{}, fmt.Errorf("store: scan ticket: %w", err)
	}
	return model.NewTicketResponse(id, projectID, title, nullable(description), status, priority, createdAt, updatedAt)
}

// scanTodo rebuilds a TodoResponse from a row with the same defensive
// re-validation.
func scanTodo(row rowScanner) (model.TodoResponse, error) {
	var (
		id, ticketID         int64
		description, status  string
		dueDate              sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&id, &ticketID, &description, &status, &dueDate, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return model.TodoResponse{}, err
		}
		return model.TodoResponse{}, fmt.Errorf("store: scan todo: %w", err)
	}
	return model.NewTodoResponse(id, ticketID, description, status, nullable(dueDate), createdAt, updatedAt)
}

func nullable(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

// ─── Query gate ──────────────────────────────────────────────────────────────

// RunSelect executes an arbitrary read-only query. The trimmed, lowered
// statement must begin with "select"; anything else is a policy
// violation. When the statement carries no LIMIT clause, one is appended
// textually (trailing semicolons stripped first) so an unbounded scan
// can never flood the caller. limit <= 0 falls back to
// DefaultQueryLimit. Named bind parameters are passed through params.
func (s *Store) RunSelect(query string, params map[string]any, limit int) ([]map[string]any, error) {
	lowered := strings.ToLower(strings.TrimSpace(query))
	if !strings.HasPrefix(lowered, "select") {
		return nil, fmt.Errorf("only SELECT queries allowed")
	}
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	if !strings.Contains(lowered, " limit ") {
		query = fmt.Sprintf("%s LIMIT %d", strings.TrimRight(query, ";"), limit)
	}

	args := namedArgs(params)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: run select: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("store: run select: %w", err)
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("store: run select: %w", err)
		}
		record := make(map[string]any, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				record[col] = string(b)
			} else {
				record[col] = values[i]
			}
		}
		results = append(results, record)
	}
	return results, rows.Err()
}

// namedArgs converts a params map into sql.Named arguments in a stable
// order.
func namedArgs(params map[string]any) []any {
	if len(params) == 0 {
		return nil
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys))
	for _, k := range keys {
		args = append(args, sql.Named(k, params[k]))
	}
	return args
}

// ─── Catalog reflection ──────────────────────────────────────────────────────

// Column describes one column of a table, as reported by the SQLite
// catalog.
type Column struct {
	CID        int     `json:"cid"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	NotNull    int     `json:"notnull"`
	Default    *string `json:"dflt_value"`
	PrimaryKey int     `json:"pk"`
}

// ListTables returns the names of all tables in the database.
func (s *Store) ListTables() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM sqlite_master WHERE type='table' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("store: list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("store: list tables: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// TableInfo returns column metadata for one table. PRAGMA takes no bind
// parameters, so the identifier is checked before interpolation.
func (s *Store) TableInfo(table string) ([]Column, error) {
	if !identifierPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %s", table)
	}

	rows, err := s.db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		return nil, fmt.Errorf("store: table info: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cols []Column
	for rows.Next() {
		var c Column
		var dflt sql.NullString
		if err := rows.Scan(&c.CID, &c.Name, &c.Type, &c.NotNull, &dflt, &c.PrimaryKey); err != nil {
			return nil, fmt.Errorf("store: table info: %w", err)
		}
		c.Default = nullable(dflt)
		cols = append(cols, c)
	}
	return cols, rows.Err()
}
