package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hylla/shootdesk/internal/app"
	"github.com/hylla/shootdesk/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// Repository is the sqlite-backed storage collaborator.
type Repository struct {
	db *sql.DB
}

// Open opens the requested operation.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens a private in-memory database. Each call gets its own
// named database so concurrent repositories never share rows.
func OpenInMemory() (*Repository, error) {
	dsn := fmt.Sprintf("file:shootdesk-%s?mode=memory&cache=shared", uuid.NewString())
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Ping reports whether the database answers.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate handles migrate.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			slug TEXT NOT NULL,
			name TEXT NOT NULL,
			event_date TEXT,
			event_type TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			service_type TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'active',
			progress_percentage INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			archived_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			name TEXT NOT NULL,
			start_date TEXT NOT NULL,
			end_date TEXT,
			start_time TEXT,
			end_time TEXT,
			location TEXT NOT NULL DEFAULT '',
			map_link TEXT NOT NULL DEFAULT '',
			details TEXT NOT NULL DEFAULT '',
			instructions TEXT NOT NULL DEFAULT '',
			photographer TEXT NOT NULL DEFAULT '',
			cinematographer TEXT NOT NULL DEFAULT '',
			drone_operator TEXT NOT NULL DEFAULT '',
			site_manager TEXT NOT NULL DEFAULT '',
			assistant TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_dates ON events(start_date, end_date);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			title TEXT NOT NULL,
			department TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			priority TEXT NOT NULL DEFAULT 'medium',
			due_date TEXT,
			estimated_hours REAL NOT NULL DEFAULT 0,
			description TEXT NOT NULL DEFAULT '',
			expected_deliverables TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			assigned_to TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_project_department ON tasks(project_id, department);`,
		`CREATE TABLE IF NOT EXISTS task_status_changes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			task_id TEXT NOT NULL,
			project_id TEXT NOT NULL,
			from_status TEXT NOT NULL,
			to_status TEXT NOT NULL,
			occurred_at TEXT NOT NULL,
			FOREIGN KEY(task_id) REFERENCES tasks(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_task_status_changes_task ON task_status_changes(task_id, occurred_at DESC, id DESC);`,
		`CREATE TABLE IF NOT EXISTS checklist_items (
			id TEXT PRIMARY KEY,
			event_id TEXT NOT NULL,
			item_name TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			assigned_role TEXT NOT NULL DEFAULT '',
			completed INTEGER NOT NULL DEFAULT 0,
			notes TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY(event_id) REFERENCES events(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS contacts (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			whatsapp TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			categories_json TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// CreateProject creates project.
func (r *Repository) CreateProject(ctx context.Context, p domain.Project) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects(id, slug, name, event_date, event_type, location, service_type, status, progress_percentage, created_at, updated_at, archived_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Slug, p.Name, nullableDate(p.EventDate), p.EventType, p.Location, p.ServiceType, string(p.Status), p.ProgressPercentage, ts(p.CreatedAt), ts(p.UpdatedAt), nullableTS(p.ArchivedAt))
	return err
}

// UpdateProject updates state for the requested operation.
func (r *Repository) UpdateProject(ctx context.Context, p domain.Project) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE projects
		SET slug = ?, name = ?, event_date = ?, event_type = ?, location = ?, service_type = ?, status = ?, progress_percentage = ?, updated_at = ?, archived_at = ?
		WHERE id = ?
	`, p.Slug, p.Name, nullableDate(p.EventDate), p.EventType, p.Location, p.ServiceType, string(p.Status), p.ProgressPercentage, ts(p.UpdatedAt), nullableTS(p.ArchivedAt), p.ID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetProject returns project.
func (r *Repository) GetProject(ctx context.Context, id string) (domain.Project, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, slug, name, event_date, event_type, location, service_type, status, progress_percentage, created_at, updated_at, archived_at
		FROM projects
		WHERE id = ?
	`, id)
	return scanProject(row)
}

// ListProjects lists projects.
func (r *Repository) ListProjects(ctx context.Context, includeArchived bool) ([]domain.Project, error) {
	query := `
		SELECT id, slug, name, event_date, event_type, location, service_type, status, progress_percentage, created_at, updated_at, archived_at
		FROM projects
	`
	if !includeArchived {
		query += ` WHERE archived_at IS NULL`
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// eventColumns lists event columns in scan order.
const eventColumns = `id, project_id, name, start_date, end_date, start_time, end_time, location, map_link, details, instructions,
	photographer, cinematographer, drone_operator, site_manager, assistant, created_at, updated_at`

// CreateEvent creates event.
func (r *Repository) CreateEvent(ctx context.Context, e domain.Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events(`+eventColumns+`)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID,
		e.ProjectID,
		e.Name,
		e.StartDate.String(),
		nullableDate(e.EndDate),
		nullableClock(e.StartTime),
		nullableClock(e.EndTime),
		e.Location,
		e.MapLink,
		e.Details,
		e.Instructions,
		e.Photographer.String(),
		e.Cinematographer.String(),
		e.DroneOperator.String(),
		e.SiteManager.String(),
		e.Assistant.String(),
		ts(e.CreatedAt),
		ts(e.UpdatedAt),
	)
	return err
}

// UpdateEvent patches every mutable event field by id.
func (r *Repository) UpdateEvent(ctx context.Context, e domain.Event) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE events
		SET name = ?, start_date = ?, end_date = ?, start_time = ?, end_time = ?, location = ?, map_link = ?, details = ?, instructions = ?,
		    photographer = ?, cinematographer = ?, drone_operator = ?, site_manager = ?, assistant = ?, updated_at = ?
		WHERE id = ?
	`,
		e.Name,
		e.StartDate.String(),
		nullableDate(e.EndDate),
		nullableClock(e.StartTime),
		nullableClock(e.EndTime),
		e.Location,
		e.MapLink,
		e.Details,
		e.Instructions,
		e.Photographer.String(),
		e.Cinematographer.String(),
		e.DroneOperator.String(),
		e.SiteManager.String(),
		e.Assistant.String(),
		ts(e.UpdatedAt),
		e.ID,
	)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetEvent returns event.
func (r *Repository) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	return scanEvent(row)
}

// ListEvents lists events whose date range intersects the filter range,
// ordered by day and start time. Assignee matching uses the name join.
func (r *Repository) ListEvents(ctx context.Context, filter app.EventFilter) ([]domain.Event, error) {
	var (
		where []string
		args  []any
	)
	if projectID := strings.TrimSpace(filter.ProjectID); projectID != "" {
		where = append(where, `project_id = ?`)
		args = append(args, projectID)
	}
	if !filter.From.IsZero() {
		where = append(where, `COALESCE(end_date, start_date) >= ?`)
		args = append(args, filter.From.String())
	}
	if !filter.To.IsZero() {
		where = append(where, `start_date <= ?`)
		args = append(args, filter.To.String())
	}
	query := `SELECT ` + eventColumns + ` FROM events`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY start_date ASC, COALESCE(start_time, '') ASC, created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		if filter.AssignedTo != "" && len(e.AssignedTo(filter.AssignedTo)) == 0 {
			continue
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// taskColumns lists task columns in scan order.
const taskColumns = `id, project_id, title, department, category, priority, due_date, estimated_hours, description,
	expected_deliverables, status, assigned_to, created_at, updated_at`

// CreateTask creates task.
func (r *Repository) CreateTask(ctx context.Context, t domain.Task) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks(`+taskColumns+`)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID,
		t.ProjectID,
		t.Title,
		string(t.Department),
		t.Category,
		string(t.Priority),
		nullableDate(t.DueDate),
		t.EstimatedHours,
		t.Description,
		t.ExpectedDeliverables,
		string(t.Status),
		t.AssignedTo,
		ts(t.CreatedAt),
		ts(t.UpdatedAt),
	)
	return err
}

// UpdateTask updates state for the requested operation.
func (r *Repository) UpdateTask(ctx context.Context, t domain.Task) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	prev, err := getTaskByID(ctx, tx, t.ID)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, department = ?, category = ?, priority = ?, due_date = ?, estimated_hours = ?, description = ?,
		    expected_deliverables = ?, status = ?, assigned_to = ?, updated_at = ?
		WHERE id = ?
	`,
		t.Title,
		string(t.Department),
		t.Category,
		string(t.Priority),
		nullableDate(t.DueDate),
		t.EstimatedHours,
		t.Description,
		t.ExpectedDeliverables,
		string(t.Status),
		t.AssignedTo,
		ts(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		return err
	}
	if err = translateNoRows(res); err != nil {
		return err
	}
	if prev.Status != t.Status {
		if err = insertStatusChange(ctx, tx, prev, t.Status, t.UpdatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// UpdateTaskStatus writes the status field alone and records the change in the status ledger.
func (r *Repository) UpdateTaskStatus(ctx context.Context, id string, status domain.TaskStatus, updatedAt time.Time) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	prev, err := getTaskByID(ctx, tx, id)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`, string(status), ts(updatedAt), id)
	if err != nil {
		return err
	}
	if err = translateNoRows(res); err != nil {
		return err
	}
	if err = insertStatusChange(ctx, tx, prev, status, updatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

// GetTask returns task.
func (r *Repository) GetTask(ctx context.Context, id string) (domain.Task, error) {
	return getTaskByID(ctx, r.db, id)
}

// ListTasks lists tasks. Due-date bounds exclude tasks without a due date.
func (r *Repository) ListTasks(ctx context.Context, filter app.TaskFilter) ([]domain.Task, error) {
	var (
		where []string
		args  []any
	)
	if projectID := strings.TrimSpace(filter.ProjectID); projectID != "" {
		where = append(where, `project_id = ?`)
		args = append(args, projectID)
	}
	if filter.Department != "" {
		where = append(where, `department = ?`)
		args = append(args, string(filter.Department))
	}
	if !filter.DueFrom.IsZero() {
		where = append(where, `due_date IS NOT NULL AND due_date >= ?`)
		args = append(args, filter.DueFrom.String())
	}
	if !filter.DueTo.IsZero() {
		where = append(where, `due_date IS NOT NULL AND due_date <= ?`)
		args = append(args, filter.DueTo.String())
	}
	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		if filter.AssignedTo != "" && !domain.SamePerson(t.AssignedTo, filter.AssignedTo) {
			continue
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListTaskStatusChanges lists a task's status ledger, newest first. limit <= 0 means no limit.
func (r *Repository) ListTaskStatusChanges(ctx context.Context, taskID string, limit int) ([]domain.TaskStatusChange, error) {
	query := `
		SELECT id, task_id, project_id, from_status, to_status, occurred_at
		FROM task_status_changes
		WHERE task_id = ?
		ORDER BY occurred_at DESC, id DESC
	`
	args := []any{taskID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.TaskStatusChange, 0)
	for rows.Next() {
		var (
			change      domain.TaskStatusChange
			from, to    string
			occurredRaw string
		)
		if err := rows.Scan(&change.ID, &change.TaskID, &change.ProjectID, &from, &to, &occurredRaw); err != nil {
			return nil, err
		}
		change.From = domain.NormalizeTaskStatus(from)
		change.To = domain.NormalizeTaskStatus(to)
		change.OccurredAt = parseTS(occurredRaw)
		out = append(out, change)
	}
	return out, rows.Err()
}

// checklistColumns lists checklist columns in scan order.
const checklistColumns = `id, event_id, item_name, category, assigned_role, completed, notes, created_at, updated_at`

// CreateChecklistItem creates checklist item.
func (r *Repository) CreateChecklistItem(ctx context.Context, c domain.ChecklistItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO checklist_items(`+checklistColumns+`)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.EventID, c.ItemName, c.Category, c.AssignedRole, boolToInt(c.Completed), c.Notes, ts(c.CreatedAt), ts(c.UpdatedAt))
	return err
}

// UpdateChecklistItem updates state for the requested operation.
func (r *Repository) UpdateChecklistItem(ctx context.Context, c domain.ChecklistItem) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE checklist_items
		SET item_name = ?, category = ?, assigned_role = ?, completed = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`, c.ItemName, c.Category, c.AssignedRole, boolToInt(c.Completed), c.Notes, ts(c.UpdatedAt), c.ID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetChecklistItem returns checklist item.
func (r *Repository) GetChecklistItem(ctx context.Context, id string) (domain.ChecklistItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+checklistColumns+` FROM checklist_items WHERE id = ?`, id)
	return scanChecklistItem(row)
}

// ListChecklistItems lists one event's checklist in creation order.
func (r *Repository) ListChecklistItems(ctx context.Context, eventID string) ([]domain.ChecklistItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+checklistColumns+`
		FROM checklist_items
		WHERE event_id = ?
		ORDER BY created_at ASC, id ASC
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ChecklistItem, 0)
	for rows.Next() {
		c, err := scanChecklistItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// contactColumns lists contact columns in scan order.
const contactColumns = `id, name, role, phone, whatsapp, email, categories_json, created_at, updated_at`

// CreateContact creates contact.
func (r *Repository) CreateContact(ctx context.Context, c domain.TeamContact) error {
	categoriesJSON, err := json.Marshal(c.Categories)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO contacts(`+contactColumns+`)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Role, c.Phone, c.WhatsApp, c.Email, string(categoriesJSON), ts(c.CreatedAt), ts(c.UpdatedAt))
	return err
}

// UpdateContact updates state for the requested operation.
func (r *Repository) UpdateContact(ctx context.Context, c domain.TeamContact) error {
	categoriesJSON, err := json.Marshal(c.Categories)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE contacts
		SET name = ?, role = ?, phone = ?, whatsapp = ?, email = ?, categories_json = ?, updated_at = ?
		WHERE id = ?
	`, c.Name, c.Role, c.Phone, c.WhatsApp, c.Email, string(categoriesJSON), ts(c.UpdatedAt), c.ID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetContact returns contact.
func (r *Repository) GetContact(ctx context.Context, id string) (domain.TeamContact, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id)
	return scanContact(row)
}

// ListContacts lists contacts by name. Category filtering happens after decode.
func (r *Repository) ListContacts(ctx context.Context, filter app.ContactFilter) ([]domain.TeamContact, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY name COLLATE NOCASE ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.TeamContact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		if filter.Category != "" && !c.HasCategory(filter.Category) {
			continue
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// queryRower is the shared single-row query surface of *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// getTaskByID returns one task.
func getTaskByID(ctx context.Context, q queryRower, id string) (domain.Task, error) {
	row := q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	return scanTask(row)
}

// execerContext is the shared exec surface of *sql.DB and *sql.Tx.
type execerContext interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}

// insertStatusChange appends one status-ledger row.
func insertStatusChange(ctx context.Context, execer execerContext, prev domain.Task, to domain.TaskStatus, occurredAt time.Time) error {
	_, err := execer.ExecContext(ctx, `
		INSERT INTO task_status_changes(task_id, project_id, from_status, to_status, occurred_at)
		VALUES(?, ?, ?, ?, ?)
	`, prev.ID, prev.ProjectID, string(prev.Status), string(to), ts(occurredAt))
	return err
}

// scanner is the shared Scan surface of *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanProject handles scan project.
func scanProject(s scanner) (domain.Project, error) {
	var (
		p          domain.Project
		eventDate  sql.NullString
		status     string
		createdRaw string
		updatedRaw string
		archived   sql.NullString
	)
	if err := s.Scan(&p.ID, &p.Slug, &p.Name, &eventDate, &p.EventType, &p.Location, &p.ServiceType, &status, &p.ProgressPercentage, &createdRaw, &updatedRaw, &archived); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Project{}, app.ErrNotFound
		}
		return domain.Project{}, err
	}
	p.EventDate = parseNullDate(eventDate)
	p.Status = domain.ProjectStatus(status)
	p.CreatedAt = parseTS(createdRaw)
	p.UpdatedAt = parseTS(updatedRaw)
	p.ArchivedAt = parseNullTS(archived)
	return p, nil
}

// scanEvent decodes one event row. Role fields are stored as delimited strings.
func scanEvent(s scanner) (domain.Event, error) {
	var (
		e                                                     domain.Event
		startDate                                             string
		endDate, startTime, endTime                           sql.NullString
		photographer, cinematographer, drone, site, assistant string
		createdRaw, updatedRaw                                string
	)
	if err := s.Scan(
		&e.ID, &e.ProjectID, &e.Name, &startDate, &endDate, &startTime, &endTime,
		&e.Location, &e.MapLink, &e.Details, &e.Instructions,
		&photographer, &cinematographer, &drone, &site, &assistant,
		&createdRaw, &updatedRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Event{}, app.ErrNotFound
		}
		return domain.Event{}, err
	}
	start, err := domain.ParseDate(startDate)
	if err != nil {
		return domain.Event{}, fmt.Errorf("decode event start_date: %w", err)
	}
	e.StartDate = start
	e.EndDate = parseNullDate(endDate)
	e.StartTime = domain.ParseOptionalClockTime(startTime.String)
	e.EndTime = domain.ParseOptionalClockTime(endTime.String)
	e.Photographer = domain.ParseRoleList(photographer)
	e.Cinematographer = domain.ParseRoleList(cinematographer)
	e.DroneOperator = domain.ParseRoleList(drone)
	e.SiteManager = domain.ParseRoleList(site)
	e.Assistant = domain.ParseRoleList(assistant)
	e.CreatedAt = parseTS(createdRaw)
	e.UpdatedAt = parseTS(updatedRaw)
	return e, nil
}

// scanTask decodes one task row, normalizing legacy status values.
func scanTask(s scanner) (domain.Task, error) {
	var (
		t                      domain.Task
		department, priority   string
		dueDate                sql.NullString
		status                 string
		createdRaw, updatedRaw string
	)
	if err := s.Scan(
		&t.ID, &t.ProjectID, &t.Title, &department, &t.Category, &priority, &dueDate, &t.EstimatedHours,
		&t.Description, &t.ExpectedDeliverables, &status, &t.AssignedTo, &createdRaw, &updatedRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Task{}, app.ErrNotFound
		}
		return domain.Task{}, err
	}
	t.Department = domain.Department(department)
	t.Priority = domain.Priority(priority)
	t.DueDate = parseNullDate(dueDate)
	t.Status = domain.NormalizeTaskStatus(status)
	t.CreatedAt = parseTS(createdRaw)
	t.UpdatedAt = parseTS(updatedRaw)
	return t, nil
}

// scanChecklistItem handles scan checklist item.
func scanChecklistItem(s scanner) (domain.ChecklistItem, error) {
	var (
		c                      domain.ChecklistItem
		completed              int
		createdRaw, updatedRaw string
	)
	if err := s.Scan(&c.ID, &c.EventID, &c.ItemName, &c.Category, &c.AssignedRole, &completed, &c.Notes, &createdRaw, &updatedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ChecklistItem{}, app.ErrNotFound
		}
		return domain.ChecklistItem{}, err
	}
	c.Completed = completed != 0
	c.CreatedAt = parseTS(createdRaw)
	c.UpdatedAt = parseTS(updatedRaw)
	return c, nil
}

// scanContact handles scan contact.
func scanContact(s scanner) (domain.TeamContact, error) {
	var (
		c                      domain.TeamContact
		categoriesRaw          string
		createdRaw, updatedRaw string
	)
	if err := s.Scan(&c.ID, &c.Name, &c.Role, &c.Phone, &c.WhatsApp, &c.Email, &categoriesRaw, &createdRaw, &updatedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.TeamContact{}, app.ErrNotFound
		}
		return domain.TeamContact{}, err
	}
	if strings.TrimSpace(categoriesRaw) == "" {
		categoriesRaw = "[]"
	}
	if err := json.Unmarshal([]byte(categoriesRaw), &c.Categories); err != nil {
		return domain.TeamContact{}, fmt.Errorf("decode contact categories_json: %w", err)
	}
	c.CreatedAt = parseTS(createdRaw)
	c.UpdatedAt = parseTS(updatedRaw)
	return c, nil
}

// translateNoRows maps a zero-row update to app.ErrNotFound.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

// storedTimeLayout pads fractional seconds so stored text sorts in time order.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func ts(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

func nullableTS(t *time.Time) any {
	if t == nil {
		return nil
	}
	return ts(*t)
}

// parseTS also reads rows written before fractions were padded.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

func parseNullTS(v sql.NullString) *time.Time {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil
	}
	ts := parseTS(v.String)
	return &ts
}

func nullableDate(d *domain.Date) any {
	if d == nil || d.IsZero() {
		return nil
	}
	return d.String()
}

func parseNullDate(v sql.NullString) *domain.Date {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil
	}
	d, err := domain.ParseDate(v.String)
	if err != nil {
		return nil
	}
	return &d
}

// nullableClock stores a time of day as HH:MM:SS.
func nullableClock(c *domain.ClockTime) any {
	if c == nil {
		return nil
	}
	return c.StorageString()
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
