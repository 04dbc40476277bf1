package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hylla/shootdesk/internal/domain"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "shootdesk.snapshot.v1"

// Snapshot is a portable JSON copy of every project and its calendar, tasks, and team.
type Snapshot struct {
	Version        string                  `json:"version"`
	ExportedAt     time.Time               `json:"exported_at"`
	Projects       []SnapshotProject       `json:"projects"`
	Events         []SnapshotEvent         `json:"events"`
	Tasks          []SnapshotTask          `json:"tasks"`
	ChecklistItems []SnapshotChecklistItem `json:"checklist_items"`
	Contacts       []SnapshotContact       `json:"contacts"`
}

// SnapshotProject represents snapshot project data used by this package.
type SnapshotProject struct {
	ID                 string               `json:"id"`
	Slug               string               `json:"slug"`
	Name               string               `json:"name"`
	EventDate          *domain.Date         `json:"event_date,omitempty"`
	EventType          string               `json:"event_type,omitempty"`
	Location           string               `json:"location,omitempty"`
	ServiceType        string               `json:"service_type,omitempty"`
	Status             domain.ProjectStatus `json:"status"`
	ProgressPercentage int                  `json:"progress_percentage"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
	ArchivedAt         *time.Time           `json:"archived_at,omitempty"`
}

// SnapshotEvent stores role fields as name lists keyed like the role slots.
type SnapshotEvent struct {
	ID           string                   `json:"id"`
	ProjectID    string                   `json:"project_id"`
	Name         string                   `json:"name"`
	StartDate    domain.Date              `json:"start_date"`
	EndDate      *domain.Date             `json:"end_date,omitempty"`
	StartTime    *domain.ClockTime        `json:"start_time,omitempty"`
	EndTime      *domain.ClockTime        `json:"end_time,omitempty"`
	Location     string                   `json:"location,omitempty"`
	MapLink      string                   `json:"map_link,omitempty"`
	Details      string                   `json:"details,omitempty"`
	Instructions string                   `json:"instructions,omitempty"`
	Assignments  map[domain.Role][]string `json:"assignments"`
	CreatedAt    time.Time                `json:"created_at"`
	UpdatedAt    time.Time                `json:"updated_at"`
}

// SnapshotTask represents snapshot task data used by this package.
type SnapshotTask struct {
	ID                   string            `json:"id"`
	ProjectID            string            `json:"project_id"`
	Title                string            `json:"title"`
	Department           domain.Department `json:"department"`
	Category             string            `json:"category,omitempty"`
	Priority             domain.Priority   `json:"priority"`
	DueDate              *domain.Date      `json:"due_date,omitempty"`
	EstimatedHours       float64           `json:"estimated_hours,omitempty"`
	Description          string            `json:"description,omitempty"`
	ExpectedDeliverables string            `json:"expected_deliverables,omitempty"`
	Status               domain.TaskStatus `json:"status"`
	AssignedTo           string            `json:"assigned_to,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// SnapshotChecklistItem represents snapshot checklist data used by this package.
type SnapshotChecklistItem struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	ItemName     string    `json:"item_name"`
	Category     string    `json:"category,omitempty"`
	AssignedRole string    `json:"assigned_role,omitempty"`
	Completed    bool      `json:"completed"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SnapshotContact represents snapshot contact data used by this package.
type SnapshotContact struct {
	ID         string                   `json:"id"`
	Name       string                   `json:"name"`
	Role       string                   `json:"role,omitempty"`
	Phone      string                   `json:"phone,omitempty"`
	WhatsApp   string                   `json:"whatsapp,omitempty"`
	Email      string                   `json:"email,omitempty"`
	Categories []domain.ContactCategory `json:"categories"`
	CreatedAt  time.Time                `json:"created_at"`
	UpdatedAt  time.Time                `json:"updated_at"`
}

// ExportSnapshot collects every project with its events, tasks, and checklists, plus the contact directory.
func (s *Service) ExportSnapshot(ctx context.Context, includeArchived bool) (Snapshot, error) {
	projects, err := s.repo.ListProjects(ctx, includeArchived)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Version:        SnapshotVersion,
		ExportedAt:     s.clock().UTC(),
		Projects:       make([]SnapshotProject, 0, len(projects)),
		Events:         make([]SnapshotEvent, 0),
		Tasks:          make([]SnapshotTask, 0),
		ChecklistItems: make([]SnapshotChecklistItem, 0),
		Contacts:       make([]SnapshotContact, 0),
	}
	for _, project := range projects {
		snap.Projects = append(snap.Projects, snapshotProjectFromDomain(project))

		events, listErr := s.repo.ListEvents(ctx, EventFilter{ProjectID: project.ID})
		if listErr != nil {
			return Snapshot{}, listErr
		}
		for _, event := range events {
			snap.Events = append(snap.Events, snapshotEventFromDomain(event))

			items, itemErr := s.repo.ListChecklistItems(ctx, event.ID)
			if itemErr != nil {
				return Snapshot{}, itemErr
			}
			for _, item := range items {
				snap.ChecklistItems = append(snap.ChecklistItems, snapshotChecklistItemFromDomain(item))
			}
		}

		tasks, listErr := s.repo.ListTasks(ctx, TaskFilter{ProjectID: project.ID})
		if listErr != nil {
			return Snapshot{}, listErr
		}
		for _, task := range tasks {
			snap.Tasks = append(snap.Tasks, snapshotTaskFromDomain(task))
		}
	}

	contacts, err := s.repo.ListContacts(ctx, ContactFilter{})
	if err != nil {
		return Snapshot{}, err
	}
	for _, contact := range contacts {
		snap.Contacts = append(snap.Contacts, snapshotContactFromDomain(contact))
	}

	snap.sort()
	return snap, nil
}

// ImportSnapshot upserts every row of a validated snapshot. Existing rows with
// matching IDs are overwritten; rows absent from the snapshot are left alone.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	snap.sort()

	for _, project := range snap.Projects {
		p := project.toDomain()
		if err := upsert(ctx, p.ID, s.repo.GetProject, s.repo.CreateProject, s.repo.UpdateProject, p); err != nil {
			return fmt.Errorf("import project %q: %w", p.ID, err)
		}
	}
	for _, event := range snap.Events {
		e := event.toDomain()
		if err := upsert(ctx, e.ID, s.repo.GetEvent, s.repo.CreateEvent, s.repo.UpdateEvent, e); err != nil {
			return fmt.Errorf("import event %q: %w", e.ID, err)
		}
	}
	for _, task := range snap.Tasks {
		t := task.toDomain()
		if err := upsert(ctx, t.ID, s.repo.GetTask, s.repo.CreateTask, s.repo.UpdateTask, t); err != nil {
			return fmt.Errorf("import task %q: %w", t.ID, err)
		}
	}
	for _, item := range snap.ChecklistItems {
		c := item.toDomain()
		if err := upsert(ctx, c.ID, s.repo.GetChecklistItem, s.repo.CreateChecklistItem, s.repo.UpdateChecklistItem, c); err != nil {
			return fmt.Errorf("import checklist item %q: %w", c.ID, err)
		}
	}
	for _, contact := range snap.Contacts {
		c := contact.toDomain()
		if err := upsert(ctx, c.ID, s.repo.GetContact, s.repo.CreateContact, s.repo.UpdateContact, c); err != nil {
			return fmt.Errorf("import contact %q: %w", c.ID, err)
		}
	}
	s.logger.Info("snapshot imported",
		"projects", len(snap.Projects),
		"events", len(snap.Events),
		"tasks", len(snap.Tasks),
		"checklist_items", len(snap.ChecklistItems),
		"contacts", len(snap.Contacts),
	)
	return nil
}

// upsert updates the row when get finds it and creates it on ErrNotFound.
func upsert[T any](
	ctx context.Context,
	id string,
	get func(context.Context, string) (T, error),
	create, update func(context.Context, T) error,
	row T,
) error {
	if _, err := get(ctx, id); err == nil {
		return update(ctx, row)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return create(ctx, row)
}

// Validate checks required fields and cross-references, and canonicalizes enum values in place.
func (s *Snapshot) Validate() error {
	if s.Version != "" && s.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version: %q", s.Version)
	}

	projectIDs := map[string]struct{}{}
	for i, p := range s.Projects {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("projects[%d].id is required", i)
		}
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("projects[%d].name is required", i)
		}
		if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
			return fmt.Errorf("projects[%d] timestamps are required", i)
		}
		status, err := domain.ParseProjectStatus(string(p.Status))
		if err != nil {
			return fmt.Errorf("projects[%d].status: %w", i, err)
		}
		if p.ProgressPercentage < 0 || p.ProgressPercentage > 100 {
			return fmt.Errorf("projects[%d].progress_percentage must be 0..100", i)
		}
		if _, exists := projectIDs[p.ID]; exists {
			return fmt.Errorf("duplicate project id: %q", p.ID)
		}
		s.Projects[i].Status = status
		if strings.TrimSpace(p.Slug) == "" {
			s.Projects[i].Slug = fallbackSlug(p.Name)
		}
		projectIDs[p.ID] = struct{}{}
	}

	eventIDs := map[string]struct{}{}
	for i, e := range s.Events {
		if strings.TrimSpace(e.ID) == "" {
			return fmt.Errorf("events[%d].id is required", i)
		}
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("events[%d].name is required", i)
		}
		if e.StartDate.IsZero() {
			return fmt.Errorf("events[%d].start_date is required", i)
		}
		if e.EndDate != nil && e.EndDate.Before(e.StartDate) {
			return fmt.Errorf("events[%d].end_date is before start_date", i)
		}
		for role := range e.Assignments {
			if _, err := domain.ParseRole(string(role)); err != nil {
				return fmt.Errorf("events[%d].assignments: %w: %q", i, err, role)
			}
		}
		if e.CreatedAt.IsZero() || e.UpdatedAt.IsZero() {
			return fmt.Errorf("events[%d] timestamps are required", i)
		}
		if _, ok := projectIDs[e.ProjectID]; !ok {
			return fmt.Errorf("events[%d] references unknown project_id %q", i, e.ProjectID)
		}
		if _, exists := eventIDs[e.ID]; exists {
			return fmt.Errorf("duplicate event id: %q", e.ID)
		}
		eventIDs[e.ID] = struct{}{}
	}

	taskIDs := map[string]struct{}{}
	for i, t := range s.Tasks {
		if strings.TrimSpace(t.ID) == "" {
			return fmt.Errorf("tasks[%d].id is required", i)
		}
		if strings.TrimSpace(t.Title) == "" {
			return fmt.Errorf("tasks[%d].title is required", i)
		}
		workflow, err := domain.WorkflowFor(t.Department)
		if err != nil {
			return fmt.Errorf("tasks[%d].department: %w", i, err)
		}
		status := domain.NormalizeTaskStatus(string(t.Status))
		if status == "" {
			status = workflow.Initial()
		}
		if !workflow.Contains(status) {
			return fmt.Errorf("tasks[%d].status %q is not a %s status", i, t.Status, t.Department)
		}
		priority, err := domain.ParsePriority(string(t.Priority))
		if err != nil {
			return fmt.Errorf("tasks[%d].priority: %w", i, err)
		}
		if t.CreatedAt.IsZero() || t.UpdatedAt.IsZero() {
			return fmt.Errorf("tasks[%d] timestamps are required", i)
		}
		if _, ok := projectIDs[t.ProjectID]; !ok {
			return fmt.Errorf("tasks[%d] references unknown project_id %q", i, t.ProjectID)
		}
		if _, exists := taskIDs[t.ID]; exists {
			return fmt.Errorf("duplicate task id: %q", t.ID)
		}
		s.Tasks[i].Status = status
		s.Tasks[i].Priority = priority
		taskIDs[t.ID] = struct{}{}
	}

	itemIDs := map[string]struct{}{}
	for i, item := range s.ChecklistItems {
		if strings.TrimSpace(item.ID) == "" {
			return fmt.Errorf("checklist_items[%d].id is required", i)
		}
		if strings.TrimSpace(item.ItemName) == "" {
			return fmt.Errorf("checklist_items[%d].item_name is required", i)
		}
		if _, ok := eventIDs[item.EventID]; !ok {
			return fmt.Errorf("checklist_items[%d] references unknown event_id %q", i, item.EventID)
		}
		if _, exists := itemIDs[item.ID]; exists {
			return fmt.Errorf("duplicate checklist item id: %q", item.ID)
		}
		itemIDs[item.ID] = struct{}{}
	}

	contactIDs := map[string]struct{}{}
	for i, c := range s.Contacts {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("contacts[%d].id is required", i)
		}
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("contacts[%d].name is required", i)
		}
		for _, category := range c.Categories {
			if _, err := domain.ParseContactCategory(string(category)); err != nil {
				return fmt.Errorf("contacts[%d].categories: %w", i, err)
			}
		}
		if _, exists := contactIDs[c.ID]; exists {
			return fmt.Errorf("duplicate contact id: %q", c.ID)
		}
		contactIDs[c.ID] = struct{}{}
	}

	return nil
}

// sort orders every section deterministically so exports diff cleanly.
func (s *Snapshot) sort() {
	sort.Slice(s.Projects, func(i, j int) bool {
		return s.Projects[i].ID < s.Projects[j].ID
	})
	sort.Slice(s.Events, func(i, j int) bool {
		a := s.Events[i]
		b := s.Events[j]
		if a.ProjectID == b.ProjectID {
			if c := a.StartDate.Compare(b.StartDate); c != 0 {
				return c < 0
			}
			return a.ID < b.ID
		}
		return a.ProjectID < b.ProjectID
	})
	sort.Slice(s.Tasks, func(i, j int) bool {
		a := s.Tasks[i]
		b := s.Tasks[j]
		if a.ProjectID == b.ProjectID {
			if a.Department == b.Department {
				return a.ID < b.ID
			}
			return a.Department < b.Department
		}
		return a.ProjectID < b.ProjectID
	})
	sort.Slice(s.ChecklistItems, func(i, j int) bool {
		a := s.ChecklistItems[i]
		b := s.ChecklistItems[j]
		if a.EventID == b.EventID {
			return a.ID < b.ID
		}
		return a.EventID < b.EventID
	})
	sort.Slice(s.Contacts, func(i, j int) bool {
		return s.Contacts[i].ID < s.Contacts[j].ID
	})
}

func snapshotProjectFromDomain(p domain.Project) SnapshotProject {
	return SnapshotProject{
		ID:                 p.ID,
		Slug:               p.Slug,
		Name:               p.Name,
		EventDate:          copyDatePtr(p.EventDate),
		EventType:          p.EventType,
		Location:           p.Location,
		ServiceType:        p.ServiceType,
		Status:             p.Status,
		ProgressPercentage: p.ProgressPercentage,
		CreatedAt:          p.CreatedAt.UTC(),
		UpdatedAt:          p.UpdatedAt.UTC(),
		ArchivedAt:         copyTimePtr(p.ArchivedAt),
	}
}

func snapshotEventFromDomain(e domain.Event) SnapshotEvent {
	assignments := map[domain.Role][]string{}
	for _, role := range domain.EventRoles() {
		if names := e.RoleField(role); len(names) > 0 {
			assignments[role] = append([]string(nil), names...)
		}
	}
	return SnapshotEvent{
		ID:           e.ID,
		ProjectID:    e.ProjectID,
		Name:         e.Name,
		StartDate:    e.StartDate,
		EndDate:      copyDatePtr(e.EndDate),
		StartTime:    copyClockPtr(e.StartTime),
		EndTime:      copyClockPtr(e.EndTime),
		Location:     e.Location,
		MapLink:      e.MapLink,
		Details:      e.Details,
		Instructions: e.Instructions,
		Assignments:  assignments,
		CreatedAt:    e.CreatedAt.UTC(),
		UpdatedAt:    e.UpdatedAt.UTC(),
	}
}

func snapshotTaskFromDomain(t domain.Task) SnapshotTask {
	return SnapshotTask{
		ID:                   t.ID,
		ProjectID:            t.ProjectID,
		Title:                t.Title,
		Department:           t.Department,
		Category:             t.Category,
		Priority:             t.Priority,
		DueDate:              copyDatePtr(t.DueDate),
		EstimatedHours:       t.EstimatedHours,
		Description:          t.Description,
		ExpectedDeliverables: t.ExpectedDeliverables,
		Status:               t.Status,
		AssignedTo:           t.AssignedTo,
		CreatedAt:            t.CreatedAt.UTC(),
		UpdatedAt:            t.UpdatedAt.UTC(),
	}
}

func snapshotChecklistItemFromDomain(c domain.ChecklistItem) SnapshotChecklistItem {
	return SnapshotChecklistItem{
		ID:           c.ID,
		EventID:      c.EventID,
		ItemName:     c.ItemName,
		Category:     c.Category,
		AssignedRole: c.AssignedRole,
		Completed:    c.Completed,
		Notes:        c.Notes,
		CreatedAt:    c.CreatedAt.UTC(),
		UpdatedAt:    c.UpdatedAt.UTC(),
	}
}

func snapshotContactFromDomain(c domain.TeamContact) SnapshotContact {
	return SnapshotContact{
		ID:         c.ID,
		Name:       c.Name,
		Role:       c.Role,
		Phone:      c.Phone,
		WhatsApp:   c.WhatsApp,
		Email:      c.Email,
		Categories: append([]domain.ContactCategory{}, c.Categories...),
		CreatedAt:  c.CreatedAt.UTC(),
		UpdatedAt:  c.UpdatedAt.UTC(),
	}
}

func (p SnapshotProject) toDomain() domain.Project {
	slug := strings.TrimSpace(p.Slug)
	if slug == "" {
		slug = fallbackSlug(p.Name)
	}
	return domain.Project{
		ID:                 strings.TrimSpace(p.ID),
		Slug:               slug,
		Name:               strings.TrimSpace(p.Name),
		EventDate:          copyDatePtr(p.EventDate),
		EventType:          p.EventType,
		Location:           p.Location,
		ServiceType:        p.ServiceType,
		Status:             p.Status,
		ProgressPercentage: p.ProgressPercentage,
		CreatedAt:          p.CreatedAt.UTC(),
		UpdatedAt:          p.UpdatedAt.UTC(),
		ArchivedAt:         copyTimePtr(p.ArchivedAt),
	}
}

func (e SnapshotEvent) toDomain() domain.Event {
	return domain.Event{
		ID:              strings.TrimSpace(e.ID),
		ProjectID:       strings.TrimSpace(e.ProjectID),
		Name:            strings.TrimSpace(e.Name),
		StartDate:       e.StartDate,
		EndDate:         copyDatePtr(e.EndDate),
		StartTime:       copyClockPtr(e.StartTime),
		EndTime:         copyClockPtr(e.EndTime),
		Location:        e.Location,
		MapLink:         e.MapLink,
		Details:         e.Details,
		Instructions:    e.Instructions,
		Photographer:    domain.NewRoleList(e.assigned(domain.RolePhotographer)...),
		Cinematographer: domain.NewRoleList(e.assigned(domain.RoleCinematographer)...),
		DroneOperator:   domain.NewRoleList(e.assigned(domain.RoleDroneOperator)...),
		SiteManager:     domain.NewRoleList(e.assigned(domain.RoleSiteManager)...),
		Assistant:       domain.NewRoleList(e.assigned(domain.RoleAssistant)...),
		CreatedAt:       e.CreatedAt.UTC(),
		UpdatedAt:       e.UpdatedAt.UTC(),
	}
}

// assigned returns the names for one role, accepting non-canonical role keys.
func (e SnapshotEvent) assigned(role domain.Role) []string {
	var out []string
	for raw, names := range e.Assignments {
		if parsed, err := domain.ParseRole(string(raw)); err == nil && parsed == role {
			out = append(out, names...)
		}
	}
	return out
}

func (t SnapshotTask) toDomain() domain.Task {
	return domain.Task{
		ID:                   strings.TrimSpace(t.ID),
		ProjectID:            strings.TrimSpace(t.ProjectID),
		Title:                strings.TrimSpace(t.Title),
		Department:           t.Department,
		Category:             t.Category,
		Priority:             t.Priority,
		DueDate:              copyDatePtr(t.DueDate),
		EstimatedHours:       t.EstimatedHours,
		Description:          t.Description,
		ExpectedDeliverables: t.ExpectedDeliverables,
		Status:               t.Status,
		AssignedTo:           strings.TrimSpace(t.AssignedTo),
		CreatedAt:            t.CreatedAt.UTC(),
		UpdatedAt:            t.UpdatedAt.UTC(),
	}
}

func (c SnapshotChecklistItem) toDomain() domain.ChecklistItem {
	return domain.ChecklistItem{
		ID:           strings.TrimSpace(c.ID),
		EventID:      strings.TrimSpace(c.EventID),
		ItemName:     strings.TrimSpace(c.ItemName),
		Category:     c.Category,
		AssignedRole: c.AssignedRole,
		Completed:    c.Completed,
		Notes:        c.Notes,
		CreatedAt:    c.CreatedAt.UTC(),
		UpdatedAt:    c.UpdatedAt.UTC(),
	}
}

func (c SnapshotContact) toDomain() domain.TeamContact {
	categories := make([]domain.ContactCategory, 0, len(c.Categories))
	for _, raw := range c.Categories {
		if category, err := domain.ParseContactCategory(string(raw)); err == nil {
			categories = append(categories, category)
		}
	}
	return domain.TeamContact{
		ID:         strings.TrimSpace(c.ID),
		Name:       strings.TrimSpace(c.Name),
		Role:       c.Role,
		Phone:      c.Phone,
		WhatsApp:   c.WhatsApp,
		Email:      c.Email,
		Categories: categories,
		CreatedAt:  c.CreatedAt.UTC(),
		UpdatedAt:  c.UpdatedAt.UTC(),
	}
}

// fallbackSlug derives a slug from a project name.
func fallbackSlug(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "-")
	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}
	return strings.Trim(name, "-")
}

// copyTimePtr copies time ptr.
func copyTimePtr(in *time.Time) *time.Time {
	if in == nil {
		return nil
	}
	t := in.UTC().Truncate(time.Second)
	return &t
}

func copyDatePtr(in *domain.Date) *domain.Date {
	if in == nil {
		return nil
	}
	d := *in
	return &d
}

func copyClockPtr(in *domain.ClockTime) *domain.ClockTime {
	if in == nil {
		return nil
	}
	c := *in
	return &c
}
