package app

import (
	"context"
	"time"

	"github.com/hylla/shootdesk/internal/domain"
)

// EventFilter narrows event queries. Zero values match everything.
// From/To select events whose date range intersects [From, To].
type EventFilter struct {
	ProjectID  string
	From       domain.Date
	To         domain.Date
	AssignedTo string
}

// TaskFilter narrows task queries. Zero values match everything.
type TaskFilter struct {
	ProjectID  string
	AssignedTo string
	Department domain.Department
	DueFrom    domain.Date
	DueTo      domain.Date
}

// ContactFilter narrows contact queries.
type ContactFilter struct {
	Category domain.ContactCategory
}

// TaskStatusWriter persists a single-field status change.
type TaskStatusWriter interface {
	UpdateTaskStatus(context.Context, string, domain.TaskStatus, time.Time) error
}

// Repository represents the storage collaborator used by this package.
type Repository interface {
	TaskStatusWriter

	CreateProject(context.Context, domain.Project) error
	UpdateProject(context.Context, domain.Project) error
	GetProject(context.Context, string) (domain.Project, error)
	ListProjects(context.Context, bool) ([]domain.Project, error)

	CreateEvent(context.Context, domain.Event) error
	UpdateEvent(context.Context, domain.Event) error
	GetEvent(context.Context, string) (domain.Event, error)
	ListEvents(context.Context, EventFilter) ([]domain.Event, error)

	CreateTask(context.Context, domain.Task) error
	UpdateTask(context.Context, domain.Task) error
	GetTask(context.Context, string) (domain.Task, error)
	ListTasks(context.Context, TaskFilter) ([]domain.Task, error)
	ListTaskStatusChanges(context.Context, string, int) ([]domain.TaskStatusChange, error)

	CreateChecklistItem(context.Context, domain.ChecklistItem) error
	UpdateChecklistItem(context.Context, domain.ChecklistItem) error
	GetChecklistItem(context.Context, string) (domain.ChecklistItem, error)
	ListChecklistItems(context.Context, string) ([]domain.ChecklistItem, error)

	CreateContact(context.Context, domain.TeamContact) error
	UpdateContact(context.Context, domain.TeamContact) error
	GetContact(context.Context, string) (domain.TeamContact, error)
	ListContacts(context.Context, ContactFilter) ([]domain.TeamContact, error)
}
