// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// ErrTransitionRejected reports a status move the workflow refuses.
var ErrTransitionRejected = errors.New("transition rejected")

// EventRef identifies one event occurrence on one day.
type EventRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Date  string `json:"date"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// AvailabilityRequest asks whether one person is free in one window.
type AvailabilityRequest struct {
	Person         string `json:"person"`
	Date           string `json:"date"`
	Start          string `json:"start"`
	End            string `json:"end"`
	ExcludeEventID string `json:"exclude_event_id,omitempty"`
}

// TeamAvailabilityRequest asks the same question for several people. An empty
// People list means every known contact.
type TeamAvailabilityRequest struct {
	People         []string `json:"people,omitempty"`
	Date           string   `json:"date"`
	Start          string   `json:"start"`
	End            string   `json:"end"`
	ExcludeEventID string   `json:"exclude_event_id,omitempty"`
}

// Availability is one person's answer.
type Availability struct {
	Person        string    `json:"person"`
	Available     bool      `json:"available"`
	Reason        string    `json:"reason"`
	BlockingEvent *EventRef `json:"blocking_event,omitempty"`
	BlockingRoles []string  `json:"blocking_roles,omitempty"`
}

// ListEventsRequest filters the event list.
type ListEventsRequest struct {
	ProjectID  string `json:"project_id,omitempty"`
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
	AssignedTo string `json:"assigned_to,omitempty"`
}

// Event is the transport shape of one scheduled event.
type Event struct {
	ID           string              `json:"id"`
	ProjectID    string              `json:"project_id"`
	Name         string              `json:"name"`
	StartDate    string              `json:"start_date"`
	EndDate      string              `json:"end_date,omitempty"`
	StartTime    string              `json:"start_time,omitempty"`
	EndTime      string              `json:"end_time,omitempty"`
	Location     string              `json:"location,omitempty"`
	MapLink      string              `json:"map_link,omitempty"`
	Details      string              `json:"details,omitempty"`
	Instructions string              `json:"instructions,omitempty"`
	Assignments  map[string][]string `json:"assignments"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// Conflict is one double-booking finding.
type Conflict struct {
	Person        string   `json:"person"`
	Role          string   `json:"role"`
	Date          string   `json:"date"`
	BlockingEvent EventRef `json:"blocking_event"`
}

// Task is the transport shape of one post-production task.
type Task struct {
	ID                   string    `json:"id"`
	ProjectID            string    `json:"project_id"`
	Title                string    `json:"title"`
	Department           string    `json:"department"`
	Category             string    `json:"category,omitempty"`
	Priority             string    `json:"priority"`
	DueDate              string    `json:"due_date,omitempty"`
	EstimatedHours       float64   `json:"estimated_hours,omitempty"`
	Description          string    `json:"description,omitempty"`
	ExpectedDeliverables string    `json:"expected_deliverables,omitempty"`
	Status               string    `json:"status"`
	StatusLabel          string    `json:"status_label"`
	AssignedTo           string    `json:"assigned_to,omitempty"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// BoardRequest selects one department board.
type BoardRequest struct {
	ProjectID  string `json:"project_id"`
	Department string `json:"department"`
}

// BoardColumn is one status column.
type BoardColumn struct {
	Status string `json:"status"`
	Title  string `json:"title"`
	Tasks  []Task `json:"tasks"`
}

// Board is one department's column view.
type Board struct {
	ProjectID  string        `json:"project_id"`
	Department string        `json:"department"`
	Columns    []BoardColumn `json:"columns"`
	Orphans    []Task        `json:"orphans,omitempty"`
}

// ChangeTaskStatusRequest moves one task.
type ChangeTaskStatusRequest struct {
	TaskID string `json:"task_id,omitempty"`
	Status string `json:"status"`
	Force  bool   `json:"force,omitempty"`
}

// TaskStatusResult reports the outcome of one status change.
type TaskStatusResult struct {
	Task    Task   `json:"task"`
	From    string `json:"from"`
	Changed bool   `json:"changed"`
}

// StatusChange is one entry of a task's status history.
type StatusChange struct {
	From       string    `json:"from"`
	To         string    `json:"to"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ChecklistItem is one equipment or preparation item.
type ChecklistItem struct {
	ID           string `json:"id"`
	ItemName     string `json:"item_name"`
	Category     string `json:"category,omitempty"`
	AssignedRole string `json:"assigned_role,omitempty"`
	Completed    bool   `json:"completed"`
	Notes        string `json:"notes,omitempty"`
}

// EventProgress summarizes one event's checklist.
type EventProgress struct {
	EventID   string          `json:"event_id"`
	Total     int             `json:"total"`
	Completed int             `json:"completed"`
	Percent   int             `json:"percent"`
	Items     []ChecklistItem `json:"items"`
}

// Contact is one team directory entry.
type Contact struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Role       string   `json:"role,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	WhatsApp   string   `json:"whatsapp,omitempty"`
	Email      string   `json:"email,omitempty"`
	Categories []string `json:"categories"`
}

// PersonScheduleRequest selects one person's agenda.
type PersonScheduleRequest struct {
	Person string `json:"person"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
}

// ScheduledEvent is one event plus the roles the person holds on it.
type ScheduledEvent struct {
	Event Event    `json:"event"`
	Roles []string `json:"roles"`
}

// PersonSchedule is one person's events, tasks, and checklist duties.
type PersonSchedule struct {
	Person         string           `json:"person"`
	Contact        *Contact         `json:"contact,omitempty"`
	Events         []ScheduledEvent `json:"events"`
	Tasks          []Task           `json:"tasks"`
	ChecklistItems []ChecklistItem  `json:"checklist_items"`
}

// ProjectOverviewRequest selects one project summary.
type ProjectOverviewRequest struct {
	ProjectID string `json:"project_id"`
}

// DepartmentOverview counts one department's tasks per status.
type DepartmentOverview struct {
	Department   string         `json:"department"`
	TotalTasks   int            `json:"total_tasks"`
	Delivered    int            `json:"delivered"`
	StatusCounts map[string]int `json:"status_counts"`
}

// ProjectOverview is a summary-first snapshot of one booking.
type ProjectOverview struct {
	CapturedAt         time.Time            `json:"captured_at"`
	StateHash          string               `json:"state_hash"`
	ProjectID          string               `json:"project_id"`
	ProjectName        string               `json:"project_name"`
	Status             string               `json:"status"`
	ProgressPercentage int                  `json:"progress_percentage"`
	Events             []Event              `json:"events"`
	Departments        []DepartmentOverview `json:"departments"`
	ConflictCount      int                  `json:"conflict_count"`
	Warnings           []string             `json:"warnings"`
}

// AvailabilityService answers crew availability questions.
type AvailabilityService interface {
	CheckAvailability(context.Context, AvailabilityRequest) (Availability, error)
	TeamAvailability(context.Context, TeamAvailabilityRequest) ([]Availability, error)
}

// EventService reads the shoot calendar.
type EventService interface {
	ListEvents(context.Context, ListEventsRequest) ([]Event, error)
	EventConflicts(context.Context, string) ([]Conflict, error)
	EventProgress(context.Context, string) (EventProgress, error)
	PersonSchedule(context.Context, PersonScheduleRequest) (PersonSchedule, error)
	PatchEvent(context.Context, PatchEventRequest) (EventWriteResult, error)
}

// WorkflowService drives the post-production boards.
type WorkflowService interface {
	Board(context.Context, BoardRequest) (Board, error)
	ChangeTaskStatus(context.Context, ChangeTaskStatusRequest) (TaskStatusResult, error)
	TaskHistory(context.Context, string, int) ([]StatusChange, error)
	AssigneeCandidates(context.Context) ([]Contact, error)
	PatchTask(context.Context, PatchTaskRequest) (TaskEditResult, error)
}

// OverviewService builds project summaries.
type OverviewService interface {
	ProjectOverview(context.Context, ProjectOverviewRequest) (ProjectOverview, error)
}

// Services bundles every surface the transports expose.
type Services interface {
	AvailabilityService
	EventService
	WorkflowService
	OverviewService
}
