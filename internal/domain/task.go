package domain

import (
	"slices"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var validPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// ParsePriority canonicalizes one priority value. Empty input yields medium.
func ParsePriority(raw string) (Priority, error) {
	priority := Priority(strings.TrimSpace(strings.ToLower(raw)))
	if priority == "" {
		return PriorityMedium, nil
	}
	if !slices.Contains(validPriorities, priority) {
		return "", ErrInvalidPriority
	}
	return priority, nil
}

type Task struct {
	ID                   string
	ProjectID            string
	Title                string
	Department           Department
	Category             string
	Priority             Priority
	DueDate              *Date
	EstimatedHours       float64
	Description          string
	ExpectedDeliverables string
	Status               TaskStatus
	AssignedTo           string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type TaskInput struct {
	ID                   string
	ProjectID            string
	Title                string
	Department           Department
	Category             string
	Priority             Priority
	DueDate              *Date
	EstimatedHours       float64
	Description          string
	ExpectedDeliverables string
	AssignedTo           string
}

// NewTask validates a task and places it in its department's initial state.
func NewTask(in TaskInput, now time.Time) (Task, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.Title = strings.TrimSpace(in.Title)

	if in.ID == "" {
		return Task{}, ErrInvalidID
	}
	if in.ProjectID == "" {
		return Task{}, ErrInvalidID
	}
	if in.Title == "" {
		return Task{}, ErrInvalidTitle
	}
	wf, err := WorkflowFor(in.Department)
	if err != nil {
		return Task{}, err
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !slices.Contains(validPriorities, in.Priority) {
		return Task{}, ErrInvalidPriority
	}
	if in.EstimatedHours < 0 {
		return Task{}, ErrInvalidEstimate
	}

	return Task{
		ID:                   in.ID,
		ProjectID:            in.ProjectID,
		Title:                in.Title,
		Department:           in.Department,
		Category:             strings.TrimSpace(in.Category),
		Priority:             in.Priority,
		DueDate:              cloneDate(in.DueDate),
		EstimatedHours:       in.EstimatedHours,
		Description:          strings.TrimSpace(in.Description),
		ExpectedDeliverables: strings.TrimSpace(in.ExpectedDeliverables),
		Status:               wf.Initial(),
		AssignedTo:           strings.TrimSpace(in.AssignedTo),
		CreatedAt:            now.UTC(),
		UpdatedAt:            now.UTC(),
	}, nil
}

// TaskDetails holds the editable non-status fields of a task.
type TaskDetails struct {
	Title                string
	Category             string
	Priority             Priority
	DueDate              *Date
	EstimatedHours       float64
	Description          string
	ExpectedDeliverables string
	AssignedTo           string
}

// UpdateDetails replaces the editable fields. Status and department are not touched.
func (t *Task) UpdateDetails(in TaskDetails, now time.Time) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return ErrInvalidTitle
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !slices.Contains(validPriorities, in.Priority) {
		return ErrInvalidPriority
	}
	if in.EstimatedHours < 0 {
		return ErrInvalidEstimate
	}
	t.Title = title
	t.Category = strings.TrimSpace(in.Category)
	t.Priority = in.Priority
	t.DueDate = cloneDate(in.DueDate)
	t.EstimatedHours = in.EstimatedHours
	t.Description = strings.TrimSpace(in.Description)
	t.ExpectedDeliverables = strings.TrimSpace(in.ExpectedDeliverables)
	t.AssignedTo = strings.TrimSpace(in.AssignedTo)
	t.UpdatedAt = now.UTC()
	return nil
}

// ChangeDepartment moves the task to another workflow family. The status
// resets to the new department's initial state; statuses are never mapped
// across departments.
func (t *Task) ChangeDepartment(dept Department, now time.Time) error {
	wf, err := WorkflowFor(dept)
	if err != nil {
		return err
	}
	if t.Department == dept {
		return nil
	}
	t.Department = dept
	t.Status = wf.Initial()
	t.UpdatedAt = now.UTC()
	return nil
}

// Workflow returns the pipeline governing the task.
func (t Task) Workflow() (Workflow, error) {
	return WorkflowFor(t.Department)
}

// Delivered reports whether the task sits in its department's terminal state.
func (t Task) Delivered() bool {
	wf, err := WorkflowFor(t.Department)
	if err != nil {
		return false
	}
	return t.Status == wf.Terminal()
}

func cloneDate(d *Date) *Date {
	if d == nil || d.IsZero() {
		return nil
	}
	out := *d
	return &out
}
