package common

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hylla/shootdesk/internal/app"
	"github.com/hylla/shootdesk/internal/domain"
)

// PatchEventRequest edits one event. Nil fields keep their stored value; an
// empty end_date, start_time, or end_time clears it. Roles named in
// Assignments replace that role's list and other roles are kept.
type PatchEventRequest struct {
	EventID           string              `json:"event_id,omitempty"`
	Assignments       map[string][]string `json:"assignments,omitempty"`
	StartDate         *string             `json:"start_date,omitempty"`
	EndDate           *string             `json:"end_date,omitempty"`
	StartTime         *string             `json:"start_time,omitempty"`
	EndTime           *string             `json:"end_time,omitempty"`
	ExpectedUpdatedAt *time.Time          `json:"expected_updated_at,omitempty"`
}

// EventWriteResult reports an edited event. StaleWrite means someone else
// saved the event after ExpectedUpdatedAt; the edit was written anyway.
type EventWriteResult struct {
	Event      Event      `json:"event"`
	Conflicts  []Conflict `json:"conflicts"`
	StaleWrite bool       `json:"stale_write"`
}

// PatchTaskRequest edits one task. Nil fields keep their stored value.
type PatchTaskRequest struct {
	TaskID               string   `json:"task_id,omitempty"`
	Title                *string  `json:"title,omitempty"`
	Department           *string  `json:"department,omitempty"`
	Category             *string  `json:"category,omitempty"`
	Priority             *string  `json:"priority,omitempty"`
	DueDate              *string  `json:"due_date,omitempty"`
	EstimatedHours       *float64 `json:"estimated_hours,omitempty"`
	Description          *string  `json:"description,omitempty"`
	ExpectedDeliverables *string  `json:"expected_deliverables,omitempty"`
	AssignedTo           *string  `json:"assigned_to,omitempty"`
}

// TaskEditResult reports an edited task. A department change moves the task
// to the new pipeline's first status and sets StatusReset.
type TaskEditResult struct {
	Task           Task   `json:"task"`
	StatusReset    bool   `json:"status_reset"`
	PreviousStatus string `json:"previous_status,omitempty"`
}

// PatchEvent reschedules and restaffs one event. Conflicts are advisory.
func (a *AppServiceAdapter) PatchEvent(ctx context.Context, in PatchEventRequest) (EventWriteResult, error) {
	if a == nil || a.service == nil {
		return EventWriteResult{}, fmt.Errorf("app service is not configured: %w", ErrInvalidRequest)
	}
	eventID := strings.TrimSpace(in.EventID)
	if eventID == "" {
		return EventWriteResult{}, fmt.Errorf("event_id is required: %w", ErrInvalidRequest)
	}
	assignments, err := parseAssignmentPatch(in.Assignments)
	if err != nil {
		return EventWriteResult{}, err
	}
	reschedule := in.StartDate != nil || in.EndDate != nil || in.StartTime != nil || in.EndTime != nil
	if assignments == nil && !reschedule {
		return EventWriteResult{}, fmt.Errorf("nothing to change: %w", ErrInvalidRequest)
	}

	var res app.EventWriteResult
	stale := false
	expected := in.ExpectedUpdatedAt
	if reschedule {
		current, err := a.service.GetEvent(ctx, eventID)
		if err != nil {
			return EventWriteResult{}, mapAppError("patch event", err)
		}
		schedule, err := mergeSchedule(current, in)
		if err != nil {
			return EventWriteResult{}, err
		}
		schedule.ExpectedUpdatedAt = expected
		res, err = a.service.RescheduleEvent(ctx, schedule)
		if err != nil {
			return EventWriteResult{}, mapAppError("reschedule event", err)
		}
		stale = res.StaleWrite
		written := res.Event.UpdatedAt
		expected = &written
	}
	if assignments != nil {
		res, err = a.service.UpdateEventAssignments(ctx, app.UpdateEventAssignmentsInput{
			EventID:           eventID,
			Assignments:       assignments,
			ExpectedUpdatedAt: expected,
		})
		if err != nil {
			return EventWriteResult{}, mapAppError("update event assignments", err)
		}
		stale = stale || res.StaleWrite
	}
	return EventWriteResult{
		Event:      mapEvent(res.Event),
		Conflicts:  mapConflicts(res.Conflicts),
		StaleWrite: stale,
	}, nil
}

// PatchTask edits one task's details and department.
func (a *AppServiceAdapter) PatchTask(ctx context.Context, in PatchTaskRequest) (TaskEditResult, error) {
	if a == nil || a.service == nil {
		return TaskEditResult{}, fmt.Errorf("app service is not configured: %w", ErrInvalidRequest)
	}
	taskID := strings.TrimSpace(in.TaskID)
	if taskID == "" {
		return TaskEditResult{}, fmt.Errorf("task_id is required: %w", ErrInvalidRequest)
	}
	current, err := a.service.GetTask(ctx, taskID)
	if err != nil {
		return TaskEditResult{}, mapAppError("patch task", err)
	}

	details := domain.TaskDetails{
		Title:                current.Title,
		Category:             current.Category,
		Priority:             current.Priority,
		DueDate:              current.DueDate,
		EstimatedHours:       current.EstimatedHours,
		Description:          current.Description,
		ExpectedDeliverables: current.ExpectedDeliverables,
		AssignedTo:           current.AssignedTo,
	}
	setString(&details.Title, in.Title)
	setString(&details.Category, in.Category)
	setString(&details.Description, in.Description)
	setString(&details.ExpectedDeliverables, in.ExpectedDeliverables)
	setString(&details.AssignedTo, in.AssignedTo)
	if in.EstimatedHours != nil {
		details.EstimatedHours = *in.EstimatedHours
	}
	if in.Priority != nil {
		if details.Priority, err = domain.ParsePriority(*in.Priority); err != nil {
			return TaskEditResult{}, mapAppError("patch task", err)
		}
	}
	if in.DueDate != nil {
		due, err := parseOptionalDate("due_date", *in.DueDate)
		if err != nil {
			return TaskEditResult{}, err
		}
		details.DueDate = nil
		if !due.IsZero() {
			details.DueDate = &due
		}
	}
	var dept domain.Department
	if in.Department != nil {
		if dept, err = domain.ParseDepartment(*in.Department); err != nil {
			return TaskEditResult{}, mapAppError("patch task", err)
		}
	}

	updated, err := a.service.UpdateTask(ctx, app.UpdateTaskInput{TaskID: taskID, Department: dept, Details: details})
	if err != nil {
		return TaskEditResult{}, mapAppError("update task", err)
	}
	out := TaskEditResult{Task: mapTask(updated)}
	if updated.Department != current.Department && updated.Status != current.Status {
		out.StatusReset = true
		out.PreviousStatus = string(current.Status)
	}
	return out, nil
}

// mergeSchedule overlays the requested date and window onto the stored event.
func mergeSchedule(current domain.Event, in PatchEventRequest) (app.RescheduleEventInput, error) {
	out := app.RescheduleEventInput{
		EventID:   current.ID,
		StartDate: current.StartDate,
		EndDate:   current.EndDate,
		StartTime: current.StartTime,
		EndTime:   current.EndTime,
	}
	if in.StartDate != nil {
		start, err := domain.ParseDate(*in.StartDate)
		if err != nil {
			return app.RescheduleEventInput{}, fmt.Errorf("start_date must be YYYY-MM-DD: %w", errors.Join(ErrInvalidRequest, err))
		}
		out.StartDate = start
	}
	if in.EndDate != nil {
		end, err := parseOptionalDate("end_date", *in.EndDate)
		if err != nil {
			return app.RescheduleEventInput{}, err
		}
		out.EndDate = nil
		if !end.IsZero() {
			out.EndDate = &end
		}
	}
	var err error
	if in.StartTime != nil {
		if out.StartTime, err = parseOptionalClock("start_time", *in.StartTime); err != nil {
			return app.RescheduleEventInput{}, err
		}
	}
	if in.EndTime != nil {
		if out.EndTime, err = parseOptionalClock("end_time", *in.EndTime); err != nil {
			return app.RescheduleEventInput{}, err
		}
	}
	return out, nil
}

// parseAssignmentPatch decodes role keys. A nil map means no staffing change.
func parseAssignmentPatch(raw map[string][]string) (map[domain.Role]domain.RoleList, error) {
	if raw == nil {
		return nil, nil
	}
	out := make(map[domain.Role]domain.RoleList, len(raw))
	for key, names := range raw {
		role, err := domain.ParseRole(key)
		if err != nil {
			return nil, fmt.Errorf("assignments role %q: %w", key, errors.Join(ErrInvalidRequest, err))
		}
		out[role] = domain.NewRoleList(names...)
	}
	return out, nil
}

func parseOptionalClock(field, raw string) (*domain.ClockTime, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	c, err := domain.ParseClockTime(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be HH:MM: %w", field, errors.Join(ErrInvalidRequest, err))
	}
	return &c, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
