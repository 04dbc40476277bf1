package common

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hylla/shootdesk/internal/app"
	"github.com/hylla/shootdesk/internal/domain"
)

// ProjectOverview builds one deterministic summary of a booking: its events,
// per-department task counts, and crew double-bookings.
func (a *AppServiceAdapter) ProjectOverview(ctx context.Context, in ProjectOverviewRequest) (ProjectOverview, error) {
	if a == nil || a.service == nil {
		return ProjectOverview{}, fmt.Errorf("app service is not configured: %w", ErrInvalidRequest)
	}
	projectID := strings.TrimSpace(in.ProjectID)
	if projectID == "" {
		return ProjectOverview{}, fmt.Errorf("project_id is required: %w", ErrInvalidRequest)
	}

	project, err := a.service.GetProject(ctx, projectID)
	if err != nil {
		return ProjectOverview{}, mapAppError("get project", err)
	}
	events, err := a.service.ListEvents(ctx, app.EventFilter{ProjectID: project.ID})
	if err != nil {
		return ProjectOverview{}, mapAppError("list events", err)
	}
	tasks, err := a.service.ListTasks(ctx, app.TaskFilter{ProjectID: project.ID})
	if err != nil {
		return ProjectOverview{}, mapAppError("list tasks", err)
	}

	conflictCount := 0
	for _, event := range events {
		conflicts, err := a.service.EventConflicts(ctx, event.ID)
		if err != nil {
			return ProjectOverview{}, mapAppError("event conflicts", err)
		}
		conflictCount += len(conflicts)
	}

	now := a.now().UTC()
	departments := buildDepartmentOverviews(tasks)
	mappedEvents := mapEvents(events)
	stateHash, err := computeStateHash(project, mappedEvents, mapTasks(tasks))
	if err != nil {
		return ProjectOverview{}, fmt.Errorf("compute state hash: %w", err)
	}

	return ProjectOverview{
		CapturedAt:         now.Truncate(time.Second),
		StateHash:          stateHash,
		ProjectID:          project.ID,
		ProjectName:        project.Name,
		Status:             string(project.Status),
		ProgressPercentage: project.ProgressPercentage,
		Events:             mappedEvents,
		Departments:        departments,
		ConflictCount:      conflictCount,
		Warnings:           buildWarnings(conflictCount, overdueTasks(tasks, domain.DateOf(now))),
	}, nil
}

// buildDepartmentOverviews counts tasks per status for every department, in
// workflow order.
func buildDepartmentOverviews(tasks []domain.Task) []DepartmentOverview {
	out := make([]DepartmentOverview, 0, len(domain.Departments()))
	for _, dept := range domain.Departments() {
		wf, err := domain.WorkflowFor(dept)
		if err != nil {
			continue
		}
		overview := DepartmentOverview{
			Department:   string(dept),
			StatusCounts: make(map[string]int, len(wf.Statuses())),
		}
		for _, status := range wf.Statuses() {
			overview.StatusCounts[string(status)] = 0
		}
		for _, task := range tasks {
			if task.Department != dept {
				continue
			}
			overview.TotalTasks++
			overview.StatusCounts[string(task.Status)]++
			if task.Delivered() {
				overview.Delivered++
			}
		}
		out = append(out, overview)
	}
	return out
}

// overdueTasks counts undelivered tasks whose due date has passed.
func overdueTasks(tasks []domain.Task, today domain.Date) int {
	count := 0
	for _, task := range tasks {
		if task.DueDate == nil || task.Delivered() {
			continue
		}
		if task.DueDate.Before(today) {
			count++
		}
	}
	return count
}

// buildWarnings synthesizes warning text from conflict and deadline rollups.
func buildWarnings(conflicts, overdue int) []string {
	warnings := make([]string, 0, 2)
	if conflicts > 0 {
		warnings = append(warnings, fmt.Sprintf("%d crew double-bookings across project events", conflicts))
	}
	if overdue > 0 {
		warnings = append(warnings, fmt.Sprintf("%d tasks are past their due date", overdue))
	}
	return warnings
}

// computeStateHash returns a deterministic hash of the project state so callers
// can detect change between two overview reads.
func computeStateHash(project domain.Project, events []Event, tasks []Task) (string, error) {
	payload := struct {
		ProjectID string  `json:"project_id"`
		Name      string  `json:"name"`
		Status    string  `json:"status"`
		Progress  int     `json:"progress"`
		Events    []Event `json:"events"`
		Tasks     []Task  `json:"tasks"`
	}{
		ProjectID: project.ID,
		Name:      project.Name,
		Status:    string(project.Status),
		Progress:  project.ProgressPercentage,
		Events:    events,
		Tasks:     tasks,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal overview payload: %w", err)
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}
