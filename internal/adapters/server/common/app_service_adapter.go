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

// AppServiceAdapter exposes app.Service through the transport contracts.
type AppServiceAdapter struct {
	service *app.Service
	now     func() time.Time
}

// NewAppServiceAdapter constructs one adapter over the app service.
func NewAppServiceAdapter(service *app.Service) *AppServiceAdapter {
	return &AppServiceAdapter{
		service: service,
		now:     time.Now,
	}
}

// CheckAvailability answers one availability question.
func (a *AppServiceAdapter) CheckAvailability(ctx context.Context, in AvailabilityRequest) (Availability, error) {
	if a == nil || a.service == nil {
		return Availability{}, fmt.Errorf("app service is not configured: %w", ErrInvalidRequest)
	}
	availability, err := a.service.CheckAvailability(ctx, app.AvailabilityQuery{
		Person:         in.Person,
		Date:           in.Date,
		Start:          in.Start,
		End:            in.End,
		ExcludeEventID: in.ExcludeEventID,
	})
	if err != nil {
		return Availability{}, mapAppError("check availability", err)
	}
	return mapAvailability(availability), nil
}

// TeamAvailability answers availability for several people at once.
func (a *AppServiceAdapter) TeamAvailability(ctx context.Context, in TeamAvailabilityRequest) ([]Availability, error) {
	if a == nil || a.service == nil {
		return nil, fmt.Errorf("app service is not configured: %w", ErrInvalidRequest)
	}
	answers, err := a.service.TeamAvailability(ctx, app.TeamAvailabilityQuery{
		People:         in.People,
		Date:           in.Date,
		Start:          in.Start,
		End:            in.End,
		ExcludeEventID: in.ExcludeEventID,
	})
	if err != nil {
		return nil, mapAppError("team availability", err)
	}
	out := make([]Availability, 0, len(answers))
	for _, answer := range answers {
		out = append(out, mapAvailability(answer))
	}
	return out, nil
}

// ListEvents lists events in a date range.
func (a *AppServiceAdapter) ListEvents(ctx context.Context, in ListEventsRequest) ([]Event, error) {
	if a == nil || a.service == nil {
		return nil, fmt.Errorf("app service is not configured: %w", ErrInvalidRequest)
	}
	from, err := parseOptionalDate("from", in.From)
	if err != nil {
		return nil, err
	}
	to, err := parseOptionalDate("to", in.To)
	if err != nil {
		return nil, err
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, fmt.Errorf("to must not precede from: %w", ErrInvalidRequest)
	}
	events, err := a.service.ListEvents(ctx, app.EventFilter{
		ProjectID:  strings.TrimSpace(in.ProjectID),
		From:       from,
		To:         to,
		AssignedTo: strings.TrimSpace(in.AssignedTo),
	})
	if err != nil {
		return nil, mapAppError("list events", err)
	}
	return mapEvents(events), nil
}

// EventConflicts lists double-bookings caused by one event.
func (a *AppServiceAdapter) EventConflicts(ctx context.Context, eventID string) ([]Conflict, error) {
	if a == nil || a.service == nil {
		return nil, fmt.Errorf("app service is not configured: %w", ErrInvalidRequest)
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, fmt.Errorf("event_id is required: %w", ErrInvalidRequest)
	}
	conflicts, err := a.service.EventConflicts(ctx, eventID)
	if err != nil {
		return nil, mapAppError("event conflicts", err)
	}
	return mapConflicts(conflicts), nil
}

// EventProgress reports checklist completion for one event.
func (a *AppServiceAdapter) EventProgress(ctx context.Context, eventID string) (EventProgress, error) {
	if a == nil || a.service == nil {
		return EventProgress{}, fmt.Errorf("app service is not configured: %w", ErrInvalidRequest)
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return EventProgress{}, fmt.Errorf("event_id is required: %w", ErrInvalidRequest)
	}
	progress, err := a.service.EventProgress(ctx, eventID)
	if err != nil {
		return EventProgress{}, mapAppError("event progress", err)
	}
	return EventProgress{
		EventID:   progress.EventID,
		Total:     progress.Total,
		Completed: progress.Completed,
		Percent:   progress.Percent,
		Items:     mapChecklistItems(progress.Items),
	}, nil
}

// PersonSchedule returns one person's agenda.
func (a *AppServiceAdapter) PersonSchedule(ctx context.Context, in PersonScheduleRequest) (PersonSchedule, error) {
	if a == nil || a.service == nil {
		return PersonSchedule{}, fmt.Errorf("app service is not configured: %w", ErrInvalidRequest)
	}
	from, err := parseOptionalDate("from", in.From)
	if err != nil {
		return PersonSchedule{}, err
	}
	to, err := parseOptionalDate("to", in.To)
	if err != nil {
		return PersonSchedule{}, err
	}
	schedule, err := a.service.PersonSchedule(ctx, app.PersonScheduleQuery{Person: in.Person, From: from, To: to})
	if err != nil {
		return PersonSchedule{}, mapAppError("person schedule", err)
	}
	out := PersonSchedule{
		Person:         schedule.Person,
		Events:         make([]ScheduledEvent, 0, len(schedule.Events)),
		Tasks:          mapTasks(schedule.Tasks),
		ChecklistItems: mapChecklistItems(schedule.ChecklistItems),
	}
	if schedule.Contact != nil {
		contact := mapContact(*schedule.Contact)
		out.Contact = &contact
	}
	for _, scheduled := range schedule.Events {
		out.Events = append(out.Events, ScheduledEvent{
			Event: mapEvent(scheduled.Event),
			Roles: roleStrings(scheduled.Roles),
		})
	}
	return out, nil
}

// Board loads one department board.
func (a *AppServiceAdapter) Board(ctx context.Context, in BoardRequest) (Board, error) {
	if a == nil || a.service == nil {
		return Board{}, fmt.Errorf("app service is not configured: %w", ErrInvalidRequest)
	}
	projectID := strings.TrimSpace(in.ProjectID)
	if projectID == "" {
		return Board{}, fmt.Errorf("project_id is required: %w", ErrInvalidRequest)
	}
	dept, err := domain.ParseDepartment(in.Department)
	if err != nil {
		return Board{}, mapAppError("load board", err)
	}
	board, err := a.service.LoadBoard(ctx, projectID, dept)
	if err != nil {
		return Board{}, mapAppError("load board", err)
	}
	out := Board{
		ProjectID:  projectID,
		Department: string(board.Department),
		Columns:    make([]BoardColumn, 0, len(board.Columns)),
	}
	for _, column := range board.Columns {
		out.Columns = append(out.Columns, BoardColumn{
			Status: string(column.Status),
			Title:  column.Title,
			Tasks:  mapTasks(column.Tasks),
		})
	}
	if len(board.Orphans) > 0 {
		out.Orphans = mapTasks(board.Orphans)
	}
	return out, nil
}

// ChangeTaskStatus moves one task through its workflow.
func (a *AppServiceAdapter) ChangeTaskStatus(ctx context.Context, in ChangeTaskStatusRequest) (TaskStatusResult, error) {
	if a == nil || a.service == nil {
		return TaskStatusResult{}, fmt.Errorf("app service is not configured: %w", ErrInvalidRequest)
	}
	taskID := strings.TrimSpace(in.TaskID)
	if taskID == "" {
		return TaskStatusResult{}, fmt.Errorf("task_id is required: %w", ErrInvalidRequest)
	}
	if strings.TrimSpace(in.Status) == "" {
		return TaskStatusResult{}, fmt.Errorf("status is required: %w", ErrInvalidRequest)
	}
	res, err := a.service.ChangeTaskStatus(ctx, app.ChangeTaskStatusInput{
		TaskID: taskID,
		Status: in.Status,
		Force:  in.Force,
	})
	if err != nil {
		return TaskStatusResult{}, mapAppError("change task status", err)
	}
	return TaskStatusResult{
		Task:    mapTask(res.Task),
		From:    string(res.From),
		Changed: res.Changed,
	}, nil
}

// TaskHistory lists one task's status changes, newest first.
func (a *AppServiceAdapter) TaskHistory(ctx context.Context, taskID string, limit int) ([]StatusChange, error) {
	if a == nil || a.service == nil {
		return nil, fmt.Errorf("app service is not configured: %w", ErrInvalidRequest)
	}
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return nil, fmt.Errorf("task_id is required: %w", ErrInvalidRequest)
	}
	if limit < 0 {
		return nil, fmt.Errorf("limit must be >= 0: %w", ErrInvalidRequest)
	}
	changes, err := a.service.TaskHistory(ctx, taskID, limit)
	if err != nil {
		return nil, mapAppError("task history", err)
	}
	out := make([]StatusChange, 0, len(changes))
	for _, change := range changes {
		out = append(out, StatusChange{
			From:       string(change.From),
			To:         string(change.To),
			OccurredAt: change.OccurredAt,
		})
	}
	return out, nil
}

// AssigneeCandidates lists contacts who can own post-production tasks.
func (a *AppServiceAdapter) AssigneeCandidates(ctx context.Context) ([]Contact, error) {
	if a == nil || a.service == nil {
		return nil, fmt.Errorf("app service is not configured: %w", ErrInvalidRequest)
	}
	contacts, err := a.service.ListAssigneeCandidates(ctx)
	if err != nil {
		return nil, mapAppError("assignee candidates", err)
	}
	out := make([]Contact, 0, len(contacts))
	for _, contact := range contacts {
		out = append(out, mapContact(contact))
	}
	return out, nil
}

// parseOptionalDate parses one optional YYYY-MM-DD query value.
func parseOptionalDate(field, raw string) (domain.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.Date{}, nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return domain.Date{}, fmt.Errorf("%s must be YYYY-MM-DD: %w", field, errors.Join(ErrInvalidRequest, err))
	}
	return d, nil
}

func mapAvailability(in domain.Availability) Availability {
	out := Availability{
		Person:    in.Person,
		Available: in.Available,
		Reason:    string(in.Reason),
	}
	if in.BlockingEvent != nil {
		ref := mapEventRef(*in.BlockingEvent)
		out.BlockingEvent = &ref
	}
	if len(in.BlockingRoles) > 0 {
		out.BlockingRoles = roleStrings(in.BlockingRoles)
	}
	return out
}

func mapEventRef(in domain.EventRef) EventRef {
	return EventRef{
		ID:    in.ID,
		Name:  in.Name,
		Date:  in.Date.String(),
		Start: clockString(in.Start),
		End:   clockString(in.End),
	}
}

func mapEvents(events []domain.Event) []Event {
	out := make([]Event, 0, len(events))
	for _, event := range events {
		out = append(out, mapEvent(event))
	}
	return out
}

// mapEvent renders one event. Only staffed roles appear in Assignments.
func mapEvent(in domain.Event) Event {
	out := Event{
		ID:           in.ID,
		ProjectID:    in.ProjectID,
		Name:         in.Name,
		StartDate:    in.StartDate.String(),
		StartTime:    clockString(in.StartTime),
		EndTime:      clockString(in.EndTime),
		Location:     in.Location,
		MapLink:      in.MapLink,
		Details:      in.Details,
		Instructions: in.Instructions,
		Assignments:  map[string][]string{},
		UpdatedAt:    in.UpdatedAt,
	}
	if in.EndDate != nil {
		out.EndDate = in.EndDate.String()
	}
	for _, role := range domain.EventRoles() {
		names := in.RoleField(role)
		if len(names) == 0 {
			continue
		}
		out.Assignments[string(role)] = append([]string(nil), names...)
	}
	return out
}

func mapConflicts(conflicts []domain.Conflict) []Conflict {
	out := make([]Conflict, 0, len(conflicts))
	for _, conflict := range conflicts {
		out = append(out, Conflict{
			Person:        conflict.Person,
			Role:          string(conflict.Role),
			Date:          conflict.Date.String(),
			BlockingEvent: mapEventRef(conflict.BlockingEvent),
		})
	}
	return out
}

func mapTasks(tasks []domain.Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, mapTask(task))
	}
	return out
}

func mapTask(in domain.Task) Task {
	out := Task{
		ID:                   in.ID,
		ProjectID:            in.ProjectID,
		Title:                in.Title,
		Department:           string(in.Department),
		Category:             in.Category,
		Priority:             string(in.Priority),
		EstimatedHours:       in.EstimatedHours,
		Description:          in.Description,
		ExpectedDeliverables: in.ExpectedDeliverables,
		Status:               string(in.Status),
		StatusLabel:          string(in.Status),
		AssignedTo:           in.AssignedTo,
		UpdatedAt:            in.UpdatedAt,
	}
	if in.DueDate != nil {
		out.DueDate = in.DueDate.String()
	}
	if wf, err := in.Workflow(); err == nil {
		out.StatusLabel = wf.Label(in.Status)
	}
	return out
}

func mapChecklistItems(items []domain.ChecklistItem) []ChecklistItem {
	out := make([]ChecklistItem, 0, len(items))
	for _, item := range items {
		out = append(out, ChecklistItem{
			ID:           item.ID,
			ItemName:     item.ItemName,
			Category:     item.Category,
			AssignedRole: item.AssignedRole,
			Completed:    item.Completed,
			Notes:        item.Notes,
		})
	}
	return out
}

func mapContact(in domain.TeamContact) Contact {
	categories := make([]string, 0, len(in.Categories))
	for _, category := range in.Categories {
		categories = append(categories, string(category))
	}
	return Contact{
		ID:         in.ID,
		Name:       in.Name,
		Role:       in.Role,
		Phone:      in.Phone,
		WhatsApp:   in.WhatsApp,
		Email:      in.Email,
		Categories: categories,
	}
}

func roleStrings(roles []domain.Role) []string {
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		out = append(out, string(role))
	}
	return out
}

func clockString(c *domain.ClockTime) string {
	if c == nil {
		return ""
	}
	return c.String()
}

// mapAppError maps app/domain errors into transport-layer error sentinels.
func mapAppError(operation string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, app.ErrNotFound):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrNotFound, err))
	case errors.Is(err, domain.ErrIllegalTransition):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrTransitionRejected, err))
	case errors.Is(err, app.ErrInvalidRequest),
		errors.Is(err, domain.ErrUnknownStatus),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidName),
		errors.Is(err, domain.ErrInvalidTitle),
		errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrInvalidClockTime),
		errors.Is(err, domain.ErrInvalidDepartment),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrInvalidEstimate),
		errors.Is(err, domain.ErrInvalidProjectStatus),
		errors.Is(err, domain.ErrInvalidTransitionMode):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidRequest, err))
	case errors.Is(err, domain.ErrTaskNotOnBoard):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrNotFound, err))
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}
