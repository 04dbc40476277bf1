package app

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hylla/shootdesk/internal/domain"
)

// DefaultBoardWriteGrace is how long a local board write shadows refreshed reads.
const DefaultBoardWriteGrace = 2 * time.Second

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	TransitionMode  domain.TransitionMode
	ConflictPolicy  domain.ConflictPolicy
	BoardWriteGrace time.Duration
	Logger          *log.Logger
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service orchestrates scheduling and workflow use cases over a Repository.
type Service struct {
	repo       Repository
	idGen      IDGenerator
	clock      Clock
	mode       domain.TransitionMode
	detector   domain.Detector
	boardGrace time.Duration
	logger     *log.Logger
}

// NewService constructs a new value for this package.
func NewService(repo Repository, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if cfg.TransitionMode == "" {
		cfg.TransitionMode = domain.TransitionModePermissive
	}
	if cfg.BoardWriteGrace <= 0 {
		cfg.BoardWriteGrace = DefaultBoardWriteGrace
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}

	return &Service{
		repo:       repo,
		idGen:      idGen,
		clock:      clock,
		mode:       cfg.TransitionMode,
		detector:   domain.NewDetector(cfg.ConflictPolicy),
		boardGrace: cfg.BoardWriteGrace,
		logger:     cfg.Logger,
	}
}

// TransitionMode reports the configured workflow strictness.
func (s *Service) TransitionMode() domain.TransitionMode {
	return s.mode
}

// CreateProjectInput holds input values for create project operations.
type CreateProjectInput struct {
	Name        string
	EventDate   *domain.Date
	EventType   string
	Location    string
	ServiceType string
	Status      domain.ProjectStatus
}

// CreateProject creates project.
func (s *Service) CreateProject(ctx context.Context, in CreateProjectInput) (domain.Project, error) {
	project, err := domain.NewProject(domain.ProjectInput{
		ID:          s.idGen(),
		Name:        in.Name,
		EventDate:   in.EventDate,
		EventType:   in.EventType,
		Location:    in.Location,
		ServiceType: in.ServiceType,
		Status:      in.Status,
	}, s.clock())
	if err != nil {
		return domain.Project{}, err
	}
	if err := s.repo.CreateProject(ctx, project); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// GetProject returns one project.
func (s *Service) GetProject(ctx context.Context, projectID string) (domain.Project, error) {
	return s.repo.GetProject(ctx, strings.TrimSpace(projectID))
}

// ListProjects lists projects, oldest first.
func (s *Service) ListProjects(ctx context.Context, includeArchived bool) ([]domain.Project, error) {
	return s.repo.ListProjects(ctx, includeArchived)
}

// UpdateProjectProgress stores the operator-entered progress value.
func (s *Service) UpdateProjectProgress(ctx context.Context, projectID string, percent int) (domain.Project, error) {
	project, err := s.repo.GetProject(ctx, strings.TrimSpace(projectID))
	if err != nil {
		return domain.Project{}, err
	}
	project.SetProgress(percent, s.clock())
	if err := s.repo.UpdateProject(ctx, project); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// EventWriteResult reports a saved event with its advisory conflicts.
// StaleWrite is set when the stored event changed after the caller read it;
// the write still wins.
type EventWriteResult struct {
	Event      domain.Event
	Conflicts  []domain.Conflict
	StaleWrite bool
}

// CreateEventInput holds input values for create event operations.
type CreateEventInput struct {
	ProjectID    string
	Name         string
	StartDate    domain.Date
	EndDate      *domain.Date
	StartTime    *domain.ClockTime
	EndTime      *domain.ClockTime
	Location     string
	MapLink      string
	Details      string
	Instructions string
	Assignments  map[domain.Role]domain.RoleList
}

// CreateEvent creates an event under a project. Double-bookings are reported, never rejected.
func (s *Service) CreateEvent(ctx context.Context, in CreateEventInput) (EventWriteResult, error) {
	if _, err := s.repo.GetProject(ctx, strings.TrimSpace(in.ProjectID)); err != nil {
		return EventWriteResult{}, err
	}
	event, err := domain.NewEvent(domain.EventInput{
		ID:           s.idGen(),
		ProjectID:    in.ProjectID,
		Name:         in.Name,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		Location:     in.Location,
		MapLink:      in.MapLink,
		Details:      in.Details,
		Instructions: in.Instructions,
		Assignments:  in.Assignments,
	}, s.clock())
	if err != nil {
		return EventWriteResult{}, err
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return EventWriteResult{}, err
	}
	conflicts, err := s.conflictsFor(ctx, event)
	if err != nil {
		return EventWriteResult{}, err
	}
	return EventWriteResult{Event: event, Conflicts: conflicts}, nil
}

// UpdateEventAssignmentsInput holds input values for assignment edits.
type UpdateEventAssignmentsInput struct {
	EventID           string
	Assignments       map[domain.Role]domain.RoleList
	ExpectedUpdatedAt *time.Time
}

// UpdateEventAssignments replaces role lists on an event.
func (s *Service) UpdateEventAssignments(ctx context.Context, in UpdateEventAssignmentsInput) (EventWriteResult, error) {
	event, err := s.repo.GetEvent(ctx, strings.TrimSpace(in.EventID))
	if err != nil {
		return EventWriteResult{}, err
	}
	stale := isStale(event.UpdatedAt, in.ExpectedUpdatedAt)
	if err := event.SetAssignments(in.Assignments, s.clock()); err != nil {
		return EventWriteResult{}, err
	}
	return s.saveEvent(ctx, event, stale)
}

// RescheduleEventInput holds input values for date and window edits.
type RescheduleEventInput struct {
	EventID           string
	StartDate         domain.Date
	EndDate           *domain.Date
	StartTime         *domain.ClockTime
	EndTime           *domain.ClockTime
	ExpectedUpdatedAt *time.Time
}

// RescheduleEvent replaces an event's dates and window.
func (s *Service) RescheduleEvent(ctx context.Context, in RescheduleEventInput) (EventWriteResult, error) {
	event, err := s.repo.GetEvent(ctx, strings.TrimSpace(in.EventID))
	if err != nil {
		return EventWriteResult{}, err
	}
	stale := isStale(event.UpdatedAt, in.ExpectedUpdatedAt)
	if err := event.Reschedule(in.StartDate, in.EndDate, in.StartTime, in.EndTime, s.clock()); err != nil {
		return EventWriteResult{}, err
	}
	return s.saveEvent(ctx, event, stale)
}

// saveEvent writes an edited event and recomputes its conflicts.
func (s *Service) saveEvent(ctx context.Context, event domain.Event, stale bool) (EventWriteResult, error) {
	if stale {
		s.logger.Warn("event changed since it was read; last write wins", "event_id", event.ID)
	}
	if err := s.repo.UpdateEvent(ctx, event); err != nil {
		return EventWriteResult{}, err
	}
	conflicts, err := s.conflictsFor(ctx, event)
	if err != nil {
		return EventWriteResult{}, err
	}
	return EventWriteResult{Event: event, Conflicts: conflicts, StaleWrite: stale}, nil
}

// GetEvent returns one event.
func (s *Service) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	return s.repo.GetEvent(ctx, strings.TrimSpace(eventID))
}

// ListEvents lists events matching filter.
func (s *Service) ListEvents(ctx context.Context, filter EventFilter) ([]domain.Event, error) {
	return s.repo.ListEvents(ctx, filter)
}

// EventConflicts reports double-bookings for one stored event.
func (s *Service) EventConflicts(ctx context.Context, eventID string) ([]domain.Conflict, error) {
	event, err := s.repo.GetEvent(ctx, strings.TrimSpace(eventID))
	if err != nil {
		return nil, err
	}
	return s.conflictsFor(ctx, event)
}

// conflictsFor fetches the events sharing any of event's days and runs the detector.
func (s *Service) conflictsFor(ctx context.Context, event domain.Event) ([]domain.Conflict, error) {
	others, err := s.repo.ListEvents(ctx, EventFilter{From: event.StartDate, To: event.LastDate()})
	if err != nil {
		return nil, fmt.Errorf("list events for conflict check: %w", err)
	}
	conflicts := s.detector.FindConflicts(event, others)
	for _, c := range conflicts {
		s.logger.Debug("advisory double-booking", "event_id", event.ID, "person", c.Person, "role", c.Role, "date", c.Date, "blocking_event_id", c.BlockingEvent.ID)
	}
	return conflicts, nil
}

// AvailabilityQuery holds raw availability inputs. Malformed dates or
// times are not errors; they produce an unknown window.
type AvailabilityQuery struct {
	Person         string
	Date           string
	Start          string
	End            string
	ExcludeEventID string
}

// CheckAvailability answers whether one person is free in a candidate window.
func (s *Service) CheckAvailability(ctx context.Context, q AvailabilityQuery) (domain.Availability, error) {
	if strings.TrimSpace(q.Person) == "" {
		return domain.Availability{}, fmt.Errorf("%w: person is required", ErrInvalidRequest)
	}
	candidate := domain.ParseTimeWindow(q.Date, q.Start, q.End)
	events, err := s.sameDayEvents(ctx, candidate)
	if err != nil {
		return domain.Availability{}, err
	}
	return s.detector.IsAvailable(q.Person, candidate, events, q.ExcludeEventID), nil
}

// TeamAvailabilityQuery holds raw inputs for a whole-team check. An empty
// People list checks every contact on the roster.
type TeamAvailabilityQuery struct {
	People         []string
	Date           string
	Start          string
	End            string
	ExcludeEventID string
}

// TeamAvailability answers availability for each person against one snapshot.
func (s *Service) TeamAvailability(ctx context.Context, q TeamAvailabilityQuery) ([]domain.Availability, error) {
	people := q.People
	if len(people) == 0 {
		contacts, err := s.repo.ListContacts(ctx, ContactFilter{})
		if err != nil {
			return nil, err
		}
		for _, contact := range contacts {
			people = append(people, contact.Name)
		}
	}
	candidate := domain.ParseTimeWindow(q.Date, q.Start, q.End)
	events, err := s.sameDayEvents(ctx, candidate)
	if err != nil {
		return nil, err
	}
	return s.detector.TeamAvailability(people, candidate, events, q.ExcludeEventID), nil
}

// sameDayEvents loads the candidate day's events. Unbounded candidates skip storage.
func (s *Service) sameDayEvents(ctx context.Context, candidate domain.TimeWindow) ([]domain.Event, error) {
	if !candidate.Bounded() {
		return nil, nil
	}
	events, err := s.repo.ListEvents(ctx, EventFilter{From: candidate.Date, To: candidate.Date})
	if err != nil {
		return nil, fmt.Errorf("list events for %s: %w", candidate.Date, err)
	}
	return events, nil
}

// CreateTaskInput holds input values for create task operations.
type CreateTaskInput struct {
	ProjectID            string
	Title                string
	Department           domain.Department
	Category             string
	Priority             domain.Priority
	DueDate              *domain.Date
	EstimatedHours       float64
	Description          string
	ExpectedDeliverables string
	AssignedTo           string
}

// CreateTask creates a task in its department's initial status.
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (domain.Task, error) {
	if _, err := s.repo.GetProject(ctx, strings.TrimSpace(in.ProjectID)); err != nil {
		return domain.Task{}, err
	}
	task, err := domain.NewTask(domain.TaskInput{
		ID:                   s.idGen(),
		ProjectID:            in.ProjectID,
		Title:                in.Title,
		Department:           in.Department,
		Category:             in.Category,
		Priority:             in.Priority,
		DueDate:              in.DueDate,
		EstimatedHours:       in.EstimatedHours,
		Description:          in.Description,
		ExpectedDeliverables: in.ExpectedDeliverables,
		AssignedTo:           in.AssignedTo,
	}, s.clock())
	if err != nil {
		return domain.Task{}, err
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// UpdateTaskInput holds input values for task detail edits.
type UpdateTaskInput struct {
	TaskID     string
	Department domain.Department
	Details    domain.TaskDetails
}

// UpdateTask edits a task's details. A department change resets status to
// the new department's initial state.
func (s *Service) UpdateTask(ctx context.Context, in UpdateTaskInput) (domain.Task, error) {
	task, err := s.repo.GetTask(ctx, strings.TrimSpace(in.TaskID))
	if err != nil {
		return domain.Task{}, err
	}
	now := s.clock()
	if err := task.UpdateDetails(in.Details, now); err != nil {
		return domain.Task{}, err
	}
	if in.Department != "" && in.Department != task.Department {
		from := task.Status
		if err := task.ChangeDepartment(in.Department, now); err != nil {
			return domain.Task{}, err
		}
		s.logger.Info("task department changed; status reset", "task_id", task.ID, "department", task.Department, "from_status", from, "status", task.Status)
	}
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// GetTask returns one task.
func (s *Service) GetTask(ctx context.Context, taskID string) (domain.Task, error) {
	return s.repo.GetTask(ctx, strings.TrimSpace(taskID))
}

// ListTasks lists tasks matching filter.
func (s *Service) ListTasks(ctx context.Context, filter TaskFilter) ([]domain.Task, error) {
	return s.repo.ListTasks(ctx, filter)
}

// TaskHistory lists a task's recorded status changes, newest first.
func (s *Service) TaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskStatusChange, error) {
	task, err := s.repo.GetTask(ctx, strings.TrimSpace(taskID))
	if err != nil {
		return nil, err
	}
	return s.repo.ListTaskStatusChanges(ctx, task.ID, limit)
}

// ChangeTaskStatusInput holds input values for status changes.
type ChangeTaskStatusInput struct {
	TaskID string
	Status string
	Force  bool
}

// TaskStatusResult reports the task after a status change. Changed is false
// when the task already held the target status and no write was issued.
type TaskStatusResult struct {
	Task    domain.Task
	From    domain.TaskStatus
	Changed bool
}

// ChangeTaskStatus validates a transition before issuing the single-field write.
func (s *Service) ChangeTaskStatus(ctx context.Context, in ChangeTaskStatusInput) (TaskStatusResult, error) {
	task, err := s.repo.GetTask(ctx, strings.TrimSpace(in.TaskID))
	if err != nil {
		return TaskStatusResult{}, err
	}
	task.Status = domain.NormalizeTaskStatus(string(task.Status))
	from := task.Status
	updated, err := domain.ApplyTransition(task, domain.TaskStatus(in.Status), domain.TransitionOptions{Mode: s.mode, Force: in.Force}, s.clock())
	if err != nil {
		s.logger.Warn("task transition rejected", "task_id", task.ID, "err", err)
		return TaskStatusResult{Task: task, From: from}, err
	}
	if updated.Status == from {
		return TaskStatusResult{Task: updated, From: from}, nil
	}
	if err := s.repo.UpdateTaskStatus(ctx, updated.ID, updated.Status, updated.UpdatedAt); err != nil {
		return TaskStatusResult{Task: task, From: from}, err
	}
	if in.Force {
		s.logger.Info("forced task transition", "task_id", updated.ID, "from", from, "to", updated.Status)
	}
	return TaskStatusResult{Task: updated, From: from, Changed: true}, nil
}

// LoadBoard builds a department board for one project.
func (s *Service) LoadBoard(ctx context.Context, projectID string, dept domain.Department) (domain.Board, error) {
	projectID = strings.TrimSpace(projectID)
	if _, err := domain.WorkflowFor(dept); err != nil {
		return domain.Board{}, err
	}
	if _, err := s.repo.GetProject(ctx, projectID); err != nil {
		return domain.Board{}, err
	}
	tasks, err := s.repo.ListTasks(ctx, TaskFilter{ProjectID: projectID, Department: dept})
	if err != nil {
		return domain.Board{}, err
	}
	return domain.BuildBoard(dept, tasks)
}

// OpenBoardSession loads a board and wraps it for optimistic moves.
func (s *Service) OpenBoardSession(ctx context.Context, projectID string, dept domain.Department) (*BoardSession, error) {
	board, err := s.LoadBoard(ctx, projectID, dept)
	if err != nil {
		return nil, err
	}
	return NewBoardSession(board, s.repo, s.clock, BoardSessionConfig{
		ProjectID:   strings.TrimSpace(projectID),
		Mode:        s.mode,
		GraceWindow: s.boardGrace,
		Logger:      s.logger,
	}), nil
}

// RefreshBoardSession re-reads a session's tasks and reconciles them into its view.
func (s *Service) RefreshBoardSession(ctx context.Context, session *BoardSession) ([]string, error) {
	tasks, err := s.repo.ListTasks(ctx, TaskFilter{ProjectID: session.ProjectID(), Department: session.Department()})
	if err != nil {
		return nil, err
	}
	return session.Reconcile(tasks), nil
}

// AddChecklistItemInput holds input values for checklist creation.
type AddChecklistItemInput struct {
	EventID      string
	ItemName     string
	Category     string
	AssignedRole string
	Notes        string
}

// AddChecklistItem adds one preparation item to an event.
func (s *Service) AddChecklistItem(ctx context.Context, in AddChecklistItemInput) (domain.ChecklistItem, error) {
	if _, err := s.repo.GetEvent(ctx, strings.TrimSpace(in.EventID)); err != nil {
		return domain.ChecklistItem{}, err
	}
	item, err := domain.NewChecklistItem(domain.ChecklistItemInput{
		ID:           s.idGen(),
		EventID:      in.EventID,
		ItemName:     in.ItemName,
		Category:     in.Category,
		AssignedRole: in.AssignedRole,
		Notes:        in.Notes,
	}, s.clock())
	if err != nil {
		return domain.ChecklistItem{}, err
	}
	if err := s.repo.CreateChecklistItem(ctx, item); err != nil {
		return domain.ChecklistItem{}, err
	}
	return item, nil
}

// SetChecklistItemCompleted toggles one checklist item.
func (s *Service) SetChecklistItemCompleted(ctx context.Context, itemID string, done bool) (domain.ChecklistItem, error) {
	item, err := s.repo.GetChecklistItem(ctx, strings.TrimSpace(itemID))
	if err != nil {
		return domain.ChecklistItem{}, err
	}
	item.SetCompleted(done, s.clock())
	if err := s.repo.UpdateChecklistItem(ctx, item); err != nil {
		return domain.ChecklistItem{}, err
	}
	return item, nil
}

// EventProgress summarizes an event's checklist.
type EventProgress struct {
	EventID   string
	Total     int
	Completed int
	Percent   int
	Items     []domain.ChecklistItem
}

// EventProgress returns the checklist completion for one event.
func (s *Service) EventProgress(ctx context.Context, eventID string) (EventProgress, error) {
	event, err := s.repo.GetEvent(ctx, strings.TrimSpace(eventID))
	if err != nil {
		return EventProgress{}, err
	}
	items, err := s.repo.ListChecklistItems(ctx, event.ID)
	if err != nil {
		return EventProgress{}, err
	}
	done := 0
	for _, item := range items {
		if item.Completed {
			done++
		}
	}
	return EventProgress{
		EventID:   event.ID,
		Total:     len(items),
		Completed: done,
		Percent:   domain.ChecklistProgress(items),
		Items:     items,
	}, nil
}

// CreateContactInput holds input values for contact creation.
type CreateContactInput struct {
	Name       string
	Role       string
	Phone      string
	WhatsApp   string
	Email      string
	Categories []domain.ContactCategory
}

// CreateContact adds one team contact.
func (s *Service) CreateContact(ctx context.Context, in CreateContactInput) (domain.TeamContact, error) {
	contact, err := domain.NewTeamContact(domain.TeamContactInput{
		ID:         s.idGen(),
		Name:       in.Name,
		Role:       in.Role,
		Phone:      in.Phone,
		WhatsApp:   in.WhatsApp,
		Email:      in.Email,
		Categories: in.Categories,
	}, s.clock())
	if err != nil {
		return domain.TeamContact{}, err
	}
	if err := s.repo.CreateContact(ctx, contact); err != nil {
		return domain.TeamContact{}, err
	}
	return contact, nil
}

// ListContacts lists contacts matching filter.
func (s *Service) ListContacts(ctx context.Context, filter ContactFilter) ([]domain.TeamContact, error) {
	return s.repo.ListContacts(ctx, filter)
}

// ListAssigneeCandidates lists contacts eligible for task assignment.
func (s *Service) ListAssigneeCandidates(ctx context.Context) ([]domain.TeamContact, error) {
	contacts, err := s.repo.ListContacts(ctx, ContactFilter{})
	if err != nil {
		return nil, err
	}
	return domain.AssigneeCandidates(contacts), nil
}

// PersonScheduleQuery selects one person's work over a date range.
type PersonScheduleQuery struct {
	Person string
	From   domain.Date
	To     domain.Date
}

// ScheduledEvent pairs an event with the roles a person holds on it.
type ScheduledEvent struct {
	Event domain.Event
	Roles []domain.Role
}

// PersonSchedule gathers a person's events, tasks, and checklist mentions.
// Contact is nil when the name is not on the roster.
type PersonSchedule struct {
	Person         string
	Contact        *domain.TeamContact
	Events         []ScheduledEvent
	Tasks          []domain.Task
	ChecklistItems []domain.ChecklistItem
}

// PersonSchedule returns one person's work history and upcoming assignments.
func (s *Service) PersonSchedule(ctx context.Context, q PersonScheduleQuery) (PersonSchedule, error) {
	person := strings.TrimSpace(q.Person)
	if person == "" {
		return PersonSchedule{}, fmt.Errorf("%w: person is required", ErrInvalidRequest)
	}
	out := PersonSchedule{Person: person, Events: []ScheduledEvent{}, Tasks: []domain.Task{}, ChecklistItems: []domain.ChecklistItem{}}

	contacts, err := s.repo.ListContacts(ctx, ContactFilter{})
	if err != nil {
		return PersonSchedule{}, err
	}
	if contact, ok := domain.NewRoster(contacts).Lookup(person); ok {
		out.Contact = &contact
	}

	events, err := s.repo.ListEvents(ctx, EventFilter{From: q.From, To: q.To, AssignedTo: person})
	if err != nil {
		return PersonSchedule{}, err
	}
	slices.SortStableFunc(events, func(a, b domain.Event) int {
		return a.StartDate.Compare(b.StartDate)
	})
	for _, event := range events {
		out.Events = append(out.Events, ScheduledEvent{Event: event, Roles: event.AssignedTo(person)})
		items, err := s.repo.ListChecklistItems(ctx, event.ID)
		if err != nil {
			return PersonSchedule{}, err
		}
		out.ChecklistItems = append(out.ChecklistItems, domain.ChecklistItemsFor(person, items)...)
	}

	tasks, err := s.repo.ListTasks(ctx, TaskFilter{AssignedTo: person, DueFrom: q.From, DueTo: q.To})
	if err != nil {
		return PersonSchedule{}, err
	}
	out.Tasks = append(out.Tasks, tasks...)
	return out, nil
}

// isStale reports whether stored differs from the caller's expected timestamp.
func isStale(stored time.Time, expected *time.Time) bool {
	if expected == nil {
		return false
	}
	return !stored.Equal(*expected)
}
