package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/hylla/shootdesk/internal/domain"
)

type fakeRepo struct {
	projects     map[string]domain.Project
	events       map[string]domain.Event
	eventOrder   []string
	tasks        map[string]domain.Task
	checklist    map[string]domain.ChecklistItem
	contacts     map[string]domain.TeamContact
	contactOrder []string
	history      []domain.TaskStatusChange

	listEventCalls   int
	statusWrites     int
	statusWriteErr   error
	updateEventCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		projects:  map[string]domain.Project{},
		events:    map[string]domain.Event{},
		tasks:     map[string]domain.Task{},
		checklist: map[string]domain.ChecklistItem{},
		contacts:  map[string]domain.TeamContact{},
	}
}

func (f *fakeRepo) CreateProject(_ context.Context, p domain.Project) error {
	f.projects[p.ID] = p
	return nil
}

func (f *fakeRepo) UpdateProject(_ context.Context, p domain.Project) error {
	if _, ok := f.projects[p.ID]; !ok {
		return ErrNotFound
	}
	f.projects[p.ID] = p
	return nil
}

func (f *fakeRepo) GetProject(_ context.Context, id string) (domain.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return domain.Project{}, ErrNotFound
	}
	return p, nil
}

func (f *fakeRepo) ListProjects(_ context.Context, includeArchived bool) ([]domain.Project, error) {
	out := make([]domain.Project, 0, len(f.projects))
	for _, p := range f.projects {
		if !includeArchived && p.ArchivedAt != nil {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeRepo) CreateEvent(_ context.Context, e domain.Event) error {
	f.events[e.ID] = e
	f.eventOrder = append(f.eventOrder, e.ID)
	return nil
}

func (f *fakeRepo) UpdateEvent(_ context.Context, e domain.Event) error {
	if _, ok := f.events[e.ID]; !ok {
		return ErrNotFound
	}
	f.updateEventCalls++
	f.events[e.ID] = e
	return nil
}

func (f *fakeRepo) GetEvent(_ context.Context, id string) (domain.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return domain.Event{}, ErrNotFound
	}
	return e, nil
}

func (f *fakeRepo) ListEvents(_ context.Context, filter EventFilter) ([]domain.Event, error) {
	f.listEventCalls++
	out := []domain.Event{}
	for _, id := range f.eventOrder {
		e := f.events[id]
		if filter.ProjectID != "" && e.ProjectID != filter.ProjectID {
			continue
		}
		if !filter.From.IsZero() && e.LastDate().Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && e.StartDate.After(filter.To) {
			continue
		}
		if filter.AssignedTo != "" && len(e.AssignedTo(filter.AssignedTo)) == 0 {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeRepo) CreateTask(_ context.Context, t domain.Task) error {
	f.tasks[t.ID] = t
	return nil
}

func (f *fakeRepo) UpdateTask(_ context.Context, t domain.Task) error {
	if _, ok := f.tasks[t.ID]; !ok {
		return ErrNotFound
	}
	f.tasks[t.ID] = t
	return nil
}

func (f *fakeRepo) UpdateTaskStatus(_ context.Context, id string, status domain.TaskStatus, updatedAt time.Time) error {
	f.statusWrites++
	if f.statusWriteErr != nil {
		return f.statusWriteErr
	}
	t, ok := f.tasks[id]
	if !ok {
		return ErrNotFound
	}
	f.history = append([]domain.TaskStatusChange{{
		ID:         int64(len(f.history) + 1),
		TaskID:     id,
		ProjectID:  t.ProjectID,
		From:       t.Status,
		To:         status,
		OccurredAt: updatedAt,
	}}, f.history...)
	t.Status = status
	t.UpdatedAt = updatedAt
	f.tasks[id] = t
	return nil
}

func (f *fakeRepo) ListTaskStatusChanges(_ context.Context, taskID string, limit int) ([]domain.TaskStatusChange, error) {
	out := []domain.TaskStatusChange{}
	for _, change := range f.history {
		if change.TaskID != taskID {
			continue
		}
		out = append(out, change)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRepo) GetTask(_ context.Context, id string) (domain.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return domain.Task{}, ErrNotFound
	}
	return t, nil
}

func (f *fakeRepo) ListTasks(_ context.Context, filter TaskFilter) ([]domain.Task, error) {
	out := make([]domain.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		if filter.ProjectID != "" && t.ProjectID != filter.ProjectID {
			continue
		}
		if filter.Department != "" && t.Department != filter.Department {
			continue
		}
		if filter.AssignedTo != "" && !domain.SamePerson(t.AssignedTo, filter.AssignedTo) {
			continue
		}
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b domain.Task) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out, nil
}

func (f *fakeRepo) CreateChecklistItem(_ context.Context, c domain.ChecklistItem) error {
	f.checklist[c.ID] = c
	return nil
}

func (f *fakeRepo) UpdateChecklistItem(_ context.Context, c domain.ChecklistItem) error {
	if _, ok := f.checklist[c.ID]; !ok {
		return ErrNotFound
	}
	f.checklist[c.ID] = c
	return nil
}

func (f *fakeRepo) GetChecklistItem(_ context.Context, id string) (domain.ChecklistItem, error) {
	c, ok := f.checklist[id]
	if !ok {
		return domain.ChecklistItem{}, ErrNotFound
	}
	return c, nil
}

func (f *fakeRepo) ListChecklistItems(_ context.Context, eventID string) ([]domain.ChecklistItem, error) {
	out := []domain.ChecklistItem{}
	for _, c := range f.checklist {
		if c.EventID == eventID {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b domain.ChecklistItem) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out, nil
}

func (f *fakeRepo) CreateContact(_ context.Context, c domain.TeamContact) error {
	f.contacts[c.ID] = c
	f.contactOrder = append(f.contactOrder, c.ID)
	return nil
}

func (f *fakeRepo) UpdateContact(_ context.Context, c domain.TeamContact) error {
	if _, ok := f.contacts[c.ID]; !ok {
		return ErrNotFound
	}
	f.contacts[c.ID] = c
	return nil
}

func (f *fakeRepo) GetContact(_ context.Context, id string) (domain.TeamContact, error) {
	c, ok := f.contacts[id]
	if !ok {
		return domain.TeamContact{}, ErrNotFound
	}
	return c, nil
}

func (f *fakeRepo) ListContacts(_ context.Context, filter ContactFilter) ([]domain.TeamContact, error) {
	out := []domain.TeamContact{}
	for _, id := range f.contactOrder {
		c := f.contacts[id]
		if filter.Category != "" && !c.HasCategory(filter.Category) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// newTestService wires a service with sequential ids and a fixed clock.
func newTestService(repo *fakeRepo, cfg ServiceConfig) (*Service, *time.Time) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	idGen := func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return NewService(repo, idGen, func() time.Time { return now }, cfg), &now
}

func mustDate(t *testing.T, raw string) domain.Date {
	t.Helper()
	d, err := domain.ParseDate(raw)
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	return d
}

func mustClock(t *testing.T, raw string) *domain.ClockTime {
	t.Helper()
	c, err := domain.ParseClockTime(raw)
	if err != nil {
		t.Fatalf("ParseClockTime() error = %v", err)
	}
	return &c
}

func TestCreateEventReportsAdvisoryConflicts(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo, ServiceConfig{})
	ctx := context.Background()

	project, err := svc.CreateProject(ctx, CreateProjectInput{Name: "Asha & Raj"})
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	if _, err := svc.CreateEvent(ctx, CreateEventInput{
		ProjectID:   project.ID,
		Name:        "Reception Setup",
		StartDate:   mustDate(t, "2024-03-10"),
		StartTime:   mustClock(t, "15:30"),
		EndTime:     mustClock(t, "18:00"),
		Assignments: map[domain.Role]domain.RoleList{domain.RolePhotographer: {"Raj"}},
	}); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}

	res, err := svc.CreateEvent(ctx, CreateEventInput{
		ProjectID:   project.ID,
		Name:        "Mehndi Ceremony",
		StartDate:   mustDate(t, "2024-03-10"),
		StartTime:   mustClock(t, "14:00"),
		EndTime:     mustClock(t, "16:00"),
		Assignments: map[domain.Role]domain.RoleList{domain.RolePhotographer: domain.ParseRoleList("Asha, Raj")},
	})
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	if len(res.Conflicts) != 1 {
		t.Fatalf("expected one advisory conflict, got %#v", res.Conflicts)
	}
	if res.Conflicts[0].Person != "Raj" || res.Conflicts[0].BlockingEvent.Name != "Reception Setup" {
		t.Fatalf("unexpected conflict %#v", res.Conflicts[0])
	}
	if _, err := repo.GetEvent(ctx, res.Event.ID); err != nil {
		t.Fatalf("double-booked event must still be saved, got %v", err)
	}
}

func TestCreateEventRequiresProject(t *testing.T) {
	svc, _ := newTestService(newFakeRepo(), ServiceConfig{})
	_, err := svc.CreateEvent(context.Background(), CreateEventInput{ProjectID: "missing", Name: "x", StartDate: mustDate(t, "2024-03-10")})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCheckAvailability(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo, ServiceConfig{})
	ctx := context.Background()
	project, _ := svc.CreateProject(ctx, CreateProjectInput{Name: "p"})
	created, err := svc.CreateEvent(ctx, CreateEventInput{
		ProjectID:   project.ID,
		Name:        "Reception Setup",
		StartDate:   mustDate(t, "2024-03-10"),
		StartTime:   mustClock(t, "15:30"),
		EndTime:     mustClock(t, "18:00"),
		Assignments: map[domain.Role]domain.RoleList{domain.RolePhotographer: {"Raj"}},
	})
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}

	got, err := svc.CheckAvailability(ctx, AvailabilityQuery{Person: "raj", Date: "2024-03-10", Start: "14:00", End: "16:00"})
	if err != nil {
		t.Fatalf("CheckAvailability() error = %v", err)
	}
	if got.Available || got.BlockingEvent == nil || got.BlockingEvent.ID != created.Event.ID {
		t.Fatalf("expected Raj busy with reception, got %#v", got)
	}

	got, err = svc.CheckAvailability(ctx, AvailabilityQuery{Person: "Raj", Date: "2024-03-10", Start: "14:00", End: "16:00", ExcludeEventID: created.Event.ID})
	if err != nil || !got.Available {
		t.Fatalf("expected self-excluded check to be free, got %#v, %v", got, err)
	}

	calls := repo.listEventCalls
	got, err = svc.CheckAvailability(ctx, AvailabilityQuery{Person: "Raj", Date: "10/03/2024", Start: "14:00", End: "16:00"})
	if err != nil {
		t.Fatalf("CheckAvailability() error = %v", err)
	}
	if !got.Available || got.Reason != domain.AvailabilityUnknownWindow {
		t.Fatalf("malformed input must fail open, got %#v", got)
	}
	if repo.listEventCalls != calls {
		t.Fatal("unknown windows must not query storage")
	}

	if _, err := svc.CheckAvailability(ctx, AvailabilityQuery{Date: "2024-03-10"}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestTeamAvailabilityDefaultsToRoster(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo, ServiceConfig{})
	ctx := context.Background()
	project, _ := svc.CreateProject(ctx, CreateProjectInput{Name: "p"})
	for _, name := range []string{"Asha", "Raj"} {
		if _, err := svc.CreateContact(ctx, CreateContactInput{Name: name, Categories: []domain.ContactCategory{domain.ContactCategoryCrew}}); err != nil {
			t.Fatalf("CreateContact() error = %v", err)
		}
	}
	if _, err := svc.CreateEvent(ctx, CreateEventInput{
		ProjectID:   project.ID,
		Name:        "Sangeet",
		StartDate:   mustDate(t, "2024-03-10"),
		StartTime:   mustClock(t, "19:00"),
		EndTime:     mustClock(t, "23:00"),
		Assignments: map[domain.Role]domain.RoleList{domain.RoleAssistant: {"Asha"}},
	}); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	got, err := svc.TeamAvailability(ctx, TeamAvailabilityQuery{Date: "2024-03-10", Start: "20:00", End: "21:00"})
	if err != nil {
		t.Fatalf("TeamAvailability() error = %v", err)
	}
	if len(got) != 2 || got[0].Person != "Asha" || got[0].Available || !got[1].Available {
		t.Fatalf("unexpected team availability %#v", got)
	}
}

func TestUpdateEventAssignmentsFlagsStaleWrite(t *testing.T) {
	repo := newFakeRepo()
	svc, now := newTestService(repo, ServiceConfig{})
	ctx := context.Background()
	project, _ := svc.CreateProject(ctx, CreateProjectInput{Name: "p"})
	created, err := svc.CreateEvent(ctx, CreateEventInput{ProjectID: project.ID, Name: "Haldi", StartDate: mustDate(t, "2024-03-10")})
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	readAt := created.Event.UpdatedAt

	*now = now.Add(time.Minute)
	res, err := svc.UpdateEventAssignments(ctx, UpdateEventAssignmentsInput{
		EventID:           created.Event.ID,
		Assignments:       map[domain.Role]domain.RoleList{domain.RoleSiteManager: {"Kabir"}},
		ExpectedUpdatedAt: &readAt,
	})
	if err != nil {
		t.Fatalf("UpdateEventAssignments() error = %v", err)
	}
	if res.StaleWrite {
		t.Fatal("expected fresh write")
	}

	*now = now.Add(time.Minute)
	res, err = svc.UpdateEventAssignments(ctx, UpdateEventAssignmentsInput{
		EventID:           created.Event.ID,
		Assignments:       map[domain.Role]domain.RoleList{domain.RoleSiteManager: {"Meera"}},
		ExpectedUpdatedAt: &readAt,
	})
	if err != nil {
		t.Fatalf("UpdateEventAssignments() error = %v", err)
	}
	if !res.StaleWrite {
		t.Fatal("expected stale write warning")
	}
	stored, _ := repo.GetEvent(ctx, created.Event.ID)
	if stored.SiteManager.String() != "Meera" {
		t.Fatalf("last write must win, got %q", stored.SiteManager)
	}
}

func TestRescheduleEventValidates(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo, ServiceConfig{})
	ctx := context.Background()
	project, _ := svc.CreateProject(ctx, CreateProjectInput{Name: "p"})
	created, _ := svc.CreateEvent(ctx, CreateEventInput{ProjectID: project.ID, Name: "Haldi", StartDate: mustDate(t, "2024-03-10")})

	before := mustDate(t, "2024-03-01")
	_, err := svc.RescheduleEvent(ctx, RescheduleEventInput{EventID: created.Event.ID, StartDate: mustDate(t, "2024-03-10"), EndDate: &before})
	if !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
	if repo.updateEventCalls != 0 {
		t.Fatal("invalid reschedule must not write")
	}
	res, err := svc.RescheduleEvent(ctx, RescheduleEventInput{EventID: created.Event.ID, StartDate: mustDate(t, "2024-03-12"), StartTime: mustClock(t, "09:00"), EndTime: mustClock(t, "11:00")})
	if err != nil {
		t.Fatalf("RescheduleEvent() error = %v", err)
	}
	if res.Event.StartDate.String() != "2024-03-12" || !res.Event.Window(res.Event.StartDate).Bounded() {
		t.Fatalf("unexpected rescheduled event %#v", res.Event)
	}
}

func TestChangeTaskStatus(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo, ServiceConfig{})
	ctx := context.Background()
	project, _ := svc.CreateProject(ctx, CreateProjectInput{Name: "p"})
	task, err := svc.CreateTask(ctx, CreateTaskInput{ProjectID: project.ID, Title: "Album", Department: domain.DepartmentPhoto})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if task.Status != domain.StatusBacklog {
		t.Fatalf("expected backlog, got %q", task.Status)
	}

	res, err := svc.ChangeTaskStatus(ctx, ChangeTaskStatusInput{TaskID: task.ID, Status: "printing"})
	if err != nil {
		t.Fatalf("ChangeTaskStatus() error = %v", err)
	}
	if !res.Changed || res.Task.Status != domain.StatusPrinting || repo.statusWrites != 1 {
		t.Fatalf("unexpected result %#v writes=%d", res, repo.statusWrites)
	}

	res, err = svc.ChangeTaskStatus(ctx, ChangeTaskStatusInput{TaskID: task.ID, Status: "printing"})
	if err != nil {
		t.Fatalf("ChangeTaskStatus() error = %v", err)
	}
	if res.Changed || repo.statusWrites != 1 {
		t.Fatalf("same-status change must not write, writes=%d", repo.statusWrites)
	}

	_, err = svc.ChangeTaskStatus(ctx, ChangeTaskStatusInput{TaskID: task.ID, Status: "in_review"})
	if !errors.Is(err, domain.ErrUnknownStatus) || repo.statusWrites != 1 {
		t.Fatalf("expected rejection before write, got %v writes=%d", err, repo.statusWrites)
	}

	if _, err := svc.ChangeTaskStatus(ctx, ChangeTaskStatusInput{TaskID: "missing", Status: "editing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	history, err := svc.TaskHistory(ctx, task.ID, 10)
	if err != nil {
		t.Fatalf("TaskHistory() error = %v", err)
	}
	if len(history) != 1 || history[0].From != domain.StatusBacklog || history[0].To != domain.StatusPrinting {
		t.Fatalf("unexpected history %#v", history)
	}
}

func TestChangeTaskStatusStrictModeAndForce(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo, ServiceConfig{TransitionMode: domain.TransitionModeStrict})
	ctx := context.Background()
	project, _ := svc.CreateProject(ctx, CreateProjectInput{Name: "p"})
	task, _ := svc.CreateTask(ctx, CreateTaskInput{ProjectID: project.ID, Title: "Film", Department: domain.DepartmentVideo})

	if _, err := svc.ChangeTaskStatus(ctx, ChangeTaskStatusInput{TaskID: task.ID, Status: "submitted"}); !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
	res, err := svc.ChangeTaskStatus(ctx, ChangeTaskStatusInput{TaskID: task.ID, Status: "submitted", Force: true})
	if err != nil || res.Task.Status != domain.StatusSubmitted {
		t.Fatalf("forced change failed: %#v, %v", res, err)
	}
}

func TestChangeTaskStatusSurfacesStorageError(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo, ServiceConfig{})
	ctx := context.Background()
	project, _ := svc.CreateProject(ctx, CreateProjectInput{Name: "p"})
	task, _ := svc.CreateTask(ctx, CreateTaskInput{ProjectID: project.ID, Title: "Film", Department: domain.DepartmentVideo})

	writeErr := errors.New("disk full")
	repo.statusWriteErr = writeErr
	res, err := svc.ChangeTaskStatus(ctx, ChangeTaskStatusInput{TaskID: task.ID, Status: "in_progress"})
	if !errors.Is(err, writeErr) {
		t.Fatalf("expected storage error as-is, got %v", err)
	}
	if res.Task.Status != domain.StatusBacklog {
		t.Fatalf("failed write must report prior status, got %q", res.Task.Status)
	}
}

func TestUpdateTaskDepartmentChangeResetsStatus(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo, ServiceConfig{})
	ctx := context.Background()
	project, _ := svc.CreateProject(ctx, CreateProjectInput{Name: "p"})
	task, _ := svc.CreateTask(ctx, CreateTaskInput{ProjectID: project.ID, Title: "Teaser", Department: domain.DepartmentPhoto})
	if _, err := svc.ChangeTaskStatus(ctx, ChangeTaskStatusInput{TaskID: task.ID, Status: "editing"}); err != nil {
		t.Fatalf("ChangeTaskStatus() error = %v", err)
	}
	updated, err := svc.UpdateTask(ctx, UpdateTaskInput{TaskID: task.ID, Department: domain.DepartmentVideo, Details: domain.TaskDetails{Title: "Teaser film"}})
	if err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	if updated.Department != domain.DepartmentVideo || updated.Status != domain.StatusBacklog || updated.Title != "Teaser film" {
		t.Fatalf("unexpected task %#v", updated)
	}
}

func TestEventProgressAndChecklist(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo, ServiceConfig{})
	ctx := context.Background()
	project, _ := svc.CreateProject(ctx, CreateProjectInput{Name: "p"})
	created, _ := svc.CreateEvent(ctx, CreateEventInput{ProjectID: project.ID, Name: "Haldi", StartDate: mustDate(t, "2024-03-10")})

	empty, err := svc.EventProgress(ctx, created.Event.ID)
	if err != nil {
		t.Fatalf("EventProgress() error = %v", err)
	}
	if empty.Percent != 0 || empty.Total != 0 {
		t.Fatalf("expected empty progress 0, got %#v", empty)
	}

	var ids []string
	for _, name := range []string{"Batteries", "Cards", "Lights"} {
		item, err := svc.AddChecklistItem(ctx, AddChecklistItemInput{EventID: created.Event.ID, ItemName: name})
		if err != nil {
			t.Fatalf("AddChecklistItem() error = %v", err)
		}
		ids = append(ids, item.ID)
	}
	for _, id := range ids[:2] {
		if _, err := svc.SetChecklistItemCompleted(ctx, id, true); err != nil {
			t.Fatalf("SetChecklistItemCompleted() error = %v", err)
		}
	}
	progress, err := svc.EventProgress(ctx, created.Event.ID)
	if err != nil {
		t.Fatalf("EventProgress() error = %v", err)
	}
	if progress.Percent != 67 || progress.Completed != 2 || progress.Total != 3 {
		t.Fatalf("unexpected progress %#v", progress)
	}
	if _, err := svc.AddChecklistItem(ctx, AddChecklistItemInput{EventID: "missing", ItemName: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListAssigneeCandidates(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo, ServiceConfig{})
	ctx := context.Background()
	if _, err := svc.CreateContact(ctx, CreateContactInput{Name: "Raj", Categories: []domain.ContactCategory{domain.ContactCategoryCrew}}); err != nil {
		t.Fatalf("CreateContact() error = %v", err)
	}
	if _, err := svc.CreateContact(ctx, CreateContactInput{Name: "Meera", Categories: []domain.ContactCategory{domain.ContactCategoryPostProduction}}); err != nil {
		t.Fatalf("CreateContact() error = %v", err)
	}
	got, err := svc.ListAssigneeCandidates(ctx)
	if err != nil {
		t.Fatalf("ListAssigneeCandidates() error = %v", err)
	}
	if len(got) != 1 || got[0].Name != "Meera" {
		t.Fatalf("unexpected candidates %#v", got)
	}
}

func TestPersonSchedule(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo, ServiceConfig{})
	ctx := context.Background()
	project, _ := svc.CreateProject(ctx, CreateProjectInput{Name: "p"})
	if _, err := svc.CreateContact(ctx, CreateContactInput{Name: "Raj Kumar"}); err != nil {
		t.Fatalf("CreateContact() error = %v", err)
	}
	later, _ := svc.CreateEvent(ctx, CreateEventInput{
		ProjectID:   project.ID,
		Name:        "Reception",
		StartDate:   mustDate(t, "2024-03-12"),
		Assignments: map[domain.Role]domain.RoleList{domain.RolePhotographer: {"raj kumar"}, domain.RoleAssistant: {"Raj Kumar"}},
	})
	earlier, _ := svc.CreateEvent(ctx, CreateEventInput{
		ProjectID:   project.ID,
		Name:        "Haldi",
		StartDate:   mustDate(t, "2024-03-10"),
		Assignments: map[domain.Role]domain.RoleList{domain.RoleDroneOperator: {"Raj Kumar"}},
	})
	if _, err := svc.CreateEvent(ctx, CreateEventInput{ProjectID: project.ID, Name: "Other", StartDate: mustDate(t, "2024-03-11")}); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	if _, err := svc.AddChecklistItem(ctx, AddChecklistItemInput{EventID: earlier.Event.ID, ItemName: "Drone permit", AssignedRole: "RAJ KUMAR"}); err != nil {
		t.Fatalf("AddChecklistItem() error = %v", err)
	}
	if _, err := svc.CreateTask(ctx, CreateTaskInput{ProjectID: project.ID, Title: "Aerial edit", Department: domain.DepartmentVideo, AssignedTo: "Raj Kumar"}); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	got, err := svc.PersonSchedule(ctx, PersonScheduleQuery{Person: "Raj Kumar"})
	if err != nil {
		t.Fatalf("PersonSchedule() error = %v", err)
	}
	if got.Contact == nil || got.Contact.Name != "Raj Kumar" {
		t.Fatalf("expected roster match, got %#v", got.Contact)
	}
	if len(got.Events) != 2 || got.Events[0].Event.ID != earlier.Event.ID || got.Events[1].Event.ID != later.Event.ID {
		t.Fatalf("unexpected events %#v", got.Events)
	}
	if !slices.Equal(got.Events[1].Roles, []domain.Role{domain.RolePhotographer, domain.RoleAssistant}) {
		t.Fatalf("unexpected roles %v", got.Events[1].Roles)
	}
	if len(got.ChecklistItems) != 1 || len(got.Tasks) != 1 {
		t.Fatalf("unexpected checklist/tasks %#v %#v", got.ChecklistItems, got.Tasks)
	}

	unknown, err := svc.PersonSchedule(ctx, PersonScheduleQuery{Person: "Nobody"})
	if err != nil {
		t.Fatalf("PersonSchedule() error = %v", err)
	}
	if unknown.Contact != nil || len(unknown.Events) != 0 {
		t.Fatalf("unknown person must yield empty schedule, got %#v", unknown)
	}
}

func TestUpdateProjectProgress(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo, ServiceConfig{})
	ctx := context.Background()
	project, _ := svc.CreateProject(ctx, CreateProjectInput{Name: "p"})
	got, err := svc.UpdateProjectProgress(ctx, project.ID, 180)
	if err != nil {
		t.Fatalf("UpdateProjectProgress() error = %v", err)
	}
	if got.ProgressPercentage != 100 {
		t.Fatalf("expected clamped progress, got %d", got.ProgressPercentage)
	}
}
