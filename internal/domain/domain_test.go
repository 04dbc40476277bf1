package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewProjectAndSlug(t *testing.T) {
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	p, err := NewProject(ProjectInput{ID: "p1", Name: "  Asha & Raj Wedding!  ", EventType: " wedding "}, now)
	if err != nil {
		t.Fatalf("NewProject() error = %v", err)
	}
	if p.Slug != "asha-raj-wedding" {
		t.Fatalf("unexpected slug %q", p.Slug)
	}
	if p.Name != "Asha & Raj Wedding!" {
		t.Fatalf("unexpected name %q", p.Name)
	}
	if p.Status != ProjectStatusActive || p.EventType != "wedding" {
		t.Fatalf("unexpected defaults %#v", p)
	}
}

func TestNewProjectValidation(t *testing.T) {
	now := time.Now()
	if _, err := NewProject(ProjectInput{Name: "ok"}, now); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := NewProject(ProjectInput{ID: "id", Name: "   "}, now); err != ErrInvalidName {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if _, err := NewProject(ProjectInput{ID: "id", Name: "ok", Status: "paused"}, now); err != ErrInvalidProjectStatus {
		t.Fatalf("expected ErrInvalidProjectStatus, got %v", err)
	}
}

func TestProjectProgressIsClamped(t *testing.T) {
	now := time.Now()
	p, err := NewProject(ProjectInput{ID: "p1", Name: "test"}, now)
	if err != nil {
		t.Fatalf("NewProject() error = %v", err)
	}
	cases := map[int]int{-5: 0, 0: 0, 42: 42, 100: 100, 140: 100}
	for in, want := range cases {
		p.SetProgress(in, now)
		if p.ProgressPercentage != want {
			t.Fatalf("SetProgress(%d) = %d, want %d", in, p.ProgressPercentage, want)
		}
	}
}

func TestProjectArchiveRestore(t *testing.T) {
	now := time.Now()
	p, err := NewProject(ProjectInput{ID: "p1", Name: "test"}, now)
	if err != nil {
		t.Fatalf("NewProject() error = %v", err)
	}
	later := now.Add(time.Minute)
	p.Archive(later)
	if p.ArchivedAt == nil {
		t.Fatal("expected archived_at to be set")
	}
	p.Restore(later.Add(time.Minute))
	if p.ArchivedAt != nil {
		t.Fatal("expected archived_at to be nil")
	}
}

func TestNewTaskDefaults(t *testing.T) {
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	due := Date{Year: 2026, Month: time.March, Day: 1}
	task, err := NewTask(TaskInput{
		ID:             "t1",
		ProjectID:      "p1",
		Title:          "  Album layout ",
		Department:     DepartmentPhoto,
		DueDate:        &due,
		EstimatedHours: 6.5,
		AssignedTo:     " Meera ",
	}, now)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	if task.Status != StatusBacklog {
		t.Fatalf("expected initial status backlog, got %q", task.Status)
	}
	if task.Priority != PriorityMedium {
		t.Fatalf("expected default medium priority, got %q", task.Priority)
	}
	if task.Title != "Album layout" || task.AssignedTo != "Meera" {
		t.Fatalf("unexpected normalization %#v", task)
	}
	if task.DueDate == nil || *task.DueDate != due {
		t.Fatalf("unexpected due date %v", task.DueDate)
	}
}

func TestNewTaskValidation(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		in   TaskInput
		want error
	}{
		{"missing id", TaskInput{ProjectID: "p1", Title: "x", Department: DepartmentPhoto}, ErrInvalidID},
		{"missing project", TaskInput{ID: "t1", Title: "x", Department: DepartmentPhoto}, ErrInvalidID},
		{"missing title", TaskInput{ID: "t1", ProjectID: "p1", Department: DepartmentPhoto}, ErrInvalidTitle},
		{"bad department", TaskInput{ID: "t1", ProjectID: "p1", Title: "x", Department: "audio"}, ErrInvalidDepartment},
		{"bad priority", TaskInput{ID: "t1", ProjectID: "p1", Title: "x", Department: DepartmentVideo, Priority: "whenever"}, ErrInvalidPriority},
		{"negative estimate", TaskInput{ID: "t1", ProjectID: "p1", Title: "x", Department: DepartmentVideo, EstimatedHours: -1}, ErrInvalidEstimate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewTask(tc.in, now); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestTaskChangeDepartmentResetsStatus(t *testing.T) {
	now := time.Now()
	task, err := NewTask(TaskInput{ID: "t1", ProjectID: "p1", Title: "Teaser", Department: DepartmentPhoto}, now)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	task, err = ApplyTransition(task, StatusEditing, TransitionOptions{}, now)
	if err != nil {
		t.Fatalf("ApplyTransition() error = %v", err)
	}
	if err := task.ChangeDepartment(DepartmentVideo, now.Add(time.Minute)); err != nil {
		t.Fatalf("ChangeDepartment() error = %v", err)
	}
	if task.Department != DepartmentVideo || task.Status != StatusBacklog {
		t.Fatalf("expected video/backlog, got %s/%s", task.Department, task.Status)
	}
	if err := task.ChangeDepartment("audio", now); err != ErrInvalidDepartment {
		t.Fatalf("expected ErrInvalidDepartment, got %v", err)
	}
}

func TestTaskUpdateDetailsKeepsStatus(t *testing.T) {
	now := time.Now()
	task, err := NewTask(TaskInput{ID: "t1", ProjectID: "p1", Title: "Teaser", Department: DepartmentVideo}, now)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	task.Status = StatusInReview
	if err := task.UpdateDetails(TaskDetails{Title: "Teaser v2", Priority: PriorityUrgent, AssignedTo: "Dev"}, now); err != nil {
		t.Fatalf("UpdateDetails() error = %v", err)
	}
	if task.Status != StatusInReview || task.Priority != PriorityUrgent || task.Title != "Teaser v2" {
		t.Fatalf("unexpected task after update %#v", task)
	}
	if err := task.UpdateDetails(TaskDetails{Title: " "}, now); err != ErrInvalidTitle {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}
}

func TestChecklistProgressBounds(t *testing.T) {
	mk := func(total, done int) []ChecklistItem {
		items := make([]ChecklistItem, total)
		for i := range done {
			items[i].Completed = true
		}
		return items
	}
	for total := 0; total <= 12; total++ {
		for done := 0; done <= total; done++ {
			got := ChecklistProgress(mk(total, done))
			if got < 0 || got > 100 {
				t.Fatalf("ChecklistProgress(%d/%d) = %d out of range", done, total, got)
			}
		}
	}
	cases := []struct {
		total, done, want int
	}{
		{0, 0, 0},
		{3, 0, 0},
		{3, 1, 33},
		{3, 2, 67},
		{3, 3, 100},
		{8, 1, 13},
	}
	for _, tc := range cases {
		if got := ChecklistProgress(mk(tc.total, tc.done)); got != tc.want {
			t.Fatalf("ChecklistProgress(%d/%d) = %d, want %d", tc.done, tc.total, got, tc.want)
		}
	}
}

func TestChecklistItemsForUsesNameJoin(t *testing.T) {
	items := []ChecklistItem{
		{ID: "c1", ItemName: "Batteries", AssignedRole: "Raj"},
		{ID: "c2", ItemName: "Drone permit", AssignedRole: "  raj "},
		{ID: "c3", ItemName: "Backdrop", AssignedRole: "Asha"},
		{ID: "c4", ItemName: "Tripods"},
	}
	got := ChecklistItemsFor("RAJ", items)
	if len(got) != 2 || got[0].ID != "c1" || got[1].ID != "c2" {
		t.Fatalf("unexpected items %#v", got)
	}
	if got := ChecklistItemsFor("Nobody", items); len(got) != 0 {
		t.Fatalf("expected no items for unknown person, got %#v", got)
	}
}

func TestNewChecklistItemValidation(t *testing.T) {
	now := time.Now()
	if _, err := NewChecklistItem(ChecklistItemInput{EventID: "e1", ItemName: "x"}, now); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := NewChecklistItem(ChecklistItemInput{ID: "c1", EventID: "e1", ItemName: " "}, now); err != ErrInvalidName {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	item, err := NewChecklistItem(ChecklistItemInput{ID: "c1", EventID: "e1", ItemName: "Spare cards"}, now)
	if err != nil {
		t.Fatalf("NewChecklistItem() error = %v", err)
	}
	item.SetCompleted(true, now)
	if !item.Completed {
		t.Fatal("expected completed item")
	}
}

func TestPersonKeyAndRoster(t *testing.T) {
	if PersonKey("  Asha   Patel ") != "asha patel" {
		t.Fatalf("unexpected key %q", PersonKey("  Asha   Patel "))
	}
	if SamePerson("", " ") {
		t.Fatal("empty names must not match")
	}
	now := time.Now()
	asha, err := NewTeamContact(TeamContactInput{ID: "k1", Name: "Asha Patel", Categories: []ContactCategory{"crew"}}, now)
	if err != nil {
		t.Fatalf("NewTeamContact() error = %v", err)
	}
	meera, err := NewTeamContact(TeamContactInput{ID: "k2", Name: "Meera", Categories: []ContactCategory{"post-production", "crew"}}, now)
	if err != nil {
		t.Fatalf("NewTeamContact() error = %v", err)
	}
	roster := NewRoster([]TeamContact{asha, meera})
	if got, ok := roster.Lookup("asha patel"); !ok || got.ID != "k1" {
		t.Fatalf("Lookup() = %#v, %v", got, ok)
	}
	if _, ok := roster.Lookup("Unknown Person"); ok {
		t.Fatal("expected unknown person lookup to miss")
	}
	candidates := AssigneeCandidates([]TeamContact{asha, meera})
	if len(candidates) != 1 || candidates[0].ID != "k2" {
		t.Fatalf("unexpected candidates %#v", candidates)
	}
	if _, err := NewTeamContact(TeamContactInput{ID: "k3", Name: "x", Categories: []ContactCategory{"vendor"}}, now); err != ErrInvalidCategory {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}
