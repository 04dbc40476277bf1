package domain

import (
	"errors"
	"slices"
	"testing"
	"time"
)

func TestWorkflowClosure(t *testing.T) {
	cases := map[Department]TaskStatus{
		DepartmentPhoto: StatusDelivered,
		DepartmentVideo: StatusCompleted,
	}
	for dept, terminal := range cases {
		wf, err := WorkflowFor(dept)
		if err != nil {
			t.Fatalf("WorkflowFor(%q) error = %v", dept, err)
		}
		if wf.Initial() != StatusBacklog || wf.Terminal() != terminal {
			t.Fatalf("%s: unexpected initial/terminal %q/%q", dept, wf.Initial(), wf.Terminal())
		}
		reachable := wf.ReachableFrom(wf.Initial())
		if !slices.Equal(reachable, wf.Statuses()) {
			t.Fatalf("%s: status island, reachable %v of %v", dept, reachable, wf.Statuses())
		}
		for _, status := range wf.Statuses() {
			path := wf.ReachableFrom(status)
			if path[len(path)-1] != terminal {
				t.Fatalf("%s: %q does not reach %q", dept, status, terminal)
			}
		}
	}
	if _, err := WorkflowFor("audio"); err != ErrInvalidDepartment {
		t.Fatalf("expected ErrInvalidDepartment, got %v", err)
	}
}

func TestDepartmentsDoNotShareStatuses(t *testing.T) {
	photo, _ := WorkflowFor(DepartmentPhoto)
	video, _ := WorkflowFor(DepartmentVideo)
	if photo.Contains(StatusInProgress) || video.Contains(StatusEditing) {
		t.Fatal("department status sets must stay distinct")
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name    string
		dept    Department
		from    TaskStatus
		to      TaskStatus
		mode    TransitionMode
		allowed bool
	}{
		{"permissive skip", DepartmentPhoto, StatusBacklog, StatusDelivered, TransitionModePermissive, true},
		{"permissive backwards", DepartmentVideo, StatusCompleted, StatusBacklog, TransitionModePermissive, true},
		{"permissive foreign status", DepartmentPhoto, StatusBacklog, StatusInProgress, TransitionModePermissive, false},
		{"strict forward", DepartmentPhoto, StatusBacklog, StatusClientReview, TransitionModeStrict, true},
		{"strict backward", DepartmentVideo, StatusCorrection, StatusInReview, TransitionModeStrict, true},
		{"strict stay", DepartmentVideo, StatusInReview, StatusInReview, TransitionModeStrict, true},
		{"strict skip", DepartmentPhoto, StatusBacklog, StatusEditing, TransitionModeStrict, false},
		{"strict unknown current", DepartmentPhoto, "archived", StatusBacklog, TransitionModeStrict, false},
		{"default is permissive", DepartmentVideo, StatusBacklog, StatusSubmitted, "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanTransition(tc.dept, tc.from, tc.to, tc.mode); got != tc.allowed {
				t.Fatalf("CanTransition() = %v, want %v", got, tc.allowed)
			}
		})
	}
}

func TestApplyTransitionErrors(t *testing.T) {
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	task, err := NewTask(TaskInput{ID: "t1", ProjectID: "p1", Title: "Highlights", Department: DepartmentVideo}, now)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}

	_, err = ApplyTransition(task, StatusPrinting, TransitionOptions{}, now)
	var terr *TransitionError
	if !errors.As(err, &terr) || !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected unknown status TransitionError, got %v", err)
	}
	if terr.From != StatusBacklog || terr.To != StatusPrinting || terr.Mode != TransitionModePermissive {
		t.Fatalf("unexpected error detail %#v", terr)
	}

	strict := TransitionOptions{Mode: TransitionModeStrict}
	unchanged, err := ApplyTransition(task, StatusCorrection, strict, now)
	if !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
	if unchanged.Status != StatusBacklog {
		t.Fatalf("rejected transition must not change status, got %q", unchanged.Status)
	}

	forced, err := ApplyTransition(task, StatusCorrection, TransitionOptions{Mode: TransitionModeStrict, Force: true}, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("forced ApplyTransition() error = %v", err)
	}
	if forced.Status != StatusCorrection || !forced.UpdatedAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected forced task %#v", forced)
	}
	if _, err := ApplyTransition(task, StatusDelivered, TransitionOptions{Mode: TransitionModeStrict, Force: true}, now); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("force must not bypass the status set, got %v", err)
	}
}

func TestApplyTransitionNormalizesInput(t *testing.T) {
	now := time.Now()
	task := Task{ID: "t1", Department: DepartmentVideo, Status: StatusBacklog}
	got, err := ApplyTransition(task, " In Progress ", TransitionOptions{Mode: TransitionModeStrict}, now)
	if err != nil {
		t.Fatalf("ApplyTransition() error = %v", err)
	}
	if got.Status != StatusInProgress {
		t.Fatalf("unexpected status %q", got.Status)
	}
	if NormalizeTaskStatus("Pending") != StatusBacklog {
		t.Fatal("expected pending to normalize to backlog")
	}
}

func TestParseTransitionMode(t *testing.T) {
	if mode, err := ParseTransitionMode(""); err != nil || mode != TransitionModePermissive {
		t.Fatalf("ParseTransitionMode(\"\") = %q, %v", mode, err)
	}
	if mode, err := ParseTransitionMode("STRICT"); err != nil || mode != TransitionModeStrict {
		t.Fatalf("ParseTransitionMode(STRICT) = %q, %v", mode, err)
	}
	if _, err := ParseTransitionMode("lenient"); !errors.Is(err, ErrInvalidTransitionMode) {
		t.Fatalf("expected ErrInvalidTransitionMode, got %v", err)
	}
}
