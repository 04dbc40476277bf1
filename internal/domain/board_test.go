package domain

import (
	"errors"
	"testing"
	"time"
)

func boardFixture(t *testing.T) Board {
	t.Helper()
	tasks := []Task{
		{ID: "t1", Department: DepartmentPhoto, Status: StatusBacklog, Title: "Cull"},
		{ID: "t2", Department: DepartmentPhoto, Status: "pending", Title: "Album"},
		{ID: "t3", Department: DepartmentPhoto, Status: StatusEditing, Title: "Retouch"},
		{ID: "t4", Department: DepartmentVideo, Status: StatusInProgress, Title: "Teaser"},
		{ID: "t5", Department: DepartmentPhoto, Status: "on_hold", Title: "Prints"},
	}
	board, err := BuildBoard(DepartmentPhoto, tasks)
	if err != nil {
		t.Fatalf("BuildBoard() error = %v", err)
	}
	return board
}

func TestBuildBoardGroupsByStatus(t *testing.T) {
	board := boardFixture(t)
	if len(board.Columns) != 5 {
		t.Fatalf("expected 5 photo columns, got %d", len(board.Columns))
	}
	if board.Columns[0].Title != "Backlog" || len(board.Columns[0].Tasks) != 2 {
		t.Fatalf("unexpected backlog column %#v", board.Columns[0])
	}
	if board.Columns[2].Status != StatusEditing || len(board.Columns[2].Tasks) != 1 {
		t.Fatalf("unexpected editing column %#v", board.Columns[2])
	}
	if len(board.Orphans) != 1 || board.Orphans[0].ID != "t5" {
		t.Fatalf("unexpected orphans %#v", board.Orphans)
	}
	if board.Len() != 4 {
		t.Fatalf("expected video task to be skipped, got %d tasks", board.Len())
	}
}

func TestBoardMoveNoOp(t *testing.T) {
	board := boardFixture(t)
	res, err := board.Move("t3", StatusEditing, TransitionOptions{}, time.Now())
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if res.Changed {
		t.Fatal("expected same-column move to be a no-op")
	}
	if status, _ := board.ColumnOf("t3"); status != StatusEditing {
		t.Fatalf("unexpected column %q", status)
	}
}

func TestBoardMoveAndRevert(t *testing.T) {
	board := boardFixture(t)
	before := board.Clone()
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)

	res, err := board.Move("t2", StatusPrinting, TransitionOptions{}, now)
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if !res.Changed || res.From != StatusBacklog || res.To != StatusPrinting {
		t.Fatalf("unexpected move result %#v", res)
	}
	if status, _ := board.ColumnOf("t2"); status != StatusPrinting {
		t.Fatalf("expected t2 in printing, got %q", status)
	}

	board.Revert(res)
	if status, _ := board.ColumnOf("t2"); status != StatusBacklog {
		t.Fatalf("expected t2 restored to backlog, got %q", status)
	}
	if got := board.Columns[0].Tasks[1].ID; got != before.Columns[0].Tasks[1].ID {
		t.Fatalf("expected original row order restored, got %q", got)
	}
	if len(board.Columns[3].Tasks) != 0 {
		t.Fatalf("expected printing column empty after revert, got %#v", board.Columns[3].Tasks)
	}
}

func TestBoardMoveRejectsIllegalTarget(t *testing.T) {
	board := boardFixture(t)
	if _, err := board.Move("t1", StatusInReview, TransitionOptions{}, time.Now()); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
	if _, err := board.Move("t1", StatusEditing, TransitionOptions{Mode: TransitionModeStrict}, time.Now()); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
	if _, err := board.Move("missing", StatusEditing, TransitionOptions{}, time.Now()); err != ErrTaskNotOnBoard {
		t.Fatalf("expected ErrTaskNotOnBoard, got %v", err)
	}
}

func TestBoardMoveOrphanIntoColumn(t *testing.T) {
	board := boardFixture(t)
	res, err := board.Move("t5", StatusPrinting, TransitionOptions{}, time.Now())
	if err != nil {
		t.Fatalf("Move() error = %v", err)
	}
	if !res.Changed || len(board.Orphans) != 0 {
		t.Fatalf("expected orphan to move into printing, got %#v", board.Orphans)
	}
	board.Revert(res)
	if len(board.Orphans) != 1 || board.Orphans[0].Status != "on_hold" {
		t.Fatalf("expected orphan restored, got %#v", board.Orphans)
	}
}
