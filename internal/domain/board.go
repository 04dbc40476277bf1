package domain

import (
	"slices"
	"strings"
	"time"
)

// BoardColumn groups the tasks sharing one status.
type BoardColumn struct {
	Status TaskStatus
	Title  string
	Tasks  []Task
}

// Board is one department's kanban view: one column per workflow state in pipeline order.
type Board struct {
	Department Department
	Columns    []BoardColumn
	// Orphans holds tasks whose stored status is outside the department's set.
	Orphans []Task
}

// BuildBoard groups tasks into columns. Tasks of other departments are skipped;
// input order is kept within each column.
func BuildBoard(dept Department, tasks []Task) (Board, error) {
	wf, err := WorkflowFor(dept)
	if err != nil {
		return Board{}, err
	}
	board := Board{Department: dept, Columns: make([]BoardColumn, 0, len(wf.statuses)), Orphans: []Task{}}
	for _, status := range wf.statuses {
		board.Columns = append(board.Columns, BoardColumn{Status: status, Title: wf.Label(status), Tasks: []Task{}})
	}
	for _, task := range tasks {
		if task.Department != dept {
			continue
		}
		task.Status = NormalizeTaskStatus(string(task.Status))
		idx := wf.Index(task.Status)
		if idx < 0 {
			board.Orphans = append(board.Orphans, task)
			continue
		}
		board.Columns[idx].Tasks = append(board.Columns[idx].Tasks, task)
	}
	return board, nil
}

// orphanColumn marks a task located in Board.Orphans.
const orphanColumn = -1

// Locate returns the column and row of a task. Column is -1 for orphans.
func (b Board) Locate(taskID string) (column, row int, ok bool) {
	taskID = strings.TrimSpace(taskID)
	for c, col := range b.Columns {
		for r, task := range col.Tasks {
			if task.ID == taskID {
				return c, r, true
			}
		}
	}
	for r, task := range b.Orphans {
		if task.ID == taskID {
			return orphanColumn, r, true
		}
	}
	return 0, 0, false
}

// ColumnOf returns the status column currently holding a task.
func (b Board) ColumnOf(taskID string) (TaskStatus, bool) {
	c, r, ok := b.Locate(taskID)
	if !ok {
		return "", false
	}
	if c == orphanColumn {
		return b.Orphans[r].Status, true
	}
	return b.Columns[c].Status, true
}

// Task returns one task by id.
func (b Board) Task(taskID string) (Task, bool) {
	c, r, ok := b.Locate(taskID)
	if !ok {
		return Task{}, false
	}
	if c == orphanColumn {
		return b.Orphans[r], true
	}
	return b.Columns[c].Tasks[r], true
}

// MoveResult describes one applied board move so it can be written and reverted.
type MoveResult struct {
	Task       Task
	Previous   Task
	From       TaskStatus
	To         TaskStatus
	FromColumn int
	FromRow    int
	// Changed is false when the move targets the task's current column; no write is needed.
	Changed bool
}

// Move applies a status change to the board in place.
func (b *Board) Move(taskID string, target TaskStatus, opts TransitionOptions, now time.Time) (MoveResult, error) {
	c, r, ok := b.Locate(taskID)
	if !ok {
		return MoveResult{}, ErrTaskNotOnBoard
	}
	var current Task
	if c == orphanColumn {
		current = b.Orphans[r]
	} else {
		current = b.Columns[c].Tasks[r]
	}
	res := MoveResult{
		Task:       current,
		Previous:   current,
		From:       current.Status,
		To:         current.Status,
		FromColumn: c,
		FromRow:    r,
	}

	updated, err := ApplyTransition(current, target, opts, now)
	if err != nil {
		return res, err
	}
	if updated.Status == current.Status {
		return res, nil
	}

	b.removeAt(c, r)
	to := slices.IndexFunc(b.Columns, func(col BoardColumn) bool { return col.Status == updated.Status })
	b.Columns[to].Tasks = append(b.Columns[to].Tasks, updated)

	res.Task = updated
	res.To = updated.Status
	res.Changed = true
	return res, nil
}

// Revert undoes a changed move, restoring the prior task at its prior position.
func (b *Board) Revert(res MoveResult) {
	if !res.Changed {
		return
	}
	if c, r, ok := b.Locate(res.Task.ID); ok {
		b.removeAt(c, r)
	}
	if res.FromColumn == orphanColumn {
		b.Orphans = slices.Insert(b.Orphans, min(res.FromRow, len(b.Orphans)), res.Previous)
		return
	}
	if res.FromColumn < 0 || res.FromColumn >= len(b.Columns) {
		return
	}
	col := &b.Columns[res.FromColumn]
	col.Tasks = slices.Insert(col.Tasks, min(res.FromRow, len(col.Tasks)), res.Previous)
}

// Replace swaps in a fresh copy of a task, relocating it when its status changed.
func (b *Board) Replace(task Task) {
	if c, r, ok := b.Locate(task.ID); ok {
		b.removeAt(c, r)
	}
	if task.Department != b.Department {
		return
	}
	task.Status = NormalizeTaskStatus(string(task.Status))
	idx := slices.IndexFunc(b.Columns, func(col BoardColumn) bool { return col.Status == task.Status })
	if idx < 0 {
		b.Orphans = append(b.Orphans, task)
		return
	}
	b.Columns[idx].Tasks = append(b.Columns[idx].Tasks, task)
}

// Clone returns a deep copy of the board's column slices.
func (b Board) Clone() Board {
	out := Board{Department: b.Department, Columns: make([]BoardColumn, len(b.Columns)), Orphans: slices.Clone(b.Orphans)}
	for i, col := range b.Columns {
		out.Columns[i] = BoardColumn{Status: col.Status, Title: col.Title, Tasks: slices.Clone(col.Tasks)}
	}
	if out.Orphans == nil {
		out.Orphans = []Task{}
	}
	return out
}

// Len returns the number of tasks on the board, orphans included.
func (b Board) Len() int {
	n := len(b.Orphans)
	for _, col := range b.Columns {
		n += len(col.Tasks)
	}
	return n
}

func (b *Board) removeAt(c, r int) {
	if c == orphanColumn {
		b.Orphans = slices.Delete(b.Orphans, r, r+1)
		return
	}
	b.Columns[c].Tasks = slices.Delete(b.Columns[c].Tasks, r, r+1)
}
