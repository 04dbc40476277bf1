package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Department identifies the workflow family a task belongs to.
type Department string

// Department values.
const (
	DepartmentPhoto Department = "photo"
	DepartmentVideo Department = "video"
)

// validDepartments stores all supported departments.
var validDepartments = []Department{DepartmentPhoto, DepartmentVideo}

// Departments returns the supported departments in display order.
func Departments() []Department {
	return append([]Department(nil), validDepartments...)
}

// ParseDepartment canonicalizes one department value.
func ParseDepartment(raw string) (Department, error) {
	dept := Department(strings.TrimSpace(strings.ToLower(raw)))
	if !slices.Contains(validDepartments, dept) {
		return "", ErrInvalidDepartment
	}
	return dept, nil
}

// TaskStatus is one workflow state. The legal set depends on the task's department.
type TaskStatus string

// TaskStatus values across both departments.
const (
	StatusBacklog      TaskStatus = "backlog"
	StatusClientReview TaskStatus = "client_review"
	StatusEditing      TaskStatus = "editing"
	StatusPrinting     TaskStatus = "printing"
	StatusDelivered    TaskStatus = "delivered"
	StatusInProgress   TaskStatus = "in_progress"
	StatusInReview     TaskStatus = "in_review"
	StatusCorrection   TaskStatus = "correction"
	StatusSubmitted    TaskStatus = "submitted"
	StatusCompleted    TaskStatus = "completed"
)

// legacyPendingStatus is the storage default written before a department pipeline applies.
const legacyPendingStatus = "pending"

// NormalizeTaskStatus canonicalizes status input. Spaces and hyphens become
// underscores and the storage default "pending" maps to backlog.
func NormalizeTaskStatus(raw string) TaskStatus {
	status := strings.TrimSpace(strings.ToLower(raw))
	status = strings.NewReplacer(" ", "_", "-", "_").Replace(status)
	if status == legacyPendingStatus {
		return StatusBacklog
	}
	return TaskStatus(status)
}

// statusLabels stores board column titles.
var statusLabels = map[TaskStatus]string{
	StatusBacklog:      "Backlog",
	StatusClientReview: "Client Review",
	StatusEditing:      "Editing",
	StatusPrinting:     "Printing",
	StatusDelivered:    "Delivered",
	StatusInProgress:   "In Progress",
	StatusInReview:     "In Review",
	StatusCorrection:   "Correction",
	StatusSubmitted:    "Submitted",
	StatusCompleted:    "Completed",
}

// workflows stores each department's linear pipeline, initial state first and terminal state last.
var workflows = map[Department][]TaskStatus{
	DepartmentPhoto: {StatusBacklog, StatusClientReview, StatusEditing, StatusPrinting, StatusDelivered},
	DepartmentVideo: {StatusBacklog, StatusInProgress, StatusInReview, StatusCorrection, StatusSubmitted, StatusCompleted},
}

// Workflow is one department's ordered status pipeline.
type Workflow struct {
	Department Department
	statuses   []TaskStatus
}

// WorkflowFor returns the pipeline for one department.
func WorkflowFor(dept Department) (Workflow, error) {
	statuses, ok := workflows[dept]
	if !ok {
		return Workflow{}, ErrInvalidDepartment
	}
	return Workflow{Department: dept, statuses: statuses}, nil
}

// Statuses returns the legal statuses in pipeline order.
func (w Workflow) Statuses() []TaskStatus {
	return append([]TaskStatus(nil), w.statuses...)
}

// Initial returns the state new tasks start in.
func (w Workflow) Initial() TaskStatus {
	if len(w.statuses) == 0 {
		return ""
	}
	return w.statuses[0]
}

// Terminal returns the delivery state.
func (w Workflow) Terminal() TaskStatus {
	if len(w.statuses) == 0 {
		return ""
	}
	return w.statuses[len(w.statuses)-1]
}

// Contains reports whether status belongs to the pipeline.
func (w Workflow) Contains(status TaskStatus) bool {
	return slices.Contains(w.statuses, status)
}

// Index returns the pipeline position of status, or -1.
func (w Workflow) Index(status TaskStatus) int {
	return slices.Index(w.statuses, status)
}

// Next returns the forward neighbor of status.
func (w Workflow) Next(status TaskStatus) (TaskStatus, bool) {
	idx := w.Index(status)
	if idx < 0 || idx+1 >= len(w.statuses) {
		return "", false
	}
	return w.statuses[idx+1], true
}

// Previous returns the backward neighbor of status.
func (w Workflow) Previous(status TaskStatus) (TaskStatus, bool) {
	idx := w.Index(status)
	if idx <= 0 {
		return "", false
	}
	return w.statuses[idx-1], true
}

// ReachableFrom lists statuses reachable by forward moves, starting with status itself.
func (w Workflow) ReachableFrom(status TaskStatus) []TaskStatus {
	out := []TaskStatus{}
	for current, ok := status, w.Contains(status); ok; current, ok = w.Next(current) {
		out = append(out, current)
	}
	return out
}

// Label returns the display title for status.
func (w Workflow) Label(status TaskStatus) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return string(status)
}

// TransitionMode selects how strictly status changes are validated.
type TransitionMode string

// TransitionMode values.
const (
	// TransitionModePermissive allows any status in the department's set.
	TransitionModePermissive TransitionMode = "permissive"
	// TransitionModeStrict allows only adjacent pipeline moves.
	TransitionModeStrict TransitionMode = "strict"
)

// ParseTransitionMode canonicalizes one mode value. Empty input yields permissive.
func ParseTransitionMode(raw string) (TransitionMode, error) {
	switch TransitionMode(strings.TrimSpace(strings.ToLower(raw))) {
	case "", TransitionModePermissive:
		return TransitionModePermissive, nil
	case TransitionModeStrict:
		return TransitionModeStrict, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTransitionMode, raw)
	}
}

// TransitionOptions configures one status change.
type TransitionOptions struct {
	Mode TransitionMode
	// Force skips the adjacency check in strict mode. Set membership is still enforced.
	Force bool
}

// TransitionError reports a rejected status change.
type TransitionError struct {
	Department Department
	From       TaskStatus
	To         TaskStatus
	Mode       TransitionMode
	Err        error
}

// Error implements error.
func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s %q -> %q (%s)", e.Err, e.Department, e.From, e.To, e.Mode)
}

// Unwrap returns the underlying sentinel.
func (e *TransitionError) Unwrap() error {
	return e.Err
}

// CanTransition reports whether a task in dept may move from current to target.
func CanTransition(dept Department, current, target TaskStatus, mode TransitionMode) bool {
	return checkTransition(dept, current, target, TransitionOptions{Mode: mode}) == nil
}

// checkTransition returns the sentinel describing why a move is rejected.
func checkTransition(dept Department, current, target TaskStatus, opts TransitionOptions) error {
	wf, err := WorkflowFor(dept)
	if err != nil {
		return err
	}
	if !wf.Contains(target) {
		return ErrUnknownStatus
	}
	if opts.Mode != TransitionModeStrict || opts.Force {
		return nil
	}
	from := wf.Index(current)
	if from < 0 {
		return ErrIllegalTransition
	}
	delta := wf.Index(target) - from
	if delta < -1 || delta > 1 {
		return ErrIllegalTransition
	}
	return nil
}

// ApplyTransition validates and applies a status change, returning the updated task.
// A move to the current status returns the task unchanged.
func ApplyTransition(task Task, target TaskStatus, opts TransitionOptions, now time.Time) (Task, error) {
	target = NormalizeTaskStatus(string(target))
	if err := checkTransition(task.Department, task.Status, target, opts); err != nil {
		return task, &TransitionError{
			Department: task.Department,
			From:       task.Status,
			To:         target,
			Mode:       effectiveMode(opts.Mode),
			Err:        err,
		}
	}
	if task.Status == target {
		return task, nil
	}
	task.Status = target
	task.UpdatedAt = now.UTC()
	return task, nil
}

// effectiveMode reports the mode applied for a zero-value option set.
func effectiveMode(mode TransitionMode) TransitionMode {
	if mode == "" {
		return TransitionModePermissive
	}
	return mode
}
