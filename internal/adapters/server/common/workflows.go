package common

import (
	"errors"

	"github.com/hylla/shootdesk/internal/domain"
)

// WorkflowStatus is one column of a department pipeline.
type WorkflowStatus struct {
	Status string `json:"status"`
	Label  string `json:"label"`
	// Adjacent lists the statuses a strict-mode move may target.
	Adjacent []string `json:"adjacent"`
}

// Workflow describes one department's pipeline for pickers and board headers.
type Workflow struct {
	Department string           `json:"department"`
	Initial    string           `json:"initial"`
	Terminal   string           `json:"terminal"`
	Statuses   []WorkflowStatus `json:"statuses"`
}

// WorkflowCatalog lists every department pipeline in department order.
func WorkflowCatalog() []Workflow {
	out := make([]Workflow, 0, len(domain.Departments()))
	for _, dept := range domain.Departments() {
		wf, err := domain.WorkflowFor(dept)
		if err != nil {
			continue
		}
		entry := Workflow{
			Department: string(dept),
			Initial:    string(wf.Initial()),
			Terminal:   string(wf.Terminal()),
		}
		for _, status := range wf.Statuses() {
			adjacent := []string{}
			if prev, ok := wf.Previous(status); ok {
				adjacent = append(adjacent, string(prev))
			}
			if next, ok := wf.Next(status); ok {
				adjacent = append(adjacent, string(next))
			}
			entry.Statuses = append(entry.Statuses, WorkflowStatus{
				Status:   string(status),
				Label:    wf.Label(status),
				Adjacent: adjacent,
			})
		}
		out = append(out, entry)
	}
	return out
}

// ErrorCode maps adapter errors to the stable codes both transports report.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrTransitionRejected):
		return "transition_rejected"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return "internal_error"
	}
}
