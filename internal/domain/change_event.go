package domain

import "time"

// TaskStatusChange represents a single status-ledger entry for a task.
type TaskStatusChange struct {
	ID         int64
	TaskID     string
	ProjectID  string
	From       TaskStatus
	To         TaskStatus
	OccurredAt time.Time
}
