package domain

import (
	"slices"
	"strings"
	"time"
)

// ProjectStatus is the booking lifecycle of a project.
type ProjectStatus string

// ProjectStatus values.
const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

var validProjectStatuses = []ProjectStatus{ProjectStatusActive, ProjectStatusCompleted, ProjectStatusCancelled}

// ParseProjectStatus canonicalizes one status. Empty input yields active.
func ParseProjectStatus(raw string) (ProjectStatus, error) {
	status := ProjectStatus(strings.TrimSpace(strings.ToLower(raw)))
	if status == "" {
		return ProjectStatusActive, nil
	}
	if !slices.Contains(validProjectStatuses, status) {
		return "", ErrInvalidProjectStatus
	}
	return status, nil
}

// Project represents one client booking that owns events and tasks.
type Project struct {
	ID          string
	Slug        string
	Name        string
	EventDate   *Date
	EventType   string
	Location    string
	ServiceType string
	Status      ProjectStatus
	// ProgressPercentage is stored as entered and never derived from tasks or checklists.
	ProgressPercentage int
	CreatedAt          time.Time
	UpdatedAt          time.Time
	ArchivedAt         *time.Time
}

// ProjectInput holds write-time values for creating one project.
type ProjectInput struct {
	ID          string
	Name        string
	EventDate   *Date
	EventType   string
	Location    string
	ServiceType string
	Status      ProjectStatus
}

// NewProject validates input and stamps both timestamps with now.
func NewProject(in ProjectInput, now time.Time) (Project, error) {
	id := strings.TrimSpace(in.ID)
	name := strings.TrimSpace(in.Name)
	if id == "" {
		return Project{}, ErrInvalidID
	}
	if name == "" {
		return Project{}, ErrInvalidName
	}
	status, err := ParseProjectStatus(string(in.Status))
	if err != nil {
		return Project{}, err
	}

	return Project{
		ID:          id,
		Slug:        normalizeSlug(name),
		Name:        name,
		EventDate:   cloneDate(in.EventDate),
		EventType:   strings.TrimSpace(in.EventType),
		Location:    strings.TrimSpace(in.Location),
		ServiceType: strings.TrimSpace(in.ServiceType),
		Status:      status,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}, nil
}

// Rename renames the project and refreshes its slug.
func (p *Project) Rename(name string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	p.Name = name
	p.Slug = normalizeSlug(name)
	p.UpdatedAt = now.UTC()
	return nil
}

// SetStatus updates the booking lifecycle status.
func (p *Project) SetStatus(status ProjectStatus, now time.Time) error {
	status, err := ParseProjectStatus(string(status))
	if err != nil {
		return err
	}
	p.Status = status
	p.UpdatedAt = now.UTC()
	return nil
}

// SetProgress stores the operator-entered progress, clamped to [0,100].
func (p *Project) SetProgress(percent int, now time.Time) {
	p.ProgressPercentage = min(max(percent, 0), 100)
	p.UpdatedAt = now.UTC()
}

// Archive archives the project.
func (p *Project) Archive(now time.Time) {
	ts := now.UTC()
	p.ArchivedAt = &ts
	p.UpdatedAt = ts
}

// Restore restores an archived project.
func (p *Project) Restore(now time.Time) {
	p.ArchivedAt = nil
	p.UpdatedAt = now.UTC()
}

// normalizeSlug lowercases s and joins its ASCII letter and digit runs with
// single dashes: "Priya & Arjun 2026" becomes "priya-arjun-2026".
func normalizeSlug(s string) string {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})
	return strings.Join(words, "-")
}
