package domain

import (
	"slices"
	"strings"
	"time"
)

// Role identifies one of an event's assignment slots.
type Role string

// Role values in canonical slot order.
const (
	RolePhotographer    Role = "photographer"
	RoleCinematographer Role = "cinematographer"
	RoleDroneOperator   Role = "drone_operator"
	RoleSiteManager     Role = "site_manager"
	RoleAssistant       Role = "assistant"
)

// eventRoles stores role slots in canonical order.
var eventRoles = []Role{
	RolePhotographer,
	RoleCinematographer,
	RoleDroneOperator,
	RoleSiteManager,
	RoleAssistant,
}

// EventRoles returns all role slots in canonical order.
func EventRoles() []Role {
	return append([]Role(nil), eventRoles...)
}

// ParseRole canonicalizes one role value.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ReplaceAll(strings.TrimSpace(strings.ToLower(raw)), " ", "_"))
	if !slices.Contains(eventRoles, role) {
		return "", ErrInvalidRole
	}
	return role, nil
}

// roleDelimiter separates names in the storage encoding of a role field.
const roleDelimiter = ","

// RoleList is the ordered set of people assigned to one role slot.
type RoleList []string

// ParseRoleList decodes a comma-delimited role field. Names are trimmed,
// empties dropped, and exact duplicates collapsed.
func ParseRoleList(raw string) RoleList {
	return NewRoleList(strings.Split(raw, roleDelimiter)...)
}

// NewRoleList normalizes names into a RoleList.
func NewRoleList(names ...string) RoleList {
	out := make(RoleList, 0, len(names))
	seen := map[string]struct{}{}
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// String encodes the list in the storage-compatible delimited form.
func (l RoleList) String() string {
	return strings.Join(l, roleDelimiter+" ")
}

// Contains reports whether person is listed, using the name join.
func (l RoleList) Contains(person string) bool {
	return slices.ContainsFunc(l, func(name string) bool {
		return SamePerson(name, person)
	})
}

// maxEventDays bounds multi-day expansion so a corrupt end date cannot explode a day loop.
const maxEventDays = 366

// Event is one project-owned shoot with a date range, optional window, and role assignments.
type Event struct {
	ID              string
	ProjectID       string
	Name            string
	StartDate       Date
	EndDate         *Date
	StartTime       *ClockTime
	EndTime         *ClockTime
	Location        string
	MapLink         string
	Details         string
	Instructions    string
	Photographer    RoleList
	Cinematographer RoleList
	DroneOperator   RoleList
	SiteManager     RoleList
	Assistant       RoleList
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EventInput holds write-time values for creating one event.
type EventInput struct {
	ID           string
	ProjectID    string
	Name         string
	StartDate    Date
	EndDate      *Date
	StartTime    *ClockTime
	EndTime      *ClockTime
	Location     string
	MapLink      string
	Details      string
	Instructions string
	Assignments  map[Role]RoleList
}

// NewEvent validates and normalizes one event create request.
func NewEvent(in EventInput, now time.Time) (Event, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.Name = strings.TrimSpace(in.Name)
	if in.ID == "" || in.ProjectID == "" {
		return Event{}, ErrInvalidID
	}
	if in.Name == "" {
		return Event{}, ErrInvalidName
	}
	if err := validateDateRange(in.StartDate, in.EndDate); err != nil {
		return Event{}, err
	}

	ev := Event{
		ID:           in.ID,
		ProjectID:    in.ProjectID,
		Name:         in.Name,
		StartDate:    in.StartDate,
		EndDate:      normalizeEndDate(in.StartDate, in.EndDate),
		StartTime:    cloneClock(in.StartTime),
		EndTime:      cloneClock(in.EndTime),
		Location:     strings.TrimSpace(in.Location),
		MapLink:      strings.TrimSpace(in.MapLink),
		Details:      strings.TrimSpace(in.Details),
		Instructions: strings.TrimSpace(in.Instructions),
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}
	for role, names := range in.Assignments {
		if err := ev.setRole(role, names); err != nil {
			return Event{}, err
		}
	}
	return ev, nil
}

// RoleField returns the people assigned to one role slot.
func (e Event) RoleField(role Role) RoleList {
	switch role {
	case RolePhotographer:
		return e.Photographer
	case RoleCinematographer:
		return e.Cinematographer
	case RoleDroneOperator:
		return e.DroneOperator
	case RoleSiteManager:
		return e.SiteManager
	case RoleAssistant:
		return e.Assistant
	default:
		return nil
	}
}

// setRole replaces one role slot with a normalized list.
func (e *Event) setRole(role Role, names RoleList) error {
	names = NewRoleList(names...)
	switch role {
	case RolePhotographer:
		e.Photographer = names
	case RoleCinematographer:
		e.Cinematographer = names
	case RoleDroneOperator:
		e.DroneOperator = names
	case RoleSiteManager:
		e.SiteManager = names
	case RoleAssistant:
		e.Assistant = names
	default:
		return ErrInvalidRole
	}
	return nil
}

// SetAssignments replaces the listed role slots. Slots absent from the map keep their value.
func (e *Event) SetAssignments(assignments map[Role]RoleList, now time.Time) error {
	next := *e
	for role, names := range assignments {
		if err := next.setRole(role, names); err != nil {
			return err
		}
	}
	next.UpdatedAt = now.UTC()
	*e = next
	return nil
}

// Reschedule replaces the event's dates and window.
func (e *Event) Reschedule(start Date, end *Date, startTime, endTime *ClockTime, now time.Time) error {
	if err := validateDateRange(start, end); err != nil {
		return err
	}
	e.StartDate = start
	e.EndDate = normalizeEndDate(start, end)
	e.StartTime = cloneClock(startTime)
	e.EndTime = cloneClock(endTime)
	e.UpdatedAt = now.UTC()
	return nil
}

// LastDate returns the final calendar day of the event.
func (e Event) LastDate() Date {
	if e.EndDate != nil {
		return *e.EndDate
	}
	return e.StartDate
}

// OccursOn reports whether the event covers day.
func (e Event) OccursOn(day Date) bool {
	if day.IsZero() || e.StartDate.IsZero() {
		return false
	}
	return !day.Before(e.StartDate) && !day.After(e.LastDate())
}

// Days lists each calendar day the event covers.
func (e Event) Days() []Date {
	if e.StartDate.IsZero() {
		return nil
	}
	out := []Date{}
	for day := e.StartDate; !day.After(e.LastDate()) && len(out) < maxEventDays; day = day.AddDays(1) {
		out = append(out, day)
	}
	return out
}

// Window returns the event's window on one calendar day. Days outside the
// event yield an unbounded window.
func (e Event) Window(day Date) TimeWindow {
	if !e.OccursOn(day) {
		return TimeWindow{}
	}
	return TimeWindow{Date: day, Start: cloneClock(e.StartTime), End: cloneClock(e.EndTime)}
}

// AssignedTo returns the roles person holds on this event.
func (e Event) AssignedTo(person string) []Role {
	out := []Role{}
	for _, role := range eventRoles {
		if e.RoleField(role).Contains(person) {
			out = append(out, role)
		}
	}
	return out
}

// Ref returns a compact reference to the event on one day.
func (e Event) Ref(day Date) EventRef {
	if day.IsZero() {
		day = e.StartDate
	}
	return EventRef{
		ID:    e.ID,
		Name:  e.Name,
		Date:  day,
		Start: cloneClock(e.StartTime),
		End:   cloneClock(e.EndTime),
	}
}

// EventRef names one event occurrence, used to report the blocker of a conflict.
type EventRef struct {
	ID    string
	Name  string
	Date  Date
	Start *ClockTime
	End   *ClockTime
}

// Assignment pairs one person with one role on an event.
type Assignment struct {
	Person string
	Role   Role
}

// ResolveAssignments flattens an event's role slots into (person, role) pairs
// in canonical role order. Names are not validated against any roster.
func ResolveAssignments(e Event) []Assignment {
	out := []Assignment{}
	for _, role := range eventRoles {
		for _, person := range NewRoleList(e.RoleField(role)...) {
			out = append(out, Assignment{Person: person, Role: role})
		}
	}
	return out
}

// validateDateRange checks the start date and optional end date.
func validateDateRange(start Date, end *Date) error {
	if start.IsZero() {
		return ErrInvalidDate
	}
	if end != nil && !end.IsZero() && end.Before(start) {
		return ErrInvalidDateRange
	}
	return nil
}

// normalizeEndDate drops end dates that add nothing beyond the start date.
func normalizeEndDate(start Date, end *Date) *Date {
	if end == nil || end.IsZero() || *end == start {
		return nil
	}
	out := *end
	return &out
}

// cloneClock copies an optional time of day.
func cloneClock(c *ClockTime) *ClockTime {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}
