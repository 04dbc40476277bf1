package domain

import "strings"

// AvailabilityReason explains an availability answer.
type AvailabilityReason string

// AvailabilityReason values.
const (
	AvailabilityFree          AvailabilityReason = "free"
	AvailabilityBusy          AvailabilityReason = "busy"
	AvailabilityUnknownWindow AvailabilityReason = "unknown_window"
)

// Availability is the detector's answer for one person and one candidate window.
type Availability struct {
	Person        string
	Available     bool
	Reason        AvailabilityReason
	BlockingEvent *EventRef
	BlockingRoles []Role
}

// Conflict reports one person double-booked by another event on one day.
type Conflict struct {
	Person        string
	Role          Role
	Date          Date
	BlockingEvent EventRef
}

// Detector answers "is person P free in window W" against a snapshot of events.
// It holds no state beyond its policy.
type Detector struct {
	Policy ConflictPolicy
}

// NewDetector constructs a detector, defaulting to ActiveConflictPolicy.
func NewDetector(policy ConflictPolicy) Detector {
	if policy == "" {
		policy = ActiveConflictPolicy
	}
	return Detector{Policy: policy}
}

// IsAvailable checks person against the active conflict policy.
func IsAvailable(person string, candidate TimeWindow, sameDayEvents []Event, excludeEventID string) Availability {
	return NewDetector(ActiveConflictPolicy).IsAvailable(person, candidate, sameDayEvents, excludeEventID)
}

// IsAvailable reports whether person is free during candidate. The first
// overlapping event (in input order) that assigns person under any role is
// reported as the blocker. excludeEventID skips the event being edited.
func (d Detector) IsAvailable(person string, candidate TimeWindow, sameDayEvents []Event, excludeEventID string) Availability {
	out := Availability{Person: strings.TrimSpace(person), Available: true, Reason: AvailabilityFree}
	if !candidate.Bounded() {
		out.Reason = AvailabilityUnknownWindow
		out.Available = d.policy() == ConflictPolicyFailOpen
		return out
	}
	if PersonKey(person) == "" {
		return out
	}
	excludeEventID = strings.TrimSpace(excludeEventID)
	for _, ev := range sameDayEvents {
		if excludeEventID != "" && ev.ID == excludeEventID {
			continue
		}
		window := ev.Window(candidate.Date)
		if !window.Bounded() || !window.Overlaps(candidate) {
			continue
		}
		roles := ev.AssignedTo(person)
		if len(roles) == 0 {
			continue
		}
		ref := ev.Ref(candidate.Date)
		out.Available = false
		out.Reason = AvailabilityBusy
		out.BlockingEvent = &ref
		out.BlockingRoles = roles
		return out
	}
	return out
}

// TeamAvailability checks each person in order against the same snapshot.
func (d Detector) TeamAvailability(people []string, candidate TimeWindow, sameDayEvents []Event, excludeEventID string) []Availability {
	out := make([]Availability, 0, len(people))
	for _, person := range people {
		out = append(out, d.IsAvailable(person, candidate, sameDayEvents, excludeEventID))
	}
	return out
}

// FindConflicts reports every assignment on event that another event blocks,
// checking each calendar day the event covers. The event never conflicts with itself.
func (d Detector) FindConflicts(event Event, others []Event) []Conflict {
	out := []Conflict{}
	assignments := ResolveAssignments(event)
	if len(assignments) == 0 {
		return out
	}
	for _, day := range event.Days() {
		window := event.Window(day)
		if !window.Bounded() {
			continue
		}
		for _, assignment := range assignments {
			availability := d.IsAvailable(assignment.Person, window, others, event.ID)
			if availability.Available || availability.BlockingEvent == nil {
				continue
			}
			out = append(out, Conflict{
				Person:        assignment.Person,
				Role:          assignment.Role,
				Date:          day,
				BlockingEvent: *availability.BlockingEvent,
			})
		}
	}
	return out
}

// policy returns the effective policy for a zero-value detector.
func (d Detector) policy() ConflictPolicy {
	if d.Policy == "" {
		return ActiveConflictPolicy
	}
	return d.Policy
}
