package domain

import (
	"fmt"
	"strings"
	"time"
)

// dateLayout is the calendar-date wire format shared with the storage layer.
const dateLayout = "2006-01-02"

// Date is one calendar day. No timezone offset is modeled; all comparisons are same-day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return DateOf(t), nil
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d == Date{}
}

// String formats the date as YYYY-MM-DD, or "" when unset.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n calendar days later.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Compare returns -1, 0, or +1 ordering d against other.
func (d Date) Compare(other Date) int {
	return d.Time().Compare(other.Time())
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return d.Compare(other) > 0
}

// MarshalText encodes the date for JSON/TOML.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a YYYY-MM-DD date; empty input yields the zero date.
func (d *Date) UnmarshalText(text []byte) error {
	if strings.TrimSpace(string(text)) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ClockTime is a time of day in minutes after midnight.
type ClockTime int

// clockLayouts are accepted time-of-day inputs: the UI sends HH:MM, storage writes HH:MM:SS.
var clockLayouts = []string{"15:04", "15:04:05"}

// ParseClockTime parses HH:MM or HH:MM:SS. Seconds are truncated.
func ParseClockTime(raw string) (ClockTime, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return ClockTime(t.Hour()*60 + t.Minute()), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, raw)
}

// Clock builds a ClockTime from hour and minute.
func Clock(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// String formats the time as HH:MM.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// StorageString formats the time as HH:MM:SS.
func (c ClockTime) StorageString() string {
	return c.String() + ":00"
}

// MarshalText encodes the time of day as HH:MM.
func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes HH:MM or HH:MM:SS.
func (c *ClockTime) UnmarshalText(text []byte) error {
	parsed, err := ParseClockTime(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseOptionalClockTime returns nil for empty or malformed input.
func ParseOptionalClockTime(raw string) *ClockTime {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parsed, err := ParseClockTime(raw)
	if err != nil {
		return nil
	}
	return &parsed
}

// TimeWindow is a date plus an optional half-open [Start, End) time-of-day interval.
type TimeWindow struct {
	Date  Date
	Start *ClockTime
	End   *ClockTime
}

// ParseTimeWindow builds a window from raw strings. It never fails: malformed
// or missing parts produce an unbounded window.
func ParseTimeWindow(date, start, end string) TimeWindow {
	day, err := ParseDate(date)
	if err != nil {
		day = Date{}
	}
	return TimeWindow{
		Date:  day,
		Start: ParseOptionalClockTime(start),
		End:   ParseOptionalClockTime(end),
	}
}

// Bounded reports whether the window takes part in conflict math.
// A window needs a date, both bounds, and Start < End.
func (w TimeWindow) Bounded() bool {
	if w.Date.IsZero() || w.Start == nil || w.End == nil {
		return false
	}
	return *w.Start < *w.End
}

// Overlaps reports whether two bounded same-day windows intersect.
// Touching endpoints do not overlap.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	if !w.Bounded() || !other.Bounded() {
		return false
	}
	if w.Date != other.Date {
		return false
	}
	return *w.Start < *other.End && *other.Start < *w.End
}

// String renders the window for logs and CLI output.
func (w TimeWindow) String() string {
	if !w.Bounded() {
		if w.Date.IsZero() {
			return "unscheduled"
		}
		return w.Date.String() + " (no time)"
	}
	return fmt.Sprintf("%s %s-%s", w.Date, w.Start, w.End)
}

// ConflictPolicy decides availability when time data is missing or ambiguous.
type ConflictPolicy string

// ConflictPolicy values.
const (
	// ConflictPolicyFailOpen reports a person as available when the candidate window is unknown.
	ConflictPolicyFailOpen ConflictPolicy = "fail_open"
	// ConflictPolicyFailClosed reports a person as unavailable when the candidate window is unknown.
	ConflictPolicyFailClosed ConflictPolicy = "fail_closed"
)

// ActiveConflictPolicy is the product decision for ambiguous time data: conflicts are advisory.
const ActiveConflictPolicy = ConflictPolicyFailOpen

// ParseConflictPolicy canonicalizes one policy value. Empty input yields ActiveConflictPolicy.
func ParseConflictPolicy(raw string) (ConflictPolicy, error) {
	switch ConflictPolicy(strings.TrimSpace(strings.ToLower(raw))) {
	case "":
		return ActiveConflictPolicy, nil
	case ConflictPolicyFailOpen:
		return ConflictPolicyFailOpen, nil
	case ConflictPolicyFailClosed:
		return ConflictPolicyFailClosed, nil
	default:
		return "", fmt.Errorf("unknown conflict policy %q", raw)
	}
}
