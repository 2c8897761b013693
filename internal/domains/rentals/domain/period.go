package domain

import (
	"strings"
	"time"
)

const day = 24 * time.Hour

// Period is the half-open interval [Start, End) a reservation occupies.
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod validates that end is strictly after start.
func NewPeriod(start, end time.Time) (Period, error) {
	p := Period{Start: start.UTC(), End: end.UTC()}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// Validate reports ErrValidation for zero or inverted bounds.
func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return Invalid("start and end dates are required")
	}
	if !p.End.After(p.Start) {
		return Invalid("end date must be after start date")
	}
	return nil
}

// Overlaps uses the strict intersection test, so back-to-back periods do not collide.
func (p Period) Overlaps(other Period) bool {
	return p.Start.Before(other.End) && other.Start.Before(p.End)
}

// Days is the rental duration in whole days, rounded up.
func (p Period) Days() int64 {
	d := p.End.Sub(p.Start)
	days := int64(d / day)
	if d%day != 0 {
		days++
	}
	return days
}

// Equal compares instants, ignoring location and monotonic readings.
func (p Period) Equal(other Period) bool {
	return p.Start.Equal(other.Start) && p.End.Equal(other.End)
}

// Envelope returns the smallest period covering both.
func (p Period) Envelope(other Period) Period {
	out := p
	if other.Start.Before(out.Start) {
		out.Start = other.Start
	}
	if other.End.After(out.End) {
		out.End = other.End
	}
	return out
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate accepts RFC 3339 timestamps or plain calendar dates, interpreted as UTC.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, Invalid("date is required")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, Invalid("date %q must be ISO 8601", raw)
}
