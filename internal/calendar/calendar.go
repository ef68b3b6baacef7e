// Package calendar interprets natural-language date expressions and
// provides deterministic working-day arithmetic. The language model only
// ever picks dates from a concrete calendar rendered into its prompt;
// weekend/holiday adjustment and day counting stay in Go.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// ISODate is the wire format for all dates.
const ISODate = "2006-01-02"

// Calendar carries the working-week configuration. Saturday and Sunday
// are non-working; configured holidays are excluded as well.
type Calendar struct {
	holidays map[string]bool
}

// New creates a Calendar with the given holidays (ISO dates).
func New(holidays []string) *Calendar {
	m := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		m[h] = true
	}
	return &Calendar{holidays: m}
}

// IsWorkingDay reports whether the date is a working day.
func (c *Calendar) IsWorkingDay(t time.Time) bool {
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !c.holidays[t.Format(ISODate)]
}

// NextWorkingDay returns t advanced to the next working day. A date
// already on a working day is returned unchanged, so the function is
// idempotent.
func (c *Calendar) NextWorkingDay(t time.Time) time.Time {
	for !c.IsWorkingDay(t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// WorkingDays counts working days from start through end inclusive by
// linear scan. Returns 0 when end precedes start.
func (c *Calendar) WorkingDays(start, end time.Time) int {
	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if c.IsWorkingDay(d) {
			count++
		}
	}
	return count
}

// ParseDate parses an ISO date string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(ISODate, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// AdjustToWorkingDay parses an ISO date and advances it to the next
// working day, returning the adjusted ISO date.
func (c *Calendar) AdjustToWorkingDay(iso string) (string, error) {
	t, err := ParseDate(iso)
	if err != nil {
		return "", err
	}
	return c.NextWorkingDay(t).Format(ISODate), nil
}

// WorkingDaysBetween counts working days between two ISO dates inclusive.
func (c *Calendar) WorkingDaysBetween(startISO, endISO string) (int, error) {
	start, err := ParseDate(startISO)
	if err != nil {
		return 0, err
	}
	end, err := ParseDate(endISO)
	if err != nil {
		return 0, err
	}
	return c.WorkingDays(start, end), nil
}

// dateKeywords gates the model round-trip: only utterances containing
// one of these are worth a date-interpretation call.
var dateKeywords = []string{
	"today", "tomorrow", "yesterday",
	"day", "days", "week", "weeks", "month", "months",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	"next", "this", "coming", "after",
}

// HasDateKeywords reports whether the utterance looks like it contains a
// relative date expression.
func HasDateKeywords(query string) bool {
	lower := strings.ToLower(query)
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z')
	})
	for _, f := range fields {
		for _, kw := range dateKeywords {
			if f == kw {
				return true
			}
		}
	}
	return false
}

// RenderCalendar lists the next n calendar days with weekday labels,
// starting from today. The model grounds its answer against this list
// instead of doing its own date arithmetic.
func RenderCalendar(today time.Time, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		d := today.AddDate(0, 0, i)
		fmt.Fprintf(&b, "%s: %s\n", d.Weekday(), d.Format(ISODate))
	}
	return b.String()
}
