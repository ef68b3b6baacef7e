package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestIsWorkingDay(t *testing.T) {
	cal := New([]string{"2024-12-25"})

	tests := []struct {
		date string
		want bool
	}{
		{"2024-10-14", true},  // Monday
		{"2024-10-18", true},  // Friday
		{"2024-10-12", false}, // Saturday
		{"2024-10-13", false}, // Sunday
		{"2024-12-25", false}, // holiday (Wednesday)
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, cal.IsWorkingDay(mustDate(t, tt.date)))
		})
	}
}

func TestNextWorkingDay(t *testing.T) {
	cal := New([]string{"2024-12-25"})

	tests := []struct {
		name string
		date string
		want string
	}{
		{"working day unchanged", "2024-10-14", "2024-10-14"},
		{"saturday to monday", "2024-10-12", "2024-10-14"},
		{"sunday to monday", "2024-10-13", "2024-10-14"},
		{"holiday to next day", "2024-12-25", "2024-12-26"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cal.NextWorkingDay(mustDate(t, tt.date))
			assert.Equal(t, tt.want, got.Format(ISODate))
		})
	}
}

func TestNextWorkingDayIdempotent(t *testing.T) {
	cal := New(nil)
	d := cal.NextWorkingDay(mustDate(t, "2024-10-12"))
	assert.Equal(t, d, cal.NextWorkingDay(d))
}

func TestWorkingDays(t *testing.T) {
	cal := New(nil)

	tests := []struct {
		name       string
		start, end string
		want       int
	}{
		{"monday to friday", "2024-10-14", "2024-10-18", 5},
		{"weekend only", "2024-10-12", "2024-10-13", 0},
		{"single working day", "2024-10-14", "2024-10-14", 1},
		{"spanning a weekend", "2024-10-18", "2024-10-21", 2},
		{"end before start", "2024-10-18", "2024-10-14", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cal.WorkingDaysBetween(tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWorkingDaysExcludesHolidays(t *testing.T) {
	cal := New([]string{"2024-10-16"}) // Wednesday
	got, err := cal.WorkingDaysBetween("2024-10-14", "2024-10-18")
	require.NoError(t, err)
	assert.Equal(t, 4, got)
}

func TestHasDateKeywords(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"I need leave next week", true},
		{"tomorrow please", true},
		{"from Monday to Friday", true},
		{"for 3 days", true},
		{"I want annual leave", false},
		{"yes", false},
		{"my medical certificate is ready", false},
		// Substrings must not trigger: "sundae" is not "sunday"
		{"a sundae sounds nice", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, HasDateKeywords(tt.query))
		})
	}
}

func TestRenderCalendar(t *testing.T) {
	out := RenderCalendar(mustDate(t, "2024-10-14"), 3)
	assert.Equal(t, "Monday: 2024-10-14\nTuesday: 2024-10-15\nWednesday: 2024-10-16\n", out)
}

func TestParseDateInvalid(t *testing.T) {
	_, err := ParseDate("14/10/2024")
	assert.Error(t, err)
}
