package schedule

import (
	"testing"
	"time"
)

func TestResolveHoursWeeklyFallback(t *testing.T) {
	var weekly WeeklyHours
	weekly[int(time.Tuesday)] = &HourRange{Start: 480, End: 1020}

	tuesday := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	hours := ResolveHours(tuesday, weekly, nil)
	if hours == nil {
		t.Fatal("expected tuesday to be open")
	}
	if hours.Start != 480 || hours.End != 1020 {
		t.Errorf("unexpected hours %+v", hours)
	}

	wednesday := tuesday.AddDate(0, 0, 1)
	if ResolveHours(wednesday, weekly, nil) != nil {
		t.Error("expected wednesday to be closed")
	}
}

func TestResolveHoursOverrideWins(t *testing.T) {
	var weekly WeeklyHours
	weekly[int(time.Monday)] = &HourRange{Start: 540, End: 1140}

	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	overrides := Overrides{
		// Closes a weekly-open day.
		DateKey(monday): {Hours: nil},
		// Opens a weekly-closed day.
		DateKey(sunday): {Hours: &HourRange{Start: 600, End: 840}},
	}

	if ResolveHours(monday, weekly, overrides) != nil {
		t.Error("override-closed must beat weekly-open")
	}
	hours := ResolveHours(sunday, weekly, overrides)
	if hours == nil || hours.Start != 600 {
		t.Errorf("override-open must beat weekly-closed, got %+v", hours)
	}

	// The override is scoped to its date only.
	nextMonday := monday.AddDate(0, 0, 7)
	if ResolveHours(nextMonday, weekly, overrides) == nil {
		t.Error("other dates must fall back to the weekly schedule")
	}
}

func TestDateKey(t *testing.T) {
	d := time.Date(2026, 1, 5, 13, 45, 0, 0, time.UTC)
	if got := DateKey(d); got != "2026-01-05" {
		t.Errorf("DateKey = %q, want 2026-01-05", got)
	}
}
