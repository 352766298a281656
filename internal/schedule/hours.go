// Package schedule computes bookable appointment slots for a calendar day.
// Everything in this package is pure: no clocks, no I/O, safe for concurrent use.
package schedule

import "time"

// HourRange is an open interval of a working day in minutes since local
// midnight, half-open [Start, End).
type HourRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// WeeklyHours holds the recurring schedule, indexed by time.Weekday
// (0=Sunday .. 6=Saturday). A nil entry means closed that day.
type WeeklyHours [7]*HourRange

// ForDay returns the hours for the given weekday, or nil when closed.
func (w WeeklyHours) ForDay(d time.Weekday) *HourRange {
	return w[int(d)]
}

// DayOverride replaces the weekly hours for a single calendar date.
// Hours nil means the date is explicitly closed. A date with no override
// entry at all falls back to the weekly schedule; the two states are
// distinct and must never be conflated.
type DayOverride struct {
	Hours *HourRange `json:"hours"`
}

// Overrides is a sparse map of date key (YYYY-MM-DD) to override.
type Overrides map[string]DayOverride

// DateKeyFormat is the layout for override map keys.
const DateKeyFormat = "2006-01-02"

// DateKey returns the override map key for a date.
func DateKey(t time.Time) string {
	return t.Format(DateKeyFormat)
}

// ResolveHours determines the effective hours for a date. An override entry
// is authoritative in both directions: it can close a weekly-open day or open
// a weekly-closed one. Returns nil when the date is closed.
func ResolveHours(date time.Time, weekly WeeklyHours, overrides Overrides) *HourRange {
	if ov, ok := overrides[DateKey(date)]; ok {
		return ov.Hours
	}
	return weekly.ForDay(date.Weekday())
}
