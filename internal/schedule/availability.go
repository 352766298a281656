package schedule

import (
	"errors"
	"fmt"
	"time"
)

// Validation errors returned by AvailableStarts. "No availability" is never
// an error; it is an empty result.
var (
	ErrInvalidDuration = errors.New("schedule: duration must be positive")
	ErrInvalidInterval = errors.New("schedule: slot interval must be positive")
	ErrInvalidHours    = errors.New("schedule: working hours end must be after start")
)

// SlotRequest carries everything needed to compute one day's availability.
// Now is injected rather than read from a clock so results are deterministic.
type SlotRequest struct {
	Date      time.Time
	Duration  int // minutes, > 0
	Interval  int // step between candidate starts, minutes, > 0
	Weekly    WeeklyHours
	Overrides Overrides
	Busy      []BusyInterval
	Now       time.Time
}

// AvailableStarts returns the ordered bookable start times ("HH:MM") for the
// requested date. Every returned slot fits entirely within the effective
// hours, conflicts with no busy interval, and does not start before Now.
func AvailableStarts(req SlotRequest) ([]string, error) {
	if req.Duration <= 0 {
		return nil, ErrInvalidDuration
	}
	if req.Interval <= 0 {
		return nil, ErrInvalidInterval
	}

	hours := ResolveHours(req.Date, req.Weekly, req.Overrides)
	if hours == nil {
		return []string{}, nil
	}
	if hours.End <= hours.Start {
		return nil, fmt.Errorf("%w: [%d, %d)", ErrInvalidHours, hours.Start, hours.End)
	}

	midnight := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, req.Date.Location())

	slots := []string{}
	for t := firstCandidate(hours.Start, req.Interval); t+req.Duration <= hours.End; t += req.Interval {
		slotEnd := t + req.Duration
		if midnight.Add(time.Duration(t) * time.Minute).Before(req.Now) {
			continue
		}
		if conflicts(t, slotEnd, req.Busy) {
			continue
		}
		slots = append(slots, FormatMinute(t))
	}
	return slots, nil
}

// firstCandidate picks where the slot walk begins. Hour-long intervals are
// offered on the half-hour: an opening minute at most 30 past the hour rounds
// up to that hour's :30, anything later starts at the next hour's :30.
func firstCandidate(open, interval int) int {
	if interval != 60 {
		return open
	}
	rem := open % 60
	if rem <= 30 {
		return open - rem + 30
	}
	return open - rem + 90
}

func conflicts(start, end int, busy []BusyInterval) bool {
	for _, b := range busy {
		if b.Overlaps(start, end) {
			return true
		}
	}
	return false
}

// FormatMinute renders a minute-of-day as a zero-padded "HH:MM" string.
func FormatMinute(t int) string {
	return fmt.Sprintf("%02d:%02d", t/60, t%60)
}
