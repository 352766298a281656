package schedule

import "time"

// minutesPerDay bounds busy intervals and resolved hours.
const minutesPerDay = 24 * 60

// BusyInterval is a half-open [Start, End) span of occupied time in minutes
// since local midnight of the target date. Internal bookings and external
// calendar events are both normalized to this shape before conflict checking;
// the engine never distinguishes their origin.
type BusyInterval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Overlaps reports whether [start, end) intersects the busy interval.
// Touching endpoints do not conflict.
func (b BusyInterval) Overlaps(start, end int) bool {
	return start < b.End && end > b.Start
}

// BusyFromBooking converts an internal booking (start minute + duration)
// into a busy interval.
func BusyFromBooking(startMinute, duration int) BusyInterval {
	return BusyInterval{Start: startMinute, End: startMinute + duration}
}

// BusyFromEvent converts an external calendar event into a busy interval on
// the given date. All-day events block the whole day. Timed events are
// expressed as minute offsets from the date's local midnight and clamped to
// the day, so events spilling over midnight still block their same-day part.
// Returns false when the event does not touch the date at all.
func BusyFromEvent(date, eventStart, eventEnd time.Time, allDay bool) (BusyInterval, bool) {
	if allDay {
		return BusyInterval{Start: 0, End: minutesPerDay}, true
	}
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	start := int(eventStart.Sub(midnight).Minutes())
	end := int(eventEnd.Sub(midnight).Minutes())
	if start < 0 {
		start = 0
	}
	if end > minutesPerDay {
		end = minutesPerDay
	}
	if end <= start {
		return BusyInterval{}, false
	}
	return BusyInterval{Start: start, End: end}, true
}
