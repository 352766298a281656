package gcal

import (
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/mkarlsen/bookline/internal/schedule"
)

// eventBusy converts one calendar event into a busy interval on the given
// date. date must be local midnight; the event's times are evaluated in the
// same location. Cancelled and transparent events never block time.
func eventBusy(ev *calendar.Event, date time.Time) (schedule.BusyInterval, bool) {
	if ev == nil || ev.Status == "cancelled" || ev.Transparency == "transparent" {
		return schedule.BusyInterval{}, false
	}
	if ev.Start == nil || ev.End == nil {
		return schedule.BusyInterval{}, false
	}

	if ev.Start.Date != "" {
		// All-day events carry a date, not a datetime.
		return schedule.BusyFromEvent(date, time.Time{}, time.Time{}, true)
	}

	start, err := time.Parse(time.RFC3339, ev.Start.DateTime)
	if err != nil {
		return schedule.BusyInterval{}, false
	}
	end, err := time.Parse(time.RFC3339, ev.End.DateTime)
	if err != nil {
		return schedule.BusyInterval{}, false
	}
	return schedule.BusyFromEvent(date, start.In(date.Location()), end.In(date.Location()), false)
}
