package schedule

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openWeek returns a weekly schedule open 9:00-19:00 every day.
func openWeek() WeeklyHours {
	var w WeeklyHours
	for i := range w {
		w[i] = &HourRange{Start: 540, End: 1140}
	}
	return w
}

// monday is a Monday with 9:00-19:00 weekly hours.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func baseRequest() SlotRequest {
	return SlotRequest{
		Date:     monday,
		Duration: 60,
		Interval: 30,
		Weekly:   openWeek(),
		Now:      monday, // midnight, nothing filtered
	}
}

func TestAvailableStartsFullOpenDay(t *testing.T) {
	req := baseRequest()

	slots, err := AvailableStarts(req)
	require.NoError(t, err)

	// 09:00 through 18:00 every 30 minutes; 18:30 would end past close.
	require.Len(t, slots, 19)
	assert.Equal(t, "09:00", slots[0])
	assert.Equal(t, "09:30", slots[1])
	assert.Equal(t, "18:00", slots[len(slots)-1])
}

func TestAvailableStartsHourIntervalAlignsToHalfHour(t *testing.T) {
	req := baseRequest()
	req.Interval = 60

	slots, err := AvailableStarts(req)
	require.NoError(t, err)

	// Opening on the hour rounds to :30; the walk then steps hourly and the
	// last slot must still end by 19:00.
	want := []string{"09:30", "10:30", "11:30", "12:30", "13:30", "14:30", "15:30", "16:30", "17:30"}
	assert.Equal(t, want, slots)
}

func TestHourIntervalFirstCandidate(t *testing.T) {
	tests := []struct {
		name string
		open int
		want int
	}{
		{name: "on the hour", open: 540, want: 570},
		{name: "at half past", open: 570, want: 600},
		{name: "remainder under thirty", open: 555, want: 570},
		{name: "remainder over thirty rolls to next hour", open: 580, want: 630},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, firstCandidate(tt.open, 60))
		})
	}
}

func TestNonHourIntervalStartsAtOpening(t *testing.T) {
	assert.Equal(t, 555, firstCandidate(555, 30))
	assert.Equal(t, 540, firstCandidate(540, 15))
}

func TestAvailableStartsBusyConflicts(t *testing.T) {
	req := baseRequest()
	// 10:00-11:00 is taken.
	req.Busy = []BusyInterval{{Start: 600, End: 660}}

	slots, err := AvailableStarts(req)
	require.NoError(t, err)

	// 09:00 ends exactly at the busy start and 11:00 begins exactly at its
	// end: touching is allowed under half-open semantics.
	assert.Contains(t, slots, "09:00")
	assert.Contains(t, slots, "11:00")
	assert.NotContains(t, slots, "09:30")
	assert.NotContains(t, slots, "10:00")
	assert.NotContains(t, slots, "10:30")
}

func TestAvailableStartsOverlappingBusySources(t *testing.T) {
	req := baseRequest()
	// Same window reported by both a booking and a calendar event; the
	// intervals are checked independently, no merging required.
	req.Busy = []BusyInterval{
		BusyFromBooking(600, 60),
		{Start: 610, End: 650},
	}

	slots, err := AvailableStarts(req)
	require.NoError(t, err)
	assert.NotContains(t, slots, "10:00")
	assert.Contains(t, slots, "11:00")
}

func TestAvailableStartsAllDayBusy(t *testing.T) {
	req := baseRequest()
	req.Busy = []BusyInterval{{Start: 0, End: 1440}}

	slots, err := AvailableStarts(req)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestAvailableStartsOverrideClosed(t *testing.T) {
	req := baseRequest()
	req.Overrides = Overrides{DateKey(monday): {Hours: nil}}

	slots, err := AvailableStarts(req)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestAvailableStartsOverrideOpensClosedDay(t *testing.T) {
	req := baseRequest()
	req.Weekly[int(time.Monday)] = nil
	req.Overrides = Overrides{DateKey(monday): {Hours: &HourRange{Start: 600, End: 720}}}

	slots, err := AvailableStarts(req)
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00", "10:30", "11:00"}, slots)
}

func TestAvailableStartsPastFilter(t *testing.T) {
	req := baseRequest()
	req.Now = monday.Add(12 * time.Hour) // noon

	slots, err := AvailableStarts(req)
	require.NoError(t, err)

	// A slot starting exactly at Now is kept; anything earlier is dropped.
	assert.Equal(t, "12:00", slots[0])

	req.Now = monday.Add(12*time.Hour + time.Minute)
	slots, err = AvailableStarts(req)
	require.NoError(t, err)
	assert.Equal(t, "12:30", slots[0])
}

func TestAvailableStartsPastDateIsEmpty(t *testing.T) {
	req := baseRequest()
	req.Now = monday.AddDate(0, 0, 3)

	slots, err := AvailableStarts(req)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestAvailableStartsClosingMidStep(t *testing.T) {
	req := baseRequest()
	// 9:00-10:45 with 30-minute steps and hour-long slots: 09:45 would end
	// exactly at close but is off-step; 09:30 ends 10:30 and fits, 10:00 ends
	// 11:00 and spills.
	req.Weekly[int(time.Monday)] = &HourRange{Start: 540, End: 645}

	slots, err := AvailableStarts(req)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30"}, slots)
}

func TestAvailableStartsOrderingAndUniqueness(t *testing.T) {
	req := baseRequest()
	req.Busy = []BusyInterval{{Start: 700, End: 730}, {Start: 900, End: 1000}}

	slots, err := AvailableStarts(req)
	require.NoError(t, err)
	for i := 1; i < len(slots); i++ {
		assert.Less(t, slots[i-1], slots[i], "slots must be strictly increasing")
	}
}

func TestAvailableStartsInvariants(t *testing.T) {
	req := baseRequest()
	req.Duration = 45
	req.Interval = 15
	req.Busy = []BusyInterval{{Start: 555, End: 620}, {Start: 1000, End: 1100}}

	slots, err := AvailableStarts(req)
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	hours := ResolveHours(req.Date, req.Weekly, req.Overrides)
	for _, s := range slots {
		var h, m int
		_, err := fmt.Sscanf(s, "%d:%d", &h, &m)
		require.NoError(t, err)
		start := h*60 + m
		end := start + req.Duration

		assert.GreaterOrEqual(t, start, hours.Start)
		assert.LessOrEqual(t, end, hours.End)
		for _, b := range req.Busy {
			assert.True(t, end <= b.Start || start >= b.End,
				"slot %s overlaps busy [%d,%d)", s, b.Start, b.End)
		}
	}
}

func TestAvailableStartsValidation(t *testing.T) {
	req := baseRequest()
	req.Duration = 0
	_, err := AvailableStarts(req)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	req = baseRequest()
	req.Interval = -15
	_, err = AvailableStarts(req)
	assert.ErrorIs(t, err, ErrInvalidInterval)

	req = baseRequest()
	req.Weekly[int(time.Monday)] = &HourRange{Start: 600, End: 600}
	_, err = AvailableStarts(req)
	assert.ErrorIs(t, err, ErrInvalidHours)
}

func TestAvailableStartsNoHoursConfigured(t *testing.T) {
	req := baseRequest()
	req.Weekly = WeeklyHours{}

	slots, err := AvailableStarts(req)
	require.NoError(t, err)
	assert.Empty(t, slots)
}
