package schedule

import "time"

// MonthCell is one square of a month-view grid. Placeholder cells pad the
// first week so day 1 lines up under its weekday column; they carry no date.
type MonthCell struct {
	Day  int       `json:"day"` // 1-based, 0 for placeholders
	Date time.Time `json:"date,omitzero"`
}

// IsPlaceholder reports whether the cell pads the grid rather than naming a day.
func (c MonthCell) IsPlaceholder() bool {
	return c.Day == 0
}

// MonthCells builds the cells for a month view. month0 is zero-based
// (0=January). Weeks start on Sunday; real cells carry the date at local
// midnight in loc (time.Local when nil).
func MonthCells(year, month0 int, loc *time.Location) []MonthCell {
	if loc == nil {
		loc = time.Local
	}
	first := time.Date(year, time.Month(month0+1), 1, 0, 0, 0, 0, loc)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	cells := make([]MonthCell, 0, int(first.Weekday())+daysInMonth)
	for i := 0; i < int(first.Weekday()); i++ {
		cells = append(cells, MonthCell{})
	}
	for day := 1; day <= daysInMonth; day++ {
		cells = append(cells, MonthCell{
			Day:  day,
			Date: time.Date(year, time.Month(month0+1), day, 0, 0, 0, 0, loc),
		})
	}
	return cells
}

// MonthName returns the display name for a zero-based month index.
func MonthName(month0 int) string {
	return time.Month(month0 + 1).String()
}
