package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mkarlsen/bookline/internal/schedule"
	"github.com/mkarlsen/bookline/pkg/logging"
)

// CalendarHandler serves the month grid the booking page renders.
type CalendarHandler struct {
	loc    func() *time.Location
	logger *logging.Logger
}

// NewCalendarHandler creates the calendar handler. loc yields the current
// business timezone so "today" matches what the admin configured.
func NewCalendarHandler(loc func() *time.Location, logger *logging.Logger) *CalendarHandler {
	if loc == nil {
		loc = func() *time.Location { return time.UTC }
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CalendarHandler{loc: loc, logger: logger}
}

type calendarResponse struct {
	Year      int                  `json:"year"`
	Month     int                  `json:"month"` // 0-based, matches the widget
	MonthName string               `json:"month_name"`
	Today     string               `json:"today"`
	Cells     []schedule.MonthCell `json:"cells"`
}

// Month returns the padded day grid for one month.
// GET /calendar/{year}/{month} with month 0-11.
func (h *CalendarHandler) Month(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 || year > 9999 {
		http.Error(w, `{"error": "invalid year"}`, http.StatusBadRequest)
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 0 || month > 11 {
		http.Error(w, `{"error": "month must be 0-11"}`, http.StatusBadRequest)
		return
	}

	loc := h.loc()
	writeJSON(w, h.logger, http.StatusOK, calendarResponse{
		Year:      year,
		Month:     month,
		MonthName: schedule.MonthName(month),
		Today:     schedule.DateKey(time.Now().In(loc)),
		Cells:     schedule.MonthCells(year, month, loc),
	})
}
