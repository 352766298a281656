package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mkarlsen/bookline/internal/bookings"
	"github.com/mkarlsen/bookline/internal/schedule"
	"github.com/mkarlsen/bookline/internal/services"
	"github.com/mkarlsen/bookline/pkg/logging"
)

// BookingService books and manages appointments.
type BookingService interface {
	Book(ctx context.Context, req bookings.BookRequest) (*bookings.Booking, error)
	Cancel(ctx context.Context, id uuid.UUID) error
	ListForDate(ctx context.Context, date time.Time) ([]bookings.Booking, error)
}

// BookingsHandler serves the public booking endpoint and the admin agenda.
type BookingsHandler struct {
	svc    BookingService
	logger *logging.Logger
}

// NewBookingsHandler creates the bookings handler.
func NewBookingsHandler(svc BookingService, logger *logging.Logger) *BookingsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingsHandler{svc: svc, logger: logger}
}

// AdminRoutes returns the admin agenda routes.
func (h *BookingsHandler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListForDate)
	r.Delete("/{bookingID}", h.Cancel)
	return r
}

type createBookingRequest struct {
	ServiceID   uuid.UUID `json:"service_id"`
	Date        string    `json:"date"`  // YYYY-MM-DD
	Start       string    `json:"start"` // HH:MM
	ClientName  string    `json:"client_name"`
	ClientEmail string    `json:"client_email"`
}

func (req *createBookingRequest) validate() string {
	if req.ServiceID == uuid.Nil {
		return "service_id required"
	}
	if req.ClientName == "" {
		return "client_name required"
	}
	if req.ClientEmail != "" {
		if _, err := mail.ParseAddress(req.ClientEmail); err != nil {
			return "client_email is not a valid address"
		}
	}
	return ""
}

// Create books a slot.
// POST /bookings
func (h *BookingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		http.Error(w, `{"error": "`+msg+`"}`, http.StatusBadRequest)
		return
	}
	date, err := time.Parse(schedule.DateKeyFormat, req.Date)
	if err != nil {
		http.Error(w, `{"error": "date must be YYYY-MM-DD"}`, http.StatusBadRequest)
		return
	}
	startMinute, ok := parseClock(req.Start)
	if !ok {
		http.Error(w, `{"error": "start must be HH:MM"}`, http.StatusBadRequest)
		return
	}

	b, err := h.svc.Book(r.Context(), bookings.BookRequest{
		ServiceID:   req.ServiceID,
		Date:        date,
		StartMinute: startMinute,
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
	})
	switch {
	case errors.Is(err, services.ErrNotFound):
		http.Error(w, `{"error": "service not found"}`, http.StatusNotFound)
		return
	case errors.Is(err, bookings.ErrServiceInactive):
		http.Error(w, `{"error": "service not bookable"}`, http.StatusConflict)
		return
	case errors.Is(err, bookings.ErrSlotUnavailable):
		http.Error(w, `{"error": "slot no longer available"}`, http.StatusConflict)
		return
	case err != nil:
		h.logger.Error("booking failed", "date", req.Date, "start", req.Start, "error", err)
		http.Error(w, `{"error": "failed to book, try again"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, b)
}

// ListForDate returns the confirmed bookings on one date.
// GET /admin/bookings?date=2026-03-02
func (h *BookingsHandler) ListForDate(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse(schedule.DateKeyFormat, r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, `{"error": "date must be YYYY-MM-DD"}`, http.StatusBadRequest)
		return
	}

	list, err := h.svc.ListForDate(r.Context(), date)
	if err != nil {
		h.logger.Error("failed to list bookings", "date", r.URL.Query().Get("date"), "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []bookings.Booking{}
	}
	writeJSON(w, h.logger, http.StatusOK, list)
}

// Cancel cancels a booking.
// DELETE /admin/bookings/{bookingID}
func (h *BookingsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		http.Error(w, `{"error": "invalid booking id"}`, http.StatusBadRequest)
		return
	}

	err = h.svc.Cancel(r.Context(), id)
	if errors.Is(err, bookings.ErrNotFound) {
		http.Error(w, `{"error": "booking not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to cancel booking", "booking_id", id, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(s string) (int, bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
