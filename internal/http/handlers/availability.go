// Package handlers exposes the booking API over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mkarlsen/bookline/internal/bookings"
	"github.com/mkarlsen/bookline/internal/schedule"
	"github.com/mkarlsen/bookline/internal/services"
	"github.com/mkarlsen/bookline/pkg/logging"
)

// AvailabilityService computes the open slots for a service on a date.
type AvailabilityService interface {
	DayAvailability(ctx context.Context, date time.Time, serviceID uuid.UUID) ([]string, error)
}

// AvailabilityHandler serves the public slot lookup.
type AvailabilityHandler struct {
	svc    AvailabilityService
	logger *logging.Logger
}

// NewAvailabilityHandler creates the availability handler.
func NewAvailabilityHandler(svc AvailabilityService, logger *logging.Logger) *AvailabilityHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AvailabilityHandler{svc: svc, logger: logger}
}

type availabilityResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

// Get returns the bookable start times for one service and date.
// GET /availability?date=2026-03-02&service_id=...
func (h *AvailabilityHandler) Get(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse(schedule.DateKeyFormat, r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, `{"error": "date must be YYYY-MM-DD"}`, http.StatusBadRequest)
		return
	}
	serviceID, err := uuid.Parse(r.URL.Query().Get("service_id"))
	if err != nil {
		http.Error(w, `{"error": "invalid service_id"}`, http.StatusBadRequest)
		return
	}

	slots, err := h.svc.DayAvailability(r.Context(), date, serviceID)
	switch {
	case errors.Is(err, services.ErrNotFound):
		http.Error(w, `{"error": "service not found"}`, http.StatusNotFound)
		return
	case errors.Is(err, bookings.ErrServiceInactive):
		http.Error(w, `{"error": "service not bookable"}`, http.StatusConflict)
		return
	case err != nil:
		h.logger.Error("availability lookup failed",
			"date", schedule.DateKey(date), "service_id", serviceID, "error", err)
		http.Error(w, `{"error": "availability unavailable, try again"}`, http.StatusBadGateway)
		return
	}

	if slots == nil {
		slots = []string{}
	}
	writeJSON(w, h.logger, http.StatusOK, availabilityResponse{
		Date:  schedule.DateKey(date),
		Slots: slots,
	})
}

func writeJSON(w http.ResponseWriter, logger *logging.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
