package settings

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mkarlsen/bookline/internal/schedule"
	"github.com/mkarlsen/bookline/pkg/logging"
)

// Handler provides HTTP endpoints for scheduling configuration management.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

// NewHandler creates a new settings HTTP handler.
func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		store:  store,
		logger: logger,
	}
}

// Routes returns a chi router with settings admin routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetSettings)
	r.Put("/", h.UpdateSettings)
	r.Put("/overrides/{date}", h.PutOverride)
	r.Delete("/overrides/{date}", h.DeleteOverride)
	return r
}

// GetSettings returns the scheduling configuration.
// GET /admin/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.store.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to get settings", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.logger, cfg)
}

// UpdateSettingsRequest is the request body for updating scheduling settings.
// Omitted fields keep their current value.
type UpdateSettingsRequest struct {
	Timezone            string                `json:"timezone,omitempty"`
	SlotIntervalMinutes *int                  `json:"slot_interval_minutes,omitempty"`
	Hours               *schedule.WeeklyHours `json:"hours,omitempty"`
}

// UpdateSettings applies a partial update to the scheduling configuration.
// PUT /admin/settings
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	cfg, err := h.store.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to get settings", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	if req.Timezone != "" {
		cfg.Timezone = req.Timezone
	}
	if req.SlotIntervalMinutes != nil {
		cfg.SlotIntervalMinutes = *req.SlotIntervalMinutes
	}
	if req.Hours != nil {
		cfg.Hours = *req.Hours
	}

	if err := h.saveAndRespond(w, r, cfg); err == nil {
		h.logger.Info("scheduling settings updated", "timezone", cfg.Timezone, "interval", cfg.SlotIntervalMinutes)
	}
}

// PutOverride sets or replaces the override for one date. A null "hours"
// value marks the date explicitly closed, distinct from having no override.
// PUT /admin/settings/overrides/{date}
func (h *Handler) PutOverride(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if _, err := time.Parse(schedule.DateKeyFormat, date); err != nil {
		http.Error(w, `{"error": "date must be YYYY-MM-DD"}`, http.StatusBadRequest)
		return
	}

	var ov schedule.DayOverride
	if err := json.NewDecoder(r.Body).Decode(&ov); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	cfg, err := h.store.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to get settings", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	if cfg.Overrides == nil {
		cfg.Overrides = schedule.Overrides{}
	}
	cfg.Overrides[date] = ov

	if err := h.saveAndRespond(w, r, cfg); err == nil {
		h.logger.Info("date override saved", "date", date, "closed", ov.Hours == nil)
	}
}

// DeleteOverride removes the override for one date, restoring the weekly hours.
// DELETE /admin/settings/overrides/{date}
func (h *Handler) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	cfg, err := h.store.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to get settings", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	delete(cfg.Overrides, date)

	if err := h.saveAndRespond(w, r, cfg); err == nil {
		h.logger.Info("date override removed", "date", date)
	}
}

func (h *Handler) saveAndRespond(w http.ResponseWriter, r *http.Request, cfg *Settings) error {
	if err := h.store.Set(r.Context(), cfg); err != nil {
		if cfg.Validate() != nil {
			http.Error(w, `{"error": "`+err.Error()+`"}`, http.StatusBadRequest)
			return err
		}
		h.logger.Error("failed to save settings", "error", err)
		http.Error(w, `{"error": "failed to save settings"}`, http.StatusInternalServerError)
		return err
	}
	writeJSON(w, h.logger, cfg)
	return nil
}

func writeJSON(w http.ResponseWriter, logger *logging.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
