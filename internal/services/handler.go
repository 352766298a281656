package services

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mkarlsen/bookline/pkg/logging"
)

// Handler provides HTTP endpoints for service offerings.
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates a new services HTTP handler.
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// AdminRoutes returns the admin CRUD routes.
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListAll)
	r.Post("/", h.Create)
	r.Put("/{serviceID}", h.Update)
	r.Delete("/{serviceID}", h.Deactivate)
	return r
}

// List returns the active offerings for the public booking page.
// GET /services
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.ListActive(r.Context())
	if err != nil {
		h.logger.Error("failed to list services", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []Service{}
	}
	writeJSON(w, h.logger, list)
}

// ListAll returns every offering for the admin screen.
// GET /admin/services
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list services", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []Service{}
	}
	writeJSON(w, h.logger, list)
}

type serviceRequest struct {
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	PriceCents      int    `json:"price_cents"`
}

func (req *serviceRequest) validate() string {
	if req.Name == "" {
		return "name required"
	}
	if req.DurationMinutes <= 0 {
		return "duration_minutes must be positive"
	}
	if req.PriceCents < 0 {
		return "price_cents must not be negative"
	}
	return ""
}

// Create adds a new offering.
// POST /admin/services
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		http.Error(w, `{"error": "`+msg+`"}`, http.StatusBadRequest)
		return
	}

	svc, err := h.repo.Create(r.Context(), req.Name, req.DurationMinutes, req.PriceCents)
	if err != nil {
		h.logger.Error("failed to create service", "name", req.Name, "error", err)
		http.Error(w, `{"error": "failed to create service"}`, http.StatusInternalServerError)
		return
	}

	h.logger.Info("service created", "service_id", svc.ID, "name", svc.Name, "duration", svc.DurationMinutes)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(svc); err != nil {
		h.logger.Error("failed to encode service", "error", err)
	}
}

// Update edits an offering.
// PUT /admin/services/{serviceID}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "serviceID"))
	if err != nil {
		http.Error(w, `{"error": "invalid service id"}`, http.StatusBadRequest)
		return
	}

	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		http.Error(w, `{"error": "`+msg+`"}`, http.StatusBadRequest)
		return
	}

	err = h.repo.Update(r.Context(), id, req.Name, req.DurationMinutes, req.PriceCents)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, `{"error": "service not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to update service", "service_id", id, "error", err)
		http.Error(w, `{"error": "failed to update service"}`, http.StatusInternalServerError)
		return
	}

	h.logger.Info("service updated", "service_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// Deactivate hides an offering from the booking page.
// DELETE /admin/services/{serviceID}
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "serviceID"))
	if err != nil {
		http.Error(w, `{"error": "invalid service id"}`, http.StatusBadRequest)
		return
	}

	err = h.repo.Deactivate(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, `{"error": "service not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to deactivate service", "service_id", id, "error", err)
		http.Error(w, `{"error": "failed to deactivate service"}`, http.StatusInternalServerError)
		return
	}

	h.logger.Info("service deactivated", "service_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, logger *logging.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
