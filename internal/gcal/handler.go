package gcal

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/oauth2"

	"github.com/mkarlsen/bookline/pkg/logging"
)

// Handler drives the admin's Google Calendar connect flow.
type Handler struct {
	conf   *oauth2.Config
	store  *TokenStore
	logger *logging.Logger
}

// NewHandler creates the OAuth handler.
func NewHandler(conf *oauth2.Config, store *TokenStore, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{conf: conf, store: store, logger: logger}
}

// Routes returns the admin calendar connection routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/connect", h.Connect)
	r.Get("/callback", h.Callback)
	r.Get("/status", h.Status)
	r.Delete("/connection", h.Disconnect)
	return r
}

// Connect redirects the admin to Google's consent screen.
// GET /admin/calendar/connect
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	url := h.conf.AuthCodeURL("bookline", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	http.Redirect(w, r, url, http.StatusFound)
}

// Callback exchanges the authorization code and stores the token.
// GET /admin/calendar/callback?code=...
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, `{"error": "missing code"}`, http.StatusBadRequest)
		return
	}

	tok, err := h.conf.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth exchange failed", "error", err)
		http.Error(w, `{"error": "oauth exchange failed"}`, http.StatusBadGateway)
		return
	}
	if err := h.store.Save(r.Context(), tok); err != nil {
		h.logger.Error("failed to store calendar token", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	h.logger.Info("google calendar connected")
	writeJSON(w, h.logger, map[string]string{"status": "connected"})
}

// Status reports whether a calendar is connected.
// GET /admin/calendar/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	_, err := h.store.Token(r.Context())
	if errors.Is(err, ErrNoToken) {
		writeJSON(w, h.logger, map[string]bool{"connected": false})
		return
	}
	if err != nil {
		h.logger.Error("failed to read calendar token", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.logger, map[string]bool{"connected": true})
}

// Disconnect drops the stored token.
// DELETE /admin/calendar/connection
func (h *Handler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context()); err != nil {
		h.logger.Error("failed to disconnect calendar", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	h.logger.Info("google calendar disconnected")
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, logger *logging.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
