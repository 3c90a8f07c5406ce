// Package handlers provides HTTP handlers for the toast feed and activity log.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/trafficpanel/internal/modules/notifications"
	"github.com/rs/zerolog"
)

const maxLimit = 500

// Handler handles notification HTTP requests
type Handler struct {
	notifier *notifications.Notifier
	log      zerolog.Logger
}

// NewHandler creates a new notifications handler
func NewHandler(notifier *notifications.Notifier, log zerolog.Logger) *Handler {
	return &Handler{
		notifier: notifier,
		log:      log.With().Str("handler", "notifications").Logger(),
	}
}

// HandleGetRecent handles GET /api/panel/notifications
func (h *Handler) HandleGetRecent(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.parseLimit(w, r)
	if !ok {
		return
	}

	toasts := h.notifier.Recent(limit)
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": toasts,
		"metadata": map[string]interface{}{
			"count":     len(toasts),
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetHistory handles GET /api/panel/notifications/history
func (h *Handler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.parseLimit(w, r)
	if !ok {
		return
	}

	toasts, err := h.notifier.History(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read notification history")
		h.writeError(w, http.StatusInternalServerError, "Failed to read notification history")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": toasts,
		"metadata": map[string]interface{}{
			"count":     len(toasts),
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		h.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return 0, false
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
