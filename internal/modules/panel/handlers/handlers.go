// Package handlers provides HTTP handlers for the control panel.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/trafficpanel/internal/domain"
	"github.com/aristath/trafficpanel/internal/modules/panel"
	"github.com/rs/zerolog"
)

// Handler handles panel HTTP requests
type Handler struct {
	service *panel.Service
	log     zerolog.Logger
}

// NewHandler creates a new panel handler
func NewHandler(service *panel.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "panel").Logger(),
	}
}

// SwitchRequest is the body of PUT /api/panel/switch
type SwitchRequest struct {
	On bool `json:"on"`
}

// HandleGetState handles GET /api/panel/state
func (h *Handler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	h.writeState(w, http.StatusOK, nil)
}

// HandleSync handles POST /api/panel/sync
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	_, err := h.service.Sync(r.Context())
	h.writeOutcome(w, err)
}

// HandleUpdate handles POST /api/panel/config
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req panel.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug().Err(err).Msg("Failed to decode update request")
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.service.Update(r.Context(), req.Form, req.On)
	h.writeOutcome(w, err)
}

// HandleSetSwitch handles PUT /api/panel/switch
func (h *Handler) HandleSetSwitch(w http.ResponseWriter, r *http.Request) {
	var req SwitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.service.SetSwitch(req.On)
	h.writeState(w, http.StatusOK, nil)
}

// HandleApplySwitch handles POST /api/panel/switch, starting or stopping the
// lights without sending the form
func (h *Handler) HandleApplySwitch(w http.ResponseWriter, r *http.Request) {
	var req SwitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.writeOutcome(w, h.service.Switch(r.Context(), req.On))
}

// writeOutcome answers an operation with the panel state. Controller failures
// are reported through the toast, so they still answer 200; invalid input is 422.
func (h *Handler) writeOutcome(w http.ResponseWriter, err error) {
	status := http.StatusOK
	if errors.Is(err, domain.ErrInvalidForm) {
		status = http.StatusUnprocessableEntity
	}
	h.writeState(w, status, err)
}

func (h *Handler) writeState(w http.ResponseWriter, status int, err error) {
	metadata := map[string]interface{}{
		"timestamp": time.Now().Format(time.RFC3339),
		"ok":        err == nil,
	}
	if err != nil {
		metadata["error"] = err.Error()
	}

	h.writeJSON(w, status, map[string]interface{}{
		"data":     h.service.State(),
		"metadata": metadata,
	})
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
