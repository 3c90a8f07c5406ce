package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the panel routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/state", h.HandleGetState)
	r.Post("/sync", h.HandleSync)
	r.Post("/config", h.HandleUpdate)
	r.Put("/switch", h.HandleSetSwitch)
	r.Post("/switch", h.HandleApplySwitch)
}
