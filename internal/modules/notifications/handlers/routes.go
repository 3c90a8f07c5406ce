package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the notification routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", h.HandleGetRecent)
		r.Get("/history", h.HandleGetHistory)
	})
}
