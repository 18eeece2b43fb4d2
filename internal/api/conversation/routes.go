package conversation

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers conversation routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/models", h.ListModels)

	r.Route("/conversations", func(r chi.Router) {
		r.Post("/", h.CreateConversation)
		r.Get("/{id}", h.GetConversation)
		r.Post("/{id}/questions", h.AskQuestion)
		r.Post("/{id}/reset", h.ResetConversation)
		r.Patch("/{id}/settings", h.UpdateSettings)
		r.Get("/{id}/feedback", h.GetFeedback)
		r.Get("/{id}/transcript", h.GetTranscript)
	})
}
