package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Generation.
	r.Post("/generate", h.GeneratePresentation)
	r.Post("/generate-image", h.GenerateImage)
	r.Post("/generate-images-batch", h.GenerateImagesBatch)
	r.Get("/image-status/{predictionId}", h.ImageStatus)

	// Presentations CRUD.
	r.Get("/presentations", h.ListPresentations)
	r.Post("/presentations", h.CreatePresentation)
	r.Get("/presentations/{id}", h.GetPresentation)
	r.Put("/presentations/{id}", h.UpdatePresentation)
	r.Delete("/presentations/{id}", h.DeletePresentation)
	r.Get("/presentations/{id}/export", h.ExportPresentation)

	// Themes.
	r.Get("/themes", h.ListThemes)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
