package home

import "github.com/go-chi/chi/v5"

// Routes registers the landing page on r. It is not mounted as a subrouter
// so unknown paths fall through to the root NotFound handler.
func Routes(r chi.Router, h *Handler) {
	r.Get("/", h.ServeRoot)
}
