// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/mathmastery/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes wires the dashboard under /dashboard. Every page requires a
// signed-in user; students and admins see the same content.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeDashboard)
		pr.Get("/chapters/{id}", h.ServeChapter)
		pr.Get("/lessons/{id}", h.ServeLesson)
	})

	return r
}
