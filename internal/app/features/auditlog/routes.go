// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/mathmastery/internal/app/system/auth"
	"github.com/dalemusser/mathmastery/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /audit. Only admins can read the journal.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleAdmin))
	r.Get("/", h.ServeList)
	return r
}
