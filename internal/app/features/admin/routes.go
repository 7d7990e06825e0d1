// internal/app/features/admin/routes.go
package admin

import (
	"github.com/dalemusser/mathmastery/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the admin panel under /admin. Every route requires the
// admin role; signed-out visitors are sent to /login and students to /.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireAdmin)

	r.Get("/", h.ServeOverview)
	r.Post("/preview", h.HandlePreview)

	r.Route("/chapters", func(cr chi.Router) {
		cr.Get("/new", h.ServeChapterNew)
		cr.Post("/", h.HandleChapterCreate)
		cr.Get("/{id}/edit", h.ServeChapterEdit)
		cr.Post("/{id}", h.HandleChapterUpdate)
		cr.Get("/{id}/delete", h.ServeChapterDelete)
		cr.Post("/{id}/delete", h.HandleChapterDelete)
	})

	r.Route("/lessons", func(lr chi.Router) {
		lr.Get("/new", h.ServeLessonNew)
		lr.Post("/", h.HandleLessonCreate)
		lr.Get("/{id}/edit", h.ServeLessonEdit)
		lr.Post("/{id}", h.HandleLessonUpdate)
		lr.Get("/{id}/delete", h.ServeLessonDelete)
		lr.Post("/{id}/delete", h.HandleLessonDelete)
	})

	r.Route("/exercises", func(er chi.Router) {
		er.Get("/new", h.ServeExerciseNew)
		er.Post("/", h.HandleExerciseCreate)
		er.Get("/{id}/edit", h.ServeExerciseEdit)
		er.Post("/{id}", h.HandleExerciseUpdate)
		er.Get("/{id}/delete", h.ServeExerciseDelete)
		er.Post("/{id}/delete", h.HandleExerciseDelete)
	})

	r.Post("/users/promote", h.HandlePromote)
	r.Post("/users/demote", h.HandleDemote)

	return r
}
