package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
)

// Routes mounts the JSON API. Browsers on allowedOrigins may call it with
// credentials; an empty list allows no cross-origin browser. Token and
// sign-up are public, everything else needs a bearer token.
func Routes(h *Handler, allowedOrigins []string) chi.Router {
	r := chi.NewRouter()
	r.Use(corsHandler(allowedOrigins))

	r.Post("/auth/signup", h.HandleSignUp)
	r.Post("/auth/token", h.HandleToken)

	r.Group(func(pr chi.Router) {
		pr.Use(h.RequireBearer)
		pr.Get("/auth/user", h.ServeUser)
		pr.Get("/chapters", h.ServeChapters)
		pr.Get("/chapters/{id}/lessons", h.ServeChapterLessons)
		pr.Get("/lessons/{id}", h.ServeLesson)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, MsgNotFound)
	})
	return r
}

func corsHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           600,
	}
	// rs/cors reads an empty AllowedOrigins as "*".
	if len(allowedOrigins) == 0 {
		opts.AllowOriginFunc = func(string) bool { return false }
	}
	return cors.New(opts).Handler
}
