// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// Routes is mounted at /login.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLogin)
	r.Post("/", h.HandleLoginPost)
	return r
}

// SignupRoutes is mounted at /signup.
func SignupRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeSignup)
	r.Post("/", h.HandleSignupPost)
	return r
}

// ConfirmRoutes registers the email confirmation endpoints under /auth.
func ConfirmRoutes(r chi.Router, h *Handler) {
	r.Get("/auth/confirm", h.HandleConfirm)
	r.Post("/auth/resend", h.HandleResend)
}
