// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/mathmastery/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// Default messages shown on the error pages.
const (
	MsgForbidden    = "Vous n'avez pas l'autorisation d'accéder à cette page."
	MsgUnauthorized = "Veuillez vous connecter pour continuer."
	MsgNotFound     = "La page demandée est introuvable."
	MsgServerError  = "Une erreur est survenue. Veuillez réessayer."
)

func newPage(w http.ResponseWriter, r *http.Request, title, heading, msg, backURL string) pageData {
	return pageData{
		BaseVM:  viewdata.NewBaseVM(w, r, nil, title, backURL),
		Heading: heading,
		Message: msg,
	}
}

// RenderUnauthorized shows a friendly "sign in required" page.
// If backURL is empty, it will default to /login.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	if backURL == "" {
		backURL = "/login"
	}
	data := newPage(w, r, "Connexion requise", "Connexion requise", MsgUnauthorized, backURL)
	w.WriteHeader(http.StatusUnauthorized)
	templates.Render(w, r, "error_page", data)
}

// RenderForbidden shows a friendly access error page with a message.
// If msg is empty MsgForbidden is used.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if msg == "" {
		msg = MsgForbidden
	}
	if backURL == "" {
		backURL = "/"
	}
	data := newPage(w, r, "Accès refusé", "Accès refusé", msg, backURL)
	w.WriteHeader(http.StatusForbidden)
	templates.Render(w, r, "error_page", data)
}

// RenderNotFound shows the "page not found" page.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if msg == "" {
		msg = MsgNotFound
	}
	if backURL == "" {
		backURL = "/"
	}
	data := newPage(w, r, "Page introuvable", "Page introuvable", msg, backURL)
	w.WriteHeader(http.StatusNotFound)
	templates.Render(w, r, "error_page", data)
}
