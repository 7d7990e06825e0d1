// Package formutil provides helpers for form re-rendering with validation errors.
//
// When a form submission fails validation, the form should be re-rendered with:
// - The user's previously entered values (echoed back)
// - An error message explaining what went wrong
//
// Example usage:
//
//	type chapterFormData struct {
//		formutil.Base
//		Title string
//		Color string
//	}
//
//	data := chapterFormData{Title: title}
//	formutil.SetBase(&data.Base, r, "Nouveau chapitre", "/admin?tab=chapters")
//	data.SetError("Le titre est requis.")
//	templates.Render(w, r, "admin_chapter_form", data)
package formutil

import (
	"html/template"
	"net/http"

	"github.com/dalemusser/mathmastery/internal/app/system/viewdata"
)

// Base contains common fields for form pages that can be embedded in form data structs.
type Base struct {
	viewdata.BaseVM
	Error template.HTML
}

// SetBase populates the common Base fields from the request context.
// Form pages re-rendered after a failed POST never show queued flashes;
// those stay in the session for the page the user lands on next.
func SetBase(b *Base, r *http.Request, title, backDefault string) {
	b.BaseVM = viewdata.NewBaseVM(nil, r, nil, title, backDefault)
}

// SetError sets the error message. msg is escaped.
func (b *Base) SetError(msg string) {
	b.Error = template.HTML(template.HTMLEscapeString(msg))
}

// HasError reports whether an error message is set.
func (b *Base) HasError() bool { return b.Error != "" }
