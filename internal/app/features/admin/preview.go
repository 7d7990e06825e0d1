package admin

import (
	"net/http"

	"github.com/dalemusser/mathmastery/internal/app/system/limits"
	"github.com/dalemusser/mathmastery/internal/app/system/mathtext"
)

// previewFields are the form fields the preview renders, in order. The
// first non-empty one wins so lesson and exercise forms share the route.
var previewFields = []string{"preview", "content", "problem", "solution"}

// HandlePreview renders marked-up text (with formulas) as an HTML fragment.
// The lesson and exercise forms post to it with hx-post and swap the result
// into their preview pane.
//
// POST /admin/preview
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxContentFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "Formulaire invalide.", err)
		return
	}

	var src string
	for _, f := range previewFields {
		if v := r.FormValue(f); v != "" {
			src = v
			break
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if src == "" {
		_, _ = w.Write([]byte(`<p class="text-gray-400">Rien à prévisualiser.</p>`))
		return
	}
	_, _ = w.Write([]byte(mathtext.Render(src)))
}
