package formutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/mathmastery/internal/app/system/auth"
)

func TestSetBase(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/admin/chapters/new", nil)
	r = auth.WithTestUser(r, &auth.SessionUser{ID: "a", Email: "a@example.com", Role: "admin"})

	var b Base
	SetBase(&b, r, "Nouveau chapitre", "/admin?tab=chapters")

	if b.Title != "Nouveau chapitre" {
		t.Errorf("Title = %q", b.Title)
	}
	if !b.IsLoggedIn || !b.IsAdmin {
		t.Errorf("expected signed-in admin, got %+v", b)
	}
	if b.UserName != "a@example.com" {
		t.Errorf("UserName = %q, want email fallback", b.UserName)
	}
	if b.HasError() {
		t.Error("new Base should have no error")
	}
}

func TestSetError_Escapes(t *testing.T) {
	var b Base
	b.SetError("<b>titre</b> requis")
	if got := string(b.Error); got != "&lt;b&gt;titre&lt;/b&gt; requis" {
		t.Errorf("Error = %q", got)
	}
	if !b.HasError() {
		t.Error("HasError() = false")
	}
}
