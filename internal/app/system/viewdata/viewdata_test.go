package viewdata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/mathmastery/internal/app/system/auth"
)

type stubFlashes []auth.Flash

func (s stubFlashes) Flashes(http.ResponseWriter, *http.Request) []auth.Flash { return s }

func TestNewBaseVM_Anonymous(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	vm := NewBaseVM(httptest.NewRecorder(), r, nil, "Tableau de bord", "/")

	if vm.IsLoggedIn || vm.IsAdmin {
		t.Errorf("anonymous request reported as signed in: %+v", vm)
	}
	if vm.Title != "Tableau de bord" {
		t.Errorf("Title = %q", vm.Title)
	}
	if vm.SiteName == "" {
		t.Error("SiteName should default")
	}
	if len(vm.Flashes) != 0 {
		t.Errorf("Flashes = %v, want none", vm.Flashes)
	}
}

func TestNewBaseVM_SignedInAdmin(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/admin", nil)
	r = auth.WithTestUser(r, &auth.SessionUser{
		ID:    "u1",
		Email: "prof@example.com",
		Name:  "Prof Alami",
		Role:  "admin",
	})

	src := stubFlashes{{Kind: auth.FlashSuccess, Message: "Chapitre créé"}}
	vm := NewBaseVM(httptest.NewRecorder(), r, src, "Admin", "/")

	if !vm.IsLoggedIn || !vm.IsAdmin {
		t.Fatalf("expected signed-in admin, got %+v", vm)
	}
	if vm.UserName != "Prof Alami" || vm.UserEmail != "prof@example.com" {
		t.Errorf("user fields = %q / %q", vm.UserName, vm.UserEmail)
	}
	if len(vm.Flashes) != 1 || vm.Flashes[0].Message != "Chapitre créé" {
		t.Errorf("Flashes = %v", vm.Flashes)
	}
}

func TestBaseVM_AddError(t *testing.T) {
	var vm BaseVM
	vm.AddError("Erreur lors du chargement des chapitres")
	if len(vm.Flashes) != 1 || vm.Flashes[0].Kind != auth.FlashError {
		t.Errorf("Flashes = %v", vm.Flashes)
	}
}
