// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/dalemusser/mathmastery/internal/app/system/auth"
	"github.com/dalemusser/mathmastery/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// FlashVM is a one-shot notice rendered at the top of a page.
type FlashVM struct {
	Kind    string // success | error
	Message string
}

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(w, r, h.Sessions, "Page Title", "/default-back"),
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	IsAdmin    bool
	Role       string
	UserName   string
	UserEmail  string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFToken string

	Flashes []FlashVM
}

// FlashSource pops the queued notices for a request. *auth.SessionManager
// satisfies it.
type FlashSource interface {
	Flashes(w http.ResponseWriter, r *http.Request) []auth.Flash
}

// NewBaseVM creates a fully populated BaseVM for a page.
//
// Parameters:
//   - w, r: the response and request; w is needed because reading flashes
//     rewrites the session cookie
//   - flashes: source of queued notices (nil for none)
//   - title: the page title
//   - backDefault: default URL for the back button if none in request
func NewBaseVM(w http.ResponseWriter, r *http.Request, flashes FlashSource, title, backDefault string) BaseVM {
	vm := BaseVM{
		SiteName:    models.DefaultSiteName,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}

	if u, ok := auth.CurrentUser(r); ok {
		vm.IsLoggedIn = true
		vm.IsAdmin = u.IsAdmin()
		vm.Role = u.Role
		vm.UserName = u.DisplayName()
		vm.UserEmail = u.Email
	}

	if flashes != nil {
		for _, f := range flashes.Flashes(w, r) {
			vm.Flashes = append(vm.Flashes, FlashVM{Kind: f.Kind, Message: f.Message})
		}
	}
	return vm
}

// AddError appends an error notice rendered on this page only.
func (vm *BaseVM) AddError(msg string) {
	vm.Flashes = append(vm.Flashes, FlashVM{Kind: auth.FlashError, Message: msg})
}
