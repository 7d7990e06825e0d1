// internal/app/features/login/signup.go
package login

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/mathmastery/internal/app/system/account"
	"github.com/dalemusser/mathmastery/internal/app/system/auth"
	"github.com/dalemusser/mathmastery/internal/app/system/authutil"
	"github.com/dalemusser/mathmastery/internal/app/system/limits"
	"github.com/dalemusser/mathmastery/internal/app/system/timeouts"
	"github.com/dalemusser/mathmastery/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| GET /signup                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeSignup(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	templates.Render(w, r, "signup", h.signupData(viewdata.NewBaseVM(w, r, h.SessionMgr, "Créer un compte", "/")))
}

func (h *Handler) signupData(base viewdata.BaseVM) signupFormData {
	return signupFormData{
		BaseVM:              base,
		PasswordRules:       authutil.PasswordRules(),
		GoogleEnabled:       h.GoogleEnabled,
		RequireConfirmation: h.RequireConfirmation,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /signup                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleSignupPost creates a student account. With email confirmation on,
// the user is sent to the login page to wait for the link; otherwise they
// are signed in straight away.
func (h *Handler) HandleSignupPost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxSmallFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "Données de formulaire invalides.", err)
		return
	}

	in := account.SignUpInput{
		Email:     strings.TrimSpace(r.FormValue("email")),
		Password:  r.FormValue("password"),
		FirstName: strings.TrimSpace(r.FormValue("first_name")),
		LastName:  strings.TrimSpace(r.FormValue("last_name")),
	}

	if confirm := r.FormValue("confirm_password"); confirm != "" && confirm != in.Password {
		h.renderSignupError(w, r, in, MsgPasswordMismatch)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Accounts.SignUp(ctx, in, account.MetaFromRequest(r))
	if err != nil {
		if !account.IsUserError(err) {
			h.Log.Error("sign up failed", zap.String("email", in.Email), zap.Error(err))
		}
		h.renderSignupError(w, r, in, account.Localize(err))
		return
	}

	if h.RequireConfirmation {
		h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, account.MsgSignedUp)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u.ID.Hex()); err != nil {
		h.ErrLog.LogServerError(w, r, "save session failed", err, zap.String("user_id", u.ID.Hex()))
		return
	}
	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, account.MsgSignedUpActive)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) renderSignupError(w http.ResponseWriter, r *http.Request, in account.SignUpInput, msg string) {
	data := h.signupData(viewdata.NewBaseVM(w, r, nil, "Créer un compte", "/"))
	data.Error = msg
	data.Email = in.Email
	data.FirstName = in.FirstName
	data.LastName = in.LastName
	templates.Render(w, r, "signup", data)
}
