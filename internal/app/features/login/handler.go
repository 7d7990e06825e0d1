// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/mathmastery/internal/app/features/errors"
	"github.com/dalemusser/mathmastery/internal/app/system/account"
	"github.com/dalemusser/mathmastery/internal/app/system/auth"
	"github.com/dalemusser/mathmastery/internal/app/system/limits"
	"github.com/dalemusser/mathmastery/internal/app/system/navigation"
	"github.com/dalemusser/mathmastery/internal/app/system/timeouts"
	"github.com/dalemusser/mathmastery/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Messages shown by the confirmation flow.
const (
	MsgPasswordMismatch = "Les mots de passe ne correspondent pas."
	MsgResent           = "Si un compte non confirmé existe pour cette adresse, un nouveau lien a été envoyé."
	MsgEmailRequired    = "Veuillez saisir votre adresse email."
)

type Handler struct {
	Accounts      *account.Service
	SessionMgr    *auth.SessionManager
	ErrLog        *uierrors.ErrorLogger
	Log           *zap.Logger
	GoogleEnabled bool
	// RequireConfirmation mirrors the account service setting so the
	// sign-up page can say whether a confirmation email is coming.
	RequireConfirmation bool
}

func NewHandler(
	accounts *account.Service,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	googleEnabled bool,
	requireConfirmation bool,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Accounts:            accounts,
		SessionMgr:          sessionMgr,
		ErrLog:              errLog,
		Log:                 logger,
		GoogleEnabled:       googleEnabled,
		RequireConfirmation: requireConfirmation,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Error         string
	Email         string
	ReturnURL     string
	GoogleEnabled bool
	ShowResend    bool // the account exists but is not confirmed yet
}

type signupFormData struct {
	viewdata.BaseVM
	Error               string
	Email               string
	FirstName           string
	LastName            string
	PasswordRules       string
	GoogleEnabled       bool
	RequireConfirmation bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, navigation.SafeBackURL(r, navigation.LoginReturnURL), http.StatusSeeOther)
		return
	}
	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(w, r, h.SessionMgr, "Connexion", "/"),
		ReturnURL:     query.Get(r, "return"),
		GoogleEnabled: h.GoogleEnabled,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxSmallFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "Données de formulaire invalides.", err)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Accounts.SignIn(ctx, email, password, account.MetaFromRequest(r))
	if err != nil {
		if !account.IsUserError(err) {
			h.Log.Error("sign in failed", zap.String("email", email), zap.Error(err))
		}
		h.renderLoginError(w, r, err, email)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u.ID.Hex()); err != nil {
		h.ErrLog.LogServerError(w, r, "save session failed", err, zap.String("user_id", u.ID.Hex()))
		return
	}
	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, account.MsgSignedIn)
	http.Redirect(w, r, navigation.SafeBackURL(r, navigation.LoginReturnURL), http.StatusSeeOther)
}

func (h *Handler) renderLoginError(w http.ResponseWriter, r *http.Request, err error, email string) {
	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(w, r, nil, "Connexion", "/"),
		Error:         account.Localize(err),
		Email:         email,
		ReturnURL:     strings.TrimSpace(r.FormValue("return")),
		GoogleEnabled: h.GoogleEnabled,
		ShowResend:    errors.Is(err, account.ErrEmailNotConfirmed),
	})
}
