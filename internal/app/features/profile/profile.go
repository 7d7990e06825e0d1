// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/mathmastery/internal/app/features/errors"
	"github.com/dalemusser/mathmastery/internal/app/store/audit"
	"github.com/dalemusser/mathmastery/internal/app/system/account"
	"github.com/dalemusser/mathmastery/internal/app/system/auth"
	"github.com/dalemusser/mathmastery/internal/app/system/authutil"
	"github.com/dalemusser/mathmastery/internal/app/system/limits"
	"github.com/dalemusser/mathmastery/internal/app/system/timeouts"
	"github.com/dalemusser/mathmastery/internal/app/system/viewdata"
	"github.com/dalemusser/mathmastery/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Notices.
const (
	MsgProfileSaved    = "Profil mis à jour."
	MsgPasswordChanged = "Mot de passe modifié avec succès."
	MsgPasswordsDiffer = "Les mots de passe ne correspondent pas."
)

// activityLimit is how many recent events the profile page lists.
const activityLimit = 10

var activityLabels = map[string]string{
	audit.EventSignUp:                   "Inscription",
	audit.EventLoginSuccess:             "Connexion",
	audit.EventLoginFailedWrongPassword: "Connexion refusée (mot de passe)",
	audit.EventLoginFailedUnconfirmed:   "Connexion refusée (email non confirmé)",
	audit.EventLoginFailedRateLimit:     "Connexion bloquée (trop de tentatives)",
	audit.EventLogout:                   "Déconnexion",
	audit.EventEmailConfirmed:           "Email confirmé",
	audit.EventPasswordChanged:          "Mot de passe modifié",
	audit.EventRoleChanged:              "Rôle modifié",
}

// activityItem is one row of the recent activity list.
type activityItem struct {
	When    string
	Label   string
	IP      string
	Success bool
}

// profileData is the view model for the profile page.
type profileData struct {
	viewdata.BaseVM

	Email       string
	FirstName   string
	LastName    string
	AuthMethod  string
	MemberSince string

	// Password section (only shown for accounts with a password)
	ShowPasswordSection bool
	PasswordRules       string

	Activity []activityItem
}

func buildActivity(events []audit.Event) []activityItem {
	out := make([]activityItem, 0, len(events))
	for _, e := range events {
		label, ok := activityLabels[e.EventType]
		if !ok {
			label = e.EventType
		}
		out = append(out, activityItem{
			When:    e.Timestamp.Format("02/01/2006 15:04"),
			Label:   label,
			IP:      e.IP,
			Success: e.Success,
		})
	}
	return out
}

// loadActivity returns nil when the journal cannot be read; the rest of
// the page still renders.
func (h *Handler) loadActivity(ctx context.Context, uid primitive.ObjectID) []activityItem {
	if h.Activity == nil {
		return nil
	}
	events, err := h.Activity.GetByUser(ctx, uid, activityLimit)
	if err != nil {
		h.Log.Warn("load profile activity failed",
			zap.String("user_id", uid.Hex()),
			zap.Error(err))
		return nil
	}
	return buildActivity(events)
}

func authMethodLabel(m string) string {
	if m == models.AuthMethodGoogle {
		return "Google"
	}
	return "Email et mot de passe"
}

func buildProfile(base viewdata.BaseVM, cur *account.Current) profileData {
	data := profileData{
		BaseVM:              base,
		Email:               cur.User.Email,
		FirstName:           cur.User.Metadata.FirstName,
		LastName:            cur.User.Metadata.LastName,
		AuthMethod:          authMethodLabel(cur.User.AuthMethod),
		MemberSince:         cur.User.CreatedAt.Format("02/01/2006"),
		ShowPasswordSection: cur.User.PasswordHash != "",
		PasswordRules:       authutil.PasswordRules(),
	}
	if cur.Profile != nil {
		data.FirstName = cur.Profile.FirstName
		data.LastName = cur.Profile.LastName
	}
	return data
}

// currentID returns the signed-in user's id. RequireSignedIn guarantees a
// user; a malformed id means the session is stale.
func currentID(r *http.Request) (primitive.ObjectID, bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, false
	}
	oid, err := primitive.ObjectIDFromHex(u.ID)
	return oid, err == nil
}

// ServeProfile renders the user's profile page.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentID(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "load profile")
	defer cancel()

	cur, err := h.Accounts.CurrentUser(ctx, uid)
	if err != nil {
		if errors.Is(err, account.ErrUserNotFound) {
			uierrors.RenderNotFound(w, r, account.MsgUserNotFound, "/")
			return
		}
		h.ErrLog.LogServerError(w, r, "load profile failed", err)
		return
	}

	base := viewdata.NewBaseVM(w, r, h.SessionMgr, "Mon profil", "/dashboard")
	data := buildProfile(base, cur)
	data.Activity = h.loadActivity(ctx, uid)
	templates.Render(w, r, "profile", data)
}

// HandleUpdate saves the profile names.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentID(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxSmallFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "Formulaire invalide.", err)
		return
	}

	in := account.ProfileInput{
		FirstName: r.PostFormValue("first_name"),
		LastName:  r.PostFormValue("last_name"),
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update profile")
	defer cancel()

	if err := h.Accounts.UpdateProfile(ctx, uid, in); err != nil {
		h.fail(w, r, "update profile failed", err)
		return
	}
	h.done(w, r, MsgProfileSaved)
}

// HandleChangePassword processes the password change form.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentID(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxSmallFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "Formulaire invalide.", err)
		return
	}

	next := r.PostFormValue("new_password")
	if next != r.PostFormValue("confirm_password") {
		h.SessionMgr.AddFlash(w, r, auth.FlashError, MsgPasswordsDiffer)
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "change password")
	defer cancel()

	if err := h.Accounts.ChangePassword(ctx, uid, r.PostFormValue("current_password"), next, account.MetaFromRequest(r)); err != nil {
		h.fail(w, r, "change password failed", err)
		return
	}
	h.done(w, r, MsgPasswordChanged)
}

func (h *Handler) done(w http.ResponseWriter, r *http.Request, msg string) {
	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, msg)
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// fail flashes the localized error. Unexpected errors are logged.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if !account.IsUserError(err) {
		h.Log.Error(op, zap.Error(err))
	}
	h.SessionMgr.AddFlash(w, r, auth.FlashError, account.Localize(err))
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}
