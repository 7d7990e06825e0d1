// internal/app/features/login/confirm.go
package login

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/mathmastery/internal/app/system/account"
	"github.com/dalemusser/mathmastery/internal/app/system/auth"
	"github.com/dalemusser/mathmastery/internal/app/system/limits"
	"github.com/dalemusser/mathmastery/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// HandleConfirm consumes the token from a confirmation email.
// GET /auth/confirm?token=...
func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Accounts.ConfirmEmail(ctx, query.Get(r, "token"), account.MetaFromRequest(r))
	if err != nil {
		if !account.IsUserError(err) {
			h.Log.Error("confirm email failed", zap.Error(err))
		}
		h.SessionMgr.AddFlash(w, r, auth.FlashError, account.Localize(err))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	h.Log.Info("email confirmed", zap.String("user_id", u.ID.Hex()))
	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, account.MsgEmailConfirmed)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// HandleResend mails a fresh confirmation link. The response is the same
// whether or not the address belongs to an unconfirmed account.
// POST /auth/resend
func (h *Handler) HandleResend(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxSmallFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "Données de formulaire invalides.", err)
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	if email == "" {
		h.SessionMgr.AddFlash(w, r, auth.FlashError, MsgEmailRequired)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Accounts.ResendConfirmation(ctx, email); err != nil {
		h.Log.Error("resend confirmation failed", zap.String("email", email), zap.Error(err))
	}
	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, MsgResent)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
