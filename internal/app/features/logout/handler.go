// internal/app/features/logout/handler.go
package logout

import (
	"context"
	"net/http"

	"github.com/dalemusser/mathmastery/internal/app/system/account"
	"github.com/dalemusser/mathmastery/internal/app/system/auth"
	"go.uber.org/zap"
)

// SignOutRecorder publishes the signed_out event. *account.Service
// satisfies it.
type SignOutRecorder interface {
	SignOut(ctx context.Context, userID string, meta account.RequestMeta)
}

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Accounts   SignOutRecorder
}

func NewHandler(sessionMgr *auth.SessionManager, accounts SignOutRecorder, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Accounts:   accounts,
	}
}

// HandleLogout handles POST /logout. The session cookie is kept (without
// the user) so the "signed out" notice survives the redirect.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	userID, signedIn := h.SessionMgr.SessionUserID(r)

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}
	if signedIn && h.Accounts != nil {
		h.Accounts.SignOut(r.Context(), userID, account.MetaFromRequest(r))
	}
	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, account.MsgSignedOut)

	// HTMX handling: use HX-Redirect to force a client-side navigation to "/".
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
