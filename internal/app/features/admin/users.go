package admin

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dalemusser/mathmastery/internal/app/system/account"
	"github.com/dalemusser/mathmastery/internal/app/system/auth"
	"github.com/dalemusser/mathmastery/internal/app/system/inputval"
	"github.com/dalemusser/mathmastery/internal/app/system/limits"
	"github.com/dalemusser/mathmastery/internal/app/system/timeouts"
	"github.com/dalemusser/mathmastery/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| POST /admin/users/promote · POST /admin/users/demote                         |
| Both take the target account's email in the "email" field.                   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandlePromote(w http.ResponseWriter, r *http.Request) {
	h.setRole(w, r, models.RoleAdmin, MsgUserPromoted)
}

func (h *Handler) HandleDemote(w http.ResponseWriter, r *http.Request) {
	h.setRole(w, r, models.RoleStudent, MsgUserDemoted)
}

func (h *Handler) setRole(w http.ResponseWriter, r *http.Request, role, successFmt string) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxSmallFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "Formulaire invalide.", err)
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	if email == "" {
		h.failure(w, r, TabUsers, MsgEmailRequired)
		return
	}
	if !inputval.IsValidEmail(email) {
		h.failure(w, r, TabUsers, MsgEmailInvalid)
		return
	}

	actor, ok := auth.CurrentUser(r)
	if !ok {
		// RequireAdmin runs first; this only guards direct calls.
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	actorID, _ := primitive.ObjectIDFromHex(actor.ID)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "set role")
	defer cancel()

	u, err := h.Roles.SetRoleByEmail(ctx, actorID, actor.Email, email, role, account.MetaFromRequest(r))
	if err != nil {
		if !account.IsUserError(err) {
			h.Log.Error("set role failed",
				zap.String("email", email),
				zap.String("role", role),
				zap.Error(err))
		}
		h.failure(w, r, TabUsers, account.Localize(err))
		return
	}

	h.success(w, r, TabUsers, fmt.Sprintf(successFmt, u.Email))
}
