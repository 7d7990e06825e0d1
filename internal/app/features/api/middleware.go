package api

import (
	"net/http"

	"github.com/dalemusser/mathmastery/internal/app/system/auth"
	"github.com/dalemusser/mathmastery/internal/app/system/timeouts"
	"github.com/dalemusser/mathmastery/internal/app/system/tokens"
)

// RequireBearer authenticates the request from its Authorization header.
// The user is reloaded on every call so deleted accounts and role changes
// take effect before the token expires.
func (h *Handler) RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := tokens.FromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, MsgUnauthorized)
			return
		}
		claims, err := h.Tokens.Verify(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, MsgInvalidToken)
			return
		}

		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "api load user")
		u := h.Accounts.FetchUser(ctx, claims.Subject)
		cancel()
		if u == nil {
			writeError(w, http.StatusUnauthorized, MsgInvalidToken)
			return
		}
		next.ServeHTTP(w, auth.WithUser(r, u))
	})
}
