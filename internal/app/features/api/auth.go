package api

import (
	"errors"
	"net/http"

	"github.com/dalemusser/mathmastery/internal/app/system/account"
	"github.com/dalemusser/mathmastery/internal/app/system/auth"
	"github.com/dalemusser/mathmastery/internal/app/system/inputval"
	"github.com/dalemusser/mathmastery/internal/app/system/timeouts"
	"github.com/dalemusser/mathmastery/internal/domain/models"
	"go.uber.org/zap"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// statusFor maps an account error to the HTTP status returned with it.
func statusFor(err error) int {
	var verrs inputval.Errors
	switch {
	case errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, account.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, account.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, account.ErrEmailNotConfirmed):
		return http.StatusForbidden
	case errors.Is(err, account.ErrRateLimited):
		return http.StatusTooManyRequests
	case account.IsUserError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) accountError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Log.Error("api "+op+" failed", zap.Error(err))
		writeError(w, status, account.MsgGeneric)
		return
	}
	writeError(w, status, account.Localize(err))
}

// issue builds the token response for u.
func (h *Handler) issue(u *models.User) (tokenJSON, error) {
	user := fromUser(u)
	raw, exp, err := h.Tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return tokenJSON{}, err
	}
	return tokenJSON{AccessToken: raw, TokenType: "Bearer", ExpiresAt: exp, User: user}, nil
}

// HandleSignUp creates a student account. A token is returned only when the
// account can sign in right away.
func (h *Handler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var in account.SignUpInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, MsgInvalidJSON)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "api sign up")
	defer cancel()

	u, err := h.Accounts.SignUp(ctx, in, account.MetaFromRequest(r))
	if err != nil {
		h.accountError(w, "sign up", err)
		return
	}

	out := signUpJSON{User: fromUser(u), Message: account.MsgSignedUp}
	if u.IsConfirmed() {
		out.Message = account.MsgSignedUpActive
		tok, err := h.issue(u)
		if err != nil {
			h.Log.Error("api issue token failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, MsgInternalError)
			return
		}
		out.Token = &tok
	}
	writeJSON(w, http.StatusCreated, out)
}

// HandleToken exchanges email and password for a bearer token.
func (h *Handler) HandleToken(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, MsgInvalidJSON)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "api token")
	defer cancel()

	u, err := h.Accounts.SignIn(ctx, in.Email, in.Password, account.MetaFromRequest(r))
	if err != nil {
		h.accountError(w, "token", err)
		return
	}
	tok, err := h.issue(u)
	if err != nil {
		h.Log.Error("api issue token failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, MsgInternalError)
		return
	}
	writeJSON(w, http.StatusOK, tok)
}

// ServeUser returns the caller's account.
func (h *Handler) ServeUser(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, MsgUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, fromSessionUser(u))
}
