// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/mathmastery/internal/app/store/oauthstate"
	"github.com/dalemusser/mathmastery/internal/app/system/account"
	"github.com/dalemusser/mathmastery/internal/app/system/auth"
	"github.com/dalemusser/mathmastery/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultUserInfoURL is Google's OAuth2 userinfo endpoint.
const DefaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// StateTTL bounds how long a user may stay on Google's consent screen.
const StateTTL = 10 * time.Minute

// Notices shown on the login page when the Google flow fails.
const (
	MsgNotConfigured = "La connexion avec Google n'est pas disponible."
	MsgDenied        = "La connexion avec Google a été annulée."
	MsgInvalidState  = "La session de connexion a expiré. Veuillez réessayer."
	MsgFailed        = "La connexion avec Google a échoué. Veuillez réessayer."
)

// Handler handles Google OAuth authentication.
type Handler struct {
	Accounts   *account.Service
	SessionMgr *auth.SessionManager
	StateStore *oauthstate.Store
	Log        *zap.Logger

	// OAuth configuration
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "https://mathmastery.ma/auth/google/callback"

	// Endpoint and UserInfoURL default to Google's; tests point them at a
	// local server.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(
	accounts *account.Service,
	sessionMgr *auth.SessionManager,
	stateStore *oauthstate.Store,
	clientID, clientSecret, baseURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Accounts:     accounts,
		SessionMgr:   sessionMgr,
		StateStore:   stateStore,
		Log:          logger,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
		Endpoint:     google.Endpoint,
		UserInfoURL:  DefaultUserInfoURL,
	}
}

// oauth2Config returns the Google OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: h.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google                                                             |
| Initiates the Google OAuth flow by redirecting to Google's consent screen.   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		h.failLogin(w, r, MsgNotConfigured)
		return
	}

	state := generateState()
	returnURL := query.Get(r, "return")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.StateStore.Save(ctx, state, returnURL, time.Now().UTC().Add(StateTTL)); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		h.failLogin(w, r, MsgFailed)
		return
	}

	url := h.oauth2Config().AuthCodeURL(state)
	h.Log.Debug("initiating Google OAuth flow", zap.String("return_url", returnURL))
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/callback                                                    |
| Exchanges the code, fetches the Google identity and signs the user in,       |
| creating a student account on first use.                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := query.Get(r, "error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", query.Get(r, "error_description")))
		h.failLogin(w, r, MsgDenied)
		return
	}

	state := query.Get(r, "state")
	if state == "" {
		h.Log.Warn("missing OAuth state parameter")
		h.failLogin(w, r, MsgInvalidState)
		return
	}

	stateCtx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	returnURL, valid, err := h.StateStore.Validate(stateCtx, state)
	if err != nil {
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		h.failLogin(w, r, MsgFailed)
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired OAuth state")
		h.failLogin(w, r, MsgInvalidState)
		return
	}

	code := query.Get(r, "code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		h.failLogin(w, r, MsgFailed)
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		h.failLogin(w, r, MsgFailed)
		return
	}

	identity, err := h.fetchIdentity(ctx, token)
	if err != nil {
		h.Log.Error("failed to fetch Google user info", zap.Error(err))
		h.failLogin(w, r, MsgFailed)
		return
	}

	signInCtx, cancelSignIn := context.WithTimeout(ctx, timeouts.Medium())
	defer cancelSignIn()

	u, err := h.Accounts.GoogleSignIn(signInCtx, identity, account.MetaFromRequest(r))
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			h.Log.Info("Google OAuth: unverified identity", zap.String("email", identity.Email))
		} else {
			h.Log.Error("Google sign in failed", zap.String("email", identity.Email), zap.Error(err))
		}
		h.failLogin(w, r, MsgFailed)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u.ID.Hex()); err != nil {
		h.Log.Error("save session failed", zap.String("user_id", u.ID.Hex()), zap.Error(err))
		h.failLogin(w, r, MsgFailed)
		return
	}
	h.SessionMgr.AddFlash(w, r, auth.FlashSuccess, account.MsgSignedIn)

	dest := urlutil.SafeReturn(returnURL, "", "/dashboard")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *Handler) failLogin(w http.ResponseWriter, r *http.Request, msg string) {
	h.SessionMgr.AddFlash(w, r, auth.FlashError, msg)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Google identity                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

// fetchIdentity retrieves user information from the userinfo endpoint.
func (h *Handler) fetchIdentity(ctx context.Context, token *oauth2.Token) (account.GoogleIdentity, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get(h.UserInfoURL)
	if err != nil {
		return account.GoogleIdentity{}, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return account.GoogleIdentity{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return account.GoogleIdentity{}, fmt.Errorf("decode user info: %w", err)
	}
	return account.GoogleIdentity{
		Subject:       info.ID,
		Email:         info.Email,
		EmailVerified: info.EmailVerified,
		GivenName:     info.GivenName,
		FamilyName:    info.FamilyName,
	}, nil
}

// generateState returns a random URL-safe OAuth state token.
func generateState() string {
	return base64.RawURLEncoding.EncodeToString(securecookie.GenerateRandomKey(32))
}
