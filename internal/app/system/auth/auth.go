package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session keys                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	DefaultSessionName = "mathmastery-session"

	isAuthKey   = "is_authenticated"
	userIDKey   = "user_id"
	flashOKKey  = "_flash_success"
	flashErrKey = "_flash_error"

	// DefaultLoadTimeout bounds the per-request user fetch.
	DefaultLoadTimeout = 5 * time.Second
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session user                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is the signed-in account injected into r.Context().
// It is rebuilt from the database on every request so role changes apply
// immediately.
type SessionUser struct {
	ID        string
	Email     string
	Name      string
	Role      string
	Confirmed bool
}

// IsAdmin reports whether the user holds the admin role.
func (u *SessionUser) IsAdmin() bool {
	return u != nil && strings.EqualFold(u.Role, "admin")
}

// DisplayName returns Name, or Email when no name is known.
func (u *SessionUser) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// UserFetcher loads a fresh SessionUser by id. It returns nil when the user
// no longer exists or cannot be loaded.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	return UserFromContext(r.Context())
}

// UserFromContext is CurrentUser for code that only holds a context.
func UserFromContext(ctx context.Context) (*SessionUser, bool) {
	u, ok := ctx.Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithUser returns r carrying u. Used by LoadSessionUser and by the API
// bearer-token middleware.
func WithUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// WithTestUser injects u into the request context, as LoadSessionUser would.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return WithUser(r, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session manager                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager owns the cookie store and the auth middleware.
type SessionManager struct {
	store       *sessions.CookieStore
	name        string
	fetcher     UserFetcher
	loadTimeout time.Duration
	logger      *zap.Logger
}

// NewSessionManager builds the cookie store.
//
// With secure=true cookies are Secure + SameSite=Lax; over plain http in
// development use secure=false so browsers accept them.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, errors.New("session key is empty; provide 32+ random chars")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = DefaultSessionName
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{
		store:       store,
		name:        name,
		loadTimeout: DefaultLoadTimeout,
		logger:      logger,
	}, nil
}

// SetUserFetcher installs the loader used by LoadSessionUser. Without one,
// no request is ever treated as signed in.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) { sm.fetcher = f }

// SetLoadTimeout overrides DefaultLoadTimeout.
func (sm *SessionManager) SetLoadTimeout(d time.Duration) {
	if d > 0 {
		sm.loadTimeout = d
	}
}

// Session returns the named session (a new one if the cookie is missing or
// invalid).
func (sm *SessionManager) Session(r *http.Request) *sessions.Session {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		// Bad or rotated key: start over with a fresh session.
		sess, _ = sm.store.New(r, sm.name)
	}
	return sess
}

// SignIn marks the session as belonging to userID.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, userID string) error {
	sess := sm.Session(r)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = userID
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// SignOut clears the auth values and keeps the session for flash messages.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess := sm.Session(r)
	delete(sess.Values, isAuthKey)
	delete(sess.Values, userIDKey)
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// SessionUserID returns the user id stored in the session, if any.
func (sm *SessionManager) SessionUserID(r *http.Request) (string, bool) {
	sess := sm.Session(r)
	if isAuth, _ := sess.Values[isAuthKey].(bool); !isAuth {
		return "", false
	}
	id, _ := sess.Values[userIDKey].(string)
	return id, id != ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| Flash messages                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Kind    string
	Message string
}

// AddFlash queues a notice. Errors saving the session are logged.
func (sm *SessionManager) AddFlash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	sess := sm.Session(r)
	key := flashOKKey
	if kind == FlashError {
		key = flashErrKey
	}
	sess.AddFlash(msg, key)
	if err := sess.Save(r, w); err != nil {
		sm.logger.Warn("save flash failed", zap.Error(err))
	}
}

// Flashes pops all queued notices, errors first.
func (sm *SessionManager) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	sess := sm.Session(r)
	var out []Flash
	for _, f := range []struct{ key, kind string }{{flashErrKey, FlashError}, {flashOKKey, FlashSuccess}} {
		for _, v := range sess.Flashes(f.key) {
			if s, ok := v.(string); ok {
				out = append(out, Flash{Kind: f.kind, Message: s})
			}
		}
	}
	if len(out) > 0 {
		if err := sess.Save(r, w); err != nil {
			sm.logger.Warn("clear flashes failed", zap.Error(err))
		}
	}
	return out
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// LoadSessionUser injects the signed-in user into the request context.
//
// The user is fetched under loadTimeout. If the fetch does not finish in
// time the request continues anonymously and a warning is logged.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sm.fetcher == nil {
			next.ServeHTTP(w, r)
			return
		}
		id, ok := sm.SessionUserID(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), sm.loadTimeout)
		u := sm.fetcher.FetchUser(ctx, id)
		timedOut := ctx.Err() == context.DeadlineExceeded
		cancel()

		if timedOut {
			sm.logger.Warn("session user load timed out; continuing anonymously",
				zap.String("user_id", id),
				zap.Duration("timeout", sm.loadTimeout))
			next.ServeHTTP(w, r)
			return
		}
		if u != nil {
			r = WithUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

// Gate runs next only when Decide(user, adminOnly) is Authorized.
// Children are never reached otherwise:
//   - Unauthenticated: HTMX HX-Redirect / HTML 303 to /login?return=... / API 401
//   - Unauthorized:    HTMX HX-Redirect / HTML 303 to / / API 403
func (sm *SessionManager) Gate(adminOnly bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, _ := CurrentUser(r)
			switch Decide(u, adminOnly) {
			case Unauthenticated:
				denyUnauthenticated(w, r)
			case Unauthorized:
				sm.logger.Info("admin required",
					zap.String("user_id", u.ID),
					zap.String("path", r.URL.Path))
				denyUnauthorized(w, r)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// RequireSignedIn is Gate(false).
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return sm.Gate(false)(next)
}

// RequireAdmin is Gate(true).
func (sm *SessionManager) RequireAdmin(next http.Handler) http.Handler {
	return sm.Gate(true)(next)
}

// RequireRole ensures the signed-in user holds one of the allowed roles.
// Signed-in users without the role are sent to the home page (HTML/HTMX)
// or get 403 (API).
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				denyUnauthenticated(w, r)
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				sm.logger.Info("role required",
					zap.String("user_id", u.ID),
					zap.String("role", u.Role),
					zap.String("path", r.URL.Path))
				denyUnauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func denyUnauthenticated(w http.ResponseWriter, r *http.Request) {
	dest := "/login?return=" + url.QueryEscape(currentURI(r))

	// HTMX: full-page client redirect (no partial swap)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return
	}
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

func denyUnauthorized(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Error(w, "forbidden", http.StatusForbidden)
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func currentURI(r *http.Request) string {
	u := *r.URL
	return u.RequestURI()
}
