// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"strings"

	adminfeature "github.com/dalemusser/mathmastery/internal/app/features/admin"
	apifeature "github.com/dalemusser/mathmastery/internal/app/features/api"
	auditlogfeature "github.com/dalemusser/mathmastery/internal/app/features/auditlog"
	authgooglefeature "github.com/dalemusser/mathmastery/internal/app/features/authgoogle"
	dashboardfeature "github.com/dalemusser/mathmastery/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/mathmastery/internal/app/features/errors"
	healthfeature "github.com/dalemusser/mathmastery/internal/app/features/health"
	homefeature "github.com/dalemusser/mathmastery/internal/app/features/home"
	loginfeature "github.com/dalemusser/mathmastery/internal/app/features/login"
	logoutfeature "github.com/dalemusser/mathmastery/internal/app/features/logout"
	profilefeature "github.com/dalemusser/mathmastery/internal/app/features/profile"
	"github.com/dalemusser/mathmastery/internal/app/store/audit"
	"github.com/dalemusser/mathmastery/internal/app/store/oauthstate"
	"github.com/dalemusser/mathmastery/internal/app/system/account"
	"github.com/dalemusser/mathmastery/internal/app/system/auditlog"
	"github.com/dalemusser/mathmastery/internal/app/system/auth"
	"github.com/dalemusser/mathmastery/internal/app/system/mailer"
	"github.com/dalemusser/mathmastery/internal/app/system/metrics"
	"github.com/dalemusser/mathmastery/internal/app/system/ratelimit"
	"github.com/dalemusser/mathmastery/internal/app/system/tokens"
	"github.com/dalemusser/mathmastery/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// Math Mastery initializes the template engine, builds the account service
// and its event subscribers, applies session and CSRF middleware, and mounts
// the landing, auth, dashboard, admin and API routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase
	secure := coreCfg.Env == "prod"

	sessionMgr, err := newSessionManager(appCfg, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	issuer, err := tokens.NewIssuer(appCfg.JWTSecret, "mathmastery", appCfg.JWTTTL)
	if err != nil {
		logger.Error("token issuer init failed", zap.Error(err))
		return nil, err
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	m := metrics.New()
	auditStore := audit.New(db)
	auditLog := auditlog.New(auditStore, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	events := account.NewEvents()
	events.Subscribe(auditLog.AccountEvent)
	events.Subscribe(m.ObserveAccount)

	mail := mailer.New(mailer.Config{
		Provider:  appCfg.MailProvider,
		APIKey:    appCfg.SendGridKey,
		FromName:  appCfg.MailFromName,
		FromEmail: appCfg.MailFrom,
	}, logger)

	accounts := account.NewService(db, mail, events, account.Config{
		RequireEmailConfirmation: appCfg.RequireEmailConfirmation,
		BaseURL:                  appCfg.BaseURL,
		SiteName:                 models.DefaultSiteName,
		ConfirmationExpiry:       appCfg.ConfirmationExpiry,
	}, logger)
	accounts.SetLoginLimiter(ratelimit.NewLoginLimiterWithConfig(
		appCfg.LoginIPLimit, appCfg.LoginWindow,
		appCfg.LoginEmailLimit, appCfg.LoginWindow,
	))

	// LoadSessionUser reloads the user on every request so role changes
	// apply immediately.
	sessionMgr.SetUserFetcher(accounts)

	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(m.Middleware)
	r.NotFound(errorsHandler.NotFound)

	// Machine endpoints: no session, no CSRF.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", m.Handler())

	apiHandler := apifeature.NewHandler(db, accounts, issuer, logger)
	r.Mount("/api", apifeature.Routes(apiHandler, appCfg.CORSOrigins))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	googleHandler := authgooglefeature.NewHandler(accounts, sessionMgr, oauthstate.New(db),
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)

	// HTML pages: sessions and CSRF-protected forms.
	r.Group(func(web chi.Router) {
		web.Use(csrfMiddleware(appCfg.CSRFKey, secure, appCfg.SessionDomain, logger))
		web.Use(sessionMgr.LoadSessionUser)

		homeHandler := homefeature.NewHandler(sessionMgr, logger)
		homefeature.Routes(web, homeHandler)

		loginHandler := loginfeature.NewHandler(accounts, sessionMgr, errLog,
			googleHandler.IsConfigured(), appCfg.RequireEmailConfirmation, logger)
		web.Mount("/login", loginfeature.Routes(loginHandler))
		web.Mount("/signup", loginfeature.SignupRoutes(loginHandler))
		loginfeature.ConfirmRoutes(web, loginHandler)

		logoutHandler := logoutfeature.NewHandler(sessionMgr, accounts, logger)
		web.Mount("/logout", logoutfeature.Routes(logoutHandler))

		web.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

		web.Get("/forbidden", errorsHandler.Forbidden)
		web.Get("/unauthorized", errorsHandler.Unauthorized)

		dashboardHandler := dashboardfeature.NewHandler(db, sessionMgr, logger)
		web.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

		profileHandler := profilefeature.NewHandler(accounts, auditStore, sessionMgr, errLog, logger)
		web.Mount("/profile", profilefeature.Routes(profileHandler, sessionMgr))

		adminHandler := adminfeature.NewHandler(db, accounts, sessionMgr, auditLog, m, errLog, logger)
		web.Mount("/admin", adminfeature.Routes(adminHandler, sessionMgr))

		auditHandler := auditlogfeature.NewHandler(db, sessionMgr, errLog, logger)
		web.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))
	})

	return r, nil
}

// newSessionManager builds the cookie session manager with the configured
// user-load deadline.
func newSessionManager(appCfg AppConfig, secure bool, logger *zap.Logger) (*auth.SessionManager, error) {
	sm, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		return nil, err
	}
	sm.SetLoadTimeout(appCfg.AuthLoadTimeout)
	return sm, nil
}

// csrfMiddleware protects every unsafe HTML form request. Over plain HTTP
// (development) requests are marked as such so the origin check accepts
// them.
func csrfMiddleware(key string, secure bool, domain string, logger *zap.Logger) func(http.Handler) http.Handler {
	opts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("csrf check failed",
				zap.String("path", r.URL.Path),
				zap.Error(csrf.FailureReason(r)))
			errorsfeature.RenderForbidden(w, r, "Session expirée. Veuillez recharger la page.", "/")
		})),
	}
	if domain != "" {
		opts = append(opts, csrf.Domain(strings.TrimPrefix(domain, ".")))
	}
	protect := csrf.Protect([]byte(key[:32]), opts...)

	return func(next http.Handler) http.Handler {
		h := protect(next)
		if secure {
			return h
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}
