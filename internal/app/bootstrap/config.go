// internal/app/bootstrap/config.go
package bootstrap

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/mathmastery/internal/app/system/auditlog"
	"github.com/dalemusser/mathmastery/internal/app/system/auth"
	"github.com/dalemusser/mathmastery/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for Math Mastery.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: MATHMASTERY_MONGO_URI, MATHMASTERY_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "math_mastery", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size"},
	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "mathmastery-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "168h", Desc: "Session cookie lifetime"},
	{Name: "csrf_key", Default: "", Desc: "CSRF signing key, 32+ bytes (derived from session_key when blank)"},
	{Name: "auth_load_timeout", Default: "5s", Desc: "Deadline for loading the signed-in user; on expiry the request continues anonymously"},

	// Database deadlines
	{Name: "db_timeout_ping", Default: "2s", Desc: "Deadline for health-check pings"},
	{Name: "db_timeout_short", Default: "5s", Desc: "Deadline for single-document reads"},
	{Name: "db_timeout_medium", Default: "10s", Desc: "Deadline for list queries and single writes"},
	{Name: "db_timeout_long", Default: "30s", Desc: "Deadline for multi-collection writes (cascading deletes, re-indexing)"},

	// Email
	{Name: "mail_provider", Default: "log", Desc: "Mail provider: 'sendgrid' or 'log'"},
	{Name: "sendgrid_api_key", Default: "", Desc: "SendGrid API key"},
	{Name: "mail_from", Default: "noreply@mathmastery.ma", Desc: "From email address"},
	{Name: "mail_from_name", Default: "Math Mastery", Desc: "From display name"},
	{Name: "require_email_confirmation", Default: true, Desc: "Require new accounts to confirm their email before signing in"},
	{Name: "confirmation_expiry", Default: "24h", Desc: "Email confirmation link expiry"},

	{Name: "base_url", Default: "http://localhost:8080", Desc: "Public base URL for email links and OAuth callbacks"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Google OAuth configuration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	// JSON API
	{Name: "jwt_secret", Default: "", Desc: "API token signing secret, 32+ bytes (derived from session_key when blank)"},
	{Name: "jwt_ttl", Default: "24h", Desc: "API token lifetime"},
	{Name: "cors_origins", Default: "", Desc: "Comma-separated origins allowed to call /api from a browser (blank allows none)"},

	// Bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of the admin user (promotes/creates on startup)"},
	{Name: "seed_chapters", Default: false, Desc: "Insert the landing page chapters when the chapters collection is empty"},

	// Login rate limiting
	{Name: "login_ip_limit", Default: 20, Desc: "Failed sign-ins allowed per IP per window"},
	{Name: "login_email_limit", Default: 5, Desc: "Failed sign-ins allowed per email per window"},
	{Name: "login_window", Default: "15m", Desc: "Login rate limit window"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, MATHMASTERY_* for app) and
// command-line flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "MATHMASTERY", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 7*24*time.Hour),
		CSRFKey:          appValues.String("csrf_key"),
		AuthLoadTimeout:  appValues.Duration("auth_load_timeout", auth.DefaultLoadTimeout),

		DBTimeoutPing:   appValues.Duration("db_timeout_ping", timeouts.DefaultPing),
		DBTimeoutShort:  appValues.Duration("db_timeout_short", timeouts.DefaultShort),
		DBTimeoutMedium: appValues.Duration("db_timeout_medium", timeouts.DefaultMedium),
		DBTimeoutLong:   appValues.Duration("db_timeout_long", timeouts.DefaultLong),

		MailProvider:             appValues.String("mail_provider"),
		SendGridKey:              appValues.String("sendgrid_api_key"),
		MailFrom:                 appValues.String("mail_from"),
		MailFromName:             appValues.String("mail_from_name"),
		RequireEmailConfirmation: appValues.Bool("require_email_confirmation"),
		ConfirmationExpiry:       appValues.Duration("confirmation_expiry", 24*time.Hour),

		BaseURL: strings.TrimRight(appValues.String("base_url"), "/"),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		JWTSecret:   appValues.String("jwt_secret"),
		JWTTTL:      appValues.Duration("jwt_ttl", 24*time.Hour),
		CORSOrigins: splitList(appValues.String("cors_origins")),

		AdminEmail:   appValues.String("admin_email"),
		SeedChapters: appValues.Bool("seed_chapters"),

		LoginIPLimit:    appValues.Int("login_ip_limit"),
		LoginEmailLimit: appValues.Int("login_email_limit"),
		LoginWindow:     appValues.Duration("login_window", 15*time.Minute),
	}

	if appCfg.JWTSecret == "" {
		appCfg.JWTSecret = deriveKey(appCfg.SessionKey, "api-token")
	}
	if appCfg.CSRFKey == "" {
		appCfg.CSRFKey = deriveKey(appCfg.SessionKey, "csrf")
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return errors.New("mongo_database is required")
	}
	if len(appCfg.SessionKey) < 32 {
		return fmt.Errorf("session_key must be at least 32 characters, got %d", len(appCfg.SessionKey))
	}
	if coreCfg.Env == "prod" && appCfg.SessionKey == devSessionKey {
		return errors.New("session_key must be changed in production")
	}
	if len(appCfg.JWTSecret) < 32 {
		return fmt.Errorf("jwt_secret must be at least 32 characters, got %d", len(appCfg.JWTSecret))
	}
	if len(appCfg.CSRFKey) < 32 {
		return fmt.Errorf("csrf_key must be at least 32 characters, got %d", len(appCfg.CSRFKey))
	}
	for name, d := range map[string]time.Duration{
		"auth_load_timeout": appCfg.AuthLoadTimeout,
		"db_timeout_ping":   appCfg.DBTimeoutPing,
		"db_timeout_short":  appCfg.DBTimeoutShort,
		"db_timeout_medium": appCfg.DBTimeoutMedium,
		"db_timeout_long":   appCfg.DBTimeoutLong,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	for name, v := range map[string]string{
		"audit_log_auth":  appCfg.AuditLogAuth,
		"audit_log_admin": appCfg.AuditLogAdmin,
	} {
		if !validAuditDestination(v) {
			return fmt.Errorf("%s must be one of all, db, log, off; got %q", name, v)
		}
	}
	if (appCfg.GoogleClientID == "") != (appCfg.GoogleClientSecret == "") {
		return errors.New("google_client_id and google_client_secret must be set together")
	}
	if appCfg.MailProvider == "sendgrid" && appCfg.SendGridKey == "" {
		return errors.New("mail_provider sendgrid requires sendgrid_api_key")
	}
	return nil
}

// configureTimeouts installs the configured database deadlines.
func configureTimeouts(appCfg AppConfig) {
	timeouts.Configure(timeouts.Config{
		Ping:   appCfg.DBTimeoutPing,
		Short:  appCfg.DBTimeoutShort,
		Medium: appCfg.DBTimeoutMedium,
		Long:   appCfg.DBTimeoutLong,
	})
}

func validAuditDestination(v string) bool {
	switch v {
	case auditlog.All, auditlog.DB, auditlog.Log, auditlog.Off:
		return true
	}
	return false
}

// splitList parses a comma-separated config value.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// deriveKey turns the session key into an independent per-purpose key.
func deriveKey(secret, purpose string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(purpose))
	return hex.EncodeToString(mac.Sum(nil))
}
