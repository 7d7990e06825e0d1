// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like ports, TLS,
// logging level and request body limits. AppConfig is everything specific
// to Math Mastery.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: mathmastery-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// CSRFKey signs form tokens. Derived from SessionKey when blank.
	CSRFKey string

	// AuthLoadTimeout bounds the per-request session user fetch. On expiry
	// the request continues anonymously.
	AuthLoadTimeout time.Duration

	// Database operation deadlines (see system/timeouts)
	DBTimeoutPing   time.Duration
	DBTimeoutShort  time.Duration
	DBTimeoutMedium time.Duration
	DBTimeoutLong   time.Duration

	// Email delivery
	MailProvider             string // "sendgrid" or "log"
	SendGridKey              string
	MailFrom                 string
	MailFromName             string
	RequireEmailConfirmation bool
	ConfirmationExpiry       time.Duration

	// Base URL for email links and the OAuth callback
	BaseURL string // e.g., "https://mathmastery.ma" or "http://localhost:3000"

	// Audit logging destinations: all, db, log, off
	AuditLogAuth  string
	AuditLogAdmin string

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string

	// JSON API
	JWTSecret   string        // HS256 signing secret, 32+ bytes
	JWTTTL      time.Duration // token lifetime
	CORSOrigins []string      // origins allowed to call /api from a browser

	// Admin bootstrap and seed data
	AdminEmail   string // promoted (or created) as admin on startup
	SeedChapters bool   // insert the landing chapters into an empty database

	// Login rate limiting
	LoginIPLimit    int
	LoginEmailLimit int
	LoginWindow     time.Duration
}
