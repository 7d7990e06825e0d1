// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/mathmastery/internal/app/store/audit"
	"github.com/dalemusser/mathmastery/internal/app/system/account"
	"github.com/dalemusser/mathmastery/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations accepted by Config fields.
const (
	All = "all" // MongoDB + zap
	DB  = "db"
	Log = "log"
	Off = "off"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for sign-up, sign-in, sign-out and confirmation events.
	Auth string
	// Admin controls logging for role changes and content CRUD.
	Admin string
}

// Logger writes audit events to MongoDB (via audit.Store) and to zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	}
	if setting == "" {
		setting = All
	}
	if setting == Off {
		return
	}

	if setting == All || setting == Log {
		l.logToZap(event)
	}

	if (setting == All || setting == DB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Authentication Events ---

// AccountEvent records an account.Event. It matches account.Handler so it
// can be passed straight to Events.Subscribe.
func (l *Logger) AccountEvent(ctx context.Context, e account.Event) {
	if l == nil {
		return
	}

	ev := audit.Event{
		Category:  audit.CategoryAuth,
		Success:   true,
		IP:        e.Meta.IP,
		UserAgent: e.Meta.UserAgent,
		Details:   map[string]string{},
	}
	if !e.UserID.IsZero() {
		uid := e.UserID
		ev.UserID = &uid
	}
	if e.Email != "" {
		ev.Details["email"] = e.Email
	}
	if e.Method != "" {
		ev.Details["method"] = e.Method
	}

	switch e.Kind {
	case account.KindSignedUp:
		ev.EventType = audit.EventSignUp
	case account.KindSignedIn:
		ev.EventType = audit.EventLoginSuccess
	case account.KindSignedOut:
		ev.EventType = audit.EventLogout
	case account.KindEmailConfirmed:
		ev.EventType = audit.EventEmailConfirmed
	case account.KindPasswordChanged:
		ev.EventType = audit.EventPasswordChanged
	case account.KindRoleChanged:
		ev.Category = audit.CategoryAdmin
		ev.EventType = audit.EventRoleChanged
		ev.Details["new_role"] = e.Role
		if !e.ActorID.IsZero() {
			aid := e.ActorID
			ev.ActorID = &aid
		}
	case account.KindSignInFailed:
		ev.Success = false
		ev.FailureReason = e.Reason
		switch e.Reason {
		case account.ReasonUserNotFound:
			ev.EventType = audit.EventLoginFailedUserNotFound
		case account.ReasonWrongPassword:
			ev.EventType = audit.EventLoginFailedWrongPassword
		case account.ReasonUnconfirmed:
			ev.EventType = audit.EventLoginFailedUnconfirmed
		case account.ReasonRateLimit:
			ev.EventType = audit.EventLoginFailedRateLimit
			ev.Details["limit_type"] = e.Method
			delete(ev.Details, "method")
		default:
			ev.EventType = "login_failed"
		}
	default:
		return
	}
	if len(ev.Details) == 0 {
		ev.Details = nil
	}
	l.Log(ctx, ev)
}

// --- Admin Events ---

// Content resources.
const (
	ResourceChapter  = "chapter"
	ResourceLesson   = "lesson"
	ResourceExercise = "exercise"
)

// Content actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

var contentEventTypes = map[string]map[string]string{
	ResourceChapter: {
		ActionCreated: audit.EventChapterCreated,
		ActionUpdated: audit.EventChapterUpdated,
		ActionDeleted: audit.EventChapterDeleted,
	},
	ResourceLesson: {
		ActionCreated: audit.EventLessonCreated,
		ActionUpdated: audit.EventLessonUpdated,
		ActionDeleted: audit.EventLessonDeleted,
	},
	ResourceExercise: {
		ActionCreated: audit.EventExerciseCreated,
		ActionUpdated: audit.EventExerciseUpdated,
		ActionDeleted: audit.EventExerciseDeleted,
	},
}

// ContentChanged logs an admin create/update/delete of a chapter, lesson or
// exercise. Details carry the target id and title.
func (l *Logger) ContentChanged(ctx context.Context, r *http.Request, actorID, targetID primitive.ObjectID, resource, action, title string) {
	if l == nil {
		return
	}
	eventType, ok := contentEventTypes[resource][action]
	if !ok {
		l.zapLog.Warn("unknown content audit event", zap.String("resource", resource), zap.String("action", action))
		return
	}
	ev := audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		ActorID:   &actorID,
		Success:   true,
		Details: map[string]string{
			resource + "_id": targetID.Hex(),
			"title":          title,
		},
	}
	if r != nil {
		ev.IP = ratelimit.ClientIP(r)
		ev.UserAgent = r.UserAgent()
	}
	l.Log(ctx, ev)
}
