package account

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dalemusser/mathmastery/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind names an auth state change.
type Kind string

const (
	KindSignedUp        Kind = "signed_up"
	KindSignedIn        Kind = "signed_in"
	KindSignedOut       Kind = "signed_out"
	KindSignInFailed    Kind = "sign_in_failed"
	KindEmailConfirmed  Kind = "email_confirmed"
	KindRoleChanged     Kind = "role_changed"
	KindPasswordChanged Kind = "password_changed"
)

// Reasons carried by KindSignInFailed events.
const (
	ReasonUserNotFound  = "user_not_found"
	ReasonWrongPassword = "wrong_password"
	ReasonUnconfirmed   = "unconfirmed"
	ReasonRateLimit     = "rate_limit"
)

// RequestMeta is the client information recorded with an event.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// MetaFromRequest extracts RequestMeta from r.
func MetaFromRequest(r *http.Request) RequestMeta {
	return RequestMeta{IP: ratelimit.ClientIP(r), UserAgent: r.UserAgent()}
}

// Event describes one auth state change. UserID is the affected account,
// ActorID the admin who made a role change.
type Event struct {
	Kind    Kind
	UserID  primitive.ObjectID
	ActorID primitive.ObjectID
	Email   string
	Role    string
	Method  string
	Reason  string
	Meta    RequestMeta
	At      time.Time
}

// Handler receives published events. Handlers run synchronously on the
// publishing goroutine and must not block for long.
type Handler func(ctx context.Context, e Event)

// Events is an in-process publish/subscribe hub for auth changes. It is
// safe for concurrent use.
type Events struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscription
}

type subscription struct {
	id int
	fn Handler
}

func NewEvents() *Events {
	return &Events{}
}

// Subscribe registers fn and returns a func that removes it.
func (ev *Events) Subscribe(fn Handler) (unsubscribe func()) {
	ev.mu.Lock()
	id := ev.nextID
	ev.nextID++
	ev.subs = append(ev.subs, subscription{id: id, fn: fn})
	ev.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			ev.mu.Lock()
			defer ev.mu.Unlock()
			for i, s := range ev.subs {
				if s.id == id {
					ev.subs = append(ev.subs[:i:i], ev.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish delivers e to every subscriber in subscription order.
// A nil hub drops the event.
func (ev *Events) Publish(ctx context.Context, e Event) {
	if ev == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	ev.mu.RLock()
	subs := append([]subscription(nil), ev.subs...)
	ev.mu.RUnlock()

	for _, s := range subs {
		s.fn(ctx, e)
	}
}
