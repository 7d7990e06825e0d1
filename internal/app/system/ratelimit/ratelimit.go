// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter counts hits per key in fixed windows.
// It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int           // max requests per window
	duration time.Duration // window duration
	cleanup  time.Duration // how often to clean old entries
	stop     chan struct{}
	once     sync.Once
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a new rate limiter.
// limit: maximum requests allowed per duration
// duration: the time window for counting requests
func New(limit int, duration time.Duration) *Limiter {
	l := &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		cleanup:  duration * 2, // cleanup entries older than 2x duration
		stop:     make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Exceeded reports whether key has used up its window.
func (l *Limiter) Exceeded(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, exists := l.windows[key]
	if !exists || time.Now().After(w.expiresAt) {
		return false
	}
	return w.count >= l.limit
}

// Record counts one hit for key, opening a new window when none is active.
func (l *Limiter) Record(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, exists := l.windows[key]
	if !exists || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return
	}
	w.count++
}

// Reset clears the rate limit for a specific key.
// Useful after successful authentication to reward good behavior.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// cleanupLoop periodically removes expired entries to prevent memory leaks.
func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			now := time.Now()
			for key, w := range l.windows {
				if now.After(w.expiresAt) {
					delete(l.windows, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Stop ends the cleanup goroutine. The limiter keeps working afterwards,
// it just no longer prunes expired windows.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

// ClientIP returns the host part of r.RemoteAddr. Forwarding headers are
// not consulted here; chi's RealIP middleware has already applied them to
// RemoteAddr for requests that passed through the trusted proxy.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// Limit types reported by LoginLimiter.Check.
const (
	LimitIP    = "ip"
	LimitEmail = "email"
)

// LoginLimiter limits failed sign-ins. It tracks both IP-based and
// email-based failures to prevent:
// - Distributed attacks from multiple IPs
// - Targeted attacks on specific accounts
type LoginLimiter struct {
	ipLimiter    *Limiter
	emailLimiter *Limiter
}

// NewLoginLimiterWithConfig creates a login limiter with custom limits.
func NewLoginLimiterWithConfig(ipLimit int, ipDuration time.Duration, emailLimit int, emailDuration time.Duration) *LoginLimiter {
	return &LoginLimiter{
		ipLimiter:    New(ipLimit, ipDuration),
		emailLimiter: New(emailLimit, emailDuration),
	}
}

// Check reports whether another sign-in attempt is allowed. It does not
// count the attempt; call Fail when the attempt is rejected.
// It returns (allowed, limitType); limitType names the limit that blocked.
func (ll *LoginLimiter) Check(ip, email string) (bool, string) {
	if ip != "" && ll.ipLimiter.Exceeded(ip) {
		return false, LimitIP
	}
	if email != "" && ll.emailLimiter.Exceeded(emailKey(email)) {
		return false, LimitEmail
	}
	return true, ""
}

// Fail records one failed sign-in against both the IP and the email.
func (ll *LoginLimiter) Fail(ip, email string) {
	if ip != "" {
		ll.ipLimiter.Record(ip)
	}
	if email != "" {
		ll.emailLimiter.Record(emailKey(email))
	}
}

// ResetEmail clears the rate limit for a specific email after successful login.
func (ll *LoginLimiter) ResetEmail(email string) {
	if email != "" {
		ll.emailLimiter.Reset(emailKey(email))
	}
}

// Stop ends both cleanup goroutines.
func (ll *LoginLimiter) Stop() {
	ll.ipLimiter.Stop()
	ll.emailLimiter.Stop()
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
