package testutil

import (
	"context"
	"sync"

	"github.com/dalemusser/mathmastery/internal/app/system/mailer"
)

// MailRecorder is a mailer.Sender that keeps every message instead of
// delivering it.
type MailRecorder struct {
	mu   sync.Mutex
	sent []mailer.Email
}

func NewMailRecorder() *MailRecorder {
	return &MailRecorder{}
}

func (m *MailRecorder) Send(_ context.Context, e mailer.Email) error {
	if e.To == "" {
		return mailer.ErrNoRecipient
	}
	m.mu.Lock()
	m.sent = append(m.sent, e)
	m.mu.Unlock()
	return nil
}

// Sent returns a copy of every message accepted so far.
func (m *MailRecorder) Sent() []mailer.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Email(nil), m.sent...)
}
