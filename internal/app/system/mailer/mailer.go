// internal/app/system/mailer/mailer.go
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Email is a single outgoing message.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender delivers email.
type Sender interface {
	Send(ctx context.Context, e Email) error
}

var ErrNoRecipient = errors.New("mailer: no recipient")

// Config selects and configures the Sender built by New.
type Config struct {
	Provider  string // "sendgrid" or "log"
	APIKey    string
	FromName  string
	FromEmail string
}

// New returns a SendGrid sender when a key is configured, otherwise a sender
// that only logs.
func New(cfg Config, log *zap.Logger) Sender {
	if cfg.Provider == "sendgrid" && cfg.APIKey != "" {
		return NewSendGrid(cfg.APIKey, cfg.FromName, cfg.FromEmail, log)
	}
	return NewLogSender(log)
}

var (
	sgHost     = "https://api.sendgrid.com"
	sgEndpoint = "/v3/mail/send"
)

// SendGrid sends through the SendGrid v3 API.
type SendGrid struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
	log        *zap.Logger
}

func NewSendGrid(key, fromName, fromEmail string, log *zap.Logger) *SendGrid {
	if log == nil {
		log = zap.NewNop()
	}
	return &SendGrid{
		key:        key,
		from:       sgmail.NewEmail(fromName, fromEmail),
		subjPrefix: "[" + fromName + "] ",
		log:        log,
	}
}

func (s *SendGrid) prepare(e Email) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = s.subjPrefix + e.Subject
	p.AddTos(sgmail.NewEmail("", e.To))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", e.TextBody))
	if e.HTMLBody != "" {
		m.AddContent(sgmail.NewContent("text/html", e.HTMLBody))
	}
	return m
}

func (s *SendGrid) Send(ctx context.Context, e Email) error {
	if e.To == "" {
		return ErrNoRecipient
	}
	req := sendgrid.GetRequest(s.key, sgEndpoint, sgHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(e))

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		s.log.Error("sendgrid rejected email",
			zap.Int("status", res.StatusCode),
			zap.String("body", res.Body))
		return fmt.Errorf("sendgrid: status %d", res.StatusCode)
	}
	return nil
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, e Email) error {
	if e.To == "" {
		return ErrNoRecipient
	}
	s.log.Info("email (not sent)",
		zap.String("to", e.To),
		zap.String("subject", e.Subject),
		zap.String("body", e.TextBody))
	return nil
}
