// Package email renders and delivers the API's transactional mail.
package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"github.com/granjalink/farm-backend-go/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxAttempts = 3

type EmailService interface {
	SendPasswordReset(ctx context.Context, to, resetLink, expiresAt string) error
	SendVaccinationReminder(ctx context.Context, to string, reminder VaccinationReminder) error
}

// Transport hands a rendered message to a relay.
type Transport interface {
	Send(from string, to []string, msg []byte) error
}

type smtpTransport struct {
	addr string
	auth smtp.Auth
}

func (t smtpTransport) Send(from string, to []string, msg []byte) error {
	return smtp.SendMail(t.addr, t.auth, from, to, msg)
}

func newSMTPTransport(cfg config.SMTPConfig) Transport {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return smtpTransport{addr: cfg.Host + ":" + strconv.Itoa(cfg.Port), auth: auth}
}

type emailServiceImpl struct {
	enabled   bool
	from      mail.Address
	templates *template.Template
	transport Transport
	now       func() time.Time
	backoff   func(attempt int) time.Duration
}

// NewEmailService parses the embedded templates. With no SMTP host configured
// the service renders mail but only logs it.
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		enabled:   cfg.Enabled(),
		from:      mail.Address{Name: cfg.FromName, Address: cfg.FromEmail},
		templates: tmpl,
		transport: newSMTPTransport(cfg),
		now:       time.Now,
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<(attempt-1)) * time.Second
		},
	}, nil
}

func (s *emailServiceImpl) SendPasswordReset(ctx context.Context, to, resetLink, expiresAt string) error {
	return s.deliver(ctx, to, "Restablecer contraseña", "password_reset.html", struct {
		ResetLink string
		ExpiresAt string
	}{resetLink, expiresAt})
}

// VaccinationReminder is the data rendered into a dose reminder.
type VaccinationReminder struct {
	VaccineName  string
	PigLabel     string
	DoseNumber   int
	NextDoseDate string
	DaysLeft     int
}

func (s *emailServiceImpl) SendVaccinationReminder(ctx context.Context, to string, reminder VaccinationReminder) error {
	return s.deliver(ctx, to, "Recordatorio de vacuna: "+reminder.VaccineName, "vaccination_reminder.html", reminder)
}

// deliver tries the relay up to maxAttempts times. Cancelling ctx ends the wait
// between attempts.
func (s *emailServiceImpl) deliver(ctx context.Context, to, subject, tmpl string, data any) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, tmpl, data); err != nil {
		return fmt.Errorf("render %s: %w", tmpl, err)
	}

	if !s.enabled {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	msg := Message{From: s.from, To: to, Subject: subject, HTML: body.String()}
	raw := msg.Bytes(s.now())

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if lastErr = s.transport.Send(s.from.Address, []string{to}, raw); lastErr == nil {
			slog.Info("Email sent", "to", to, "template", tmpl, "attempt", attempt)
			return nil
		}
		slog.Error("Failed to send email", "to", to, "template", tmpl, "attempt", attempt, "error", lastErr)
		if attempt == maxAttempts {
			break
		}
		timer := time.NewTimer(s.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("send %s: %w", tmpl, ctx.Err())
		case <-timer.C:
		}
	}
	return fmt.Errorf("send %s after %d attempts: %w", tmpl, maxAttempts, lastErr)
}
