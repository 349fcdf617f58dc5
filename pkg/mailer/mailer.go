package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/linescout/linescout-backend/pkg/config"
	"github.com/linescout/linescout-backend/pkg/logger"
)

var errLoggerRequired = errors.New("mailer logger is required")

// Mailer sends plain-text email through the configured SMTP relay. Delivery
// failures are the caller's problem to log and swallow; the mailer never
// retries.
type Mailer struct {
	cfg    config.SMTPConfig
	logger *logger.Logger
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New builds a Mailer. A disabled SMTP config produces a no-op mailer.
func New(cfg config.SMTPConfig, logg *logger.Logger) (*Mailer, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	return &Mailer{cfg: cfg, logger: logg, send: smtp.SendMail}, nil
}

// Enabled reports whether outbound email is configured.
func (m *Mailer) Enabled() bool {
	return m != nil && m.cfg.Enabled()
}

// Send delivers a plain-text message to the recipients.
func (m *Mailer) Send(ctx context.Context, to []string, subject, body string) error {
	if !m.Enabled() {
		return nil
	}
	recipients := make([]string, 0, len(to))
	for _, addr := range to {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			recipients = append(recipients, trimmed)
		}
	}
	if len(recipients) == 0 {
		return nil
	}

	msg := buildMessage(m.cfg.From, recipients, subject, body)

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	if err := m.send(addr, auth, m.cfg.From, recipients, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	if m.logger != nil {
		logCtx := m.logger.WithFields(ctx, map[string]any{
			"recipients": len(recipients),
			"subject":    subject,
		})
		m.logger.Info(logCtx, "email dispatched")
	}
	return nil
}

func buildMessage(from string, to []string, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}
