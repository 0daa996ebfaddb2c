package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"schoolapi/internal/config"
)

// Mailer sends transactional account emails. Implementations should be safe
// for concurrent use.
type Mailer interface {
	// SendVerification emails the account verification link for the given code.
	SendVerification(ctx context.Context, to, code string) error
	// SendPasswordReset emails the password reset code.
	SendPasswordReset(ctx context.Context, to, code string) error
}

// smtpMailer delivers mail over plain SMTP with AUTH PLAIN.
type smtpMailer struct {
	addr        string
	auth        smtp.Auth
	from        string
	frontendURL string
}

// NewSMTP creates a Mailer backed by the configured SMTP relay.
func NewSMTP(cfg config.SMTPConfig) (Mailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("smtp user is required")
	}
	return &smtpMailer{
		addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth:        smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host),
		from:        cfg.User,
		frontendURL: strings.TrimRight(cfg.FrontendURL, "/"),
	}, nil
}

func (m *smtpMailer) SendVerification(ctx context.Context, to, code string) error {
	link := fmt.Sprintf("%s/verify/%s", m.frontendURL, code)
	body := fmt.Sprintf("Welcome!\r\n\r\nPlease confirm your email address by visiting:\r\n%s\r\n", link)
	return m.send(ctx, to, "Verify your account", body)
}

func (m *smtpMailer) SendPasswordReset(ctx context.Context, to, code string) error {
	body := fmt.Sprintf("A password reset was requested for your account.\r\n\r\nYour reset code is: %s\r\n\r\nIf you did not request this, you can ignore this email.\r\n", code)
	return m.send(ctx, to, "Password reset code", body)
}

func (m *smtpMailer) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s", m.from, to, subject, body)
	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
