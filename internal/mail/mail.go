// Package mail delivers account verification and password reset emails over
// SMTP.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/mail"
	"net/url"

	"github.com/dajohi/goemail"

	"speaksfer/internal/middleware"
	"speaksfer/internal/observability"
)

// Mailer sends the account emails the API depends on.
type Mailer interface {
	IsEnabled() bool
	SendVerification(ctx context.Context, to, username, link string) error
	SendPasswordReset(ctx context.Context, to, username, link string) error
}

// Config holds SMTP settings.
type Config struct {
	Host       string
	User       string
	Password   string
	From       string
	SkipVerify bool
}

// client implements Mailer on top of goemail.
type client struct {
	smtp        *goemail.SMTP
	mailName    string
	mailAddress string
	disabled    bool

	// deliver is swapped in tests.
	deliver func(*goemail.Message) error
}

// NewClient returns a Mailer. Mail is disabled when any SMTP credential is
// missing; a disabled client logs instead of sending.
func NewClient(cfg Config) (Mailer, error) {
	if cfg.Host == "" || cfg.User == "" || cfg.Password == "" {
		middleware.Logger.Info("mail disabled: SMTP credentials not configured")
		return &client{disabled: true}, nil
	}

	u := &url.URL{
		Scheme: "smtps",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   cfg.Host,
	}

	a, err := mail.ParseAddress(cfg.From)
	if err != nil {
		return nil, fmt.Errorf("parse MAIL_FROM: %w", err)
	}

	smtp, err := goemail.NewSMTP(u.String(), &tls.Config{
		InsecureSkipVerify: cfg.SkipVerify,
	})
	if err != nil {
		return nil, fmt.Errorf("smtp setup: %w", err)
	}

	middleware.Logger.Info("mail enabled", "host", cfg.Host, "from", a.String())
	c := &client{
		smtp:        smtp,
		mailName:    a.Name,
		mailAddress: a.Address,
	}
	c.deliver = c.smtp.Send
	return c, nil
}

func (c *client) IsEnabled() bool {
	return !c.disabled
}

func (c *client) SendVerification(ctx context.Context, to, username, link string) error {
	return c.sendTemplate(ctx, verifyEmail, to, username, link)
}

func (c *client) SendPasswordReset(ctx context.Context, to, username, link string) error {
	return c.sendTemplate(ctx, resetPassword, to, username, link)
}

func (c *client) sendTemplate(ctx context.Context, tpl template, to, username, link string) error {
	if c.disabled {
		middleware.Logger.InfoContext(ctx, "mail disabled, skipping send",
			"template", tpl.name, "to", to, "link", link)
		return nil
	}

	body, err := tpl.render(username, link)
	if err != nil {
		observability.MailsSent.WithLabelValues(tpl.name, observability.ResultError).Inc()
		return err
	}

	msg := goemail.NewMessage(c.mailAddress, tpl.subject, body)
	msg.SetName(c.mailName)
	msg.AddTo(to)

	err = c.deliver(msg)
	observability.MailsSent.WithLabelValues(tpl.name, observability.ResultOf(err)).Inc()
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "mail delivery failed", "template", tpl.name, "error", err)
		return fmt.Errorf("send %s mail: %w", tpl.name, err)
	}
	return nil
}
