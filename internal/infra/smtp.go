package infra

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/config"

	"github.com/jordan-wright/email"
	"github.com/rs/zerolog/log"
)

// ErrMailerDisabled is returned when no SMTP host is configured.
var ErrMailerDisabled = errors.New("mailer: SMTP host not configured")

// Mailer sends HTML notification emails through SMTP. Calls go through a
// circuit breaker so a dead relay fails fast instead of stalling workers.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
	cb       *CircuitBreaker
	send     func(e *email.Email, addr string, auth smtp.Auth) error
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		cb:       NewCircuitBreaker(DefaultCBConfig()),
		send:     func(e *email.Email, addr string, auth smtp.Auth) error { return e.Send(addr, auth) },
	}
}

// Breaker exposes the SMTP circuit breaker for health reporting.
func (m *Mailer) Breaker() *CircuitBreaker { return m.cb }

// Send delivers one HTML email and returns the delivery error.
func (m *Mailer) Send(to, subject, html string) error {
	if m.host == "" {
		return ErrMailerDisabled
	}
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.HTML = []byte(html)

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return m.cb.Execute(func() error { return m.send(e, m.addr, auth) })
}

// SendNotificationEmail is the best-effort notification sink: it never
// returns an error, only whether the message went out.
func (m *Mailer) SendNotificationEmail(_ context.Context, to, subject, html string) bool {
	if err := m.Send(to, subject, html); err != nil {
		log.Error().Err(err).Str("to", to).Str("subject", subject).Msg("mailer: notification email failed")
		return false
	}
	return true
}
