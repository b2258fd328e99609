package worker

// email_worker.go
// Delivers stock alert emails queued on QueueEmail. Each job is tried up to
// maxEmailAttempts times with exponential backoff, then dead-lettered.

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const maxEmailAttempts = 3

// retryBaseDelay is the first backoff step; tests shorten it.
var retryBaseDelay = time.Second

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// MailSender is the SMTP side of the email worker (infra.Mailer in production).
type MailSender interface {
	Send(to, subject, html string) error
}

// EmailWorker processes email jobs from QueueEmail.
type EmailWorker struct {
	mailer MailSender
	rdb    redis.Cmdable
}

func NewEmailWorker(mailer MailSender, rdb redis.Cmdable) *EmailWorker {
	return &EmailWorker{mailer: mailer, rdb: rdb}
}

func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if payload.To == "" {
		log.Warn().Msg("email_worker: empty recipient, skipping")
		return
	}

	attempts := 0
	err := withRetry(ctx, maxEmailAttempts, func(attempt int) error {
		attempts = attempt + 1
		err := w.mailer.Send(payload.To, payload.Subject, payload.HTML)
		if errors.Is(err, infra.ErrMailerDisabled) {
			return permanent{err}
		}
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempts).Str("to", payload.To).Msg("email_worker: send failed")
		}
		return err
	})
	if err == nil {
		log.Info().Str("to", payload.To).Str("subject", payload.Subject).Msg("email_worker: sent")
		return
	}

	var p permanent
	if errors.As(err, &p) {
		log.Warn().Err(p.err).Str("to", payload.To).Msg("email_worker: dropped")
		return
	}
	SendToDLQ(ctx, w.rdb, QueueEmail, JobEmail, raw, err.Error(), attempts)
}

// permanent marks an error that retrying cannot fix.
type permanent struct{ err error }

func (p permanent) Error() string { return p.err.Error() }

// withRetry calls fn up to maxAttempts times with exponential backoff
// (immediate, base, 2*base, ...). A permanent error stops it early.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := retryBaseDelay * time.Duration(1<<uint(i-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		err := fn(i)
		if err == nil {
			return nil
		}
		lastErr = err
		var p permanent
		if errors.As(err, &p) {
			return err
		}
	}
	return lastErr
}

// QueuedMailer is the notification sink used when Redis is available: it
// enqueues one email job per recipient and falls back to sending directly
// when the enqueue fails.
type QueuedMailer struct {
	dispatcher *Dispatcher
	fallback   interface {
		SendNotificationEmail(ctx context.Context, to, subject, html string) bool
	}
}

func NewQueuedMailer(d *Dispatcher, fallback *infra.Mailer) *QueuedMailer {
	q := &QueuedMailer{dispatcher: d}
	if fallback != nil {
		q.fallback = fallback
	}
	return q
}

func (q *QueuedMailer) SendNotificationEmail(ctx context.Context, to, subject, html string) bool {
	err := q.dispatcher.EnqueueEmail(ctx, EmailJobPayload{To: to, Subject: subject, HTML: html})
	if err == nil {
		return true
	}
	log.Error().Err(err).Str("to", to).Msg("email_worker: enqueue failed")
	if q.fallback == nil {
		return false
	}
	return q.fallback.SendNotificationEmail(ctx, to, subject, html)
}
