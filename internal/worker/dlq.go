package worker

// dlq.go: jobs that exhausted their retries, had no handler, or could not be
// decoded. One capped Redis list per source queue, dlq:{queue}, newest first.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	DLQPrefix = "dlq:"
	// dlqCap bounds each list; older entries fall off the tail.
	dlqCap = 1000
)

type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	// Raw holds the undecodable message when the envelope itself was bad.
	Raw      string    `json:"raw,omitempty"`
	Reason   string    `json:"reason"`
	Attempts int       `json:"attempts"`
	FailedAt time.Time `json:"failed_at"`
}

// SendToDLQ records a dead job. It never fails the caller: without a client,
// or when Redis rejects the write, the entry is only logged.
func SendToDLQ(ctx context.Context, rdb redis.Cmdable, queue, jobType string, payload json.RawMessage, reason string, attempts int) {
	pushDLQ(ctx, rdb, DLQEntry{
		OriginalQueue: queue,
		JobType:       jobType,
		Payload:       payload,
		Reason:        reason,
		Attempts:      attempts,
	})
}

// sendRawToDLQ keeps a message whose envelope could not be decoded.
func sendRawToDLQ(ctx context.Context, rdb redis.Cmdable, queue, raw, reason string) {
	pushDLQ(ctx, rdb, DLQEntry{OriginalQueue: queue, Raw: raw, Reason: reason})
}

func pushDLQ(ctx context.Context, rdb redis.Cmdable, e DLQEntry) {
	e.FailedAt = time.Now().UTC()
	ev := log.Warn().
		Str("queue", e.OriginalQueue).
		Str("job_type", e.JobType).
		Str("reason", e.Reason).
		Int("attempts", e.Attempts)
	if rdb == nil {
		ev.Msg("dlq: no redis client, job dropped")
		return
	}

	data, err := json.Marshal(e)
	if err != nil {
		log.Error().Err(err).Str("queue", e.OriginalQueue).Msg("dlq: marshal entry")
		return
	}
	key := DLQPrefix + e.OriginalQueue
	_, err = rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, key, data)
		p.LTrim(ctx, key, 0, dlqCap-1)
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("dlq_key", key).Msg("dlq: push failed")
		return
	}
	ev.Msg("dlq: job dead-lettered")
}

// DLQLength reports how many dead jobs queue has accumulated.
func DLQLength(ctx context.Context, rdb redis.Cmdable, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}
