//go:build integration

package worker

// Runs the queue against a real Redis via testcontainers.
// Run with: go test -tags integration ./internal/worker/... -v

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestPool_DeliversStockChecksAndDeadLettersEmails(t *testing.T) {
	rdb := startRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	processor := &fakeProcessor{}
	sender := &fakeSender{failures: 100}
	StartWorkerPool(ctx, rdb, Handlers{
		JobEmail:      NewEmailWorker(sender, rdb).Process,
		JobStockCheck: NewStockCheckWorker(processor).Process,
	}, 2)

	d := NewDispatcher(rdb)
	variant := uuid.New()
	NewStockCheckPublisher(d, processor).VariantsChanged(ctx, []uuid.UUID{variant})
	require.NoError(t, d.EnqueueEmail(ctx, EmailJobPayload{To: "ops@example.com", Subject: "s", HTML: "h"}))

	assert.Eventually(t, func() bool {
		processor.mu.Lock()
		defer processor.mu.Unlock()
		return len(processor.seen) == 1 && processor.seen[0] == variant
	}, 10*time.Second, 50*time.Millisecond)

	assert.Eventually(t, func() bool {
		n, err := DLQLength(ctx, rdb, QueueEmail)
		return err == nil && n == 1
	}, 10*time.Second, 50*time.Millisecond)

	raw, err := rdb.LIndex(ctx, DLQPrefix+QueueEmail, 0).Result()
	require.NoError(t, err)
	var entry DLQEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &entry))
	assert.Equal(t, JobEmail, entry.JobType)
	assert.Equal(t, maxEmailAttempts, entry.Attempts)
}

func TestQueuedMailer_Enqueues(t *testing.T) {
	rdb := startRedis(t)
	ctx := context.Background()

	ok := NewQueuedMailer(NewDispatcher(rdb), nil).SendNotificationEmail(ctx, "a@example.com", "subj", "<p/>")
	require.True(t, ok)

	n, err := rdb.LLen(ctx, QueueEmail).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
