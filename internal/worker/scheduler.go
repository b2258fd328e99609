package worker

// scheduler.go
// Periodic background tasks. Each task runs in its own goroutine on its own
// ticker and stops when ctx is cancelled. Tasks must tolerate concurrent
// sales and adjustments; a failing tick is logged and the next one runs.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Task is one periodic job.
type Task struct {
	Name     string
	Interval time.Duration
	// RunAtStart runs the task once immediately before the first tick.
	RunAtStart bool
	Run        func(ctx context.Context) error
}

// StartScheduler launches every task with a positive interval.
func StartScheduler(ctx context.Context, tasks ...Task) {
	for _, t := range tasks {
		if t.Interval <= 0 || t.Run == nil {
			log.Warn().Str("task", t.Name).Msg("scheduler: task disabled")
			continue
		}
		go runTask(ctx, t)
	}
}

func runTask(ctx context.Context, t Task) {
	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	log.Info().Str("task", t.Name).Dur("interval", t.Interval).Msg("scheduler: started")
	if t.RunAtStart {
		runOnce(ctx, t)
	}
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("task", t.Name).Msg("scheduler: shutting down")
			return
		case <-ticker.C:
			runOnce(ctx, t)
		}
	}
}

func runOnce(ctx context.Context, t Task) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("task", t.Name).Msg("scheduler: task panicked")
		}
	}()
	start := time.Now()
	if err := t.Run(ctx); err != nil {
		log.Error().Err(err).Str("task", t.Name).Msg("scheduler: task failed")
		return
	}
	log.Debug().Str("task", t.Name).Dur("took", time.Since(start)).Msg("scheduler: task done")
}
