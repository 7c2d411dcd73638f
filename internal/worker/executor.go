// Package worker implements the worker runtime: the loop that waits for
// PENDING work, selects and executes one task at a time, and reports its
// outcome back to the pool.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/haseebdoesdev/go-task-scheduler/internal/events"
	"github.com/haseebdoesdev/go-task-scheduler/internal/logger"
	"github.com/haseebdoesdev/go-task-scheduler/internal/metrics"
	"github.com/haseebdoesdev/go-task-scheduler/internal/policy"
	"github.com/haseebdoesdev/go-task-scheduler/internal/pool"
	"github.com/haseebdoesdev/go-task-scheduler/internal/task"
)

// ChunkSize is how long each simulated execution step sleeps. Keeping
// chunks short bounds how stale a task's cpu_time_used accounting can
// get and how long shutdown takes to be noticed mid-task.
const ChunkSize = 100 * time.Millisecond

// Handler is optional work a task runs after its nominal chunked sleep
// completes. Submissions that carry no handler just consume
// execution_time_ms and report success; a Handler lets a caller wire in
// real task bodies (HTTP calls, file processing, ...) without touching
// the worker loop itself. Returning an error fails the task.
type Handler func(ctx context.Context, t *task.Task) error

// Executor runs one task to completion (or failure) against the shared
// pool. The worker loop that calls Run does so from a goroutine it does
// not wait on, so it stays free to notice shutdown while a task is
// still executing.
type Executor struct {
	Pool      *pool.Pool
	ChunkSize time.Duration
	Handler   Handler

	// Publisher, when set, receives task lifecycle events (the
	// out-of-scope dashboard's feed). Nil disables publishing.
	Publisher events.Publisher
}

// NewExecutor builds an Executor with the standard 100ms chunk size.
func NewExecutor(p *pool.Pool, handler Handler) *Executor {
	return &Executor{Pool: p, ChunkSize: ChunkSize, Handler: handler}
}

func (e *Executor) publish(eventType events.EventType, t *task.Task, extra map[string]interface{}) {
	if e.Publisher == nil {
		return
	}
	data := events.TaskEventData(t.ID, t.Priority.String(), extra)
	if err := e.Publisher.Publish(context.Background(), events.NewEvent(eventType, data)); err != nil {
		metrics.RecordEventPublishError(string(eventType))
		return
	}
	metrics.RecordEventPublished(string(eventType))
}

// Run executes t: sleeps in chunks totaling t.ExecutionTimeMs, advancing
// cpu_time_used/remaining_time_ms under the pool's lock on each chunk
// when the active policy is MLFQ or SRTF, then runs the optional Handler
// and publishes a terminal status. A panic anywhere in this call
// (including inside Handler) is recovered and reported as FAILED,
// modeling the worker's "internal failure" disposition rather than
// taking the whole worker down. If ctx is cancelled or the pool starts
// shutting down mid-sleep, Run returns without publishing any terminal
// state at all; the supervisor will later recover the task as an
// orphan, exactly as the at-least-once contract requires.
func (e *Executor) Run(ctx context.Context, workerID int, t *task.Task) {
	log := logger.WithWorkerTask(workerID, t.ID)

	start := time.Now()
	defer func() {
		metrics.RecordWorkerBusyTime(fmt.Sprintf("%d", workerID), time.Since(start).Seconds())
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("task execution panicked")
			if err := e.Pool.UpdateStatus(t.ID, task.StatusFailed); err != nil {
				log.Error().Err(err).Msg("failed to publish FAILED after panic")
			}
			e.publish(events.EventTaskFailed, t, map[string]interface{}{"reason": "panic"})
		}
	}()

	chunk := e.ChunkSize
	if chunk <= 0 {
		chunk = ChunkSize
	}

	remaining := t.ExecutionTimeMs
	for remaining > 0 {
		if ctx.Err() != nil || e.Pool.IsShutdown() {
			log.Debug().Msg("shutdown observed mid-execution, leaving task for orphan recovery")
			return
		}

		step := uint(chunk.Milliseconds())
		if step > remaining {
			step = remaining
		}

		timer := time.NewTimer(time.Duration(step) * time.Millisecond)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		remaining -= step

		algo := e.Pool.Algorithm()
		if algo == policy.MLFQ || algo == policy.SRTF {
			e.Pool.AdvanceCPUTime(t.ID, step)
		}
	}

	if e.Handler != nil {
		if err := e.Handler(ctx, t); err != nil {
			log.Warn().Err(err).Msg("task handler failed")
			if uerr := e.Pool.UpdateStatus(t.ID, task.StatusFailed); uerr != nil {
				log.Error().Err(uerr).Msg("failed to publish FAILED")
			}
			e.publish(events.EventTaskFailed, t, map[string]interface{}{"reason": err.Error()})
			return
		}
	}

	if err := e.Pool.UpdateStatus(t.ID, task.StatusCompleted); err != nil {
		log.Error().Err(err).Msg("failed to publish COMPLETED")
	}
	e.publish(events.EventTaskCompleted, t, nil)
}
