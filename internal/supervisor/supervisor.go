// Package supervisor owns the pool's lifecycle: it spawns the fixed set
// of workers, reaps and respawns any that die, and drives the periodic
// housekeeping (orphan recovery via liveness checks, timeout sweeps,
// compaction) that keeps the pool consistent over time.
package supervisor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/haseebdoesdev/go-task-scheduler/internal/events"
	"github.com/haseebdoesdev/go-task-scheduler/internal/logger"
	"github.com/haseebdoesdev/go-task-scheduler/internal/metrics"
	"github.com/haseebdoesdev/go-task-scheduler/internal/pool"
	"github.com/haseebdoesdev/go-task-scheduler/internal/worker"
)

// workerHandle tracks one spawned worker goroutine: the ability to
// cancel it, and a channel that closes when its Run call returns (either
// because it was cancelled or because it crashed).
type workerHandle struct {
	w      *worker.Worker
	cancel context.CancelFunc
	done   chan struct{}
}

// Supervisor is the single coordinator: it owns the pool and every
// worker goroutine, and is the only component that spawns or reaps
// workers.
type Supervisor struct {
	pool      *pool.Pool
	cfg       Config
	runID     uuid.UUID
	publisher events.Publisher

	mu      sync.Mutex
	workers map[int]*workerHandle
}

// SetPublisher wires an optional lifecycle event publisher (the
// out-of-scope dashboard's feed). Nil disables publishing entirely;
// publish failures are logged, never fatal to the supervisor loop.
func (s *Supervisor) SetPublisher(p events.Publisher) {
	s.publisher = p
}

func (s *Supervisor) publish(eventType events.EventType, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(context.Background(), events.NewEvent(eventType, data)); err != nil {
		metrics.RecordEventPublishError(string(eventType))
		logger.Warn().Err(err).Str("event_type", string(eventType)).Msg("failed to publish lifecycle event")
		return
	}
	metrics.RecordEventPublished(string(eventType))
}

// New builds a Supervisor around p. It does not spawn any workers until
// Run is called.
func New(p *pool.Pool, cfg Config) *Supervisor {
	return &Supervisor{
		pool:    p,
		cfg:     cfg.withDefaults(),
		runID:   uuid.New(),
		workers: make(map[int]*workerHandle),
	}
}

// RunID is the correlation id stamped on every housekeeping log line for
// this supervisor's lifetime, so log aggregation can group one run.
func (s *Supervisor) RunID() uuid.UUID {
	return s.runID
}

// spawnWorker starts worker id in its own goroutine and records its
// handle. Callers must not hold s.mu.
func (s *Supervisor) spawnWorker(id int) {
	log := logger.WithWorker(id).With().Str("run_id", s.runID.String()).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	w := worker.New(id, s.pool)
	w.SetPublisher(s.publisher)
	done := make(chan struct{})

	s.mu.Lock()
	s.workers[id] = &workerHandle{w: w, cancel: cancel, done: done}
	s.mu.Unlock()

	s.publish(events.EventWorkerSpawned, events.WorkerEventData(id, "spawned", nil))

	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("worker loop crashed")
			}
		}()
		w.Run(ctx)
	}()

	log.Info().Msg("worker spawned")
}

// Run starts NumWorkers workers and drives the housekeeping loop until
// ctx is cancelled, at which point it shuts the pool and every worker
// down before returning. Each
// WorkerCheckInterval it reaps dead/unresponsive workers and respawns
// them with the same id; every CleanupInterval it compacts the pool;
// every TaskTimeoutCheckInterval it sweeps for timed-out tasks and
// applies MLFQ aging.
func (s *Supervisor) Run(ctx context.Context) {
	log := logger.WithComponent("supervisor").With().Str("run_id", s.runID.String()).Logger()
	log.Info().Int("num_workers", s.cfg.NumWorkers).Msg("supervisor starting")

	for i := 0; i < s.cfg.NumWorkers; i++ {
		s.spawnWorker(i)
	}

	checkTicker := time.NewTicker(s.cfg.WorkerCheckInterval)
	defer checkTicker.Stop()
	cleanupTicker := time.NewTicker(s.cfg.CleanupInterval)
	defer cleanupTicker.Stop()
	timeoutTicker := time.NewTicker(s.cfg.TaskTimeoutCheckInterval)
	defer timeoutTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.shutdown(log)
			return
		case <-checkTicker.C:
			s.reapAndRespawn(log)
		case <-cleanupTicker.C:
			removed := s.pool.Compact(s.cfg.CompletedTaskMaxAge)
			if removed > 0 {
				log.Info().Int("removed", removed).Msg("compacted terminal tasks")
			}
		case <-timeoutTicker.C:
			timedOut, retried := s.pool.CheckTimeouts()
			if timedOut > 0 || retried > 0 {
				log.Info().Int("timed_out", timedOut).Int("retried", retried).Msg("timeout sweep")
			}
			s.pool.PromoteAged()
		}
	}
}

// reapAndRespawn non-blockingly
// checks each worker's liveness, recovers any orphaned tasks it owned and
// respawn it under the same id if it crashed or went unresponsive, then
// recompute num_active_workers from the survivors.
func (s *Supervisor) reapAndRespawn(log zerolog.Logger) {
	s.mu.Lock()
	ids := make([]int, 0, len(s.workers))
	for id := range s.workers {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	active := 0
	for _, id := range ids {
		s.mu.Lock()
		h, ok := s.workers[id]
		s.mu.Unlock()
		if !ok {
			continue
		}

		dead := false
		select {
		case <-h.done:
			dead = true
		default:
			stats := h.w.Stats()
			if !stats.LastTick.IsZero() && time.Since(stats.LastTick) > s.cfg.LivenessGracePeriod {
				dead = true
				h.cancel()
			}
		}

		if dead {
			recovered := s.pool.RecoverOrphans(id)
			log.Warn().Int("worker_id", id).Int("recovered_tasks", recovered).Msg("worker unresponsive, respawning")
			s.publish(events.EventWorkerCrashed, events.WorkerEventData(id, "crashed", map[string]interface{}{"recovered_tasks": recovered}))
			metrics.RecordWorkerRespawn(fmt.Sprintf("%d", id))
			s.spawnWorker(id)
			s.publish(events.EventWorkerRespawned, events.WorkerEventData(id, "respawned", nil))
			continue
		}

		active++
	}

	s.pool.SetNumActiveWorkers(active)
	metrics.SetActiveWorkers(float64(active))
}

// shutdown sets the pool's shutdown flag (waking every idle worker),
// cancels every worker's context, and waits up to ShutdownTimeout for
// them to exit, logging a warning for stragglers instead of blocking
// forever.
func (s *Supervisor) shutdown(log zerolog.Logger) {
	log.Info().Msg("supervisor shutting down")
	s.pool.Shutdown()

	s.mu.Lock()
	handles := make([]*workerHandle, 0, len(s.workers))
	for _, h := range s.workers {
		handles = append(handles, h)
	}
	s.mu.Unlock()

	for _, h := range handles {
		h.cancel()
	}

	deadline := time.After(s.cfg.ShutdownTimeout)
	for _, h := range handles {
		select {
		case <-h.done:
		case <-deadline:
			log.Warn().Int("worker_id", h.w.ID).Msg("timed out waiting for worker to stop")
		}
	}

	log.Info().Msg("supervisor stopped")
}
