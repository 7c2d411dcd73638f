package worker

import (
	"context"
	"sync"
	"time"

	"github.com/haseebdoesdev/go-task-scheduler/internal/events"
	"github.com/haseebdoesdev/go-task-scheduler/internal/logger"
	"github.com/haseebdoesdev/go-task-scheduler/internal/policy"
	"github.com/haseebdoesdev/go-task-scheduler/internal/pool"
	"github.com/haseebdoesdev/go-task-scheduler/internal/task"
)

// Worker is one of the fixed set of goroutines the supervisor spawns.
// Its ID is assigned once, by the supervisor, and never changes for its
// lifetime.
type Worker struct {
	ID       int
	Pool     *pool.Pool
	Executor *Executor

	affinityCore int

	wg sync.WaitGroup

	mu          sync.Mutex
	lastTick    time.Time
	tasksRun    int
}

// New builds a Worker bound to p with a default Executor (no custom
// Handler; tasks just consume their nominal execution_time_ms).
func New(id int, p *pool.Pool) *Worker {
	return &Worker{
		ID:           id,
		Pool:         p,
		Executor:     NewExecutor(p, nil),
		affinityCore: id % max(1, p.Config().NumCPUCores),
	}
}

// SetPublisher wires an optional lifecycle event publisher through to
// this worker's Executor, so task completion/failure is observable on
// the out-of-scope dashboard's feed. Nil disables publishing.
func (w *Worker) SetPublisher(p events.Publisher) {
	w.Executor.Publisher = p
}

// Run is the worker's main loop: wait for work,
// select it, record assignment, then hand execution to a detached
// goroutine so this loop stays free to notice shutdown without waiting
// out the task's full nominal duration. Run returns once the pool's
// shutdown flag is observed and every task this worker started has
// either finished or been abandoned to ctx cancellation.
func (w *Worker) Run(ctx context.Context) {
	log := logger.WithWorker(w.ID)
	log.Info().Int("affinity_core", w.affinityCore).Msg("worker started")
	defer log.Info().Msg("worker stopped")

	for {
		if ctx.Err() != nil {
			break
		}

		shuttingDown := w.Pool.WaitForWork()
		w.tick()
		if shuttingDown {
			break
		}
		if ctx.Err() != nil {
			break
		}

		t, err := w.Pool.SelectNext()
		if err != nil {
			// Lost the race for the last PENDING task to another
			// worker; go back to waiting.
			continue
		}

		batch := []*task.Task{t}
		if w.Pool.Algorithm() == policy.Gang && t.GangID != task.NoGang {
			// Under GANG the selected task pulls its whole gang along:
			// the remaining PENDING members are dequeued in one critical
			// section so the gang starts together on this worker.
			if n := w.Pool.GangSize(t.GangID); n > 0 {
				rest := w.Pool.DequeueGang(t.GangID, n)
				log.Debug().Int("gang_id", t.GangID).Int("members", len(rest)+1).Msg("dispatching gang")
				batch = append(batch, rest...)
			}
		}

		for _, t := range batch {
			if err := w.Pool.AssignWorker(t.ID, w.ID); err != nil {
				log.Error().Err(err).Int("task_id", t.ID).Msg("failed to assign worker")
				continue
			}

			w.mu.Lock()
			w.tasksRun++
			w.mu.Unlock()

			w.wg.Add(1)
			go func(t *task.Task) {
				defer w.wg.Done()
				w.Executor.Run(ctx, w.ID, t)
			}(t)
		}
	}

	w.wg.Wait()
}

// tick records that this worker's loop is alive; the supervisor reads it
// via Stats to decide whether the worker is still responsive.
func (w *Worker) tick() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastTick = time.Now()
}

// Stats is a point-in-time snapshot of liveness info the supervisor
// polls non-blockingly each monitor tick.
type Stats struct {
	WorkerID     int
	LastTick     time.Time
	TasksRun     int
	AffinityCore int
}

// Stats returns the worker's current liveness snapshot.
func (w *Worker) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Stats{
		WorkerID:     w.ID,
		LastTick:     w.lastTick,
		TasksRun:     w.tasksRun,
		AffinityCore: w.affinityCore,
	}
}
