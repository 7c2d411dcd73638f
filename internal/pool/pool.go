// Package pool implements the shared task pool: a fixed-capacity
// in-process structure guarded by a mutex and condition variable, the
// single piece of global state every worker and the supervisor share.
//
// Rather than pinning a process-shared mutex and condition variable to a
// shared-memory segment, a single coordinator process owns the pool and
// workers talk to it in-process. A sync.Mutex plus sync.Cond guards every
// field; "worker_id" is still an explicit integer identity passed around
// rather than implied by a PID.
package pool

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/haseebdoesdev/go-task-scheduler/internal/metrics"
	"github.com/haseebdoesdev/go-task-scheduler/internal/policy"
	"github.com/haseebdoesdev/go-task-scheduler/internal/task"
)

// Pool is the shared task pool. The zero value is not usable; construct
// with New.
type Pool struct {
	mu   sync.Mutex
	cond *sync.Cond

	tasks []*task.Task

	nextTaskID     int
	totalTasks     int
	completedTasks int
	failedTasks    int

	numActiveWorkers int
	shutdown         bool

	algorithm   policy.Algorithm
	registry    policy.Registry
	rrLastIndex int
	rng         *rand.Rand

	cfg Config
}

// New constructs an empty Pool from cfg, filling in defaults for any
// zero-valued tunable.
func New(cfg Config) *Pool {
	cfg = cfg.withDefaults()
	p := &Pool{
		tasks:       make([]*task.Task, 0, cfg.Capacity),
		nextTaskID:  1,
		algorithm:   cfg.Algorithm,
		registry:    policy.NewRegistry(),
		rrLastIndex: -1,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		cfg:         cfg,
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Config returns the tunables the pool was constructed with.
func (p *Pool) Config() Config {
	return p.cfg
}

// Submit allocates a new task id, appends a fresh PENDING record, and
// wakes exactly one waiting worker. It fails with task.ErrQueueFull when
// the pool is at capacity; no state changes occur on that path.
func (p *Pool) Submit(spec task.Spec) (int, error) {
	if err := spec.Validate(); err != nil {
		return 0, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.tasks) >= p.cfg.Capacity {
		return 0, task.ErrQueueFull
	}

	id := p.nextTaskID
	p.nextTaskID++

	t := task.New(id, spec, time.Now())
	idx := p.insertionIndex(t)
	p.tasks = append(p.tasks, nil)
	copy(p.tasks[idx+1:], p.tasks[idx:])
	p.tasks[idx] = t

	p.totalTasks++
	p.cond.Signal()

	metrics.RecordTaskSubmission(t.Priority.String())
	metrics.UpdatePoolSize(float64(len(p.tasks)), float64(p.cfg.Capacity))

	return id, nil
}

// insertionIndex returns where to splice a freshly submitted task to
// keep the array in the order its active policy benefits from:
// ascending priority under PRIORITY, ascending deadline under EDF,
// append otherwise. Both policies still only require an O(size) scan at
// selection time; keeping them sorted on insert is an optimization, not
// a requirement.
func (p *Pool) insertionIndex(t *task.Task) int {
	switch p.algorithm {
	case policy.Priority:
		lo, hi := 0, len(p.tasks)
		for lo < hi {
			mid := (lo + hi) / 2
			if p.tasks[mid].Priority <= t.Priority {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		return lo
	case policy.EDF:
		key := t.DeadlineKey()
		lo, hi := 0, len(p.tasks)
		for lo < hi {
			mid := (lo + hi) / 2
			if !p.tasks[mid].DeadlineKey().After(key) {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		return lo
	default:
		return len(p.tasks)
	}
}

// hasPending reports whether any task is PENDING. Callers must hold mu.
func (p *Pool) hasPending() bool {
	for _, t := range p.tasks {
		if t.Status == task.StatusPending {
			return true
		}
	}
	return false
}

// WaitForWork blocks on the condition variable until either a PENDING
// task exists or the pool is shutting down. It returns true when the
// caller should stop (shutdown observed).
func (p *Pool) WaitForWork() (shuttingDown bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for !p.hasPending() && !p.shutdown {
		p.cond.Wait()
	}
	return p.shutdown
}

// SelectNext runs the active policy and, on a hit, transitions the
// chosen task to RUNNING with start_time set to now. It returns a copy
// safe for the caller to read without the mutex; WorkerID is left at
// task.NoWorker, since assignment is the worker's own follow-up step
// (AssignWorker) under a second critical section.
func (p *Pool) SelectNext() (*task.Task, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	sel, ok := p.registry.Get(p.algorithm)
	if !ok {
		return nil, fmt.Errorf("pool: no selector registered for algorithm %q", p.algorithm)
	}

	idx, ok := sel.Select(p.tasks, policy.Tunables{RRLastIndex: p.rrLastIndex}, p.rng)
	if !ok {
		return nil, task.ErrNotFound
	}

	if p.algorithm == policy.RoundRobin {
		p.rrLastIndex = idx
	}

	t := p.tasks[idx]
	t.Status = task.StatusRunning
	t.StartTime = time.Now()
	if p.algorithm == policy.MLFQ {
		t.MLFQLevelStart = t.StartTime
	}

	metrics.RecordSelection(string(p.algorithm))
	metrics.RecordQueueWait(t.StartTime.Sub(t.CreationTime).Seconds())

	return t.Clone(), nil
}

// AssignWorker records which worker now owns a RUNNING task. This is
// deliberately a separate critical section from SelectNext: between the
// two, readers may observe the task RUNNING with WorkerID still
// task.NoWorker.
func (p *Pool) AssignWorker(id, workerID int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	t := p.find(id)
	if t == nil {
		return fmt.Errorf("pool: assign worker: %w", task.ErrNotFound)
	}
	t.WorkerID = workerID
	return nil
}

// UpdateStatus applies a terminal transition (COMPLETED, FAILED, or
// TIMEOUT) to the task identified by id; it is the entry point workers
// use to publish the outcome of a task they ran. Entering a terminal
// state for the first time stamps end_time and increments the matching
// aggregate counter exactly once; re-asserting the same terminal
// state is a no-op on counters. The RUNNING->PENDING retry edge is
// not reachable through this method: it is applied only by
// RecoverOrphans and CheckTimeouts, which reset worker_id/start_time in
// the same step as incrementing retry_count, atomically with the status
// change.
func (p *Pool) UpdateStatus(id int, newStatus task.Status) error {
	if !newStatus.IsTerminal() {
		return fmt.Errorf("pool: update status to %s: %w", newStatus, task.ErrIllegalTransition)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	t := p.find(id)
	if t == nil {
		return fmt.Errorf("pool: update status: %w", task.ErrNotFound)
	}

	if t.Status == newStatus && t.Status.IsTerminal() {
		return nil // idempotent re-assertion, no-op on counters
	}

	if !task.ValidTransition(t.Status, newStatus) {
		return fmt.Errorf("pool: update status %s->%s: %w", t.Status, newStatus, task.ErrIllegalTransition)
	}

	wasTerminal := t.Status.IsTerminal()
	t.Status = newStatus

	if newStatus.IsTerminal() && !wasTerminal {
		t.EndTime = time.Now()
		switch newStatus {
		case task.StatusCompleted:
			p.completedTasks++
		case task.StatusFailed, task.StatusTimeout:
			p.failedTasks++
		}

		duration := 0.0
		if !t.StartTime.IsZero() {
			duration = t.EndTime.Sub(t.StartTime).Seconds()
		}
		metrics.RecordTaskTerminal(newStatus.String(), string(p.algorithm), duration)
		metrics.UpdatePoolSize(float64(len(p.tasks)), float64(p.cfg.Capacity))
	}

	return nil
}

// Cancel transitions a PENDING task to FAILED. RUNNING and terminal
// tasks cannot be cancelled; that returns task.ErrIllegalTransition.
func (p *Pool) Cancel(id int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	t := p.find(id)
	if t == nil {
		return fmt.Errorf("pool: cancel: %w", task.ErrNotFound)
	}
	if t.Status != task.StatusPending {
		return fmt.Errorf("pool: cancel task %d in status %s: %w", id, t.Status, task.ErrIllegalTransition)
	}

	t.Status = task.StatusFailed
	t.EndTime = time.Now()
	p.failedTasks++
	metrics.RecordTaskTerminal(task.StatusFailed.String(), string(p.algorithm), 0)
	metrics.UpdatePoolSize(float64(len(p.tasks)), float64(p.cfg.Capacity))
	return nil
}

// find returns the task with the given id, or nil. Callers must hold mu.
func (p *Pool) find(id int) *task.Task {
	for _, t := range p.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// SetAlgorithm swaps the active selection policy. It never preempts a
// RUNNING task; the new policy only affects future SelectNext calls.
func (p *Pool) SetAlgorithm(algo policy.Algorithm) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.registry.Get(algo); !ok {
		return fmt.Errorf("pool: set algorithm: unknown algorithm %q", algo)
	}
	p.algorithm = algo
	return nil
}

// Algorithm returns the currently active selection policy.
func (p *Pool) Algorithm() policy.Algorithm {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.algorithm
}

// SetNumActiveWorkers records the supervisor's latest liveness count.
func (p *Pool) SetNumActiveWorkers(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.numActiveWorkers = n
}

// Shutdown sets the shutdown flag and broadcasts to every waiter.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shutdown = true
	p.cond.Broadcast()
}

// IsShutdown reports whether Shutdown has been called.
func (p *Pool) IsShutdown() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shutdown
}
