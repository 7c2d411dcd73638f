package pool

import (
	"time"

	"github.com/haseebdoesdev/go-task-scheduler/internal/metrics"
	"github.com/haseebdoesdev/go-task-scheduler/internal/policy"
	"github.com/haseebdoesdev/go-task-scheduler/internal/task"
)

// Compact stable-partitions the task array, dropping any terminal task
// whose EndTime is older than maxAge. Non-terminal tasks are never
// removed; removal never touches the aggregate counters, only size.
func (p *Pool) Compact(maxAge time.Duration) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	kept := p.tasks[:0]
	removed := 0
	for _, t := range p.tasks {
		if t.Status.IsTerminal() && t.EndTime.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	p.tasks = kept
	metrics.RecordTasksCompacted(float64(removed))
	metrics.UpdatePoolSize(float64(len(p.tasks)), float64(p.cfg.Capacity))
	return removed
}

// recoverTask resets a single orphaned/timed-out RUNNING task.
// RetryCount increases only in lockstep with the reset to PENDING.
// Returns true if the task became PENDING, false if it instead became
// terminal (no retry budget left). Callers must hold mu.
func (p *Pool) recoverTask(t *task.Task, terminalOnExhaustion task.Status, reason string) bool {
	if t.CanRetry(p.cfg.MaxRetries) {
		t.RetryCount++
		t.Status = task.StatusPending
		t.WorkerID = task.NoWorker
		t.StartTime = time.Time{}
		t.CPUTimeUsedMs = 0
		metrics.RecordTaskRetry(reason)
		return true
	}

	t.Status = terminalOnExhaustion
	t.EndTime = time.Now()
	p.failedTasks++
	metrics.RecordTaskTerminal(terminalOnExhaustion.String(), string(p.algorithm), 0)
	return false
}

// RecoverOrphans resets every RUNNING task owned by deadWorkerID: back
// to PENDING when retry budget remains, else to FAILED. It broadcasts
// the condition variable if any task became runnable again.
func (p *Pool) RecoverOrphans(deadWorkerID int) (recovered int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	anyPending := false
	for _, t := range p.tasks {
		if t.Status != task.StatusRunning || t.WorkerID != deadWorkerID {
			continue
		}
		if p.recoverTask(t, task.StatusFailed, "orphan") {
			anyPending = true
		}
		recovered++
	}

	if anyPending {
		p.cond.Broadcast()
	}
	metrics.RecordOrphansRecovered(float64(recovered))
	return recovered
}

// CheckTimeouts is the sole source of TIMEOUT transitions. For every
// RUNNING task with a positive TimeoutSeconds whose deadline has
// elapsed, it either retries (same rule as orphan recovery) or moves the
// task to TIMEOUT, which counts toward failed_tasks. Broadcasts on any
// retry.
func (p *Pool) CheckTimeouts() (timedOut, retried int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	anyPending := false
	for _, t := range p.tasks {
		if t.Status != task.StatusRunning || !t.HasTimeout() {
			continue
		}
		elapsed := now.Sub(t.StartTime)
		if elapsed < time.Duration(t.TimeoutSeconds)*time.Second {
			continue
		}

		if p.recoverTask(t, task.StatusTimeout, "timeout") {
			anyPending = true
			retried++
		} else {
			timedOut++
			metrics.RecordTaskTimeout()
		}
	}

	if anyPending {
		p.cond.Broadcast()
	}
	return timedOut, retried
}

// DequeueGang atomically transitions up to max PENDING tasks sharing
// gangID to RUNNING in one critical section, so the gang starts
// together. A partial result (fewer than max) is returned when fewer
// members exist; an empty slice means the gang has no PENDING members.
func (p *Pool) DequeueGang(gangID, max int) []*task.Task {
	p.mu.Lock()
	defer p.mu.Unlock()

	members := policy.GangMembers(p.tasks, gangID, max)
	now := time.Now()
	out := make([]*task.Task, 0, len(members))
	for _, idx := range members {
		t := p.tasks[idx]
		t.Status = task.StatusRunning
		t.StartTime = now
		out = append(out, t.Clone())
	}
	return out
}

// GangSize returns the number of PENDING tasks sharing gangID.
func (p *Pool) GangSize(gangID int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return policy.GangSize(p.tasks, gangID)
}

// AdvanceCPUTime is called by a worker's execution helper once per
// 100ms chunk while running a task under MLFQ or SRTF. It updates
// cpu_time_used and remaining_time_ms under the pool mutex and applies
// the MLFQ demotion rule: once a task has spent MLFQTimeSliceMs at its
// current level, it drops one level (never past LOW) and its level
// timer resets. Age-based promotion for tasks still PENDING is handled
// separately by PromoteAged.
func (p *Pool) AdvanceCPUTime(id int, chunkMs uint) {
	p.mu.Lock()
	defer p.mu.Unlock()

	t := p.find(id)
	if t == nil || t.Status != task.StatusRunning {
		return
	}

	t.CPUTimeUsedMs += chunkMs
	if t.RemainingTimeMs > chunkMs {
		t.RemainingTimeMs -= chunkMs
	} else {
		t.RemainingTimeMs = 0
	}

	if p.algorithm != policy.MLFQ {
		return
	}

	levelAge := time.Since(t.MLFQLevelStart)
	if levelAge >= time.Duration(p.cfg.MLFQTimeSliceMs)*time.Millisecond && t.CurrentMLFQLevel < task.PriorityLow {
		t.CurrentMLFQLevel = t.CurrentMLFQLevel.Demote()
		t.MLFQLevelStart = time.Now()
	}
}

// PromoteAged implements MLFQ aging: a PENDING task that has
// waited longer than MLFQPromoteAfterMs without being dispatched is
// bumped up one level, so a long-starved task eventually competes at a
// more urgent band. Disabled when MLFQPromoteAfterMs is zero.
func (p *Pool) PromoteAged() (promoted int) {
	if p.cfg.MLFQPromoteAfterMs == 0 {
		return 0
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	threshold := time.Duration(p.cfg.MLFQPromoteAfterMs) * time.Millisecond
	now := time.Now()
	for _, t := range p.tasks {
		if t.Status != task.StatusPending || t.CurrentMLFQLevel <= task.PriorityHigh {
			continue
		}
		if now.Sub(t.MLFQLevelStart) >= threshold {
			t.CurrentMLFQLevel = t.CurrentMLFQLevel.Promote()
			t.MLFQLevelStart = now
			promoted++
		}
	}
	metrics.RecordTasksPromoted(float64(promoted))
	return promoted
}
