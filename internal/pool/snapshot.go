package pool

import (
	"time"

	"github.com/haseebdoesdev/go-task-scheduler/internal/policy"
	"github.com/haseebdoesdev/go-task-scheduler/internal/task"
)

// Snapshot is a point-in-time, read-only copy of the pool for external
// consumers (the control API, the out-of-scope dashboard's feed). It is
// always internally consistent because it is built entirely under the
// pool mutex.
type Snapshot struct {
	TakenAt          time.Time        `json:"taken_at"`
	Size             int              `json:"size"`
	Capacity         int              `json:"capacity"`
	NextTaskID       int              `json:"next_task_id"`
	TotalTasks       int              `json:"total_tasks"`
	CompletedTasks   int              `json:"completed_tasks"`
	FailedTasks      int              `json:"failed_tasks"`
	NumActiveWorkers int              `json:"num_active_workers"`
	ShutdownFlag     bool             `json:"shutdown_flag"`
	Algorithm        policy.Algorithm `json:"algorithm"`
	RRLastIndex      int              `json:"rr_last_index"`
	Tasks            []*task.Task     `json:"tasks"`
}

// Snapshot returns a deep copy of the pool's observable state.
func (p *Pool) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	tasks := make([]*task.Task, len(p.tasks))
	for i, t := range p.tasks {
		tasks[i] = t.Clone()
	}

	return Snapshot{
		TakenAt:          time.Now(),
		Size:             len(p.tasks),
		Capacity:         p.cfg.Capacity,
		NextTaskID:       p.nextTaskID,
		TotalTasks:       p.totalTasks,
		CompletedTasks:   p.completedTasks,
		FailedTasks:      p.failedTasks,
		NumActiveWorkers: p.numActiveWorkers,
		ShutdownFlag:     p.shutdown,
		Algorithm:        p.algorithm,
		RRLastIndex:      p.rrLastIndex,
		Tasks:            tasks,
	}
}

// Get returns a copy of the task identified by id, or task.ErrNotFound.
func (p *Pool) Get(id int) (*task.Task, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	t := p.find(id)
	if t == nil {
		return nil, task.ErrNotFound
	}
	return t.Clone(), nil
}
