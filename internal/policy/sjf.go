package policy

import (
	"math/rand"

	"github.com/haseebdoesdev/go-task-scheduler/internal/task"
)

// sjfPolicy (shortest-job-first) selects the PENDING task with the
// smallest nominal ExecutionTimeMs.
type sjfPolicy struct{}

func (sjfPolicy) Algorithm() Algorithm { return SJF }

func (sjfPolicy) Select(tasks []*task.Task, _ Tunables, _ *rand.Rand) (int, bool) {
	best := -1
	var bestDuration uint
	for _, i := range pending(tasks) {
		d := tasks[i].ExecutionTimeMs
		if best == -1 || d < bestDuration {
			best = i
			bestDuration = d
		}
	}
	return best, best != -1
}
