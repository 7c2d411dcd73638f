package policy

import (
	"math/rand"

	"github.com/haseebdoesdev/go-task-scheduler/internal/task"
)

// roundRobinPolicy scans the full array starting just past the last
// selected position, wrapping around, and returns the first PENDING task
// it finds. The pool is responsible for updating RRLastIndex to the
// returned index afterward.
type roundRobinPolicy struct{}

func (roundRobinPolicy) Algorithm() Algorithm { return RoundRobin }

func (roundRobinPolicy) Select(tasks []*task.Task, tunables Tunables, _ *rand.Rand) (int, bool) {
	size := len(tasks)
	if size == 0 {
		return -1, false
	}
	start := (tunables.RRLastIndex + 1) % size
	for offset := 0; offset < size; offset++ {
		i := (start + offset) % size
		if tasks[i].Status == task.StatusPending {
			return i, true
		}
	}
	return -1, false
}
