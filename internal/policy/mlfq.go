package policy

import (
	"math/rand"

	"github.com/haseebdoesdev/go-task-scheduler/internal/task"
)

// mlfqPolicy selects the PENDING task at the lowest (most urgent)
// CurrentMLFQLevel. Demotion on CPU usage and optional age-based
// promotion are applied elsewhere (the pool's housekeeping and the
// worker's chunked execution loop), not here; this Selector only reads
// the level already recorded on each task.
type mlfqPolicy struct{}

func (mlfqPolicy) Algorithm() Algorithm { return MLFQ }

func (mlfqPolicy) Select(tasks []*task.Task, _ Tunables, _ *rand.Rand) (int, bool) {
	best := -1
	bestLevel := task.PriorityLow + 1
	for _, i := range pending(tasks) {
		level := tasks[i].CurrentMLFQLevel
		if best == -1 || level < bestLevel {
			best = i
			bestLevel = level
		}
	}
	return best, best != -1
}
