package policy

import (
	"math/rand"

	"github.com/haseebdoesdev/go-task-scheduler/internal/task"
)

// srtfPolicy (shortest-remaining-time-first) selects the PENDING task
// with the smallest RemainingTimeMs. A task observed with RemainingTimeMs
// == 0 while PENDING has never run a chunk yet; it is lazily reset to its
// ExecutionTimeMs before scoring.
type srtfPolicy struct{}

func (srtfPolicy) Algorithm() Algorithm { return SRTF }

func (srtfPolicy) Select(tasks []*task.Task, _ Tunables, _ *rand.Rand) (int, bool) {
	best := -1
	var bestRemaining uint
	for _, i := range pending(tasks) {
		t := tasks[i]
		if t.RemainingTimeMs == 0 {
			t.RemainingTimeMs = t.ExecutionTimeMs
		}
		if best == -1 || t.RemainingTimeMs < bestRemaining {
			best = i
			bestRemaining = t.RemainingTimeMs
		}
	}
	return best, best != -1
}
