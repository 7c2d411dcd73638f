package policy

import (
	"math/rand"

	"github.com/haseebdoesdev/go-task-scheduler/internal/task"
)

// priorityPolicy selects the PENDING task with the lowest numeric
// priority (HIGH=0 beats MEDIUM=1 beats LOW=2), tie-broken by earliest
// array position.
type priorityPolicy struct{}

func (priorityPolicy) Algorithm() Algorithm { return Priority }

func (priorityPolicy) Select(tasks []*task.Task, _ Tunables, _ *rand.Rand) (int, bool) {
	best := -1
	bestScore := task.PriorityLow + 1
	for _, i := range pending(tasks) {
		score := tasks[i].Priority
		if best == -1 || score < bestScore {
			best = i
			bestScore = score
		}
	}
	return best, best != -1
}
