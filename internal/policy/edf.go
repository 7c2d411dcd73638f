package policy

import (
	"math/rand"
	"time"

	"github.com/haseebdoesdev/go-task-scheduler/internal/task"
)

// edfPolicy implements earliest-deadline-first: the PENDING task with the
// soonest DeadlineTime wins; a task with no deadline is scored as +inf
// and so never beats one that has a deadline. Ties go to array order.
type edfPolicy struct{}

func (edfPolicy) Algorithm() Algorithm { return EDF }

func (edfPolicy) Select(tasks []*task.Task, _ Tunables, _ *rand.Rand) (int, bool) {
	best := -1
	var bestDeadline time.Time
	for _, i := range pending(tasks) {
		d := tasks[i].DeadlineKey()
		if best == -1 || d.Before(bestDeadline) {
			best = i
			bestDeadline = d
		}
	}
	return best, best != -1
}
