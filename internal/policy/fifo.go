package policy

import (
	"math/rand"
	"time"

	"github.com/haseebdoesdev/go-task-scheduler/internal/task"
)

// fifoPolicy selects the PENDING task with the earliest CreationTime.
type fifoPolicy struct{}

func (fifoPolicy) Algorithm() Algorithm { return FIFO }

func (fifoPolicy) Select(tasks []*task.Task, _ Tunables, _ *rand.Rand) (int, bool) {
	best := -1
	var bestCreated time.Time
	for _, i := range pending(tasks) {
		created := tasks[i].CreationTime
		if best == -1 || created.Before(bestCreated) {
			best = i
			bestCreated = created
		}
	}
	return best, best != -1
}
