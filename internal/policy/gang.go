package policy

import (
	"math/rand"

	"github.com/haseebdoesdev/go-task-scheduler/internal/task"
)

// gangPolicy, used for ordinary one-at-a-time selection under the GANG
// algorithm, scores by array position: the earliest PENDING task wins.
// Dispatching an entire gang together is a distinct operation
// (pool.DequeueGang) that callers invoke explicitly rather than through
// the normal select-one-task loop.
type gangPolicy struct{}

func (gangPolicy) Algorithm() Algorithm { return Gang }

func (gangPolicy) Select(tasks []*task.Task, _ Tunables, _ *rand.Rand) (int, bool) {
	idxs := pending(tasks)
	if len(idxs) == 0 {
		return -1, false
	}
	return idxs[0], true
}

// GangSize counts PENDING tasks sharing gangID.
func GangSize(tasks []*task.Task, gangID int) int {
	n := 0
	for _, i := range pending(tasks) {
		if tasks[i].GangID == gangID {
			n++
		}
	}
	return n
}

// GangMembers returns up to max array indices of PENDING tasks sharing
// gangID, in array order. The caller (the pool, under its mutex)
// transitions all of them to RUNNING in one critical section so the gang
// starts together.
func GangMembers(tasks []*task.Task, gangID int, max int) []int {
	members := make([]int, 0, max)
	for _, i := range pending(tasks) {
		if len(members) >= max {
			break
		}
		if tasks[i].GangID == gangID {
			members = append(members, i)
		}
	}
	return members
}
