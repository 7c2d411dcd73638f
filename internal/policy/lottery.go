package policy

import (
	"math/rand"

	"github.com/haseebdoesdev/go-task-scheduler/internal/task"
)

// lotteryPolicy draws a uniform random ticket across the sum of every
// PENDING task's LotteryTickets and awards the task whose cumulative
// ticket range contains the draw. The only non-deterministic Selector;
// callers supply rng so tests can seed it.
type lotteryPolicy struct{}

func (lotteryPolicy) Algorithm() Algorithm { return Lottery }

func (lotteryPolicy) Select(tasks []*task.Task, _ Tunables, rng *rand.Rand) (int, bool) {
	idxs := pending(tasks)
	if len(idxs) == 0 {
		return -1, false
	}

	var total uint
	for _, i := range idxs {
		total += tasks[i].LotteryTickets
	}
	if total == 0 {
		return idxs[0], true
	}

	draw := uint(rng.Int63n(int64(total)))
	var cumulative uint
	for _, i := range idxs {
		cumulative += tasks[i].LotteryTickets
		if draw < cumulative {
			return i, true
		}
	}
	// Unreachable given the invariant draw < total, but fall back to the
	// last candidate rather than reporting failure.
	return idxs[len(idxs)-1], true
}
