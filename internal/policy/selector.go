package policy

import (
	"math/rand"

	"github.com/haseebdoesdev/go-task-scheduler/internal/task"
)

// Tunables carries the per-algorithm state a Selector needs beyond the
// task array itself. The pool owns the authoritative copy; a Select call
// only reads it, except RRLastIndex which the pool updates afterward
// from the returned index.
type Tunables struct {
	// RRLastIndex is the array index round-robin selected last time.
	RRLastIndex int
}

// Selector picks the next array index to run from tasks, or reports
// ok=false when nothing is eligible (no PENDING task). tasks is the
// pool's full backing slice; implementations must only consider entries
// with Status == task.StatusPending and must not mutate any Task, with
// one exception: SRTF lazily reinitializes RemainingTimeMs when it
// observes it at zero, which is safe only because the pool holds its
// mutex for the duration of Select.
type Selector interface {
	Algorithm() Algorithm
	Select(tasks []*task.Task, tunables Tunables, rng *rand.Rand) (index int, ok bool)
}

// Registry maps every supported Algorithm to its Selector.
type Registry map[Algorithm]Selector

// NewRegistry builds the registry of all nine built-in selectors.
func NewRegistry() Registry {
	return Registry{
		Priority:   priorityPolicy{},
		EDF:        edfPolicy{},
		MLFQ:       mlfqPolicy{},
		Gang:       gangPolicy{},
		RoundRobin: roundRobinPolicy{},
		SJF:        sjfPolicy{},
		FIFO:       fifoPolicy{},
		Lottery:    lotteryPolicy{},
		SRTF:       srtfPolicy{},
	}
}

// Get returns the Selector for algo, or ok=false if algo is unregistered.
func (r Registry) Get(algo Algorithm) (Selector, bool) {
	s, ok := r[algo]
	return s, ok
}

func pending(tasks []*task.Task) []int {
	idxs := make([]int, 0, len(tasks))
	for i, t := range tasks {
		if t.Status == task.StatusPending {
			idxs = append(idxs, i)
		}
	}
	return idxs
}
