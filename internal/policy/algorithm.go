// Package policy implements the nine interchangeable task-selection
// disciplines. Each Selector is a pure function from a view of the pool's
// task array to the array index of the next task to run; none of them
// take a lock or mutate a Task directly. The pool calls a Selector while
// holding its own mutex and applies the resulting state transition.
package policy

import (
	"fmt"
	"strings"
)

// Algorithm names one of the nine selection disciplines.
type Algorithm string

const (
	Priority   Algorithm = "PRIORITY"
	EDF        Algorithm = "EDF"
	MLFQ       Algorithm = "MLFQ"
	Gang       Algorithm = "GANG"
	RoundRobin Algorithm = "ROUND_ROBIN"
	SJF        Algorithm = "SJF"
	FIFO       Algorithm = "FIFO"
	Lottery    Algorithm = "LOTTERY"
	SRTF       Algorithm = "SRTF"
)

// All lists every supported algorithm, in the order the control API
// documents them.
var All = []Algorithm{Priority, EDF, MLFQ, Gang, RoundRobin, SJF, FIFO, Lottery, SRTF}

// Parse resolves the case-insensitive algorithm name accepted by
// set_algorithm, including the RR and FCFS aliases.
func Parse(name string) (Algorithm, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case string(Priority):
		return Priority, nil
	case string(EDF):
		return EDF, nil
	case string(MLFQ):
		return MLFQ, nil
	case string(Gang):
		return Gang, nil
	case string(RoundRobin), "RR":
		return RoundRobin, nil
	case string(SJF):
		return SJF, nil
	case string(FIFO), "FCFS":
		return FIFO, nil
	case string(Lottery):
		return Lottery, nil
	case string(SRTF):
		return SRTF, nil
	default:
		return "", fmt.Errorf("policy: unknown algorithm %q", name)
	}
}

func (a Algorithm) String() string {
	return string(a)
}
