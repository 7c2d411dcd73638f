package pool

import (
	"runtime"

	"github.com/haseebdoesdev/go-task-scheduler/internal/policy"
)

// Config bounds and tunes a Pool. New replaces zero-value fields with
// the defaults noted below (MLFQPromoteAfterMs excepted: zero is kept).
type Config struct {
	// Capacity is the pool's fixed array length (MAX_TASKS). Default 100.
	Capacity int

	// MaxRetries bounds retry_count before a task becomes terminal.
	// Default 3.
	MaxRetries int

	// Algorithm is the initially active selection policy.
	Algorithm policy.Algorithm

	// MLFQTimeSliceMs is how long a task may run at its current MLFQ
	// level before the worker demotes it. Default 100ms.
	MLFQTimeSliceMs uint

	// RRTimeQuantumMs is advisory metadata surfaced in snapshots; the
	// round-robin Selector itself only needs RRLastIndex. Default 100ms.
	RRTimeQuantumMs uint

	// NumCPUCores is the affinity modulus used to compute a worker's
	// pinning hint (worker_id mod NumCPUCores). Defaults to
	// runtime.NumCPU().
	NumCPUCores int

	// MLFQPromoteAfterMs, when non-zero, ages a PENDING task up one MLFQ
	// level after it has waited this long without being dispatched. Zero
	// disables promotion entirely.
	MLFQPromoteAfterMs uint
}

// DefaultConfig returns the reference tunables.
func DefaultConfig() Config {
	return Config{
		Capacity:           100,
		MaxRetries:         3,
		Algorithm:          policy.Priority,
		MLFQTimeSliceMs:    100,
		RRTimeQuantumMs:    100,
		NumCPUCores:        runtime.NumCPU(),
		MLFQPromoteAfterMs: 5000,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Capacity <= 0 {
		c.Capacity = d.Capacity
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.Algorithm == "" {
		c.Algorithm = d.Algorithm
	}
	if c.MLFQTimeSliceMs == 0 {
		c.MLFQTimeSliceMs = d.MLFQTimeSliceMs
	}
	if c.RRTimeQuantumMs == 0 {
		c.RRTimeQuantumMs = d.RRTimeQuantumMs
	}
	if c.NumCPUCores <= 0 {
		c.NumCPUCores = d.NumCPUCores
	}
	return c
}
