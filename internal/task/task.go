// Package task defines the task record shared by the pool, the policy
// layer, and the worker runtime.
//
// A Task carries every field any scheduling policy needs, even though a
// given algorithm only reads a handful of them. One record type serves
// all nine policies; splitting it per algorithm would force the pool to
// care which discipline is active every time it touches a task.
package task

import (
	"encoding/json"
	"time"
)

// MaxNameBytes bounds the UTF-8 byte length of a task name.
const MaxNameBytes = 256

// DefaultLotteryTickets is assigned to a task that does not specify a
// ticket count.
const DefaultLotteryTickets = 10

// NoGang is the sentinel gang_id meaning "not part of a gang".
const NoGang = -1

// NoWorker is the sentinel worker_id meaning "unassigned".
const NoWorker = -1

// Task is the mutable scheduling record for one unit of work. Identity
// fields (ID, Name) are set once at construction; every other field is
// mutated only by the pool under its mutex.
type Task struct {
	ID   int    `json:"id"`
	Name string `json:"name"`

	Priority       Priority `json:"priority"`
	GangID         int      `json:"gang_id"`
	LotteryTickets uint     `json:"lottery_tickets"`

	ExecutionTimeMs uint      `json:"execution_time_ms"`
	TimeoutSeconds  uint      `json:"timeout_seconds"`
	DeadlineTime    time.Time `json:"deadline_time,omitempty"`

	Status       Status    `json:"status"`
	CreationTime time.Time `json:"creation_time"`
	StartTime    time.Time `json:"start_time,omitempty"`
	EndTime      time.Time `json:"end_time,omitempty"`

	WorkerID   int `json:"worker_id"`
	RetryCount int `json:"retry_count"`

	RemainingTimeMs uint `json:"remaining_time_ms"`

	CurrentMLFQLevel Priority  `json:"current_mlfq_level"`
	MLFQLevelStart   time.Time `json:"mlfq_level_start,omitempty"`

	CPUTimeUsedMs uint `json:"cpu_time_used_ms"`
}

// Spec is the caller-supplied description of a task to submit; the pool
// turns one of these into a Task, assigning ID/CreationTime/Status
// itself. Zero-value DeadlineTime means "no deadline"; zero TimeoutSeconds
// means "no timeout"; zero LotteryTickets is replaced with
// DefaultLotteryTickets; zero GangID-that-was-never-set is normalized to
// NoGang by New.
type Spec struct {
	Name            string
	Priority        Priority
	ExecutionTimeMs uint
	DeadlineTime    time.Time
	GangID          int
	TimeoutSeconds  uint
	LotteryTickets  uint
}

// New builds a fresh PENDING task record for id from spec, stamping
// CreationTime as now. It does not validate spec; callers validate
// before calling New (the pool does this in Submit).
func New(id int, spec Spec, now time.Time) *Task {
	gangID := spec.GangID
	if gangID == 0 {
		gangID = NoGang
	}
	tickets := spec.LotteryTickets
	if tickets == 0 {
		tickets = DefaultLotteryTickets
	}
	return &Task{
		ID:               id,
		Name:             spec.Name,
		Priority:         spec.Priority,
		GangID:           gangID,
		LotteryTickets:   tickets,
		ExecutionTimeMs:  spec.ExecutionTimeMs,
		TimeoutSeconds:   spec.TimeoutSeconds,
		DeadlineTime:     spec.DeadlineTime,
		Status:           StatusPending,
		CreationTime:     now,
		WorkerID:         NoWorker,
		RemainingTimeMs:  spec.ExecutionTimeMs,
		CurrentMLFQLevel: spec.Priority,
		MLFQLevelStart:   now,
	}
}

// Validate checks the fields a submitter controls. It does not check
// pool capacity; that is the pool's concern.
func (s Spec) Validate() error {
	if len(s.Name) == 0 {
		return ErrNameEmpty
	}
	if len(s.Name) > MaxNameBytes {
		return ErrNameTooLong
	}
	if !s.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}

// Clone returns a deep copy safe to hand to a caller outside the pool
// mutex (the value types here are all copy-safe; there are no pointer
// or slice fields, so a plain struct copy suffices).
func (t *Task) Clone() *Task {
	clone := *t
	return &clone
}

// CanRetry reports whether t has retry budget remaining against
// maxRetries.
func (t *Task) CanRetry(maxRetries int) bool {
	return t.RetryCount < maxRetries
}

// HasDeadline reports whether t carries an EDF deadline.
func (t *Task) HasDeadline() bool {
	return !t.DeadlineTime.IsZero()
}

// infiniteDeadline stands in for "no deadline" when a EDF-style ordering
// needs a comparable value: it sorts after every real deadline.
var infiniteDeadline = time.Unix(1<<62, 0)

// DeadlineKey returns DeadlineTime when set, or a sentinel far in the
// future otherwise, so EDF scoring and insertion can compare tasks
// uniformly regardless of whether they carry a deadline.
func (t *Task) DeadlineKey() time.Time {
	if !t.HasDeadline() {
		return infiniteDeadline
	}
	return t.DeadlineTime
}

// HasTimeout reports whether t carries a worker-side timeout.
func (t *Task) HasTimeout() bool {
	return t.TimeoutSeconds > 0
}

// ToJSON marshals t for the snapshot/control-plane surface.
func (t *Task) ToJSON() ([]byte, error) {
	return json.Marshal(t)
}

// FromJSON is the inverse of ToJSON.
func FromJSON(data []byte) (*Task, error) {
	var t Task
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
