package task

import "errors"

// Sentinel errors returned by the pool and policy layer. Callers should
// compare with errors.Is since the pool wraps these with task-id context
// via fmt.Errorf("...: %w", err).
var (
	// ErrQueueFull is returned by Submit when the pool is at capacity.
	ErrQueueFull = errors.New("task pool is at capacity")

	// ErrNotFound is returned when an id does not match any task.
	ErrNotFound = errors.New("task not found")

	// ErrIllegalTransition is returned when an operation would move a
	// task along an edge the lifecycle diagram forbids (e.g. cancelling
	// a RUNNING or already-terminal task).
	ErrIllegalTransition = errors.New("illegal task state transition")

	// ErrInvalidPriority is returned by validation helpers when a
	// priority value falls outside {HIGH, MEDIUM, LOW}.
	ErrInvalidPriority = errors.New("invalid task priority")

	// ErrNameTooLong is returned when a task name exceeds the 256-byte
	// bound on submission.
	ErrNameTooLong = errors.New("task name exceeds 256 bytes")

	// ErrNameEmpty is returned when a task is submitted with no name.
	ErrNameEmpty = errors.New("task name must not be empty")
)
