package supervisor

import "time"

// Config tunes the supervisor's worker count and housekeeping cadence.
type Config struct {
	NumWorkers               int
	WorkerCheckInterval      time.Duration
	CleanupInterval          time.Duration
	CompletedTaskMaxAge      time.Duration
	TaskTimeoutCheckInterval time.Duration

	// ShutdownTimeout bounds how long the supervisor waits for a worker
	// to exit after cancellation before giving up and logging a warning
	// instead of hanging forever.
	ShutdownTimeout time.Duration

	// LivenessGracePeriod is how long a worker may go without reporting
	// a loop tick before the supervisor treats it the same as an exited
	// one. Default 2 * WorkerCheckInterval.
	LivenessGracePeriod time.Duration
}

func DefaultConfig() Config {
	return Config{
		NumWorkers:               3,
		WorkerCheckInterval:      5 * time.Second,
		CleanupInterval:          60 * time.Second,
		CompletedTaskMaxAge:      300 * time.Second,
		TaskTimeoutCheckInterval: 2 * time.Second,
		ShutdownTimeout:          10 * time.Second,
		LivenessGracePeriod:      10 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.NumWorkers <= 0 {
		c.NumWorkers = d.NumWorkers
	}
	if c.WorkerCheckInterval <= 0 {
		c.WorkerCheckInterval = d.WorkerCheckInterval
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = d.CleanupInterval
	}
	if c.CompletedTaskMaxAge <= 0 {
		c.CompletedTaskMaxAge = d.CompletedTaskMaxAge
	}
	if c.TaskTimeoutCheckInterval <= 0 {
		c.TaskTimeoutCheckInterval = d.TaskTimeoutCheckInterval
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.LivenessGracePeriod <= 0 {
		c.LivenessGracePeriod = 2 * c.WorkerCheckInterval
	}
	return c
}
