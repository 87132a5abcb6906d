package config

import "time"

const (
	defaultShutdownTimeout = 10 * time.Second

	// defaultRetryDelay is how long a task found not pending waits before its
	// replacement task is delivered.
	defaultRetryDelay = time.Minute
)
