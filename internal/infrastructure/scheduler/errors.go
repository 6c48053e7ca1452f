package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when trying to submit a job to a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobQueueFull is returned when the job queue is full
	ErrJobQueueFull = errors.New("job queue is full")

	// ErrUnknownJob is returned for a job name with no registered executor
	ErrUnknownJob = errors.New("unknown job")

	// ErrJobInFlight is returned when a run of the same job is still queued or running
	ErrJobInFlight = errors.New("job already in flight")

	// ErrInvalidSchedule is returned for a cron expression that cannot be parsed
	ErrInvalidSchedule = errors.New("invalid schedule")
)
