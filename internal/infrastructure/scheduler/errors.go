package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when trying to submit a job to a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobQueueFull is returned when the job queue is full
	ErrJobQueueFull = errors.New("job queue is full")

	// ErrUnknownJob is returned for job names that were never registered
	ErrUnknownJob = errors.New("unknown job")

	// ErrJobAlreadyRunning is returned when a job of the same name is queued or running
	ErrJobAlreadyRunning = errors.New("job already queued or running")
)
