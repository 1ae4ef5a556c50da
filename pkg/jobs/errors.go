package jobs

import (
	"fmt"
	"time"
)

// FailedError is returned when a polled job reaches the terminal
// FAILED state. The job is server-terminal; retrying the wait will
// observe the same state.
type FailedError struct {
	JobID string
}

// Error implements the error interface.
func (e *FailedError) Error() string {
	return fmt.Sprintf("job %q failed", e.JobID)
}

// TimeoutError is returned when the maximum wait time elapses before a
// job reaches a terminal state.
type TimeoutError struct {
	JobID   string
	Elapsed time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for job %q after %s", e.JobID, e.Elapsed)
}
