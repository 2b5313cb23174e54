package stage

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrLaunch means the stage's process could not be started at all.
	ErrLaunch = errors.New("stage launch failed")

	// ErrFailed means the stage's process ran and exited non-zero.
	ErrFailed = errors.New("stage failed")
)

// LaunchExitCode is the exit code recorded for a stage that never started.
const LaunchExitCode = -1

// Result is the terminal outcome of one stage.
type Result struct {
	Name      Name
	Succeeded bool
	ExitCode  int
	Duration  time.Duration
	Err       error // nil on success; wraps ErrLaunch or ErrFailed otherwise
}

// Status returns "success" or "failed" for display.
func (r Result) Status() string {
	if r.Succeeded {
		return "success"
	}
	return "failed"
}

// Reason is a short human description of a failure.
func (r Result) Reason() string {
	switch {
	case r.Succeeded:
		return ""
	case errors.Is(r.Err, ErrLaunch):
		return r.Err.Error()
	default:
		return fmt.Sprintf("exit status %d", r.ExitCode)
	}
}

// LaunchFailure returns the Result recorded for a stage whose process
// could not be started.
func LaunchFailure(name Name, err error) Result {
	if !errors.Is(err, ErrLaunch) {
		err = fmt.Errorf("%w: %v", ErrLaunch, err)
	}
	return Result{Name: name, ExitCode: LaunchExitCode, Err: err}
}

// exitResult converts a process exit status into a Result.
func exitResult(name Name, code int, d time.Duration) Result {
	r := Result{Name: name, ExitCode: code, Duration: d, Succeeded: code == 0}
	if !r.Succeeded {
		r.Err = fmt.Errorf("%w: %s exited with status %d", ErrFailed, name, code)
	}
	return r
}
