package cmd

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error

	// Reported is set when the failure was already shown to the user, so
	// Execute does not print it a second time.
	Reported bool
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

// Exit codes.
const (
	exitOK          = 0
	exitBuildFailed = 1
	exitConfigError = 2
)
