package config

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration matches every error produced while resolving a
	// BuildConfiguration.
	ErrConfiguration = errors.New("configuration error")

	// ErrHelp is returned when --help or -h was encountered. Usage has
	// already been written; the caller should exit successfully.
	ErrHelp = errors.New("help requested")
)

// Error describes a configuration problem and the layer it came from.
type Error struct {
	Source string // "flags", "env", "file", "validate"
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports ErrConfiguration as a match so callers can test the kind
// without knowing the layer.
func (e *Error) Is(target error) bool { return target == ErrConfiguration }

func configErr(source, format string, args ...any) *Error {
	return &Error{Source: source, Msg: fmt.Sprintf(format, args...)}
}
