package config

import (
	"fmt"
	"strings"
)

// Validate checks the invariants of a resolved configuration.
// All violations are reported together.
func (c BuildConfiguration) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Profile) == "" {
		errs = append(errs, "profile: must not be empty")
	}
	if c.Parallelism < 1 {
		errs = append(errs, fmt.Sprintf("jobs: must be a positive integer, got %d", c.Parallelism))
	}
	if strings.TrimSpace(c.Tool.Command) == "" {
		errs = append(errs, "tool.command: must not be empty")
	}
	if c.Root == "" {
		errs = append(errs, "root: must not be empty")
	}
	for i, a := range c.Tool.Launcher {
		if a == "" {
			errs = append(errs, fmt.Sprintf("tool.launcher[%d]: must not be empty", i))
		}
	}

	if len(errs) > 0 {
		return &Error{Source: "validate", Msg: strings.Join(errs, "; ")}
	}
	return nil
}
