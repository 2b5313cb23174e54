// Package stage launches the external build tool for one build stage and
// reports how it ended.
//
// A stage is started with Launcher.Launch, which returns as soon as the
// child process exists. The returned Handle is waited on exactly once to
// obtain the stage's Result. Nothing here cancels or retries a stage.
package stage

import "fmt"

// Name identifies a build stage.
type Name string

const (
	Engine  Name = "engine"
	Shaders Name = "shaders"
	Content Name = "content"
)

// All lists the stages in pipeline order.
var All = []Name{Engine, Shaders, Content}

// Subcommand returns the build tool subcommand for the stage.
func (n Name) Subcommand() string {
	switch n {
	case Engine:
		return "build"
	case Shaders:
		return "build-shaders"
	case Content:
		return "build-content"
	default:
		return ""
	}
}

// Valid reports whether n is a known stage.
func (n Name) Valid() bool {
	return n.Subcommand() != ""
}

func (n Name) String() string { return string(n) }

// Launcher starts stages.
type Launcher interface {
	Launch(name Name, profile string) (Handle, error)
}

// Handle is a started stage that has not been waited on yet.
type Handle interface {
	Name() Name
	// Wait blocks until the stage terminates. It must be called once.
	Wait() Result
}

func unknownStage(n Name) error {
	return fmt.Errorf("%w: unknown stage %q", ErrLaunch, string(n))
}
