package orchestrator

import "github.com/sofmeright/sboxbuild/src/stage"

// Exit statuses reported for an outcome.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// Outcome aggregates the results of one run.
type Outcome struct {
	Succeeded bool
	Results   []stage.Result // in launch order
	Skipped   []stage.Name   // disabled, or not launched after an engine failure
}

func (o Outcome) finish() Outcome {
	o.Succeeded = true
	for _, r := range o.Results {
		if !r.Succeeded {
			o.Succeeded = false
			break
		}
	}
	return o
}

// Failed returns the results of the stages that did not succeed.
func (o Outcome) Failed() []stage.Result {
	var failed []stage.Result
	for _, r := range o.Results {
		if !r.Succeeded {
			failed = append(failed, r)
		}
	}
	return failed
}

// Result returns the result for name, if that stage ran.
func (o Outcome) Result(name stage.Name) (stage.Result, bool) {
	for _, r := range o.Results {
		if r.Name == name {
			return r, true
		}
	}
	return stage.Result{}, false
}

// ExitCode is the process exit status for the outcome.
func (o Outcome) ExitCode() int {
	if o.Succeeded {
		return ExitSuccess
	}
	return ExitFailure
}
