// Package stagetest provides an in-memory stage.Launcher for tests.
package stagetest

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sofmeright/sboxbuild/src/stage"
)

// Launcher records launches and finishes each stage with a scripted exit
// code. The zero value launches every stage and exits 0.
type Launcher struct {
	// ExitCodes maps a stage to the exit code its Wait reports.
	ExitCodes map[stage.Name]int
	// LaunchErrors maps a stage to an error returned by Launch.
	LaunchErrors map[stage.Name]error
	// Gate, if set, is called by Wait before it returns.
	Gate func(stage.Name)

	mu       sync.Mutex
	launches []Launch
	waits    []stage.Name
}

// Launch is one recorded Launch call.
type Launch struct {
	Name    stage.Name
	Profile string
}

// Launch implements stage.Launcher.
func (l *Launcher) Launch(name stage.Name, profile string) (stage.Handle, error) {
	l.mu.Lock()
	l.launches = append(l.launches, Launch{Name: name, Profile: profile})
	l.mu.Unlock()

	if err := l.LaunchErrors[name]; err != nil {
		if !errors.Is(err, stage.ErrLaunch) {
			err = fmt.Errorf("%w: %v", stage.ErrLaunch, err)
		}
		return nil, err
	}
	return &handle{l: l, name: name, start: time.Now()}, nil
}

// Launches returns the recorded launches in call order.
func (l *Launcher) Launches() []Launch {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Launch(nil), l.launches...)
}

// Names returns the launched stage names in call order.
func (l *Launcher) Names() []stage.Name {
	var names []stage.Name
	for _, c := range l.Launches() {
		names = append(names, c.Name)
	}
	return names
}

// Waited returns the stages whose Wait has returned, in completion order.
func (l *Launcher) Waited() []stage.Name {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]stage.Name(nil), l.waits...)
}

type handle struct {
	l     *Launcher
	name  stage.Name
	start time.Time

	once   sync.Once
	result stage.Result
}

func (h *handle) Name() stage.Name { return h.name }

func (h *handle) Wait() stage.Result {
	h.once.Do(func() {
		if h.l.Gate != nil {
			h.l.Gate(h.name)
		}
		code := h.l.ExitCodes[h.name]
		h.result = stage.Result{
			Name:      h.name,
			Succeeded: code == 0,
			ExitCode:  code,
			Duration:  time.Since(h.start),
		}
		if code != 0 {
			h.result.Err = fmt.Errorf("%w: %s exited with status %d", stage.ErrFailed, h.name, code)
		}

		h.l.mu.Lock()
		h.l.waits = append(h.l.waits, h.name)
		h.l.mu.Unlock()
	})
	return h.result
}
