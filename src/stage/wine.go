package stage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sofmeright/sboxbuild/src/config"
)

// WineLauncher runs the build tool through the wine wrapper configured in
// config.Tool. Each Launch starts one child process that inherits the
// launcher's output writers.
type WineLauncher struct {
	Launcher []string // wrapper argv, e.g. xvfb-run -a wine; may be empty
	Command  string
	Args     []string
	Root     string // working directory of the child
	Project  string // absolute host path substituted for {project}
	Jobs     int

	Stdout io.Writer
	Stderr io.Writer
	Trace  io.Writer // receives "+ argv" before each start; nil disables
	Env    []string  // base environment; nil means os.Environ()

	Log *zap.Logger
}

// NewWineLauncher creates a launcher from a resolved configuration, writing
// child output to the process's stdout and stderr.
func NewWineLauncher(cfg config.BuildConfiguration, log *zap.Logger) *WineLauncher {
	if log == nil {
		log = zap.NewNop()
	}
	return &WineLauncher{
		Launcher: append([]string(nil), cfg.Tool.Launcher...),
		Command:  cfg.Tool.Command,
		Args:     append([]string(nil), cfg.Tool.Args...),
		Root:     cfg.Root,
		Project:  cfg.ProjectPath(),
		Jobs:     cfg.Parallelism,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Trace:    os.Stderr,
		Log:      log,
	}
}

// Argv returns the full command line for a stage.
func (l *WineLauncher) Argv(name Name, profile string) []string {
	repl := strings.NewReplacer(
		"{root}", WinePath(l.Root),
		"{project}", WinePath(l.Project),
		"{jobs}", strconv.Itoa(l.Jobs),
	)

	argv := make([]string, 0, len(l.Launcher)+len(l.Args)+4)
	argv = append(argv, l.Launcher...)
	argv = append(argv, l.Command)
	for _, a := range l.Args {
		argv = append(argv, repl.Replace(a))
	}
	return append(argv, name.Subcommand(), "--config", profile)
}

// Launch starts the stage and returns without waiting for it.
func (l *WineLauncher) Launch(name Name, profile string) (Handle, error) {
	if !name.Valid() {
		return nil, unknownStage(name)
	}

	argv := l.Argv(name, profile)
	if l.Trace != nil {
		fmt.Fprintf(l.Trace, "+ %s\n", strings.Join(argv, " "))
	}
	l.logger().Debug("launching stage",
		zap.String("stage", name.String()),
		zap.Strings("argv", argv),
		zap.String("dir", l.Root),
	)

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = l.Root
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr

	base := l.Env
	if base == nil {
		base = os.Environ()
	}
	cmd.Env = append(append([]string(nil), base...),
		config.EnvJobs+"="+strconv.Itoa(l.Jobs),
		config.EnvProfile+"="+profile,
	)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLaunch, name, err)
	}
	l.logger().Debug("stage started",
		zap.String("stage", name.String()),
		zap.Int("pid", cmd.Process.Pid),
	)

	return &procHandle{name: name, cmd: cmd, start: start, log: l.logger()}, nil
}

func (l *WineLauncher) logger() *zap.Logger {
	if l.Log == nil {
		return zap.NewNop()
	}
	return l.Log
}

// procHandle tracks one running child process.
type procHandle struct {
	name  Name
	cmd   *exec.Cmd
	start time.Time
	log   *zap.Logger

	once   sync.Once
	result Result
}

func (h *procHandle) Name() Name { return h.name }

func (h *procHandle) Wait() Result {
	h.once.Do(func() {
		err := h.cmd.Wait()

		code := 0
		if h.cmd.ProcessState != nil {
			code = h.cmd.ProcessState.ExitCode()
		}
		res := exitResult(h.name, code, time.Since(h.start))

		// Exit status 0 with an error means output copying failed.
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) && res.Succeeded {
			res.Succeeded = false
			res.Err = fmt.Errorf("%w: %s: %v", ErrFailed, h.name, err)
		}

		h.log.Debug("stage finished",
			zap.String("stage", h.name.String()),
			zap.Int("exit_code", res.ExitCode),
			zap.Duration("duration", res.Duration),
		)
		h.result = res
	})
	return h.result
}

// WinePath maps an absolute host path into wine's Z: drive, which exposes
// the host root. Relative paths only have their separators normalized.
func WinePath(p string) string {
	if p == "" {
		return ""
	}
	slashed := filepath.ToSlash(p)
	if !filepath.IsAbs(p) {
		return slashed
	}
	return "Z:/" + strings.TrimLeft(slashed, "/")
}
