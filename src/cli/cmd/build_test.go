package cmd

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/sofmeright/sboxbuild/src/config"
	"github.com/sofmeright/sboxbuild/src/stage"
	"github.com/sofmeright/sboxbuild/src/stage/stagetest"
)

type harness struct {
	deps     deps
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	launcher *stagetest.Launcher
}

func newHarness(t *testing.T, codes map[stage.Name]int, environ ...string) *harness {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	t.Setenv("GITLAB_CI", "")

	h := &harness{
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
		launcher: &stagetest.Launcher{ExitCodes: codes},
	}
	h.deps = deps{
		stdout:  h.stdout,
		stderr:  h.stderr,
		environ: append([]string{}, environ...),
		workDir: t.TempDir(),
		newLauncher: func(config.BuildConfiguration, *zap.Logger) stage.Launcher {
			return h.launcher
		},
	}
	return h
}

func exitCodeOf(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return exitOK
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("err %v (%T) is not an ExitError", err, err)
	}
	return exitErr.Code
}

func TestRunBuildSuccess(t *testing.T) {
	h := newHarness(t, nil)

	if err := runBuild(h.deps, nil); err != nil {
		t.Fatalf("runBuild: %v", err)
	}
	want := []stage.Name{stage.Engine, stage.Shaders, stage.Content}
	if got := h.launcher.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("launches = %v, want %v", got, want)
	}
	if !strings.Contains(h.stdout.String(), "==> Build succeeded.") {
		t.Errorf("stdout missing result line:\n%s", h.stdout)
	}
	if h.stderr.Len() != 0 {
		t.Errorf("stderr = %q, want empty", h.stderr)
	}
}

func TestRunBuildOptionalStageFails(t *testing.T) {
	h := newHarness(t, map[stage.Name]int{stage.Shaders: 1})

	err := runBuild(h.deps, nil)
	if code := exitCodeOf(t, err); code != exitBuildFailed {
		t.Fatalf("exit code = %d, want %d", code, exitBuildFailed)
	}
	if !errors.Is(err, stage.ErrFailed) {
		t.Errorf("err = %v, want ErrFailed", err)
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && !exitErr.Reported {
		t.Error("build failure not marked as reported")
	}

	if got := len(h.launcher.Waited()); got != 3 {
		t.Errorf("%d stages waited on, want 3", got)
	}
	if !strings.Contains(h.stderr.String(), "stage shaders failed: exit status 1") {
		t.Errorf("stderr = %q", h.stderr)
	}
	if strings.Contains(h.stderr.String(), "\033[") {
		t.Errorf("stderr carries color codes: %q", h.stderr)
	}
	if strings.Contains(h.stderr.String(), "stage content failed") {
		t.Errorf("content reported as failed: %q", h.stderr)
	}
	if !strings.Contains(h.stdout.String(), "Build failed: shaders") {
		t.Errorf("stdout missing failure verdict:\n%s", h.stdout)
	}
}

// Color on the failure lines depends on stderr itself, not on stdout.
func TestRunBuildStderrColorFollowsStream(t *testing.T) {
	h := newHarness(t, map[stage.Name]int{stage.Content: 3})
	t.Setenv("NO_COLOR", "")
	t.Setenv("CI", "")
	t.Setenv("TERM", "xterm-256color")

	_ = runBuild(h.deps, nil)
	if got := h.stderr.String(); got != "stage content failed: exit status 3\n" {
		t.Errorf("stderr = %q, want a plain failure line", got)
	}
}

func TestRunBuildEngineFails(t *testing.T) {
	h := newHarness(t, map[stage.Name]int{stage.Engine: 9})

	err := runBuild(h.deps, nil)
	if code := exitCodeOf(t, err); code != exitBuildFailed {
		t.Fatalf("exit code = %d, want %d", code, exitBuildFailed)
	}
	if got := h.launcher.Names(); !reflect.DeepEqual(got, []stage.Name{stage.Engine}) {
		t.Errorf("launches = %v, want engine only", got)
	}
	if !strings.Contains(h.stdout.String(), "engine failed") {
		t.Errorf("summary does not explain skipped stages:\n%s", h.stdout)
	}
}

func TestRunBuildConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		environ []string
	}{
		{"unknown flag", []string{"--bogus-flag"}, nil},
		{"unknown flag before help", []string{"--bogus-flag", "--help"}, nil},
		{"double dash", []string{"--"}, nil},
		{"bad jobs", []string{"--jobs", "0"}, nil},
		{"bad env", nil, []string{config.EnvJobs + "=lots"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil, tt.environ...)
			err := runBuild(h.deps, tt.args)
			if code := exitCodeOf(t, err); code != exitConfigError {
				t.Fatalf("exit code = %d, want %d (err %v)", code, exitConfigError, err)
			}
			if !errors.Is(err, config.ErrConfiguration) {
				t.Errorf("err = %v, want ErrConfiguration", err)
			}
			if n := len(h.launcher.Launches()); n != 0 {
				t.Errorf("%d stages launched, want none", n)
			}
		})
	}
}

func TestRunBuildHelp(t *testing.T) {
	for _, args := range [][]string{{"--help"}, {"-h"}, {"--only-engine", "--help", "--bogus-flag"}} {
		h := newHarness(t, nil)
		if err := runBuild(h.deps, args); err != nil {
			t.Fatalf("runBuild(%v) = %v, want nil", args, err)
		}
		if !strings.Contains(h.stdout.String(), "Usage:") {
			t.Errorf("runBuild(%v) printed no usage:\n%s", args, h.stdout)
		}
		if n := len(h.launcher.Launches()); n != 0 {
			t.Errorf("runBuild(%v) launched %d stages", args, n)
		}
	}
}

func TestRunBuildOnlyEngine(t *testing.T) {
	h := newHarness(t, nil, config.EnvShaders+"=true")

	if err := runBuild(h.deps, []string{"--no-content", "--only-engine", "--no-shaders"}); err != nil {
		t.Fatalf("runBuild: %v", err)
	}
	if got := h.launcher.Names(); !reflect.DeepEqual(got, []stage.Name{stage.Engine}) {
		t.Errorf("launches = %v, want engine only", got)
	}
}

func TestRunBuildProfileReachesStages(t *testing.T) {
	h := newHarness(t, nil, config.EnvProfile+"=Retail")

	if err := runBuild(h.deps, []string{"--no-engine"}); err != nil {
		t.Fatalf("runBuild: %v", err)
	}
	for _, l := range h.launcher.Launches() {
		if l.Profile != "Retail" {
			t.Errorf("%s launched with profile %q", l.Name, l.Profile)
		}
	}
}

func TestRunBuildNoStages(t *testing.T) {
	h := newHarness(t, nil)

	if err := runBuild(h.deps, []string{"--no-engine", "--no-shaders", "--no-content"}); err != nil {
		t.Fatalf("runBuild: %v", err)
	}
	if n := len(h.launcher.Launches()); n != 0 {
		t.Errorf("%d stages launched, want none", n)
	}
	if !strings.Contains(h.stdout.String(), "Nothing to build") {
		t.Errorf("stdout:\n%s", h.stdout)
	}
}

func TestRunBuildDryRun(t *testing.T) {
	h := newHarness(t, nil)
	h.deps.newLauncher = func(cfg config.BuildConfiguration, log *zap.Logger) stage.Launcher {
		return stage.NewWineLauncher(cfg, log)
	}

	if err := runBuild(h.deps, []string{"--dry-run", "--profile", "Release"}); err != nil {
		t.Fatalf("runBuild: %v", err)
	}
	out := h.stdout.String()
	for _, want := range []string{"xvfb-run -a wine", "build-shaders --config Release", "build-content --config Release"} {
		if !strings.Contains(out, want) {
			t.Errorf("dry-run output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Build succeeded") {
		t.Errorf("dry-run reported a build result:\n%s", out)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{&ExitError{Code: exitConfigError, Err: errors.New("bad")}, 2},
		{&ExitError{Code: exitBuildFailed, Err: stage.ErrFailed}, 1},
		{errors.New("unexpected"), 1},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	defer versionCmd.SetOut(nil)

	if err := versionCmd.RunE(versionCmd, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "sboxbuild ") {
		t.Errorf("version output = %q", buf.String())
	}
}
