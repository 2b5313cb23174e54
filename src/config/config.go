package config

import (
	"path/filepath"
	"runtime"
)

const (
	// DefaultProfile is the build profile used when nothing else selects one.
	DefaultProfile = "Developer"

	// DefaultProject is the build tool project, relative to the source root.
	DefaultProject = "engine/Tools/SboxBuild/SboxBuild.csproj"

	defaultDotnet   = `C:\Program Files\dotnet\dotnet.exe`
	defaultFileYAML = ".sboxbuild.yml"
	defaultFileTOML = ".sboxbuild.toml"
)

// Tool describes how the external build tool is invoked.
//
// The final argv is Launcher, then Command, then Args, then the stage
// subcommand and profile. Args may contain {root}, {project} and {jobs}
// placeholders.
type Tool struct {
	Launcher []string
	Command  string
	Args     []string
	Project  string // relative to Root unless absolute
}

// BuildConfiguration is the resolved configuration of a single invocation.
//
// Values are produced by the With* layer methods, each of which returns a
// new snapshot and leaves the receiver untouched.
type BuildConfiguration struct {
	Profile     string
	Parallelism int

	RunEngine  bool
	RunShaders bool
	RunContent bool

	Root      string // source tree the tool runs in
	Tool      Tool
	ReportDir string // JUnit output directory; empty disables the report
	File      string // config file that contributed to this snapshot, if any

	Verbose bool
	DryRun  bool
}

// Defaults returns the built-in layer rooted at workDir.
func Defaults(workDir string) BuildConfiguration {
	return BuildConfiguration{
		Profile:     DefaultProfile,
		Parallelism: runtime.NumCPU(),
		RunEngine:   true,
		RunShaders:  true,
		RunContent:  true,
		Root:        workDir,
		Tool: Tool{
			Launcher: []string{"xvfb-run", "-a", "wine"},
			Command:  defaultDotnet,
			Args:     []string{"run", "--project", "{project}", "--"},
			Project:  DefaultProject,
		},
	}
}

// AnyStage reports whether at least one stage is enabled.
func (c BuildConfiguration) AnyStage() bool {
	return c.RunEngine || c.RunShaders || c.RunContent
}

// ProjectPath returns the absolute host path of the tool project.
func (c BuildConfiguration) ProjectPath() string {
	if c.Tool.Project == "" || filepath.IsAbs(c.Tool.Project) {
		return c.Tool.Project
	}
	return filepath.Join(c.Root, c.Tool.Project)
}

// clone returns a copy that shares no slices with c.
func (c BuildConfiguration) clone() BuildConfiguration {
	out := c
	out.Tool.Launcher = append([]string(nil), c.Tool.Launcher...)
	out.Tool.Args = append([]string(nil), c.Tool.Args...)
	return out
}

// resolvePath makes p absolute against base.
func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
