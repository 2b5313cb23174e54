package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
)

// FlagConfig is the command-line layer. Only flags that appeared on the
// command line are applied.
type FlagConfig struct {
	NoEngine   bool
	NoShaders  bool
	NoContent  bool
	OnlyEngine bool

	Profile   string
	Jobs      int
	File      string
	ReportDir string
	Verbose   bool
	DryRun    bool

	changed map[string]bool
}

// newFlagSet registers the build flags into a fresh set bound to fc.
func newFlagSet(fc *FlagConfig) *pflag.FlagSet {
	fs := pflag.NewFlagSet("sboxbuild", pflag.ContinueOnError)
	fs.SortFlags = false

	fs.BoolVar(&fc.NoEngine, "no-engine", false, "skip the engine stage")
	fs.BoolVar(&fc.NoShaders, "no-shaders", false, "skip the shaders stage")
	fs.BoolVar(&fc.NoContent, "no-content", false, "skip the content stage")
	fs.BoolVar(&fc.OnlyEngine, "only-engine", false, "build the engine only (skips shaders and content)")
	fs.StringVar(&fc.Profile, "profile", "", "build profile (default $"+EnvProfile+" or "+DefaultProfile+")")
	fs.IntVarP(&fc.Jobs, "jobs", "j", 0, "parallelism hint passed to the build tool (default $"+EnvJobs+" or CPU count)")
	fs.StringVarP(&fc.File, "file", "f", "", "config file (default: "+defaultFileYAML+" or "+defaultFileTOML+")")
	fs.StringVar(&fc.ReportDir, "report-dir", "", "write a JUnit report of stage results to this directory (relative to the source root)")
	fs.BoolVarP(&fc.Verbose, "verbose", "v", false, "verbose output")
	fs.BoolVar(&fc.DryRun, "dry-run", false, "show the plan without executing")
	return fs
}

// ParseFlags parses args in order. The first --help or -h stops parsing,
// writes usage to w and returns ErrHelp, so tokens after it are never
// examined. Unknown flags, a bare "--" and positional arguments are
// configuration errors.
func ParseFlags(args []string, w io.Writer) (FlagConfig, error) {
	fc := FlagConfig{changed: map[string]bool{}}
	fs := newFlagSet(&fc)
	fs.SetOutput(w)
	fs.Usage = func() { writeUsage(w, fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return FlagConfig{}, ErrHelp
		}
		return FlagConfig{}, &Error{Source: "flags", Msg: err.Error()}
	}
	if fs.ArgsLenAtDash() != -1 {
		return FlagConfig{}, configErr("flags", "unexpected argument %q", "--")
	}
	if fs.NArg() > 0 {
		return FlagConfig{}, configErr("flags", "unexpected argument %q", fs.Arg(0))
	}

	fs.Visit(func(f *pflag.Flag) { fc.changed[f.Name] = true })
	return fc, nil
}

// Changed reports whether the named flag appeared on the command line.
func (fc FlagConfig) Changed(name string) bool {
	return fc.changed[name]
}

// WithFlags layers command-line overrides over c. --only-engine is applied
// last so it wins regardless of where it appeared.
func (c BuildConfiguration) WithFlags(fc FlagConfig) BuildConfiguration {
	out := c.clone()

	if fc.NoEngine {
		out.RunEngine = false
	}
	if fc.NoShaders {
		out.RunShaders = false
	}
	if fc.NoContent {
		out.RunContent = false
	}
	if fc.Changed("profile") {
		out.Profile = fc.Profile
	}
	if fc.Changed("jobs") {
		out.Parallelism = fc.Jobs
	}
	if fc.Changed("report-dir") {
		out.ReportDir = resolvePath(out.Root, fc.ReportDir)
	}
	if fc.Verbose {
		out.Verbose = true
	}
	if fc.DryRun {
		out.DryRun = true
	}

	if fc.OnlyEngine {
		out.RunShaders = false
		out.RunContent = false
	}
	return out
}

// Usage returns the help text.
func Usage() string {
	var b strings.Builder
	var fc FlagConfig
	writeUsage(&b, newFlagSet(&fc))
	return b.String()
}

func writeUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprint(w, `sboxbuild: staged engine, shader and content build under wine.

Usage:
  sboxbuild [flags]
  sboxbuild version

The engine stage runs first. Shaders and content run in parallel once the
engine build has succeeded.

Flags:
  -h, --help           show this help
`)
	fmt.Fprint(w, fs.FlagUsages())
	fmt.Fprintf(w, `
Environment:
  %-20s build profile
  %-20s parallelism hint
  %-20s source root
  %-20s path of dotnet.exe inside wine
  %-20s config file
  %-20s JUnit report directory (relative to the source root)
  %-20s enable/disable the engine stage (true/false)
  %-20s enable/disable the shaders stage
  %-20s enable/disable the content stage
`, EnvProfile, EnvJobs, EnvRoot, EnvDotnet, EnvFile, EnvReportDir, EnvEngine, EnvShaders, EnvContent)
}
