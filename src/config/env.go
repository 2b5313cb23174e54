package config

import (
	"strings"

	"github.com/caarlos0/env/v10"
)

// Environment variable names read by the resolver.
const (
	EnvFile      = "SBOX_BUILD_FILE"
	EnvProfile   = "SBOX_CONFIG"
	EnvJobs      = "SBOX_JOBS"
	EnvRoot      = "SBOX_ROOT"
	EnvDotnet    = "SBOX_DOTNET"
	EnvReportDir = "SBOX_REPORT_DIR"
	EnvEngine    = "SBOX_BUILD_ENGINE"
	EnvShaders   = "SBOX_BUILD_SHADERS"
	EnvContent   = "SBOX_BUILD_CONTENT"
)

// EnvConfig is the environment layer. Only variables present with a
// non-empty value are applied.
type EnvConfig struct {
	File      string `env:"SBOX_BUILD_FILE"`
	Profile   string `env:"SBOX_CONFIG"`
	Jobs      int    `env:"SBOX_JOBS"`
	Root      string `env:"SBOX_ROOT"`
	Dotnet    string `env:"SBOX_DOTNET"`
	ReportDir string `env:"SBOX_REPORT_DIR"`
	Engine    bool   `env:"SBOX_BUILD_ENGINE"`
	Shaders   bool   `env:"SBOX_BUILD_SHADERS"`
	Content   bool   `env:"SBOX_BUILD_CONTENT"`

	set map[string]bool
}

// ParseEnv decodes the environment layer from environ ("KEY=value" pairs,
// as returned by os.Environ).
func ParseEnv(environ []string) (EnvConfig, error) {
	ec := EnvConfig{set: map[string]bool{}}
	opts := env.Options{
		Environment: envMap(environ),
		OnSet: func(tag string, value any, isDefault bool) {
			if s, ok := value.(string); ok && s != "" && !isDefault {
				ec.set[tag] = true
			}
		},
	}
	if err := env.ParseWithOptions(&ec, opts); err != nil {
		return EnvConfig{}, &Error{Source: "env", Msg: "parsing environment", Err: err}
	}
	return ec, nil
}

// WithEnv layers environment overrides over c. A relative report directory
// is taken relative to the source root after SBOX_ROOT is applied.
func (c BuildConfiguration) WithEnv(ec EnvConfig) BuildConfiguration {
	out := c.clone()

	if ec.IsSet(EnvProfile) {
		out.Profile = ec.Profile
	}
	if ec.IsSet(EnvJobs) {
		out.Parallelism = ec.Jobs
	}
	if ec.IsSet(EnvRoot) {
		out.Root = resolvePath(c.Root, ec.Root)
	}
	if ec.IsSet(EnvDotnet) {
		out.Tool.Command = ec.Dotnet
	}
	if ec.IsSet(EnvReportDir) {
		out.ReportDir = resolvePath(out.Root, ec.ReportDir)
	}
	if ec.IsSet(EnvEngine) {
		out.RunEngine = ec.Engine
	}
	if ec.IsSet(EnvShaders) {
		out.RunShaders = ec.Shaders
	}
	if ec.IsSet(EnvContent) {
		out.RunContent = ec.Content
	}
	return out
}

func envMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		m[k] = v
	}
	return m
}

// IsSet reports whether the named variable contributed to this layer.
func (ec EnvConfig) IsSet(name string) bool {
	return ec.set[name]
}
