package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk configuration (.sboxbuild.yml or .sboxbuild.toml).
// Unset keys leave the lower layer untouched.
type FileConfig struct {
	Profile   string     `yaml:"profile" toml:"profile"`
	Jobs      int        `yaml:"jobs" toml:"jobs"`
	Root      string     `yaml:"root" toml:"root"`
	ReportDir string     `yaml:"report_dir" toml:"report_dir"`
	Stages    StagesFile `yaml:"stages" toml:"stages"`
	Tool      ToolFile   `yaml:"tool" toml:"tool"`
}

// StagesFile holds the per-stage toggles. Nil means "not set".
type StagesFile struct {
	Engine  *bool `yaml:"engine" toml:"engine"`
	Shaders *bool `yaml:"shaders" toml:"shaders"`
	Content *bool `yaml:"content" toml:"content"`
}

// ToolFile overrides the tool invocation. An explicit empty launcher list
// runs the tool without the wine wrapper.
type ToolFile struct {
	Launcher *[]string `yaml:"launcher" toml:"launcher"`
	Command  string    `yaml:"command" toml:"command"`
	Args     *[]string `yaml:"args" toml:"args"`
	Project  string    `yaml:"project" toml:"project"`
}

// LoadFile reads a configuration file.
// If path is empty, it tries the default YAML then TOML file in workDir and
// returns found=false when neither exists. An explicitly named file must exist.
func LoadFile(workDir, path string) (fc FileConfig, resolved string, found bool, err error) {
	candidates := []string{path}
	explicit := path != ""
	if !explicit {
		candidates = []string{defaultFileYAML, defaultFileTOML}
	}

	for _, c := range candidates {
		p := resolvePath(workDir, c)
		data, readErr := os.ReadFile(p)
		if readErr != nil {
			if errors.Is(readErr, fs.ErrNotExist) && !explicit {
				continue
			}
			return FileConfig{}, p, false, &Error{Source: "file", Msg: "reading " + p, Err: readErr}
		}

		if err := decodeFile(p, data, &fc); err != nil {
			return FileConfig{}, p, false, &Error{Source: "file", Msg: "parsing " + p, Err: err}
		}
		return fc, p, true, nil
	}
	return FileConfig{}, "", false, nil
}

// decodeFile picks the decoder from the file extension.
func decodeFile(path string, data []byte, fc *FileConfig) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Unmarshal(data, fc)
	}
	return yaml.Unmarshal(data, fc)
}

// WithFile layers a config file read from path over c. Relative paths in the
// file are taken relative to the file's directory.
func (c BuildConfiguration) WithFile(fc FileConfig, path string) BuildConfiguration {
	out := c.clone()
	out.File = path
	dir := filepath.Dir(path)

	if fc.Profile != "" {
		out.Profile = fc.Profile
	}
	if fc.Jobs != 0 {
		out.Parallelism = fc.Jobs
	}
	if fc.Root != "" {
		out.Root = resolvePath(dir, fc.Root)
	}
	if fc.ReportDir != "" {
		out.ReportDir = resolvePath(dir, fc.ReportDir)
	}

	if fc.Stages.Engine != nil {
		out.RunEngine = *fc.Stages.Engine
	}
	if fc.Stages.Shaders != nil {
		out.RunShaders = *fc.Stages.Shaders
	}
	if fc.Stages.Content != nil {
		out.RunContent = *fc.Stages.Content
	}

	if fc.Tool.Launcher != nil {
		out.Tool.Launcher = append([]string(nil), (*fc.Tool.Launcher)...)
	}
	if fc.Tool.Command != "" {
		out.Tool.Command = fc.Tool.Command
	}
	if fc.Tool.Args != nil {
		out.Tool.Args = append([]string(nil), (*fc.Tool.Args)...)
	}
	if fc.Tool.Project != "" {
		out.Tool.Project = fc.Tool.Project
	}
	return out
}
