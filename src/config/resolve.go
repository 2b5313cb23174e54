package config

import "io"

// Input is everything the resolver reads.
type Input struct {
	Args    []string  // command-line arguments, without the program name
	Environ []string  // "KEY=value" pairs
	WorkDir string    // base for relative paths and default file lookup
	Usage   io.Writer // receives the help text on --help
}

// Resolve builds the final configuration: defaults, then the config file,
// then the environment, then flags.
//
// Flags are parsed before anything else is read so that --help short-circuits
// and an unknown flag fails before any file or environment problem is
// reported.
func Resolve(in Input) (BuildConfiguration, error) {
	flags, err := ParseFlags(in.Args, in.Usage)
	if err != nil {
		return BuildConfiguration{}, err
	}

	envLayer, err := ParseEnv(in.Environ)
	if err != nil {
		return BuildConfiguration{}, err
	}

	file := envLayer.File
	if flags.Changed("file") {
		file = flags.File
	}
	fc, path, found, err := LoadFile(in.WorkDir, file)
	if err != nil {
		return BuildConfiguration{}, err
	}

	cfg := Defaults(in.WorkDir)
	if found {
		cfg = cfg.WithFile(fc, path)
	}
	cfg = cfg.WithEnv(envLayer).WithFlags(flags)

	if err := cfg.Validate(); err != nil {
		return BuildConfiguration{}, err
	}
	return cfg, nil
}
