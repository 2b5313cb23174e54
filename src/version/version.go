// Package version holds the identity of the sboxbuild binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Injected at build time via -ldflags "-X .../src/version.Version=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func init() {
	fillFromBuildInfo(debug.ReadBuildInfo())
}

// fillFromBuildInfo backfills values ldflags left at their defaults, so a
// binary produced by `go install` still reports where it came from.
func fillFromBuildInfo(info *debug.BuildInfo, ok bool) {
	if !ok || info == nil {
		return
	}
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == "unknown" && len(s.Value) >= 7 {
				Commit = s.Value[:7]
			}
		case "vcs.time":
			if BuildDate == "unknown" && s.Value != "" {
				BuildDate = s.Value
			}
		}
	}
}

// String returns a human-readable version string.
func String() string {
	return fmt.Sprintf("sboxbuild %s (%s, %s) %s/%s", Version, Commit, BuildDate, runtime.GOOS, runtime.GOARCH)
}
