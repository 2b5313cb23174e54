package output

import (
	"fmt"
	"io"
	"time"
)

// BannerInfo holds the identity fields displayed at the top of a run.
type BannerInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewBannerInfo creates a BannerInfo with today's date.
func NewBannerInfo(version, commit string) BannerInfo {
	return BannerInfo{
		Version: version,
		Commit:  commit,
		Date:    time.Now().UTC().Format("2006-01-02"),
	}
}

// Banner prints the single identity line: name, version, commit, date.
func Banner(w io.Writer, info BannerInfo, color bool) {
	name := "sboxbuild"
	rest := info.Version
	if info.Commit != "" && info.Commit != "unknown" {
		rest += " · " + info.Commit
	}
	if info.Date != "" {
		rest += " · " + info.Date
	}

	if color {
		fmt.Fprintf(w, "\n  \033[1;36m%s\033[0m  %s%s%s\n", name, colorCyan, rest, colorReset)
		return
	}
	fmt.Fprintf(w, "\n  %s  %s\n", name, rest)
}
