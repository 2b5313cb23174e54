package output

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Colors for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// UseColorFor reports whether colored output should be used on w.
// NO_COLOR and TERM=dumb disable color before terminal detection.
func UseColorFor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTerminal(w) || IsCI()
}

// StageFailure writes the labeled line for a failed stage.
func StageFailure(w io.Writer, name, reason string, color bool) {
	label := "stage " + name + " failed"
	if color {
		label = colorRed + label + colorReset
	}
	fmt.Fprintf(w, "%s: %s\n", label, reason)
}

// ResultLine writes the one-line verdict printed last.
func ResultLine(w io.Writer, succeeded bool, failed []string, color bool) {
	msg := "Build succeeded."
	if !succeeded {
		msg = "Build failed."
		if len(failed) > 0 {
			msg = "Build failed: " + strings.Join(failed, ", ")
		}
	}
	fmt.Fprintf(w, "\n==> %s\n", bold(color, msg))
}

func bold(color bool, s string) string {
	if !color {
		return s
	}
	return colorBold + s + colorReset
}
