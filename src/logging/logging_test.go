package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		verbose bool
		debug   bool
		warn    bool
	}{
		{verbose: false, debug: false, warn: true},
		{verbose: true, debug: true, warn: true},
	}
	for _, tt := range tests {
		log, err := New(tt.verbose)
		if err != nil {
			t.Fatalf("New(%v): %v", tt.verbose, err)
		}
		if got := log.Core().Enabled(zapcore.DebugLevel); got != tt.debug {
			t.Errorf("New(%v): debug enabled = %v", tt.verbose, got)
		}
		if got := log.Core().Enabled(zapcore.WarnLevel); got != tt.warn {
			t.Errorf("New(%v): warn enabled = %v", tt.verbose, got)
		}
	}
}
