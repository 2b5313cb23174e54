package main

import (
	"os"

	"github.com/sofmeright/sboxbuild/src/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
