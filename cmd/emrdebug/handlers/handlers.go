// Package handlers implements the business logic for CLI commands.
//
// Handlers are called by the command definitions in the commands package
// and write their results to the writer they are given. Collaborators are
// held in package-level factory variables so tests can replace them.
package handlers

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/aws-samples/remote-debugging-with-emr/internal/config"
	"github.com/aws-samples/remote-debugging-with-emr/internal/orchestration"
	"github.com/aws-samples/remote-debugging-with-emr/internal/ui/tui"
)

// Factory function variables shared by the handlers.
var (
	// findConfigFile locates emrdebug.yaml from the working directory up.
	findConfigFile = config.FindConfigFile

	// loadConfigFile loads and validates a configuration file.
	loadConfigFile = config.Load

	// loadFromEnvironment builds a configuration from environment variables alone.
	loadFromEnvironment = config.FromEnvironment

	// newAssembler creates the topology assembler.
	newAssembler = orchestration.NewAssembler

	// runProgress shows live phase progress while the topology is assembled.
	runProgress = tui.Run

	// logOutput receives log lines from the assembler.
	logOutput io.Writer = os.Stderr

	// writeFile writes rendered artifacts.
	writeFile = os.WriteFile

	// isInteractiveTTY reports whether stdout is a terminal.
	isInteractiveTTY = func() bool {
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}
)

// loadConfig loads the configuration at path. An empty path searches for
// emrdebug.yaml and falls back to environment variables when none exists.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return loadConfigFile(path)
	}

	found, err := findConfigFile()
	if err != nil {
		cfg, envErr := loadFromEnvironment()
		if envErr != nil {
			return nil, fmt.Errorf("%w; environment-only configuration failed: %w", err, envErr)
		}
		return cfg, nil
	}
	return loadConfigFile(found)
}
