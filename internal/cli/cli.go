// Package cli implements the hypercollate command-line interface.
//
// This package provides commands for collating marked-up witnesses into a
// variant graph and for inspecting single imported witnesses. The CLI is
// built using cobra and supports verbose logging via the charmbracelet/log
// library.
//
// # Commands
//
// The main commands are:
//   - collate: Align two or more witnesses and write the collation graph
//   - witness: Import a single witness and print a summary of its graph
//   - completion: Generate shell completion scripts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is attached to the command context, so commands and the collation hooks
// share one sink.
package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hypercollate/pkg/buildinfo"
	"github.com/matzehuels/hypercollate/pkg/config"
)

const appName = "hypercollate"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Hypercollate aligns variant witnesses of a text",
		Long:         `Hypercollate collates two or more witnesses of a text, including their in-text variation such as deletions, additions and apparatus readings, into a single hypergraph of shared and divergent readings.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.collateCommand())
	root.AddCommand(c.witnessCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Options Helpers
// =============================================================================

// loadConfig reads the config file at path, or returns the defaults when
// path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// sigilsFor returns the sigil for every file: the explicit list when given,
// otherwise each file's base name without extension.
func sigilsFor(files []string, explicit string) ([]string, error) {
	if explicit == "" {
		sigils := make([]string, len(files))
		for i, f := range files {
			base := filepath.Base(f)
			sigils[i] = strings.TrimSuffix(base, filepath.Ext(base))
		}
		return sigils, nil
	}
	sigils := strings.Split(explicit, ",")
	if len(sigils) != len(files) {
		return nil, fmt.Errorf("got %d sigils for %d files", len(sigils), len(files))
	}
	for i := range sigils {
		sigils[i] = strings.TrimSpace(sigils[i])
	}
	return sigils, nil
}

// validateFormat checks that format is one of the supported output formats.
func validateFormat(format string) error {
	for _, f := range config.Formats {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("invalid format: %s (must be one of: %s)", format, strings.Join(config.Formats, ", "))
}
