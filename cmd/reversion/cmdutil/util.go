// Package cmdutil provides shared utilities for reversion CLI commands.
package cmdutil

import (
	"fmt"
	"io"
	"os"

	"github.com/reversion-fs/reversion/internal/cli/output"
	"github.com/reversion-fs/reversion/internal/cli/prompt"
	"github.com/reversion-fs/reversion/pkg/config"
	"github.com/reversion-fs/reversion/pkg/workdir"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values.
type GlobalFlags struct {
	Repo       string
	ConfigPath string
	Output     string
	NoColor    bool
	Verbose    bool
}

// ResolveRepoPath implements spec §6's --repo resolution order: the
// --repo flag, then REVERSION_DEFAULT_REPO, then the loaded config's
// default_repo, then config.Default()'s app-data fallback.
func ResolveRepoPath() (string, error) {
	if Flags.Repo != "" {
		return Flags.Repo, nil
	}
	if env := os.Getenv("REVERSION_DEFAULT_REPO"); env != "" {
		return env, nil
	}

	cfg, err := config.Load(Flags.ConfigPath)
	if err != nil {
		return "", fmt.Errorf("cmdutil: loading config: %w", err)
	}
	if cfg.DefaultRepo != "" {
		return cfg.DefaultRepo, nil
	}
	return config.Default().DefaultRepo, nil
}

// OpenWorkDir resolves --repo and opens the work directory at that path.
func OpenWorkDir() (*workdir.WorkDir, error) {
	path, err := ResolveRepoPath()
	if err != nil {
		return nil, err
	}
	return workdir.Open(path)
}

// GetOutputFormatParsed returns the parsed output format.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// IsColorDisabled returns whether color output is disabled.
func IsColorDisabled() bool {
	return Flags.NoColor
}

// PrintOutput prints data in the specified format (JSON, YAML, or table).
// For table format, it displays emptyMsg if data is empty, otherwise uses
// the tableRenderer.
func PrintOutput(w io.Writer, data any, isEmpty bool, emptyMsg string, tableRenderer output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		if isEmpty {
			_, _ = fmt.Fprintln(w, emptyMsg)
			return nil
		}
		return output.PrintTable(w, tableRenderer)
	}
}

// PrintResource prints a single resource: JSON/YAML for those formats, or
// a key/value table built from pairs for the table format.
func PrintResource(w io.Writer, data any, pairs [][2]string) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		return output.SimpleTable(w, pairs)
	}
}

// PrintSuccess prints a success message if the output format is table.
func PrintSuccess(msg string) {
	format, err := GetOutputFormatParsed()
	if err != nil || format != output.FormatTable {
		return
	}
	printer := output.NewPrinter(os.Stdout, format, !IsColorDisabled())
	printer.Success(msg)
}

// RunWithConfirmation prompts for confirmation (unless force is true) and
// runs actionFn, printing successMsg on success.
func RunWithConfirmation(label, successMsg string, force bool, actionFn func() error) error {
	confirmed, err := prompt.ConfirmWithForce(label, force)
	if err != nil {
		return HandleAbort(err)
	}
	if !confirmed {
		fmt.Println("Aborted.")
		return nil
	}

	if err := actionFn(); err != nil {
		return err
	}

	PrintSuccess(successMsg)
	return nil
}

// HandleAbort checks if err is an abort (Ctrl+C) and prints a message.
// Returns nil for abort (user cancelled), otherwise returns err unchanged.
func HandleAbort(err error) error {
	if prompt.IsAborted(err) {
		fmt.Println("\nAborted.")
		return nil
	}
	return err
}
