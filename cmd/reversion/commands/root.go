// Package commands implements the reversion CLI's command tree.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/reversion-fs/reversion/cmd/reversion/cmdutil"
	daemoncmd "github.com/reversion-fs/reversion/cmd/reversion/commands/daemon"
	snapshotcmd "github.com/reversion-fs/reversion/cmd/reversion/commands/snapshot"
	tagcmd "github.com/reversion-fs/reversion/cmd/reversion/commands/tag"
	timelinecmd "github.com/reversion-fs/reversion/cmd/reversion/commands/timeline"
	versioncmd "github.com/reversion-fs/reversion/cmd/reversion/commands/version"
	workdircmd "github.com/reversion-fs/reversion/cmd/reversion/commands/workdir"
	"github.com/reversion-fs/reversion/internal/logger"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "reversion",
	Short: "Reversion - local file-versioning system",
	Long: `reversion manages a content-addressed, chunked version history for a
local directory tree: content-defined or fixed-size chunking, retention
policies, integrity verification and repair, and an optional background
daemon that watches a directory and commits changes automatically.

Use "reversion [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cmdutil.Flags.Repo, _ = cmd.Flags().GetString("repo")
		cmdutil.Flags.ConfigPath, _ = cmd.Flags().GetString("config")
		cmdutil.Flags.Output, _ = cmd.Flags().GetString("output")
		cmdutil.Flags.NoColor, _ = cmd.Flags().GetBool("no-color")
		cmdutil.Flags.Verbose, _ = cmd.Flags().GetBool("verbose")

		level := "info"
		if cmdutil.Flags.Verbose {
			level = "debug"
		}
		return logger.Init(logger.Config{Level: level, Format: "text", Output: "stderr"})
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. It is called once from cmd/reversion/main.go.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("repo", "", "Work directory path (overrides REVERSION_DEFAULT_REPO)")
	rootCmd.PersistentFlags().String("config", "", "Path to the daemon/CLI config file")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format (table|json|yaml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(workdircmd.Cmd)
	rootCmd.AddCommand(snapshotcmd.Cmd)
	rootCmd.AddCommand(tagcmd.Cmd)
	rootCmd.AddCommand(timelinecmd.Cmd)
	rootCmd.AddCommand(versioncmd.Cmd)
	rootCmd.AddCommand(daemoncmd.Cmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}
