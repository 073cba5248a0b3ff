// Package version implements the "reversion version" CLI noun: per-path
// versions recorded across the work directory's timeline.
package version

import "github.com/spf13/cobra"

// Cmd is the "version" parent command.
var Cmd = &cobra.Command{
	Use:   "version",
	Short: "Inspect and manage versions of a path",
}

func init() {
	Cmd.AddCommand(listCmd, infoCmd, removeCmd)
}
