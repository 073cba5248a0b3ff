// Package snapshot implements the "reversion snapshot" CLI noun.
package snapshot

import "github.com/spf13/cobra"

// Cmd is the "snapshot" parent command.
var Cmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect and manage snapshots in the work directory's timeline",
}

func init() {
	Cmd.AddCommand(listCmd, infoCmd, removeCmd)
}
