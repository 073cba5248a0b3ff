// Package tag implements the "reversion tag" CLI noun: tagging is an
// overlay on a snapshot's name, description, and pinned fields, not a
// separate resource (see pkg/timeline.Snapshot.SetTag).
package tag

import "github.com/spf13/cobra"

// Cmd is the "tag" parent command.
var Cmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags (name, description, pin) on snapshots",
}

func init() {
	Cmd.AddCommand(listCmd, infoCmd, modifyCmd, removeCmd)
}
