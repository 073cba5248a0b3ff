// Package timeline implements the "reversion timeline" CLI noun.
package timeline

import "github.com/spf13/cobra"

// Cmd is the "timeline" parent command.
var Cmd = &cobra.Command{
	Use:   "timeline",
	Short: "Inspect and manage timelines in the repository",
}

func init() {
	Cmd.AddCommand(listCmd, infoCmd, modifyCmd, removeCmd, checkoutCmd)
}
