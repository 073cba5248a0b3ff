package daemon

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reversion-fs/reversion/cmd/reversion/cmdutil"
)

var untrackCmd = &cobra.Command{
	Use:   "untrack <path>",
	Short: "Remove a work directory from the daemon's tracked set",
	Args:  cobra.ExactArgs(1),
	RunE:  runUntrack,
}

func runUntrack(cmd *cobra.Command, args []string) error {
	d, err := newDaemon()
	if err != nil {
		return err
	}
	if err := d.Untrack(args[0]); err != nil {
		return err
	}
	cmdutil.PrintSuccess(fmt.Sprintf("%s untracked", args[0]))
	return nil
}
