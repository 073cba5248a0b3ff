package daemon

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reversion-fs/reversion/cmd/reversion/cmdutil"
)

var unregisterCmd = &cobra.Command{
	Use:   "unregister <path>",
	Short: "Remove a work directory from the daemon's registered set",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnregister,
}

func runUnregister(cmd *cobra.Command, args []string) error {
	d, err := newDaemon()
	if err != nil {
		return err
	}
	if err := d.Unregister(args[0]); err != nil {
		return err
	}
	cmdutil.PrintSuccess(fmt.Sprintf("%s unregistered", args[0]))
	return nil
}
