package daemon

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reversion-fs/reversion/cmd/reversion/cmdutil"
)

var trackCmd = &cobra.Command{
	Use:   "track <path>",
	Short: "Add a work directory to the daemon's tracked set",
	Long: `Persist <path> to the daemon's tracked set so a subsequent
"daemon start" watches it and auto-commits coalesced changes (spec §4.8).`,
	Args: cobra.ExactArgs(1),
	RunE: runTrack,
}

func runTrack(cmd *cobra.Command, args []string) error {
	d, err := newDaemon()
	if err != nil {
		return err
	}
	if err := d.Track(args[0]); err != nil {
		return err
	}
	cmdutil.PrintSuccess(fmt.Sprintf("%s tracked", args[0]))
	return nil
}
