package daemon

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reversion-fs/reversion/cmd/reversion/cmdutil"
)

var registerCmd = &cobra.Command{
	Use:   "register <path>",
	Short: "Add a work directory to the daemon's registered set",
	Long: `Persist <path> to the daemon's registered set so a subsequent
"daemon start" runs its periodic cleanup job. A registered work directory
is not automatically tracked for commits; see "daemon track".`,
	Args: cobra.ExactArgs(1),
	RunE: runRegister,
}

func runRegister(cmd *cobra.Command, args []string) error {
	d, err := newDaemon()
	if err != nil {
		return err
	}
	if err := d.Register(args[0]); err != nil {
		return err
	}
	cmdutil.PrintSuccess(fmt.Sprintf("%s registered", args[0]))
	return nil
}
