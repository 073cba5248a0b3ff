package timeline

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reversion-fs/reversion/cmd/reversion/cmdutil"
	rtimeline "github.com/reversion-fs/reversion/pkg/timeline"
)

var removeForce bool

var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a timeline and everything committed to it",
	Long: `Delete the timeline and, by cascade, every snapshot, version, and
chunk reference it owns. This action is irreversible. Removing the
timeline a work directory is currently bound to leaves that work
directory unusable until reinitialized.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVarP(&removeForce, "force", "f", false, "Skip confirmation prompt")
}

func runRemove(cmd *cobra.Command, args []string) error {
	id := args[0]

	wd, err := cmdutil.OpenWorkDir()
	if err != nil {
		return err
	}
	defer wd.Repo.Close()

	return cmdutil.RunWithConfirmation(
		fmt.Sprintf("Remove timeline %s? This cannot be undone.", id),
		fmt.Sprintf("Timeline %s removed", id),
		removeForce,
		func() error { return rtimeline.Open(wd.Repo, id).Remove() },
	)
}
