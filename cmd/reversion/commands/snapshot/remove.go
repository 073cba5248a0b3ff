package snapshot

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/reversion-fs/reversion/cmd/reversion/cmdutil"
)

var removeForce bool

var removeCmd = &cobra.Command{
	Use:   "remove <revision>",
	Short: "Remove a snapshot and its versions",
	Long: `Delete the snapshot at the given revision along with every version
it recorded. Orphaned blocks are reclaimed the next time the repository is
swept, not immediately. This action is irreversible.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVarP(&removeForce, "force", "f", false, "Skip confirmation prompt")
}

func runRemove(cmd *cobra.Command, args []string) error {
	revision, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid revision %q: %w", args[0], err)
	}

	wd, err := cmdutil.OpenWorkDir()
	if err != nil {
		return err
	}
	defer wd.Repo.Close()

	return cmdutil.RunWithConfirmation(
		fmt.Sprintf("Remove snapshot %d? This cannot be undone.", revision),
		fmt.Sprintf("Snapshot %d removed", revision),
		removeForce,
		func() error { return wd.Timeline.RemoveSnapshot(revision) },
	)
}
