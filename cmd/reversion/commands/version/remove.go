package version

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/reversion-fs/reversion/cmd/reversion/cmdutil"
)

var removeForce bool

var removeCmd = &cobra.Command{
	Use:   "remove <path> <snapshot-id>",
	Short: "Remove one version of a path",
	Long: `Delete the recorded version of <path> in the given snapshot. If
that snapshot ends up with no remaining versions, it is deleted too. This
action is irreversible.`,
	Args: cobra.ExactArgs(2),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVarP(&removeForce, "force", "f", false, "Skip confirmation prompt")
}

func runRemove(cmd *cobra.Command, args []string) error {
	path := args[0]
	snapshotID, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid snapshot id %q: %w", args[1], err)
	}

	wd, err := cmdutil.OpenWorkDir()
	if err != nil {
		return err
	}
	defer wd.Repo.Close()

	return cmdutil.RunWithConfirmation(
		fmt.Sprintf("Remove version of %s in snapshot %d? This cannot be undone.", path, snapshotID),
		fmt.Sprintf("Version of %s in snapshot %d removed", path, snapshotID),
		removeForce,
		func() error {
			snap, err := wd.Timeline.Snapshot(uint(snapshotID))
			if err != nil {
				return err
			}
			if err := snap.RemoveVersion(path); err != nil {
				return err
			}
			_, err = snap.DeleteIfEmpty()
			return err
		},
	)
}
