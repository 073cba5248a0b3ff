package tag

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/reversion-fs/reversion/cmd/reversion/cmdutil"
	"github.com/reversion-fs/reversion/pkg/timeline"
)

var removeForce bool

var removeCmd = &cobra.Command{
	Use:   "remove <revision>",
	Short: "Clear the tag on a snapshot",
	Long: `Clear the name, description, and pinned flag on the snapshot at
<revision>. The snapshot itself and its versions are left intact; use
"snapshot remove" to delete the snapshot.`,
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

	snapshots, err := wd.Timeline.Snapshots()
	if err != nil {
		return err
	}

	var target *timeline.Snapshot
	for _, s := range snapshots {
		if s.Revision() == revision {
			target = s
			break
		}
	}
	if target == nil {
		return fmt.Errorf("no snapshot at revision %d", revision)
	}

	return cmdutil.RunWithConfirmation(
		fmt.Sprintf("Clear tag on snapshot %d?", revision),
		fmt.Sprintf("Tag on snapshot %d cleared", revision),
		removeForce,
		func() error { return target.SetTag("", "", false) },
	)
}
