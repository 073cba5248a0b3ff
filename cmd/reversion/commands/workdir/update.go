package workdir

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reversion-fs/reversion/cmd/reversion/cmdutil"
)

var updateRevision int64

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Sync the working tree to a committed revision",
	Long: `Restore every path known to the timeline to its state at a revision,
the complement of commit: commit moves working-tree changes into the
timeline, update moves timeline state back onto the working tree.

With no --revision, updates to the latest committed revision.

Examples:
  reversion workdir update
  reversion workdir update --revision 3`,
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().Int64Var(&updateRevision, "revision", 0, "Revision to update to (default: latest)")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	wd, err := cmdutil.OpenWorkDir()
	if err != nil {
		return fmt.Errorf("opening work directory: %w", err)
	}
	defer wd.Repo.Close()

	revision := updateRevision
	if revision == 0 {
		revision, err = wd.Timeline.LatestRevision()
		if err != nil {
			return fmt.Errorf("finding latest revision: %w", err)
		}
	}
	if revision == 0 {
		fmt.Println("Nothing committed yet.")
		return nil
	}

	paths, err := wd.Timeline.Paths()
	if err != nil {
		return fmt.Errorf("listing versioned paths: %w", err)
	}

	if err := wd.Restore(paths, revision); err != nil {
		return fmt.Errorf("updating to revision %d: %w", revision, err)
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Updated working tree to revision %d", revision))
	return nil
}
