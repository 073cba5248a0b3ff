package timeline

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reversion-fs/reversion/cmd/reversion/cmdutil"
	rtimeline "github.com/reversion-fs/reversion/pkg/timeline"
)

var checkoutRevision int64

var checkoutCmd = &cobra.Command{
	Use:   "checkout <id>",
	Short: "Restore the working tree to a timeline's revision",
	Long: `Write every path versioned at or before --revision (default: the
timeline's latest revision) in the given timeline onto the work
directory's root, overwriting whatever is there.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckout,
}

func init() {
	checkoutCmd.Flags().Int64Var(&checkoutRevision, "revision", 0, "Revision to check out (default: latest)")
}

func runCheckout(cmd *cobra.Command, args []string) error {
	id := args[0]

	wd, err := cmdutil.OpenWorkDir()
	if err != nil {
		return err
	}
	defer wd.Repo.Close()

	tl := rtimeline.Open(wd.Repo, id)

	revision := checkoutRevision
	if revision == 0 {
		revision, err = tl.LatestRevision()
		if err != nil {
			return err
		}
		if revision == 0 {
			fmt.Println("Nothing committed to this timeline yet.")
			return nil
		}
	}

	snapshots, err := tl.Snapshots()
	if err != nil {
		return err
	}
	var snap *rtimeline.Snapshot
	for _, s := range snapshots {
		if s.Revision() == revision {
			snap = s
			break
		}
	}
	if snap == nil {
		return fmt.Errorf("no revision %d on timeline %s", revision, id)
	}

	versions, err := snap.CumulativeVersions()
	if err != nil {
		return err
	}

	for path, v := range versions {
		if _, err := v.Checkout(filepath.Join(wd.Root, path), true); err != nil {
			return fmt.Errorf("checking out %s: %w", path, err)
		}
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Checked out timeline %s at revision %d", id, revision))
	return nil
}
