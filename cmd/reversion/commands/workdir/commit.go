package workdir

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reversion-fs/reversion/cmd/reversion/cmdutil"
)

var commitForce bool

var commitCmd = &cobra.Command{
	Use:   "commit [paths...]",
	Short: "Commit file changes to a new snapshot",
	Long: `Commit the given paths (relative to the work directory root) to a new
snapshot. With no paths, every tracked file is considered. Unchanged paths
are skipped unless --force is given.

Examples:
  reversion workdir commit a.txt b.txt
  reversion workdir commit --force a.txt`,
	RunE: runCommit,
}

func init() {
	commitCmd.Flags().BoolVarP(&commitForce, "force", "f", false, "Commit even if content is unchanged")
}

func runCommit(cmd *cobra.Command, args []string) error {
	wd, err := cmdutil.OpenWorkDir()
	if err != nil {
		return fmt.Errorf("opening work directory: %w", err)
	}
	defer wd.Repo.Close()

	paths := args
	if len(paths) == 0 {
		paths, err = wd.ListFiles()
		if err != nil {
			return fmt.Errorf("listing files: %w", err)
		}
	}

	snap, err := wd.Commit(paths, commitForce)
	if err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	if snap == nil {
		fmt.Fprintln(os.Stdout, "Nothing to commit.")
		return nil
	}

	cmdutil.PrintSuccess(fmt.Sprintf("Committed revision %d", snap.Revision()))
	return nil
}
