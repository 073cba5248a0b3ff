package workdir

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reversion-fs/reversion/cmd/reversion/cmdutil"
	"github.com/reversion-fs/reversion/pkg/workdir"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new work directory",
	Long: `Create the hidden repository and timeline backing the work directory
named by --repo, with the default staggered retention policy set.

Examples:
  reversion workdir init
  reversion --repo ./project workdir init`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path, err := cmdutil.ResolveRepoPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("creating work directory: %w", err)
	}

	wd, err := workdir.Init(path, workdir.DefaultProvider{})
	if err != nil {
		return fmt.Errorf("initializing work directory: %w", err)
	}
	defer wd.Repo.Close()

	cmdutil.PrintSuccess(fmt.Sprintf("Initialized work directory at %s (timeline %s)", path, wd.Timeline.ID))
	return nil
}
