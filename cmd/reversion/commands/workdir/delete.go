package workdir

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reversion-fs/reversion/cmd/reversion/cmdutil"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the work directory's repository and timeline",
	Long: `Remove the hidden repository directory and everything in it. This
action is irreversible. You will be prompted for confirmation unless
--force is given.`,
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	wd, err := cmdutil.OpenWorkDir()
	if err != nil {
		return fmt.Errorf("opening work directory: %w", err)
	}

	return cmdutil.RunWithConfirmation(
		fmt.Sprintf("Delete work directory at %s? This cannot be undone.", wd.Root),
		fmt.Sprintf("Work directory at %s deleted", wd.Root),
		deleteForce,
		wd.Delete,
	)
}
