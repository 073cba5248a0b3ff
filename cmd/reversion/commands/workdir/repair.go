package workdir

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reversion-fs/reversion/cmd/reversion/cmdutil"
	"github.com/reversion-fs/reversion/internal/cli/prompt"
	"github.com/reversion-fs/reversion/pkg/integrity"
)

var repairForce bool

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Repair block corruption found by verify",
	Long: `Run every repair action's check, and for each problem found, either
rechunk the current working copy to recover the missing bytes or delete the
versions that can no longer be reconstructed. Prompts before each repair
unless --force is given.`,
	RunE: runRepair,
}

func init() {
	repairCmd.Flags().BoolVarP(&repairForce, "force", "f", false, "Repair without prompting")
}

func runRepair(cmd *cobra.Command, args []string) error {
	wd, err := cmdutil.OpenWorkDir()
	if err != nil {
		return fmt.Errorf("opening work directory: %w", err)
	}
	defer wd.Repo.Close()

	for _, action := range integrity.Verify(wd.Repo) {
		followup, err := action.Verify()
		if err != nil {
			return fmt.Errorf("running check %q: %w", action.Message(), err)
		}
		if followup == nil {
			continue
		}

		confirmed, err := prompt.ConfirmWithForce(fmt.Sprintf("Repair: %s?", action.Message()), repairForce)
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
		if !confirmed {
			fmt.Println("Skipped.")
			continue
		}

		result := followup.Repair(wd.Root)
		if !result.Success {
			return fmt.Errorf("repair failed: %s", result.Message)
		}
		cmdutil.PrintSuccess(result.Message)
	}
	return nil
}
