package workdir

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reversion-fs/reversion/cmd/reversion/cmdutil"
	"github.com/reversion-fs/reversion/pkg/integrity"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Scan the repository's block store for corruption",
	Long: `Run every repair action's check against the repository without
repairing anything. Use "workdir repair" to act on what this finds.`,
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	wd, err := cmdutil.OpenWorkDir()
	if err != nil {
		return fmt.Errorf("opening work directory: %w", err)
	}
	defer wd.Repo.Close()

	unhealthy := 0
	for _, action := range integrity.Verify(wd.Repo) {
		followup, err := action.Verify()
		if err != nil {
			return fmt.Errorf("running check %q: %w", action.Message(), err)
		}
		if followup == nil {
			fmt.Printf("OK: %s\n", action.Message())
			continue
		}
		unhealthy++
		fmt.Printf("NEEDS REPAIR: %s\n", action.Message())
	}

	if unhealthy == 0 {
		cmdutil.PrintSuccess("Repository is healthy.")
	}
	return nil
}
