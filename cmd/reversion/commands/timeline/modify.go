package timeline

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reversion-fs/reversion/cmd/reversion/cmdutil"
	rtimeline "github.com/reversion-fs/reversion/pkg/timeline"
)

var modifyName string

var modifyCmd = &cobra.Command{
	Use:   "modify <id>",
	Short: "Rename a timeline",
	Args:  cobra.ExactArgs(1),
	RunE:  runModify,
}

func init() {
	modifyCmd.Flags().StringVar(&modifyName, "name", "", "New timeline name")
}

func runModify(cmd *cobra.Command, args []string) error {
	id := args[0]

	wd, err := cmdutil.OpenWorkDir()
	if err != nil {
		return err
	}
	defer wd.Repo.Close()

	if err := rtimeline.Open(wd.Repo, id).Rename(modifyName); err != nil {
		return err
	}
	cmdutil.PrintSuccess(fmt.Sprintf("Timeline %s renamed", id))
	return nil
}
