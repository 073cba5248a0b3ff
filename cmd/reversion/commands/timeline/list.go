package timeline

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/reversion-fs/reversion/cmd/reversion/cmdutil"
	rtimeline "github.com/reversion-fs/reversion/pkg/timeline"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every timeline in the repository",
	Long: `List every timeline in the repository the work directory named by
--repo binds to. A work directory binds to exactly one timeline by
default, but the repository itself can hold more.`,
	RunE: runList,
}

type timelineList []rtimeline.Info

func (l timelineList) Headers() []string { return []string{"ID", "NAME", "CREATED"} }

func (l timelineList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, t := range l {
		rows = append(rows, []string{t.ID, t.Name, t.CreatedAt.Format("2006-01-02 15:04:05")})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	wd, err := cmdutil.OpenWorkDir()
	if err != nil {
		return err
	}
	defer wd.Repo.Close()

	timelines, err := rtimeline.List(wd.Repo)
	if err != nil {
		return err
	}

	return cmdutil.PrintOutput(os.Stdout, timelines, len(timelines) == 0, "No timelines found.", timelineList(timelines))
}
