package tag

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/reversion-fs/reversion/cmd/reversion/cmdutil"
	"github.com/reversion-fs/reversion/pkg/timeline"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tagged snapshots",
	Long: `List every snapshot that carries a tag (a non-empty name), newest
revision first. Use "snapshot list" to see every snapshot, tagged or not.`,
	RunE: runList,
}

type tagList []*timeline.Snapshot

func (l tagList) Headers() []string {
	return []string{"REVISION", "NAME", "DESCRIPTION", "PINNED"}
}

func (l tagList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, s := range l {
		rows = append(rows, []string{
			strconv.FormatInt(s.Revision(), 10),
			s.Name(),
			s.Description(),
			strconv.FormatBool(s.Pinned()),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	wd, err := cmdutil.OpenWorkDir()
	if err != nil {
		return err
	}
	defer wd.Repo.Close()

	snapshots, err := wd.Timeline.Snapshots()
	if err != nil {
		return err
	}

	var tagged tagList
	for _, s := range snapshots {
		if s.Name() != "" {
			tagged = append(tagged, s)
		}
	}

	return cmdutil.PrintOutput(os.Stdout, tagged, len(tagged) == 0, "No tagged snapshots found.", tagged)
}
