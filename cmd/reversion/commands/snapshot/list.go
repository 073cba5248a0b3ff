package snapshot

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/reversion-fs/reversion/cmd/reversion/cmdutil"
	"github.com/reversion-fs/reversion/pkg/timeline"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots in the work directory's timeline",
	Long: `List all snapshots committed to the work directory's timeline,
newest revision first.

Examples:
  # List snapshots as table
  reversion snapshot list

  # List as JSON
  reversion snapshot list -o json`,
	RunE: runList,
}

// snapshotList renders a slice of snapshots as a table.
type snapshotList []*timeline.Snapshot

// Headers implements output.TableRenderer.
func (l snapshotList) Headers() []string {
	return []string{"REVISION", "NAME", "PINNED", "CREATED"}
}

// Rows implements output.TableRenderer.
func (l snapshotList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, s := range l {
		rows = append(rows, []string{
			strconv.FormatInt(s.Revision(), 10),
			s.Name(),
			strconv.FormatBool(s.Pinned()),
			s.CreatedAt().Format("2006-01-02 15:04:05"),
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

	return cmdutil.PrintOutput(os.Stdout, snapshots, len(snapshots) == 0, "No snapshots found.", snapshotList(snapshots))
}
