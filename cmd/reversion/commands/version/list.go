package version

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/reversion-fs/reversion/cmd/reversion/cmdutil"
	"github.com/reversion-fs/reversion/pkg/timeline"
)

var listCmd = &cobra.Command{
	Use:   "list <path>",
	Short: "List every recorded version of a path",
	Long: `List every version of path across the work directory's timeline,
newest revision first.`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

type versionList []*timeline.Version

func (l versionList) Headers() []string { return []string{"SNAPSHOT", "SIZE", "CREATED", "PINNED"} }

func (l versionList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, v := range l {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(v.SnapshotID()), 10),
			strconv.FormatInt(v.Size(), 10),
			v.CreatedAt().Format("2006-01-02 15:04:05"),
			strconv.FormatBool(v.Pinned()),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	path := args[0]

	wd, err := cmdutil.OpenWorkDir()
	if err != nil {
		return err
	}
	defer wd.Repo.Close()

	versions, err := wd.Timeline.ListVersions(path)
	if err != nil {
		return err
	}

	return cmdutil.PrintOutput(os.Stdout, versions, len(versions) == 0, "No versions found.", versionList(versions))
}
