package version

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/reversion-fs/reversion/cmd/reversion/cmdutil"
)

var infoCmd = &cobra.Command{
	Use:   "info <path> <snapshot-id>",
	Short: "Show details about one version of a path",
	Args:  cobra.ExactArgs(2),
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	path := args[0]
	snapshotID, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid snapshot id %q: %w", args[1], err)
	}

	wd, err := cmdutil.OpenWorkDir()
	if err != nil {
		return err
	}
	defer wd.Repo.Close()

	versions, err := wd.Timeline.ListVersions(path)
	if err != nil {
		return err
	}

	for _, v := range versions {
		if uint64(v.SnapshotID()) != snapshotID {
			continue
		}
		return cmdutil.PrintResource(os.Stdout, v, [][2]string{
			{"path", v.Path()},
			{"snapshot", strconv.FormatUint(snapshotID, 10)},
			{"size", strconv.FormatInt(v.Size(), 10)},
			{"checksum", v.ContentChecksum()},
			{"created", v.CreatedAt().Format("2006-01-02 15:04:05")},
			{"pinned", strconv.FormatBool(v.Pinned())},
		})
	}
	return fmt.Errorf("no version of %s in snapshot %d", path, snapshotID)
}
