package tag

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/reversion-fs/reversion/cmd/reversion/cmdutil"
)

var infoCmd = &cobra.Command{
	Use:   "info <revision>",
	Short: "Show the tag on one snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	revision, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid revision %q: %w", args[0], err)
	}

	wd, err := cmdutil.OpenWorkDir()
	if err != nil {
		return err
	}
	defer wd.Repo.Close()

	snapshots, err := wd.Timeline.Snapshots()
	if err != nil {
		return err
	}

	for _, s := range snapshots {
		if s.Revision() != revision {
			continue
		}
		return cmdutil.PrintResource(os.Stdout, s, [][2]string{
			{"revision", strconv.FormatInt(s.Revision(), 10)},
			{"name", s.Name()},
			{"description", s.Description()},
			{"pinned", strconv.FormatBool(s.Pinned())},
		})
	}
	return fmt.Errorf("no snapshot at revision %d", revision)
}
