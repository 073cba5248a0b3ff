package timeline

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/reversion-fs/reversion/cmd/reversion/cmdutil"
	rtimeline "github.com/reversion-fs/reversion/pkg/timeline"
)

var infoCmd = &cobra.Command{
	Use:   "info <id>",
	Short: "Show details about one timeline",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	id := args[0]

	wd, err := cmdutil.OpenWorkDir()
	if err != nil {
		return err
	}
	defer wd.Repo.Close()

	infos, err := rtimeline.List(wd.Repo)
	if err != nil {
		return err
	}

	for _, t := range infos {
		if t.ID != id {
			continue
		}
		snapshots, err := rtimeline.Open(wd.Repo, t.ID).Snapshots()
		if err != nil {
			return err
		}
		return cmdutil.PrintResource(os.Stdout, t, [][2]string{
			{"id", t.ID},
			{"name", t.Name},
			{"created", t.CreatedAt.Format("2006-01-02 15:04:05")},
			{"snapshots", strconv.Itoa(len(snapshots))},
		})
	}
	return fmt.Errorf("no timeline with id %s", id)
}
