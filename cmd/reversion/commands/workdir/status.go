package workdir

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/reversion-fs/reversion/cmd/reversion/cmdutil"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show work directory status",
	Long: `Print the timeline id, tracked file count, and per-file pending-change
status of the work directory named by --repo.`,
	RunE: runStatus,
}

type statusInfo struct {
	Root       string   `json:"root"`
	TimelineID string   `json:"timeline_id"`
	Files      []string `json:"files"`
	Changed    []string `json:"changed"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	wd, err := cmdutil.OpenWorkDir()
	if err != nil {
		return fmt.Errorf("opening work directory: %w", err)
	}
	defer wd.Repo.Close()

	files, err := wd.ListFiles()
	if err != nil {
		return fmt.Errorf("listing files: %w", err)
	}

	var changed []string
	for _, f := range files {
		versions, err := wd.Timeline.ListVersions(f)
		if err != nil {
			return fmt.Errorf("listing versions of %s: %w", f, err)
		}
		if len(versions) == 0 {
			changed = append(changed, f)
			continue
		}
		isChanged, err := versions[0].IsChanged(filepath.Join(wd.Root, f))
		if err != nil {
			return fmt.Errorf("checking %s: %w", f, err)
		}
		if isChanged {
			changed = append(changed, f)
		}
	}

	info := statusInfo{Root: wd.Root, TimelineID: wd.Timeline.ID, Files: files, Changed: changed}

	return cmdutil.PrintResource(os.Stdout, info, [][2]string{
		{"root", info.Root},
		{"timeline", info.TimelineID},
		{"files", strconv.Itoa(len(info.Files))},
		{"pending changes", strconv.Itoa(len(info.Changed))},
	})
}
