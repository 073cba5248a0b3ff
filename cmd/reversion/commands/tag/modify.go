package tag

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/reversion-fs/reversion/cmd/reversion/cmdutil"
)

var (
	modifyName        string
	modifyDescription string
	modifyPinned      bool
)

var modifyCmd = &cobra.Command{
	Use:   "modify <revision>",
	Short: "Set a snapshot's tag name, description, and pinned state",
	Long: `Overlay a tag onto the snapshot at <revision> by setting its name,
description, and pinned flag. Pinned snapshots are exempt from cleanup
(see pkg/cleanup). Flags not given clear the corresponding field.`,
	Args: cobra.ExactArgs(1),
	RunE: runModify,
}

func init() {
	modifyCmd.Flags().StringVar(&modifyName, "name", "", "Tag name")
	modifyCmd.Flags().StringVar(&modifyDescription, "description", "", "Tag description")
	modifyCmd.Flags().BoolVar(&modifyPinned, "pinned", false, "Pin the snapshot against cleanup")
}

func runModify(cmd *cobra.Command, args []string) error {
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
		if err := s.SetTag(modifyName, modifyDescription, modifyPinned); err != nil {
			return err
		}
		cmdutil.PrintSuccess(fmt.Sprintf("Tag on snapshot %d updated", revision))
		return nil
	}
	return fmt.Errorf("no snapshot at revision %d", revision)
}
