// Package workdir implements the "reversion workdir" command tree: binding
// a directory to a repository/timeline and the file-level operations spec
// §4.7 exposes (init, status, commit, update, delete, verify, repair).
package workdir

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for work directory management.
var Cmd = &cobra.Command{
	Use:   "workdir",
	Short: "Work directory management",
	Long: `Bind a filesystem subtree to a repository and timeline, and operate on
it at the file level.

Examples:
  # Initialize a new work directory
  reversion workdir init

  # Show work directory status
  reversion workdir status

  # Commit changed files
  reversion workdir commit a.txt b.txt

  # Sync the working tree to the latest committed revision
  reversion workdir update

  # Check for block corruption and attempt repair
  reversion workdir verify
  reversion workdir repair`,
}

func init() {
	Cmd.AddCommand(initCmd)
	Cmd.AddCommand(statusCmd)
	Cmd.AddCommand(commitCmd)
	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(verifyCmd)
	Cmd.AddCommand(repairCmd)
}
