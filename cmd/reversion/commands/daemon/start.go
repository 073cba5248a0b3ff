package daemon

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/reversion-fs/reversion/cmd/reversion/cmdutil"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the daemon in the foreground",
	Long: `Replay the persisted registered and tracked path sets and run
their jobs until interrupted (SIGINT/SIGTERM). Paths are added to these
sets with "daemon register"/"daemon track", which persist immediately but
require a "daemon start" to actually be running for their jobs to execute.`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	d, err := newDaemon()
	if err != nil {
		return err
	}

	if err := d.Start(); err != nil {
		return err
	}
	cmdutil.PrintSuccess("Daemon started. Press Ctrl+C to stop.")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	d.Stop()
	return nil
}
