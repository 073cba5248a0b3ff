// Package daemon implements the "reversion daemon" CLI noun: starting the
// watch/cleanup supervisor in the foreground, and maintaining its
// persisted registered/tracked path sets.
package daemon

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reversion-fs/reversion/cmd/reversion/cmdutil"
	"github.com/reversion-fs/reversion/pkg/config"
	rdaemon "github.com/reversion-fs/reversion/pkg/daemon"
)

// Cmd is the "daemon" parent command.
var Cmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run and manage the background watch/cleanup daemon",
}

func init() {
	Cmd.AddCommand(startCmd, registerCmd, unregisterCmd, trackCmd, untrackCmd)
}

// newDaemon loads the process configuration and constructs a Daemon from
// it. register/track/unregister/untrack all run it against the daemon's
// persisted state; only "daemon start" keeps it alive to actually run the
// jobs it launches.
func newDaemon() (*rdaemon.Daemon, error) {
	cfg, err := config.Load(cmdutil.Flags.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("daemon: loading config: %w", err)
	}
	return rdaemon.New(cfg, nil), nil
}
