// Package cli wires the command surface: run, validate and list. The
// automation core knows nothing about flags or settings files; this
// package is the external caller the engine is driven by.
package cli

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iceman-twitch/wow-auto/internal/logging"
)

var (
	jsonLogs bool
	debug    bool
	log      *zap.SugaredLogger
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "wow-auto",
		Short: "Replay JSON keyboard/mouse sequences gated on the game window",
		Long: `wow-auto loads declarative JSON sequences of keyboard and mouse
actions and replays them with human-like timing jitter. Dispatch only
happens while a target window holds focus, and a global hotkey toggles
the whole session on and off.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			log, err = logging.New(jsonLogs, debug)
			return err
		},
	}

	root.PersistentFlags().BoolVar(&jsonLogs, "json", false, "emit JSON logs")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(newRunCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newListCmd())
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if log != nil {
			log.Errorw("command failed", "error", err)
		}
		os.Exit(1)
	}
}
