// Package cli implements the gridsync command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/austinchang/gridsync/pkg/config"
	"github.com/austinchang/gridsync/pkg/logging"
)

// app carries the shared state every command needs.
type app struct {
	store *config.Store
	cfg   *config.Config
	log   *zap.Logger
}

// NewRootCmd builds the gridsync command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	var configPath string
	var headless bool
	var logDir string

	root := &cobra.Command{
		Use:   "gridsync",
		Short: "Replay test-configuration records into the manufacturing portal grid",
		Long: `gridsync automates data entry into the manufacturing test-configuration
portal. Records are staged in a local dataset, validated against the
business rules, and replayed into the portal's data grid through simulated
UI interactions.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.NewStore(configPath)
			if err != nil {
				return err
			}
			a.store = store
			a.cfg = store.Config()

			if cmd.Flags().Changed("headless") {
				a.cfg.Browser.Headless = headless
			}
			if logDir != "" {
				a.cfg.Logging.OutputPath = logging.SessionPath(logDir)
				a.cfg.Logging.Format = "json"
			}

			logger, err := logging.New(a.cfg.Logging)
			if err != nil {
				return fmt.Errorf("failed to set up logging: %w", err)
			}
			a.log = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.gridsync/config.json)")
	root.PersistentFlags().BoolVar(&headless, "headless", false, "run the browser without a visible window")
	root.PersistentFlags().StringVar(&logDir, "log-dir", "", "write a per-session log file under this directory")

	root.AddCommand(
		newAddCmd(a),
		newEditCmd(a),
		newDeleteCmd(a),
		newViewCmd(a),
		newBatchCmd(a),
		newRecordsCmd(a),
	)
	return root
}

// Execute runs the CLI and returns its exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		return 1
	}
	return 0
}
