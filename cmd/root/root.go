// Package root contains the root command for the application.
package root

import (
	"github.com/spf13/cobra"

	"fjacquet/ledger-sync/internal/config"
	"fjacquet/ledger-sync/internal/logging"
)

var (
	// Log is the shared logger instance for commands.
	Log = logging.GetLogger()

	// Cfg holds the loaded configuration after PersistentPreRunE.
	Cfg *config.Config

	// Cmd is the root command.
	Cmd = &cobra.Command{
		Use:   "ledger-sync",
		Short: "Synchronize transactions from payment providers into a ledger.",
		Long: `ledger-sync pulls transactions from configured payment providers
(Stripe, PayPal, CAMT.053 bank feeds), normalizes them into a canonical
form, filters out everything already recorded in the target ledger and
appends only the new rows.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()

			cfg, err := config.InitializeConfig()
			if err != nil {
				return err
			}
			Cfg = cfg

			Log = logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
			logging.SetLogger(Log)
			return nil
		},
	}
)
