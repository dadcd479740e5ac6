// Package sync implements the sync command: one full fetch, dedup and
// append cycle across every configured source.
package sync

import (
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/ledger-sync/cmd/common"
	"fjacquet/ledger-sync/cmd/root"
)

// Cmd represents the sync command.
var Cmd = &cobra.Command{
	Use:   "sync [source...]",
	Short: "Run one sync cycle across configured sources",
	Long: `Fetch transactions from the named sources (default: all configured),
filter out rows already present in the target ledger and append the rest.

Sources fail independently: a broken provider is reported but never
stops the others. The command exits non-zero when any source failed.`,
	RunE: syncFunc,
}

func syncFunc(cmd *cobra.Command, args []string) error {
	engine, cleanup, err := common.BuildEngine(cmd.Context(), root.Cfg, root.Log)
	if err != nil {
		return err
	}
	defer cleanup()

	summary, err := engine.Run(cmd.Context(), args...)
	if err != nil {
		return err
	}

	cmd.Print(summary.String())
	if summary.HasErrors() {
		return fmt.Errorf("sync finished with %d failed sources", len(summary.AllErrors()))
	}
	return nil
}
