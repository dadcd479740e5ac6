// Package testconn implements the test-connections command that probes
// every configured source for reachability without writing anything.
package testconn

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"fjacquet/ledger-sync/cmd/common"
	"fjacquet/ledger-sync/cmd/root"
)

// Cmd represents the test-connections command.
var Cmd = &cobra.Command{
	Use:   "test-connections",
	Short: "Probe every configured source for reachability",
	RunE:  testFunc,
}

func testFunc(cmd *cobra.Command, args []string) error {
	engine, cleanup, err := common.BuildEngine(cmd.Context(), root.Cfg, root.Log)
	if err != nil {
		return err
	}
	defer cleanup()

	status := engine.TestConnections(cmd.Context())
	names := make([]string, 0, len(status))
	for name := range status {
		names = append(names, name)
	}
	sort.Strings(names)

	unreachable := 0
	for _, name := range names {
		state := "ok"
		if !status[name] {
			state = "unreachable"
			unreachable++
		}
		cmd.Printf("%-20s %s\n", name, state)
	}
	if unreachable > 0 {
		return fmt.Errorf("%d of %d sources unreachable", unreachable, len(names))
	}
	return nil
}
