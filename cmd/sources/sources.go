// Package sources implements the sources command listing the configured
// sources with their ledger and dedup strategy.
package sources

import (
	"sort"

	"github.com/spf13/cobra"

	"fjacquet/ledger-sync/cmd/root"
)

// Cmd represents the sources command.
var Cmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured sources",
	Run:   sourcesFunc,
}

func sourcesFunc(cmd *cobra.Command, args []string) {
	names := make([]string, 0, len(root.Cfg.Sources))
	for name := range root.Cfg.Sources {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) == 0 {
		cmd.Println("no sources configured")
		return
	}
	for _, name := range names {
		src := root.Cfg.Sources[name]
		cmd.Printf("%-20s type=%-8s ledger=%-12s strategy=%s\n", name, src.Type, src.Ledger, src.Strategy)
	}
}
