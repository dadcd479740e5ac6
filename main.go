package main

import (
	"fmt"
	"os"

	"fjacquet/ledger-sync/cmd/root"
	"fjacquet/ledger-sync/cmd/sources"
	"fjacquet/ledger-sync/cmd/sync"
	"fjacquet/ledger-sync/cmd/testconn"
)

func init() {
	root.Cmd.AddCommand(sync.Cmd)
	root.Cmd.AddCommand(testconn.Cmd)
	root.Cmd.AddCommand(sources.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
