package root_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fjacquet/ledger-sync/cmd/root"
)

func TestRootCommandMetadata(t *testing.T) {
	assert.Equal(t, "ledger-sync", root.Cmd.Use)
	assert.Contains(t, root.Cmd.Short, "Synchronize transactions")
	assert.Contains(t, root.Cmd.Long, "canonical")
	assert.NotNil(t, root.Cmd.Run)
	assert.NotNil(t, root.Cmd.PersistentPreRunE)
}
