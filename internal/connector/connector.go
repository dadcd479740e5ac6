// Package connector defines the per-provider source contract and the
// shared HTTP plumbing connectors build on. Each provider lives in its
// own package and owns its auth, pagination and normalization; the
// orchestrator never branches on provider identity.
package connector

import (
	"context"

	"fjacquet/ledger-sync/internal/models"
)

// Connector adapts one provider's API into canonical transactions.
type Connector interface {
	// Name returns the configured source name.
	Name() string

	// Probe is a connectivity check. It must not panic and returns false
	// on any failure, making it safe for pre-flight "test connections"
	// runs.
	Probe(ctx context.Context) bool

	// Fetch retrieves and normalizes all available transactions. It
	// paginates internally until the provider reports no further pages
	// and returns a *syncerror.ConnectorError on auth failure, network
	// failure or a payload it cannot normalize. Non-final and noise
	// records are dropped during normalization, not surfaced.
	Fetch(ctx context.Context) ([]models.Transaction, error)
}
