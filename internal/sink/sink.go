// Package sink defines the narrow interface the engine needs from the
// destination ledger. The sink owns all column layout and formatting; the
// engine only reads anchors and appends rows.
package sink

import (
	"context"

	"fjacquet/ledger-sync/internal/models"
)

// Sink is the external append-only ledger transactions are written to.
// Implementations must serialize their own writes; the orchestrator
// additionally serializes Append calls since no concurrency contract is
// exposed here.
type Sink interface {
	// IdentitySet returns every transaction ID already written to the
	// named ledger. Used by the identity-set dedup strategy.
	IdentitySet(ctx context.Context, ledger string) (map[string]struct{}, error)

	// TemporalAnchor returns the latest parseable ledger date and the
	// textual rows on that date. Used by the temporal-boundary strategy.
	TemporalAnchor(ctx context.Context, ledger string) (*models.TemporalAnchor, error)

	// Append writes transactions to the named ledger and returns the
	// number of rows written.
	Append(ctx context.Context, ledger string, txs []models.Transaction) (int, error)
}
