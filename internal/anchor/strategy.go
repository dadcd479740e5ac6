// Package anchor implements the two incremental-sync strategies: the
// identity-set filter for sources with stable ids in the ledger, and the
// temporal-boundary content match for ledgers that only store formatted
// text.
package anchor

import (
	"fmt"

	"fjacquet/ledger-sync/internal/sinkfmt"
)

// Kind selects a dedup strategy.
type Kind string

const (
	// IdentitySet filters against the set of ids already written to the
	// ledger. Requires the provider to assign globally stable ids and the
	// ledger to expose an id column.
	IdentitySet Kind = "identity-set"

	// TemporalBoundary filters against the latest ledger date, matching
	// boundary-day rows by exact formatted text. Used when no reliable id
	// survives the round trip to the ledger.
	TemporalBoundary Kind = "temporal-boundary"
)

// Strategy is the dedup strategy chosen per source at configuration time.
// It is a static choice, never inferred at runtime.
type Strategy struct {
	Kind Kind

	// Rules carries the sink's formatting rules for the temporal-boundary
	// content match. Ignored by the identity-set strategy.
	Rules sinkfmt.Rules
}

// NewIdentitySet returns the identity-set strategy.
func NewIdentitySet() Strategy {
	return Strategy{Kind: IdentitySet}
}

// NewTemporalBoundary returns the temporal-boundary strategy with the
// given formatting rules.
func NewTemporalBoundary(rules sinkfmt.Rules) Strategy {
	return Strategy{Kind: TemporalBoundary, Rules: rules}
}

// ParseKind converts a configuration string into a strategy kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case IdentitySet:
		return IdentitySet, nil
	case TemporalBoundary:
		return TemporalBoundary, nil
	default:
		return "", fmt.Errorf("unknown dedup strategy: %q", s)
	}
}
