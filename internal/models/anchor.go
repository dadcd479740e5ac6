package models

import "time"

// IdentityAnchor is the sync anchor for the identity-set strategy: the
// complete set of transaction IDs already written to the ledger.
type IdentityAnchor struct {
	KnownIDs map[string]struct{}
}

// Contains reports whether an ID is already recorded.
func (a IdentityAnchor) Contains(id string) bool {
	_, ok := a.KnownIDs[id]
	return ok
}

// LedgerRow is the exact textual encoding of a row already written to the
// ledger. The sink stores formatted strings rather than structured values,
// so boundary-day matching has to compare text, not parsed data.
type LedgerRow struct {
	DateText        string
	AmountText      string
	DescriptionText string
}

// TemporalAnchor is the sync anchor for the temporal-boundary strategy:
// the latest successfully parsed ledger date and the textual rows already
// written on that date. A nil LatestDate means the ledger holds no
// parseable rows and everything fetched is new.
type TemporalAnchor struct {
	LatestDate     *time.Time
	LatestDateRows []LedgerRow
}

// HasRow reports whether an exact (date, amount, description) triple is
// already present among the latest-date rows.
func (a TemporalAnchor) HasRow(row LedgerRow) bool {
	for _, existing := range a.LatestDateRows {
		if existing == row {
			return true
		}
	}
	return false
}
