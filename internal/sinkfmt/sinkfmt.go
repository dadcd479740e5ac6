// Package sinkfmt holds the exact string-formatting rules the ledger uses
// for dates and amounts. The temporal-boundary dedup strategy compares
// fetched transactions against ledger rows as text, so these rules must
// reproduce the sink's own encoding byte for byte.
package sinkfmt

import (
	"strings"

	"fjacquet/ledger-sync/internal/models"
)

// Rules describes how a ledger encodes a transaction row as text.
type Rules struct {
	// DateLayout is the Go layout the ledger uses for date cells.
	DateLayout string

	// Decimals is the fixed number of decimal places in amount cells.
	Decimals int32
}

// DefaultRules matches the day-first, two-decimal encoding used by the
// spreadsheet ledgers this engine writes to.
func DefaultRules() Rules {
	return Rules{
		DateLayout: "02/01/2006",
		Decimals:   2,
	}
}

// FormatDate renders a transaction date the way the ledger writes it.
func (r Rules) FormatDate(tx models.Transaction) string {
	return tx.Date.UTC().Format(r.DateLayout)
}

// FormatSignedAmount renders the amount with the direction applied as a
// sign, fixed to the ledger's decimal places. Expenses are negative.
func (r Rules) FormatSignedAmount(tx models.Transaction) string {
	return tx.SignedAmount().StringFixed(r.Decimals)
}

// FormatDescription renders the description cell. The ledger stores the
// description verbatim apart from surrounding whitespace.
func (r Rules) FormatDescription(tx models.Transaction) string {
	return strings.TrimSpace(tx.Description)
}

// Row encodes a transaction as the textual triple the ledger would hold
// for it. Boundary-day matching compares these triples exactly.
func (r Rules) Row(tx models.Transaction) models.LedgerRow {
	return models.LedgerRow{
		DateText:        r.FormatDate(tx),
		AmountText:      r.FormatSignedAmount(tx),
		DescriptionText: r.FormatDescription(tx),
	}
}
