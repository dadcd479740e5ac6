// Package models provides the canonical data structures shared by
// connectors, the anchor resolver and the sink.
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Direction indicates whether money moved in or out. The sign is carried
// out-of-band from the amount to avoid silent sign errors during formatting.
type Direction string

const (
	DirectionIncome  Direction = "income"
	DirectionExpense Direction = "expense"
)

// Transaction is the canonical, provider-independent representation of a
// financial transaction. It is constructed once by a connector's
// normalization step and never mutated afterwards.
type Transaction struct {
	// ID is the stable identity: "{source}_{nativeID}" when the provider
	// assigns one, otherwise synthesized from date, amount and memo.
	ID string

	// Date is the transaction instant normalized to UTC.
	Date time.Time

	// Amount is always a positive magnitude; Direction carries the sign.
	Amount   decimal.Decimal
	Currency string

	Direction   Direction
	Description string
	Memo        string
	Category    string

	// Account is the logical source/account label, e.g. "paypal-card".
	Account string

	// ReferenceID holds a provider reference that is not the identity,
	// e.g. an invoice or settlement reference.
	ReferenceID string

	// SourceMetadata carries opaque per-provider fields for downstream
	// formatting. The dedup core never reads it.
	SourceMetadata map[string]string
}

// NewTransaction validates the canonical invariants and returns the
// transaction. Connectors should build transactions through this so that
// invalid records are rejected during normalization instead of reaching
// the ledger.
func NewTransaction(t Transaction) (Transaction, error) {
	if t.ID == "" {
		return Transaction{}, fmt.Errorf("transaction has no identity")
	}
	if t.Date.IsZero() {
		return Transaction{}, fmt.Errorf("transaction %s has no date", t.ID)
	}
	if !t.Amount.IsPositive() {
		return Transaction{}, fmt.Errorf("transaction %s has non-positive amount %s", t.ID, t.Amount)
	}
	if t.Direction != DirectionIncome && t.Direction != DirectionExpense {
		return Transaction{}, fmt.Errorf("transaction %s has invalid direction %q", t.ID, t.Direction)
	}
	if t.Currency == "" {
		return Transaction{}, fmt.Errorf("transaction %s has no currency", t.ID)
	}
	t.Date = t.Date.UTC()
	t.Currency = strings.ToUpper(t.Currency)
	return t, nil
}

// SignedAmount returns the amount with the direction applied as a sign:
// positive for income, negative for expense.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Direction == DirectionExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// SynthesizeID produces a deterministic identity for providers without a
// native unique identifier. The same date, amount and memo always yield
// the same ID, so repeated fetches of the same record collide as intended.
func SynthesizeID(source string, date time.Time, amount decimal.Decimal, memo string) string {
	input := strings.Join([]string{
		source,
		date.UTC().Format("2006-01-02T15:04:05"),
		amount.StringFixed(2),
		strings.ToLower(strings.TrimSpace(memo)),
	}, "|")
	sum := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%s_%s", source, hex.EncodeToString(sum[:8]))
}

// SortByDate sorts transactions ascending by date, in place. The sort is
// stable so same-instant transactions keep their fetch order.
func SortByDate(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.Before(txs[j].Date)
	})
}

// DedupeWithinBatch collapses transactions that share the same identity
// within a single fetch batch. The later occurrence wins. This is the
// connector-boundary last-write-wins rule, distinct from the sink-level
// dedup performed by the anchor resolver.
func DedupeWithinBatch(txs []Transaction) []Transaction {
	lastIndex := make(map[string]int, len(txs))
	for i, t := range txs {
		lastIndex[t.ID] = i
	}

	result := make([]Transaction, 0, len(lastIndex))
	for i, t := range txs {
		if lastIndex[t.ID] == i {
			result = append(result, t)
		}
	}
	return result
}
