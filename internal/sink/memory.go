package sink

import (
	"context"
	"sync"

	"fjacquet/ledger-sync/internal/dateutils"
	"fjacquet/ledger-sync/internal/models"
	"fjacquet/ledger-sync/internal/sinkfmt"
)

// MemorySink is an in-memory Sink implementation for testing. It stores
// rows the way a real ledger would: as formatted text plus the id column,
// so both dedup strategies behave exactly as they do against a
// spreadsheet. Error fields allow simulating sink failures.
type MemorySink struct {
	mu    sync.Mutex
	rules sinkfmt.Rules
	rows  map[string][]memoryRow

	IdentitySetError    error
	TemporalAnchorError error
	AppendError         error
}

type memoryRow struct {
	id   string
	text models.LedgerRow
}

// NewMemorySink creates an empty in-memory sink using the given rules.
func NewMemorySink(rules sinkfmt.Rules) *MemorySink {
	return &MemorySink{
		rules: rules,
		rows:  make(map[string][]memoryRow),
	}
}

// SeedRow inserts a raw textual row, bypassing formatting. Tests use this
// to reproduce ledgers with legacy or unparseable cells.
func (s *MemorySink) SeedRow(ledger, id, dateText, amountText, descriptionText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[ledger] = append(s.rows[ledger], memoryRow{
		id: id,
		text: models.LedgerRow{
			DateText:        dateText,
			AmountText:      amountText,
			DescriptionText: descriptionText,
		},
	})
}

// RowCount returns the number of rows in the named ledger.
func (s *MemorySink) RowCount(ledger string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows[ledger])
}

// Rows returns a copy of the textual rows in the named ledger, in insert
// order.
func (s *MemorySink) Rows(ledger string) []models.LedgerRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.LedgerRow, 0, len(s.rows[ledger]))
	for _, r := range s.rows[ledger] {
		out = append(out, r.text)
	}
	return out
}

// IdentitySet returns every id already written to the ledger.
func (s *MemorySink) IdentitySet(ctx context.Context, ledger string) (map[string]struct{}, error) {
	if s.IdentitySetError != nil {
		return nil, s.IdentitySetError
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make(map[string]struct{})
	for _, r := range s.rows[ledger] {
		if r.id != "" {
			ids[r.id] = struct{}{}
		}
	}
	return ids, nil
}

// TemporalAnchor scans the date column, ignores unparseable cells and
// returns the latest date with that day's textual rows.
func (s *MemorySink) TemporalAnchor(ctx context.Context, ledger string) (*models.TemporalAnchor, error) {
	if s.TemporalAnchorError != nil {
		return nil, s.TemporalAnchorError
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	anchor := &models.TemporalAnchor{}
	for _, r := range s.rows[ledger] {
		date, err := dateutils.ParseLedgerDate(r.text.DateText)
		if err != nil {
			continue
		}
		if anchor.LatestDate == nil || date.After(*anchor.LatestDate) {
			d := date
			anchor.LatestDate = &d
		}
	}
	if anchor.LatestDate == nil {
		return anchor, nil
	}
	for _, r := range s.rows[ledger] {
		date, err := dateutils.ParseLedgerDate(r.text.DateText)
		if err != nil {
			continue
		}
		if date.Equal(*anchor.LatestDate) {
			anchor.LatestDateRows = append(anchor.LatestDateRows, r.text)
		}
	}
	return anchor, nil
}

// Append formats and stores the transactions.
func (s *MemorySink) Append(ctx context.Context, ledger string, txs []models.Transaction) (int, error) {
	if s.AppendError != nil {
		return 0, s.AppendError
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tx := range txs {
		s.rows[ledger] = append(s.rows[ledger], memoryRow{
			id:   tx.ID,
			text: s.rules.Row(tx),
		})
	}
	return len(txs), nil
}
