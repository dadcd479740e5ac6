// Package csvledger implements the sink against local CSV files, one
// file per ledger. It is used for offline runs and keeps the exact same
// textual encoding as the spreadsheet sink, so both dedup strategies
// behave identically against it.
package csvledger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gocarina/gocsv"

	"fjacquet/ledger-sync/internal/dateutils"
	"fjacquet/ledger-sync/internal/logging"
	"fjacquet/ledger-sync/internal/models"
	"fjacquet/ledger-sync/internal/sinkfmt"
)

// ledgerRecord is one CSV row. All cells are formatted text; the ID cell
// is empty for rows written by temporal-boundary sources.
type ledgerRecord struct {
	ID          string `csv:"ID"`
	Date        string `csv:"Date"`
	Amount      string `csv:"Amount"`
	Currency    string `csv:"Currency"`
	Description string `csv:"Description"`
	Category    string `csv:"Category"`
	Account     string `csv:"Account"`
}

// Sink reads and appends ledger rows in CSV files under a directory.
type Sink struct {
	dir   string
	rules sinkfmt.Rules
	log   logging.Logger
	mu    sync.Mutex
}

// New creates a CSV ledger sink rooted at dir.
func New(dir string, rules sinkfmt.Rules, logger logging.Logger) *Sink {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Sink{dir: dir, rules: rules, log: logger}
}

func (s *Sink) path(ledger string) string {
	return filepath.Join(s.dir, ledger+".csv")
}

// readAll loads every record of a ledger file. A missing file is an
// empty ledger, not an error.
func (s *Sink) readAll(ledger string) ([]ledgerRecord, error) {
	file, err := os.Open(s.path(ledger))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error opening ledger file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.log.WithError(err).Warn("failed to close ledger file")
		}
	}()

	var records []ledgerRecord
	if err := gocsv.UnmarshalFile(file, &records); err != nil {
		return nil, fmt.Errorf("error parsing ledger file: %w", err)
	}
	return records, nil
}

// IdentitySet returns every non-empty ID cell in the ledger.
func (s *Sink) IdentitySet(ctx context.Context, ledger string) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll(ledger)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r.ID != "" {
			ids[r.ID] = struct{}{}
		}
	}
	return ids, nil
}

// TemporalAnchor scans the date column, ignoring unparseable cells, and
// returns the latest date together with that day's textual rows.
func (s *Sink) TemporalAnchor(ctx context.Context, ledger string) (*models.TemporalAnchor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll(ledger)
	if err != nil {
		return nil, err
	}

	anchor := &models.TemporalAnchor{}
	for _, r := range records {
		date, err := dateutils.ParseLedgerDate(r.Date)
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

	for _, r := range records {
		date, err := dateutils.ParseLedgerDate(r.Date)
		if err != nil {
			continue
		}
		if date.Equal(*anchor.LatestDate) {
			anchor.LatestDateRows = append(anchor.LatestDateRows, models.LedgerRow{
				DateText:        r.Date,
				AmountText:      r.Amount,
				DescriptionText: r.Description,
			})
		}
	}
	return anchor, nil
}

// Append formats the transactions and rewrites the ledger file with the
// new rows at the end.
func (s *Sink) Append(ctx context.Context, ledger string, txs []models.Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll(ledger)
	if err != nil {
		return 0, err
	}

	for _, tx := range txs {
		row := s.rules.Row(tx)
		records = append(records, ledgerRecord{
			ID:          tx.ID,
			Date:        row.DateText,
			Amount:      row.AmountText,
			Currency:    tx.Currency,
			Description: row.DescriptionText,
			Category:    tx.Category,
			Account:     tx.Account,
		})
	}

	if err := os.MkdirAll(s.dir, 0750); err != nil {
		return 0, fmt.Errorf("error creating ledger directory: %w", err)
	}
	file, err := os.Create(s.path(ledger))
	if err != nil {
		return 0, fmt.Errorf("error creating ledger file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.log.WithError(err).Warn("failed to close ledger file")
		}
	}()

	if err := gocsv.MarshalFile(&records, file); err != nil {
		return 0, fmt.Errorf("error writing ledger file: %w", err)
	}

	s.log.Info("appended rows to ledger",
		logging.F(logging.FieldLedger, ledger),
		logging.F(logging.FieldCount, len(txs)))
	return len(txs), nil
}
