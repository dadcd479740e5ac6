// Package sheets implements the sink against a Google Sheets
// spreadsheet. Each ledger maps to one tab whose columns mirror the CSV
// ledger layout: ID, Date, Amount, Currency, Description, Category,
// Account. Only formatted text ever crosses the API boundary.
package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"fjacquet/ledger-sync/internal/dateutils"
	"fjacquet/ledger-sync/internal/logging"
	"fjacquet/ledger-sync/internal/models"
	"fjacquet/ledger-sync/internal/sinkfmt"
)

const (
	colID = iota
	colDate
	colAmount
	colCurrency
	colDescription
	colCategory
	colAccount
)

// Sink reads and appends ledger rows in a Google Sheets spreadsheet.
type Sink struct {
	svc           *gsheets.Service
	spreadsheetID string
	rules         sinkfmt.Rules
	log           logging.Logger
}

// New creates a sheets sink authenticated with a service account
// credentials file.
func New(ctx context.Context, spreadsheetID, credentialsFile string, rules sinkfmt.Rules, logger logging.Logger) (*Sink, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet ID is required")
	}
	if logger == nil {
		logger = logging.GetLogger()
	}

	svc, err := gsheets.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("error creating sheets service: %w", err)
	}
	return &Sink{svc: svc, spreadsheetID: spreadsheetID, rules: rules, log: logger}, nil
}

// dataRange skips the header row and covers all ledger columns.
func dataRange(ledger string) string {
	return fmt.Sprintf("%s!A2:G", ledger)
}

func (s *Sink) readValues(ctx context.Context, ledger string) ([][]interface{}, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, dataRange(ledger)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("error reading ledger tab %s: %w", ledger, err)
	}
	return resp.Values, nil
}

// IdentitySet returns every non-empty ID cell in the ledger tab.
func (s *Sink) IdentitySet(ctx context.Context, ledger string) (map[string]struct{}, error) {
	values, err := s.readValues(ctx, ledger)
	if err != nil {
		return nil, err
	}
	return identitySetFromValues(values), nil
}

// TemporalAnchor scans the date column of the ledger tab, ignoring
// unparseable cells, and returns the latest date with its textual rows.
func (s *Sink) TemporalAnchor(ctx context.Context, ledger string) (*models.TemporalAnchor, error) {
	values, err := s.readValues(ctx, ledger)
	if err != nil {
		return nil, err
	}
	return anchorFromValues(values), nil
}

// Append formats the transactions and appends them below the existing
// rows of the ledger tab.
func (s *Sink) Append(ctx context.Context, ledger string, txs []models.Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}

	values := make([][]interface{}, 0, len(txs))
	for _, tx := range txs {
		values = append(values, rowValues(tx, s.rules))
	}

	_, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, dataRange(ledger), &gsheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("error appending to ledger tab %s: %w", ledger, err)
	}

	s.log.Info("appended rows to spreadsheet",
		logging.F(logging.FieldLedger, ledger),
		logging.F(logging.FieldCount, len(txs)))
	return len(txs), nil
}

// cell returns the trimmed string content of a cell, or "" when the row
// is too short or the cell holds a non-string value.
func cell(row []interface{}, idx int) string {
	if idx >= len(row) {
		return ""
	}
	s, ok := row[idx].(string)
	if !ok {
		return ""
	}
	return s
}

func identitySetFromValues(values [][]interface{}) map[string]struct{} {
	ids := make(map[string]struct{}, len(values))
	for _, row := range values {
		if id := cell(row, colID); id != "" {
			ids[id] = struct{}{}
		}
	}
	return ids
}

func anchorFromValues(values [][]interface{}) *models.TemporalAnchor {
	anchor := &models.TemporalAnchor{}
	for _, row := range values {
		date, err := dateutils.ParseLedgerDate(cell(row, colDate))
		if err != nil {
			continue
		}
		if anchor.LatestDate == nil || date.After(*anchor.LatestDate) {
			d := date
			anchor.LatestDate = &d
		}
	}
	if anchor.LatestDate == nil {
		return anchor
	}

	for _, row := range values {
		date, err := dateutils.ParseLedgerDate(cell(row, colDate))
		if err != nil {
			continue
		}
		if date.Equal(*anchor.LatestDate) {
			anchor.LatestDateRows = append(anchor.LatestDateRows, models.LedgerRow{
				DateText:        cell(row, colDate),
				AmountText:      cell(row, colAmount),
				DescriptionText: cell(row, colDescription),
			})
		}
	}
	return anchor
}

func rowValues(tx models.Transaction, rules sinkfmt.Rules) []interface{} {
	row := rules.Row(tx)
	return []interface{}{
		tx.ID,
		row.DateText,
		row.AmountText,
		tx.Currency,
		row.DescriptionText,
		tx.Category,
		tx.Account,
	}
}
