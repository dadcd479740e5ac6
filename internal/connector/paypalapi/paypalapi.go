// Package paypalapi provides the connector for PayPal activity. PayPal
// exposes card activity and balance/transfer activity as independent
// sub-ledgers; the connector fetches both and merges them into one
// chronologically sortable stream. The ledgers fed from this connector
// store only formatted text, so dedup uses the temporal-boundary
// strategy.
package paypalapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"fjacquet/ledger-sync/internal/connector"
	"fjacquet/ledger-sync/internal/currencyutils"
	"fjacquet/ledger-sync/internal/dateutils"
	"fjacquet/ledger-sync/internal/logging"
	"fjacquet/ledger-sync/internal/models"
	"fjacquet/ledger-sync/internal/syncerror"
)

// DefaultBaseURL is the production PayPal reporting endpoint.
const DefaultBaseURL = "https://api.paypal.com"

// subLedgers are the independent record streams the provider exposes.
var subLedgers = []string{"card", "balance"}

// noiseDescriptions are placeholder records with no informational
// content. They are dropped during normalization, before dedup ever sees
// them.
var noiseDescriptions = []string{
	"payment received, thank you",
	"thank you for your payment",
}

// Config holds the per-source settings for a PayPal connector.
type Config struct {
	Name    string
	BaseURL string
	// ClientToken is the pre-obtained OAuth access token. Token refresh
	// is owned by the caller, not this connector.
	ClientToken string
	Account     string
}

// Connector fetches activity from both PayPal sub-ledgers and normalizes
// it into canonical transactions.
type Connector struct {
	cfg    Config
	client *connector.HTTPClient
	log    logging.Logger
}

type activityPage struct {
	Transactions []activity `json:"transactions"`
	Page         int        `json:"page"`
	TotalPages   int        `json:"total_pages"`
}

// activity is the subset of a PayPal activity row the connector reads.
// Balance/transfer rows frequently arrive without a transaction id.
type activity struct {
	ID        string `json:"transaction_id"`
	Date      string `json:"transaction_date"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency_code"`
	Status    string `json:"status"`
	Subject   string `json:"subject"`
	Note      string `json:"note"`
	PayerName string `json:"payer_name"`
	InvoiceID string `json:"invoice_id"`
}

// New creates a PayPal connector.
func New(cfg Config, logger logging.Logger, opts ...connector.HTTPClientOption) *Connector {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = logging.GetLogger()
	}
	logger = logger.WithField(logging.FieldSource, cfg.Name)
	return &Connector{
		cfg:    cfg,
		client: connector.NewHTTPClient(cfg.BaseURL, "Authorization", "Bearer "+cfg.ClientToken, logger, opts...),
		log:    logger,
	}
}

// Name returns the configured source name.
func (c *Connector) Name() string {
	return c.cfg.Name
}

// Probe checks connectivity by requesting the first page of the card
// sub-ledger.
func (c *Connector) Probe(ctx context.Context) bool {
	_, err := c.client.Get(ctx, "/v1/reporting/transactions", url.Values{
		"ledger": []string{"card"},
		"page":   []string{"1"},
	})
	return err == nil
}

// Fetch retrieves every page of both sub-ledgers and merges the results.
// Same-instant records with the same normalized identity collapse to the
// later one before the merged batch is returned.
func (c *Connector) Fetch(ctx context.Context) ([]models.Transaction, error) {
	var all []models.Transaction

	for _, ledger := range subLedgers {
		txs, err := c.fetchSubLedger(ctx, ledger)
		if err != nil {
			return nil, err
		}
		all = append(all, txs...)
	}

	all = models.DedupeWithinBatch(all)
	c.log.Info("fetched activity", logging.F(logging.FieldCount, len(all)))
	return all, nil
}

func (c *Connector) fetchSubLedger(ctx context.Context, ledger string) ([]models.Transaction, error) {
	var result []models.Transaction

	for page := 1; ; page++ {
		query := url.Values{
			"ledger": []string{ledger},
			"page":   []string{strconv.Itoa(page)},
		}
		body, err := c.client.Get(ctx, "/v1/reporting/transactions", query)
		if err != nil {
			return nil, &syncerror.ConnectorError{
				Source: c.cfg.Name, Op: fmt.Sprintf("list %s activity", ledger), Err: err,
			}
		}

		var resp activityPage
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, &syncerror.ConnectorError{
				Source: c.cfg.Name, Op: fmt.Sprintf("decode %s activity", ledger), Err: err,
			}
		}

		for _, a := range resp.Transactions {
			tx, ok, err := c.normalize(a, ledger)
			if err != nil {
				return nil, &syncerror.ConnectorError{
					Source: c.cfg.Name, Op: "normalize activity", Err: err,
				}
			}
			if ok {
				result = append(result, tx)
			}
		}

		if resp.TotalPages == 0 || page >= resp.TotalPages {
			break
		}
	}

	return result, nil
}

// normalize converts one activity row into a canonical transaction.
// Non-completed rows and noise placeholders are dropped; rows without a
// native id get a synthesized identity from date, amount and memo.
func (c *Connector) normalize(a activity, ledger string) (models.Transaction, bool, error) {
	if !strings.EqualFold(a.Status, "completed") {
		return models.Transaction{}, false, nil
	}

	description := strings.TrimSpace(a.Subject)
	if description == "" {
		description = strings.TrimSpace(a.PayerName)
	}
	if isNoise(description) {
		return models.Transaction{}, false, nil
	}

	date, err := dateutils.ParseDate(a.Date)
	if err != nil {
		return models.Transaction{}, false, &syncerror.NormalizeError{
			Source: c.cfg.Name, Field: "transaction_date", Value: a.Date, Err: err,
		}
	}

	signed, err := currencyutils.ParseAmount(a.Amount)
	if err != nil {
		return models.Transaction{}, false, &syncerror.NormalizeError{
			Source: c.cfg.Name, Field: "amount", Value: a.Amount, Err: err,
		}
	}
	// Zero-amount rows carry no ledger-worthy information; drop them like
	// noise placeholders.
	if signed.IsZero() {
		return models.Transaction{}, false, nil
	}
	direction := models.DirectionIncome
	if signed.IsNegative() {
		direction = models.DirectionExpense
	}
	amount := signed.Abs()

	id := ""
	if a.ID != "" {
		id = fmt.Sprintf("%s_%s", c.cfg.Name, a.ID)
	} else {
		id = models.SynthesizeID(c.cfg.Name, date, amount, a.Note)
	}

	tx, err := models.NewTransaction(models.Transaction{
		ID:          id,
		Date:        date,
		Amount:      amount,
		Currency:    a.Currency,
		Direction:   direction,
		Description: description,
		Memo:        strings.TrimSpace(a.Note),
		Account:     fmt.Sprintf("%s-%s", c.cfg.Account, ledger),
		ReferenceID: a.InvoiceID,
		SourceMetadata: map[string]string{
			"sub_ledger": ledger,
			"payer":      a.PayerName,
		},
	})
	if err != nil {
		return models.Transaction{}, false, &syncerror.NormalizeError{
			Source: c.cfg.Name, Field: "activity", Value: a.ID, Err: err,
		}
	}
	return tx, true, nil
}

func isNoise(description string) bool {
	if description == "" {
		return true
	}
	for _, pattern := range noiseDescriptions {
		if strings.EqualFold(strings.TrimSpace(description), pattern) {
			return true
		}
	}
	return false
}
