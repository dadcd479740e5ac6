// Package stripeapi provides the connector for Stripe charge data. Stripe
// assigns globally stable charge ids, so ledgers fed from this connector
// use the identity-set dedup strategy.
package stripeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"fjacquet/ledger-sync/internal/connector"
	"fjacquet/ledger-sync/internal/dateutils"
	"fjacquet/ledger-sync/internal/logging"
	"fjacquet/ledger-sync/internal/models"
	"fjacquet/ledger-sync/internal/syncerror"
)

const (
	// DefaultBaseURL is the production Stripe API endpoint.
	DefaultBaseURL = "https://api.stripe.com"

	pageLimit = 100
)

// Config holds the per-source settings for a Stripe connector.
type Config struct {
	// Name is the configured source name, also used as the id prefix.
	Name string

	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string

	// APIKey is the secret key sent as a bearer token.
	APIKey string

	// Account is the logical account label written to the ledger.
	Account string
}

// Connector fetches charges from the Stripe API and normalizes them into
// canonical transactions.
type Connector struct {
	cfg    Config
	client *connector.HTTPClient
	log    logging.Logger
}

// chargePage is one page of the charges list response.
type chargePage struct {
	Data    []charge `json:"data"`
	HasMore bool     `json:"has_more"`
}

// charge is the subset of the Stripe charge object the connector reads.
type charge struct {
	ID          string `json:"id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Created     int64  `json:"created"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Refunded    bool   `json:"refunded"`
	ReceiptNo   string `json:"receipt_number"`
	Customer    string `json:"customer"`
}

// New creates a Stripe connector.
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
		client: connector.NewHTTPClient(cfg.BaseURL, "Authorization", "Bearer "+cfg.APIKey, logger, opts...),
		log:    logger,
	}
}

// Name returns the configured source name.
func (c *Connector) Name() string {
	return c.cfg.Name
}

// Probe checks connectivity by listing a single charge.
func (c *Connector) Probe(ctx context.Context) bool {
	_, err := c.client.Get(ctx, "/v1/charges", url.Values{"limit": []string{"1"}})
	return err == nil
}

// Fetch pages through the charges list until Stripe reports no further
// pages, normalizing each charge. Non-final charges are dropped here.
func (c *Connector) Fetch(ctx context.Context) ([]models.Transaction, error) {
	var (
		all           []models.Transaction
		startingAfter string
	)

	for {
		query := url.Values{"limit": []string{strconv.Itoa(pageLimit)}}
		if startingAfter != "" {
			query.Set("starting_after", startingAfter)
		}

		body, err := c.client.Get(ctx, "/v1/charges", query)
		if err != nil {
			return nil, &syncerror.ConnectorError{Source: c.cfg.Name, Op: "list charges", Err: err}
		}

		var page chargePage
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, &syncerror.ConnectorError{Source: c.cfg.Name, Op: "decode charges", Err: err}
		}

		for _, ch := range page.Data {
			tx, ok, err := c.normalize(ch)
			if err != nil {
				return nil, &syncerror.ConnectorError{Source: c.cfg.Name, Op: "normalize charge", Err: err}
			}
			if ok {
				all = append(all, tx)
			}
		}

		if !page.HasMore || len(page.Data) == 0 {
			break
		}
		startingAfter = page.Data[len(page.Data)-1].ID
	}

	all = models.DedupeWithinBatch(all)
	c.log.Info("fetched charges", logging.F(logging.FieldCount, len(all)))
	return all, nil
}

// normalize converts one charge into a canonical transaction. It returns
// ok=false for charges that should be silently dropped: anything not in a
// final succeeded state carries no ledger-worthy information.
func (c *Connector) normalize(ch charge) (models.Transaction, bool, error) {
	if ch.Status != "succeeded" {
		return models.Transaction{}, false, nil
	}
	// Zero-amount charges (fully discounted, zero-value transfers) carry
	// no ledger-worthy information and would be rejected by the canonical
	// model anyway.
	if ch.Amount == 0 {
		return models.Transaction{}, false, nil
	}

	if ch.ID == "" {
		return models.Transaction{}, false, &syncerror.NormalizeError{
			Source: c.cfg.Name, Field: "id", Value: "", Err: fmt.Errorf("charge without id"),
		}
	}
	if ch.Created == 0 {
		return models.Transaction{}, false, &syncerror.NormalizeError{
			Source: c.cfg.Name, Field: "created", Value: "0", Err: fmt.Errorf("charge without timestamp"),
		}
	}

	// Stripe amounts are integer minor units.
	amount := decimal.New(ch.Amount, -2)
	direction := models.DirectionIncome
	if ch.Refunded {
		direction = models.DirectionExpense
	}

	tx, err := models.NewTransaction(models.Transaction{
		ID:          fmt.Sprintf("%s_%s", c.cfg.Name, ch.ID),
		Date:        dateutils.FromUnixSeconds(ch.Created),
		Amount:      amount,
		Currency:    ch.Currency,
		Direction:   direction,
		Description: ch.Description,
		Account:     c.cfg.Account,
		ReferenceID: ch.ReceiptNo,
		SourceMetadata: map[string]string{
			"customer": ch.Customer,
		},
	})
	if err != nil {
		return models.Transaction{}, false, &syncerror.NormalizeError{
			Source: c.cfg.Name, Field: "charge", Value: ch.ID, Err: err,
		}
	}
	return tx, true, nil
}
