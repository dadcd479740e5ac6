// Package camtbank provides the connector for banks that expose account
// statements as CAMT.053 XML over HTTP. Statement entries carry no id
// that survives the round trip to the ledger, so ledgers fed from this
// connector use the temporal-boundary dedup strategy.
package camtbank

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/xmlpath.v2"

	"fjacquet/ledger-sync/internal/connector"
	"fjacquet/ledger-sync/internal/dateutils"
	"fjacquet/ledger-sync/internal/logging"
	"fjacquet/ledger-sync/internal/models"
	"fjacquet/ledger-sync/internal/syncerror"
	"fjacquet/ledger-sync/internal/textutils"
)

// XPath expressions for the CAMT.053 entry fields the connector reads.
var (
	pathStatement   = xmlpath.MustCompile("//BkToCstmrStmt/Stmt")
	pathEntry       = xmlpath.MustCompile("//Ntry")
	pathAmount      = xmlpath.MustCompile("Amt")
	pathCurrency    = xmlpath.MustCompile("Amt/@Ccy")
	pathCreditDebit = xmlpath.MustCompile("CdtDbtInd")
	pathBookingDate = xmlpath.MustCompile("BookgDt/Dt")
	pathStatus      = xmlpath.MustCompile("Sts")
	pathReference   = xmlpath.MustCompile("NtryDtls/TxDtls/Refs/EndToEndId")
	pathRemittance  = xmlpath.MustCompile("NtryDtls/TxDtls/RmtInf/Ustrd")
	pathAddInfo     = xmlpath.MustCompile("AddtlNtryInf")
)

// Config holds the per-source settings for a CAMT bank connector.
type Config struct {
	Name    string
	BaseURL string
	// APIToken authenticates against the bank's statement endpoint.
	APIToken string
	// StatementPath is the endpoint returning the CAMT.053 document.
	StatementPath string
	Account       string
}

// Connector fetches a CAMT.053 statement and normalizes its booked
// entries into canonical transactions.
type Connector struct {
	cfg    Config
	client *connector.HTTPClient
	log    logging.Logger
}

// New creates a CAMT bank connector.
func New(cfg Config, logger logging.Logger, opts ...connector.HTTPClientOption) *Connector {
	if cfg.StatementPath == "" {
		cfg.StatementPath = "/statements/latest"
	}
	if logger == nil {
		logger = logging.GetLogger()
	}
	logger = logger.WithField(logging.FieldSource, cfg.Name)
	return &Connector{
		cfg:    cfg,
		client: connector.NewHTTPClient(cfg.BaseURL, "X-Api-Token", cfg.APIToken, logger, opts...),
		log:    logger,
	}
}

// Name returns the configured source name.
func (c *Connector) Name() string {
	return c.cfg.Name
}

// Probe fetches the statement and checks it parses as a CAMT.053
// document.
func (c *Connector) Probe(ctx context.Context) bool {
	body, err := c.client.Get(ctx, c.cfg.StatementPath, nil)
	if err != nil {
		return false
	}
	root, err := xmlpath.Parse(bytes.NewReader(body))
	if err != nil {
		return false
	}
	return pathStatement.Iter(root).Next()
}

// Fetch downloads the statement and normalizes each booked entry. The
// statement is a single document, so there is no pagination here; the
// bank rotates the statement window on its side.
func (c *Connector) Fetch(ctx context.Context) ([]models.Transaction, error) {
	body, err := c.client.Get(ctx, c.cfg.StatementPath, nil)
	if err != nil {
		return nil, &syncerror.ConnectorError{Source: c.cfg.Name, Op: "fetch statement", Err: err}
	}

	root, err := xmlpath.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &syncerror.ConnectorError{Source: c.cfg.Name, Op: "parse statement", Err: err}
	}
	if !pathStatement.Iter(root).Next() {
		return nil, &syncerror.ConnectorError{
			Source: c.cfg.Name, Op: "parse statement",
			Err: fmt.Errorf("document is not a CAMT.053 statement"),
		}
	}

	var all []models.Transaction
	iter := pathEntry.Iter(root)
	for iter.Next() {
		entry := iter.Node()
		tx, ok, err := c.normalize(entry)
		if err != nil {
			return nil, &syncerror.ConnectorError{Source: c.cfg.Name, Op: "normalize entry", Err: err}
		}
		if ok {
			all = append(all, tx)
		}
	}

	all = models.DedupeWithinBatch(all)
	c.log.Info("fetched statement entries", logging.F(logging.FieldCount, len(all)))
	return all, nil
}

// normalize converts one statement entry. Entries not yet booked are
// dropped; they reappear as booked entries in a later statement.
func (c *Connector) normalize(entry *xmlpath.Node) (models.Transaction, bool, error) {
	if status := value(pathStatus, entry); !strings.EqualFold(status, "BOOK") {
		return models.Transaction{}, false, nil
	}

	amountText := value(pathAmount, entry)
	amount, err := decimal.NewFromString(amountText)
	if err != nil {
		return models.Transaction{}, false, &syncerror.NormalizeError{
			Source: c.cfg.Name, Field: "Amt", Value: amountText, Err: err,
		}
	}

	dateText := value(pathBookingDate, entry)
	date, err := dateutils.ParseDate(dateText)
	if err != nil {
		return models.Transaction{}, false, &syncerror.NormalizeError{
			Source: c.cfg.Name, Field: "BookgDt", Value: dateText, Err: err,
		}
	}

	direction := models.DirectionExpense
	if strings.EqualFold(value(pathCreditDebit, entry), "CRDT") {
		direction = models.DirectionIncome
	}

	description := value(pathRemittance, entry)
	if description == "" {
		description = value(pathAddInfo, entry)
	}

	var meta map[string]string
	payee := textutils.ExtractPayee(description)
	if payee == "" {
		payee = textutils.ExtractMerchant(description)
	}
	if payee != "" {
		meta = map[string]string{"payee": payee}
	}

	memo := value(pathReference, entry)
	tx, err := models.NewTransaction(models.Transaction{
		ID:             models.SynthesizeID(c.cfg.Name, date, amount, memo+description),
		Date:           date,
		Amount:         amount,
		Currency:       value(pathCurrency, entry),
		Direction:      direction,
		Description:    description,
		Memo:           memo,
		Account:        c.cfg.Account,
		ReferenceID:    memo,
		SourceMetadata: meta,
	})
	if err != nil {
		return models.Transaction{}, false, &syncerror.NormalizeError{
			Source: c.cfg.Name, Field: "Ntry", Value: description, Err: err,
		}
	}
	return tx, true, nil
}

// value evaluates a relative XPath against an entry node and returns the
// trimmed text, or the empty string when the path does not match.
func value(path *xmlpath.Path, node *xmlpath.Node) string {
	if s, ok := path.String(node); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
