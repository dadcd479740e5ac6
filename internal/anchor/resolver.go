package anchor

import (
	"context"
	"fmt"

	"fjacquet/ledger-sync/internal/dateutils"
	"fjacquet/ledger-sync/internal/logging"
	"fjacquet/ledger-sync/internal/models"
	"fjacquet/ledger-sync/internal/sink"
	"fjacquet/ledger-sync/internal/sinkfmt"
	"fjacquet/ledger-sync/internal/syncerror"
)

// Resolver reads the sync anchor from the sink and filters freshly
// fetched transactions down to the not-yet-recorded subset. Anchors are
// recomputed fresh from the sink on every run; nothing is cached between
// runs, so the engine is stateless and safe to restart.
type Resolver struct {
	sink sink.Sink
	log  logging.Logger
}

// NewResolver creates a resolver backed by the given sink.
func NewResolver(s sink.Sink, logger logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Resolver{sink: s, log: logger}
}

// FilterNew resolves the anchor for the ledger and returns the fetched
// transactions not already recorded, sorted ascending by date.
//
// If the anchor cannot be read, everything fetched is offered together
// with the AnchorReadError: duplicate offers are safer than silently
// skipping a sync, and the next healthy run re-anchors cleanly. Callers
// must still record the error so a broken anchor is visible in the run
// summary, not just the logs.
func (r *Resolver) FilterNew(ctx context.Context, ledger string, strategy Strategy, fetched []models.Transaction) ([]models.Transaction, error) {
	var (
		fresh []models.Transaction
		err   error
	)

	switch strategy.Kind {
	case IdentitySet:
		fresh, err = r.filterByIdentity(ctx, ledger, fetched)
	case TemporalBoundary:
		fresh, err = r.filterByTemporalBoundary(ctx, ledger, strategy.Rules, fetched)
	default:
		return nil, fmt.Errorf("unknown dedup strategy: %q", strategy.Kind)
	}

	if err != nil {
		anchorErr := &syncerror.AnchorReadError{Ledger: ledger, Err: err}
		r.log.WithError(anchorErr).Warn("anchor unreadable, offering all fetched transactions",
			logging.F(logging.FieldLedger, ledger))
		fresh = append([]models.Transaction{}, fetched...)
		models.SortByDate(fresh)
		return fresh, anchorErr
	}

	models.SortByDate(fresh)
	return fresh, nil
}

// filterByIdentity keeps every transaction whose id is not already in the
// ledger. A transaction is re-offered on every run until durably
// recorded; once recorded it is never offered again.
func (r *Resolver) filterByIdentity(ctx context.Context, ledger string, fetched []models.Transaction) ([]models.Transaction, error) {
	known, err := r.sink.IdentitySet(ctx, ledger)
	if err != nil {
		return nil, err
	}
	anchor := models.IdentityAnchor{KnownIDs: known}

	fresh := make([]models.Transaction, 0, len(fetched))
	for _, tx := range fetched {
		if !anchor.Contains(tx.ID) {
			fresh = append(fresh, tx)
		}
	}

	r.log.Debug("identity anchor resolved",
		logging.F(logging.FieldLedger, ledger),
		logging.F("known_ids", len(known)),
		logging.F(logging.FieldNew, len(fresh)))
	return fresh, nil
}

// filterByTemporalBoundary applies the three-zone rule around the latest
// ledger date: strictly before is already synced, strictly after is
// unconditionally new, and the boundary day itself is decided by an exact
// text match against the rows already written on that day.
//
// Matching is pure text membership: any fetched transaction whose
// formatted date, amount and description already appear among the
// boundary-day rows is treated as synced, regardless of multiplicity.
// The ledger stores no stronger identity, so this approximation is kept
// as is.
func (r *Resolver) filterByTemporalBoundary(ctx context.Context, ledger string, rules sinkfmt.Rules, fetched []models.Transaction) ([]models.Transaction, error) {
	anchor, err := r.sink.TemporalAnchor(ctx, ledger)
	if err != nil {
		return nil, err
	}

	if anchor == nil || anchor.LatestDate == nil {
		// Empty or fully unparseable ledger: everything is new.
		return append([]models.Transaction{}, fetched...), nil
	}

	boundary := dateutils.DayUTC(*anchor.LatestDate)
	fresh := make([]models.Transaction, 0, len(fetched))
	for _, tx := range fetched {
		day := dateutils.DayUTC(tx.Date)
		switch {
		case day.Before(boundary):
			// Already synced; no content comparison needed.
		case day.After(boundary):
			fresh = append(fresh, tx)
		default:
			if !anchor.HasRow(rules.Row(tx)) {
				fresh = append(fresh, tx)
			}
		}
	}

	r.log.Debug("temporal anchor resolved",
		logging.F(logging.FieldLedger, ledger),
		logging.F("latest_date", boundary.Format("2006-01-02")),
		logging.F("boundary_rows", len(anchor.LatestDateRows)),
		logging.F(logging.FieldNew, len(fresh)))
	return fresh, nil
}
