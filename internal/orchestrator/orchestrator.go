// Package orchestrator coordinates a sync run across all configured
// sources: fetch, dedup against the sink, categorize and append. Sources
// run concurrently and fail independently; one broken provider never
// stops the others.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"fjacquet/ledger-sync/internal/anchor"
	"fjacquet/ledger-sync/internal/categorizer"
	"fjacquet/ledger-sync/internal/connector"
	"fjacquet/ledger-sync/internal/logging"
	"fjacquet/ledger-sync/internal/models"
	"fjacquet/ledger-sync/internal/sink"
	"fjacquet/ledger-sync/internal/syncerror"
)

// Source binds a connector to its target ledger and dedup strategy.
type Source struct {
	Connector connector.Connector
	Ledger    string
	Strategy  anchor.Strategy
}

// Engine runs sync cycles. It keeps no state between runs; every run
// re-derives the anchor from the sink.
type Engine struct {
	sink        sink.Sink
	resolver    *anchor.Resolver
	categorizer *categorizer.Categorizer
	log         logging.Logger

	sources map[string]Source

	// Serializes appends so concurrent sources never interleave writes
	// to the sink.
	appendMu sync.Mutex
}

// NewEngine creates an engine writing to the given sink.
func NewEngine(s sink.Sink, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Engine{
		sink:     s,
		resolver: anchor.NewResolver(s, logger),
		log:      logger,
		sources:  make(map[string]Source),
	}
}

// SetCategorizer enables best-effort categorization of new transactions
// before they are appended.
func (e *Engine) SetCategorizer(c *categorizer.Categorizer) {
	e.categorizer = c
}

// Register adds a source under its connector name.
func (e *Engine) Register(src Source) error {
	if src.Connector == nil {
		return fmt.Errorf("source has no connector")
	}
	name := src.Connector.Name()
	if name == "" {
		return fmt.Errorf("source connector has no name")
	}
	if _, exists := e.sources[name]; exists {
		return fmt.Errorf("source %s already registered", name)
	}
	if src.Ledger == "" {
		return fmt.Errorf("source %s has no ledger", name)
	}
	e.sources[name] = src
	return nil
}

// selectSources resolves requested names against the registry. An empty
// request selects everything.
func (e *Engine) selectSources(names []string) (map[string]Source, []string) {
	if len(names) == 0 {
		return e.sources, nil
	}
	selected := make(map[string]Source, len(names))
	var unknown []string
	for _, name := range names {
		if src, ok := e.sources[name]; ok {
			selected[name] = src
		} else {
			unknown = append(unknown, name)
		}
	}
	return selected, unknown
}

// Sources returns the registered source names, sorted.
func (e *Engine) Sources() []string {
	names := make([]string, 0, len(e.sources))
	for name := range e.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes one sync cycle. With no names it covers every registered
// source; with names it covers that subset, reporting unknown names as
// failed results. It returns an error only when no valid source is
// selected; per-source failures are reported in the summary instead.
func (e *Engine) Run(ctx context.Context, names ...string) (*models.RunSummary, error) {
	selected, unknown := e.selectSources(names)
	if len(selected) == 0 {
		return nil, fmt.Errorf("no valid sources selected")
	}

	summary := models.NewRunSummary()
	e.log.Info("starting sync run",
		logging.F(logging.FieldRunID, summary.RunID),
		logging.F(logging.FieldCount, len(selected)))

	results := make(chan models.SyncResult, len(selected))
	var wg sync.WaitGroup
	for name, src := range selected {
		wg.Add(1)
		go func(name string, src Source) {
			defer wg.Done()
			results <- e.syncSource(ctx, name, src)
		}(name, src)
	}
	wg.Wait()
	close(results)

	collected := make([]models.SyncResult, 0, len(selected)+len(unknown))
	for result := range results {
		collected = append(collected, result)
	}
	for _, name := range unknown {
		collected = append(collected, models.SyncResult{
			Source: name,
			Errors: []string{fmt.Sprintf("unknown source: %s", name)},
		})
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].Source < collected[j].Source })
	for _, result := range collected {
		summary.Add(result)
	}

	if e.categorizer != nil {
		if err := e.categorizer.Save(); err != nil {
			e.log.WithError(err).Warn("failed to save learned payee mappings")
		}
	}

	summary.Duration = time.Since(summary.StartedAt)
	e.log.Info("sync run finished",
		logging.F(logging.FieldRunID, summary.RunID),
		logging.F(logging.FieldFetched, summary.TotalFetched),
		logging.F(logging.FieldNew, summary.TotalNew),
		logging.F(logging.FieldDuration, summary.Duration))
	return summary, nil
}

// syncSource runs the full pipeline for one source. Every error is
// captured in the result so the caller's run keeps going.
func (e *Engine) syncSource(ctx context.Context, name string, src Source) models.SyncResult {
	result := models.SyncResult{Source: name}
	log := e.log.WithFields(
		logging.F(logging.FieldSource, name),
		logging.F(logging.FieldLedger, src.Ledger),
		logging.F(logging.FieldStrategy, string(src.Strategy.Kind)),
	)

	fetched, err := src.Connector.Fetch(ctx)
	if err != nil {
		var connErr *syncerror.ConnectorError
		if !errors.As(err, &connErr) {
			err = &syncerror.ConnectorError{Source: name, Op: "fetch", Err: err}
		}
		log.WithError(err).Error("source fetch failed")
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	result.TotalFetched = len(fetched)

	// An unreadable anchor degrades the run rather than aborting it: the
	// resolver offers everything fetched and the error is surfaced in the
	// result so the run is not reported clean.
	fresh, err := e.resolver.FilterNew(ctx, src.Ledger, src.Strategy, fetched)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		if fresh == nil {
			log.WithError(err).Error("dedup filtering failed")
			return result
		}
	}

	if e.categorizer != nil {
		fresh = e.categorizer.Apply(ctx, fresh)
	}

	e.appendMu.Lock()
	written, err := e.sink.Append(ctx, src.Ledger, fresh)
	e.appendMu.Unlock()
	result.NewCount = written
	if err != nil {
		persistErr := &syncerror.PersistError{Ledger: src.Ledger, Written: written, Err: err}
		log.WithError(persistErr).Error("append to sink failed")
		result.Errors = append(result.Errors, persistErr.Error())
		return result
	}

	log.Info("source synced",
		logging.F(logging.FieldFetched, result.TotalFetched),
		logging.F(logging.FieldNew, result.NewCount))
	return result
}

// TestConnections probes every registered source concurrently and
// reports reachability per source name.
func (e *Engine) TestConnections(ctx context.Context) map[string]bool {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		status = make(map[string]bool, len(e.sources))
	)

	for name, src := range e.sources {
		wg.Add(1)
		go func(name string, src Source) {
			defer wg.Done()
			ok := src.Connector.Probe(ctx)
			mu.Lock()
			status[name] = ok
			mu.Unlock()
		}(name, src)
	}
	wg.Wait()
	return status
}
