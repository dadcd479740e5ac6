// Package common wires configuration into a runnable engine, shared by
// the sync and connection-test commands.
package common

import (
	"context"
	"fmt"
	"time"

	"fjacquet/ledger-sync/internal/anchor"
	"fjacquet/ledger-sync/internal/categorizer"
	"fjacquet/ledger-sync/internal/config"
	"fjacquet/ledger-sync/internal/connector"
	"fjacquet/ledger-sync/internal/connector/camtbank"
	"fjacquet/ledger-sync/internal/connector/paypalapi"
	"fjacquet/ledger-sync/internal/connector/stripeapi"
	"fjacquet/ledger-sync/internal/logging"
	"fjacquet/ledger-sync/internal/orchestrator"
	"fjacquet/ledger-sync/internal/sink"
	"fjacquet/ledger-sync/internal/sink/csvledger"
	"fjacquet/ledger-sync/internal/sink/sheets"
	"fjacquet/ledger-sync/internal/store"
)

// BuildEngine constructs the sink, connectors and optional categorizer
// from configuration. The returned cleanup releases any held clients and
// is safe to call once.
func BuildEngine(ctx context.Context, cfg *config.Config, logger logging.Logger) (*orchestrator.Engine, func(), error) {
	if logger == nil {
		logger = logging.GetLogger()
	}
	cleanup := func() {}

	target, err := buildSink(ctx, cfg, logger)
	if err != nil {
		return nil, cleanup, err
	}

	engine := orchestrator.NewEngine(target, logger)

	httpOpts := []connector.HTTPClientOption{
		connector.WithTimeout(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second),
		connector.WithMaxRetries(cfg.HTTP.MaxRetries),
	}
	for name, src := range cfg.Sources {
		conn, err := buildConnector(name, src, logger, httpOpts)
		if err != nil {
			return nil, cleanup, err
		}
		strategy, err := buildStrategy(cfg, src)
		if err != nil {
			return nil, cleanup, err
		}
		if err := engine.Register(orchestrator.Source{
			Connector: conn,
			Ledger:    src.Ledger,
			Strategy:  strategy,
		}); err != nil {
			return nil, cleanup, err
		}
	}

	if cfg.AI.Enabled {
		categoryStore := store.NewCategoryStore(cfg.Data.Directory, logger)
		gemini, err := categorizer.NewGeminiClient(ctx, cfg.AI.APIKey, cfg.AI.Model,
			time.Duration(cfg.AI.TimeoutSeconds)*time.Second, logger)
		if err != nil {
			return nil, cleanup, fmt.Errorf("error creating AI client: %w", err)
		}
		cat, err := categorizer.New(categoryStore, gemini, cfg.AI.FallbackCategory, logger)
		if err != nil {
			_ = gemini.Close()
			return nil, cleanup, err
		}
		engine.SetCategorizer(cat)
		cleanup = func() {
			if err := gemini.Close(); err != nil {
				logger.WithError(err).Warn("error closing AI client")
			}
		}
	}

	return engine, cleanup, nil
}

func buildSink(ctx context.Context, cfg *config.Config, logger logging.Logger) (sink.Sink, error) {
	switch cfg.Sink.Type {
	case config.SinkTypeCSV:
		return csvledger.New(cfg.Sink.CSV.Directory, cfg.Rules(), logger), nil
	case config.SinkTypeSheets:
		return sheets.New(ctx, cfg.Sink.Sheets.SpreadsheetID, cfg.Sink.Sheets.CredentialsFile, cfg.Rules(), logger)
	default:
		return nil, fmt.Errorf("unknown sink type: %s", cfg.Sink.Type)
	}
}

func buildConnector(name string, src config.SourceConfig, logger logging.Logger, opts []connector.HTTPClientOption) (connector.Connector, error) {
	switch src.Type {
	case config.SourceTypeStripe:
		return stripeapi.New(stripeapi.Config{
			Name:    name,
			BaseURL: src.BaseURL,
			APIKey:  src.APIKey,
			Account: src.Account,
		}, logger, opts...), nil
	case config.SourceTypePayPal:
		return paypalapi.New(paypalapi.Config{
			Name:        name,
			BaseURL:     src.BaseURL,
			ClientToken: src.APIKey,
			Account:     src.Account,
		}, logger, opts...), nil
	case config.SourceTypeCAMT:
		return camtbank.New(camtbank.Config{
			Name:          name,
			BaseURL:       src.BaseURL,
			APIToken:      src.APIKey,
			StatementPath: src.StatementPath,
			Account:       src.Account,
		}, logger, opts...), nil
	default:
		return nil, fmt.Errorf("source %s: unknown type %q", name, src.Type)
	}
}

func buildStrategy(cfg *config.Config, src config.SourceConfig) (anchor.Strategy, error) {
	kind, err := anchor.ParseKind(src.Strategy)
	if err != nil {
		return anchor.Strategy{}, err
	}
	if kind == anchor.TemporalBoundary {
		return anchor.NewTemporalBoundary(cfg.Rules()), nil
	}
	return anchor.NewIdentitySet(), nil
}
