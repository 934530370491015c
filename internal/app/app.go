// Package app wires configuration into a ready-to-use question engine for the
// CLI and API entrypoints.
package app

import (
	"context"
	"fmt"

	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/classifier"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/config"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/fallback"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/ledger"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/observability"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/resolve"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/storage"
)

// App bundles the engine components.
type App struct {
	Store      *storage.SQLStore
	Classifier *classifier.Classifier
	Chain      *fallback.Chain
	logger     *observability.Logger
}

// New builds the engine from cfg.
func New(cfg *config.Config, logger *observability.Logger) (*App, error) {
	if logger == nil {
		logger = observability.NopLogger()
	}

	store, err := storage.NewStoreFromConfig(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	library := ledger.NewLibrary(resolve.NewResolver(logger), logger)
	c := classifier.New(store, library, OptionsFromConfig(cfg), logger)

	var responder fallback.Responder
	if cfg.Fallback.DataQuestionMessage != "" {
		responder = fallback.NewSuggestions(cfg.Fallback.DataQuestionMessage, c.Rules())
	}
	chain := fallback.NewChain(c, responder, fallback.Refusal{Message: cfg.Fallback.RefusalMessage}, logger)

	return &App{Store: store, Classifier: c, Chain: chain, logger: logger}, nil
}

// OptionsFromConfig maps the answers section of cfg onto classifier options.
func OptionsFromConfig(cfg *config.Config) classifier.Options {
	return classifier.Options{
		CurrencySymbol:    cfg.Answers.CurrencySymbol,
		IncludeNegative:   cfg.Answers.IncludeNegative,
		AgingDays:         cfg.Answers.AgingDays,
		AgingLimit:        cfg.Answers.AgingLimit,
		StockTopItems:     cfg.Answers.StockTopItems,
		LowStockThreshold: cfg.Answers.LowStockThreshold,
	}
}

// Ask answers a question. Unhandled data questions get example questions,
// anything else the refusal.
func (a *App) Ask(ctx context.Context, question string) (*fallback.Reply, error) {
	return a.Chain.Ask(ctx, question)
}

// CheckStore logs a warning when the configured store is missing. Questions
// still get answered, with "no data" results.
func (a *App) CheckStore() error {
	if err := a.Store.Check(); err != nil {
		a.logger.Warn().Err(err).Msg("Ledger store unavailable, answers will report no data")
		return err
	}
	return nil
}
