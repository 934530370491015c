// Package classifier maps free-text business questions onto the ledger query
// library.
//
// Rules are evaluated in a fixed priority order and the first rule able to
// extract its arguments answers the question. Questions no rule accepts are
// reported with ErrUnhandled so the caller can route them elsewhere.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/format"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/ledger"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/observability"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/storage"
)

// ErrUnhandled is returned when no rule recognizes the question.
var ErrUnhandled = errors.New("question not handled by ledger engine")

// Options tunes answers.
type Options struct {
	CurrencySymbol    string
	IncludeNegative   bool // default when the question does not ask for it
	AgingDays         int
	AgingLimit        int
	StockTopItems     int
	LowStockThreshold int
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		CurrencySymbol:    format.DefaultCurrencySymbol,
		AgingDays:         ledger.DefaultAgingDays,
		AgingLimit:        ledger.DefaultAgingLimit,
		StockTopItems:     3,
		LowStockThreshold: 10,
	}
}

// Answer is a handled question.
type Answer struct {
	Rule            string
	Text            string
	IncludeNegative bool
}

// Question is a question prepared for rule matching.
type Question struct {
	Text            string
	Lower           string
	IncludeNegative bool
}

// RuleInfo describes a rule for listings.
type RuleInfo struct {
	Name    string
	Example string
}

// Classifier answers questions against a ledger store.
type Classifier struct {
	store   storage.Store
	library *ledger.Library
	format  *format.Formatter
	opts    Options
	logger  *observability.Logger
	rules   []rule
}

// New creates a classifier.
func New(store storage.Store, library *ledger.Library, opts Options, logger *observability.Logger) *Classifier {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if library == nil {
		library = ledger.NewLibrary(nil, logger)
	}
	def := DefaultOptions()
	if opts.AgingDays <= 0 {
		opts.AgingDays = def.AgingDays
	}
	if opts.AgingLimit <= 0 {
		opts.AgingLimit = def.AgingLimit
	}
	if opts.StockTopItems <= 0 {
		opts.StockTopItems = def.StockTopItems
	}
	if opts.LowStockThreshold < 0 {
		opts.LowStockThreshold = def.LowStockThreshold
	}

	c := &Classifier{
		store:   store,
		library: library,
		format:  format.New(opts.CurrencySymbol),
		opts:    opts,
		logger:  logger.WithComponent("classifier"),
	}
	c.rules = c.buildRules()
	return c
}

// Rules lists the rules in evaluation order.
func (c *Classifier) Rules() []RuleInfo {
	out := make([]RuleInfo, len(c.rules))
	for i, r := range c.rules {
		out[i] = RuleInfo{Name: r.name, Example: r.example}
	}
	return out
}

// Prepare lowers the question and computes the include-negative flag.
func (c *Classifier) Prepare(text string) Question {
	lower := strings.ToLower(text)
	return Question{
		Text:            text,
		Lower:           lower,
		IncludeNegative: c.opts.IncludeNegative || containsAny(lower, includeNegativePhrases),
	}
}

// Answer runs the first matching rule. A store session is opened only once a
// rule has matched, and is closed before Answer returns.
func (c *Classifier) Answer(ctx context.Context, text string) (*Answer, error) {
	start := time.Now()
	q := c.Prepare(text)

	for _, r := range c.rules {
		a, ok := r.match(q)
		if !ok {
			continue
		}

		reply, err := c.run(ctx, r, q, a)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.name, err)
		}

		c.logger.WithContext(ctx).Info().
			Str("rule", r.name).
			Bool("include_negative", q.IncludeNegative).
			Dur("latency", time.Since(start)).
			Msg("Question answered")

		return &Answer{Rule: r.name, Text: reply, IncludeNegative: q.IncludeNegative}, nil
	}

	c.logger.WithContext(ctx).Debug().Str("question", text).Msg("No rule matched")
	return nil, ErrUnhandled
}

func (c *Classifier) run(ctx context.Context, r rule, q Question, a args) (string, error) {
	s, err := c.store.Open(ctx)
	if err != nil {
		return "", err
	}
	defer s.Close()

	return r.handle(ctx, s, q, a)
}

func (c *Classifier) currency(d decimal.Decimal) string {
	return c.format.Currency(d)
}

func descriptor(includeNegative bool) string {
	if includeNegative {
		return "including"
	}
	return "excluding"
}
