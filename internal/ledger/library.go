// Package ledger holds the fixed catalog of aggregate queries the engine can
// answer. Every template takes an open storage.Session, resolves fuzzy
// phrases into keys and sums the text-typed amounts in Go.
//
// Templates report "no data" through a found flag rather than an error, so a
// legitimate zero total can be told apart from an unresolvable phrase.
package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/observability"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/resolve"
)

// Defaults for AgedReceivables.
const (
	DefaultAgingDays  = 60
	DefaultAgingLimit = 10
)

// UnknownLocation is shown when an account has neither city nor state.
const UnknownLocation = "(Unknown)"

// ErrInvalidMonth is returned for month numbers outside 1-12.
var ErrInvalidMonth = errors.New("month must be between 1 and 12")

// Library runs query templates.
type Library struct {
	resolver *resolve.Resolver
	logger   *observability.Logger
	now      func() time.Time
}

// Option configures a Library.
type Option func(*Library)

// WithClock overrides the clock used by AgedReceivables.
func WithClock(now func() time.Time) Option {
	return func(l *Library) {
		l.now = now
	}
}

// NewLibrary creates a query library.
func NewLibrary(resolver *resolve.Resolver, logger *observability.Logger, opts ...Option) *Library {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if resolver == nil {
		resolver = resolve.NewResolver(logger)
	}
	l := &Library{
		resolver: resolver,
		logger:   logger.WithComponent("ledger"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AccountBalance is an account's outstanding balance.
type AccountBalance struct {
	Name     string
	Location string
	Balance  decimal.Decimal
}

// AgedBalance is a receivable older than the aging threshold.
type AgedBalance struct {
	Name     string
	Location string
	Date     string // YYYY-MM-DD
	Balance  decimal.Decimal
}

// PurchaseFilter selects purchase lines. Item is required; Vendor and Year
// are optional.
type PurchaseFilter struct {
	Item   string
	Vendor string
	Year   string
}

// PurchaseTotals sums matching purchase lines.
type PurchaseTotals struct {
	Quantity decimal.Decimal
	Amount   decimal.Decimal
	Lines    int
}

// YearTotal is the sales total of one year.
type YearTotal struct {
	Year   string
	Amount decimal.Decimal
}

// ExpenseFilter selects expense lines. Category is required; Location and
// Month (0 for any) are optional.
type ExpenseFilter struct {
	Category string
	Location string
	Month    int
}

// ExpenseTotal sums matching expense lines.
type ExpenseTotal struct {
	Amount decimal.Decimal
	Lines  int
}

// AgingFilter configures AgedReceivables. Zero values take the defaults.
type AgingFilter struct {
	Days            int
	Limit           int
	IncludeNegative bool
}

// Item is an inventory master row.
type Item struct {
	Code   string
	Alias  string
	OnHand decimal.Decimal
}

// StockReport summarizes the item master.
type StockReport struct {
	Total decimal.Decimal
	Items int
	Top   []Item
	Low   []Item
}

// location joins the non-empty parts of city and state.
func location(city, state string) string {
	var parts []string
	for _, p := range []string{city, state} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return UnknownLocation
	}
	return strings.Join(parts, ", ")
}

// monthText zero-pads a month number.
func monthText(month int) (string, error) {
	if month < 1 || month > 12 {
		return "", ErrInvalidMonth
	}
	return fmt.Sprintf("%02d", month), nil
}
