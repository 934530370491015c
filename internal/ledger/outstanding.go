package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/amount"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/resolve"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/storage"
)

// CompanyOutstanding lists the balances of accounts whose name contains every
// keyword of name. Non-positive balances are skipped unless includeNegative
// is set.
func (l *Library) CompanyOutstanding(ctx context.Context, s storage.Session, name string, includeNegative bool) ([]AccountBalance, bool, error) {
	keywords := resolve.Keywords(name)
	if len(keywords) == 0 {
		return nil, false, nil
	}

	var args storage.Args
	query := "SELECT ANAM AS name, CITY AS city, STATE AS state, BALANCE AS balance FROM AMAS WHERE " +
		resolve.MatchAll(resolve.Accounts.Columns, keywords, &args)

	rows, err := s.Select(ctx, query, args.Values()...)
	if err != nil {
		return nil, false, fmt.Errorf("company outstanding: %w", err)
	}

	var out []AccountBalance
	for _, row := range rows {
		balance := amount.OrZero(row["balance"])
		if !includeNegative && !balance.IsPositive() {
			continue
		}
		out = append(out, AccountBalance{
			Name:     strings.TrimSpace(row["name"]),
			Location: location(row["city"], row["state"]),
			Balance:  balance,
		})
	}

	l.logger.Debug().
		Strs("keywords", keywords).
		Int("rows", len(rows)).
		Int("kept", len(out)).
		Msg("Company outstanding")

	return out, len(out) > 0, nil
}

// StateOutstanding totals the balances of accounts whose state contains every
// keyword of state. Unless includeNegative is set each balance is floored at
// zero before summing; rows are never dropped. matched is the number of
// accounts that contributed.
func (l *Library) StateOutstanding(ctx context.Context, s storage.Session, state string, includeNegative bool) (total decimal.Decimal, matched int, found bool, err error) {
	keywords := resolve.Keywords(state)
	if len(keywords) == 0 {
		return decimal.Zero, 0, false, nil
	}

	var args storage.Args
	query := "SELECT BALANCE AS balance FROM AMAS WHERE " +
		resolve.MatchAll(resolve.AccountStates.Columns, keywords, &args)

	rows, err := s.Select(ctx, query, args.Values()...)
	if err != nil {
		return decimal.Zero, 0, false, fmt.Errorf("state outstanding: %w", err)
	}

	total = decimal.Zero
	for _, row := range rows {
		balance := amount.OrZero(row["balance"])
		if !includeNegative {
			balance = amount.Floor(balance)
		}
		total = total.Add(balance)
	}

	return total, len(rows), len(rows) > 0, nil
}

// AgedReceivables lists receivables dated strictly before today minus
// f.Days, largest balance first, at most f.Limit entries. Rows with a
// missing or unparsable date are skipped.
func (l *Library) AgedReceivables(ctx context.Context, s storage.Session, f AgingFilter) ([]AgedBalance, error) {
	if f.Days <= 0 {
		f.Days = DefaultAgingDays
	}
	if f.Limit <= 0 {
		f.Limit = DefaultAgingLimit
	}

	y, m, d := l.now().Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -f.Days)

	rows, err := s.Select(ctx, `SELECT RMAS.DATE AS date, RMAS.BALANCE AS balance,
		AMAS.ANAM AS name, AMAS.CITY AS city, AMAS.STATE AS state
		FROM RMAS JOIN AMAS ON RMAS.ACOD = AMAS.ACOD`)
	if err != nil {
		return nil, fmt.Errorf("aged receivables: %w", err)
	}

	var out []AgedBalance
	skipped := 0
	for _, row := range rows {
		date, ok := parseDate(row["date"])
		if !ok {
			skipped++
			continue
		}
		if !date.Before(cutoff) {
			continue
		}
		balance := amount.OrZero(row["balance"])
		if !f.IncludeNegative && !balance.IsPositive() {
			continue
		}
		out = append(out, AgedBalance{
			Name:     strings.TrimSpace(row["name"]),
			Location: location(row["city"], row["state"]),
			Date:     date.Format(time.DateOnly),
			Balance:  balance,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Balance.GreaterThan(out[j].Balance)
	})
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}

	l.logger.Debug().
		Str("cutoff", cutoff.Format(time.DateOnly)).
		Int("rows", len(rows)).
		Int("skipped", skipped).
		Int("returned", len(out)).
		Msg("Aged receivables")

	return out, nil
}

// parseDate reads the YYYY-MM-DD portion of a stored date, ignoring any time
// component.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " T"); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
