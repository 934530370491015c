package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/amount"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/resolve"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/storage"
)

// ExpenseAmount totals expense lines booked to accounts whose name contains
// any keyword of f.Category. Category phrases such as "TA DA" need any-term
// matching, so this is the one template that does not AND its keywords.
// A location narrows by city or state, a month by the line's date. Only a
// category matching no account is no data; filters may total zero.
func (l *Library) ExpenseAmount(ctx context.Context, s storage.Session, f ExpenseFilter) (ExpenseTotal, bool, error) {
	var mm string
	if f.Month != 0 {
		var err error
		if mm, err = monthText(f.Month); err != nil {
			return ExpenseTotal{}, false, err
		}
	}

	accounts, err := l.resolver.AnyKeys(ctx, s, resolve.Accounts, f.Category)
	if err != nil {
		return ExpenseTotal{}, false, fmt.Errorf("expense amount: %w", err)
	}
	if len(accounts) == 0 {
		return ExpenseTotal{}, false, nil
	}

	var args storage.Args
	var sb strings.Builder
	sb.WriteString("SELECT TMAS.AMNT AS amount FROM TMAS JOIN AMAS ON TMAS.COD1 = AMAS.ACOD WHERE ")
	sb.WriteString("AMAS.ACOD IN (" + args.In(accounts) + ")")

	place := resolve.Keywords(f.Location)
	if len(place) > 0 {
		sb.WriteString(" AND ")
		sb.WriteString(resolve.MatchAny([]string{"AMAS.CITY", "AMAS.STATE"}, place, &args))
	}
	if mm != "" {
		sb.WriteString(" AND SUBSTR(TMAS.DATE, 6, 2) = " + args.Add(mm))
	}

	rows, err := s.Select(ctx, sb.String(), args.Values()...)
	if err != nil {
		return ExpenseTotal{}, false, fmt.Errorf("expense amount: %w", err)
	}

	total := ExpenseTotal{Amount: decimal.Zero, Lines: len(rows)}
	for _, row := range rows {
		total.Amount = total.Amount.Add(amount.OrZero(row["amount"]))
	}

	l.logger.Debug().
		Int("accounts", len(accounts)).
		Strs("location", place).
		Str("month", mm).
		Int("lines", total.Lines).
		Msg("Expense amount")

	return total, true, nil
}
