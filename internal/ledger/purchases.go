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

// purchaseVoucherType tags purchase lines in SITM.
const purchaseVoucherType = "Prch"

// PurchaseSummary totals quantity and amount of purchase lines for the items
// matching f.Item. It reports no data only when the item, or a given vendor,
// does not resolve. Resolved entities without matching lines total zero.
func (l *Library) PurchaseSummary(ctx context.Context, s storage.Session, f PurchaseFilter) (PurchaseTotals, bool, error) {
	items, err := l.resolver.Keys(ctx, s, resolve.Items, f.Item)
	if err != nil {
		return PurchaseTotals{}, false, fmt.Errorf("purchase summary: %w", err)
	}
	if len(items) == 0 {
		return PurchaseTotals{}, false, nil
	}

	var vendors []string
	if strings.TrimSpace(f.Vendor) != "" {
		vendors, err = l.resolver.Keys(ctx, s, resolve.Accounts, f.Vendor)
		if err != nil {
			return PurchaseTotals{}, false, fmt.Errorf("purchase summary: %w", err)
		}
		if len(vendors) == 0 {
			return PurchaseTotals{}, false, nil
		}
	}

	var args storage.Args
	var sb strings.Builder
	sb.WriteString(`SELECT SITM.IQSITM AS qty, SITM.IASITM AS amount
		FROM SITM JOIN PRCH ON SITM.VHNO = PRCH.VHNO
		WHERE SITM.VHTY = `)
	sb.WriteString(args.Add(purchaseVoucherType))
	sb.WriteString(" AND SITM.ICSITM IN (" + args.In(items) + ")")
	if len(vendors) > 0 {
		sb.WriteString(" AND PRCH.VCPRCH IN (" + args.In(vendors) + ")")
	}
	if year := strings.TrimSpace(f.Year); year != "" {
		sb.WriteString(" AND PRCH.BDPRCH LIKE " + args.Add(year+"%"))
	}

	rows, err := s.Select(ctx, sb.String(), args.Values()...)
	if err != nil {
		return PurchaseTotals{}, false, fmt.Errorf("purchase summary: %w", err)
	}

	totals := PurchaseTotals{Quantity: decimal.Zero, Amount: decimal.Zero, Lines: len(rows)}
	for _, row := range rows {
		totals.Quantity = totals.Quantity.Add(amount.OrZero(row["qty"]))
		totals.Amount = totals.Amount.Add(amount.OrZero(row["amount"]))
	}

	l.logger.Debug().
		Int("items", len(items)).
		Int("vendors", len(vendors)).
		Str("year", f.Year).
		Int("lines", totals.Lines).
		Msg("Purchase summary")

	return totals, true, nil
}
