package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/amount"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/resolve"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/storage"
)

// locationQualifiers are dropped from department phrases: "Jaipur depot"
// resolves like "Jaipur".
var locationQualifiers = map[string]bool{
	"DEPOT":     true,
	"DEPOTS":    true,
	"WAREHOUSE": true,
	"GODOWN":    true,
	"BRANCH":    true,
	"OFFICE":    true,
	"STORE":     true,
}

// PlacePhrase strips location qualifier words such as "depot" from phrase.
func PlacePhrase(phrase string) string {
	var kept []string
	for _, kw := range resolve.Keywords(phrase) {
		if !locationQualifiers[kw] {
			kept = append(kept, kw)
		}
	}
	return strings.Join(kept, " ")
}

// InventoryForLocation sums on-hand quantity of the items matching item held
// at the departments matching loc. Both phrases must resolve.
func (l *Library) InventoryForLocation(ctx context.Context, s storage.Session, item, loc string) (decimal.Decimal, bool, error) {
	items, err := l.resolver.Keys(ctx, s, resolve.Items, item)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("inventory for location: %w", err)
	}
	if len(items) == 0 {
		return decimal.Zero, false, nil
	}

	depts, err := l.resolver.Keys(ctx, s, resolve.Departments, PlacePhrase(loc))
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("inventory for location: %w", err)
	}
	if len(depts) == 0 {
		return decimal.Zero, false, nil
	}

	var args storage.Args
	query := "SELECT OSTQTY AS qty FROM DEPI WHERE DCDEPI IN (" + args.In(depts) + ") AND ICDEPI IN (" + args.In(items) + ")"

	rows, err := s.Select(ctx, query, args.Values()...)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("inventory for location: %w", err)
	}

	qty := decimal.Zero
	for _, row := range rows {
		qty = qty.Add(amount.OrZero(row["qty"]))
	}

	l.logger.Debug().Int("items", len(items)).Int("departments", len(depts)).Int("rows", len(rows)).Msg("Inventory for location")

	return qty, true, nil
}

// ItemBySKU looks up an item by its exact code.
func (l *Library) ItemBySKU(ctx context.Context, s storage.Session, sku string) (Item, bool, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return Item{}, false, nil
	}

	rows, err := s.Select(ctx,
		"SELECT ICIMAS AS code, IALIAS AS alias, OSTQTY AS qty FROM IMAS WHERE ICIMAS = $1",
		sku)
	if err != nil {
		return Item{}, false, fmt.Errorf("item by sku: %w", err)
	}
	if len(rows) == 0 {
		return Item{}, false, nil
	}

	return itemFromRow(rows[0]), true, nil
}

// StockSummary totals on-hand quantity over the item master and picks the top
// best-stocked items and up to top items at or below lowThreshold. Items with
// an unreadable quantity count as zero in the total and are left out of both
// lists.
func (l *Library) StockSummary(ctx context.Context, s storage.Session, top int, lowThreshold decimal.Decimal) (StockReport, bool, error) {
	rows, err := s.Select(ctx, "SELECT ICIMAS AS code, IALIAS AS alias, OSTQTY AS qty FROM IMAS")
	if err != nil {
		return StockReport{}, false, fmt.Errorf("stock summary: %w", err)
	}
	if len(rows) == 0 {
		return StockReport{}, false, nil
	}

	report := StockReport{Total: decimal.Zero, Items: len(rows)}
	var ranked []Item
	for _, row := range rows {
		qty, ok := amount.Parse(row["qty"])
		report.Total = report.Total.Add(qty)
		if ok {
			ranked = append(ranked, itemFromRow(row))
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].OnHand.GreaterThan(ranked[j].OnHand)
	})
	report.Top = head(ranked, top)

	var low []Item
	for i := len(ranked) - 1; i >= 0; i-- {
		if ranked[i].OnHand.LessThanOrEqual(lowThreshold) {
			low = append(low, ranked[i])
		}
	}
	report.Low = head(low, top)

	return report, true, nil
}

func itemFromRow(row storage.Row) Item {
	return Item{
		Code:   strings.TrimSpace(row["code"]),
		Alias:  strings.TrimSpace(row["alias"]),
		OnHand: amount.OrZero(row["qty"]),
	}
}

func head(items []Item, n int) []Item {
	if n < 0 {
		n = 0
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}
