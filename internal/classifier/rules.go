package classifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/format"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/ledger"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/storage"
)

// args carries whatever a rule extracted from the question.
type args struct {
	entity   string // company, state or item
	vendor   string
	location string
	year     string
	noun     string
	month    int
	days     int
	limit    int
}

type rule struct {
	name    string
	example string
	match   func(q Question) (args, bool)
	handle  func(ctx context.Context, s storage.Session, q Question, a args) (string, error)
}

// buildRules returns the rules in priority order. The order matters: aging
// questions mention "outstanding" too and must be caught before the
// company rule, and the company rule is the catch-all for "outstanding".
func (c *Classifier) buildRules() []rule {
	return []rule{
		{
			name:    "aged-receivables",
			example: "outstanding payments older than 60 days",
			match:   c.matchAged,
			handle:  c.handleAged,
		},
		{
			name:    "purchase-summary",
			example: "total PVC resin purchases from Meera Polymers in 2024",
			match:   matchPurchase,
			handle:  c.handlePurchase,
		},
		{
			name:    "state-outstanding",
			example: "total outstanding in Bihar",
			match:   matchState,
			handle:  c.handleState,
		},
		{
			name:    "expense-amount",
			example: "TA DA expenses for Delhi office in August",
			match:   matchExpense,
			handle:  c.handleExpense,
		},
		{
			name:    "sales-by-month",
			example: "sales in October by year",
			match:   matchSales,
			handle:  c.handleSales,
		},
		{
			name:    "inventory-for-location",
			example: "inventory of PVC pipe at Jaipur depot",
			match:   matchInventory,
			handle:  c.handleInventory,
		},
		{
			name:    "sku-lookup",
			example: "sku PIPE-4",
			match:   matchSKU,
			handle:  c.handleSKU,
		},
		{
			name:    "stock-summary",
			example: "stock summary",
			match:   matchStockSummary,
			handle:  c.handleStockSummary,
		},
		{
			name:    "company-outstanding",
			example: "outstanding for Acme Traders",
			match:   matchCompany,
			handle:  c.handleCompany,
		},
	}
}

func (c *Classifier) matchAged(q Question) (args, bool) {
	if !containsAny(q.Lower, agingWords) && !agedPhrase.MatchString(q.Text) {
		return args{}, false
	}

	a := args{days: c.opts.AgingDays, limit: c.opts.AgingLimit}
	if m := dayCount.FindStringSubmatch(q.Text); m != nil {
		a.days = atoiDefault(m[1], c.opts.AgingDays)
	} else if !agedPhrase.MatchString(q.Text) {
		return args{}, false
	}
	if top := topLimit.FindStringSubmatch(q.Text); top != nil {
		a.limit = atoiDefault(top[1], c.opts.AgingLimit)
	}
	return a, true
}

func (c *Classifier) handleAged(ctx context.Context, s storage.Session, q Question, a args) (string, error) {
	aged, err := c.library.AgedReceivables(ctx, s, ledger.AgingFilter{
		Days:            a.days,
		Limit:           a.limit,
		IncludeNegative: q.IncludeNegative,
	})
	if err != nil {
		return "", err
	}
	if len(aged) == 0 {
		return fmt.Sprintf("No outstanding payments older than %d days were found.", a.days), nil
	}

	lines := make([]string, len(aged))
	for i, e := range aged {
		lines[i] = fmt.Sprintf("%s (%s) on %s: %s", e.Name, e.Location, e.Date, c.currency(e.Balance))
	}
	header := fmt.Sprintf("Outstanding payments older than %d days (%s negative balances):", a.days, descriptor(q.IncludeNegative))
	return format.List(header, lines), nil
}

func matchPurchase(q Question) (args, bool) {
	text := q.Text
	var a args
	if m := yearPhrase.FindStringSubmatchIndex(text); m != nil {
		a.year = text[m[2]:m[3]]
		text = text[:m[0]] + text[m[1]:]
	} else if m := bareYear.FindStringSubmatchIndex(text); m != nil {
		a.year = text[m[2]:m[3]]
		text = text[:m[0]] + text[m[1]:]
	}

	var rest string
	if m := purchaseOf.FindStringSubmatch(text); m != nil {
		rest = m[1]
	} else if m := purchaseAfter.FindStringSubmatch(text); m != nil {
		a.entity = trimFiller(m[1])
		rest = m[2]
	} else {
		return args{}, false
	}

	parts := fromVendor.Split(" "+rest, 2)
	if a.entity == "" {
		a.entity = trimEntity(parts[0])
	}
	if len(parts) == 2 {
		a.vendor = trimEntity(parts[1])
	}

	if a.entity == "" {
		return args{}, false
	}
	return a, true
}

func (c *Classifier) handlePurchase(ctx context.Context, s storage.Session, _ Question, a args) (string, error) {
	totals, found, err := c.library.PurchaseSummary(ctx, s, ledger.PurchaseFilter{
		Item:   a.entity,
		Vendor: a.vendor,
		Year:   a.year,
	})
	if err != nil {
		return "", err
	}

	from := ""
	if a.vendor != "" {
		from = " from " + a.vendor
	}

	if !found {
		if a.year != "" {
			return fmt.Sprintf("No %s purchases%s recorded for %s.", a.entity, from, a.year), nil
		}
		return fmt.Sprintf("No %s purchases%s were found.", a.entity, from), nil
	}

	during := ""
	if a.year != "" {
		during = " during " + a.year
	}
	return fmt.Sprintf("Total %s purchases%s%s: Qty=%s, Amount=%s",
		a.entity, from, during, format.Quantity(totals.Quantity), c.currency(totals.Amount)), nil
}

func matchState(q Question) (args, bool) {
	m := stateOutstanding.FindStringSubmatch(q.Text)
	if m == nil {
		return args{}, false
	}
	state := trimEntity(m[1])
	if fields := strings.Fields(state); len(fields) > 1 && strings.EqualFold(fields[len(fields)-1], "state") {
		state = strings.Join(fields[:len(fields)-1], " ")
	}
	if state == "" {
		return args{}, false
	}
	return args{entity: state}, true
}

func (c *Classifier) handleState(ctx context.Context, s storage.Session, q Question, a args) (string, error) {
	total, _, found, err := c.library.StateOutstanding(ctx, s, a.entity, q.IncludeNegative)
	if err != nil {
		return "", err
	}
	if !found {
		return fmt.Sprintf("No accounts found in %s.", a.entity), nil
	}
	return fmt.Sprintf("Total outstanding in %s (%s negative balances): %s",
		a.entity, descriptor(q.IncludeNegative), c.currency(total)), nil
}

func matchExpense(q Question) (args, bool) {
	if strings.Contains(q.Lower, "outstanding") {
		return args{}, false
	}
	m := expense.FindStringSubmatch(q.Text)
	if m == nil {
		return args{}, false
	}

	category := monthName.ReplaceAllString(m[1], "")
	a := args{
		entity: trimLeadIn(category),
		noun:   strings.ToLower(m[2]),
		month:  lastMonth(q.Text),
	}
	if a.entity == "" {
		return args{}, false
	}

	for _, seg := range expenseSegment.Split(m[3], -1) {
		seg = trimEntity(seg)
		if seg == "" || isMonthPhrase(seg) {
			continue
		}
		a.location = seg
		break
	}
	return a, true
}

func (c *Classifier) handleExpense(ctx context.Context, s storage.Session, _ Question, a args) (string, error) {
	total, found, err := c.library.ExpenseAmount(ctx, s, ledger.ExpenseFilter{
		Category: a.entity,
		Location: ledger.PlacePhrase(a.location),
		Month:    a.month,
	})
	if err != nil {
		return "", err
	}

	var scope strings.Builder
	if a.location != "" {
		scope.WriteString(" for " + a.location)
	}
	if a.month != 0 {
		if a.location != "" {
			scope.WriteString(" in ")
		} else {
			scope.WriteString(" for ")
		}
		scope.WriteString(time.Month(a.month).String())
	}

	if !found {
		return fmt.Sprintf("No %s %s found%s.", a.entity, a.noun, scope.String()), nil
	}
	return fmt.Sprintf("%s %s%s: %s", a.entity, a.noun, scope.String(), c.currency(total.Amount)), nil
}

func matchSales(q Question) (args, bool) {
	if !salesWord.MatchString(q.Text) {
		return args{}, false
	}
	month := lastMonth(q.Text)
	if month == 0 {
		return args{}, false
	}
	return args{month: month}, true
}

func (c *Classifier) handleSales(ctx context.Context, s storage.Session, _ Question, a args) (string, error) {
	sales, err := c.library.SalesByMonth(ctx, s, a.month)
	if err != nil {
		return "", err
	}

	month := time.Month(a.month).String()
	if len(sales) == 0 {
		return fmt.Sprintf("No sales found for %s.", month), nil
	}

	lines := make([]string, len(sales))
	for i, y := range sales {
		lines[i] = fmt.Sprintf("%s: %s", y.Year, c.currency(y.Amount))
	}
	return format.List(month+" sales by year:", lines), nil
}

func matchInventory(q Question) (args, bool) {
	m := inventoryAt.FindStringSubmatch(q.Text)
	if m == nil {
		m = itemInStockAt.FindStringSubmatch(q.Text)
	}
	if m == nil {
		return args{}, false
	}
	a := args{entity: trimFiller(m[1]), location: trimEntity(m[2])}
	if a.entity == "" || a.location == "" || stockWords[strings.ToLower(a.entity)] {
		return args{}, false
	}
	return a, true
}

func (c *Classifier) handleInventory(ctx context.Context, s storage.Session, _ Question, a args) (string, error) {
	qty, found, err := c.library.InventoryForLocation(ctx, s, a.entity, a.location)
	if err != nil {
		return "", err
	}
	if !found {
		return fmt.Sprintf("No %s inventory found for %s.", a.location, a.entity), nil
	}
	return fmt.Sprintf("Inventory of %s at %s: %s units", a.entity, a.location, format.Quantity(qty)), nil
}

func matchSKU(q Question) (args, bool) {
	m := skuCode.FindStringSubmatch(q.Text)
	if m == nil || !skuLike(m[1]) {
		return args{}, false
	}
	return args{entity: m[1]}, true
}

func (c *Classifier) handleSKU(ctx context.Context, s storage.Session, _ Question, a args) (string, error) {
	item, found, err := c.library.ItemBySKU(ctx, s, a.entity)
	if err != nil {
		return "", err
	}
	if !found {
		return fmt.Sprintf("No item found with SKU %s.", a.entity), nil
	}

	name := item.Alias
	if name == "" {
		name = "(no name)"
	}
	return fmt.Sprintf("SKU %s: %s, %s units on hand", item.Code, name, format.Quantity(item.OnHand)), nil
}

func matchStockSummary(q Question) (args, bool) {
	if !containsAny(q.Lower, stockSummaryPhrases) {
		return args{}, false
	}
	// A named place asks about one location, not the whole master.
	for _, m := range placeWord.FindAllStringSubmatch(q.Text, -1) {
		if !stockWords[strings.ToLower(m[1])] {
			return args{}, false
		}
	}
	return args{}, true
}

func (c *Classifier) handleStockSummary(ctx context.Context, s storage.Session, _ Question, _ args) (string, error) {
	threshold := decimal.NewFromInt(int64(c.opts.LowStockThreshold))
	report, found, err := c.library.StockSummary(ctx, s, c.opts.StockTopItems, threshold)
	if err != nil {
		return "", err
	}
	if !found {
		return "No stock found.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Stock on hand: %s units across %d items.", format.Quantity(report.Total), report.Items)
	if len(report.Top) > 0 {
		sb.WriteString("\n")
		sb.WriteString(format.List("Best-stocked items:", stockLines(report.Top)))
	}
	if len(report.Low) > 0 {
		sb.WriteString("\n")
		sb.WriteString(format.List(
			fmt.Sprintf("Running low (%d units or fewer):", c.opts.LowStockThreshold),
			stockLines(report.Low)))
	}
	return sb.String(), nil
}

func stockLines(items []ledger.Item) []string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = fmt.Sprintf("%s (%s): %s units", it.Alias, it.Code, format.Quantity(it.OnHand))
	}
	return lines
}

func matchCompany(q Question) (args, bool) {
	m := companyOutstanding.FindStringSubmatch(q.Text)
	if m == nil {
		return args{}, false
	}
	company := trimEntity(m[1])
	if company == "" {
		return args{}, false
	}
	return args{entity: company}, true
}

func (c *Classifier) handleCompany(ctx context.Context, s storage.Session, q Question, a args) (string, error) {
	balances, found, err := c.library.CompanyOutstanding(ctx, s, a.entity, q.IncludeNegative)
	if err != nil {
		return "", err
	}
	if !found {
		return fmt.Sprintf("No outstanding balances found for %s.", a.entity), nil
	}

	lines := make([]string, len(balances))
	for i, b := range balances {
		lines[i] = fmt.Sprintf("%s (%s): %s", b.Name, b.Location, c.currency(b.Balance))
	}
	header := fmt.Sprintf("Outstanding for %s (%s negative values):", a.entity, descriptor(q.IncludeNegative))
	return format.List(header, lines), nil
}
