package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/amount"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/storage"
)

// SalesByMonth totals sales dated in the given month, one entry per year in
// ascending year order. Rows without a year are ignored.
func (l *Library) SalesByMonth(ctx context.Context, s storage.Session, month int) ([]YearTotal, error) {
	mm, err := monthText(month)
	if err != nil {
		return nil, err
	}

	rows, err := s.Select(ctx,
		"SELECT SUBSTR(BDSALE, 1, 4) AS year, TOTAL1 AS total FROM SALE WHERE SUBSTR(BDSALE, 6, 2) = $1",
		mm)
	if err != nil {
		return nil, fmt.Errorf("sales by month: %w", err)
	}

	byYear := make(map[string]int)
	var out []YearTotal
	for _, row := range rows {
		year := strings.TrimSpace(row["year"])
		if year == "" {
			continue
		}
		i, ok := byYear[year]
		if !ok {
			i = len(out)
			byYear[year] = i
			out = append(out, YearTotal{Year: year})
		}
		out[i].Amount = out[i].Amount.Add(amount.OrZero(row["total"]))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })

	l.logger.Debug().Str("month", mm).Int("rows", len(rows)).Int("years", len(out)).Msg("Sales by month")

	return out, nil
}
