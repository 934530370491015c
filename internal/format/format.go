// Package format renders engine results as human-readable business answers.
package format

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// DefaultCurrencySymbol is the symbol used when none is configured.
const DefaultCurrencySymbol = "₹"

// Formatter renders currency and quantity values.
type Formatter struct {
	symbol string
}

// New creates a formatter with the given currency symbol.
func New(symbol string) *Formatter {
	if symbol == "" {
		symbol = DefaultCurrencySymbol
	}
	return &Formatter{symbol: symbol}
}

// Currency renders d as symbol, sign, grouped integer part and exactly two
// decimals, e.g. 1234.5 -> "₹1,234.50" and -200 -> "₹-200.00".
func (f *Formatter) Currency(d decimal.Decimal) string {
	return f.symbol + Quantity(d)
}

// Quantity renders d with thousands separators and two decimals.
func Quantity(d decimal.Decimal) string {
	rounded := d.Round(2)

	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}

	fixed := rounded.StringFixed(2)
	frac := fixed[strings.LastIndexByte(fixed, '.'):]
	whole := humanize.BigComma(rounded.Truncate(0).BigInt())

	return sign + whole + frac
}

// List renders a header followed by one bullet line per entry, in the order
// given.
func List(header string, lines []string) string {
	var sb strings.Builder
	sb.WriteString(header)
	for _, line := range lines {
		sb.WriteString("\n- ")
		sb.WriteString(line)
	}
	return sb.String()
}
