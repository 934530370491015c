// Package amount parses the text-typed numeric columns of the converted ledger.
//
// Every monetary and quantity field in the store is TEXT and may be empty,
// NULL, padded, or carry thousands separators. Parsing never fails loudly:
// anything that cannot be read as a number counts as zero.
package amount

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Parse reads s as a decimal number. ok is false for empty or unparsable
// input, in which case the returned value is zero.
func Parse(s string) (decimal.Decimal, bool) {
	text := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if text == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// OrZero reads s as a decimal number, or zero.
func OrZero(s string) decimal.Decimal {
	d, _ := Parse(s)
	return d
}

// Floor returns d, or zero when d is negative.
func Floor(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
