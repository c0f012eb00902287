package services

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no currency code is configured.
const DefaultCurrency = "AED"

// FormatCurrency formats an amount as "<code> 1,234.56". The amount is
// rounded half away from zero and always shows two decimals. Negative
// amounts are prefixed with "-" (e.g. "-AED 100.00"). Non-finite amounts
// print as "AED Inf", "-AED Inf" or "AED NaN".
func FormatCurrency(code string, amount float64) string {
	if code == "" {
		code = DefaultCurrency
	}
	if math.IsNaN(amount) {
		return code + " NaN"
	}
	if math.IsInf(amount, 0) {
		return signed(amount < 0, code+" Inf")
	}

	d := decimal.NewFromFloat(amount).Round(2)
	negative := d.IsNegative()
	raw := d.Abs().StringFixed(2)

	whole, frac, _ := strings.Cut(raw, ".")
	n, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return signed(negative, code+" "+raw)
	}
	return signed(negative, code+" "+humanize.BigComma(n)+"."+frac)
}

// FormatPercent formats a percentage with up to two decimals ("12.5%").
func FormatPercent(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return strconv.FormatFloat(p, 'f', -1, 64) + "%"
	}
	return decimal.NewFromFloat(p).Round(2).String() + "%"
}

// formatQuantity groups thousands and drops trailing zero decimals.
func formatQuantity(q float64) string {
	return humanize.FormatFloat("#,###.##", q)
}

func signed(negative bool, s string) string {
	if negative {
		return "-" + s
	}
	return s
}
