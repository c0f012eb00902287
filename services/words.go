package services

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountToWords spells an amount in dirhams and fils for the LPO.
// Example: 1234.56 → "One Thousand Two Hundred and Thirty Four Dirhams and
// Fifty Six Fils Only". Non-finite amounts have no spelling and return "".
func AmountToWords(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return ""
	}
	return decimalToWords(decimal.NewFromFloat(amount).Round(2))
}

func decimalToWords(d decimal.Decimal) string {
	if d.IsNegative() {
		return "Negative " + decimalToWords(d.Neg())
	}

	dirhams := d.Truncate(0)
	fils := d.Sub(dirhams).Shift(2).IntPart()

	if dirhams.IsZero() && fils == 0 {
		return "Zero Dirhams Only"
	}

	var parts []string
	if dirhams.IsPositive() {
		parts = append(parts, numberToWords(dirhams)+" Dirhams")
	}
	if fils > 0 {
		if len(parts) > 0 {
			parts = append(parts, "and")
		}
		parts = append(parts, numberToWords(decimal.NewFromInt(fils))+" Fils")
	}
	return strings.Join(parts, " ") + " Only"
}

var trillion = decimal.New(1, 12)

// numberToWords spells a positive whole number using international
// grouping. Groups of a trillion and above are spelled recursively
// ("One Thousand Trillion").
func numberToWords(n decimal.Decimal) string {
	var parts []string
	if n.GreaterThanOrEqual(trillion) {
		q, r := n.QuoRem(trillion, 0)
		parts = append(parts, numberToWords(q)+" Trillion")
		n = r
	}
	return strings.Join(appendUnderTrillion(parts, n.IntPart()), " ")
}

// appendUnderTrillion appends the words for n < 1e12. The final tens are
// joined with "and" when anything precedes them.
func appendUnderTrillion(parts []string, n int64) []string {
	for _, scale := range []struct {
		value int64
		name  string
	}{
		{1_000_000_000, "Billion"},
		{1_000_000, "Million"},
		{1_000, "Thousand"},
	} {
		if n >= scale.value {
			parts = append(parts, convertUnder1000(n/scale.value)+" "+scale.name)
			n %= scale.value
		}
	}

	if n >= 100 {
		parts = append(parts, ones[n/100]+" Hundred")
		n %= 100
	}

	if n > 0 {
		if len(parts) > 0 {
			parts = append(parts, "and "+convertUnder100(n))
		} else {
			parts = append(parts, convertUnder100(n))
		}
	}
	return parts
}

func convertUnder1000(n int64) string {
	if n < 100 {
		return convertUnder100(n)
	}
	s := ones[n/100] + " Hundred"
	if n%100 != 0 {
		s += " " + convertUnder100(n%100)
	}
	return s
}

func convertUnder100(n int64) string {
	if n < 20 {
		return ones[n]
	}
	result := tens[n/10]
	if n%10 != 0 {
		result += " " + ones[n%10]
	}
	return result
}

var ones = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tens = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}
