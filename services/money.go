package services

import (
	"math"

	"github.com/shopspring/decimal"
)

// PercentOf returns base * percent / 100.
func PercentOf(base, percent float64) float64 {
	return base * percent / 100
}

// Round2 rounds to two decimal places, half away from zero. Use it only when
// producing output; sums are accumulated at full precision.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}

// ratioPercent returns part / whole * 100, or 0 when whole is 0.
func ratioPercent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}
