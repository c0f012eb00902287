package services

import (
	"math"
	"testing"
)

func TestAmountToWords(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		expect string
	}{
		{"zero", 0, "Zero Dirhams Only"},
		{"single_digit", 5, "Five Dirhams Only"},
		{"teens", 15, "Fifteen Dirhams Only"},
		{"hundreds", 500, "Five Hundred Dirhams Only"},
		{"hundred_and", 150, "One Hundred and Fifty Dirhams Only"},
		{"thousands", 5000, "Five Thousand Dirhams Only"},
		{"with_fils", 1234.56, "One Thousand Two Hundred and Thirty Four Dirhams and Fifty Six Fils Only"},
		{"fils_only", 0.75, "Seventy Five Fils Only"},
		{"hundred_thousands", 913183, "Nine Hundred Thirteen Thousand One Hundred and Eighty Three Dirhams Only"},
		{"millions", 12345678, "Twelve Million Three Hundred Forty Five Thousand Six Hundred and Seventy Eight Dirhams Only"},
		{"exact_million", 1000000, "One Million Dirhams Only"},
		{"rounds_fils", 10.999, "Eleven Dirhams Only"},
		{"negative", -20, "Negative Twenty Dirhams Only"},
		{"billions", 2500000000, "Two Billion Five Hundred Million Dirhams Only"},
		{"exact_trillion", 1e12, "One Trillion Dirhams Only"},
		{"trillions", 5e12, "Five Trillion Dirhams Only"},
		{"trillion_and_tens", 1000000000050, "One Trillion and Fifty Dirhams Only"},
		{"grand_total_with_vat", 1.05e13, "Ten Trillion Five Hundred Billion Dirhams Only"},
		{"thousand_trillion", 1e15, "One Thousand Trillion Dirhams Only"},
		{"positive_infinity", math.Inf(1), ""},
		{"negative_infinity", math.Inf(-1), ""},
		{"not_a_number", math.NaN(), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AmountToWords(tt.amount)
			if got != tt.expect {
				t.Errorf("AmountToWords(%v) = %q, want %q", tt.amount, got, tt.expect)
			}
		})
	}
}
