package services

import (
	"bytes"
	"math"
)

// bytesReader wraps a byte slice in a bytes.Reader for use with excelize.OpenReader.
func bytesReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}

func floatClose(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// subItem builds a sub-item priced at qty × rate with default percentages.
func subItem(name string, qty, rate float64) SubItem {
	return SubItem{Name: name, Quantity: qty, Rate: rate}
}

// snapshotWithSubtotal returns a single-item snapshot whose items subtotal
// equals qty × rate.
func snapshotWithSubtotal(qty, rate float64) BOQSnapshot {
	return BOQSnapshot{
		Items: []Item{{Name: "Works", SubItems: []SubItem{subItem("Works", qty, rate)}}},
	}
}
