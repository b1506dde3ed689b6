package session

import (
	"math"
	"strconv"
	"strings"
)

// Round1 rounds to one decimal place. Stepwise adjustments and display totals
// go through this so repeated ±1 presses cannot accumulate float drift.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// FormatQuantity renders a quantity for display: rounded to one decimal,
// without a trailing ".0" for integral values. Presentation only; the stored
// quantity is never replaced by this value.
func FormatQuantity(x float64) string {
	rounded := Round1(x)
	if rounded == math.Trunc(rounded) {
		return strconv.FormatFloat(rounded, 'f', 0, 64)
	}
	return strconv.FormatFloat(rounded, 'f', 1, 64)
}

// ParseQuantity parses free-text numeric entry. Returns false for anything
// that is not a finite real number. Text ending in a decimal point is an
// in-progress entry ("1." on the way to "1.5"), not a value, even though
// strconv would accept it.
func ParseQuantity(text string) (float64, bool) {
	trimmed := strings.TrimSpace(text)
	if strings.HasSuffix(trimmed, ".") {
		return 0, false
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}
