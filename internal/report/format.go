package report

import (
	"math"
	"strconv"
	"strings"
)

// Single-locale formatting: space-grouped euros, comma decimals.

func eur(v float64) string {
	return group(v) + " EUR"
}

func pct(v float64) string {
	s := strconv.FormatFloat(round2(v), 'f', -1, 64)
	return strings.Replace(s, ".", ",", 1) + " %"
}

func group(v float64) string {
	neg := v < 0
	s := strconv.FormatFloat(math.Abs(math.Round(v)), 'f', 0, 64)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func shortID(id string) string {
	if len(id) <= 8 {
		return strings.ToUpper(id)
	}
	return strings.ToUpper(id[:8])
}
