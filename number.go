package folio

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseNumber reads a locale formatted number.
//
// Runes other than digits, '.', ',' and '-' are ignored. When both '.' and
// ',' appear, the later one is the decimal point and the other groups
// thousands. A separator repeated without the other one groups
// thousands ("1.234.567"). A single ',' is a decimal point. Unparseable
// input returns fallback.
func ParseNumber(s string, fallback decimal.Decimal) decimal.Decimal {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if clean == "" {
		return fallback
	}

	dot, comma := strings.LastIndex(clean, "."), strings.LastIndex(clean, ",")
	switch {
	case dot >= 0 && comma >= 0 && comma > dot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case dot >= 0 && comma >= 0:
		clean = strings.ReplaceAll(clean, ",", "")
	case strings.Count(clean, ".") > 1:
		clean = strings.ReplaceAll(clean, ".", "")
	case strings.Count(clean, ",") > 1:
		clean = strings.ReplaceAll(clean, ",", "")
	case comma >= 0:
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	v, err := decimal.NewFromString(clean)
	if err != nil {
		return fallback
	}
	return v
}

// ParseFloat is ParseNumber for callers working in float64.
func ParseFloat(s string, fallback float64) float64 {
	v := ParseNumber(s, decimal.NewFromFloat(fallback))
	return v.InexactFloat64()
}
