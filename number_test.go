package folio

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1234.56", "1234.56"},
		{"1234,56", "1234.56"},
		{"1.234,56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"-1 234,56 €", "-1234.56"},
		{"EUR -12", "-12"},
		{"0,5", "0.5"},
		{"1.234.567,8", "1234567.8"},
		{"1,234,567.8", "1234567.8"},
		{"1.234.567", "1234567"},
		{"1,234,567", "1234567"},
		{"", "42"},
		{"n/a", "42"},
		{"--", "42"},
	}
	for _, tt := range tests {
		got := ParseNumber(tt.in, dec("42"))
		if !got.Equal(dec(tt.want)) {
			t.Errorf("ParseNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFloat(t *testing.T) {
	if got := ParseFloat("1,5", 0); got != 1.5 {
		t.Errorf("ParseFloat(1,5) = %v, want 1.5", got)
	}
	if got := ParseFloat("", 1); got != 1 {
		t.Errorf("ParseFloat(\"\") = %v, want 1", got)
	}
}

// group formats n with sep every three digits.
func group(n int, sep string) string {
	s := fmt.Sprint(n)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteString(sep)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func TestParseNumber_Locales(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("french and english formats parse to the same value", prop.ForAll(
		func(units, cents int) bool {
			want := decimal.New(int64(units)*100+int64(cents), -2)
			fr := fmt.Sprintf("%s,%02d", group(units, "."), cents)
			en := fmt.Sprintf("%s.%02d", group(units, ","), cents)
			return ParseNumber(fr, decimal.Zero).Equal(want) && ParseNumber(en, decimal.Zero).Equal(want)
		},
		gen.IntRange(0, 10_000_000),
		gen.IntRange(0, 99),
	))

	properties.TestingRun(t)
}
