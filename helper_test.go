package folio

import (
	"github.com/etnz/folio/date"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

// dec is a helper for tests to create decimals from const.
func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// day is a helper for tests to create dates from const.
func day(s string) date.Date { return date.MustParse(s) }

// ptr returns a pointer to v.
func ptr(v float64) *float64 { return &v }

// cmpOpts compares decimals by value and dates by day.
var cmpOpts = cmp.Options{
	cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
	cmp.Comparer(func(a, b date.Date) bool { return a == b }),
}
