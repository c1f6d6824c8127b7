package renderer

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// NAV is the portfolio valuation on a day.
type NAV struct {
	folio.Summary
	Cash      decimal.Decimal
	Holdings  []Holding
	Transfers []folio.TransferValue
}

// Holding is a position valued in the reporting currency.
type Holding struct {
	Symbol   string
	Quantity decimal.Decimal
	Value    decimal.Decimal
}

// PeriodReturn is a labelled line of the performance table.
type PeriodReturn struct {
	Label string
	folio.Performance
}

// NewNAV builds the valuation on day on from the simulator output.
func NewNAV(snapshots []folio.DailySnapshot, on date.Date, currency string, transfers []folio.TransferValue) *NAV {
	n := &NAV{Summary: folio.PeriodReturns(snapshots, on, currency)}
	for _, s := range snapshots {
		if s.Date.After(on) {
			break
		}
		n.Cash = s.Cash
		n.Holdings = n.Holdings[:0]
		for symbol, qty := range s.Positions {
			if !qty.IsPositive() {
				continue
			}
			n.Holdings = append(n.Holdings, Holding{Symbol: symbol, Quantity: qty, Value: s.Values[symbol]})
		}
	}
	slices.SortFunc(n.Holdings, func(a, b Holding) int { return cmp.Compare(a.Symbol, b.Symbol) })
	for _, t := range transfers {
		if !t.Date.After(on) {
			n.Transfers = append(n.Transfers, t)
		}
	}
	return n
}

// Periods returns the performance lines, from the shortest period.
func (n *NAV) Periods() []PeriodReturn {
	d := n.Date
	_, week := d.ISOWeek()
	return []PeriodReturn{
		{fmt.Sprintf("Day %d", d.Day()), n.Daily},
		{fmt.Sprintf("Week %d", week), n.WTD},
		{d.Month().String(), n.MTD},
		{fmt.Sprintf("Q%d", (d.Month()-1)/3+1), n.QTD},
		{fmt.Sprintf("%d", d.Year()), n.YTD},
		{"Inception", n.Inception},
	}
}

// RenderNAV renders the valuation, its performance, holdings and transfers.
func RenderNAV(n *NAV) string {
	partials := map[string]string{
		"nav_title":       "nav_title.md",
		"nav_performance": "nav_performance.md",
		"nav_holdings":    "nav_holdings.md",
		"nav_transfers":   "nav_transfers.md",
	}
	return renderTemplate("nav", "nav.md", partials, n)
}

// RenderPerformance renders the time-weighted returns only.
func RenderPerformance(s folio.Summary) string {
	partials := map[string]string{
		"nav_title":       "nav_title.md",
		"nav_performance": "nav_performance.md",
	}
	return renderTemplate("performance", "performance.md", partials, &NAV{Summary: s})
}
