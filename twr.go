package folio

import (
	"iter"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// TWR accumulates daily NAV observations into a time-weighted return.
//
// The zero value is ready to use: the series starts at the first day with an
// external flow.
type TWR struct {
	lastNav    float64
	cumulative float64
}

// NewTWR returns an accumulator whose baseline is the NAV at the end of the
// day before the first observation.
func NewTWR(baseline float64) *TWR {
	if baseline < 0 {
		baseline = 0
	}
	return &TWR{lastNav: baseline}
}

// Add records the end of day NAV and the day's net external flow.
func (t *TWR) Add(nav, flow float64) {
	switch {
	case t.lastNav == 0 && flow != 0:
		// first funded day: it only sets the baseline.
	case t.lastNav > 0:
		r := (nav-flow)/t.lastNav - 1
		t.cumulative = (1+t.cumulative)*(1+r) - 1
	}
	if nav > 0 {
		t.lastNav = nav
	}
}

// AddSnapshot records a simulator snapshot.
func (t *TWR) AddSnapshot(s DailySnapshot) {
	t.Add(s.NAV.InexactFloat64(), s.NetExternalFlow.InexactFloat64())
}

// Return is the cumulative return so far, as a fraction (0.05 is 5%).
func (t *TWR) Return() float64 { return t.cumulative }

// TimeWeightedReturn compounds the daily returns of the whole sequence.
func TimeWeightedReturn(snapshots iter.Seq[DailySnapshot]) float64 {
	var t TWR
	for s := range snapshots {
		t.AddSnapshot(s)
	}
	return t.Return()
}

// Performance is the NAV change over a period and its time-weighted return.
type Performance struct {
	Start, End decimal.Decimal
	Return     Percent
}

// Change returns the NAV variation, flows included.
func (p Performance) Change() decimal.Decimal { return p.End.Sub(p.Start) }

// Summary gives the portfolio NAV on a day and its returns over the
// standard periods ending that day.
type Summary struct {
	Date              date.Date
	ReportingCurrency string
	NAV               decimal.Decimal
	Daily             Performance
	WTD               Performance // Week-to-Date
	MTD               Performance // Month-to-Date
	QTD               Performance // Quarter-to-Date
	YTD               Performance // Year-to-Date
	Inception         Performance
}

// PeriodReturns computes the Summary for day on. snapshots must be the
// ascending output of a Simulator run.
func PeriodReturns(snapshots []DailySnapshot, on date.Date, reportingCurrency string) Summary {
	s := Summary{Date: on, ReportingCurrency: reportingCurrency}
	if i, ok := snapshotOn(snapshots, on); ok {
		s.NAV = snapshots[i].NAV
	}
	s.Daily = periodPerformance(snapshots, on, on)
	s.WTD = periodPerformance(snapshots, on.StartOf(date.Weekly), on)
	s.MTD = periodPerformance(snapshots, on.StartOf(date.Monthly), on)
	s.QTD = periodPerformance(snapshots, on.StartOf(date.Quarterly), on)
	s.YTD = periodPerformance(snapshots, on.StartOf(date.Yearly), on)
	if len(snapshots) > 0 {
		s.Inception = periodPerformance(snapshots, snapshots[0].Date, on)
	}
	return s
}

// snapshotOn returns the index of the last snapshot not after day.
func snapshotOn(snapshots []DailySnapshot, day date.Date) (int, bool) {
	i := -1
	for j, s := range snapshots {
		if s.Date.After(day) {
			break
		}
		i = j
	}
	return i, i >= 0
}

// periodPerformance compounds the returns of the days in [from, to]. The
// baseline is the NAV at the end of the day before from.
func periodPerformance(snapshots []DailySnapshot, from, to date.Date) Performance {
	var p Performance
	if i, ok := snapshotOn(snapshots, from.Add(-1)); ok {
		p.Start = snapshots[i].NAV
	}
	t := NewTWR(p.Start.InexactFloat64())
	for _, s := range snapshots {
		if s.Date.Before(from) {
			continue
		}
		if s.Date.After(to) {
			break
		}
		t.AddSnapshot(s)
		p.End = s.NAV
	}
	p.Return = Percent(100 * t.Return())
	return p
}
