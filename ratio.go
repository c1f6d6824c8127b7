package folio

import (
	"math"
	"slices"
	"time"

	"github.com/etnz/folio/date"
)

// Quote is a closing price.
type Quote struct {
	Time  time.Time
	Close float64
}

// Day returns the quote's day.
func (q Quote) Day() date.Date { return date.FromTime(q.Time) }

// QuoteHistory indexes quotes by day for carry-forward lookups.
func QuoteHistory(quotes []Quote) *date.History[float64] {
	h := new(date.History[float64])
	for _, q := range quotes {
		h.Append(q.Day(), q.Close)
	}
	return h
}

// FundamentalsSnapshot holds trailing twelve months figures published on
// AsOf. It is valid until the next snapshot. Missing figures are nil.
type FundamentalsSnapshot struct {
	AsOf            date.Date `json:"asOfDate"`
	TrailingPE      *float64  `json:"trailingPeRatio,omitempty"`
	TrailingEPS     *float64  `json:"trailingEps,omitempty"`
	TrailingFCF     *float64  `json:"trailingFreeCashFlow,omitempty"`
	TrailingRevenue *float64  `json:"trailingTotalRevenue,omitempty"`
	TrailingShares  *float64  `json:"trailingShares,omitempty"`
}

// MetricKind names the fundamentals figure a ratio was computed from.
type MetricKind int

const (
	MetricNone MetricKind = iota // the ratio was published as is
	MetricEPS
	MetricFCF
	MetricRevenue
)

var metricNames = [...]string{"none", "eps", "fcf", "revenue"}

func (k MetricKind) String() string {
	if int(k) < len(metricNames) {
		return metricNames[k]
	}
	return "unknown"
}

func (k MetricKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// RatioKind is one of the price ratios.
type RatioKind int

const (
	PE RatioKind = iota
	PFCF
	PS
)

func (k RatioKind) String() string {
	switch k {
	case PE:
		return "P/E"
	case PFCF:
		return "P/FCF"
	case PS:
		return "P/S"
	}
	return "unknown"
}

// RatioPoint is a ratio value at a point in time.
type RatioPoint struct {
	Time        time.Time  `json:"time"`
	Value       float64    `json:"value"`
	SourceKind  MetricKind `json:"sourceMetricKind"`
	SourceValue *float64   `json:"sourceMetricValue"`
	SourceAsOf  date.Date  `json:"sourceAsOfDate"`
}

// RatioSeries is a ratio over time.
type RatioSeries struct {
	Kind RatioKind `json:"-"`
	// Points are aligned on quote times.
	Points []RatioPoint `json:"points"`
	// Markers are aligned on the snapshot dates: each one prices a snapshot
	// with the first quote at or after its publication.
	Markers []RatioPoint `json:"markers"`
	Stats   Stats        `json:"stats"`
}

// Ratios groups the three ratio series of a security.
type Ratios struct {
	PE   RatioSeries `json:"pe"`
	PFCF RatioSeries `json:"pfcf"`
	PS   RatioSeries `json:"ps"`
}

// Series returns the series for kind.
func (r *Ratios) Series(kind RatioKind) *RatioSeries {
	switch kind {
	case PFCF:
		return &r.PFCF
	case PS:
		return &r.PS
	default:
		return &r.PE
	}
}

// BuildRatios computes the ratio series of quotes using the snapshots in
// effect at each quote. Quotes are expected in ascending order. Quotes
// older than every snapshot use the earliest one.
func BuildRatios(quotes []Quote, snaps []FundamentalsSnapshot) Ratios {
	snaps = slices.Clone(snaps)
	slices.SortStableFunc(snaps, func(a, b FundamentalsSnapshot) int { return a.AsOf.Compare(b.AsOf) })

	r := Ratios{PE: RatioSeries{Kind: PE}, PFCF: RatioSeries{Kind: PFCF}, PS: RatioSeries{Kind: PS}}
	for _, kind := range []RatioKind{PE, PFCF, PS} {
		s := r.Series(kind)
		if len(snaps) > 0 {
			for _, q := range quotes {
				snap := effectiveSnapshot(snaps, q.Day())
				if p, ok := ratioAt(kind, q.Close, snap); ok {
					p.Time = q.Time
					s.Points = append(s.Points, p)
				}
			}
			for _, snap := range snaps {
				q, ok := markerQuote(quotes, snap.AsOf)
				if !ok {
					continue
				}
				if p, ok := ratioAt(kind, q.Close, snap); ok {
					p.Time = snap.AsOf.Time()
					s.Markers = append(s.Markers, p)
				}
			}
		}
		s.Stats = ComputeStats(s.Values())
	}
	return r
}

// Values returns the point values.
func (s RatioSeries) Values() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
	}
	return values
}

// effectiveSnapshot returns the latest snapshot published on or before day,
// or the earliest one. snaps must be sorted and not empty.
func effectiveSnapshot(snaps []FundamentalsSnapshot, day date.Date) FundamentalsSnapshot {
	i, found := slices.BinarySearchFunc(snaps, day, func(s FundamentalsSnapshot, d date.Date) int { return s.AsOf.Compare(d) })
	if found {
		// several snapshots on the same day: the last one wins.
		for i+1 < len(snaps) && snaps[i+1].AsOf == day {
			i++
		}
		return snaps[i]
	}
	if i == 0 {
		return snaps[0]
	}
	return snaps[i-1]
}

// markerQuote returns the first quote at or after day, or the last quote
// when every quote is older.
func markerQuote(quotes []Quote, day date.Date) (Quote, bool) {
	if len(quotes) == 0 {
		return Quote{}, false
	}
	for _, q := range quotes {
		if !q.Day().Before(day) {
			return q, true
		}
	}
	return quotes[len(quotes)-1], true
}

// ratioAt computes one ratio from price and snap.
func ratioAt(kind RatioKind, price float64, snap FundamentalsSnapshot) (RatioPoint, bool) {
	if kind == PE && snap.TrailingPE != nil {
		return RatioPoint{Value: *snap.TrailingPE, SourceKind: MetricNone, SourceAsOf: snap.AsOf}, valid(*snap.TrailingPE)
	}

	var (
		metric   float64
		raw      *float64
		source   MetricKind
		perShare bool
	)
	switch kind {
	case PE:
		raw, source = snap.TrailingEPS, MetricEPS
	case PFCF:
		raw, source, perShare = snap.TrailingFCF, MetricFCF, true
	case PS:
		raw, source, perShare = snap.TrailingRevenue, MetricRevenue, true
	}
	if raw == nil {
		return RatioPoint{}, false
	}
	metric = *raw
	if perShare {
		if snap.TrailingShares == nil || *snap.TrailingShares <= 0 {
			return RatioPoint{}, false
		}
		metric /= *snap.TrailingShares
	}
	if !valid(metric) {
		return RatioPoint{}, false
	}
	value := price / metric
	if !valid(value) {
		return RatioPoint{}, false
	}
	v := *raw
	return RatioPoint{Value: value, SourceKind: source, SourceValue: &v, SourceAsOf: snap.AsOf}, true
}

// valid reports whether v is finite and strictly positive.
func valid(v float64) bool { return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v) }
