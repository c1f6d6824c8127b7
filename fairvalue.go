package folio

import (
	"fmt"
	"math"
	"strings"
)

// ValuationModel is the per-share metric a fair value is derived from.
type ValuationModel int

const (
	ModelPE   ValuationModel = iota // earnings per share
	ModelPFCF                       // free cash flow per share
	ModelPS                         // revenue per share
)

func (m ValuationModel) String() string {
	switch m {
	case ModelPFCF:
		return "pfcf"
	case ModelPS:
		return "ps"
	default:
		return "pe"
	}
}

func (m ValuationModel) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *ValuationModel) UnmarshalText(b []byte) error {
	v, err := ParseValuationModel(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseValuationModel parses "pe", "pfcf" or "ps".
func ParseValuationModel(s string) (ValuationModel, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "/", "")) {
	case "pe", "":
		return ModelPE, nil
	case "pfcf":
		return ModelPFCF, nil
	case "ps":
		return ModelPS, nil
	}
	return ModelPE, fmt.Errorf("unknown valuation model %q", s)
}

// FairValueInput gathers the parameters of a fair value computation.
type FairValueInput struct {
	Model ValuationModel
	// Override is the metric set by hand, it takes precedence over Auto.
	Override *float64
	// Auto is the metric derived from the latest fundamentals.
	Auto             *float64
	Growth           float64 // yearly growth of the metric, 0.1 is 10%
	Years            float64
	TerminalMultiple float64
	TargetReturn     float64 // yearly discount rate
	CurrentPrice     float64
}

// Metric returns the effective per-share metric.
func (in FairValueInput) Metric() *float64 {
	if in.Override != nil {
		return in.Override
	}
	return in.Auto
}

// FairValue is the result of a fair value computation. Fields are nil when
// the inputs do not allow it.
type FairValue struct {
	Price         *float64 `json:"fairPrice"`
	ImpliedReturn *float64 `json:"impliedReturn"`
}

// ComputeFairValue projects the metric over the horizon, prices it with the
// terminal multiple and discounts the result at the target return.
//
//	fair = metric × (1+growth)^years × multiple / (1+target)^years
//	implied = (fair / current)^(1/years) − 1
func ComputeFairValue(in FairValueInput) FairValue {
	metric := in.Metric()
	if metric == nil || *metric <= 0 || in.Years <= 0 || in.TerminalMultiple <= 0 {
		return FairValue{}
	}
	future := *metric * math.Pow(1+in.Growth, in.Years) * in.TerminalMultiple
	fair := future / math.Pow(1+in.TargetReturn, in.Years)
	if math.IsNaN(fair) || math.IsInf(fair, 0) {
		return FairValue{}
	}
	fv := FairValue{Price: &fair}
	if in.CurrentPrice > 0 && fair > 0 {
		implied := math.Pow(fair/in.CurrentPrice, 1/in.Years) - 1
		fv.ImpliedReturn = &implied
	}
	return fv
}

// TrailingMetric returns the per-share metric of model from snap, nil when
// the snapshot lacks it.
func TrailingMetric(model ValuationModel, snap FundamentalsSnapshot) *float64 {
	var raw *float64
	switch model {
	case ModelPE:
		return snap.TrailingEPS
	case ModelPFCF:
		raw = snap.TrailingFCF
	case ModelPS:
		raw = snap.TrailingRevenue
	}
	if raw == nil || snap.TrailingShares == nil || *snap.TrailingShares <= 0 {
		return nil
	}
	v := *raw / *snap.TrailingShares
	return &v
}

// LatestSnapshot returns the most recent snapshot.
func LatestSnapshot(snaps []FundamentalsSnapshot) (FundamentalsSnapshot, bool) {
	if len(snaps) == 0 {
		return FundamentalsSnapshot{}, false
	}
	latest := snaps[0]
	for _, s := range snaps[1:] {
		if !s.AsOf.Before(latest.AsOf) {
			latest = s
		}
	}
	return latest, true
}
