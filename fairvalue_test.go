package folio

import "testing"

func TestComputeFairValue(t *testing.T) {
	tests := []struct {
		name        string
		in          FairValueInput
		wantPrice   *float64
		wantImplied *float64
	}{
		{
			name:        "growth equals target",
			in:          FairValueInput{Auto: ptr(5), Growth: 0.1, Years: 5, TerminalMultiple: 20, TargetReturn: 0.1, CurrentPrice: 100},
			wantPrice:   ptr(100),
			wantImplied: ptr(0),
		},
		{
			name:        "no growth no discount",
			in:          FairValueInput{Auto: ptr(10), Years: 1, TerminalMultiple: 20, CurrentPrice: 100},
			wantPrice:   ptr(200),
			wantImplied: ptr(1),
		},
		{
			name:        "discounted",
			in:          FairValueInput{Auto: ptr(4), Growth: 0, Years: 2, TerminalMultiple: 25, TargetReturn: 0.25, CurrentPrice: 64},
			wantPrice:   ptr(64),
			wantImplied: ptr(0),
		},
		{
			name:        "override wins",
			in:          FairValueInput{Override: ptr(1), Auto: ptr(10), Years: 1, TerminalMultiple: 10, CurrentPrice: 5},
			wantPrice:   ptr(10),
			wantImplied: ptr(1),
		},
		{
			name:      "no current price",
			in:        FairValueInput{Auto: ptr(1), Years: 1, TerminalMultiple: 10},
			wantPrice: ptr(10),
		},
		{name: "no metric", in: FairValueInput{Years: 5, TerminalMultiple: 20, CurrentPrice: 100}},
		{name: "negative metric", in: FairValueInput{Auto: ptr(-1), Years: 5, TerminalMultiple: 20, CurrentPrice: 100}},
		{name: "no horizon", in: FairValueInput{Auto: ptr(5), TerminalMultiple: 20, CurrentPrice: 100}},
		{name: "no multiple", in: FairValueInput{Auto: ptr(5), Years: 5, CurrentPrice: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeFairValue(tt.in)
			if !sameOptional(got.Price, tt.wantPrice) {
				t.Errorf("Price = %v, want %v", deref(got.Price), deref(tt.wantPrice))
			}
			if !sameOptional(got.ImpliedReturn, tt.wantImplied) {
				t.Errorf("ImpliedReturn = %v, want %v", deref(got.ImpliedReturn), deref(tt.wantImplied))
			}
		})
	}
}

func sameOptional(got, want *float64) bool {
	if got == nil || want == nil {
		return got == nil && want == nil
	}
	return closeTo(*got, *want)
}

func deref(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func TestTrailingMetric(t *testing.T) {
	snap := FundamentalsSnapshot{TrailingEPS: ptr(3), TrailingFCF: ptr(200), TrailingRevenue: ptr(1000), TrailingShares: ptr(100)}
	tests := []struct {
		model ValuationModel
		want  *float64
	}{
		{ModelPE, ptr(3)},
		{ModelPFCF, ptr(2)},
		{ModelPS, ptr(10)},
	}
	for _, tt := range tests {
		if got := TrailingMetric(tt.model, snap); !sameOptional(got, tt.want) {
			t.Errorf("TrailingMetric(%v) = %v, want %v", tt.model, deref(got), deref(tt.want))
		}
	}
	if got := TrailingMetric(ModelPS, FundamentalsSnapshot{TrailingRevenue: ptr(1)}); got != nil {
		t.Errorf("TrailingMetric(no shares) = %v, want nil", *got)
	}
}

func TestParseValuationModel(t *testing.T) {
	tests := []struct {
		in   string
		want ValuationModel
	}{
		{"pe", ModelPE},
		{"P/FCF", ModelPFCF},
		{"ps", ModelPS},
	}
	for _, tt := range tests {
		got, err := ParseValuationModel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseValuationModel(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseValuationModel("ev/ebitda"); err == nil {
		t.Error("ParseValuationModel(ev/ebitda) error = nil, want error")
	}
}

func TestLatestSnapshot(t *testing.T) {
	snaps := []FundamentalsSnapshot{{AsOf: day("2024-03-31")}, {AsOf: day("2024-06-30")}, {AsOf: day("2023-12-31")}}
	got, ok := LatestSnapshot(snaps)
	if !ok || got.AsOf != day("2024-06-30") {
		t.Errorf("LatestSnapshot() = %v, %v, want 2024-06-30", got.AsOf, ok)
	}
	if _, ok := LatestSnapshot(nil); ok {
		t.Error("LatestSnapshot(nil) ok = true, want false")
	}
}
