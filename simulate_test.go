package folio

import (
	"slices"
	"testing"

	"github.com/etnz/folio/date"
	"github.com/google/go-cmp/cmp"
)

func history(points map[string]float64) *date.History[float64] {
	h := new(date.History[float64])
	for d, v := range points {
		h.Append(day(d), v)
	}
	return h
}

func navs(snaps []DailySnapshot) []string {
	var res []string
	for _, s := range snaps {
		res = append(res, s.NAV.StringFixed(2))
	}
	return res
}

func TestSimulator_Run(t *testing.T) {
	txs := []Transaction{
		{Date: day("2024-01-01"), Kind: Deposit, Amount: dec("1000"), Currency: "EUR"},
		{Date: day("2024-01-02"), Kind: Buy, Symbol: "X.PA", Quantity: dec("10"), Price: dec("50"), Amount: dec("-500"), Currency: "EUR"},
	}
	// closes are stamped on the next day
	sim := NewSimulator("EUR", map[string]*date.History[float64]{
		"X.PA": history(map[string]float64{"2024-01-02": 50, "2024-01-04": 60}),
	})

	snaps := sim.Snapshots(txs, day("2024-01-04"))

	if got, want := len(snaps), 4; got != want {
		t.Fatalf("len(Snapshots()) = %d, want %d", got, want)
	}
	if diff := cmp.Diff([]string{"1000.00", "1000.00", "1100.00", "1100.00"}, navs(snaps)); diff != "" {
		t.Errorf("NAV mismatch (-want +got):\n%s", diff)
	}
	if got := snaps[0].NetExternalFlow; !got.Equal(dec("1000")) {
		t.Errorf("day 1 NetExternalFlow = %v, want 1000", got)
	}
	if got := snaps[1].NetExternalFlow; !got.IsZero() {
		t.Errorf("day 2 NetExternalFlow = %v, want 0 (buys are internal)", got)
	}
	if got := snaps[1].Cash; !got.Equal(dec("500")) {
		t.Errorf("day 2 Cash = %v, want 500", got)
	}
	if got := snaps[3].Position("X.PA"); !got.Equal(dec("10")) {
		t.Errorf("day 4 Position(X.PA) = %v, want 10", got)
	}
	if got := snaps[3].Market(); !got.Equal(dec("600")) {
		t.Errorf("day 4 Market() = %v, want 600", got)
	}
	// earlier snapshots are not affected by later trades
	if got := snaps[0].Position("X.PA"); !got.IsZero() {
		t.Errorf("day 1 Position(X.PA) = %v, want 0", got)
	}
	if got := TimeWeightedReturn(slices.Values(snaps)); !closeTo(got, 0.1) {
		t.Errorf("TimeWeightedReturn() = %v, want 0.1", got)
	}
}

func TestSimulator_Restartable(t *testing.T) {
	txs := []Transaction{
		{Date: day("2024-01-01"), Kind: Deposit, Amount: dec("100"), Currency: "EUR"},
		{Date: day("2024-01-03"), Kind: Dividend, Amount: dec("5"), Currency: "EUR"},
	}
	seq := NewSimulator("EUR", nil).Run(txs, day("2024-01-05"))

	first, second := slices.Collect(seq), slices.Collect(seq)
	if diff := cmp.Diff(navs(first), navs(second)); diff != "" {
		t.Errorf("second run mismatch (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"100.00", "100.00", "105.00", "105.00", "105.00"}, navs(first)); diff != "" {
		t.Errorf("NAV mismatch (-want +got):\n%s", diff)
	}
	if got := first[2].NetExternalFlow; !got.IsZero() {
		t.Errorf("dividend day NetExternalFlow = %v, want 0", got)
	}
}

func TestSimulator_Empty(t *testing.T) {
	if got := NewSimulator("EUR", nil).Snapshots(nil, day("2024-01-05")); len(got) != 0 {
		t.Errorf("Snapshots(nil) = %v, want none", got)
	}
}

func TestSimulator_ForeignCurrency(t *testing.T) {
	txs := []Transaction{
		{Date: day("2024-01-01"), Kind: Deposit, Amount: dec("1250"), Currency: "USD", ExchangeRate: dec("1.25")},
		{Date: day("2024-01-01"), Kind: Buy, Symbol: "Y", Quantity: dec("10"), Price: dec("100"), Amount: dec("-1000"), Currency: "USD", ExchangeRate: dec("1")},
	}
	sim := NewSimulator("EUR", map[string]*date.History[float64]{
		"Y": history(map[string]float64{"2024-01-02": 110}),
	})
	snaps := sim.Snapshots(txs, day("2024-01-01"))

	s := snaps[0]
	// the buy row states no rate: the latest rate observed for USD applies.
	if !s.Cash.Equal(dec("200")) {
		t.Errorf("Cash = %v, want 200", s.Cash)
	}
	if !s.NetExternalFlow.Equal(dec("1000")) {
		t.Errorf("NetExternalFlow = %v, want 1000", s.NetExternalFlow)
	}
	if !s.NAV.Equal(dec("1080")) {
		t.Errorf("NAV = %v, want 1080 (200 + 10×110/1.25)", s.NAV)
	}
}

func TestSimulator_DividendCurrency(t *testing.T) {
	txs := []Transaction{
		{Date: day("2024-01-01"), Kind: Deposit, Amount: dec("1250"), Currency: "USD", ExchangeRate: dec("1.25")},
		{Date: day("2024-01-01"), Kind: Buy, Symbol: "Y", Quantity: dec("10"), Price: dec("100"), Amount: dec("-1000"), Currency: "USD"},
		{Date: day("2024-01-02"), Kind: Dividend, Symbol: "Y", Amount: dec("10"), Currency: "EUR"},
	}
	sim := NewSimulator("EUR", map[string]*date.History[float64]{
		"Y": history(map[string]float64{"2024-01-02": 110}),
	})
	snaps := sim.Snapshots(txs, day("2024-01-02"))

	// Y stays priced in USD after a dividend paid in EUR.
	if got := snaps[1].NAV; !got.Equal(dec("1090")) {
		t.Errorf("NAV = %v, want 1090 (200 + 10 + 10×110/1.25)", got)
	}
}

func TestSimulator_FXPolicy(t *testing.T) {
	txs := []Transaction{
		{Date: day("2024-01-01"), Kind: Deposit, Amount: dec("850"), Currency: "GBP", ExchangeRate: dec("0.85")},
	}
	tests := []struct {
		name      string
		threshold string
		want      string
	}{
		{"rates below 1 are ignored by default", "1", "850"},
		{"every positive rate with a zero threshold", "0", "1000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := NewSimulator("EUR", nil)
			sim.FX = FXPolicy{InformativeThreshold: dec(tt.threshold)}
			snaps := sim.Snapshots(txs, day("2024-01-01"))
			if got := snaps[0].NAV; !got.Equal(dec(tt.want)) {
				t.Errorf("NAV = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSimulator_Transfers(t *testing.T) {
	txs := []Transaction{
		{Date: day("2024-01-01"), Kind: TransferIn, Symbol: "Z", Quantity: dec("10"), Price: dec("20"), Currency: "EUR"},
		{Date: day("2024-01-03"), Kind: TransferOut, Symbol: "Z", Quantity: dec("4"), Price: dec("20"), Currency: "EUR"},
	}
	sim := NewSimulator("EUR", map[string]*date.History[float64]{
		"Z": history(map[string]float64{"2024-01-01": 25}),
	})
	snaps := sim.Snapshots(txs, day("2024-01-03"))

	if got := snaps[0].NetExternalFlow; !got.Equal(dec("200")) {
		t.Errorf("transfer in NetExternalFlow = %v, want 200 (cost basis)", got)
	}
	if got := snaps[2].NetExternalFlow; !got.Equal(dec("-80")) {
		t.Errorf("transfer out NetExternalFlow = %v, want -80", got)
	}
	if diff := cmp.Diff([]string{"250.00", "250.00", "150.00"}, navs(snaps)); diff != "" {
		t.Errorf("NAV mismatch (-want +got):\n%s", diff)
	}
}

func TestSimulator_MissingPriceAndFloor(t *testing.T) {
	txs := []Transaction{
		{Date: day("2024-01-01"), Kind: Deposit, Amount: dec("100"), Currency: "EUR"},
		{Date: day("2024-01-01"), Kind: Buy, Symbol: "UNKNOWN", Quantity: dec("1"), Price: dec("300"), Amount: dec("-300"), Currency: "EUR"},
	}
	snaps := NewSimulator("EUR", nil).Snapshots(txs, day("2024-01-01"))
	if got := snaps[0].NAV; !got.IsZero() {
		t.Errorf("NAV = %v, want 0 (negative cash, no price)", got)
	}
	if got := snaps[0].Cash; !got.Equal(dec("-200")) {
		t.Errorf("Cash = %v, want -200", got)
	}
}
