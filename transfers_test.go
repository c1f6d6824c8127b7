package folio

import (
	"testing"

	"github.com/etnz/folio/date"
)

func TestSimulator_TransferValues(t *testing.T) {
	txs := []Transaction{
		{Date: day("2024-03-01"), Kind: TransferIn, Symbol: "AAPL", Quantity: dec("4"), Price: dec("125"), Currency: "USD", ExchangeRate: dec("1.25")},
		{Date: day("2024-03-02"), Kind: Deposit, Amount: dec("100"), Currency: "EUR"},
		{Date: day("2024-03-05"), Kind: TransferIn, Symbol: "NOPE", Quantity: dec("1"), Price: dec("10"), Currency: "EUR"},
	}
	sim := NewSimulator("EUR", map[string]*date.History[float64]{
		"AAPL": history(map[string]float64{"2024-03-01": 150}),
	})

	got := sim.Transfers(txs)
	if len(got) != 2 {
		t.Fatalf("len(Transfers()) = %d, want 2", len(got))
	}
	aapl := got[0]
	if !aapl.CostBasis.Equal(dec("400")) {
		t.Errorf("CostBasis = %v, want 400", aapl.CostBasis)
	}
	if !aapl.Priced || !aapl.Market.Equal(dec("480")) {
		t.Errorf("Market = %v (priced %v), want 480", aapl.Market, aapl.Priced)
	}
	if !aapl.Difference().Equal(dec("80")) {
		t.Errorf("Difference() = %v, want 80", aapl.Difference())
	}
	if got[1].Priced {
		t.Errorf("NOPE is priced, want unpriced without closes")
	}
}
