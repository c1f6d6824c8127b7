package folio

import (
	"slices"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// TransferValue compares the value of a security transfer at its stated
// cost basis and at the market close of the transfer day. Amounts are in
// the reporting currency.
type TransferValue struct {
	Date      date.Date
	Kind      Kind
	Symbol    string
	Quantity  decimal.Decimal
	CostBasis decimal.Decimal
	// Market is zero when no close is known for the day, see Priced.
	Market decimal.Decimal
	Priced bool
}

// Difference returns Market minus CostBasis.
func (t TransferValue) Difference() decimal.Decimal { return t.Market.Sub(t.CostBasis) }

// Transfers values every security transfer of txs.
func (s *Simulator) Transfers(txs []Transaction) []TransferValue {
	ordered := slices.Clone(txs)
	SortTransactions(ordered)
	r := s.newReplay()
	var res []TransferValue
	for _, tx := range ordered {
		r.apply(tx)
		if tx.Kind != TransferIn && tx.Kind != TransferOut {
			continue
		}
		v := TransferValue{
			Date:      tx.Date,
			Kind:      tx.Kind,
			Symbol:    tx.Symbol,
			Quantity:  tx.Quantity,
			CostBasis: tx.Quantity.Mul(r.fx.convert(tx.Price, tx.Currency)),
		}
		if close, ok := r.price(tx.Symbol, tx.Date); ok {
			v.Market = r.fx.convert(tx.Quantity.Mul(decimal.NewFromFloat(close)), tx.Currency)
			v.Priced = true
		}
		res = append(res, v)
	}
	return res
}
