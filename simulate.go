package folio

import (
	"iter"
	"maps"
	"slices"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// DailySnapshot is the state of the portfolio at the end of a day.
// All amounts are in the reporting currency.
type DailySnapshot struct {
	Date date.Date
	Cash decimal.Decimal
	// Positions is the share count per symbol. The map is shared with the
	// following snapshots until the positions change, it must not be modified.
	Positions map[string]decimal.Decimal
	// Values is the market value per held symbol.
	Values          map[string]decimal.Decimal
	NAV             decimal.Decimal
	NetExternalFlow decimal.Decimal
}

// Position returns the share count held for symbol.
func (s DailySnapshot) Position(symbol string) decimal.Decimal { return s.Positions[symbol] }

// Market returns the total market value of the positions.
func (s DailySnapshot) Market() decimal.Decimal {
	total := decimal.Zero
	for _, v := range s.Values {
		total = total.Add(v)
	}
	return total
}

// Simulator replays transactions day by day to rebuild the daily NAV.
type Simulator struct {
	ReportingCurrency string
	// Prices holds the daily closes per symbol, in the symbol's currency.
	Prices map[string]*date.History[float64]
	FX     FXPolicy
}

// NewSimulator returns a Simulator with the default FX policy.
func NewSimulator(reportingCurrency string, prices map[string]*date.History[float64]) *Simulator {
	return &Simulator{ReportingCurrency: reportingCurrency, Prices: prices, FX: DefaultFXPolicy()}
}

// Run returns the daily snapshots from the first transaction date to end,
// both included, one per calendar day. The sequence can be iterated
// several times, each iteration replays the transactions from scratch.
func (s *Simulator) Run(txs []Transaction, end date.Date) iter.Seq[DailySnapshot] {
	ordered := slices.Clone(txs)
	SortTransactions(ordered)
	return func(yield func(DailySnapshot) bool) {
		if len(ordered) == 0 {
			return
		}
		r := s.newReplay()
		i := 0
		for day := range date.Days(ordered[0].Date, end) {
			flow := decimal.Zero
			for ; i < len(ordered) && !ordered[i].Date.After(day); i++ {
				flow = flow.Add(r.apply(ordered[i]))
			}
			if !yield(r.snapshot(day, flow)) {
				return
			}
		}
	}
}

// Snapshots collects Run into a slice.
func (s *Simulator) Snapshots(txs []Transaction, end date.Date) []DailySnapshot {
	return slices.Collect(s.Run(txs, end))
}

// replay is the mutable state of one simulation run.
type replay struct {
	sim        *Simulator
	fx         *rates
	cash       decimal.Decimal
	positions  map[string]decimal.Decimal
	shared     bool              // positions is referenced by an emitted snapshot
	currencies map[string]string // symbol -> currency of its prices
}

func (s *Simulator) newReplay() *replay {
	return &replay{
		sim:        s,
		fx:         newRates(s.ReportingCurrency, s.FX),
		positions:  make(map[string]decimal.Decimal),
		currencies: make(map[string]string),
	}
}

// move adds delta shares to the symbol position, copying the positions
// first if a snapshot still references them.
func (r *replay) move(symbol string, delta decimal.Decimal) {
	if r.shared {
		r.positions = maps.Clone(r.positions)
		r.shared = false
	}
	r.positions[symbol] = r.positions[symbol].Add(delta)
}

// apply replays one transaction and returns its external flow.
func (r *replay) apply(tx Transaction) decimal.Decimal {
	r.fx.observe(tx.Currency, tx.ExchangeRate)
	// dividends may be paid in another currency than the listing
	if tx.Symbol != "" && tx.Currency != "" && tx.Kind != Dividend {
		r.currencies[tx.Symbol] = tx.Currency
	}

	switch tx.Kind {
	case Deposit, Withdrawal:
		amount := r.fx.convert(tx.Amount, tx.Currency)
		r.cash = r.cash.Add(amount)
		return amount
	case Dividend:
		r.cash = r.cash.Add(r.fx.convert(tx.Amount, tx.Currency))
	case Buy:
		r.cash = r.cash.Add(r.fx.convert(tx.Amount, tx.Currency))
		r.move(tx.Symbol, tx.Quantity)
	case Sell:
		r.cash = r.cash.Add(r.fx.convert(tx.Amount, tx.Currency))
		r.move(tx.Symbol, tx.Quantity.Neg())
	case TransferIn:
		r.move(tx.Symbol, tx.Quantity)
		return tx.Quantity.Mul(r.fx.convert(tx.Price, tx.Currency))
	case TransferOut:
		r.move(tx.Symbol, tx.Quantity.Neg())
		return tx.Quantity.Mul(r.fx.convert(tx.Price, tx.Currency)).Neg()
	}
	return decimal.Zero
}

// price returns the close to use for day: the latest one not after the
// next calendar day. Closes are stamped at the market's local midnight,
// which can fall on the next UTC day.
func (r *replay) price(symbol string, day date.Date) (float64, bool) {
	h, ok := r.sim.Prices[symbol]
	if !ok || h == nil {
		return 0, false
	}
	return h.ValueAsOf(day.Add(1))
}

func (r *replay) snapshot(day date.Date, flow decimal.Decimal) DailySnapshot {
	values := make(map[string]decimal.Decimal)
	nav := r.cash
	for symbol, qty := range r.positions {
		if !qty.IsPositive() {
			continue
		}
		close, ok := r.price(symbol, day)
		if !ok {
			continue
		}
		value := r.fx.convert(qty.Mul(decimal.NewFromFloat(close)), r.currencies[symbol])
		values[symbol] = value
		nav = nav.Add(value)
	}
	if nav.IsNegative() {
		nav = decimal.Zero
	}
	r.shared = true
	return DailySnapshot{
		Date:            day,
		Cash:            r.cash,
		Positions:       r.positions,
		Values:          values,
		NAV:             nav,
		NetExternalFlow: flow,
	}
}
