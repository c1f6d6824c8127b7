package folio

import "github.com/shopspring/decimal"

// DefaultInformativeRate is the threshold above which a broker stated
// exchange rate is used for conversion. Brokers print 1 (or leave the rate
// empty) when they do not convert, so only rates strictly above 1 are
// trusted by default.
//
// Note that this skips legitimate rates below 1 (e.g. GBP per EUR): set
// FXPolicy.InformativeThreshold to 0 to convert with every positive rate.
var DefaultInformativeRate = decimal.NewFromInt(1)

// FXPolicy decides when an exchange rate is used to convert instrument
// currency amounts into the reporting currency.
type FXPolicy struct {
	InformativeThreshold decimal.Decimal
}

// DefaultFXPolicy returns the policy using DefaultInformativeRate.
func DefaultFXPolicy() FXPolicy { return FXPolicy{InformativeThreshold: DefaultInformativeRate} }

// Informative reports whether rate can be used for conversion.
func (p FXPolicy) Informative(rate decimal.Decimal) bool {
	return rate.IsPositive() && rate.GreaterThan(p.InformativeThreshold)
}

// rates holds the most recently observed exchange rate per currency.
// It belongs to a single simulation run.
type rates struct {
	reporting string
	policy    FXPolicy
	latest    map[string]decimal.Decimal
}

func newRates(reporting string, policy FXPolicy) *rates {
	return &rates{reporting: reporting, policy: policy, latest: make(map[string]decimal.Decimal)}
}

func (r *rates) foreign(currency string) bool {
	return currency != "" && currency != r.reporting
}

// observe records the rate stated on a transaction. A rate of exactly 1 is
// the broker's "no conversion" marker and is ignored.
func (r *rates) observe(currency string, rate decimal.Decimal) {
	if !r.foreign(currency) || !rate.IsPositive() || rate.Equal(one) {
		return
	}
	r.latest[currency] = rate
}

// rate returns the latest rate observed for currency, 1 when there is none.
func (r *rates) rate(currency string) decimal.Decimal {
	if v, ok := r.latest[currency]; ok {
		return v
	}
	return one
}

// convert converts an amount in currency into the reporting currency.
func (r *rates) convert(amount decimal.Decimal, currency string) decimal.Decimal {
	if !r.foreign(currency) {
		return amount
	}
	rate := r.rate(currency)
	if !r.policy.Informative(rate) {
		return amount
	}
	return amount.Div(rate)
}
