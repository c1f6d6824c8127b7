package folio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// Kind identifies the effect of a transaction on the portfolio.
type Kind int

// Transaction kinds.
const (
	Deposit Kind = iota + 1
	Withdrawal
	Buy
	Sell
	TransferIn
	TransferOut
	Dividend
)

var kindNames = map[Kind]string{
	Deposit:     "deposit",
	Withdrawal:  "withdrawal",
	Buy:         "buy",
	Sell:        "sell",
	TransferIn:  "transfer-in",
	TransferOut: "transfer-out",
	Dividend:    "dividend",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown transaction kind %q", s)
}

// IsAddition reports whether k brings cash or securities in.
// Additions are replayed before reductions on the same day.
func (k Kind) IsAddition() bool {
	switch k {
	case Buy, TransferIn, Deposit, Dividend:
		return true
	}
	return false
}

func (k Kind) MarshalJSON() ([]byte, error) { return json.Marshal(k.String()) }

func (k *Kind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Transaction is a normalized, dated statement line.
//
// Amount is the signed cash effect and Price the per-share price, both in
// the instrument Currency. ExchangeRate is the number of instrument
// currency units per reporting currency unit as stated by the broker, 1
// when unknown.
type Transaction struct {
	Date         date.Date       `json:"date"`
	Kind         Kind            `json:"kind"`
	Symbol       string          `json:"symbol,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency,omitempty"`
	ExchangeRate decimal.Decimal `json:"rate"`
}

func (t Transaction) String() string {
	if t.Symbol == "" {
		return fmt.Sprintf("%s %s %s %s", t.Date, t.Kind, t.Amount, t.Currency)
	}
	return fmt.Sprintf("%s %s %s %s@%s %s", t.Date, t.Kind, t.Symbol, t.Quantity, t.Price, t.Currency)
}

// SortTransactions sorts transactions by date, and on the same date puts
// additions before reductions. The sort is stable.
func SortTransactions(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		a, b := txs[i], txs[j]
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		return a.Kind.IsAddition() && !b.Kind.IsAddition()
	})
}

// EncodeTransactions writes transactions as JSON lines.
func EncodeTransactions(w io.Writer, txs []Transaction) error {
	enc := json.NewEncoder(w)
	for _, tx := range txs {
		if err := enc.Encode(tx); err != nil {
			return fmt.Errorf("encoding transaction %v: %w", tx, err)
		}
	}
	return nil
}

// DecodeTransactions reads JSON lines written by EncodeTransactions.
// The result is sorted.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	var txs []Transaction
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var tx Transaction
		if err := json.Unmarshal([]byte(text), &tx); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	SortTransactions(txs)
	return txs, nil
}
