package folio

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/Rhymond/go-money"
	"github.com/etnz/folio/date"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Row is a raw statement line, as extracted from the broker document.
// All fields are kept verbatim, numbers are locale formatted.
type Row struct {
	Type         string // operation type, e.g. "Opération" or "Transfert d'espèces"
	Description  string // free text event description
	Amount       string
	Currency     string
	ExchangeRate string
	Date         string
	Symbol       string // raw "BASE:EXCHANGE" symbol
}

// ParsedEvent is the result of parsing a Row. It is one of CashTransfer,
// Trade or DividendPayment.
type ParsedEvent interface {
	Transaction() Transaction
	parsedEvent()
}

// CashTransfer is money deposited into or withdrawn from the account.
type CashTransfer struct {
	Date     date.Date
	Amount   decimal.Decimal // positive for deposits
	Currency string
	Rate     decimal.Decimal
}

func (CashTransfer) parsedEvent() {}

func (e CashTransfer) Transaction() Transaction {
	kind := Deposit
	if e.Amount.IsNegative() {
		kind = Withdrawal
	}
	return Transaction{Date: e.Date, Kind: kind, Amount: e.Amount, Currency: e.Currency, ExchangeRate: e.Rate}
}

// Trade is a buy, a sell or a transfer of securities.
type Trade struct {
	Date     date.Date
	Kind     Kind // Buy, Sell, TransferIn or TransferOut
	Symbol   string
	Quantity decimal.Decimal // absolute
	Price    decimal.Decimal // per unit, the cost basis for transfers
	Amount   decimal.Decimal
	Currency string
	Rate     decimal.Decimal
}

func (Trade) parsedEvent() {}

func (e Trade) Transaction() Transaction {
	return Transaction{
		Date: e.Date, Kind: e.Kind, Symbol: e.Symbol,
		Quantity: e.Quantity, Price: e.Price, Amount: e.Amount,
		Currency: e.Currency, ExchangeRate: e.Rate,
	}
}

// DividendPayment is cash income paid by a security.
type DividendPayment struct {
	Date     date.Date
	Symbol   string // optional
	Amount   decimal.Decimal
	Currency string
	Rate     decimal.Decimal
}

func (DividendPayment) parsedEvent() {}

func (e DividendPayment) Transaction() Transaction {
	return Transaction{Date: e.Date, Kind: Dividend, Symbol: e.Symbol, Amount: e.Amount, Currency: e.Currency, ExchangeRate: e.Rate}
}

// RowParser turns one shape of statement row into a ParsedEvent.
// It returns false for rows it does not recognize or that carry no
// information: those rows are skipped.
type RowParser interface {
	Parse(Row) (ParsedEvent, bool)
}

// Fold lower cases s and removes its diacritics, so that "Opération" and
// "operation" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ReplaceAll(folded, "’", "'")
	return strings.ToLower(strings.Join(strings.Fields(folded), " "))
}

var rowDateLayouts = []string{
	"2006-01-02",
	"2006-01-02, 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
}

func parseRowDate(s string) (date.Date, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range rowDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return date.New(t.Date()), true
		}
	}
	return date.Date{}, false
}

var one = decimal.NewFromInt(1)

// rowValues decodes the fields shared by every row shape.
type rowValues struct {
	on       date.Date
	amount   decimal.Decimal
	currency string
	rate     decimal.Decimal
}

func decodeRow(r Row) (rowValues, bool) {
	on, ok := parseRowDate(r.Date)
	if !ok {
		return rowValues{}, false
	}
	rate := ParseNumber(r.ExchangeRate, one)
	if !rate.IsPositive() {
		rate = one
	}
	cur := strings.ToUpper(strings.TrimSpace(r.Currency))
	if cur != "" && money.GetCurrency(cur) == nil {
		log.Warn().Str("currency", cur).Str("date", r.Date).Msg("unknown currency code")
	}
	return rowValues{
		on:       on,
		amount:   ParseNumber(r.Amount, decimal.Zero),
		currency: cur,
		rate:     rate,
	}, true
}

func typeIn(rowType string, names ...string) bool {
	t := Fold(rowType)
	for _, n := range names {
		if t == n {
			return true
		}
	}
	return false
}

// CashTransferParser parses deposits and withdrawals.
type CashTransferParser struct{}

func (CashTransferParser) Parse(r Row) (ParsedEvent, bool) {
	if !typeIn(r.Type, "cash transfer", "transfert d'especes", "virement", "depots et retraits", "deposits & withdrawals") {
		return nil, false
	}
	v, ok := decodeRow(r)
	if !ok || v.amount.IsZero() {
		return nil, false
	}
	return CashTransfer{Date: v.on, Amount: v.amount, Currency: v.currency, Rate: v.rate}, true
}

var (
	// <verb> <signed quantity> [product] @ <price>
	// The price may group thousands with spaces: "1 234,56".
	tradeRE       = regexp.MustCompile(`\b(achat|vente|transfert entrant|transfert sortant)\s+([+-]?\d[\d.,]*)\b.*?@\s*([+-]?\d{1,3}(?:[ .,]\d{3})+\b(?:[.,]\d+)?|[+-]?\d[\d.,]*)`)
	transferInRE  = regexp.MustCompile(`\btransfert (de titres )?entrant\b|\btransfer in\b|\bentree de titres\b`)
	transferOutRE = regexp.MustCompile(`\btransfert (de titres )?sortant\b|\btransfer out\b|\bsortie de titres\b`)
)

// TradeParser parses buys, sells and security transfers.
type TradeParser struct {
	Symbols *SymbolTable
}

func (p TradeParser) Parse(r Row) (ParsedEvent, bool) {
	if !typeIn(r.Type, "operation", "trade", "transaction", "transactions") {
		return nil, false
	}
	desc := Fold(r.Description)
	m := tradeRE.FindStringSubmatch(desc)
	if m == nil {
		return nil, false
	}
	v, ok := decodeRow(r)
	if !ok {
		return nil, false
	}
	symbol := p.symbols().Canonical(r.Symbol)
	if symbol == "" {
		return nil, false
	}

	var kind Kind
	switch {
	case transferInRE.MatchString(desc):
		kind = TransferIn
	case transferOutRE.MatchString(desc):
		kind = TransferOut
	case v.amount.IsZero():
		return nil, false
	case v.amount.IsNegative():
		kind = Buy
	default:
		kind = Sell
	}

	return Trade{
		Date:     v.on,
		Kind:     kind,
		Symbol:   symbol,
		Quantity: ParseNumber(m[2], decimal.Zero).Abs(),
		Price:    ParseNumber(m[3], decimal.Zero),
		Amount:   v.amount,
		Currency: v.currency,
		Rate:     v.rate,
	}, true
}

func (p TradeParser) symbols() *SymbolTable {
	if p.Symbols == nil {
		return defaultSymbols
	}
	return p.Symbols
}

// DividendParser parses dividends paid in cash.
type DividendParser struct {
	Symbols *SymbolTable
}

func (p DividendParser) Parse(r Row) (ParsedEvent, bool) {
	if !typeIn(r.Type, "securities operation", "operation sur titres", "operations sur titres", "corporate action") {
		return nil, false
	}
	if !strings.Contains(Fold(r.Description), "dividend") {
		return nil, false
	}
	v, ok := decodeRow(r)
	if !ok || v.amount.IsZero() {
		return nil, false
	}
	symbols := p.Symbols
	if symbols == nil {
		symbols = defaultSymbols
	}
	return DividendPayment{
		Date:     v.on,
		Symbol:   symbols.Canonical(r.Symbol),
		Amount:   v.amount,
		Currency: v.currency,
		Rate:     v.rate,
	}, true
}

// NormalizeStats counts what happened to the rows during normalization.
type NormalizeStats struct {
	Rows    int
	Kept    int
	Skipped int
}

// Normalizer converts statement rows into sorted transactions.
type Normalizer struct {
	// Parsers are tried in order, the first one to accept a row wins.
	Parsers []RowParser
}

// NewNormalizer returns a Normalizer for cash transfers, trades and dividends.
func NewNormalizer(symbols *SymbolTable) *Normalizer {
	if symbols == nil {
		symbols = defaultSymbols
	}
	return &Normalizer{Parsers: []RowParser{
		CashTransferParser{},
		TradeParser{Symbols: symbols},
		DividendParser{Symbols: symbols},
	}}
}

// Normalize parses rows and returns the recognized transactions, sorted.
// Unrecognized rows are skipped, they are never an error.
func (n *Normalizer) Normalize(rows []Row) ([]Transaction, NormalizeStats) {
	stats := NormalizeStats{Rows: len(rows)}
	txs := make([]Transaction, 0, len(rows))
	for _, r := range rows {
		ev, ok := n.parse(r)
		if !ok {
			stats.Skipped++
			log.Debug().Str("type", r.Type).Str("description", r.Description).Str("date", r.Date).Msg("statement row skipped")
			continue
		}
		txs = append(txs, ev.Transaction())
	}
	stats.Kept = len(txs)
	SortTransactions(txs)
	return txs, stats
}

func (n *Normalizer) parse(r Row) (ParsedEvent, bool) {
	for _, p := range n.Parsers {
		if ev, ok := p.Parse(r); ok {
			return ev, true
		}
	}
	return nil, false
}
