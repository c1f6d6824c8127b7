// Package statement reads broker statements exported as CSV into rows for
// the normalizer.
package statement

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/etnz/folio"
	"github.com/rs/zerolog/log"
)

// Field identifies a Row field.
type Field int

const (
	Type Field = iota
	Description
	Amount
	Currency
	ExchangeRate
	Date
	Symbol
)

// headers maps folded column headers to fields. Several brokers use
// different names for the same column.
var headers = map[string]Field{
	"type":             Type,
	"operation type":   Type,
	"type d'operation": Type,
	"type operation":   Type,
	"categorie":        Type,
	"section":          Type,
	"description":      Description,
	"libelle":          Description,
	"evenement":        Description,
	"details":          Description,
	"amount":           Amount,
	"montant":          Amount,
	"proceeds":         Amount,
	"currency":         Currency,
	"devise":           Currency,
	"exchange rate":    ExchangeRate,
	"taux de change":   ExchangeRate,
	"fx rate":          ExchangeRate,
	"rate":             ExchangeRate,
	"date":             Date,
	"date d'operation": Date,
	"operation date":   Date,
	"trade date":       Date,
	"date/time":        Date,
	"symbol":           Symbol,
	"symbole":          Symbol,
	"ticker":           Symbol,
	"instrument":       Symbol,
}

var bom = []byte("\xef\xbb\xbf")

// ErrNoHeader is returned when no column can be recognized.
var ErrNoHeader = errors.New("no recognized column in statement header")

// Reader reads Rows from a CSV statement. The first record is the header.
// The delimiter is detected among ',', ';' and tab.
type Reader struct {
	// Headers extends the default header names, keyed by folded header.
	Headers map[string]Field
}

// Read reads every row of r.
func (s *Reader) Read(r io.Reader) ([]folio.Row, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, err
	}
	comma := delimiter(head)
	if bytes.HasPrefix(head, bom) {
		if _, err := br.Discard(len(bom)); err != nil {
			return nil, err
		}
	}

	reader := csv.NewReader(br)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns, err := s.columns(header)
	if err != nil {
		return nil, err
	}

	var rows []folio.Row
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if empty(record) {
			continue
		}
		rows = append(rows, toRow(record, columns))
	}
	log.Debug().Int("rows", len(rows)).Msg("statement read")
	return rows, nil
}

// Read reads a CSV statement with the default header names.
func Read(r io.Reader) ([]folio.Row, error) { return new(Reader).Read(r) }

// columns returns the record index of each field, -1 when absent.
func (s *Reader) columns(header []string) ([7]int, error) {
	var columns [7]int
	for i := range columns {
		columns[i] = -1
	}
	found := false
	for i, h := range header {
		key := folio.Fold(h)
		f, ok := s.Headers[key]
		if !ok {
			f, ok = headers[key]
		}
		if !ok {
			log.Debug().Str("header", h).Msg("statement column ignored")
			continue
		}
		if columns[f] < 0 {
			columns[f] = i
			found = true
		}
	}
	if !found {
		return columns, ErrNoHeader
	}
	return columns, nil
}

func toRow(record []string, columns [7]int) folio.Row {
	get := func(f Field) string {
		i := columns[f]
		if i < 0 || i >= len(record) {
			return ""
		}
		return record[i]
	}
	return folio.Row{
		Type:         get(Type),
		Description:  get(Description),
		Amount:       get(Amount),
		Currency:     get(Currency),
		ExchangeRate: get(ExchangeRate),
		Date:         get(Date),
		Symbol:       get(Symbol),
	}
}

func empty(record []string) bool {
	for _, v := range record {
		if v != "" {
			return false
		}
	}
	return true
}

// delimiter guesses the delimiter from the first line.
func delimiter(head []byte) rune {
	line, _, _ := bytes.Cut(head, []byte("\n"))
	best, count := ',', bytes.Count(line, []byte(","))
	for _, r := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(r))); n > count {
			best, count = r, n
		}
	}
	return best
}
