package folio

import (
	"maps"
	"strings"
)

// exchangeSuffixes maps broker exchange codes to the market data symbol suffix.
// US venues map to no suffix.
var exchangeSuffixes = map[string]string{
	// Amsterdam
	"AEB": ".AS", "AMS": ".AS", "ENEXT.AMS": ".AS", "AMSTERDAM": ".AS",
	// Paris
	"SBF": ".PA", "PAR": ".PA", "EPA": ".PA", "ENEXT.PA": ".PA", "PARIS": ".PA",
	// Frankfurt and Xetra
	"IBIS": ".DE", "IBIS2": ".DE", "XETRA": ".DE", "FWB": ".DE", "FWB2": ".DE", "FRA": ".DE", "FRANKFURT": ".DE",
	// Milan
	"BVME": ".MI", "MIL": ".MI", "BIT": ".MI", "MILAN": ".MI",
	// London
	"LSE": ".L", "LSEETF": ".L",
	// Switzerland
	"EBS": ".SW", "SWX": ".SW",
	// Madrid
	"BM": ".MC", "BME": ".MC",
	// United States
	"NASDAQ": "", "NYSE": "", "ARCA": "", "AMEX": "", "BATS": "", "ISLAND": "", "NYSEARCA": "", "SMART": "",
}

// SymbolTable canonicalizes raw broker symbols.
type SymbolTable struct {
	suffixes map[string]string
}

// NewSymbolTable returns the default exchange table extended (or
// overridden) by extra, keyed by exchange code.
func NewSymbolTable(extra map[string]string) *SymbolTable {
	s := &SymbolTable{suffixes: maps.Clone(exchangeSuffixes)}
	for k, v := range extra {
		s.suffixes[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	return s
}

// Canonical converts a raw "BASE:EXCHANGE" symbol into its market data form,
// for instance "air_regd:sbf" becomes "AIR.PA". Unknown exchanges add no
// suffix. It returns "" when there is no base symbol.
func (s *SymbolTable) Canonical(raw string) string {
	base, exchange, _ := strings.Cut(strings.TrimSpace(raw), ":")
	base = strings.ToUpper(strings.TrimSpace(base))
	base = strings.TrimSuffix(base, "_REGD")
	if base == "" {
		return ""
	}
	return base + s.suffixes[strings.ToUpper(strings.TrimSpace(exchange))]
}

var defaultSymbols = NewSymbolTable(nil)

// CanonicalSymbol canonicalizes raw with the default exchange table.
func CanonicalSymbol(raw string) string { return defaultSymbols.Canonical(raw) }
