// Package eodhd fetches prices, fundamentals and symbols from EODHD.com.
package eodhd

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/etnz/folio"
)

// APIKeyEnv is the environment variable read when no key is configured.
const APIKeyEnv = "EODHD_API_KEY"

const DefaultBaseURL = "https://eodhd.com"

// Client is an EODHD client. It implements folio.Provider.
type Client struct {
	APIKey  string
	BaseURL string
	HTTP    *http.Client
}

// New returns a client for apiKey, or for the key in APIKeyEnv when apiKey
// is empty.
func New(apiKey string, opts folio.ClientOptions) *Client {
	if apiKey == "" {
		apiKey = os.Getenv(APIKeyEnv)
	}
	if opts.Name == "" {
		opts.Name = "eodhd"
	}
	return &Client{APIKey: apiKey, BaseURL: DefaultBaseURL, HTTP: folio.NewHTTPClient(opts)}
}

// exchanges maps market data suffixes to EODHD exchange codes.
var exchanges = map[string]string{
	"":    "US",
	"PA":  "PA",
	"AS":  "AS",
	"DE":  "XETRA",
	"F":   "F",
	"MI":  "MI",
	"L":   "LSE",
	"SW":  "SW",
	"MC":  "MC",
	"BR":  "BR",
	"LS":  "LS",
	"TO":  "TO",
	"HK":  "HK",
	"T":   "TSE",
	"AX":  "AU",
	"ST":  "ST",
	"CO":  "CO",
	"OL":  "OL",
	"HE":  "HE",
	"VI":  "VI",
	"IR":  "IR",
	"WA":  "WAR",
	"KS":  "KO",
	"SA":  "SA",
	"NS":  "NSE",
	"BO":  "BSE",
	"TW":  "TW",
	"SS":  "SHG",
	"SZ":  "SHE",
	"JO":  "JSE",
	"NZ":  "NZ",
	"SI":  "SG",
	"TA":  "TA",
	"MX":  "MX",
	"IS":  "IS",
	"BK":  "BK",
	"JK":  "JK",
	"KL":  "KLSE",
	"PR":  "PR",
	"BD":  "BUD",
	"AT":  "AT",
}

// Ticker converts a symbol like "AIR.PA" into the EODHD ticker "AIR.PA",
// "SAP.DE" into "SAP.XETRA" and "AAPL" into "AAPL.US".
func Ticker(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	base, suffix := symbol, ""
	if i := strings.LastIndex(symbol, "."); i > 0 {
		base, suffix = symbol[:i], symbol[i+1:]
	}
	if code, ok := exchanges[suffix]; ok {
		return base + "." + code
	}
	// class shares like BRK.B are US tickers
	return strings.ReplaceAll(symbol, ".", "-") + ".US"
}

// number reads a JSON number that EODHD may send as a string.
func number(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func (c *Client) url(path string, query string) string {
	addr := fmt.Sprintf("%s%s?fmt=json&api_token=%s", c.BaseURL, path, url.QueryEscape(c.APIKey))
	if query != "" {
		addr += "&" + query
	}
	return addr
}
