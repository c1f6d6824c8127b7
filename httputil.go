package folio

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"time"

	"github.com/etnz/folio/date"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// contains http utils to deal with remote services

// ClientOptions configures the HTTP client used by market data providers.
type ClientOptions struct {
	Name string // used to name the circuit breaker
	// RequestsPerSecond limits outbound requests, 0 means unlimited.
	RequestsPerSecond float64
	// CacheDir is where responses are cached for the day, "" disables the cache.
	CacheDir string
}

// NewHTTPClient returns a client that caches successful responses on disk
// for the day, then rate limits, and stops calling a failing host for a
// while.
func NewHTTPClient(opts ClientOptions) *http.Client {
	var rt http.RoundTripper = &breakerTransport{
		base: http.DefaultTransport,
		cb:   newBreaker(opts.Name),
	}
	if opts.RequestsPerSecond > 0 {
		burst := max(1, int(opts.RequestsPerSecond))
		rt = &limitedTransport{base: rt, limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)}
	}
	if opts.CacheDir != "" {
		rt = &diskCache{base: rt, dir: opts.CacheDir}
	}
	return &http.Client{Transport: rt}
}

// diskCache implements a simple disk cache for HTTP responses
type diskCache struct {
	base http.RoundTripper
	dir  string
}

func (c *diskCache) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	// the key changes every day, so that the cache expires daily.
	key := fmt.Sprintf("%s %s %s", date.Today().String(), req.Method, req.URL.String())
	key = fmt.Sprintf("folio-%x", sha1.Sum([]byte(key)))

	if cached, err := c.get(key, req); err == nil {
		return cached, nil
	}

	resp, err = c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("method", req.Method).Str("host", req.URL.Host).Str("path", req.URL.Path).Str("status", resp.Status).Msg("http")
	if resp.StatusCode >= 300 {
		return resp, nil
	}

	if err := c.put(key, resp); err != nil {
		log.Warn().Err(err).Msg("cache write ignored")
	}
	return resp, nil
}

// get retrieves a cached response from disk
func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

// put stores a response to disk cache
func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, key), content, 0o644)
}

// limitedTransport waits for the limiter before each request.
type limitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}

// StatusError is returned for non 2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string { return fmt.Sprintf("cannot http GET %s: %s", e.URL, e.Status) }

func newBreaker(name string) *gobreaker.CircuitBreaker {
	st := gobreaker.Settings{Name: name}
	st.Interval = 60 * time.Second
	st.Timeout = 30 * time.Second
	st.ReadyToTrip = func(counts gobreaker.Counts) bool { return counts.ConsecutiveFailures >= 5 }
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
	}
	return gobreaker.NewCircuitBreaker(st)
}

// breakerTransport counts transport failures and server errors. Client
// errors (unknown symbol...) do not trip the breaker.
type breakerTransport struct {
	base http.RoundTripper
	cb   *gobreaker.CircuitBreaker
}

func (t *breakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var served *http.Response
	_, err := t.cb.Execute(func() (interface{}, error) {
		resp, err := t.base.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		served = resp
		if resp.StatusCode >= 500 {
			return nil, &StatusError{URL: req.URL.Redacted(), StatusCode: resp.StatusCode, Status: resp.Status}
		}
		return nil, nil
	})
	if served != nil {
		return served, nil
	}
	return nil, err
}

// GetJSON performs an HTTP GET request and unmarshals the JSON response
// into data.
func GetJSON(ctx context.Context, client *http.Client, addr string, data any) error {
	body, err := Get(ctx, client, addr)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, data)
}

// Get performs an HTTP GET request and returns the body of a 2xx response.
func Get(ctx context.Context, client *http.Client, addr string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: req.URL.Host + req.URL.Path, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return io.ReadAll(resp.Body)
}
