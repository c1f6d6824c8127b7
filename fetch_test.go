package folio

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etnz/folio/date"
)

type fakeProvider struct {
	calls atomic.Int32
}

func (p *fakeProvider) Prices(ctx context.Context, symbol string, from, to date.Date) ([]Quote, error) {
	p.calls.Add(1)
	switch symbol {
	case "FAIL":
		return nil, errors.New("boom")
	case "SLOW":
		<-ctx.Done()
		return nil, ctx.Err()
	case "EMPTY":
		return nil, nil
	}
	return []Quote{{Time: from.Time(), Close: 10}, {Time: to.Time(), Close: 12}}, nil
}

func (p *fakeProvider) Fundamentals(ctx context.Context, symbol string, years int) ([]FundamentalsSnapshot, error) {
	p.calls.Add(1)
	if symbol == "FAIL" {
		return nil, errors.New("boom")
	}
	return []FundamentalsSnapshot{{AsOf: date.New(2024, 3, 31), TrailingEPS: ptr(2)}}, nil
}

func TestFetcher_FetchPrices(t *testing.T) {
	p := new(fakeProvider)
	f := NewFetcher(p, p, time.Minute)
	f.Timeout = 50 * time.Millisecond

	from, to := day("2024-01-01"), day("2024-01-10")
	m := f.FetchPrices(context.Background(), []string{"A", "FAIL", "SLOW", "B", "EMPTY"}, from, to)

	for _, s := range []string{"A", "B", "EMPTY"} {
		if err := m.Unavailable[s]; err != nil {
			t.Errorf("Unavailable[%s] = %v, want nil", s, err)
		}
		if _, ok := m.Prices[s]; !ok {
			t.Errorf("Prices[%s] missing", s)
		}
	}
	if _, ok := m.Unavailable["FAIL"]; !ok {
		t.Error("FAIL is not unavailable")
	}
	if err := m.Unavailable["SLOW"]; !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Unavailable[SLOW] = %v, want deadline exceeded", err)
	}
	if v, ok := m.Prices["A"].ValueAsOf(to); !ok || v != 12 {
		t.Errorf("Prices[A].ValueAsOf(%v) = %v, %v, want 12", to, v, ok)
	}
	if m.Err() == nil {
		t.Error("Err() = nil, want an error")
	}

	// second fetch is served from memory for the symbols that succeeded
	before := p.calls.Load()
	f.FetchPrices(context.Background(), []string{"A", "B"}, from, to)
	if after := p.calls.Load(); after != before {
		t.Errorf("provider calls = %d, want %d", after, before)
	}
}

func TestFetcher_FetchFundamentals(t *testing.T) {
	p := new(fakeProvider)
	f := NewFetcher(p, p, time.Minute)
	m := f.FetchFundamentals(context.Background(), []string{"A", "FAIL"}, 5)

	if len(m.Fundamentals["A"]) != 1 {
		t.Errorf("Fundamentals[A] = %v, want one snapshot", m.Fundamentals["A"])
	}
	if _, ok := m.Unavailable["FAIL"]; !ok {
		t.Error("FAIL is not unavailable")
	}
	if _, ok := m.Fundamentals["FAIL"]; ok {
		t.Error("Fundamentals[FAIL] is set")
	}
}

func TestMarketData_ErrNone(t *testing.T) {
	if err := newMarketData().Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
}
