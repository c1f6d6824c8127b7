package params

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
)

func open(t *testing.T) *Store {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s := open(t)

	if _, err := s.Get(ctx, "AIR.PA"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}

	p := Default("air.pa")
	p.Growth = 0.12
	p.Model = folio.ModelPFCF
	override := 4.5
	p.Override = &override
	if err := s.Put(ctx, p); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := s.Get(ctx, "AIR.PA")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Ticker != "AIR.PA" || got.Growth != 0.12 || got.Model != folio.ModelPFCF || got.Override == nil || *got.Override != 4.5 {
		t.Errorf("Get() = %+v, want the saved parameters", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("Get().UpdatedAt is zero")
	}

	// replace and clear the override
	got.Override = nil
	got.Years = 10
	if err := s.Put(ctx, got); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, _ = s.Get(ctx, "AIR.PA")
	if got.Override != nil || got.Years != 10 {
		t.Errorf("Get() after update = %+v, want no override and 10 years", got)
	}
}

func TestStore_ListDelete(t *testing.T) {
	ctx := context.Background()
	s := open(t)
	for _, ticker := range []string{"MC.PA", "AAPL", "SAP.DE"} {
		if err := s.Put(ctx, Default(ticker)); err != nil {
			t.Fatalf("Put(%s) error = %v", ticker, err)
		}
	}
	if err := s.Delete(ctx, "aapl"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, "AAPL"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrNotFound", err)
	}
	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].Ticker != "MC.PA" || list[1].Ticker != "SAP.DE" {
		t.Errorf("List() = %+v, want MC.PA, SAP.DE", list)
	}
}

func TestStore_Persistent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "params.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.Put(ctx, Default("KO")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()
	if _, err := s.Get(ctx, "KO"); err != nil {
		t.Errorf("Get() after reopen error = %v", err)
	}
	p, err := s.GetOrDefault(ctx, "PEP")
	if err != nil || p.Ticker != "PEP" || p.Years != 5 {
		t.Errorf("GetOrDefault() = %+v, %v, want defaults", p, err)
	}
}

func TestParams_Set(t *testing.T) {
	p := Default("X")
	for _, kv := range [][2]string{{"model", "ps"}, {"growth", "0.2"}, {"years", "7"}, {"multiple", "20"}, {"target", "0.15"}, {"override", "3"}} {
		if err := p.Set(kv[0], kv[1]); err != nil {
			t.Fatalf("Set(%s, %s) error = %v", kv[0], kv[1], err)
		}
	}
	if p.Model != folio.ModelPS || p.Growth != 0.2 || p.Years != 7 || p.TerminalMultiple != 20 || p.TargetReturn != 0.15 || *p.Override != 3 {
		t.Errorf("Set() = %+v", p)
	}
	if err := p.Set("override", ""); err != nil || p.Override != nil {
		t.Errorf("Set(override, \"\") = %v, override %v, want cleared", err, p.Override)
	}
	if err := p.Set("colour", "1"); err == nil {
		t.Error("Set(colour) error = nil, want error")
	}
	if err := p.Set("growth", "fast"); err == nil {
		t.Error("Set(growth, fast) error = nil, want error")
	}
}

func TestParams_Input(t *testing.T) {
	p := Default("X")
	in := p.Input(folio.TrailingMetric(folio.ModelPE, folio.FundamentalsSnapshot{TrailingEPS: ptr(2)}), 30)
	fv := folio.ComputeFairValue(in)
	if fv.Price == nil || fv.ImpliedReturn == nil {
		t.Fatalf("ComputeFairValue() = %+v, want a fair value", fv)
	}
}

func ptr(v float64) *float64 { return &v }

func TestParams_Evaluate(t *testing.T) {
	eps := 5.0
	shares := 10.0
	fcf := 80.0
	snaps := []folio.FundamentalsSnapshot{
		{AsOf: date.New(2023, 12, 31), TrailingEPS: &eps, TrailingFCF: &fcf, TrailingShares: &shares},
		{AsOf: date.New(2023, 9, 30), TrailingEPS: nil},
	}
	quotes := []folio.Quote{{Close: 60}, {Close: 70}}

	p := Default("X")
	in, fv := p.Evaluate(snaps, quotes)
	if in.Auto == nil || *in.Auto != 5 || in.CurrentPrice != 70 {
		t.Fatalf("Evaluate() input = %+v, want auto 5 and price 70", in)
	}
	if fv.Price == nil || fv.ImpliedReturn == nil {
		t.Fatalf("Evaluate() = %+v, want a price and an implied return", fv)
	}

	p.Model = folio.ModelPFCF
	in, _ = p.Evaluate(snaps, nil)
	if in.Auto == nil || *in.Auto != 8 {
		t.Errorf("Evaluate() P/FCF auto = %v, want 8", in.Auto)
	}

	_, fv = p.Evaluate(nil, quotes)
	if fv.Price != nil {
		t.Errorf("Evaluate() without fundamentals = %v, want no price", *fv.Price)
	}
}
