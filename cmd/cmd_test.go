package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/params"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func TestImportStatements(t *testing.T) {
	dir := t.TempDir()
	french := filepath.Join(dir, "fr.csv")
	english := filepath.Join(dir, "en.csv")
	if err := os.WriteFile(french, []byte("Date;Type d'opération;Libellé;Montant;Devise;Taux de change;Symbole\n"+
		"15/03/2024;Transfert d'espèces;Dépôt;1 000,50;EUR;;\n"+
		"18/03/2024;Opération;Achat 10 AIR @ 120,50;-1205,00;EUR;1;AIR_REGD:SBF\n"+
		"19/03/2024;Frais;Frais de tenue de compte;-2,00;EUR;;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(english, []byte("Date,Type,Description,Amount,Currency,Symbol\n"+
		"2024-03-01,Cash Transfer,Deposit,500,EUR,\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	txs, stats, err := importStatements([]string{french, english}, folio.NewSymbolTable(nil))
	if err != nil {
		t.Fatalf("importStatements() error = %v", err)
	}
	if stats.Rows != 4 || stats.Kept != 3 || stats.Skipped != 1 {
		t.Errorf("importStatements() stats = %+v, want 4 rows, 3 kept", stats)
	}
	var kinds []folio.Kind
	for _, tx := range txs {
		kinds = append(kinds, tx.Kind)
	}
	if diff := cmp.Diff([]folio.Kind{folio.Deposit, folio.Deposit, folio.Buy}, kinds); diff != "" {
		t.Errorf("importStatements() kinds mismatch (-want +got):\n%s", diff)
	}
	if got := txs[2].Symbol; got != "AIR.PA" {
		t.Errorf("Buy symbol = %q, want AIR.PA", got)
	}

	if _, _, err := importStatements([]string{filepath.Join(dir, "none.csv")}, nil); err == nil {
		t.Error("importStatements() with a missing file: error = nil")
	}
}

func TestSecurities(t *testing.T) {
	on := date.New(2024, 1, 1)
	txs := []folio.Transaction{
		{Date: on, Kind: folio.Deposit, Amount: decimal.NewFromInt(100)},
		{Date: on, Kind: folio.Buy, Symbol: "MSFT"},
		{Date: on, Kind: folio.Dividend, Symbol: "KO"},
		{Date: on, Kind: folio.TransferIn, Symbol: "AAPL"},
		{Date: on, Kind: folio.Sell, Symbol: "MSFT"},
	}
	if diff := cmp.Diff([]string{"AAPL", "MSFT"}, securities(txs)); diff != "" {
		t.Errorf("securities() mismatch (-want +got):\n%s", diff)
	}
}

func TestRunParams(t *testing.T) {
	ctx := context.Background()
	store, err := params.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	*Raw = true

	if err := runParams(ctx, store, []string{"set", "AAPL", "growth=0.12", "model=ps"}); err != nil {
		t.Fatalf("params set error = %v", err)
	}
	p, err := store.Get(ctx, "AAPL")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if p.Growth != 0.12 || p.Model != folio.ModelPS {
		t.Errorf("stored params = %+v, want growth 0.12 and P/S", p)
	}

	if err := runParams(ctx, store, []string{"set", "AAPL", "growth"}); !errors.Is(err, errUsage) {
		t.Errorf("params set without value error = %v, want errUsage", err)
	}
	if err := runParams(ctx, store, []string{"set", "AAPL", "color=red"}); err == nil {
		t.Error("params set with unknown key: error = nil")
	}
	if err := runParams(ctx, store, []string{"frobnicate"}); !errors.Is(err, errUsage) {
		t.Errorf("params frobnicate error = %v, want errUsage", err)
	}
	if err := runParams(ctx, store, []string{"delete", "AAPL"}); err != nil {
		t.Errorf("params delete error = %v", err)
	}
	if err := runParams(ctx, store, []string{"delete", "AAPL"}); !errors.Is(err, params.ErrNotFound) {
		t.Errorf("params delete twice error = %v, want ErrNotFound", err)
	}
}

func TestParamsTable(t *testing.T) {
	p := params.Default("AIR.PA")
	p.Override = ptr(4.5)
	got := paramsTable([]params.Params{p})
	want := "| AIR.PA | pe | 8.00% | 5 | 15 | 10.00% | 4.50 |"
	if !strings.Contains(got, want) {
		t.Errorf("paramsTable() = %q, want a line %q", got, want)
	}
	if got := paramsTable(nil); got != "No parameters stored.\n" {
		t.Errorf("paramsTable(nil) = %q", got)
	}
}

func ptr(v float64) *float64 { return &v }
