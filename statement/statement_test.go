package statement

import (
	"errors"
	"strings"
	"testing"

	"github.com/etnz/folio"
	"github.com/google/go-cmp/cmp"
)

func TestRead(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want []folio.Row
	}{
		{
			name: "french semicolon",
			csv: "\xef\xbb\xbfDate;Type d'opération;Libellé;Montant;Devise;Taux de change;Symbole\n" +
				"15/03/2024;Transfert d'espèces;Dépôt;1 000,50;EUR;;\n" +
				";;;;;;\n" +
				"18/03/2024;Opération;Achat 10 AIR @ 120,50;-1205,00;EUR;1;AIR_REGD:SBF\n",
			want: []folio.Row{
				{Date: "15/03/2024", Type: "Transfert d'espèces", Description: "Dépôt", Amount: "1 000,50", Currency: "EUR"},
				{Date: "18/03/2024", Type: "Opération", Description: "Achat 10 AIR @ 120,50", Amount: "-1205,00", Currency: "EUR", ExchangeRate: "1", Symbol: "AIR_REGD:SBF"},
			},
		},
		{
			name: "english comma with extra columns",
			csv: "Trade Date,Type,Symbol,Description,Fees,Amount,Currency,FX Rate\n" +
				`2024-05-16,Corporate Action,KO:NYSE,"Cash Dividend USD 0.485, per share",0,"4.85",USD,1.08` + "\n",
			want: []folio.Row{
				{Date: "2024-05-16", Type: "Corporate Action", Symbol: "KO:NYSE", Description: "Cash Dividend USD 0.485, per share", Amount: "4.85", Currency: "USD", ExchangeRate: "1.08"},
			},
		},
		{
			name: "empty",
			csv:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(strings.NewReader(tt.csv))
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Read() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRead_NoHeader(t *testing.T) {
	_, err := Read(strings.NewReader("foo,bar\n1,2\n"))
	if !errors.Is(err, ErrNoHeader) {
		t.Errorf("Read() error = %v, want ErrNoHeader", err)
	}
}

func TestReader_Headers(t *testing.T) {
	r := &Reader{Headers: map[string]Field{"valeur": Amount, "quand": Date}}
	got, err := r.Read(strings.NewReader("quand,valeur\n2024-01-02,12\n"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	want := []folio.Row{{Date: "2024-01-02", Amount: "12"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Read() mismatch (-want +got):\n%s", diff)
	}
}

func TestRead_Normalize(t *testing.T) {
	rows, err := Read(strings.NewReader("Date;Type;Description;Amount;Currency;Symbol\n" +
		"2024-03-18;Opération;Achat 10 AIR @ 120,50;-1205,00;EUR;AIR:SBF\n" +
		"2024-03-15;Virement;;2000;EUR;\n"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	txs, stats := folio.NewNormalizer(nil).Normalize(rows)
	if stats.Kept != 2 {
		t.Fatalf("Normalize() kept %d rows, want 2", stats.Kept)
	}
	if txs[0].Kind != folio.Deposit || txs[1].Kind != folio.Buy || txs[1].Symbol != "AIR.PA" {
		t.Errorf("Normalize() = %v, want deposit then buy AIR.PA", txs)
	}
}
