package date

import (
	"testing"
	"time"
)

func TestPeriodRange(t *testing.T) {
	wed := New(2025, time.September, 10)
	tests := []struct {
		period Period
		want   Range
	}{
		{Daily, Range{wed, wed}},
		{Weekly, Range{New(2025, 9, 8), New(2025, 9, 14)}},
		{Monthly, Range{New(2025, 9, 1), New(2025, 9, 30)}},
		{Quarterly, Range{New(2025, 7, 1), New(2025, 9, 30)}},
		{Yearly, Range{New(2025, 1, 1), New(2025, 12, 31)}},
	}
	for _, tt := range tests {
		t.Run(tt.period.String(), func(t *testing.T) {
			if got := tt.period.Range(wed); got != tt.want {
				t.Errorf("Range() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStartOfWeek_Sunday(t *testing.T) {
	sun := New(2025, 9, 14)
	if got, want := sun.StartOf(Weekly), New(2025, 9, 8); got != want {
		t.Errorf("StartOf(Weekly) = %v, want %v", got, want)
	}
}

func TestRange_Identifier(t *testing.T) {
	d := New(2025, 2, 11)
	tests := []struct {
		r    Range
		want string
	}{
		{Daily.Range(d), "2025-02-11"},
		{Monthly.Range(d), "2025-02"},
		{Quarterly.Range(d), "2025-Q1"},
		{Yearly.Range(d), "2025"},
		{Range{New(2025, 2, 1), New(2025, 2, 11)}, "2025-02-01_2025-02-11"},
	}
	for _, tt := range tests {
		if got := tt.r.Identifier(); got != tt.want {
			t.Errorf("%v.Identifier() = %q, want %q", tt.r, got, tt.want)
		}
	}
}

func TestParsePeriod(t *testing.T) {
	if p, err := ParsePeriod("Month"); err != nil || p != Monthly {
		t.Errorf("ParsePeriod(Month) = %v, %v", p, err)
	}
	if _, err := ParsePeriod("fortnight"); err == nil {
		t.Error("ParsePeriod(fortnight) expected error")
	}
}
