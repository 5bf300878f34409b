package finance

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"   ", 0},
		{"abc", 0},
		{"250000", 250000},
		{"250 000", 250000},
		{"1 250 000 €", 1250000},
		{"250.000", 250000},
		{"1.250.000", 1250000},
		{"250.000,50", 250000.50},
		{"250,000.50", 250000.50},
		{"8,5 %", 8.5},
		{"8.5%", 8.5},
		{"-1 200,75", -1200.75},
		{"1,250,000", 1250000},
		{"0,5", 0.5},
		{"12 mois", 12},
	}
	for _, c := range cases {
		if got := ParseAmount(c.in); got != c.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestBudgetForm_ParseNeverFails(t *testing.T) {
	f := BudgetForm{
		PurchasePrice: "200 000 €",
		NotaryFeePct:  "8",
		WorksBudget:   "n/a",
		MiscFees:      "",
		UseFlatTax:    true,
	}
	in := f.Parse()
	if in.PurchasePrice != 200000 || in.NotaryFeePct != 8 {
		t.Fatalf("parsed = %+v", in)
	}
	// malformed and empty inputs degrade to zero, never error
	if in.WorksBudget != 0 || in.MiscFees != 0 {
		t.Fatalf("malformed inputs must resolve to 0, got %+v", in)
	}
	if !in.UseFlatTax {
		t.Fatal("flag must carry through")
	}
}
