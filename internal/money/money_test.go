package money

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAddIsExact(t *testing.T) {
	dime := decimal.RequireFromString("0.10")
	sum := Add(Add(dime, dime), dime)
	if !sum.Equal(decimal.RequireFromString("0.30")) {
		t.Fatalf("expected exactly 0.30, got %s", sum)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "abc", "1.2.3", "NaN"} {
		if _, err := Parse(in); err == nil {
			t.Fatalf("Parse(%q) expected error", in)
		}
	}
	d, err := Parse("1500.25")
	if err != nil {
		t.Fatalf("Parse(1500.25) error = %v", err)
	}
	if !d.Equal(decimal.RequireFromString("1500.25")) {
		t.Fatalf("unexpected value %s", d)
	}
}

func TestParsePositive(t *testing.T) {
	if _, err := ParsePositive("0"); err == nil {
		t.Fatal("expected zero to be rejected")
	}
	if _, err := ParsePositive("-5"); err == nil {
		t.Fatal("expected negative to be rejected")
	}
	if _, err := ParsePositive("0.01"); err != nil {
		t.Fatalf("expected 0.01 accepted, got %v", err)
	}
}

func TestFromFloatRejectsNonFinite(t *testing.T) {
	if _, err := FromFloat(math.NaN()); err == nil {
		t.Fatal("expected NaN rejected")
	}
	if _, err := FromFloat(math.Inf(1)); err == nil {
		t.Fatal("expected +Inf rejected")
	}
	d, err := FromFloat(12.5)
	if err != nil {
		t.Fatalf("FromFloat(12.5) error = %v", err)
	}
	if !d.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("unexpected value %s", d)
	}
}

func TestAddSubExactness(t *testing.T) {
	tenth := decimal.RequireFromString("0.10")
	sum := Add(Add(tenth, tenth), tenth)
	if !sum.Equal(decimal.RequireFromString("0.30")) {
		t.Fatalf("0.10*3 = %s, want 0.30", sum)
	}
	a := decimal.RequireFromString("10")
	b := decimal.RequireFromString("10.00")
	if !Sub(a, b).Equal(Zero) {
		t.Fatal("difference of equal amounts should be zero")
	}
}

func TestDisplayFallsBackToUSD(t *testing.T) {
	out := Display(decimal.RequireFromString("1234.5"), "not-a-code")
	if out == "" {
		t.Fatal("expected non-empty display string")
	}
}
