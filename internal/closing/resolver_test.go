package closing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fondolibro/fondolibro/internal/ledger"
	"github.com/fondolibro/fondolibro/internal/shared"
)

var testEpoch = shared.Period{Year: 2024, Month: time.January}

func tx(id, kind, amount, category, date string) ledger.Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return ledger.Transaction{
		ID:          id,
		Kind:        ledger.Kind(kind),
		Amount:      decimal.RequireFromString(amount),
		Category:    category,
		Description: "test movement",
		Date:        d,
	}
}

func period(year int, month time.Month) shared.Period {
	return shared.Period{Year: year, Month: month}
}

func TestInitialBalanceAtEpochIsZero(t *testing.T) {
	snap := NewSnapshot(nil, nil)
	r := NewResolver(snap, testEpoch)

	got, err := r.InitialBalance(testEpoch)
	if err != nil {
		t.Fatalf("InitialBalance: %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("initial balance at epoch = %s, want 0", got)
	}
}

func TestInitialBalanceBeforeEpochIsZero(t *testing.T) {
	snap := NewSnapshot(nil, nil)
	r := NewResolver(snap, testEpoch)

	got, err := r.InitialBalance(period(2023, time.June))
	if err != nil {
		t.Fatalf("InitialBalance: %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("initial balance before epoch = %s, want 0", got)
	}
}

func TestInitialBalanceFoldsOpenMonths(t *testing.T) {
	// January: +1500 income, -500 expense. February opens with 1000.
	snap := NewSnapshot([]ledger.Transaction{
		tx("a", "income", "1500.00", "Capital Inicial", "2024-01-05"),
		tx("b", "expense", "500.00", "Préstamos Socios", "2024-01-20"),
	}, nil)
	r := NewResolver(snap, testEpoch)

	got, err := r.InitialBalance(period(2024, time.February))
	if err != nil {
		t.Fatalf("InitialBalance: %v", err)
	}
	want := decimal.RequireFromString("1000.00")
	if !got.Equal(want) {
		t.Fatalf("initial balance = %s, want %s", got, want)
	}
}

func TestInitialBalanceUsesClosedClosureAsTerminal(t *testing.T) {
	// January live transactions say 1000, but a closed closure freezes
	// the month at 1300. The closure wins.
	snap := NewSnapshot([]ledger.Transaction{
		tx("a", "income", "1500.00", "Capital Inicial", "2024-01-05"),
		tx("b", "expense", "500.00", "Préstamos Socios", "2024-01-20"),
	}, []MonthlyClosure{{
		ID:           "2024-01",
		Year:         2024,
		Month:        time.January,
		Status:       StatusClosed,
		FinalBalance: decimal.RequireFromString("1300.00"),
	}})
	r := NewResolver(snap, testEpoch)

	got, err := r.InitialBalance(period(2024, time.February))
	if err != nil {
		t.Fatalf("InitialBalance: %v", err)
	}
	want := decimal.RequireFromString("1300.00")
	if !got.Equal(want) {
		t.Fatalf("initial balance = %s, want %s", got, want)
	}
}

func TestInitialBalanceIgnoresReopenedClosure(t *testing.T) {
	// A reopened record occupies the key but must not terminate the walk.
	snap := NewSnapshot([]ledger.Transaction{
		tx("a", "income", "1500.00", "Capital Inicial", "2024-01-05"),
	}, []MonthlyClosure{{
		ID:           "2024-01",
		Year:         2024,
		Month:        time.January,
		Status:       StatusOpen,
		FinalBalance: decimal.RequireFromString("9999.00"),
	}})
	r := NewResolver(snap, testEpoch)

	got, err := r.InitialBalance(period(2024, time.February))
	if err != nil {
		t.Fatalf("InitialBalance: %v", err)
	}
	want := decimal.RequireFromString("1500.00")
	if !got.Equal(want) {
		t.Fatalf("initial balance = %s, want %s", got, want)
	}
}

func TestInitialBalanceCrossesYearBoundary(t *testing.T) {
	snap := NewSnapshot([]ledger.Transaction{
		tx("a", "income", "200.00", "Intereses Ganados", "2024-12-10"),
	}, nil)
	r := NewResolver(snap, testEpoch)

	got, err := r.InitialBalance(period(2025, time.January))
	if err != nil {
		t.Fatalf("InitialBalance: %v", err)
	}
	want := decimal.RequireFromString("200.00")
	if !got.Equal(want) {
		t.Fatalf("initial balance = %s, want %s", got, want)
	}
}

func TestInitialBalanceMemoizesAcrossMonths(t *testing.T) {
	snap := NewSnapshot([]ledger.Transaction{
		tx("a", "income", "100.00", "Divisas", "2024-01-15"),
	}, nil)
	r := NewResolver(snap, testEpoch)

	if _, err := r.InitialBalance(period(2024, time.June)); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	// All intermediate months must now be memoized.
	for m := time.February; m <= time.June; m++ {
		if _, ok := r.memo[period(2024, m)]; !ok {
			t.Fatalf("month %s not memoized", m)
		}
	}
}

func TestInitialBalanceDepthBound(t *testing.T) {
	// An epoch thousands of years back forces a walk past the sanity
	// bound before any terminal case can hold.
	snap := NewSnapshot(nil, nil)
	r := NewResolver(snap, shared.Period{Year: -10000, Month: time.January})

	_, err := r.InitialBalance(period(2024, time.June))
	if err == nil {
		t.Fatal("expected depth bound error, got nil")
	}
}
