package ledger

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fondolibro/fondolibro/internal/shared"
)

type fakeStore struct {
	txs       map[string]Transaction
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{txs: make(map[string]Transaction)}
}

func (f *fakeStore) ListAll(ctx context.Context) ([]Transaction, error) {
	out := make([]Transaction, 0, len(f.txs))
	for _, t := range f.txs {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeStore) Get(ctx context.Context, id string) (Transaction, error) {
	t, ok := f.txs[id]
	if !ok {
		return Transaction{}, shared.ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) Create(ctx context.Context, t Transaction) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.txs[t.ID] = t
	return nil
}

func (f *fakeStore) Update(ctx context.Context, t Transaction) error {
	if _, ok := f.txs[t.ID]; !ok {
		return shared.ErrNotFound
	}
	f.txs[t.ID] = t
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	if _, ok := f.txs[id]; !ok {
		return shared.ErrNotFound
	}
	delete(f.txs, id)
	return nil
}

type fakeGuard struct {
	closed map[string]bool
}

func (f *fakeGuard) IsClosed(ctx context.Context, p shared.Period) (bool, error) {
	return f.closed[p.Key()], nil
}

func validCreate(date string) CreateInput {
	return CreateInput{
		Kind:        KindIncome,
		Amount:      "100.00",
		Category:    "Divisas",
		Description: "movimiento de prueba",
		Date:        date,
	}
}

func TestServiceCreateAssignsID(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeGuard{closed: map[string]bool{}}, nil, slog.Default())

	tx, err := svc.Create(context.Background(), validCreate("2024-03-05"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tx.ID == "" {
		t.Fatal("no id assigned")
	}
	if _, ok := store.txs[tx.ID]; !ok {
		t.Fatal("not persisted")
	}
}

func TestServiceCreateRejectsClosedMonth(t *testing.T) {
	store := newFakeStore()
	guard := &fakeGuard{closed: map[string]bool{"2024-01": true}}
	svc := NewService(store, guard, nil, slog.Default())

	_, err := svc.Create(context.Background(), validCreate("2024-01-15"))
	if !errors.Is(err, ErrMonthClosed) {
		t.Fatalf("err = %v, want ErrMonthClosed", err)
	}
	if len(store.txs) != 0 {
		t.Fatal("transaction persisted despite closed month")
	}
}

func TestServiceUpdateGuardsBothMonths(t *testing.T) {
	store := newFakeStore()
	guard := &fakeGuard{closed: map[string]bool{"2024-02": true}}
	svc := NewService(store, guard, nil, slog.Default())

	// Seed a transaction in open January.
	seeded := Transaction{
		ID:          "t1",
		Kind:        KindIncome,
		Amount:      decimal.RequireFromString("50.00"),
		Category:    "Divisas",
		Description: "enero abierto",
		Date:        time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	}
	store.txs[seeded.ID] = seeded

	// Moving it into closed February must fail.
	_, err := svc.Update(context.Background(), "t1", UpdateInput{Date: "2024-02-10"})
	if !errors.Is(err, ErrMonthClosed) {
		t.Fatalf("err = %v, want ErrMonthClosed", err)
	}

	// Editing in place stays allowed.
	out, err := svc.Update(context.Background(), "t1", UpdateInput{Amount: "75.00"})
	if err != nil {
		t.Fatalf("in-place update: %v", err)
	}
	if !out.Amount.Equal(decimal.RequireFromString("75.00")) {
		t.Errorf("amount = %s", out.Amount)
	}
}

func TestServiceDeleteRejectsClosedMonth(t *testing.T) {
	store := newFakeStore()
	guard := &fakeGuard{closed: map[string]bool{"2024-01": true}}
	svc := NewService(store, guard, nil, slog.Default())

	store.txs["t1"] = Transaction{
		ID:   "t1",
		Kind: KindExpense,
		Date: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
	}
	if err := svc.Delete(context.Background(), "t1"); !errors.Is(err, ErrMonthClosed) {
		t.Fatalf("err = %v, want ErrMonthClosed", err)
	}
}

func TestServiceListSortsMostRecentFirst(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeGuard{closed: map[string]bool{}}, nil, slog.Default())

	store.txs["a"] = Transaction{ID: "a", Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)}
	store.txs["b"] = Transaction{ID: "b", Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)}
	store.txs["c"] = Transaction{ID: "c", Date: time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)}

	txs, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	got := []string{txs[0].ID, txs[1].ID, txs[2].ID}
	want := []string{"b", "c", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestServiceTotals(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeGuard{closed: map[string]bool{}}, nil, slog.Default())

	store.txs["a"] = Transaction{ID: "a", Kind: KindIncome, Amount: decimal.RequireFromString("300.00")}
	store.txs["b"] = Transaction{ID: "b", Kind: KindExpense, Amount: decimal.RequireFromString("120.00")}

	totals, err := svc.Totals(context.Background())
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}
	if want := decimal.RequireFromString("180.00"); !totals.Capital.Equal(want) {
		t.Errorf("capital = %s, want %s", totals.Capital, want)
	}
	if totals.IncomeCount != 1 || totals.ExpenseCount != 1 {
		t.Errorf("counts = %d/%d", totals.IncomeCount, totals.ExpenseCount)
	}
}

func TestServicePublishesWriteFailures(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("disk full")
	events := NewEvents()
	svc := NewService(store, &fakeGuard{closed: map[string]bool{}}, events, slog.Default())

	ch, cancel := events.Subscribe()
	defer cancel()

	if _, err := svc.Create(context.Background(), validCreate("2024-03-05")); err == nil {
		t.Fatal("expected create error")
	}

	select {
	case ev := <-ch:
		if ev.Op != "create" {
			t.Errorf("op = %q, want create", ev.Op)
		}
		if ev.Error == "" {
			t.Error("event carries no error text")
		}
	case <-time.After(time.Second):
		t.Fatal("no failure event published")
	}
}

type recordingInvalidator struct{ calls int }

func (r *recordingInvalidator) Invalidate(ctx context.Context) error {
	r.calls++
	return nil
}

type recordingWarmup struct{ years []int }

func (r *recordingWarmup) EnqueueReportWarmup(ctx context.Context, year int) error {
	r.years = append(r.years, year)
	return nil
}

func TestServiceWritesNotifyCacheAndWarmup(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeGuard{closed: map[string]bool{}}, nil, slog.Default())
	inv := &recordingInvalidator{}
	warm := &recordingWarmup{}
	svc.WithReportInvalidator(inv)
	svc.WithWarmupEnqueuer(warm)

	tx, err := svc.Create(context.Background(), validCreate("2024-03-05"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if inv.calls != 1 {
		t.Errorf("invalidator calls after create = %d, want 1", inv.calls)
	}
	if len(warm.years) != 1 || warm.years[0] != 2024 {
		t.Errorf("warmup years after create = %v, want [2024]", warm.years)
	}

	// Moving the transaction into another year warms both years once each.
	if _, err := svc.Update(context.Background(), tx.ID, UpdateInput{Date: "2025-01-10"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if inv.calls != 2 {
		t.Errorf("invalidator calls after update = %d, want 2", inv.calls)
	}
	if len(warm.years) != 3 || warm.years[1] != 2024 || warm.years[2] != 2025 {
		t.Errorf("warmup years after update = %v, want [2024 2024 2025]", warm.years)
	}

	if err := svc.Delete(context.Background(), tx.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if inv.calls != 3 {
		t.Errorf("invalidator calls after delete = %d, want 3", inv.calls)
	}
	if len(warm.years) != 4 || warm.years[3] != 2025 {
		t.Errorf("warmup years after delete = %v", warm.years)
	}
}

func TestServiceFailedWriteSkipsCacheHooks(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("permission denied")
	svc := NewService(store, &fakeGuard{closed: map[string]bool{}}, nil, slog.Default())
	inv := &recordingInvalidator{}
	warm := &recordingWarmup{}
	svc.WithReportInvalidator(inv)
	svc.WithWarmupEnqueuer(warm)

	if _, err := svc.Create(context.Background(), validCreate("2024-03-05")); err == nil {
		t.Fatal("expected create to fail")
	}
	if inv.calls != 0 || len(warm.years) != 0 {
		t.Errorf("hooks fired on failed write: inv=%d warm=%v", inv.calls, warm.years)
	}
}
