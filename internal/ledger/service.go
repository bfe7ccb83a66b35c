package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fondolibro/fondolibro/internal/money"
	"github.com/fondolibro/fondolibro/internal/shared"
)

// Store defines the required persistence behaviour for transactions.
type Store interface {
	ListAll(ctx context.Context) ([]Transaction, error)
	Get(ctx context.Context, id string) (Transaction, error)
	Create(ctx context.Context, t Transaction) error
	Update(ctx context.Context, t Transaction) error
	Delete(ctx context.Context, id string) error
}

// ClosureGuard answers whether a month has been closed. Closed months are
// frozen; their transactions cannot be mutated.
type ClosureGuard interface {
	IsClosed(ctx context.Context, p shared.Period) (bool, error)
}

// ReportInvalidator drops cached report payloads after a ledger write.
type ReportInvalidator interface {
	Invalidate(ctx context.Context) error
}

// WarmupEnqueuer schedules background regeneration of the annual report for
// the years a write touched.
type WarmupEnqueuer interface {
	EnqueueReportWarmup(ctx context.Context, year int) error
}

// Totals summarises the whole ledger for the dashboard.
type Totals struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpenses"`
	Capital      decimal.Decimal `json:"capital"`
	IncomeCount  int             `json:"incomeCount"`
	ExpenseCount int             `json:"expenseCount"`
}

// Service orchestrates transaction writes and dashboard reads.
type Service struct {
	store       Store
	guard       ClosureGuard
	events      *Events
	logger      *slog.Logger
	invalidator ReportInvalidator
	warmup      WarmupEnqueuer
	now         func() time.Time
}

// NewService constructs a Service.
func NewService(store Store, guard ClosureGuard, events *Events, logger *slog.Logger) *Service {
	if events == nil {
		events = NewEvents()
	}
	return &Service{
		store:  store,
		guard:  guard,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// Events exposes the write-failure side channel.
func (s *Service) Events() *Events { return s.events }

// WithReportInvalidator wires the report cache.
func (s *Service) WithReportInvalidator(inv ReportInvalidator) { s.invalidator = inv }

// WithWarmupEnqueuer wires the background warmup queue.
func (s *Service) WithWarmupEnqueuer(w WarmupEnqueuer) { s.warmup = w }

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// List returns all transactions, most recent first.
func (s *Service) List(ctx context.Context) ([]Transaction, error) {
	txs, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.After(txs[j].Date)
		}
		return txs[i].ID > txs[j].ID
	})
	return txs, nil
}

// Totals computes the all-time dashboard numbers.
func (s *Service) Totals(ctx context.Context) (Totals, error) {
	txs, err := s.store.ListAll(ctx)
	if err != nil {
		return Totals{}, err
	}
	out := Totals{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
	}
	for _, t := range txs {
		if t.Kind == KindIncome {
			out.TotalIncome = money.Add(out.TotalIncome, t.Amount)
			out.IncomeCount++
		} else {
			out.TotalExpense = money.Add(out.TotalExpense, t.Amount)
			out.ExpenseCount++
		}
	}
	out.Capital = money.Sub(out.TotalIncome, out.TotalExpense)
	return out, nil
}

// Create validates and stores a new transaction.
func (s *Service) Create(ctx context.Context, in CreateInput) (Transaction, error) {
	t, err := in.Parse()
	if err != nil {
		return Transaction{}, err
	}
	if err := s.ensureOpen(ctx, t.Date); err != nil {
		return Transaction{}, err
	}
	t.ID = uuid.NewString()
	if err := s.store.Create(ctx, t); err != nil {
		s.reportFailure("create", t.ID, err)
		return Transaction{}, err
	}
	s.afterWrite(ctx, t.Date)
	return t, nil
}

// Update edits any field of an existing transaction except its id.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Transaction, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return Transaction{}, err
	}
	updated, err := in.Apply(existing)
	if err != nil {
		return Transaction{}, err
	}
	// Both the month it leaves and the month it enters must be open.
	if err := s.ensureOpen(ctx, existing.Date); err != nil {
		return Transaction{}, err
	}
	if !shared.PeriodOf(updated.Date).Contains(existing.Date) {
		if err := s.ensureOpen(ctx, updated.Date); err != nil {
			return Transaction{}, err
		}
	}
	if err := s.store.Update(ctx, updated); err != nil {
		s.reportFailure("update", id, err)
		return Transaction{}, err
	}
	s.afterWrite(ctx, existing.Date, updated.Date)
	return updated, nil
}

// Delete removes a transaction if its month is still open.
func (s *Service) Delete(ctx context.Context, id string) error {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ensureOpen(ctx, existing.Date); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		s.reportFailure("delete", id, err)
		return err
	}
	s.afterWrite(ctx, existing.Date)
	return nil
}

// afterWrite invalidates cached reports and schedules regeneration for each
// distinct year the write touched. Balances cascade forward, so the whole
// year is warmed.
func (s *Service) afterWrite(ctx context.Context, dates ...time.Time) {
	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx); err != nil && s.logger != nil {
			s.logger.Warn("report cache invalidation failed", slog.Any("error", err))
		}
	}
	if s.warmup == nil {
		return
	}
	seen := make(map[int]struct{}, len(dates))
	for _, d := range dates {
		year := d.Year()
		if _, ok := seen[year]; ok {
			continue
		}
		seen[year] = struct{}{}
		if err := s.warmup.EnqueueReportWarmup(ctx, year); err != nil && s.logger != nil {
			s.logger.Warn("report warmup enqueue failed", slog.Int("year", year), slog.Any("error", err))
		}
	}
}

func (s *Service) ensureOpen(ctx context.Context, date time.Time) error {
	if s.guard == nil {
		return nil
	}
	closed, err := s.guard.IsClosed(ctx, shared.PeriodOf(date))
	if err != nil {
		return err
	}
	if closed {
		return fmt.Errorf("%w: %s", ErrMonthClosed, shared.PeriodOf(date).Key())
	}
	return nil
}

func (s *Service) reportFailure(op, id string, err error) {
	if s.logger != nil {
		s.logger.Error("ledger write failed", slog.String("op", op), slog.String("id", id), slog.Any("error", err))
	}
	s.events.Publish(Event{Op: op, TransactionID: id, Error: err.Error(), At: s.now()})
}
