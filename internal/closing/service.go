package closing

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/fondolibro/fondolibro/internal/shared"
)

// ReportInvalidator drops cached report payloads after closure state
// changes. Optional; reports are recomputed either way.
type ReportInvalidator interface {
	Invalidate(ctx context.Context) error
}

// WarmupEnqueuer schedules background regeneration of the annual report for
// a year whose closure state changed. Optional.
type WarmupEnqueuer interface {
	EnqueueReportWarmup(ctx context.Context, year int) error
}

// Service orchestrates the closure lifecycle: closing freezes a month's
// aggregation into a closure record, reopening restores derivation from
// live transactions.
type Service struct {
	txs    TransactionSource
	store  ClosureStore
	epoch  shared.Period
	logger *slog.Logger
	now    func() time.Time

	invalidator ReportInvalidator
	warmup      WarmupEnqueuer
}

// NewService constructs a Service.
func NewService(txs TransactionSource, store ClosureStore, epoch shared.Period, logger *slog.Logger) *Service {
	return &Service{
		txs:    txs,
		store:  store,
		epoch:  epoch,
		logger: logger,
		now:    time.Now,
	}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithReportInvalidator wires the report cache.
func (s *Service) WithReportInvalidator(inv ReportInvalidator) { s.invalidator = inv }

// WithWarmupEnqueuer wires the background warmup queue.
func (s *Service) WithWarmupEnqueuer(w WarmupEnqueuer) { s.warmup = w }

// Epoch returns the earliest tracked period.
func (s *Service) Epoch() shared.Period { return s.epoch }

// Aggregate computes the summary for one month from a fresh snapshot.
func (s *Service) Aggregate(ctx context.Context, p shared.Period) (Summary, error) {
	snap, err := LoadSnapshot(ctx, s.txs, s.store)
	if err != nil {
		return Summary{}, err
	}
	return NewAggregator(snap, s.epoch).Month(p)
}

// IsClosed reports whether p has a closed closure record.
func (s *Service) IsClosed(ctx context.Context, p shared.Period) (bool, error) {
	c, err := s.store.Get(ctx, p.Key())
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return c.IsClosed(), nil
}

// Get returns the closure record for p, closed or reopened.
func (s *Service) Get(ctx context.Context, p shared.Period) (MonthlyClosure, error) {
	return s.store.Get(ctx, p.Key())
}

// List returns every closure record in chronological order.
func (s *Service) List(ctx context.Context) ([]MonthlyClosure, error) {
	recs, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Period().Before(recs[j].Period())
	})
	return recs, nil
}

// CloseMonth freezes p. The aggregation runs over live transactions and the
// write is conditional on the closure key, so two concurrent closes cannot
// both succeed.
func (s *Service) CloseMonth(ctx context.Context, p shared.Period) (MonthlyClosure, error) {
	snap, err := LoadSnapshot(ctx, s.txs, s.store)
	if err != nil {
		return MonthlyClosure{}, err
	}
	if _, closed := snap.ClosedClosure(p); closed {
		return MonthlyClosure{}, ErrAlreadyClosed
	}

	summary, err := NewAggregator(snap, s.epoch).Month(p)
	if err != nil {
		return MonthlyClosure{}, err
	}

	c := MonthlyClosure{
		ID:             p.Key(),
		Year:           p.Year,
		Month:          p.Month,
		Status:         StatusClosed,
		InitialBalance: summary.InitialBalance,
		TotalIncome:    summary.TotalIncome,
		TotalExpenses:  summary.TotalExpenses,
		FinalBalance:   summary.FinalBalance,
		CategoryTotals: summary.CategoryTotals,
		ClosedAt:       s.now().UTC(),
	}

	err = s.store.CreateIfAbsent(ctx, c)
	if errors.Is(err, ErrAlreadyClosed) {
		// A reopened record still occupies the key; refreeze it in place.
		err = s.store.ReplaceIfOpen(ctx, c)
	}
	if err != nil {
		return MonthlyClosure{}, err
	}

	s.afterChange(ctx, p)
	return c, nil
}

// ReopenMonth retracts the closure for p. The record stays for audit
// history with its status flipped to open; downstream consumers derive the
// month from live transactions again.
func (s *Service) ReopenMonth(ctx context.Context, p shared.Period) error {
	if err := s.store.SetStatus(ctx, p.Key(), StatusOpen); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ErrNotClosed
		}
		return err
	}
	s.afterChange(ctx, p)
	return nil
}

// afterChange invalidates cached reports and schedules regeneration.
// Closure changes cascade forward, so the whole year is warmed.
func (s *Service) afterChange(ctx context.Context, p shared.Period) {
	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx); err != nil && s.logger != nil {
			s.logger.Warn("report cache invalidation failed", slog.String("period", p.Key()), slog.Any("error", err))
		}
	}
	if s.warmup != nil {
		if err := s.warmup.EnqueueReportWarmup(ctx, p.Year); err != nil && s.logger != nil {
			s.logger.Warn("report warmup enqueue failed", slog.Int("year", p.Year), slog.Any("error", err))
		}
	}
}
