package closing

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fondolibro/fondolibro/internal/ledger"
	"github.com/fondolibro/fondolibro/internal/money"
	"github.com/fondolibro/fondolibro/internal/shared"
)

// Snapshot is an immutable view of both stores taken at one instant. The
// resolver and aggregator operate on snapshots so a whole report is computed
// from a single consistent state.
type Snapshot struct {
	byPeriod map[shared.Period][]ledger.Transaction
	closures map[shared.Period]MonthlyClosure
}

// NewSnapshot indexes transactions and closures by period. Transactions are
// sorted by (date, id) ascending for deterministic folding.
func NewSnapshot(txs []ledger.Transaction, closures []MonthlyClosure) *Snapshot {
	s := &Snapshot{
		byPeriod: make(map[shared.Period][]ledger.Transaction),
		closures: make(map[shared.Period]MonthlyClosure, len(closures)),
	}
	for _, t := range txs {
		p := shared.PeriodOf(t.Date)
		s.byPeriod[p] = append(s.byPeriod[p], t)
	}
	for p, list := range s.byPeriod {
		sort.SliceStable(list, func(i, j int) bool {
			if !list[i].Date.Equal(list[j].Date) {
				return list[i].Date.Before(list[j].Date)
			}
			return list[i].ID < list[j].ID
		})
		s.byPeriod[p] = list
	}
	for _, c := range closures {
		s.closures[c.Period()] = c
	}
	return s
}

// LoadSnapshot reads both stores and builds a snapshot.
func LoadSnapshot(ctx context.Context, txs TransactionSource, closures ClosureStore) (*Snapshot, error) {
	all, err := txs.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	recs, err := closures.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(all, recs), nil
}

// Transactions returns the month's transactions in (date, id) order.
func (s *Snapshot) Transactions(p shared.Period) []ledger.Transaction {
	return s.byPeriod[p]
}

// ClosedClosure returns the closure freezing p, if one exists and is closed.
func (s *Snapshot) ClosedClosure(p shared.Period) (MonthlyClosure, bool) {
	c, ok := s.closures[p]
	if !ok || !c.IsClosed() {
		return MonthlyClosure{}, false
	}
	return c, true
}

// net folds a month's transactions: income adds, expense subtracts.
func (s *Snapshot) net(p shared.Period) decimal.Decimal {
	sum := money.Zero
	for _, t := range s.byPeriod[p] {
		sum = money.Add(sum, t.Net())
	}
	return sum
}
