package closing

import (
	"github.com/fondolibro/fondolibro/internal/ledger"
	"github.com/fondolibro/fondolibro/internal/money"
	"github.com/fondolibro/fondolibro/internal/shared"
)

// Aggregator produces full month summaries over one snapshot. It shares a
// single resolver so repeated months within one report build are O(1).
type Aggregator struct {
	snap     *Snapshot
	resolver *Resolver
}

// NewAggregator constructs an aggregator with its own memoized resolver.
func NewAggregator(snap *Snapshot, epoch shared.Period) *Aggregator {
	return &Aggregator{
		snap:     snap,
		resolver: NewResolver(snap, epoch),
	}
}

// Resolver exposes the shared memoized resolver.
func (a *Aggregator) Resolver() *Resolver { return a.resolver }

// Month returns the summary for p. A closed closure is returned verbatim;
// otherwise the month is aggregated from live transactions on top of the
// resolved initial balance.
func (a *Aggregator) Month(p shared.Period) (Summary, error) {
	if c, ok := a.snap.ClosedClosure(p); ok {
		return c.Summary(), nil
	}

	initial, err := a.resolver.InitialBalance(p)
	if err != nil {
		return Summary{}, err
	}

	out := Summary{
		InitialBalance: initial,
		TotalIncome:    money.Zero,
		TotalExpenses:  money.Zero,
		CategoryTotals: make(map[string]CategoryTotal),
	}
	for _, t := range a.snap.Transactions(p) {
		ct := out.CategoryTotals[t.Category]
		if t.Kind == ledger.KindIncome {
			out.TotalIncome = money.Add(out.TotalIncome, t.Amount)
			ct.Income = money.Add(ct.Income, t.Amount)
		} else {
			out.TotalExpenses = money.Add(out.TotalExpenses, t.Amount)
			ct.Expense = money.Add(ct.Expense, t.Amount)
		}
		out.CategoryTotals[t.Category] = ct
	}
	out.FinalBalance = money.Sub(money.Add(out.InitialBalance, out.TotalIncome), out.TotalExpenses)
	return out, nil
}
