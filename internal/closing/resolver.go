package closing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fondolibro/fondolibro/internal/money"
	"github.com/fondolibro/fondolibro/internal/shared"
)

// maxResolveDepth bounds the walk back in time. A century of months is far
// beyond any real ledger; hitting it means the epoch is misconfigured.
const maxResolveDepth = 1200

// Resolver computes the balance entering a month. It memoizes per instance,
// so one resolver must be shared across all months of a single report build
// and discarded afterwards; closure state changes invalidate its answers.
type Resolver struct {
	snap  *Snapshot
	epoch shared.Period
	memo  map[shared.Period]decimal.Decimal
}

// NewResolver constructs a resolver over a snapshot with the given epoch.
func NewResolver(snap *Snapshot, epoch shared.Period) *Resolver {
	return &Resolver{
		snap:  snap,
		epoch: epoch,
		memo:  make(map[shared.Period]decimal.Decimal),
	}
}

// InitialBalance returns the capital entering p.
//
// The derivation is the recursive rule flattened into a backward walk plus a
// forward fold: starting from p, step back month by month until one of the
// terminal cases holds, then fold live transactions forward onto the seed.
//
//	initial(p) = 0                          if p is at or before the epoch
//	initial(p) = closure(p-1).finalBalance  if p-1 has a closed closure
//	initial(p) = initial(p-1) + net(p-1)    otherwise
func (r *Resolver) InitialBalance(p shared.Period) (decimal.Decimal, error) {
	if v, ok := r.memo[p]; ok {
		return v, nil
	}

	var pending []shared.Period
	seed := decimal.Zero
	cur := p
	for {
		if len(pending) > maxResolveDepth {
			return decimal.Decimal{}, fmt.Errorf("%w (resolving %s, epoch %s)", ErrUnboundedRecursion, p.Key(), r.epoch.Key())
		}
		if v, ok := r.memo[cur]; ok {
			seed = v
			break
		}
		if cur.Compare(r.epoch) <= 0 {
			seed = decimal.Zero
			r.memo[cur] = seed
			break
		}
		prev := cur.Prev()
		if c, ok := r.snap.ClosedClosure(prev); ok {
			seed = c.FinalBalance
			r.memo[cur] = seed
			break
		}
		pending = append(pending, cur)
		cur = prev
	}

	// pending runs from p down to just above cur; unwind it oldest first.
	bal := seed
	for i := len(pending) - 1; i >= 0; i-- {
		q := pending[i]
		bal = money.Add(bal, r.snap.net(q.Prev()))
		r.memo[q] = bal
	}
	return bal, nil
}

// Epoch returns the configured earliest tracked period.
func (r *Resolver) Epoch() shared.Period { return r.epoch }
