// Package closing implements month-end closing and balance carry-forward:
// resolving the capital entering any month, aggregating a month's activity
// by category, and freezing the result into an immutable closure record.
package closing

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fondolibro/fondolibro/internal/ledger"
	"github.com/fondolibro/fondolibro/internal/shared"
)

// Status enumerates the closure lifecycle.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

var (
	// ErrAlreadyClosed is returned when closing a month that already has a
	// closed closure record.
	ErrAlreadyClosed = errors.New("closing: month already closed")
	// ErrNotClosed is returned when reopening a month that is not closed.
	ErrNotClosed = errors.New("closing: month is not closed")
	// ErrUnboundedRecursion indicates the resolver walked past the sanity
	// depth without reaching the epoch. The epoch is misconfigured.
	ErrUnboundedRecursion = errors.New("closing: balance resolution exceeded depth bound, check ledger epoch")
)

// CategoryTotal accumulates income and expense for one category.
type CategoryTotal struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Summary is one month's aggregated financial state. It has the shape of a
// MonthlyClosure minus identity and status.
type Summary struct {
	InitialBalance decimal.Decimal          `json:"initialBalance"`
	TotalIncome    decimal.Decimal          `json:"totalIncome"`
	TotalExpenses  decimal.Decimal          `json:"totalExpenses"`
	FinalBalance   decimal.Decimal          `json:"finalBalance"`
	CategoryTotals map[string]CategoryTotal `json:"categoryTotals"`
}

// MonthlyClosure freezes one month's numbers. While Status is closed it is
// the sole source of truth for its month.
type MonthlyClosure struct {
	ID             string                   `json:"id"`
	Year           int                      `json:"year"`
	Month          time.Month               `json:"month"`
	Status         Status                   `json:"status"`
	InitialBalance decimal.Decimal          `json:"initialBalance"`
	TotalIncome    decimal.Decimal          `json:"totalIncome"`
	TotalExpenses  decimal.Decimal          `json:"totalExpenses"`
	FinalBalance   decimal.Decimal          `json:"finalBalance"`
	CategoryTotals map[string]CategoryTotal `json:"categoryTotals"`
	ClosedAt       time.Time                `json:"closedAt"`
}

// Period returns the month the closure covers.
func (c MonthlyClosure) Period() shared.Period {
	return shared.Period{Year: c.Year, Month: c.Month}
}

// IsClosed reports whether the closure currently freezes its month.
func (c MonthlyClosure) IsClosed() bool { return c.Status == StatusClosed }

// Summary extracts the aggregated fields.
func (c MonthlyClosure) Summary() Summary {
	return Summary{
		InitialBalance: c.InitialBalance,
		TotalIncome:    c.TotalIncome,
		TotalExpenses:  c.TotalExpenses,
		FinalBalance:   c.FinalBalance,
		CategoryTotals: c.CategoryTotals,
	}
}

// TransactionSource lists the live transaction records.
type TransactionSource interface {
	ListAll(ctx context.Context) ([]ledger.Transaction, error)
}

// ClosureStore persists closure records keyed by period.
type ClosureStore interface {
	// Get returns the closure for the key or shared.ErrNotFound.
	Get(ctx context.Context, key string) (MonthlyClosure, error)
	// ListAll returns every closure record.
	ListAll(ctx context.Context) ([]MonthlyClosure, error)
	// CreateIfAbsent inserts a closure, returning ErrAlreadyClosed when a
	// record with the same key already exists.
	CreateIfAbsent(ctx context.Context, c MonthlyClosure) error
	// ReplaceIfOpen rewrites an existing record only while its status is
	// open, returning ErrAlreadyClosed otherwise.
	ReplaceIfOpen(ctx context.Context, c MonthlyClosure) error
	// SetStatus flips the status of an existing record. Reopening requires
	// the record to be closed; shared.ErrNotFound when the key is absent.
	SetStatus(ctx context.Context, key string, status Status) error
}
