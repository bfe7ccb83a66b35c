package closing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fondolibro/fondolibro/internal/shared"
)

// Repository persists monthly closures in Postgres. The deterministic
// primary key ("YYYY-MM") plus single-statement conditional writes give the
// serializable per-key semantics the lifecycle requires.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository using the provided pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const closureColumns = `id, year, month, status, initial_balance, total_income, total_expenses, final_balance, category_totals, closed_at`

// Get loads the closure for the key or shared.ErrNotFound.
func (r *Repository) Get(ctx context.Context, key string) (MonthlyClosure, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+closureColumns+` FROM monthly_closures WHERE id = $1`, key)
	c, err := scanClosure(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MonthlyClosure{}, shared.ErrNotFound
		}
		return MonthlyClosure{}, err
	}
	return c, nil
}

// ListAll returns every closure record.
func (r *Repository) ListAll(ctx context.Context) ([]MonthlyClosure, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+closureColumns+` FROM monthly_closures`)
	if err != nil {
		return nil, fmt.Errorf("closing: list closures: %w", err)
	}
	defer rows.Close()

	var out []MonthlyClosure
	for rows.Next() {
		c, err := scanClosure(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateIfAbsent inserts the closure, mapping a duplicate key onto
// ErrAlreadyClosed so concurrent closes collapse to one winner.
func (r *Repository) CreateIfAbsent(ctx context.Context, c MonthlyClosure) error {
	totals, err := json.Marshal(c.CategoryTotals)
	if err != nil {
		return fmt.Errorf("closing: marshal category totals: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO monthly_closures (`+closureColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.Year, int(c.Month), string(c.Status),
		c.InitialBalance, c.TotalIncome, c.TotalExpenses, c.FinalBalance,
		totals, c.ClosedAt)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return ErrAlreadyClosed
		}
		return fmt.Errorf("closing: insert closure: %w", err)
	}
	return nil
}

// ReplaceIfOpen rewrites a reopened record in place, failing with
// ErrAlreadyClosed when the record has been closed meanwhile.
func (r *Repository) ReplaceIfOpen(ctx context.Context, c MonthlyClosure) error {
	totals, err := json.Marshal(c.CategoryTotals)
	if err != nil {
		return fmt.Errorf("closing: marshal category totals: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE monthly_closures
		 SET status = $2, initial_balance = $3, total_income = $4, total_expenses = $5,
		     final_balance = $6, category_totals = $7, closed_at = $8
		 WHERE id = $1 AND status = $9`,
		c.ID, string(c.Status),
		c.InitialBalance, c.TotalIncome, c.TotalExpenses, c.FinalBalance,
		totals, c.ClosedAt, string(StatusOpen))
	if err != nil {
		return fmt.Errorf("closing: replace closure: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyClosed
	}
	return nil
}

// SetStatus flips a record's status. The update is conditional on the
// opposite status, so reopening an open month reports ErrNotClosed and
// re-closing a closed one reports ErrAlreadyClosed.
func (r *Repository) SetStatus(ctx context.Context, key string, status Status) error {
	opposite := StatusClosed
	if status == StatusClosed {
		opposite = StatusOpen
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE monthly_closures SET status = $2 WHERE id = $1 AND status = $3`,
		key, string(status), string(opposite))
	if err != nil {
		return fmt.Errorf("closing: set closure status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM monthly_closures WHERE id = $1)`, key).Scan(&exists); err != nil {
			return fmt.Errorf("closing: check closure: %w", err)
		}
		if !exists {
			return shared.ErrNotFound
		}
		if status == StatusOpen {
			return ErrNotClosed
		}
		return ErrAlreadyClosed
	}
	return nil
}

func scanClosure(row pgx.Row) (MonthlyClosure, error) {
	var c MonthlyClosure
	var month int
	var status string
	var totals []byte
	err := row.Scan(&c.ID, &c.Year, &month, &status,
		&c.InitialBalance, &c.TotalIncome, &c.TotalExpenses, &c.FinalBalance,
		&totals, &c.ClosedAt)
	if err != nil {
		return MonthlyClosure{}, err
	}
	c.Month = time.Month(month)
	c.Status = Status(status)
	if len(totals) > 0 {
		if err := json.Unmarshal(totals, &c.CategoryTotals); err != nil {
			return MonthlyClosure{}, fmt.Errorf("closing: decode category totals: %w", err)
		}
	}
	return c, nil
}
