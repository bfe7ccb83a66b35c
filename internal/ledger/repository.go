package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fondolibro/fondolibro/internal/shared"
)

// Repository persists transactions in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository using the provided pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const transactionColumns = `id, kind, amount, category, description, occurred_on`

// ListAll returns every transaction in the ledger, unordered.
func (r *Repository) ListAll(ctx context.Context) ([]Transaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+transactionColumns+` FROM transactions`)
	if err != nil {
		return nil, fmt.Errorf("ledger: list transactions: %w", err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Get loads a single transaction by id.
func (r *Repository) Get(ctx context.Context, id string) (Transaction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, shared.ErrNotFound
		}
		return Transaction{}, err
	}
	return t, nil
}

// Create inserts a new transaction row.
func (r *Repository) Create(ctx context.Context, t Transaction) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO transactions (id, kind, amount, category, description, occurred_on)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, string(t.Kind), t.Amount, t.Category, t.Description, t.Date)
	if err != nil {
		return fmt.Errorf("ledger: insert transaction: %w", err)
	}
	return nil
}

// Update rewrites every mutable field of an existing transaction.
func (r *Repository) Update(ctx context.Context, t Transaction) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE transactions
		 SET kind = $2, amount = $3, category = $4, description = $5, occurred_on = $6
		 WHERE id = $1`,
		t.ID, string(t.Kind), t.Amount, t.Category, t.Description, t.Date)
	if err != nil {
		return fmt.Errorf("ledger: update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a transaction row.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ledger: delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanTransaction(row pgx.Row) (Transaction, error) {
	var t Transaction
	var kind string
	if err := row.Scan(&t.ID, &kind, &t.Amount, &t.Category, &t.Description, &t.Date); err != nil {
		return Transaction{}, err
	}
	t.Kind = Kind(kind)
	return t, nil
}
