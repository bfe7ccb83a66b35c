package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fondolibro/fondolibro/internal/shared"
)

// Repository stores the profile in a single-row table.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Get(ctx context.Context) (Profile, error) {
	const q = `SELECT name, rif, address, phone, email, logo_url FROM company_profile WHERE id = 1`
	var p Profile
	err := r.pool.QueryRow(ctx, q).Scan(&p.Name, &p.RIF, &p.Address, &p.Phone, &p.Email, &p.LogoURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, shared.ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("select company_profile: %w", err)
	}
	return p, nil
}

func (r *Repository) Put(ctx context.Context, p Profile) error {
	const q = `
		INSERT INTO company_profile (id, name, rif, address, phone, email, logo_url)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			rif = EXCLUDED.rif,
			address = EXCLUDED.address,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			logo_url = EXCLUDED.logo_url`
	if _, err := r.pool.Exec(ctx, q, p.Name, p.RIF, p.Address, p.Phone, p.Email, p.LogoURL); err != nil {
		return fmt.Errorf("upsert company_profile: %w", err)
	}
	return nil
}
