// Package ledger records the fund's income and expense movements.
package ledger

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/fondolibro/fondolibro/internal/money"
)

// Kind distinguishes movements that increase capital from those that
// decrease it.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Categories is the fixed business category list. Transactions outside this
// list are rejected at the boundary.
var Categories = []string{
	"Fiscalía",
	"Capital Recuperado",
	"Intereses Ganados",
	"Préstamos Socios",
	"Prestamos Candelaria",
	"Capital Inicial",
	"Gastos Extraordinarios",
	"Egresos Extraordinarios",
	"Divisas",
}

// ErrMonthClosed is returned when mutating a transaction dated inside a
// closed month.
var ErrMonthClosed = errors.New("ledger: month is closed")

// ErrUnknownCategory indicates a category outside the configured list.
var ErrUnknownCategory = errors.New("ledger: unknown category")

// Transaction is a single financial movement. Amount is always positive;
// Kind carries the sign.
type Transaction struct {
	ID          string          `json:"id"`
	Kind        Kind            `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
}

// Net returns the signed effect of the transaction on capital.
func (t Transaction) Net() decimal.Decimal {
	if t.Kind == KindExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

var validate = validator.New()

// CreateInput carries a new transaction from the boundary.
type CreateInput struct {
	Kind        Kind   `json:"kind" validate:"required,oneof=income expense"`
	Amount      string `json:"amount" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Description string `json:"description" validate:"required,min=2,max=100"`
	Date        string `json:"date" validate:"required"`
}

// UpdateInput carries a partial edit. Empty fields keep their stored value.
type UpdateInput struct {
	Kind        Kind   `json:"kind" validate:"omitempty,oneof=income expense"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description" validate:"omitempty,min=2,max=100"`
	Date        string `json:"date"`
}

// Parse validates the input and materialises a Transaction without an ID.
func (in CreateInput) Parse() (Transaction, error) {
	if err := validate.Struct(in); err != nil {
		return Transaction{}, err
	}
	if !knownCategory(in.Category) {
		return Transaction{}, ErrUnknownCategory
	}
	amount, err := money.ParsePositive(in.Amount)
	if err != nil {
		return Transaction{}, err
	}
	date, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		return Transaction{}, errors.New("ledger: invalid date, want YYYY-MM-DD")
	}
	return Transaction{
		Kind:        in.Kind,
		Amount:      amount,
		Category:    in.Category,
		Description: in.Description,
		Date:        date,
	}, nil
}

// Apply validates the input and overlays it on an existing transaction.
func (in UpdateInput) Apply(existing Transaction) (Transaction, error) {
	if err := validate.Struct(in); err != nil {
		return Transaction{}, err
	}
	out := existing
	if in.Kind != "" {
		out.Kind = in.Kind
	}
	if in.Amount != "" {
		amount, err := money.ParsePositive(in.Amount)
		if err != nil {
			return Transaction{}, err
		}
		out.Amount = amount
	}
	if in.Category != "" {
		if !knownCategory(in.Category) {
			return Transaction{}, ErrUnknownCategory
		}
		out.Category = in.Category
	}
	if in.Description != "" {
		out.Description = in.Description
	}
	if in.Date != "" {
		date, err := time.Parse("2006-01-02", in.Date)
		if err != nil {
			return Transaction{}, errors.New("ledger: invalid date, want YYYY-MM-DD")
		}
		out.Date = date
	}
	return out, nil
}

func knownCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}
