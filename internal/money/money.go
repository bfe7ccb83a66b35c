// Package money provides exact base-10 arithmetic for monetary amounts.
// Every component that touches an amount goes through this package; native
// floats never enter the ledger.
package money

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrInvalidAmount indicates a non-finite or unparseable monetary value.
var ErrInvalidAmount = errors.New("money: invalid amount")

// Zero is the additive identity.
var Zero = decimal.Zero

var displayPrinter = message.NewPrinter(language.EuropeanSpanish)

// Parse converts a decimal string into an exact amount.
func Parse(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return d, nil
}

// ParsePositive parses an amount and rejects zero or negative values.
func ParsePositive(s string) (decimal.Decimal, error) {
	d, err := Parse(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !d.IsPositive() {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return d, nil
}

// FromFloat converts a float into an exact amount, rejecting NaN and infinities.
func FromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return decimal.NewFromFloat(f), nil
}

// Add returns a+b.
func Add(a, b decimal.Decimal) decimal.Decimal {
	return a.Add(b)
}

// Sub returns a-b.
func Sub(a, b decimal.Decimal) decimal.Decimal {
	return a.Sub(b)
}

// Display renders an amount with currency symbol using Spanish number
// formatting, e.g. "1.234,50 US$". Only the rendered string uses binary
// floats; stored values stay exact.
func Display(d decimal.Decimal, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		unit = currency.USD
	}
	f, _ := d.Round(2).Float64()
	return displayPrinter.Sprintf("%v", currency.Symbol(unit.Amount(f)))
}
