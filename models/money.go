package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a fixed-point currency amount with two decimal places
type Money struct {
	decimal.Decimal
}

// Zero is 0.00
var Zero = Money{decimal.Zero}

// NewMoney wraps a decimal value
func NewMoney(d decimal.Decimal) Money {
	return Money{d}
}

// ParseMoney parses a decimal string such as "8.99"
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Money{d}, nil
}

// MustMoney is ParseMoney for constants and tests
func MustMoney(s string) Money {
	return Money{decimal.RequireFromString(s)}
}

// Times returns the amount multiplied by a quantity
func (m Money) Times(quantity int) Money {
	return Money{m.Mul(decimal.NewFromInt(int64(quantity)))}
}

// Plus returns the sum of two amounts
func (m Money) Plus(other Money) Money {
	return Money{m.Add(other.Decimal)}
}

// Equals compares two amounts numerically
func (m Money) Equals(other Money) bool {
	return m.Equal(other.Decimal)
}

// MinorUnits converts the amount to the currency's minor unit (pence, cents)
func (m Money) MinorUnits() int64 {
	return m.Shift(2).Round(0).IntPart()
}

// String renders the amount with exactly two decimals
func (m Money) String() string {
	return m.StringFixed(2)
}

// MarshalJSON renders the amount as a fixed two-decimal string
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.StringFixed(2))
}

// UnmarshalJSON accepts both quoted and bare numbers
func (m *Money) UnmarshalJSON(data []byte) error {
	return m.Decimal.UnmarshalJSON(data)
}

// Value implements driver.Valuer
func (m Money) Value() (driver.Value, error) {
	return m.StringFixed(2), nil
}

// Scan implements sql.Scanner
func (m *Money) Scan(value interface{}) error {
	return m.Decimal.Scan(value)
}
