package value_objects

import (
	"errors"
	"fmt"
)

var ErrNegativeAmount = errors.New("amount cannot be negative")

// Money represents a monetary amount in euro cents.
// Amounts are stored in minor units to avoid floating-point drift.
type Money struct {
	cents int64
}

// NewMoney creates a Money value from an amount in cents.
func NewMoney(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, ErrNegativeAmount
	}
	return Money{cents: cents}, nil
}

// MustNewMoney creates a Money value or panics on error.
func MustNewMoney(cents int64) Money {
	m, err := NewMoney(cents)
	if err != nil {
		panic(err)
	}
	return m
}

// ZeroMoney returns a zero amount.
func ZeroMoney() Money {
	return Money{}
}

// Cents returns the amount in cents.
func (m Money) Cents() int64 {
	return m.cents
}

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool {
	return m.cents == 0
}

// Add returns the sum of this and another amount.
func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}

// MulInt returns this amount multiplied by a non-negative factor.
func (m Money) MulInt(n int64) (Money, error) {
	if n < 0 {
		return Money{}, ErrNegativeAmount
	}
	return Money{cents: m.cents * n}, nil
}

// String returns a human-readable representation, e.g. "2.50".
func (m Money) String() string {
	return fmt.Sprintf("%d.%02d", m.cents/100, m.cents%100)
}
