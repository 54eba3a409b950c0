// Package money provides the integer minor-unit Money type used by the ledger.
//
// All arithmetic runs on int64 cents. Decimal strings are only produced and
// consumed at the boundary (JSON, storage, CLI), where they always carry exactly
// two fractional digits.
package money

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrPrecision is returned when an amount has sub-cent precision.
	ErrPrecision = errors.New("money: more than two fractional digits")
	// ErrOutOfRange is returned when an amount exceeds MaxAmount in magnitude
	// or a sum does not fit in int64 cents.
	ErrOutOfRange = errors.New("money: amount out of range")
)

// MaxAmount is the largest magnitude a single amount may have: ten trillion
// in major units. Sums of up to about nine thousand such amounts still fit
// in int64.
const MaxAmount Money = 1_000_000_000_000_000

// Money is an amount in minor units (cents).
type Money int64

// Zero is the zero amount.
const Zero Money = 0

var (
	maxCents = decimal.NewFromInt(int64(MaxAmount))
	minCents = decimal.NewFromInt(-int64(MaxAmount))
)

// Cents creates a Money value from minor units.
func Cents(c int64) Money { return Money(c) }

// Parse parses a decimal string such as "109.60", "109.6" or "12".
// Trailing zeros beyond the second fractional digit are accepted ("1.500"),
// any other sub-cent precision is rejected.
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("money: invalid amount %q: %w", s, err)
	}
	return FromDecimal(d)
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// FromDecimal converts a decimal major-unit amount to Money.
func FromDecimal(d decimal.Decimal) (Money, error) {
	cents := d.Shift(2)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("%w: %s", ErrPrecision, d.String())
	}
	if cents.GreaterThan(maxCents) || cents.LessThan(minCents) {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, d.String())
	}
	return Money(cents.IntPart()), nil
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// String formats the amount with exactly two fractional digits ("109.60").
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Cents returns the amount in minor units.
func (m Money) Cents() int64 { return int64(m) }

// IsPositive reports whether the amount is greater than zero.
func (m Money) IsPositive() bool { return m > 0 }

// CheckRange returns ErrOutOfRange if the magnitude of m exceeds MaxAmount.
func (m Money) CheckRange() error {
	if m > MaxAmount || m < -MaxAmount {
		return fmt.Errorf("%w: %s exceeds %s", ErrOutOfRange, m, MaxAmount)
	}
	return nil
}

// Abs returns the absolute value.
func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}

// MarshalJSON encodes the amount as a two-decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts a JSON string ("12.50") or a JSON number (12.5).
// Numbers are parsed from their literal text, never through float64.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	s := string(data)
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		s = string(data[1 : len(data)-1])
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Add returns a+b, or ErrOutOfRange if the sum overflows int64.
func Add(a, b Money) (Money, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, fmt.Errorf("%w: %d + %d overflows", ErrOutOfRange, a, b)
	}
	return sum, nil
}

// Sub returns a-b, or ErrOutOfRange if the difference overflows int64.
func Sub(a, b Money) (Money, error) {
	diff := a - b
	if (b > 0 && diff > a) || (b < 0 && diff < a) {
		return 0, fmt.Errorf("%w: %d - %d overflows", ErrOutOfRange, a, b)
	}
	return diff, nil
}

// Sum adds up the given amounts with overflow checking.
func Sum(values ...Money) (Money, error) {
	var total Money
	for _, v := range values {
		var err error
		if total, err = Add(total, v); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// Split divides total among ids so that the shares add up to exactly total.
//
// Every id gets total/len(ids); the remaining cents go one each to the first
// ids in ascending order, so the result does not depend on the order of ids.
func Split(total Money, ids []string) (map[string]Money, error) {
	if len(ids) == 0 {
		return nil, errors.New("money: split requires at least one participant")
	}
	if total < 0 {
		return nil, fmt.Errorf("money: cannot split negative amount %s", total)
	}

	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return nil, fmt.Errorf("money: duplicate participant %q", sorted[i])
		}
	}

	n := Money(len(sorted))
	base, rem := total/n, total%n

	shares := make(map[string]Money, len(sorted))
	for i, id := range sorted {
		share := base
		if Money(i) < rem {
			share++
		}
		shares[id] = share
	}
	return shares, nil
}
