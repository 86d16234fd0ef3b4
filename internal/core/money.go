// Package core implements the donation aggregation engine: the record
// model, attribution classification, donor grouping, window filtering and
// the derived metrics.
package core

import (
	"math"
	"strconv"
	"strings"
)

// Money is an amount in integer cents. Donation values arrive as decimal
// dollars; keeping cents makes the conservation invariant
// (sum of donor totals == sum of record values) exact.
type Money struct {
	Cents int64
}

// Dollars returns the dollar value as a float64 for display purposes.
// Use cents for calculations.
func (m Money) Dollars() float64 {
	return float64(m.Cents) / 100.0
}

// String formats the amount as a dollar string, e.g. "$50.00".
func (m Money) String() string {
	neg := m.Cents < 0
	c := m.Cents
	if neg {
		c = -c
	}
	s := "$" + strconv.FormatInt(c/100, 10) + "." + twoDigits(c%100)
	if neg {
		return "-" + s
	}
	return s
}

func twoDigits(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

// ParseMoney coerces a loosely typed value (number, numeric string, null)
// to Money, defaulting to zero. Boundary adapters use it for fields that
// arrive without a guaranteed type.
func ParseMoney(v any) Money {
	return Money{Cents: coerceCents(v)}
}

// ParseQuantity coerces a loosely typed value to an item quantity,
// defaulting to zero.
func ParseQuantity(v any) int {
	return coerceInt(v)
}

// coerceCents converts a loosely typed JSON value (number, numeric string,
// null) to cents, rounding half away from zero on the third decimal.
// Anything non-numeric defaults to 0.
func coerceCents(v any) int64 {
	switch x := v.(type) {
	case float64:
		return int64(math.Round(x * 100))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		return int64(math.Round(f * 100))
	case int64:
		return x * 100
	case int:
		return int64(x) * 100
	default:
		return 0
	}
}

// coerceInt converts a loosely typed JSON value to an integer, defaulting
// to 0. Fractional numbers truncate, matching integer coercion of the
// quantity field.
func coerceInt(v any) int {
	switch x := v.(type) {
	case float64:
		return int(x)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			// tolerate "2.0" style strings
			f, ferr := strconv.ParseFloat(strings.TrimSpace(x), 64)
			if ferr != nil {
				return 0
			}
			return int(f)
		}
		return n
	case int:
		return x
	case int64:
		return int(x)
	default:
		return 0
	}
}
