// Package numeric turns amount values that may arrive as native JSON numbers
// into exact decimal strings.
package numeric

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Canonical returns the decimal-string form of v. Strings are returned
// untouched so that canonicalising twice is a no-op.
func Canonical(v any) (string, error) {
	switch n := v.(type) {
	case string:
		return n, nil
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return "", fmt.Errorf("invalid number %q: %w", n, err)
		}
		return d.String(), nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return "", fmt.Errorf("non-finite number %v", n)
		}
		return decimal.NewFromFloat(n).String(), nil
	case float32:
		if math.IsNaN(float64(n)) || math.IsInf(float64(n), 0) {
			return "", fmt.Errorf("non-finite number %v", n)
		}
		return decimal.NewFromFloat32(n).String(), nil
	case int:
		return strconv.Itoa(n), nil
	case int64:
		return strconv.FormatInt(n, 10), nil
	case int32:
		return strconv.FormatInt(int64(n), 10), nil
	case uint64:
		return strconv.FormatUint(n, 10), nil
	case uint32:
		return strconv.FormatUint(uint64(n), 10), nil
	case uint:
		return strconv.FormatUint(uint64(n), 10), nil
	default:
		return "", fmt.Errorf("unsupported amount type %T", v)
	}
}

// Positive reports whether s parses as a decimal strictly greater than zero
func Positive(s string) bool {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return false
	}
	return d.IsPositive()
}

// ToSmallestUnit converts a UI amount such as "1.5" into base units given the
// asset decimals. Fractions finer than the asset precision are rejected.
func ToSmallestUnit(amount string, decimals int32) (uint64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("amount must be greater than 0")
	}
	scaled := d.Shift(decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", amount, decimals)
	}
	if !scaled.BigInt().IsUint64() {
		return 0, fmt.Errorf("amount %s overflows", amount)
	}
	return scaled.BigInt().Uint64(), nil
}

// FromSmallestUnit renders base units as a UI amount
func FromSmallestUnit(amount string, decimals int32) string {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return amount
	}
	return d.Shift(-decimals).String()
}
