// Package units converts between human decimal token amounts ("1.5") and
// integer base units (1500000000000000000 at 18 decimals).
//
// All arithmetic is done on big.Int. Floating point is never used because a
// float64 cannot represent most 18-decimal amounts exactly.
package units

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// DefaultDecimals matches ether and the vast majority of ERC-20 tokens.
const DefaultDecimals = 18

// MaxDecimals bounds the scale accepted by ToBaseUnits (uint8 in ERC-20).
const MaxDecimals = 255

var (
	ErrEmpty       = errors.New("empty amount")
	ErrSyntax      = errors.New("invalid decimal number")
	ErrTooPrecise  = errors.New("too many decimal places")
	ErrBadDecimals = errors.New("decimals out of range")
)

// ToBaseUnits parses a decimal string and scales it by 10^decimals.
//
// Accepted forms: "1", "1.5", ".5", "1.", "+2", "-3.25". A leading sign is
// kept so callers can reject non-positive amounts with their own error. More
// fractional digits than decimals is an error rather than a silent rounding.
func ToBaseUnits(s string, decimals int) (*big.Int, error) {
	if decimals < 0 || decimals > MaxDecimals {
		return nil, fmt.Errorf("%w: %d", ErrBadDecimals, decimals)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmpty
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	if !digitsOnly(whole) || !digitsOnly(frac) {
		return nil, fmt.Errorf("%w: %q", ErrSyntax, s)
	}

	frac = strings.TrimRight(frac, "0")
	if len(frac) > decimals {
		return nil, fmt.Errorf("%w: %q has more than %d", ErrTooPrecise, s, decimals)
	}

	digits := strings.TrimLeft(whole+frac+strings.Repeat("0", decimals-len(frac)), "0")
	if digits == "" {
		digits = "0"
	}
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	if neg {
		n.Neg(n)
	}
	return n, nil
}

// ToDecimalString renders base units as a decimal string with trailing
// fractional zeros removed: 1500000000000000000 at 18 decimals is "1.5".
func ToDecimalString(v *big.Int, decimals int) string {
	if v == nil {
		return "0"
	}
	if decimals <= 0 {
		return v.String()
	}
	abs := new(big.Int).Abs(v)
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	q, r := new(big.Int).QuoRem(abs, scale, new(big.Int))

	out := q.String()
	if r.Sign() != 0 {
		frac := r.String()
		frac = strings.Repeat("0", decimals-len(frac)) + frac
		out += "." + strings.TrimRight(frac, "0")
	}
	if v.Sign() < 0 {
		out = "-" + out
	}
	return out
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
