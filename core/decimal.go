package core

import (
	"errors"
	"math/big"
	"strings"
)

// decimalScale is 10^18: Decimal stores a signed 128-bit integer counting
// units of 10^-18 (spec.md §3).
var decimalScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

var (
	int128Max = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	int128Min = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

// ErrDecimalOverflow is returned (never wrapped as a Result) when an
// arithmetic operation would exceed the signed-128-bit range: this is a
// trap, not a recoverable bucket/vault error.
var ErrDecimalOverflow = errors.New("decimal: overflow")

// Decimal is a signed 128-bit fixed-point number with 18 implicit
// fractional digits.
type Decimal struct {
	Raw *big.Int
}

// ZeroDecimal is the additive identity.
func ZeroDecimal() Decimal { return Decimal{Raw: big.NewInt(0)} }

// DecimalFromInt64 builds a Decimal representing the given whole number.
func DecimalFromInt64(v int64) Decimal {
	return Decimal{Raw: new(big.Int).Mul(big.NewInt(v), decimalScale)}
}

// DecimalFromUint64 builds a Decimal representing the given whole number,
// used chiefly to express non-fungible entry counts as amounts.
func DecimalFromUint64(v uint64) Decimal {
	return Decimal{Raw: new(big.Int).Mul(new(big.Int).SetUint64(v), decimalScale)}
}

// ParseDecimal parses a base-10 string with an optional sign and up to 18
// fractional digits, e.g. "400", "-12.5", "0.000000000000000001".
func ParseDecimal(s string) (Decimal, error) {
	neg := false
	t := s
	if strings.HasPrefix(t, "-") {
		neg = true
		t = t[1:]
	} else if strings.HasPrefix(t, "+") {
		t = t[1:]
	}
	parts := strings.SplitN(t, ".", 2)
	whole := parts[0]
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 18 {
		return Decimal{}, newErr(ErrInvalidRequestData, "decimal %q has more than 18 fractional digits", s)
	}
	for len(frac) < 18 {
		frac += "0"
	}
	combined := whole + frac
	raw, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return Decimal{}, newErr(ErrInvalidRequestData, "invalid decimal literal %q", s)
	}
	if neg {
		raw.Neg(raw)
	}
	if raw.Cmp(int128Max) > 0 || raw.Cmp(int128Min) < 0 {
		return Decimal{}, ErrDecimalOverflow
	}
	return Decimal{Raw: raw}, nil
}

func (d Decimal) checked() (Decimal, error) {
	if d.Raw.Cmp(int128Max) > 0 || d.Raw.Cmp(int128Min) < 0 {
		return Decimal{}, ErrDecimalOverflow
	}
	return d, nil
}

// Add returns d+o, trapping on signed-128-bit overflow.
func (d Decimal) Add(o Decimal) (Decimal, error) {
	return Decimal{Raw: new(big.Int).Add(d.Raw, o.Raw)}.checked()
}

// Sub returns d-o, trapping on signed-128-bit overflow.
func (d Decimal) Sub(o Decimal) (Decimal, error) {
	return Decimal{Raw: new(big.Int).Sub(d.Raw, o.Raw)}.checked()
}

// Cmp compares d and o the way big.Int.Cmp does.
func (d Decimal) Cmp(o Decimal) int { return d.Raw.Cmp(o.Raw) }

// IsNegative reports whether d < 0.
func (d Decimal) IsNegative() bool { return d.Raw.Sign() < 0 }

// IsZero reports whether d == 0.
func (d Decimal) IsZero() bool { return d.Raw.Sign() == 0 }

// ModPow10 returns d.Raw mod 10^n as a big.Int, used by the granularity
// check (amount.raw % 10^(granularity-1) == 0).
func (d Decimal) ModPow10(n uint) *big.Int {
	if n == 0 {
		return big.NewInt(0)
	}
	mod := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	r := new(big.Int).Mod(new(big.Int).Abs(d.Raw), mod)
	return r
}

// String renders the canonical decimal form, e.g. "400", "12.5".
func (d Decimal) String() string {
	raw := new(big.Int).Set(d.Raw)
	neg := raw.Sign() < 0
	if neg {
		raw.Neg(raw)
	}
	s := raw.String()
	for len(s) <= 18 {
		s = "0" + s
	}
	whole := s[:len(s)-18]
	frac := strings.TrimRight(s[len(s)-18:], "0")
	out := whole
	if frac != "" {
		out += "." + frac
	}
	if neg && out != "0" {
		out = "-" + out
	}
	return out
}

// AsUint64Entries interprets the decimal as an entry count for a
// non-fungible take operation; it must be a non-negative integer.
func (d Decimal) AsUint64Entries() (uint64, error) {
	if d.IsNegative() {
		return 0, newErr(ErrNegativeAmount, "negative nft count")
	}
	q := new(big.Int).Div(d.Raw, decimalScale)
	r := new(big.Int).Mod(d.Raw, decimalScale)
	if r.Sign() != 0 {
		return 0, newErr(ErrGranularityCheckFailed, "fractional nft count %s", d)
	}
	if !q.IsUint64() {
		return 0, ErrDecimalOverflow
	}
	return q.Uint64(), nil
}
