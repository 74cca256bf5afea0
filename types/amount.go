// Package types provides common types used across the staking ledger.
package types

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// Decimals is the fixed-point scale used for every monetary quantity:
// stake currency, reward token and exchange rates all carry 18 decimals.
const Decimals = 18

// scale = 10^18 as a big.Int, shared and never mutated.
var scale = new(big.Int).Exp(big.NewInt(10), big.NewInt(Decimals), nil)

// Amount is an 18-decimal fixed-point quantity backed by integer
// arithmetic, with no floating point anywhere. The zero value is usable and
// equals zero. Amounts are immutable: every operation returns a new value
// and never aliases the operands' internals.
type Amount struct {
	i *big.Int
}

// Zero returns the zero Amount.
func Zero() Amount { return Amount{} }

// FromUnits builds an Amount from a count of whole units
// (e.g. FromUnits(1000) is 1000.0).
func FromUnits(units int64) Amount {
	return Amount{i: new(big.Int).Mul(big.NewInt(units), scale)}
}

// FromRaw builds an Amount from an already-scaled integer value.
// The big.Int is copied; negative values are rejected at validation,
// not here, so intermediate math can go through FromRaw freely.
func FromRaw(raw *big.Int) Amount {
	if raw == nil || raw.Sign() == 0 {
		return Amount{}
	}
	return Amount{i: new(big.Int).Set(raw)}
}

// FromFraction builds an Amount representing num/den of one whole unit,
// e.g. FromFraction(9, 1000) is a 0.9% rate. Panics if den <= 0.
func FromFraction(num, den int64) Amount {
	if den <= 0 {
		panic("types: non-positive fraction denominator")
	}
	v := new(big.Int).Mul(big.NewInt(num), scale)
	return Amount{i: v.Quo(v, big.NewInt(den))}
}

// Parse parses a canonical decimal-integer string (the raw scaled value)
// as produced by Raw().String(). Used by store backends.
func Parse(s string) (Amount, error) {
	if s == "" || s == "0" {
		return Amount{}, nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, fmt.Errorf("types: parse amount %q", s)
	}
	return Amount{i: v}, nil
}

// MustParse is like Parse but panics on error. Use for hardcoded values.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Raw returns a copy of the underlying scaled integer.
func (a Amount) Raw() *big.Int {
	if a.i == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.i)
}

// big returns the internal value for read-only use, tolerating the zero value.
func (a Amount) big() *big.Int {
	if a.i == nil {
		return b0
	}
	return a.i
}

var b0 = big.NewInt(0)

// Arithmetic. All results are fresh values.

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{i: new(big.Int).Add(a.big(), b.big())}
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount {
	return Amount{i: new(big.Int).Sub(a.big(), b.big())}
}

// Neg returns -a.
func (a Amount) Neg() Amount {
	return Amount{i: new(big.Int).Neg(a.big())}
}

// MulRate multiplies by another 18-decimal fixed-point value (a rate or a
// price), flooring the truncating division. Flooring is deliberate: rounding
// always favors the pool that funds a payout, never the claimant.
func (a Amount) MulRate(rate Amount) Amount {
	v := new(big.Int).Mul(a.big(), rate.big())
	return Amount{i: v.Quo(v, scale)}
}

// MulInt multiplies by a plain integer factor.
func (a Amount) MulInt(n int64) Amount {
	return Amount{i: new(big.Int).Mul(a.big(), big.NewInt(n))}
}

// DivInt divides by a plain integer, flooring. Panics on zero.
func (a Amount) DivInt(n int64) Amount {
	if n == 0 {
		panic("types: division by zero")
	}
	return Amount{i: new(big.Int).Quo(a.big(), big.NewInt(n))}
}

// MulDiv returns a*num/den with the multiplication carried at full big.Int
// width before the flooring division, so no precision is lost to ordering.
// Panics if den is zero.
func (a Amount) MulDiv(num, den Amount) Amount {
	if den.big().Sign() == 0 {
		panic("types: MulDiv by zero")
	}
	v := new(big.Int).Mul(a.big(), num.big())
	return Amount{i: v.Quo(v, den.big())}
}

// Comparisons.

// Sign returns -1, 0 or +1.
func (a Amount) Sign() int { return a.big().Sign() }

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool { return a.big().Sign() == 0 }

// IsPositive reports whether the amount is greater than zero.
func (a Amount) IsPositive() bool { return a.big().Sign() > 0 }

// IsNegative reports whether the amount is less than zero.
func (a Amount) IsNegative() bool { return a.big().Sign() < 0 }

// Cmp compares a and b, returning -1, 0 or +1.
func (a Amount) Cmp(b Amount) int { return a.big().Cmp(b.big()) }

// Equal reports whether a == b.
func (a Amount) Equal(b Amount) bool { return a.big().Cmp(b.big()) == 0 }

// LessThan reports whether a < b.
func (a Amount) LessThan(b Amount) bool { return a.big().Cmp(b.big()) < 0 }

// GreaterThan reports whether a > b.
func (a Amount) GreaterThan(b Amount) bool { return a.big().Cmp(b.big()) > 0 }

// Min returns the smaller of a and b.
func (a Amount) Min(b Amount) Amount {
	if a.big().Cmp(b.big()) <= 0 {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func (a Amount) Max(b Amount) Amount {
	if a.big().Cmp(b.big()) >= 0 {
		return a
	}
	return b
}

// Formatting.

// String renders the amount as a plain decimal, trimming trailing zeros:
// "1000", "0.009", "-2.5".
func (a Amount) String() string {
	v := a.big()
	neg := v.Sign() < 0
	abs := new(big.Int).Abs(v)

	whole := new(big.Int)
	frac := new(big.Int)
	whole.QuoRem(abs, scale, frac)

	s := whole.String()
	if frac.Sign() != 0 {
		f := fmt.Sprintf("%018d", frac)
		for len(f) > 0 && f[len(f)-1] == '0' {
			f = f[:len(f)-1]
		}
		s += "." + f
	}
	if neg {
		return "-" + s
	}
	return s
}

// RawString returns the canonical scaled-integer form used by stores.
func (a Amount) RawString() string { return a.big().String() }

// MarshalJSON encodes the raw scaled value as a JSON string, preserving
// full precision across every store backend.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.big().String())
}

// UnmarshalJSON accepts either a raw-scaled string or a JSON integer.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Tolerate bare numbers written by older encoders.
		var n json.Number
		if err2 := json.Unmarshal(data, &n); err2 != nil {
			return err
		}
		s = n.String()
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// One is the fixed-point representation of 1.0, useful as a rate identity.
func One() Amount { return Amount{i: new(big.Int).Set(scale)} }

// Sum adds a series of amounts.
func Sum(values ...Amount) Amount {
	total := new(big.Int)
	for _, v := range values {
		total.Add(total, v.big())
	}
	return Amount{i: total}
}
