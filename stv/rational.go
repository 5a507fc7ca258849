package stv

import (
	"math/big"

	"github.com/pkg/errors"
)

// ErrNegativeResult is returned by Value.Sub when the subtraction would
// produce a negative rational. The Act never calls for a negative
// transfer value or vote count; reaching this path indicates an
// invariant violation in the caller, not a legitimate count outcome.
var ErrNegativeResult = errors.New("rational: subtraction would be negative")

// Value is an exact, non-negative rational number. It wraps math/big.Rat,
// which already reduces to lowest terms after every operation -- exactly
// the behavior an implementation without a built-in fraction type must
// provide by hand (see DESIGN.md's standard-library carve-out entry).
//
// The zero Value is not valid; use Zero() or NewInt.
type Value struct {
	r *big.Rat
}

// Zero returns the rational 0/1.
func Zero() Value { return Value{r: new(big.Rat)} }

// One returns the rational 1/1.
func One() Value { return Value{r: big.NewRat(1, 1)} }

// NewInt returns the rational n/1. Panics if n is negative.
func NewInt(n int64) Value {
	if n < 0 {
		panic("stv: NewInt called with a negative value")
	}
	return Value{r: new(big.Rat).SetInt64(n)}
}

// NewRatio returns the rational num/den. Panics if den is zero or either
// operand is negative.
func NewRatio(num, den int64) Value {
	if den == 0 {
		panic("stv: NewRatio called with a zero denominator")
	}
	if num < 0 || den < 0 {
		panic("stv: NewRatio called with a negative operand")
	}
	return Value{r: big.NewRat(num, den)}
}

// IsZero reports whether v is exactly zero.
func (v Value) IsZero() bool { return v.r.Sign() == 0 }

// Add returns v + other.
func (v Value) Add(other Value) Value {
	out := new(big.Rat)
	out.Add(v.r, other.r)
	return Value{r: out}
}

// Sub returns v - other. It returns ErrNegativeResult rather than a
// negative Value, since the domain never needs negative rationals and a
// request for one signals a bug in the caller.
func (v Value) Sub(other Value) (Value, error) {
	out := new(big.Rat)
	out.Sub(v.r, other.r)
	if out.Sign() < 0 {
		return Value{}, errors.Wrapf(ErrNegativeResult, "%s - %s", v.r.RatString(), other.r.RatString())
	}
	return Value{r: out}, nil
}

// Mul returns v * other.
func (v Value) Mul(other Value) Value {
	out := new(big.Rat)
	out.Mul(v.r, other.r)
	return Value{r: out}
}

// MulInt returns v * n.
func (v Value) MulInt(n int64) Value {
	return v.Mul(NewInt(n))
}

// Cmp compares v to other: -1 if v < other, 0 if equal, 1 if v > other.
func (v Value) Cmp(other Value) int {
	return v.r.Cmp(other.r)
}

// Floor truncates v toward zero. Because Value is always non-negative,
// truncation toward zero is the same as the mathematical floor (spec.md
// 4.1).
func (v Value) Floor() int64 {
	num := new(big.Int).Set(v.r.Num())
	den := v.r.Denom()
	q := new(big.Int)
	q.Quo(num, den)
	return q.Int64()
}

// String renders v as "num/den" (or as a bare integer when the
// denominator is 1), matching the teacher corpus's habit of
// carrying fraction values through logs in their exact form rather than
// a lossy float approximation.
func (v Value) String() string {
	return v.r.RatString()
}

// Float64 returns a float64 approximation of v. Used only at the
// reporting boundary (spec.md 4.1): never inside the engine.
func (v Value) Float64() float64 {
	f, _ := v.r.Float64()
	return f
}
