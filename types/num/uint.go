// Copyright (C) 2023 Tickmarket Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package num

import (
	"math/big"

	"github.com/holiman/uint256"
)

// Uint is a wrapper for a big unsigned int.
type Uint struct {
	u uint256.Int
}

// NewUint creates a new Uint with the value of the uint64 passed as a
// parameter.
func NewUint(val uint64) *Uint {
	return &Uint{*uint256.NewInt(val)}
}

// UintZero returns a new Uint set to zero.
func UintZero() *Uint {
	return NewUint(0)
}

// UintFromBig constructs a new Uint from a big.Int,
// returns true if overflow happened.
func UintFromBig(b *big.Int) (*Uint, bool) {
	u, overflow := uint256.FromBig(b)
	if overflow {
		return UintZero(), true
	}
	return &Uint{*u}, false
}

// UintFromString creates a new Uint from a string interpreted using the
// given base. Returns true if an error or overflow happened.
func UintFromString(str string, base int) (*Uint, bool) {
	b, ok := big.NewInt(0).SetString(str, base)
	if !ok {
		return UintZero(), true
	}
	return UintFromBig(b)
}

// UintFromDecimal returns a new Uint from a Decimal, dropping any
// fractional part. Returns true on overflow or negative input.
func UintFromDecimal(d Decimal) (*Uint, bool) {
	if d.IsNegative() {
		return UintZero(), true
	}
	return UintFromBig(d.BigInt())
}

// Min returns the smallest of the 2 numbers.
func Min(a, b *Uint) *Uint {
	if a.LT(b) {
		return a.Clone()
	}
	return b.Clone()
}

// Max returns the largest of the 2 numbers.
func Max(a, b *Uint) *Uint {
	if a.GT(b) {
		return a.Clone()
	}
	return b.Clone()
}

// Sum returns the sum of all its arguments, equivalent to
// num.UintZero().AddSum(vals...).
func Sum(vals ...*Uint) *Uint {
	return UintZero().AddSum(vals...)
}

// MinUint64 returns the smallest of the 2 uint64s.
func MinUint64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// Clone creates a copy of the Uint so it can be modified safely.
func (z Uint) Clone() *Uint {
	return &Uint{z.u}
}

// Set sets z to the value of oth, returns z for chaining.
func (z *Uint) Set(oth *Uint) *Uint {
	z.u.Set(&oth.u)
	return z
}

// SetUint64 sets z to the given uint64 value, returns z for chaining.
func (z *Uint) SetUint64(val uint64) *Uint {
	z.u.SetUint64(val)
	return z
}

// Uint64 returns the low 64 bits of z.
func (z Uint) Uint64() uint64 {
	return z.u.Uint64()
}

// IsUint64 reports whether z can be represented in a uint64.
func (z Uint) IsUint64() bool {
	return z.u.IsUint64()
}

// BigInt returns the value of z as a big.Int.
func (z Uint) BigInt() *big.Int {
	return z.u.ToBig()
}

// ToDecimal returns the value of z as an arbitrary precision Decimal.
func (z Uint) ToDecimal() Decimal {
	return DecimalFromUint(&z)
}

// Add sets z to x + y and returns z for chaining.
func (z *Uint) Add(x, y *Uint) *Uint {
	z.u.Add(&x.u, &y.u)
	return z
}

// AddSum adds multiple values to z at once, so x.AddSum(y, z) is
// equivalent to x + y + z.
func (z *Uint) AddSum(vals ...*Uint) *Uint {
	for _, x := range vals {
		z.u.Add(&z.u, &x.u)
	}
	return z
}

// Sub sets z to x - y and returns z for chaining. The result wraps on
// underflow, callers are expected to check ordering first.
func (z *Uint) Sub(x, y *Uint) *Uint {
	z.u.Sub(&x.u, &y.u)
	return z
}

// Mul sets z to x * y and returns z for chaining.
func (z *Uint) Mul(x, y *Uint) *Uint {
	z.u.Mul(&x.u, &y.u)
	return z
}

// Div sets z to x / y (integer division, floor) and returns z for
// chaining. Division by zero yields zero.
func (z *Uint) Div(x, y *Uint) *Uint {
	z.u.Div(&x.u, &y.u)
	return z
}

// Delta returns the absolute difference between the two numbers, and
// true if the result is negative (i.e. y > x).
func Delta(x, y *Uint) (*Uint, bool) {
	if x.GTE(y) {
		return UintZero().Sub(x, y), false
	}
	return UintZero().Sub(y, x), true
}

// EQ returns true if z == oth.
func (z Uint) EQ(oth *Uint) bool {
	return z.u.Eq(&oth.u)
}

// NEQ returns true if z != oth.
func (z Uint) NEQ(oth *Uint) bool {
	return !z.u.Eq(&oth.u)
}

// LT returns true if z < oth.
func (z Uint) LT(oth *Uint) bool {
	return z.u.Lt(&oth.u)
}

// LTE returns true if z <= oth.
func (z Uint) LTE(oth *Uint) bool {
	return z.u.Lt(&oth.u) || z.u.Eq(&oth.u)
}

// GT returns true if z > oth.
func (z Uint) GT(oth *Uint) bool {
	return z.u.Gt(&oth.u)
}

// GTE returns true if z >= oth.
func (z Uint) GTE(oth *Uint) bool {
	return z.u.Gt(&oth.u) || z.u.Eq(&oth.u)
}

// IsZero returns true if z == 0.
func (z Uint) IsZero() bool {
	return z.u.IsZero()
}

// String returns the decimal string representation of z.
func (z Uint) String() string {
	return z.u.Dec()
}
