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

package num_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.tickmarket.io/optix/types/num"
)

func TestUintArithmetic(t *testing.T) {
	a := num.NewUint(100)
	b := num.NewUint(42)

	assert.Equal(t, "142", num.UintZero().Add(a, b).String())
	assert.Equal(t, "58", num.UintZero().Sub(a, b).String())
	assert.Equal(t, "4200", num.UintZero().Mul(a, b).String())
	// integer division floors.
	assert.Equal(t, "2", num.UintZero().Div(a, b).String())
	assert.Equal(t, "0", num.UintZero().Div(a, num.UintZero()).String())
}

func TestUintDelta(t *testing.T) {
	a := num.NewUint(10)
	b := num.NewUint(25)

	d, neg := num.Delta(a, b)
	assert.True(t, neg)
	assert.Equal(t, "15", d.String())

	d, neg = num.Delta(b, a)
	assert.False(t, neg)
	assert.Equal(t, "15", d.String())
}

func TestUintFromDecimal(t *testing.T) {
	u, overflow := num.UintFromDecimal(num.MustDecimalFromString("12345"))
	require.False(t, overflow)
	assert.Equal(t, "12345", u.String())

	// negatives clamp to zero and flag.
	u, overflow = num.UintFromDecimal(num.MustDecimalFromString("-1"))
	assert.True(t, overflow)
	assert.True(t, u.IsZero())
}

func TestUintFromString(t *testing.T) {
	u, overflow := num.UintFromString("340282366920938463463374607431768211456", 10)
	require.False(t, overflow)
	assert.Equal(t, "340282366920938463463374607431768211456", u.String())

	_, overflow = num.UintFromString("nope", 10)
	assert.True(t, overflow)
}

func TestUintCloneIsIndependent(t *testing.T) {
	a := num.NewUint(7)
	b := a.Clone()
	b.AddSum(num.NewUint(1))
	assert.Equal(t, "7", a.String())
	assert.Equal(t, "8", b.String())
}

func TestUintMinMaxSum(t *testing.T) {
	a, b, c := num.NewUint(3), num.NewUint(9), num.NewUint(5)
	assert.Equal(t, "3", num.Min(a, b).String())
	assert.Equal(t, "9", num.Max(a, b).String())
	assert.Equal(t, "5", num.Max(a, c).String())
	assert.Equal(t, "17", num.Sum(a, b, c).String())
	assert.Equal(t, uint64(3), num.MinUint64(3, 9))
}

func TestUintComparisons(t *testing.T) {
	a, b := num.NewUint(5), num.NewUint(6)
	assert.True(t, a.LT(b))
	assert.True(t, a.LTE(a.Clone()))
	assert.True(t, b.GT(a))
	assert.True(t, b.GTE(b.Clone()))
	assert.True(t, a.EQ(num.NewUint(5)))
	assert.True(t, a.NEQ(b))
}
