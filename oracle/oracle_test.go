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

package oracle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.tickmarket.io/optix/oracle"
	"code.tickmarket.io/optix/types/num"
)

func TestStaticSource(t *testing.T) {
	src := oracle.NewStaticSource(num.NewUint(42))
	p, err := src.CurrentPrice()
	require.NoError(t, err)
	assert.Equal(t, "42", p.String())

	// callers get a copy, mutating it does not touch the source.
	p.AddSum(num.NewUint(1))
	p2, err := src.CurrentPrice()
	require.NoError(t, err)
	assert.Equal(t, "42", p2.String())

	src.Set(num.NewUint(100))
	p3, err := src.CurrentPrice()
	require.NoError(t, err)
	assert.Equal(t, "100", p3.String())
}

func TestStaticSourceUnavailable(t *testing.T) {
	src := oracle.NewStaticSource(nil)
	_, err := src.CurrentPrice()
	assert.ErrorIs(t, err, oracle.ErrPriceUnavailable)
}
