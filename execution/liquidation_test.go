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

package execution_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.tickmarket.io/optix/types"
	"code.tickmarket.io/optix/types/num"
)

// shortedMarket sets up: maker resting CALL_SELL 10 @ tick 5, shorty
// short 10 calls sold to buyer at tick 1, plus a resting PUT_SELL 5.
func shortedMarket(t *testing.T) *testMarket {
	t.Helper()
	m := getTestMarket(t, testConfig())
	m.startCycle(t)
	m.deposit(t, "maker", 1_000_000)
	m.deposit(t, "shorty", 1_000)
	m.deposit(t, "buyer", 100_000)

	_, err := m.PlaceOrder(m.ctx, "maker", types.SideCallSell, 10, num.NewUint(5_000))
	require.NoError(t, err)
	_, err = m.PlaceOrder(m.ctx, "shorty", types.SideCallSell, 10, num.NewUint(1_000))
	require.NoError(t, err)
	_, err = m.PlaceOrder(m.ctx, "shorty", types.SidePutSell, 5, num.NewUint(7_000))
	require.NoError(t, err)
	// sweeps the cheapest ask, which is shorty's.
	_, err = m.PlaceOrder(m.ctx, "buyer", types.SideCallBuy, 10, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(10), m.account(t, "shorty").Positions[types.LegCall].Short)
	return m
}

func TestLiquidateSolventParty(t *testing.T) {
	m := shortedMarket(t)

	// shorty holds 11000 against 750 required margin.
	assert.ErrorIs(t, m.Liquidate(m.ctx, "keeper", "shorty"), types.ErrStillSolvent)

	liq, err := m.IsLiquidatable("shorty")
	require.NoError(t, err)
	assert.False(t, liq)
}

func TestLiquidateClosesOutShort(t *testing.T) {
	m := shortedMarket(t)

	// margin jumps to 2000 per net short contract, far beyond the
	// 11000 balance.
	m.price.Set(num.NewUint(2_000_000))
	liq, err := m.IsLiquidatable("shorty")
	require.NoError(t, err)
	require.True(t, liq)

	require.NoError(t, m.Liquidate(m.ctx, "keeper", "shorty"))

	acc := m.account(t, "shorty")
	// the whole 11000 balance funds the closing buy, the 39000
	// shortfall became bad debt. The 2000 fee is only recorded as
	// owed; nothing reaches the sink before settlement.
	assert.True(t, acc.Balance.IsZero())
	assert.Equal(t, "2000", acc.LiquidationFeeOwed.String())
	assert.True(t, m.col.FeeSink().IsZero())
	assert.Equal(t, "39000", m.col.BadDebt().String())

	// the resting put was force cancelled, the short leg bought back.
	assert.True(t, m.Book().SideEmpty(types.SidePutSell))
	assert.Zero(t, acc.Positions[types.LegPut].PendingShort)
	assert.Equal(t, uint64(10), acc.Positions[types.LegCall].Long)
	assert.Equal(t, uint64(10), acc.Positions[types.LegCall].Short)
	// flat again, the flag lifted with the closing fill.
	assert.False(t, acc.LiquidationQueued)
	assert.Equal(t, "1050000", m.account(t, "maker").Balance.String())

	// created money is exactly the bad debt, until settlement claws
	// it back from the winners.
	total := num.Sum(m.col.FeeSink(),
		m.account(t, "maker").Balance,
		m.account(t, "shorty").Balance,
		m.account(t, "buyer").Balance,
	)
	expected := m.deposits.Clone().AddSum(m.col.BadDebt())
	assert.Equal(t, expected.String(), total.String())

	// a closed-out party is solvent again.
	assert.ErrorIs(t, m.Liquidate(m.ctx, "keeper", "shorty"), types.ErrStillSolvent)
}

func TestLiquidationQueuesWhenBookIsEmpty(t *testing.T) {
	m := getTestMarket(t, testConfig())
	m.startCycle(t)
	m.deposit(t, "buyer", 200_000)
	m.deposit(t, "shorty", 1_000)

	_, err := m.PlaceOrder(m.ctx, "buyer", types.SideCallBuy, 10, num.NewUint(10_000))
	require.NoError(t, err)
	_, err = m.PlaceOrder(m.ctx, "shorty", types.SideCallSell, 10, nil)
	require.NoError(t, err)

	m.price.Set(num.NewUint(20_000_000))
	require.NoError(t, m.Liquidate(m.ctx, "keeper", "shorty"))

	acc := m.account(t, "shorty")
	// the fee stays a book entry until settlement collects it.
	assert.Equal(t, "20000", acc.LiquidationFeeOwed.String())
	assert.True(t, m.col.FeeSink().IsZero())
	// no asks to buy from: the closing order is parked on the taker
	// queue and the flag stays up.
	assert.True(t, acc.LiquidationQueued)
	assert.Equal(t, uint64(10), m.Book().Queue(types.SideCallBuy).PendingVolume())
	assert.Equal(t, uint64(10), acc.Positions[types.LegCall].PendingLong)

	// a flagged party cannot trade on its own.
	_, err = m.PlaceOrder(m.ctx, "shorty", types.SideCallBuy, 1, nil)
	assert.ErrorIs(t, err, types.ErrInsufficientBalance)

	// liquidity arrives: an incoming sell drains the queued closing
	// order and the account comes back flat.
	m.deposit(t, "maker", 1_000_000)
	_, err = m.PlaceOrder(m.ctx, "maker", types.SideCallSell, 10, num.NewUint(5_000))
	require.NoError(t, err)

	assert.False(t, acc.LiquidationQueued)
	assert.Equal(t, uint64(10), acc.Positions[types.LegCall].Long)
	assert.True(t, m.col.BadDebt().IsZero())
}

func TestSocialLossEndToEnd(t *testing.T) {
	m := shortedMarket(t)

	m.price.Set(num.NewUint(2_000_000))
	require.NoError(t, m.Liquidate(m.ctx, "keeper", "shorty"))
	require.Equal(t, "39000", m.col.BadDebt().String())

	m.clock.advance(2 * time.Hour)
	done, err := m.SettleCycle(m.ctx, 0)
	require.NoError(t, err)
	require.True(t, done)

	// buyer's intrinsic win is 195000 but the cycle's bad debt of
	// 39000 is socialised out of it.
	assert.Equal(t, "246000", m.account(t, "buyer").Balance.String())
	assert.Equal(t, "855000", m.account(t, "maker").Balance.String())
	assert.True(t, m.account(t, "shorty").Balance.IsZero())
	assert.True(t, m.col.BadDebt().IsZero())

	// after the haircut the books balance exactly again.
	m.assertConserved(t, "maker", "shorty", "buyer")

	_, err = m.StartCycle(m.ctx)
	assert.NoError(t, err)
}
