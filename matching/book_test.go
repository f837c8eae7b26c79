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

package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.tickmarket.io/optix/logging"
	"code.tickmarket.io/optix/types"
)

func getTestBook(t *testing.T) *OrderBook {
	t.Helper()
	return NewBook(logging.NewTestLogger(), NewDefaultConfig())
}

func TestBookAddAndBestTick(t *testing.T) {
	book := getTestBook(t)

	_, err := book.BestTick(types.SideCallSell)
	assert.ErrorIs(t, err, ErrEmptyBook)

	_, err = book.AddOrder("alice", types.SideCallSell, 12, 100)
	require.NoError(t, err)
	_, err = book.AddOrder("bob", types.SideCallSell, 10, 100)
	require.NoError(t, err)
	_, err = book.AddOrder("carol", types.SideCallSell, 11, 100)
	require.NoError(t, err)

	// asks: best is the lowest tick.
	best, err := book.BestTick(types.SideCallSell)
	require.NoError(t, err)
	assert.Equal(t, uint32(10), best)

	next, err := book.NextBestTick(types.SideCallSell, best)
	require.NoError(t, err)
	assert.Equal(t, uint32(11), next)

	// bids on the same leg are independent and maximize.
	_, err = book.AddOrder("dave", types.SideCallBuy, 7, 50)
	require.NoError(t, err)
	best, err = book.BestTick(types.SideCallBuy)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), best)
}

func TestBookFIFOWithinLevel(t *testing.T) {
	book := getTestBook(t)

	first, err := book.AddOrder("alice", types.SidePutSell, 42, 10)
	require.NoError(t, err)
	second, err := book.AddOrder("bob", types.SidePutSell, 42, 20)
	require.NoError(t, err)
	third, err := book.AddOrder("alice", types.SidePutSell, 42, 30)
	require.NoError(t, err)

	assert.Equal(t, uint64(60), book.VolumeAtTick(types.SidePutSell, 42))

	id := book.FirstAtTick(types.SidePutSell, 42)
	assert.Equal(t, first.ID, id)
	id = book.NextInLevel(id)
	assert.Equal(t, second.ID, id)
	id = book.NextInLevel(id)
	assert.Equal(t, third.ID, id)
	assert.Zero(t, book.NextInLevel(id))

	// removing the middle order keeps the chain intact.
	_, err = book.RemoveOrder(second.ID)
	require.NoError(t, err)
	id = book.FirstAtTick(types.SidePutSell, 42)
	assert.Equal(t, first.ID, id)
	assert.Equal(t, third.ID, book.NextInLevel(id))
	assert.Equal(t, uint64(40), book.VolumeAtTick(types.SidePutSell, 42))
}

func TestBookRemoveWithDebugLoggingEnabled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Level.Level = logging.DebugLevel
	cfg.LogRemovedOrdersDebug = true
	book := NewBook(logging.NewTestLogger(), cfg)

	o, err := book.AddOrder("alice", types.SideCallSell, 10, 100)
	require.NoError(t, err)
	_, err = book.RemoveOrder(o.ID)
	require.NoError(t, err)
	assert.True(t, book.SideEmpty(types.SideCallSell))
}

func TestBookConsume(t *testing.T) {
	book := getTestBook(t)

	o, err := book.AddOrder("alice", types.SideCallSell, 10, 100)
	require.NoError(t, err)

	require.NoError(t, book.Consume(o.ID, 30))
	got, err := book.Order(o.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(70), got.Remaining)
	assert.Equal(t, uint64(70), book.VolumeAtTick(types.SideCallSell, 10))

	// full consumption unlinks the order and clears the level.
	require.NoError(t, book.Consume(o.ID, 70))
	_, err = book.Order(o.ID)
	assert.ErrorIs(t, err, types.ErrOrderNotFound)
	assert.True(t, book.SideEmpty(types.SideCallSell))
}

func TestBookCrosses(t *testing.T) {
	book := getTestBook(t)

	_, err := book.AddOrder("alice", types.SideCallSell, 20, 10)
	require.NoError(t, err)

	assert.True(t, book.Crosses(types.SideCallBuy, 20))
	assert.True(t, book.Crosses(types.SideCallBuy, 25))
	assert.False(t, book.Crosses(types.SideCallBuy, 19))
	// no resting bids, a sell cannot cross.
	assert.False(t, book.Crosses(types.SideCallSell, 1))
}

func TestBookMaxOpenOrders(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.MaxOpenOrders = 2
	book := NewBook(logging.NewTestLogger(), cfg)

	_, err := book.AddOrder("alice", types.SideCallSell, 1, 1)
	require.NoError(t, err)
	_, err = book.AddOrder("alice", types.SidePutBuy, 2, 1)
	require.NoError(t, err)
	_, err = book.AddOrder("alice", types.SideCallSell, 3, 1)
	assert.ErrorIs(t, err, types.ErrMaxOrdersReached)

	// other parties are unaffected.
	_, err = book.AddOrder("bob", types.SideCallSell, 3, 1)
	assert.NoError(t, err)
}

func TestBookPartyOrders(t *testing.T) {
	book := getTestBook(t)

	a, _ := book.AddOrder("alice", types.SideCallSell, 5, 1)
	b, _ := book.AddOrder("bob", types.SideCallSell, 5, 1)
	c, _ := book.AddOrder("alice", types.SidePutSell, 9, 1)

	assert.Equal(t, uint64(2), book.PartyOrderCount("alice"))
	assert.Equal(t, []uint64{a.ID, c.ID}, book.PartyOrders("alice"))
	assert.Equal(t, []uint64{b.ID}, book.PartyOrders("bob"))
}

func TestBookResetKeepsIDSequence(t *testing.T) {
	book := getTestBook(t)

	o, err := book.AddOrder("alice", types.SideCallSell, 5, 1)
	require.NoError(t, err)
	book.Queue(types.SideCallBuy).Push("bob", 10, book.NextOrderID())

	book.Reset()
	assert.True(t, book.SideEmpty(types.SideCallSell))
	assert.Zero(t, book.Queue(types.SideCallBuy).PendingVolume())
	assert.Zero(t, book.PartyOrderCount("alice"))

	// ids stay unique across cycles.
	o2, err := book.AddOrder("alice", types.SideCallSell, 5, 1)
	require.NoError(t, err)
	assert.Greater(t, o2.ID, o.ID)
}
