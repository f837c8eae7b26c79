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
	"sort"

	"code.tickmarket.io/optix/types"
)

// MakerOrder is a resting limit order, a node in its price level's
// FIFO list. Nodes live in the book's arena, linked by id, with 0
// meaning no neighbour.
type MakerOrder struct {
	ID        uint64
	Party     string
	Side      types.Side
	Tick      uint32
	Remaining uint64

	prev, next uint64
}

// Export returns the external view of the order.
func (o *MakerOrder) Export() types.Order {
	return types.Order{
		ID:        o.ID,
		Party:     o.Party,
		Side:      o.Side,
		Tick:      o.Tick,
		Remaining: o.Remaining,
	}
}

// PriceLevel aggregates the resting volume at one (tick, side) key and
// anchors the FIFO list of maker orders at that price. A level exists
// exactly while its volume is nonzero.
type PriceLevel struct {
	tick   uint32
	volume uint64
	head   uint64
	tail   uint64
}

// Tick returns the price tick of the level.
func (l *PriceLevel) Tick() uint32 {
	return l.tick
}

// Volume returns the aggregate resting size at the level.
func (l *PriceLevel) Volume() uint64 {
	return l.volume
}

// arena owns every live maker order, keyed by an auto incrementing id
// that is never reused, not even across cycles, so order ids stay
// unique in the event stream. The per-party index bounds force-cancel
// sweeps during liquidation.
type arena struct {
	orders  map[uint64]*MakerOrder
	byParty map[string]map[uint64]struct{}
	lastID  uint64
}

func newArena() *arena {
	return &arena{
		orders:  map[uint64]*MakerOrder{},
		byParty: map[string]map[uint64]struct{}{},
	}
}

func (a *arena) insert(party string, side types.Side, tick uint32, size uint64) *MakerOrder {
	a.lastID++
	o := &MakerOrder{
		ID:        a.lastID,
		Party:     party,
		Side:      side,
		Tick:      tick,
		Remaining: size,
	}
	a.orders[o.ID] = o
	idx, ok := a.byParty[party]
	if !ok {
		idx = map[uint64]struct{}{}
		a.byParty[party] = idx
	}
	idx[o.ID] = struct{}{}
	return o
}

func (a *arena) get(id uint64) *MakerOrder {
	return a.orders[id]
}

func (a *arena) remove(o *MakerOrder) {
	delete(a.orders, o.ID)
	if idx, ok := a.byParty[o.Party]; ok {
		delete(idx, o.ID)
		if len(idx) == 0 {
			delete(a.byParty, o.Party)
		}
	}
}

func (a *arena) partyCount(party string) uint64 {
	return uint64(len(a.byParty[party]))
}

// partyOrders returns the party's resting order ids in ascending id
// order, so force-cancels are deterministic.
func (a *arena) partyOrders(party string) []uint64 {
	idx := a.byParty[party]
	if len(idx) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(idx))
	for id := range idx {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// reset drops all orders but keeps the id counter running.
func (a *arena) reset() {
	a.orders = map[uint64]*MakerOrder{}
	a.byParty = map[string]map[uint64]struct{}{}
}
