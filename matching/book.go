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
	"code.tickmarket.io/optix/logging"
	"code.tickmarket.io/optix/types"
)

// bookSide holds the price levels of one trading side, indexed by the
// side's bitmap.
type bookSide struct {
	side   types.Side
	bitmap *bitmapIndex
	levels map[uint32]*PriceLevel
}

func newBookSide(side types.Side) *bookSide {
	return &bookSide{
		side:   side,
		bitmap: newBitmapIndex(side.IsBid()),
		levels: map[uint32]*PriceLevel{},
	}
}

// OrderBook is the per-cycle collection of price levels and taker
// queues for all four sides, with all maker orders held in one shared
// arena. It is purely structural: no account state, no fees, the
// execution engine drives it.
type OrderBook struct {
	log *logging.Logger
	cfg Config

	sides  [types.NumSides]*bookSide
	queues [types.NumSides]*TakerQueue
	arena  *arena
}

// NewBook instantiates a new order book.
func NewBook(log *logging.Logger, cfg Config) *OrderBook {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	b := &OrderBook{
		log:   log,
		cfg:   cfg,
		arena: newArena(),
	}
	for i := 0; i < types.NumSides; i++ {
		b.sides[i] = newBookSide(types.SideFromIndex(i))
		b.queues[i] = newTakerQueue()
	}
	return b
}

// ReloadConf updates the internal configuration of the order book.
func (b *OrderBook) ReloadConf(cfg Config) {
	b.log.Info("reloading configuration")
	if b.log.GetLevel() != cfg.Level.Get() {
		b.log.Info("updating log level",
			logging.String("old", b.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		b.log.SetLevel(cfg.Level.Get())
	}
	b.cfg = cfg
}

// AddOrder rests a maker order at the given tick, creating the price
// level (and setting the bitmap bits bottom up) if it is the first
// order there, and linking the order at the tail of the level's FIFO.
func (b *OrderBook) AddOrder(party string, side types.Side, tick uint32, size uint64) (*MakerOrder, error) {
	if b.arena.partyCount(party) >= b.cfg.MaxOpenOrders {
		return nil, types.ErrMaxOrdersReached
	}
	s := b.sides[side.Index()]
	lvl, ok := s.levels[tick]
	if !ok {
		lvl = &PriceLevel{tick: tick}
		s.levels[tick] = lvl
		s.bitmap.setBit(tick)
	}
	o := b.arena.insert(party, side, tick, size)
	if lvl.tail == 0 {
		lvl.head = o.ID
	} else {
		tail := b.arena.get(lvl.tail)
		tail.next = o.ID
		o.prev = lvl.tail
	}
	lvl.tail = o.ID
	lvl.volume += size
	return o, nil
}

// Order returns the resting maker order with the given id.
func (b *OrderBook) Order(id uint64) (*MakerOrder, error) {
	o := b.arena.get(id)
	if o == nil {
		return nil, types.ErrOrderNotFound
	}
	return o, nil
}

// RemoveOrder unlinks a maker order from its level and deletes it,
// clearing the level and its bitmap bits if it was the last one.
func (b *OrderBook) RemoveOrder(id uint64) (*MakerOrder, error) {
	o := b.arena.get(id)
	if o == nil {
		return nil, types.ErrOrderNotFound
	}
	b.unlink(o)
	if bool(b.cfg.LogRemovedOrdersDebug) && b.log.IsDebug() {
		b.log.Debug("removed order",
			logging.Uint64("order-id", o.ID),
			logging.String("party", o.Party),
			logging.String("side", o.Side.String()),
		)
	}
	return o, nil
}

// Consume removes qty from a resting order and its level's volume,
// deleting the order when fully consumed.
func (b *OrderBook) Consume(id uint64, qty uint64) error {
	o := b.arena.get(id)
	if o == nil {
		return types.ErrOrderNotFound
	}
	if qty > o.Remaining {
		return types.ErrInvalidAmount
	}
	o.Remaining -= qty
	s := b.sides[o.Side.Index()]
	lvl := s.levels[o.Tick]
	lvl.volume -= qty
	if o.Remaining == 0 {
		b.unlink(o)
	}
	return nil
}

// unlink removes the order from its level's FIFO and the arena, and
// reclaims the level if it went empty.
func (b *OrderBook) unlink(o *MakerOrder) {
	s := b.sides[o.Side.Index()]
	lvl := s.levels[o.Tick]
	if o.prev != 0 {
		b.arena.get(o.prev).next = o.next
	} else {
		lvl.head = o.next
	}
	if o.next != 0 {
		b.arena.get(o.next).prev = o.prev
	} else {
		lvl.tail = o.prev
	}
	lvl.volume -= o.Remaining
	b.arena.remove(o)
	if lvl.volume == 0 {
		delete(s.levels, o.Tick)
		s.bitmap.clearBit(o.Tick)
	}
}

// BestTick returns the best live tick on the side: highest for bids,
// lowest for asks. ErrEmptyBook when the side has no resting volume.
func (b *OrderBook) BestTick(side types.Side) (uint32, error) {
	return b.sides[side.Index()].bitmap.bestTick()
}

// NextBestTick returns the best live tick on the side strictly worse
// than bound. Used for read-only walks across levels.
func (b *OrderBook) NextBestTick(side types.Side, bound uint32) (uint32, error) {
	return b.sides[side.Index()].bitmap.nextBest(bound)
}

// SideEmpty reports whether the side has no resting volume at all.
func (b *OrderBook) SideEmpty(side types.Side) bool {
	return b.sides[side.Index()].bitmap.isEmpty()
}

// Crosses reports whether a limit order at the given tick would cross
// the opposite side's best price.
func (b *OrderBook) Crosses(side types.Side, tick uint32) bool {
	best, err := b.BestTick(side.Opposite())
	if err != nil {
		return false
	}
	if side.IsBid() {
		return tick >= best
	}
	return tick <= best
}

// FirstAtTick returns the id of the maker order at the head of the
// level's FIFO, or 0 when the level does not exist.
func (b *OrderBook) FirstAtTick(side types.Side, tick uint32) uint64 {
	lvl, ok := b.sides[side.Index()].levels[tick]
	if !ok {
		return 0
	}
	return lvl.head
}

// NextInLevel returns the id of the order after the given one in its
// level's FIFO, or 0 at the tail.
func (b *OrderBook) NextInLevel(id uint64) uint64 {
	o := b.arena.get(id)
	if o == nil {
		return 0
	}
	return o.next
}

// VolumeAtTick returns the aggregate resting volume at (side, tick).
func (b *OrderBook) VolumeAtTick(side types.Side, tick uint32) uint64 {
	lvl, ok := b.sides[side.Index()].levels[tick]
	if !ok {
		return 0
	}
	return lvl.volume
}

// PartyOrderCount returns the number of maker orders the party has
// resting across all sides.
func (b *OrderBook) PartyOrderCount(party string) uint64 {
	return b.arena.partyCount(party)
}

// PartyOrders returns the party's resting order ids, ascending.
func (b *OrderBook) PartyOrders(party string) []uint64 {
	return b.arena.partyOrders(party)
}

// Queue returns the taker queue for the side.
func (b *OrderBook) Queue(side types.Side) *TakerQueue {
	return b.queues[side.Index()]
}

// NextOrderID draws the next id from the book's order id sequence.
// Queued taker orders share the sequence with maker orders so an id
// identifies an order regardless of where it ended up.
func (b *OrderBook) NextOrderID() uint64 {
	b.arena.lastID++
	return b.arena.lastID
}

// Reset logically clears all per-cycle state: levels, bitmaps, arena
// entries and taker queues. The maker order id sequence keeps running
// so ids stay unique across cycles.
func (b *OrderBook) Reset() {
	for i := 0; i < types.NumSides; i++ {
		b.sides[i].bitmap.reset()
		b.sides[i].levels = map[uint32]*PriceLevel{}
		b.queues[i].Reset()
	}
	b.arena.reset()
}
