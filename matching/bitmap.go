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
	"math/bits"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// ErrEmptyBook signals a best-price query against a side with no
// resting volume at all.
var ErrEmptyBook = errors.New("no orders on the book")

// MaxTick is the upper bound of the 24 bit tick space.
const MaxTick = 1<<24 - 1

// bitmapIndex is a three level hierarchical bitmap over the 24 bit
// tick space: one 256 bit summary word, 256 mid words, and one detail
// word per live (summary, mid) pair. A bit is set at all three tiers
// exactly when at least one order rests at the corresponding tick,
// which makes best-price discovery three word scans, each constant
// time via machine msb/lsb instructions.
type bitmapIndex struct {
	summary uint256.Int
	mid     [256]uint256.Int
	detail  map[uint16]*uint256.Int
	// bid sides maximize price, ask sides minimize.
	bid bool
}

func newBitmapIndex(bid bool) *bitmapIndex {
	return &bitmapIndex{
		detail: map[uint16]*uint256.Int{},
		bid:    bid,
	}
}

// splitTick encodes a tick as its three byte coordinates.
func splitTick(tick uint32) (l1, l2, l3 uint8) {
	return uint8(tick >> 16), uint8(tick >> 8), uint8(tick)
}

func joinTick(l1, l2, l3 uint8) uint32 {
	return uint32(l1)<<16 | uint32(l2)<<8 | uint32(l3)
}

func wordBitSet(w *uint256.Int, i uint8) bool {
	return w[i>>6]&(1<<(i&63)) != 0
}

func setWordBit(w *uint256.Int, i uint8) {
	w[i>>6] |= 1 << (i & 63)
}

func clearWordBit(w *uint256.Int, i uint8) {
	w[i>>6] &^= 1 << (i & 63)
}

// msbWord returns the index of the most significant set bit. The word
// must not be zero.
func msbWord(w *uint256.Int) uint8 {
	for i := 3; i >= 0; i-- {
		if w[i] != 0 {
			return uint8(i<<6 + 63 - bits.LeadingZeros64(w[i]))
		}
	}
	return 0
}

// lsbWord returns the index of the least significant set bit. The word
// must not be zero.
func lsbWord(w *uint256.Int) uint8 {
	for i := 0; i < 4; i++ {
		if w[i] != 0 {
			return uint8(i<<6 + bits.TrailingZeros64(w[i]))
		}
	}
	return 0
}

// msbBelow returns the most significant set bit strictly below limit.
func msbBelow(w *uint256.Int, limit uint8) (uint8, bool) {
	if limit == 0 {
		return 0, false
	}
	top := int(limit) - 1
	hi := top >> 6
	for i := hi; i >= 0; i-- {
		limb := w[i]
		if i == hi {
			shift := uint(top & 63)
			if shift < 63 {
				limb &= 1<<(shift+1) - 1
			}
		}
		if limb != 0 {
			return uint8(i<<6 + 63 - bits.LeadingZeros64(limb)), true
		}
	}
	return 0, false
}

// lsbAbove returns the least significant set bit strictly above limit.
func lsbAbove(w *uint256.Int, limit uint8) (uint8, bool) {
	if limit == 255 {
		return 0, false
	}
	start := int(limit) + 1
	lo := start >> 6
	for i := lo; i < 4; i++ {
		limb := w[i]
		if i == lo {
			limb &= ^uint64(0) << uint(start&63)
		}
		if limb != 0 {
			return uint8(i<<6 + bits.TrailingZeros64(limb)), true
		}
	}
	return 0, false
}

// setBit marks a tick live, propagating bottom up. It returns true
// when this was the first live tick in its 65,536 tick block, i.e. the
// summary bit needed setting.
func (b *bitmapIndex) setBit(tick uint32) bool {
	l1, l2, l3 := splitTick(tick)
	key := uint16(l1)<<8 | uint16(l2)
	d, ok := b.detail[key]
	if !ok {
		d = &uint256.Int{}
		b.detail[key] = d
	}
	setWordBit(d, l3)
	setWordBit(&b.mid[l1], l2)
	if wordBitSet(&b.summary, l1) {
		return false
	}
	setWordBit(&b.summary, l1)
	return true
}

// clearBit marks a tick dead, clearing coarser bits only when the
// finer word went entirely zero. It returns true when the summary bit
// was cleared.
func (b *bitmapIndex) clearBit(tick uint32) bool {
	l1, l2, l3 := splitTick(tick)
	key := uint16(l1)<<8 | uint16(l2)
	d, ok := b.detail[key]
	if !ok {
		return false
	}
	clearWordBit(d, l3)
	if !d.IsZero() {
		return false
	}
	delete(b.detail, key)
	clearWordBit(&b.mid[l1], l2)
	if !b.mid[l1].IsZero() {
		return false
	}
	clearWordBit(&b.summary, l1)
	return true
}

func (b *bitmapIndex) isSet(tick uint32) bool {
	l1, l2, l3 := splitTick(tick)
	d, ok := b.detail[uint16(l1)<<8|uint16(l2)]
	return ok && wordBitSet(d, l3)
}

func (b *bitmapIndex) isEmpty() bool {
	return b.summary.IsZero()
}

// bestTick returns the best live tick for the side: highest for bids,
// lowest for asks.
func (b *bitmapIndex) bestTick() (uint32, error) {
	if b.summary.IsZero() {
		return 0, ErrEmptyBook
	}
	if b.bid {
		l1 := msbWord(&b.summary)
		l2 := msbWord(&b.mid[l1])
		l3 := msbWord(b.detail[uint16(l1)<<8|uint16(l2)])
		return joinTick(l1, l2, l3), nil
	}
	l1 := lsbWord(&b.summary)
	l2 := lsbWord(&b.mid[l1])
	l3 := lsbWord(b.detail[uint16(l1)<<8|uint16(l2)])
	return joinTick(l1, l2, l3), nil
}

// nextBest returns the best live tick strictly worse than bound:
// strictly lower for bids, strictly higher for asks. Used to walk
// price levels without mutating the index.
func (b *bitmapIndex) nextBest(bound uint32) (uint32, error) {
	l1, l2, l3 := splitTick(bound)
	if b.bid {
		if d, ok := b.detail[uint16(l1)<<8|uint16(l2)]; ok {
			if i, ok := msbBelow(d, l3); ok {
				return joinTick(l1, l2, i), nil
			}
		}
		if i2, ok := msbBelow(&b.mid[l1], l2); ok {
			l3 := msbWord(b.detail[uint16(l1)<<8|uint16(i2)])
			return joinTick(l1, i2, l3), nil
		}
		if i1, ok := msbBelow(&b.summary, l1); ok {
			i2 := msbWord(&b.mid[i1])
			l3 := msbWord(b.detail[uint16(i1)<<8|uint16(i2)])
			return joinTick(i1, i2, l3), nil
		}
		return 0, ErrEmptyBook
	}
	if d, ok := b.detail[uint16(l1)<<8|uint16(l2)]; ok {
		if i, ok := lsbAbove(d, l3); ok {
			return joinTick(l1, l2, i), nil
		}
	}
	if i2, ok := lsbAbove(&b.mid[l1], l2); ok {
		l3 := lsbWord(b.detail[uint16(l1)<<8|uint16(i2)])
		return joinTick(l1, i2, l3), nil
	}
	if i1, ok := lsbAbove(&b.summary, l1); ok {
		i2 := lsbWord(&b.mid[i1])
		l3 := lsbWord(b.detail[uint16(i1)<<8|uint16(i2)])
		return joinTick(i1, i2, l3), nil
	}
	return 0, ErrEmptyBook
}

// reset drops all live bits. The detail map is replaced rather than
// cleared in place, the mid/summary words are zeroed.
func (b *bitmapIndex) reset() {
	b.summary.Clear()
	for i := range b.mid {
		b.mid[i].Clear()
	}
	b.detail = map[uint16]*uint256.Int{}
}
