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

// QueueEntry is the unfilled remainder of a market order waiting for
// liquidity. Entries are never physically removed: consumption zeroes
// them in place and the queue's head cursor skips past exhausted ones,
// preserving ordering for everyone behind without reindexing.
type QueueEntry struct {
	Party     string
	Remaining uint64
	// OrderID is the taker order id the entry originated from.
	OrderID uint64
}

// TakerQueue is an append-only sequence of queued taker entries with a
// monotonic consumption cursor. One exists per side.
type TakerQueue struct {
	entries []QueueEntry
	head    int
}

func newTakerQueue() *TakerQueue {
	return &TakerQueue{}
}

// Push appends an entry at the tail.
func (q *TakerQueue) Push(party string, remaining, orderID uint64) {
	q.entries = append(q.entries, QueueEntry{
		Party:     party,
		Remaining: remaining,
		OrderID:   orderID,
	})
}

// Head returns the cursor position.
func (q *TakerQueue) Head() int {
	return q.head
}

// Len returns the total entry count, consumed entries included.
func (q *TakerQueue) Len() int {
	return len(q.entries)
}

// Entry returns the entry at position i.
func (q *TakerQueue) Entry(i int) QueueEntry {
	return q.entries[i]
}

// Consume removes qty from the entry at position i, then advances the
// head cursor past any leading exhausted entries.
func (q *TakerQueue) Consume(i int, qty uint64) {
	q.entries[i].Remaining -= qty
	q.advance()
}

// ZeroParty zeroes every live entry owned by the party, returning the
// total size wiped. Entries stay in place so ordering is preserved for
// the parties behind them.
func (q *TakerQueue) ZeroParty(party string) uint64 {
	var wiped uint64
	for i := q.head; i < len(q.entries); i++ {
		if q.entries[i].Party == party {
			wiped += q.entries[i].Remaining
			q.entries[i].Remaining = 0
		}
	}
	q.advance()
	return wiped
}

// PendingVolume returns the total live size waiting in the queue.
func (q *TakerQueue) PendingVolume() uint64 {
	var total uint64
	for i := q.head; i < len(q.entries); i++ {
		total += q.entries[i].Remaining
	}
	return total
}

func (q *TakerQueue) advance() {
	for q.head < len(q.entries) && q.entries[q.head].Remaining == 0 {
		q.head++
	}
}

// Reset drops all entries and rewinds the cursor for the next cycle.
func (q *TakerQueue) Reset() {
	q.entries = q.entries[:0]
	q.head = 0
}
