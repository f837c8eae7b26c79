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
)

func TestTakerQueueConsumeAdvancesHead(t *testing.T) {
	q := newTakerQueue()
	q.Push("alice", 100, 1)
	q.Push("bob", 50, 2)

	assert.Equal(t, 0, q.Head())
	assert.Equal(t, uint64(150), q.PendingVolume())

	q.Consume(0, 40)
	assert.Equal(t, 0, q.Head())
	assert.Equal(t, uint64(60), q.Entry(0).Remaining)

	q.Consume(0, 60)
	assert.Equal(t, 1, q.Head())
	assert.Equal(t, uint64(50), q.PendingVolume())
}

func TestTakerQueueZeroPartyPreservesOrdering(t *testing.T) {
	q := newTakerQueue()
	q.Push("alice", 100, 1)
	q.Push("bob", 50, 2)
	q.Push("alice", 25, 3)
	q.Push("carol", 10, 4)

	wiped := q.ZeroParty("alice")
	assert.Equal(t, uint64(125), wiped)
	// alice led the queue, the head skips her dead entry.
	assert.Equal(t, 1, q.Head())
	assert.Equal(t, "bob", q.Entry(q.Head()).Party)
	assert.Equal(t, uint64(60), q.PendingVolume())

	// zeroing again is a no-op.
	assert.Zero(t, q.ZeroParty("alice"))
}

func TestTakerQueueReset(t *testing.T) {
	q := newTakerQueue()
	q.Push("alice", 100, 1)
	q.Consume(0, 100)
	q.Push("bob", 5, 2)

	q.Reset()
	assert.Zero(t, q.Len())
	assert.Zero(t, q.Head())
	assert.Zero(t, q.PendingVolume())
}
