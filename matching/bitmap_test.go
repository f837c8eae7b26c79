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
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitmapEmpty(t *testing.T) {
	bm := newBitmapIndex(true)
	assert.True(t, bm.isEmpty())
	_, err := bm.bestTick()
	assert.ErrorIs(t, err, ErrEmptyBook)
}

func TestBitmapBestTickBidVsAsk(t *testing.T) {
	ticks := []uint32{5, 70_000, 123, 9_999_999, 256}

	bid := newBitmapIndex(true)
	ask := newBitmapIndex(false)
	for _, tk := range ticks {
		bid.setBit(tk)
		ask.setBit(tk)
	}

	best, err := bid.bestTick()
	require.NoError(t, err)
	assert.Equal(t, uint32(9_999_999), best)

	best, err = ask.bestTick()
	require.NoError(t, err)
	assert.Equal(t, uint32(5), best)
}

func TestBitmapClearRestoresNextBest(t *testing.T) {
	bm := newBitmapIndex(false)
	bm.setBit(100)
	bm.setBit(200)
	bm.setBit(300)

	bm.clearBit(100)
	best, err := bm.bestTick()
	require.NoError(t, err)
	assert.Equal(t, uint32(200), best)

	bm.clearBit(200)
	best, err = bm.bestTick()
	require.NoError(t, err)
	assert.Equal(t, uint32(300), best)

	bm.clearBit(300)
	assert.True(t, bm.isEmpty())
}

// ticks sharing l1/l2 coordinates exercise the word-boundary handling
// of the strict below/above scans.
func TestBitmapNextBestCrossesWords(t *testing.T) {
	bm := newBitmapIndex(true)
	// 255 and 256 sit in adjacent detail words, 65535 and 65536 in
	// adjacent mid words.
	for _, tk := range []uint32{255, 256, 65_535, 65_536} {
		bm.setBit(tk)
	}

	next, err := bm.nextBest(65_536)
	require.NoError(t, err)
	assert.Equal(t, uint32(65_535), next)

	next, err = bm.nextBest(65_535)
	require.NoError(t, err)
	assert.Equal(t, uint32(256), next)

	next, err = bm.nextBest(256)
	require.NoError(t, err)
	assert.Equal(t, uint32(255), next)

	_, err = bm.nextBest(255)
	assert.ErrorIs(t, err, ErrEmptyBook)
}

func TestBitmapAgainstSortedModel(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	bm := newBitmapIndex(true)
	model := map[uint32]struct{}{}
	for i := 0; i < 2_000; i++ {
		tk := uint32(rng.Intn(MaxTick + 1))
		if _, ok := model[tk]; ok {
			bm.clearBit(tk)
			delete(model, tk)
		} else {
			bm.setBit(tk)
			model[tk] = struct{}{}
		}
	}
	require.NotEmpty(t, model)

	sorted := make([]uint32, 0, len(model))
	for tk := range model {
		sorted = append(sorted, tk)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })

	best, err := bm.bestTick()
	require.NoError(t, err)
	assert.Equal(t, sorted[0], best)

	// walk the whole book through nextBest and compare to the model.
	for i := 1; i < len(sorted); i++ {
		best, err = bm.nextBest(best)
		require.NoError(t, err)
		require.Equal(t, sorted[i], best)
	}
	_, err = bm.nextBest(best)
	assert.ErrorIs(t, err, ErrEmptyBook)
}

func TestBitmapSetClearReportSummaryTransitions(t *testing.T) {
	bm := newBitmapIndex(false)
	assert.True(t, bm.setBit(1000))
	// same summary byte, no new summary bit.
	assert.False(t, bm.setBit(1001))
	assert.False(t, bm.clearBit(1001))
	assert.True(t, bm.clearBit(1000))
}
