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

package events

import (
	"context"

	"code.tickmarket.io/optix/types"
	"code.tickmarket.io/optix/types/num"
)

// OrderFilled is emitted once per fill. External systems reconcile
// balances purely from this stream, so it carries the signed cash
// deltas applied to both sides along with the notional price used.
type OrderFilled struct {
	*Base
	maker      string
	taker      string
	side       types.Side
	price      *num.Uint
	size       uint64
	makerDelta num.Decimal
	takerDelta num.Decimal
	fee        *num.Uint
	fromQueue  bool
}

func NewOrderFilledEvent(ctx context.Context, maker, taker string, side types.Side, price *num.Uint, size uint64, makerDelta, takerDelta num.Decimal, fee *num.Uint, fromQueue bool) *OrderFilled {
	return &OrderFilled{
		Base:       newBase(ctx, OrderFilledEvent),
		maker:      maker,
		taker:      taker,
		side:       side,
		price:      price.Clone(),
		size:       size,
		makerDelta: makerDelta,
		takerDelta: takerDelta,
		fee:        fee.Clone(),
		fromQueue:  fromQueue,
	}
}

func (f OrderFilled) Maker() string {
	return f.maker
}

func (f OrderFilled) Taker() string {
	return f.taker
}

// Side is the side of the aggressing (taker) party.
func (f OrderFilled) Side() types.Side {
	return f.side
}

func (f OrderFilled) Price() *num.Uint {
	return f.price.Clone()
}

func (f OrderFilled) Size() uint64 {
	return f.size
}

// MakerDelta is the signed cash movement applied to the maker balance,
// fees included.
func (f OrderFilled) MakerDelta() num.Decimal {
	return f.makerDelta
}

// TakerDelta is the signed cash movement applied to the taker balance,
// fees included.
func (f OrderFilled) TakerDelta() num.Decimal {
	return f.takerDelta
}

// Fee is the net amount routed to the protocol fee sink.
func (f OrderFilled) Fee() *num.Uint {
	return f.fee.Clone()
}

// FromQueue returns true when the resting party was a queued taker
// rather than a maker on the book.
func (f OrderFilled) FromQueue() bool {
	return f.fromQueue
}
