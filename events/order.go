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
)

// OrderPlaced is emitted when a limit order is accepted on the book.
type OrderPlaced struct {
	*Base
	order types.Order
}

func NewOrderPlacedEvent(ctx context.Context, order types.Order) *OrderPlaced {
	return &OrderPlaced{
		Base:  newBase(ctx, OrderPlacedEvent),
		order: order,
	}
}

func (o OrderPlaced) Order() types.Order {
	return o.order
}

// OrderCancelled is emitted when a resting order is cancelled, either
// by its owner or force-cancelled during liquidation.
type OrderCancelled struct {
	*Base
	order  types.Order
	forced bool
}

func NewOrderCancelledEvent(ctx context.Context, order types.Order, forced bool) *OrderCancelled {
	return &OrderCancelled{
		Base:   newBase(ctx, OrderCancelledEvent),
		order:  order,
		forced: forced,
	}
}

func (o OrderCancelled) Order() types.Order {
	return o.order
}

// Forced returns true when the cancel came from the liquidation flow
// rather than the order owner.
func (o OrderCancelled) Forced() bool {
	return o.forced
}

// TakerQueued is emitted when the unfilled remainder of a market order
// is parked on the taker queue for its side.
type TakerQueued struct {
	*Base
	party     string
	side      types.Side
	remaining uint64
	orderID   uint64
}

func NewTakerQueuedEvent(ctx context.Context, party string, side types.Side, remaining, orderID uint64) *TakerQueued {
	return &TakerQueued{
		Base:      newBase(ctx, TakerQueuedEvent),
		party:     party,
		side:      side,
		remaining: remaining,
		orderID:   orderID,
	}
}

func (t TakerQueued) Party() string {
	return t.party
}

func (t TakerQueued) Side() types.Side {
	return t.side
}

func (t TakerQueued) Remaining() uint64 {
	return t.remaining
}

func (t TakerQueued) OrderID() uint64 {
	return t.orderID
}
