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

	"code.tickmarket.io/optix/types/num"
)

// LiquidationStarted is emitted when an undercollateralized party is
// put through forced close-out.
type LiquidationStarted struct {
	*Base
	party          string
	by             string
	netShortCalls  uint64
	netShortPuts   uint64
	fee            *num.Uint
	requiredMargin *num.Uint
	balance        *num.Uint
}

func NewLiquidationStartedEvent(ctx context.Context, party, by string, netShortCalls, netShortPuts uint64, fee, requiredMargin, balance *num.Uint) *LiquidationStarted {
	return &LiquidationStarted{
		Base:           newBase(ctx, LiquidationStartedEvent),
		party:          party,
		by:             by,
		netShortCalls:  netShortCalls,
		netShortPuts:   netShortPuts,
		fee:            fee.Clone(),
		requiredMargin: requiredMargin.Clone(),
		balance:        balance.Clone(),
	}
}

func (l LiquidationStarted) Party() string {
	return l.party
}

// By is the party that triggered the liquidation.
func (l LiquidationStarted) By() string {
	return l.by
}

func (l LiquidationStarted) NetShortCalls() uint64 {
	return l.netShortCalls
}

func (l LiquidationStarted) NetShortPuts() uint64 {
	return l.netShortPuts
}

// Fee is the liquidation fee assessed, owed but not yet collected.
func (l LiquidationStarted) Fee() *num.Uint {
	return l.fee.Clone()
}

func (l LiquidationStarted) RequiredMargin() *num.Uint {
	return l.requiredMargin.Clone()
}

func (l LiquidationStarted) Balance() *num.Uint {
	return l.balance.Clone()
}

// LiquidationFeePaid is emitted when an owed liquidation fee is
// (partially) collected during a settlement pass.
type LiquidationFeePaid struct {
	*Base
	party     string
	paid      *num.Uint
	remaining *num.Uint
}

func NewLiquidationFeePaidEvent(ctx context.Context, party string, paid, remaining *num.Uint) *LiquidationFeePaid {
	return &LiquidationFeePaid{
		Base:      newBase(ctx, LiquidationFeePaidEvent),
		party:     party,
		paid:      paid.Clone(),
		remaining: remaining.Clone(),
	}
}

func (l LiquidationFeePaid) Party() string {
	return l.party
}

func (l LiquidationFeePaid) Paid() *num.Uint {
	return l.paid.Clone()
}

// Remaining is the still-owed portion carried forward.
func (l LiquidationFeePaid) Remaining() *num.Uint {
	return l.remaining.Clone()
}
