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
	"time"

	"code.tickmarket.io/optix/types/num"
)

// CycleStarted is emitted when a new trading cycle opens.
type CycleStarted struct {
	*Base
	expiry time.Time
	strike *num.Uint
}

func NewCycleStartedEvent(ctx context.Context, expiry time.Time, strike *num.Uint) *CycleStarted {
	return &CycleStarted{
		Base:   newBase(ctx, CycleStartedEvent),
		expiry: expiry,
		strike: strike.Clone(),
	}
}

func (c CycleStarted) Expiry() time.Time {
	return c.expiry
}

func (c CycleStarted) Strike() *num.Uint {
	return c.strike.Clone()
}

// CycleSettled is emitted once the settlement run for a cycle completed.
type CycleSettled struct {
	*Base
	expiry          time.Time
	settlementPrice *num.Uint
	badDebt         *num.Uint
	lossRatio       num.Decimal
}

func NewCycleSettledEvent(ctx context.Context, expiry time.Time, settlementPrice, badDebt *num.Uint, lossRatio num.Decimal) *CycleSettled {
	return &CycleSettled{
		Base:            newBase(ctx, CycleSettledEvent),
		expiry:          expiry,
		settlementPrice: settlementPrice.Clone(),
		badDebt:         badDebt.Clone(),
		lossRatio:       lossRatio,
	}
}

func (c CycleSettled) Expiry() time.Time {
	return c.expiry
}

func (c CycleSettled) SettlementPrice() *num.Uint {
	return c.settlementPrice.Clone()
}

func (c CycleSettled) BadDebt() *num.Uint {
	return c.badDebt.Clone()
}

// LossRatio is the proportional haircut applied to every winner of the
// cycle, in [0, 1].
func (c CycleSettled) LossRatio() num.Decimal {
	return c.lossRatio
}
