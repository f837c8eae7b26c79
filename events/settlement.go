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

// TraderSettled is emitted in settlement phase 1 with the intrinsic
// PnL computed for one trader. The amount is the magnitude, Loss marks
// the sign. For losers Paid carries what was actually debited, which
// is lower than Amount when the account could not fully pay.
type TraderSettled struct {
	*Base
	party  string
	amount *num.Uint
	loss   bool
	paid   *num.Uint
}

func NewTraderSettledEvent(ctx context.Context, party string, amount *num.Uint, loss bool, paid *num.Uint) *TraderSettled {
	return &TraderSettled{
		Base:   newBase(ctx, TraderSettledEvent),
		party:  party,
		amount: amount.Clone(),
		loss:   loss,
		paid:   paid.Clone(),
	}
}

func (t TraderSettled) Party() string {
	return t.party
}

func (t TraderSettled) Amount() *num.Uint {
	return t.amount.Clone()
}

func (t TraderSettled) Loss() bool {
	return t.loss
}

func (t TraderSettled) Paid() *num.Uint {
	return t.paid.Clone()
}

// LossSocialization is emitted in settlement phase 2 for each winner
// whose payout was reduced because losers could not fully cover.
type LossSocialization struct {
	*Base
	party    string
	entitled *num.Uint
	paid     *num.Uint
}

func NewLossSocializationEvent(ctx context.Context, party string, entitled, paid *num.Uint) *LossSocialization {
	return &LossSocialization{
		Base:     newBase(ctx, LossSocializationEvent),
		party:    party,
		entitled: entitled.Clone(),
		paid:     paid.Clone(),
	}
}

func (l LossSocialization) Party() string {
	return l.party
}

// Entitled is the full intrinsic PnL the party earned.
func (l LossSocialization) Entitled() *num.Uint {
	return l.entitled.Clone()
}

// Paid is the haircut amount actually credited.
func (l LossSocialization) Paid() *num.Uint {
	return l.paid.Clone()
}

// AmountLost is the difference between entitlement and payout.
func (l LossSocialization) AmountLost() *num.Uint {
	return num.UintZero().Sub(l.entitled, l.paid)
}
