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

// Deposit is emitted when collateral is transferred in for a party.
type Deposit struct {
	*Base
	party     string
	amount    *num.Uint
	reference string
}

func NewDepositEvent(ctx context.Context, party string, amount *num.Uint, reference string) *Deposit {
	return &Deposit{
		Base:      newBase(ctx, DepositEvent),
		party:     party,
		amount:    amount.Clone(),
		reference: reference,
	}
}

func (d Deposit) Party() string {
	return d.party
}

func (d Deposit) Amount() *num.Uint {
	return d.amount.Clone()
}

func (d Deposit) Reference() string {
	return d.reference
}

// Withdrawal is emitted when collateral is transferred out to a party.
type Withdrawal struct {
	*Base
	party     string
	amount    *num.Uint
	reference string
}

func NewWithdrawalEvent(ctx context.Context, party string, amount *num.Uint, reference string) *Withdrawal {
	return &Withdrawal{
		Base:      newBase(ctx, WithdrawalEvent),
		party:     party,
		amount:    amount.Clone(),
		reference: reference,
	}
}

func (w Withdrawal) Party() string {
	return w.party
}

func (w Withdrawal) Amount() *num.Uint {
	return w.amount.Clone()
}

func (w Withdrawal) Reference() string {
	return w.reference
}
