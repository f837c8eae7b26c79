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

package types

import (
	"time"

	"code.tickmarket.io/optix/types/num"
)

// Leg identifies the option leg a position or order relates to.
type Leg int8

const (
	// LegCall - the call leg of the market.
	LegCall Leg = iota
	// LegPut - the put leg of the market.
	LegPut
)

func (l Leg) String() string {
	if l == LegCall {
		return "CALL"
	}
	return "PUT"
}

// Side is one of the four trading sides of the market. Each side is the
// natural opposite of exactly one other side: an incoming CALL_BUY
// matches resting CALL_SELL liquidity and vice versa, same for puts.
type Side int8

const (
	// SideUnspecified - invalid zero value.
	SideUnspecified Side = iota
	// SideCallBuy - buy call contracts.
	SideCallBuy
	// SideCallSell - sell call contracts.
	SideCallSell
	// SidePutBuy - buy put contracts.
	SidePutBuy
	// SidePutSell - sell put contracts.
	SidePutSell
)

// NumSides is the count of valid sides, used to dimension per-side state.
const NumSides = 4

// Index maps the side onto a dense 0..3 range for array indexing.
func (s Side) Index() int {
	return int(s) - 1
}

// SideFromIndex is the inverse of Index.
func SideFromIndex(i int) Side {
	return Side(i + 1)
}

// Opposite returns the side this side trades against.
func (s Side) Opposite() Side {
	switch s {
	case SideCallBuy:
		return SideCallSell
	case SideCallSell:
		return SideCallBuy
	case SidePutBuy:
		return SidePutSell
	case SidePutSell:
		return SidePutBuy
	}
	return SideUnspecified
}

// IsBid returns true for the buy sides. Bid sides rest at high-first
// price priority, ask sides at low-first.
func (s Side) IsBid() bool {
	return s == SideCallBuy || s == SidePutBuy
}

// Leg returns the option leg this side trades.
func (s Side) Leg() Leg {
	if s == SideCallBuy || s == SideCallSell {
		return LegCall
	}
	return LegPut
}

func (s Side) String() string {
	switch s {
	case SideCallBuy:
		return "CALL_BUY"
	case SideCallSell:
		return "CALL_SELL"
	case SidePutBuy:
		return "PUT_BUY"
	case SidePutSell:
		return "PUT_SELL"
	}
	return "UNSPECIFIED"
}

// Cycle is one fixed-duration trading epoch, identified by its expiry.
// A cycle record is never deleted once created, it is the historical
// record of the strike and settlement prices used.
type Cycle struct {
	// Expiry is the time at which the cycle stops trading.
	Expiry time.Time
	// Strike is fixed from the oracle price when the cycle starts.
	Strike *num.Uint
	// SettlementPrice is zero until frozen at/after expiry.
	SettlementPrice *num.Uint
	// Settled is set once the settlement run for this cycle completed.
	Settled bool
}

// IsLive returns whether the cycle is open for trading at time now.
func (c *Cycle) IsLive(now time.Time) bool {
	return c != nil && now.Before(c.Expiry)
}

// Order is the external view of a resting maker order.
type Order struct {
	ID        uint64
	Party     string
	Side      Side
	Tick      uint32
	Remaining uint64
}

// Position tracks a party's aggregate exposure on one leg. Long/Short
// count filled contracts, PendingLong/PendingShort count size still in
// flight as resting maker orders or queued taker orders.
type Position struct {
	Long         uint64
	Short        uint64
	PendingLong  uint64
	PendingShort uint64
}

// IncPending adds in-flight size on the given direction of the leg.
func (p *Position) IncPending(bid bool, n uint64) {
	if bid {
		p.PendingLong += n
		return
	}
	p.PendingShort += n
}

// DecPending removes in-flight size on the given direction of the leg.
// Pending counters track in-flight size exactly, an underflow here is
// a broken invariant, not a recoverable condition.
func (p *Position) DecPending(bid bool, n uint64) error {
	if bid {
		if p.PendingLong < n {
			return ErrPositionUnderflow
		}
		p.PendingLong -= n
		return nil
	}
	if p.PendingShort < n {
		return ErrPositionUnderflow
	}
	p.PendingShort -= n
	return nil
}

// IncFilled adds filled contracts on the given direction of the leg.
func (p *Position) IncFilled(bid bool, n uint64) {
	if bid {
		p.Long += n
		return
	}
	p.Short += n
}

// NetShort returns the margin-relevant short exposure on the leg:
// max(short + pendingShort - long - pendingLong, 0).
func (p Position) NetShort() uint64 {
	short := p.Short + p.PendingShort
	long := p.Long + p.PendingLong
	if short <= long {
		return 0
	}
	return short - long
}

// Account is the per-party ledger record. One exists per enrolled
// party, process wide; the position fields are reset every cycle, the
// balance carries across cycles.
type Account struct {
	Party   string
	Balance *num.Uint
	// Positions indexed by Leg.
	Positions [2]Position
	// ActiveInCycle marks membership in the current cycle's roster.
	ActiveInCycle bool
	// LiquidationQueued is set while the party is being closed out.
	LiquidationQueued bool
	// LiquidationFeeOwed is debited lazily at the next settlement pass.
	LiquidationFeeOwed *num.Uint
	// SettleGain carries a positive PnL between the two settlement
	// phases. Scratch space, zero outside a settlement run.
	SettleGain *num.Uint
}

// NewAccount returns a zeroed account for the given party.
func NewAccount(party string) *Account {
	return &Account{
		Party:              party,
		Balance:            num.UintZero(),
		LiquidationFeeOwed: num.UintZero(),
		SettleGain:         num.UintZero(),
	}
}

// NetShortTotal returns the net short contract count across both legs.
func (a *Account) NetShortTotal() uint64 {
	return a.Positions[LegCall].NetShort() + a.Positions[LegPut].NetShort()
}

// ClearPositions wipes all cycle-scoped position state, leaving the
// balance and any carried-forward liquidation fee untouched.
func (a *Account) ClearPositions() {
	a.Positions[LegCall] = Position{}
	a.Positions[LegPut] = Position{}
	a.ActiveInCycle = false
	a.LiquidationQueued = false
	a.SettleGain = num.UintZero()
}
