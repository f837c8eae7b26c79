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

package execution

import (
	"code.tickmarket.io/optix/types"
	"code.tickmarket.io/optix/types/num"
)

const bpsDenominator = 10_000

// tickPrice converts a tick index into a price in collateral minor
// units.
func (e *Engine) tickPrice(tick uint32) *num.Uint {
	return num.UintZero().Mul(e.tickSize, num.NewUint(uint64(tick)))
}

// bpsFee computes notional * bps / 10000, flooring at each step, with
// the sign of bps carried into the decimal result.
func bpsFee(notional *num.Uint, bps int64) num.Decimal {
	abs := uint64(bps)
	neg := bps < 0
	if neg {
		abs = uint64(-bps)
	}
	f := num.UintZero().Mul(notional, num.NewUint(abs))
	f.Div(f, num.NewUint(bpsDenominator))
	d := f.ToDecimal()
	if neg {
		return d.Neg()
	}
	return d
}

// fillEconomics computes the signed cash deltas of one fill. The side
// is the taker's: premium flows from the buying side to the selling
// side, and each party is charged its own fee on top. The returned fee
// is the net amount routed to the fee sink, never negative because a
// maker rebate is funded out of the taker fee.
func (e *Engine) fillEconomics(takerSide types.Side, tick uint32, size uint64) (makerDelta, takerDelta num.Decimal, fee *num.Uint) {
	notional := num.UintZero().Mul(e.tickPrice(tick), num.NewUint(size))
	premium := notional.ToDecimal()

	// the maker sits on the opposite side of the taker.
	if takerSide.IsBid() {
		takerDelta = premium.Neg()
		makerDelta = premium
	} else {
		takerDelta = premium
		makerDelta = premium.Neg()
	}
	makerFee := bpsFee(notional, e.cfg.MakerFeeBps)
	takerFee := bpsFee(notional, e.cfg.TakerFeeBps)
	makerDelta = makerDelta.Sub(makerFee)
	takerDelta = takerDelta.Sub(takerFee)

	fee, _ = num.UintFromDecimal(makerFee.Add(takerFee))
	if fee == nil {
		fee = num.UintZero()
	}
	return makerDelta, takerDelta, fee
}

// marginFor computes the maintenance margin required for the given
// positions at the given underlying price:
//
//	((netShort * price) / contractSize) * marginBps / 10000
//
// flooring after every division, matching how notional is assessed at
// settlement.
func (e *Engine) marginFor(pos [2]types.Position, price *num.Uint) *num.Uint {
	netShort := pos[types.LegCall].NetShort() + pos[types.LegPut].NetShort()
	return e.marginForNetShort(netShort, price)
}

func (e *Engine) marginForNetShort(netShort uint64, price *num.Uint) *num.Uint {
	if netShort == 0 {
		return num.UintZero()
	}
	m := num.UintZero().Mul(num.NewUint(netShort), price)
	m.Div(m, e.contractSize)
	m.Mul(m, num.NewUint(e.cfg.MaintenanceMarginBps))
	m.Div(m, num.NewUint(bpsDenominator))
	return m
}

// liquidationFee assesses the liquidation fee on net short notional,
// same flooring order as the margin computation.
func (e *Engine) liquidationFee(netShort uint64, price *num.Uint) *num.Uint {
	if netShort == 0 {
		return num.UintZero()
	}
	f := num.UintZero().Mul(num.NewUint(netShort), price)
	f.Div(f, e.contractSize)
	f.Mul(f, num.NewUint(e.cfg.LiquidationFeeBps))
	f.Div(f, num.NewUint(bpsDenominator))
	return f
}

// RequiredMargin returns the maintenance margin the party must hold at
// the current underlying price.
func (e *Engine) RequiredMargin(party string) (*num.Uint, error) {
	acc, err := e.collateral.Account(party)
	if err != nil {
		return nil, err
	}
	price, err := e.price.CurrentPrice()
	if err != nil {
		return nil, err
	}
	return e.marginFor(acc.Positions, price), nil
}

// IsLiquidatable reports whether the party's balance has fallen below
// its required maintenance margin.
func (e *Engine) IsLiquidatable(party string) (bool, error) {
	acc, err := e.collateral.Account(party)
	if err != nil {
		return false, err
	}
	required, err := e.RequiredMargin(party)
	if err != nil {
		return false, err
	}
	return acc.Balance.LT(required), nil
}
