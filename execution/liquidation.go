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
	"context"

	"code.tickmarket.io/optix/events"
	"code.tickmarket.io/optix/logging"
	"code.tickmarket.io/optix/metrics"
	"code.tickmarket.io/optix/types"
)

// Liquidate force-closes an undermargined account. Anyone may call it
// against any party whose balance has fallen below the maintenance
// margin; a solvent target, or one already being liquidated, returns
// ErrStillSolvent.
//
// The target's resting orders are cancelled and its queued takers
// wiped, the liquidation fee is assessed on its net short notional,
// and market buy orders are issued to close each short leg. Those
// closing orders bypass the margin gate: any premium the target cannot
// pay becomes bad debt, socialised at settlement.
func (e *Engine) Liquidate(ctx context.Context, by, target string) error {
	ctx = events.WithTraceID(ctx)
	if e.cycle == nil || !e.cycle.IsLive(e.ts.GetTimeNow()) {
		return types.ErrMarketNotLive
	}
	acc, err := e.collateral.Account(target)
	if err != nil {
		return err
	}
	if acc.LiquidationQueued {
		return types.ErrStillSolvent
	}
	price, err := e.price.CurrentPrice()
	if err != nil {
		return err
	}
	required := e.marginFor(acc.Positions, price)
	if acc.Balance.GTE(required) {
		return types.ErrStillSolvent
	}

	acc.LiquidationQueued = true

	// pull the target off the book and out of the taker queues so
	// only filled positions remain.
	for _, id := range e.book.PartyOrders(target) {
		removed, rerr := e.book.RemoveOrder(id)
		if rerr != nil {
			return rerr
		}
		if derr := acc.Positions[removed.Side.Leg()].DecPending(removed.Side.IsBid(), removed.Remaining); derr != nil {
			return derr
		}
		e.broker.Send(events.NewOrderCancelledEvent(ctx, removed.Export(), true))
	}
	for i := 0; i < types.NumSides; i++ {
		side := types.SideFromIndex(i)
		wiped := e.book.Queue(side).ZeroParty(target)
		if wiped == 0 {
			continue
		}
		if derr := acc.Positions[side.Leg()].DecPending(side.IsBid(), wiped); derr != nil {
			return derr
		}
	}

	netShortCalls := acc.Positions[types.LegCall].NetShort()
	netShortPuts := acc.Positions[types.LegPut].NetShort()
	fee := e.liquidationFee(netShortCalls+netShortPuts, price)
	balance := acc.Balance.Clone()

	// the fee is only recorded here; collection is deferred to the
	// settlement pass so the remaining balance can fund the closing
	// buys below instead of turning into bad debt.
	acc.LiquidationFeeOwed.AddSum(fee)

	e.log.Warn("liquidation started",
		logging.String("party", target),
		logging.String("by", by),
		logging.Uint64("netShortCalls", netShortCalls),
		logging.Uint64("netShortPuts", netShortPuts),
		logging.String("fee", fee.String()),
	)
	e.broker.Send(events.NewLiquidationStartedEvent(ctx, target, by, netShortCalls, netShortPuts, fee, required, balance))
	metrics.LiquidationCounterInc()

	if netShortCalls > 0 {
		if _, perr := e.placeOrder(ctx, target, types.SideCallBuy, netShortCalls, nil, orderOpts{inLiquidation: true}); perr != nil {
			return perr
		}
	}
	if netShortPuts > 0 {
		if _, perr := e.placeOrder(ctx, target, types.SidePutBuy, netShortPuts, nil, orderOpts{inLiquidation: true}); perr != nil {
			return perr
		}
	}
	return nil
}
