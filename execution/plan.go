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
	"code.tickmarket.io/optix/metrics"
	"code.tickmarket.io/optix/types"
	"code.tickmarket.io/optix/types/num"
)

// cashMove is the resolved cash application for one party in one fill.
// Exactly one of credit/debit is nonzero; shortfall is the part of a
// debit a liquidation-flagged party could not cover, routed to the
// cycle's bad debt.
type cashMove struct {
	credit    *num.Uint
	debit     *num.Uint
	shortfall *num.Uint
}

// plannedFill is one maker/taker match the plan committed to. The
// maker is the limit-order party (resting on the book, or the incoming
// limit order when draining the taker queue), the taker the market
// order party.
type plannedFill struct {
	maker     *types.Account
	taker     *types.Account
	takerSide types.Side
	tick      uint32
	size      uint64
	fromQueue bool
	restingID uint64
	queueIdx  int

	makerDelta num.Decimal
	takerDelta num.Decimal
	fee        *num.Uint
	makerMove  cashMove
	takerMove  cashMove
}

type queuedRemainder struct {
	side types.Side
	size uint64
	// id is assigned when the plan is applied.
	id uint64
}

type restingInsert struct {
	side types.Side
	tick uint32
	size uint64
}

// plan stages every state change of one place-order operation before
// any of them is applied. Planning walks the book and queues read
// only, tracking projected balances in an overlay, so a failed margin
// gate (or an aggressor that cannot pay) aborts with nothing to roll
// back. Apply then replays the identical sequence against real state.
type plan struct {
	e   *Engine
	acc *types.Account

	fills  []plannedFill
	queued []queuedRemainder
	insert *restingInsert

	// proj holds copy-on-first-touch projected balances per party.
	proj map[string]*num.Uint
	// pos is the caller's projected position, for the margin gate.
	pos [2]types.Position
}

func newPlan(e *Engine, acc *types.Account) *plan {
	return &plan{
		e:    e,
		acc:  acc,
		proj: map[string]*num.Uint{},
		pos:  acc.Positions,
	}
}

func (p *plan) balance(acc *types.Account) *num.Uint {
	b, ok := p.proj[acc.Party]
	if !ok {
		b = acc.Balance.Clone()
		p.proj[acc.Party] = b
	}
	return b
}

// callerBalance returns the caller's projected post-trade balance.
func (p *plan) callerBalance() *num.Uint {
	return p.balance(p.acc).Clone()
}

// callerNetShort returns the caller's projected net short exposure.
func (p *plan) callerNetShort() uint64 {
	return p.pos[types.LegCall].NetShort() + p.pos[types.LegPut].NetShort()
}

// tryDelta applies a signed cash delta to a party's projected balance.
// A negative delta the party cannot cover is tolerated only for
// parties already flagged for liquidation, where the shortfall becomes
// bad debt rather than blocking the fill.
func (p *plan) tryDelta(acc *types.Account, delta num.Decimal) (cashMove, bool) {
	bal := p.balance(acc)
	if !delta.IsNegative() {
		credit, _ := num.UintFromDecimal(delta)
		bal.AddSum(credit)
		return cashMove{credit: credit}, true
	}
	owed, _ := num.UintFromDecimal(delta.Neg())
	if bal.GTE(owed) {
		bal.Sub(bal, owed)
		return cashMove{debit: owed}, true
	}
	if acc.LiquidationQueued {
		debit := bal.Clone()
		shortfall := num.UintZero().Sub(owed, debit)
		bal.SetUint64(0)
		return cashMove{debit: debit, shortfall: shortfall}, true
	}
	return cashMove{}, false
}

// addFill stages one match. It returns false (and no state change)
// when the resting party cannot pay what it owes, and an error when
// the aggressor cannot, which fails the whole operation.
func (p *plan) addFill(maker, taker *types.Account, takerSide types.Side, tick uint32, size uint64, fromQueue bool, restingID uint64, queueIdx int) (bool, error) {
	makerDelta, takerDelta, fee := p.e.fillEconomics(takerSide, tick, size)

	// the resting party is the maker for book fills, the queued taker
	// for queue fills; the other one is the caller.
	restingAcc, restingDelta := maker, makerDelta
	aggAcc, aggDelta := taker, takerDelta
	if fromQueue {
		restingAcc, restingDelta = taker, takerDelta
		aggAcc, aggDelta = maker, makerDelta
	}

	rMove, ok := p.tryDelta(restingAcc, restingDelta)
	if !ok {
		return false, nil
	}
	aMove, ok := p.tryDelta(aggAcc, aggDelta)
	if !ok {
		return false, types.ErrInsufficientBalance
	}

	f := plannedFill{
		maker:     maker,
		taker:     taker,
		takerSide: takerSide,
		tick:      tick,
		size:      size,
		fromQueue: fromQueue,
		restingID: restingID,
		queueIdx:  queueIdx,

		makerDelta: makerDelta,
		takerDelta: takerDelta,
		fee:        fee,
		makerMove:  aMove,
		takerMove:  rMove,
	}
	if !fromQueue {
		f.makerMove, f.takerMove = rMove, aMove
	}
	p.fills = append(p.fills, f)

	// caller position projection, both roles in case of a self trade.
	callerSide := takerSide
	if fromQueue {
		callerSide = takerSide.Opposite()
	}
	p.pos[callerSide.Leg()].IncFilled(callerSide.IsBid(), size)
	if restingAcc.Party == p.acc.Party {
		restingSide := takerSide.Opposite()
		if fromQueue {
			restingSide = takerSide
		}
		p.pos[restingSide.Leg()].IncFilled(restingSide.IsBid(), size)
		if err := p.pos[restingSide.Leg()].DecPending(restingSide.IsBid(), size); err != nil {
			return false, err
		}
	}
	return true, nil
}

// sweep stages a market order of the given size against the opposite
// side's resting levels, best price first, FIFO within a level. It
// returns the unfilled remainder.
func (p *plan) sweep(side types.Side, size uint64) (uint64, error) {
	opp := side.Opposite()
	remaining := size
	tick, err := p.e.book.BestTick(opp)
	for err == nil && remaining > 0 {
		id := p.e.book.FirstAtTick(opp, tick)
		for id != 0 && remaining > 0 {
			o, oerr := p.e.book.Order(id)
			if oerr != nil {
				return 0, oerr
			}
			makerAcc, aerr := p.e.collateral.Account(o.Party)
			if aerr != nil {
				return 0, aerr
			}
			qty := num.MinUint64(remaining, o.Remaining)
			consumed, ferr := p.addFill(makerAcc, p.acc, side, tick, qty, false, id, 0)
			if ferr != nil {
				return 0, ferr
			}
			if consumed {
				remaining -= qty
			}
			id = p.e.book.NextInLevel(id)
		}
		tick, err = p.e.book.NextBestTick(opp, tick)
	}
	return remaining, nil
}

// drainQueue stages fills of an incoming limit order against the
// opposite side's taker queue, oldest entry first, at the incoming
// limit price. It returns the size left to rest on the book.
func (p *plan) drainQueue(side types.Side, tick uint32, size uint64) (uint64, error) {
	opp := side.Opposite()
	q := p.e.book.Queue(opp)
	remaining := size
	for i := q.Head(); i < q.Len() && remaining > 0; i++ {
		entry := q.Entry(i)
		if entry.Remaining == 0 {
			continue
		}
		takerAcc, aerr := p.e.collateral.Account(entry.Party)
		if aerr != nil {
			return 0, aerr
		}
		qty := num.MinUint64(remaining, entry.Remaining)
		consumed, ferr := p.addFill(p.acc, takerAcc, opp, tick, qty, true, 0, i)
		if ferr != nil {
			return 0, ferr
		}
		if consumed {
			remaining -= qty
		}
	}
	return remaining, nil
}

// queueRemainder stages parking an unfilled market remainder on the
// side's taker queue.
func (p *plan) queueRemainder(side types.Side, size uint64) {
	p.queued = append(p.queued, queuedRemainder{side: side, size: size})
	p.pos[side.Leg()].IncPending(side.IsBid(), size)
}

// restMaker stages inserting the unmatched remainder of a limit order
// as a resting maker order.
func (p *plan) restMaker(side types.Side, tick uint32, size uint64) {
	p.insert = &restingInsert{side: side, tick: tick, size: size}
	p.pos[side.Leg()].IncPending(side.IsBid(), size)
}

func (p *plan) settleMove(acc *types.Account, m cashMove) error {
	if m.credit != nil {
		p.e.collateral.Credit(acc, m.credit)
		return nil
	}
	if m.debit != nil {
		if err := p.e.collateral.Debit(acc, m.debit); err != nil {
			return err
		}
	}
	if m.shortfall != nil && !m.shortfall.IsZero() {
		p.e.collateral.AddBadDebt(m.shortfall)
	}
	return nil
}

// apply replays the staged operation against real state, in the exact
// order it was planned, and emits the corresponding events. It returns
// the id of any resting or queued order created.
func (p *plan) apply(ctx context.Context) (uint64, error) {
	e := p.e
	for i := range p.fills {
		f := &p.fills[i]
		if f.fromQueue {
			e.book.Queue(f.takerSide).Consume(f.queueIdx, f.size)
		} else {
			if err := e.book.Consume(f.restingID, f.size); err != nil {
				return 0, err
			}
		}
		if err := p.settleMove(f.maker, f.makerMove); err != nil {
			return 0, err
		}
		if err := p.settleMove(f.taker, f.takerMove); err != nil {
			return 0, err
		}
		e.collateral.AddFee(f.fee)

		makerSide := f.takerSide.Opposite()
		f.maker.Positions[makerSide.Leg()].IncFilled(makerSide.IsBid(), f.size)
		f.taker.Positions[f.takerSide.Leg()].IncFilled(f.takerSide.IsBid(), f.size)
		restingAcc, restingSide := f.maker, makerSide
		if f.fromQueue {
			restingAcc, restingSide = f.taker, f.takerSide
		}
		if err := restingAcc.Positions[restingSide.Leg()].DecPending(restingSide.IsBid(), f.size); err != nil {
			return 0, err
		}
		maybeClearLiquidation(f.maker)
		maybeClearLiquidation(f.taker)

		e.broker.Send(events.NewOrderFilledEvent(
			ctx, f.maker.Party, f.taker.Party, f.takerSide,
			e.tickPrice(f.tick), f.size,
			f.makerDelta, f.takerDelta, f.fee, f.fromQueue,
		))
		metrics.TradeCounterAdd(f.takerSide.String(), f.size)
	}

	var orderID uint64
	if p.insert != nil {
		o, err := e.book.AddOrder(p.acc.Party, p.insert.side, p.insert.tick, p.insert.size)
		if err != nil {
			return 0, err
		}
		p.acc.Positions[p.insert.side.Leg()].IncPending(p.insert.side.IsBid(), p.insert.size)
		e.broker.Send(events.NewOrderPlacedEvent(ctx, o.Export()))
		orderID = o.ID
	}
	for i := range p.queued {
		qr := &p.queued[i]
		qr.id = e.book.NextOrderID()
		e.book.Queue(qr.side).Push(p.acc.Party, qr.size, qr.id)
		p.acc.Positions[qr.side.Leg()].IncPending(qr.side.IsBid(), qr.size)
		e.broker.Send(events.NewTakerQueuedEvent(ctx, p.acc.Party, qr.side, qr.size, qr.id))
		orderID = qr.id
	}
	return orderID, nil
}

// maybeClearLiquidation lifts the liquidation flag once fills brought
// the account back to long >= short on both legs.
func maybeClearLiquidation(acc *types.Account) {
	if !acc.LiquidationQueued {
		return
	}
	c, pp := acc.Positions[types.LegCall], acc.Positions[types.LegPut]
	if c.Long >= c.Short && pp.Long >= pp.Short {
		acc.LiquidationQueued = false
	}
}
