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

package settlement

import (
	"context"

	"code.tickmarket.io/optix/broker"
	"code.tickmarket.io/optix/collateral"
	"code.tickmarket.io/optix/events"
	"code.tickmarket.io/optix/logging"
	"code.tickmarket.io/optix/metrics"
	"code.tickmarket.io/optix/types"
	"code.tickmarket.io/optix/types/num"
)

type phase int

const (
	// phaseCollect realises every trader's PnL: losers are debited
	// immediately, winner gains are only recorded.
	phaseCollect phase = iota
	// phasePayout distributes recorded gains, haircut pro rata by the
	// cycle's bad debt.
	phasePayout
)

// ratioScale is the fixed-point scale of the loss socialisation ratio.
var ratioScale = num.NewUint(1_000_000_000_000)

// Engine settles an expired cycle in two resumable passes over the
// cycle roster. Collecting every loss before paying any winner is what
// lets bad debt be socialised exactly, and the cursor makes each pass
// chunkable: callers may process the roster over any number of calls
// and the result is identical to a single sweep.
type Engine struct {
	log *logging.Logger
	cfg Config

	col    *collateral.Engine
	broker broker.Interface

	contractSize *num.Uint

	phase  phase
	cursor int
	// posSum is the sum of all winner gains recorded in the collect
	// phase, the denominator of the socialisation ratio.
	posSum *num.Uint
	// payRatio is (1 - lossRatio) at ratioScale, fixed when the payout
	// phase begins.
	payRatio  *num.Uint
	lossRatio num.Decimal
}

// New returns a settlement engine bound to the given collateral
// engine.
func New(log *logging.Logger, cfg Config, col *collateral.Engine, bkr broker.Interface, contractSize *num.Uint) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())
	return &Engine{
		log:          log,
		cfg:          cfg,
		col:          col,
		broker:       bkr,
		contractSize: contractSize.Clone(),
		posSum:       num.UintZero(),
	}
}

// ReloadConf updates the engine's configuration.
func (e *Engine) ReloadConf(cfg Config) {
	e.log.Info("reloading configuration")
	if e.log.GetLevel() != cfg.Level.Get() {
		e.log.Info("updating log level",
			logging.String("old", e.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		e.log.SetLevel(cfg.Level.Get())
	}
	e.cfg = cfg
}

// Reset clears all per-cycle progress. The owning engine calls it once
// a cycle fully settled.
func (e *Engine) Reset() {
	e.phase = phaseCollect
	e.cursor = 0
	e.posSum = num.UintZero()
	e.payRatio = nil
	e.lossRatio = num.DecimalZero()
}

// Settle advances settlement of the cycle by up to maxTraders roster
// entries, zero meaning the configured default batch size. The cycle's
// settlement price must already be frozen. It returns true once every
// trader is settled and the roster torn down.
func (e *Engine) Settle(ctx context.Context, cycle *types.Cycle, maxTraders int) (bool, error) {
	if cycle.SettlementPrice == nil {
		return false, types.ErrNotExpired
	}
	if maxTraders <= 0 {
		maxTraders = e.cfg.DefaultBatchSize
	}

	budget := maxTraders
	if e.phase == phaseCollect {
		for budget > 0 && e.cursor < e.col.RosterLen() {
			e.collectOne(ctx, cycle, e.col.PartyAt(e.cursor))
			e.cursor++
			budget--
			metrics.SettledTraderInc()
		}
		if e.cursor < e.col.RosterLen() {
			return false, nil
		}
		e.phase = phasePayout
		e.cursor = 0
	}

	if e.payRatio == nil {
		e.freezeRatio()
	}
	for budget > 0 && e.cursor < e.col.RosterLen() {
		e.payoutOne(ctx, e.col.PartyAt(e.cursor))
		e.cursor++
		budget--
		metrics.SettledTraderInc()
	}
	if e.cursor < e.col.RosterLen() {
		return false, nil
	}

	e.broker.Send(events.NewCycleSettledEvent(ctx, cycle.Expiry, cycle.SettlementPrice, e.col.BadDebt(), e.lossRatio))
	e.col.ClearRoster()
	e.col.ResetBadDebt()
	return true, nil
}

// collectOne realises one trader's PnL against the settlement price.
// Carried liquidation fees are taken first, then a loss is debited as
// far as the balance goes with the rest booked as bad debt, while a
// gain is only stashed for the payout phase.
func (e *Engine) collectOne(ctx context.Context, cycle *types.Cycle, acc *types.Account) {
	if fee := acc.LiquidationFeeOwed; !fee.IsZero() {
		paid := e.col.DebitUpTo(acc, fee.Clone())
		if !paid.IsZero() {
			e.col.AddFee(paid)
			fee.Sub(fee, paid)
			e.broker.Send(events.NewLiquidationFeePaidEvent(ctx, acc.Party, paid, fee.Clone()))
		}
	}

	gain, amount := e.intrinsicPnL(cycle, acc)
	acc.ClearPositions()
	switch {
	case amount.IsZero():
		// flat, nothing to move.
	case gain:
		acc.SettleGain = amount
		e.posSum.AddSum(amount)
	default:
		paid := e.col.DebitUpTo(acc, amount)
		if shortfall := num.UintZero().Sub(amount, paid); !shortfall.IsZero() {
			e.col.AddBadDebt(shortfall)
		}
		e.broker.Send(events.NewTraderSettledEvent(ctx, acc.Party, amount, true, paid))
	}
}

// intrinsicPnL values the account's filled positions at expiry. Only
// one of up/down can be nonzero for a given settlement price, and the
// division by contract size happens after netting so both directions
// floor the same way.
func (e *Engine) intrinsicPnL(cycle *types.Cycle, acc *types.Account) (bool, *num.Uint) {
	up, down := num.UintZero(), num.UintZero()
	if cycle.SettlementPrice.GT(cycle.Strike) {
		up.Sub(cycle.SettlementPrice, cycle.Strike)
	} else {
		down.Sub(cycle.Strike, cycle.SettlementPrice)
	}
	calls, puts := acc.Positions[types.LegCall], acc.Positions[types.LegPut]

	won := num.UintZero().Mul(up, num.NewUint(calls.Long))
	won.AddSum(num.UintZero().Mul(down, num.NewUint(puts.Long)))
	owed := num.UintZero().Mul(up, num.NewUint(calls.Short))
	owed.AddSum(num.UintZero().Mul(down, num.NewUint(puts.Short)))

	if won.GTE(owed) {
		pnl := num.UintZero().Sub(won, owed)
		return true, pnl.Div(pnl, e.contractSize)
	}
	pnl := num.UintZero().Sub(owed, won)
	return false, pnl.Div(pnl, e.contractSize)
}

// freezeRatio fixes the socialisation ratio for the payout phase: the
// share of each winner's gain lost to bad debt, capped at one.
func (e *Engine) freezeRatio() {
	e.payRatio = ratioScale.Clone()
	e.lossRatio = num.DecimalZero()
	badDebt := e.col.BadDebt()
	if badDebt.IsZero() || e.posSum.IsZero() {
		return
	}
	r := num.UintZero().Mul(badDebt, ratioScale)
	r.Div(r, e.posSum)
	r = num.Min(r, ratioScale)
	e.lossRatio = r.ToDecimal().Div(ratioScale.ToDecimal())
	e.payRatio.Sub(ratioScale, r)
	e.log.Warn("socialising settlement losses",
		logging.String("badDebt", badDebt.String()),
		logging.String("posSum", e.posSum.String()),
		logging.String("lossRatio", e.lossRatio.String()),
	)
}

// payoutOne pays a winner its haircut gain.
func (e *Engine) payoutOne(ctx context.Context, acc *types.Account) {
	entitled := acc.SettleGain
	if entitled.IsZero() {
		return
	}
	acc.SettleGain = num.UintZero()

	paid := num.UintZero().Mul(entitled, e.payRatio)
	paid.Div(paid, ratioScale)
	e.col.Credit(acc, paid)
	if paid.LT(entitled) {
		e.broker.Send(events.NewLossSocializationEvent(ctx, acc.Party, entitled, paid))
	}
	e.broker.Send(events.NewTraderSettledEvent(ctx, acc.Party, entitled, false, paid))
}
