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
	"time"

	"github.com/pkg/errors"

	"code.tickmarket.io/optix/broker"
	"code.tickmarket.io/optix/collateral"
	"code.tickmarket.io/optix/events"
	"code.tickmarket.io/optix/logging"
	"code.tickmarket.io/optix/matching"
	"code.tickmarket.io/optix/metrics"
	"code.tickmarket.io/optix/oracle"
	"code.tickmarket.io/optix/settlement"
	"code.tickmarket.io/optix/types"
	"code.tickmarket.io/optix/types/num"
)

var (
	// ErrInvalidConfig is returned by New when a market parameter is
	// zero that must not be.
	ErrInvalidConfig = errors.New("invalid market configuration")
)

// TimeService supplies the engine with the current time.
type TimeService interface {
	GetTimeNow() time.Time
}

// Engine drives the market: it owns the order book, routes every
// trading operation through the margin gate, and hands the book over
// to the settlement engine once a cycle expires. It is not safe for
// concurrent use, callers serialise access the way a block processor
// does.
type Engine struct {
	log *logging.Logger
	cfg Config

	ts         TimeService
	price      oracle.PriceSource
	collateral *collateral.Engine
	broker     broker.Interface

	book   *matching.OrderBook
	settle *settlement.Engine

	tickSize     *num.Uint
	contractSize *num.Uint

	cycle *types.Cycle

	owner        string
	feeRecipient string
	paused       bool
}

// New returns a ready execution engine, or ErrInvalidConfig when the
// market parameters cannot make a functioning market.
func New(
	log *logging.Logger,
	cfg Config,
	ts TimeService,
	price oracle.PriceSource,
	col *collateral.Engine,
	bkr broker.Interface,
	owner string,
) (*Engine, error) {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())
	if cfg.TickSize == 0 || cfg.ContractSize == 0 || cfg.CycleDuration.Duration <= 0 {
		return nil, ErrInvalidConfig
	}
	// a maker rebate must be funded by the taker fee or fills would
	// drain the sink.
	if cfg.MakerFeeBps+cfg.TakerFeeBps < 0 {
		return nil, ErrInvalidConfig
	}
	contractSize := num.NewUint(cfg.ContractSize)
	return &Engine{
		log:          log,
		cfg:          cfg,
		ts:           ts,
		price:        price,
		collateral:   col,
		broker:       bkr,
		book:         matching.NewBook(log, cfg.Matching),
		settle:       settlement.New(log, cfg.Settlement, col, bkr, contractSize),
		tickSize:     num.NewUint(cfg.TickSize),
		contractSize: contractSize,
		owner:        owner,
		feeRecipient: owner,
	}, nil
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
	e.cfg.Level = cfg.Level
	e.cfg.Matching = cfg.Matching
	e.cfg.Settlement = cfg.Settlement
	e.book.ReloadConf(cfg.Matching)
	e.settle.ReloadConf(cfg.Settlement)
}

// ActiveCycle returns the cycle currently trading or awaiting
// settlement, nil when there is none.
func (e *Engine) ActiveCycle() *types.Cycle {
	return e.cycle
}

// Book exposes the order book read-only surface.
func (e *Engine) Book() *matching.OrderBook {
	return e.book
}

// StartCycle opens a new trading cycle struck at the current
// underlying price, expiring one cycle duration from now.
func (e *Engine) StartCycle(ctx context.Context) (*types.Cycle, error) {
	ctx = events.WithTraceID(ctx)
	if e.paused {
		return nil, types.ErrMarketPaused
	}
	now := e.ts.GetTimeNow()
	if e.cycle != nil {
		if e.cycle.IsLive(now) {
			return nil, types.ErrCycleAlreadyStarted
		}
		return nil, types.ErrPreviousCycleNotSettled
	}
	strike, err := e.price.CurrentPrice()
	if err != nil {
		return nil, err
	}
	e.cycle = &types.Cycle{
		Expiry: now.Add(e.cfg.CycleDuration.Duration),
		Strike: strike.Clone(),
	}
	e.log.Info("cycle started",
		logging.Time("expiry", e.cycle.Expiry),
		logging.String("strike", e.cycle.Strike.String()),
	)
	e.broker.Send(events.NewCycleStartedEvent(ctx, e.cycle.Expiry, e.cycle.Strike))
	metrics.CycleCounterInc()
	return e.cycle, nil
}

type orderOpts struct {
	// inLiquidation orders bypass the caller margin gate and the
	// liquidation-flag block; any shortfall they cause is bad debt.
	inLiquidation bool
}

// PlaceOrder places a limit or market order for one of the four sides.
// A nil or zero limit price, or a limit price crossing the book, is
// executed as a market order: it sweeps resting makers and parks any
// remainder on the side's taker queue. A passive limit order first
// drains the opposite taker queue at its own price, then rests. The
// whole operation succeeds or fails atomically; the returned id is the
// resting or queued order's id, zero when everything filled.
func (e *Engine) PlaceOrder(ctx context.Context, party string, side types.Side, size uint64, limitPrice *num.Uint) (uint64, error) {
	id, err := e.placeOrder(events.WithTraceID(ctx), party, side, size, limitPrice, orderOpts{})
	if err != nil {
		metrics.OrderCounterInc(side.String(), "rejected")
		return 0, err
	}
	metrics.OrderCounterInc(side.String(), "accepted")
	return id, nil
}

func (e *Engine) placeOrder(ctx context.Context, party string, side types.Side, size uint64, limitPrice *num.Uint, opts orderOpts) (uint64, error) {
	acc, err := e.preTrade(party, size, opts)
	if err != nil {
		return 0, err
	}

	isMarket := limitPrice == nil || limitPrice.IsZero()
	var tick uint32
	if !isMarket {
		t := num.UintZero().Div(limitPrice, e.tickSize)
		if !t.IsUint64() || t.Uint64() > matching.MaxTick {
			return 0, types.ErrTickTooLarge
		}
		tick = uint32(t.Uint64())
		// a crossing limit order executes as a market order.
		isMarket = e.book.Crosses(side, tick)
	}

	pl := newPlan(e, acc)
	if isMarket {
		rem, err := pl.sweep(side, size)
		if err != nil {
			return 0, err
		}
		if rem > 0 {
			pl.queueRemainder(side, rem)
		}
	} else {
		rem, err := pl.drainQueue(side, tick, size)
		if err != nil {
			return 0, err
		}
		if rem > 0 {
			if e.book.PartyOrderCount(party) >= e.cfg.Matching.MaxOpenOrders {
				return 0, types.ErrMaxOrdersReached
			}
			pl.restMaker(side, tick, rem)
		}
	}

	if err := e.marginGate(pl, opts); err != nil {
		return 0, err
	}
	id, err := pl.apply(ctx)
	if err != nil {
		return 0, err
	}
	e.collateral.JoinCycle(acc)
	return id, nil
}

// PlaceLong takes a synthetic long: a market buy of calls and a market
// sell of puts, margined and applied as one atomic operation. It
// returns the queued order ids per leg, zero for a leg that filled in
// full.
func (e *Engine) PlaceLong(ctx context.Context, party string, size uint64) (uint64, uint64, error) {
	return e.placePair(ctx, party, types.SideCallBuy, types.SidePutSell, size)
}

// PlaceShort is the mirror of PlaceLong: a market buy of puts and a
// market sell of calls.
func (e *Engine) PlaceShort(ctx context.Context, party string, size uint64) (uint64, uint64, error) {
	return e.placePair(ctx, party, types.SidePutBuy, types.SideCallSell, size)
}

func (e *Engine) placePair(ctx context.Context, party string, first, second types.Side, size uint64) (uint64, uint64, error) {
	ctx = events.WithTraceID(ctx)
	acc, err := e.preTrade(party, size, orderOpts{})
	if err != nil {
		return 0, 0, err
	}
	pl := newPlan(e, acc)
	for _, side := range []types.Side{first, second} {
		rem, err := pl.sweep(side, size)
		if err != nil {
			return 0, 0, err
		}
		if rem > 0 {
			pl.queueRemainder(side, rem)
		}
	}
	if err := e.marginGate(pl, orderOpts{}); err != nil {
		return 0, 0, err
	}
	if _, err := pl.apply(ctx); err != nil {
		return 0, 0, err
	}
	e.collateral.JoinCycle(acc)
	var firstID, secondID uint64
	for _, qr := range pl.queued {
		if qr.side == first {
			firstID = qr.id
		} else {
			secondID = qr.id
		}
	}
	return firstID, secondID, nil
}

func (e *Engine) preTrade(party string, size uint64, opts orderOpts) (*types.Account, error) {
	if e.paused && !opts.inLiquidation {
		return nil, types.ErrMarketPaused
	}
	if size == 0 {
		return nil, types.ErrInvalidAmount
	}
	if e.cycle == nil || !e.cycle.IsLive(e.ts.GetTimeNow()) {
		return nil, types.ErrMarketNotLive
	}
	acc, err := e.collateral.Account(party)
	if err != nil {
		return nil, err
	}
	if acc.LiquidationQueued && !opts.inLiquidation {
		return nil, types.ErrInsufficientBalance
	}
	return acc, nil
}

// marginGate verifies the caller's projected post-trade balance covers
// the projected maintenance margin.
func (e *Engine) marginGate(pl *plan, opts orderOpts) error {
	if opts.inLiquidation {
		return nil
	}
	price, err := e.price.CurrentPrice()
	if err != nil {
		return err
	}
	required := e.marginForNetShort(pl.callerNetShort(), price)
	if pl.callerBalance().LT(required) {
		return types.ErrInsufficientBalance
	}
	return nil
}

// CancelOrder removes a resting maker order. Cancellation is refused
// once the cycle has expired, while the party is liquidatable, and
// when losing the pending position would leave the party under its
// maintenance margin.
func (e *Engine) CancelOrder(ctx context.Context, party string, orderID uint64) error {
	ctx = events.WithTraceID(ctx)
	if e.cycle == nil || !e.cycle.IsLive(e.ts.GetTimeNow()) {
		return types.ErrMarketNotLive
	}
	o, err := e.book.Order(orderID)
	if err != nil {
		return err
	}
	if o.Party != party {
		return types.ErrNotOwner
	}
	acc, err := e.collateral.Account(party)
	if err != nil {
		return err
	}
	price, err := e.price.CurrentPrice()
	if err != nil {
		return err
	}
	if acc.LiquidationQueued || acc.Balance.LT(e.marginFor(acc.Positions, price)) {
		return types.ErrInsufficientBalance
	}

	pos := acc.Positions
	if err := pos[o.Side.Leg()].DecPending(o.Side.IsBid(), o.Remaining); err != nil {
		return err
	}
	required := e.marginFor(pos, price)
	if acc.Balance.LT(required) {
		return types.ErrInsufficientBalance
	}

	removed, err := e.book.RemoveOrder(orderID)
	if err != nil {
		return err
	}
	if err := acc.Positions[removed.Side.Leg()].DecPending(removed.Side.IsBid(), removed.Remaining); err != nil {
		return err
	}
	e.broker.Send(events.NewOrderCancelledEvent(ctx, removed.Export(), false))
	return nil
}

// Deposit credits external collateral to the party's account.
func (e *Engine) Deposit(ctx context.Context, party string, amount *num.Uint) error {
	return e.collateral.Deposit(events.WithTraceID(ctx), party, amount)
}

// Withdraw releases free collateral, the part of the balance above the
// party's current maintenance margin.
func (e *Engine) Withdraw(ctx context.Context, party string, amount *num.Uint) error {
	required, err := e.RequiredMargin(party)
	if err != nil {
		return err
	}
	return e.collateral.Withdraw(events.WithTraceID(ctx), party, amount, required)
}

// SettleCycle runs up to maxTraders settlement steps for the expired
// cycle, zero meaning the configured default batch size. It reports
// whether settlement completed; callers keep invoking it until it
// does.
func (e *Engine) SettleCycle(ctx context.Context, maxTraders int) (bool, error) {
	ctx = events.WithTraceID(ctx)
	if e.cycle == nil {
		return false, types.ErrMarketNotLive
	}
	now := e.ts.GetTimeNow()
	if e.cycle.IsLive(now) {
		return false, types.ErrNotExpired
	}
	if e.cycle.Settled {
		return false, types.ErrCycleAlreadySettled
	}
	if e.cycle.SettlementPrice == nil {
		// freeze the first post-expiry price for every chunk.
		price, err := e.price.CurrentPrice()
		if err != nil {
			return false, err
		}
		e.cycle.SettlementPrice = price.Clone()
	}
	done, err := e.settle.Settle(ctx, e.cycle, maxTraders)
	if err != nil || !done {
		return done, err
	}
	e.cycle.Settled = true
	e.log.Info("cycle settled",
		logging.Time("expiry", e.cycle.Expiry),
		logging.String("settlementPrice", e.cycle.SettlementPrice.String()),
	)
	e.book.Reset()
	e.settle.Reset()
	e.cycle = nil
	return true, nil
}

// Pause halts trading and cycle starts. Owner only.
func (e *Engine) Pause(party string) error {
	if party != e.owner {
		return types.ErrNotAuthorised
	}
	e.paused = true
	e.log.Warn("market paused", logging.String("by", party))
	return nil
}

// Resume lifts a pause. Owner only.
func (e *Engine) Resume(party string) error {
	if party != e.owner {
		return types.ErrNotAuthorised
	}
	e.paused = false
	e.log.Info("market resumed", logging.String("by", party))
	return nil
}

// SetFeeRecipient changes where WithdrawFees pays out. Owner only.
func (e *Engine) SetFeeRecipient(party, recipient string) error {
	if party != e.owner {
		return types.ErrNotAuthorised
	}
	e.feeRecipient = recipient
	return nil
}

// WithdrawFees pays the accumulated fee sink out to the fee recipient.
// Owner only.
func (e *Engine) WithdrawFees(ctx context.Context, party string) (*num.Uint, error) {
	if party != e.owner {
		return nil, types.ErrNotAuthorised
	}
	return e.collateral.WithdrawFees(events.WithTraceID(ctx), e.feeRecipient)
}
