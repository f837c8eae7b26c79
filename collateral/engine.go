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

package collateral

import (
	"context"

	"code.tickmarket.io/optix/broker"
	"code.tickmarket.io/optix/events"
	"code.tickmarket.io/optix/logging"
	"code.tickmarket.io/optix/metrics"
	"code.tickmarket.io/optix/types"
	"code.tickmarket.io/optix/types/num"

	"github.com/google/uuid"
)

// Custody is the external collateral custodian. Both calls are atomic,
// a failure aborts the whole engine operation that triggered it.
type Custody interface {
	TransferIn(ctx context.Context, party string, amount *num.Uint) error
	TransferOut(ctx context.Context, party string, amount *num.Uint) error
}

// IdentityGate answers whether a party passed enrollment. Signature
// verification for enrollment itself lives with the gate, not here.
type IdentityGate interface {
	Enrolled(party string) bool
}

// Engine is the account ledger: one record per enrolled party, the
// protocol fee sink, and the cycle-wide bad debt accumulator. All
// balances are in the collateral's minor unit.
type Engine struct {
	log *logging.Logger
	cfg Config

	custody Custody
	gate    IdentityGate
	broker  broker.Interface

	accounts map[string]*types.Account
	// roster holds the parties active in the current cycle in join
	// order. Settlement walks it with a cursor, so ordering is fixed
	// for a cycle's lifetime.
	roster []string

	feeSink *num.Uint
	badDebt *num.Uint
}

// New instantiates the collateral engine.
func New(log *logging.Logger, cfg Config, custody Custody, gate IdentityGate, bkr broker.Interface) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Engine{
		log:      log,
		cfg:      cfg,
		custody:  custody,
		gate:     gate,
		broker:   bkr,
		accounts: map[string]*types.Account{},
		feeSink:  num.UintZero(),
		badDebt:  num.UintZero(),
	}
}

// ReloadConf updates the internal configuration of the engine.
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

// Account returns the ledger record for a party, creating it on first
// use by an enrolled party.
func (e *Engine) Account(party string) (*types.Account, error) {
	if acc, ok := e.accounts[party]; ok {
		return acc, nil
	}
	if !e.gate.Enrolled(party) {
		return nil, types.ErrNotEnrolled
	}
	acc := types.NewAccount(party)
	e.accounts[party] = acc
	return acc, nil
}

// Deposit transfers amount in from custody and credits the party.
func (e *Engine) Deposit(ctx context.Context, party string, amount *num.Uint) error {
	if amount == nil || amount.IsZero() {
		return types.ErrInvalidAmount
	}
	acc, err := e.Account(party)
	if err != nil {
		return err
	}
	if err := e.custody.TransferIn(ctx, party, amount); err != nil {
		return err
	}
	acc.Balance.AddSum(amount)
	e.broker.Send(events.NewDepositEvent(ctx, party, amount, uuid.NewString()))
	return nil
}

// Withdraw debits the party and transfers amount out through custody.
// The caller supplies the margin currently required for the party's
// open exposure, the withdrawal may not eat into it.
func (e *Engine) Withdraw(ctx context.Context, party string, amount, requiredMargin *num.Uint) error {
	if amount == nil || amount.IsZero() {
		return types.ErrInvalidAmount
	}
	acc, err := e.Account(party)
	if err != nil {
		return err
	}
	free := num.UintZero()
	if acc.Balance.GT(requiredMargin) {
		free.Sub(acc.Balance, requiredMargin)
	}
	if amount.GT(free) {
		return types.ErrInsufficientBalance
	}
	if err := e.custody.TransferOut(ctx, party, amount); err != nil {
		return err
	}
	acc.Balance.Sub(acc.Balance, amount)
	e.broker.Send(events.NewWithdrawalEvent(ctx, party, amount, uuid.NewString()))
	return nil
}

// JoinCycle adds the party to the current cycle's roster if it is not
// a member yet.
func (e *Engine) JoinCycle(acc *types.Account) {
	if acc.ActiveInCycle {
		return
	}
	acc.ActiveInCycle = true
	e.roster = append(e.roster, acc.Party)
}

// RosterLen returns the number of parties active in the cycle.
func (e *Engine) RosterLen() int {
	return len(e.roster)
}

// PartyAt returns the roster entry at the given cursor position.
func (e *Engine) PartyAt(i int) *types.Account {
	return e.accounts[e.roster[i]]
}

// ClearRoster drops the cycle roster. Called once settlement finished,
// per-account position state is cleared trader by trader in phase 1.
func (e *Engine) ClearRoster() {
	e.roster = e.roster[:0]
}

// Credit adds amount to the account balance.
func (e *Engine) Credit(acc *types.Account, amount *num.Uint) {
	acc.Balance.AddSum(amount)
}

// Debit removes amount from the account balance, failing if the
// balance cannot cover it.
func (e *Engine) Debit(acc *types.Account, amount *num.Uint) error {
	if acc.Balance.LT(amount) {
		return types.ErrInsufficientBalance
	}
	acc.Balance.Sub(acc.Balance, amount)
	return nil
}

// DebitUpTo removes at most amount from the balance and returns what
// was actually taken.
func (e *Engine) DebitUpTo(acc *types.Account, amount *num.Uint) *num.Uint {
	paid := num.Min(acc.Balance, amount)
	acc.Balance.Sub(acc.Balance, paid)
	return paid
}

// AddFee routes an amount into the protocol fee sink.
func (e *Engine) AddFee(amount *num.Uint) {
	e.feeSink.AddSum(amount)
	metrics.FeeSinkSet(e.feeSink.ToDecimal().InexactFloat64())
}

// FeeSink returns the current fee sink balance.
func (e *Engine) FeeSink() *num.Uint {
	return e.feeSink.Clone()
}

// WithdrawFees empties the fee sink out to the given recipient.
func (e *Engine) WithdrawFees(ctx context.Context, recipient string) (*num.Uint, error) {
	amount := e.feeSink.Clone()
	if amount.IsZero() {
		return amount, nil
	}
	if err := e.custody.TransferOut(ctx, recipient, amount); err != nil {
		return nil, err
	}
	e.feeSink = num.UintZero()
	metrics.FeeSinkSet(0)
	e.broker.Send(events.NewWithdrawalEvent(ctx, recipient, amount, uuid.NewString()))
	return amount, nil
}

// AddBadDebt grows the cycle-wide shortfall accumulator.
func (e *Engine) AddBadDebt(amount *num.Uint) {
	e.badDebt.AddSum(amount)
	metrics.BadDebtSet(e.badDebt.ToDecimal().InexactFloat64())
}

// BadDebt returns the accumulated shortfall for the cycle.
func (e *Engine) BadDebt() *num.Uint {
	return e.badDebt.Clone()
}

// ResetBadDebt zeroes the accumulator at the end of a settlement run.
func (e *Engine) ResetBadDebt() {
	e.badDebt = num.UintZero()
	metrics.BadDebtSet(0)
}
