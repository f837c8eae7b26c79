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

package collateral_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.tickmarket.io/optix/broker"
	"code.tickmarket.io/optix/collateral"
	"code.tickmarket.io/optix/logging"
	"code.tickmarket.io/optix/types"
	"code.tickmarket.io/optix/types/num"
)

func getTestEngine(t *testing.T, gate collateral.IdentityGate) *collateral.Engine {
	t.Helper()
	log := logging.NewTestLogger()
	bkr := broker.New(log, broker.NewDefaultConfig())
	return collateral.New(log, collateral.NewDefaultConfig(), collateral.NewBuiltinCustody(), gate, bkr)
}

func TestAccountEnrollmentGate(t *testing.T) {
	gate := collateral.NewAllowlist()
	eng := getTestEngine(t, gate)

	_, err := eng.Account("alice")
	assert.ErrorIs(t, err, types.ErrNotEnrolled)

	gate.Enroll("alice")
	acc, err := eng.Account("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", acc.Party)

	// same record on repeat access.
	again, err := eng.Account("alice")
	require.NoError(t, err)
	assert.Same(t, acc, again)
}

func TestDepositWithdraw(t *testing.T) {
	ctx := context.Background()
	eng := getTestEngine(t, collateral.NewOpenGate())

	assert.ErrorIs(t, eng.Deposit(ctx, "alice", num.UintZero()), types.ErrInvalidAmount)
	require.NoError(t, eng.Deposit(ctx, "alice", num.NewUint(1000)))

	acc, _ := eng.Account("alice")
	assert.Equal(t, "1000", acc.Balance.String())

	require.NoError(t, eng.Withdraw(ctx, "alice", num.NewUint(400), num.UintZero()))
	assert.Equal(t, "600", acc.Balance.String())

	// margin locks part of the balance.
	err := eng.Withdraw(ctx, "alice", num.NewUint(500), num.NewUint(200))
	assert.ErrorIs(t, err, types.ErrInsufficientBalance)
	require.NoError(t, eng.Withdraw(ctx, "alice", num.NewUint(400), num.NewUint(200)))
	assert.Equal(t, "200", acc.Balance.String())
}

func TestDebitCreditHelpers(t *testing.T) {
	eng := getTestEngine(t, collateral.NewOpenGate())
	acc, _ := eng.Account("alice")

	eng.Credit(acc, num.NewUint(100))
	assert.ErrorIs(t, eng.Debit(acc, num.NewUint(101)), types.ErrInsufficientBalance)
	require.NoError(t, eng.Debit(acc, num.NewUint(40)))
	assert.Equal(t, "60", acc.Balance.String())

	paid := eng.DebitUpTo(acc, num.NewUint(500))
	assert.Equal(t, "60", paid.String())
	assert.True(t, acc.Balance.IsZero())
}

func TestRosterLifecycle(t *testing.T) {
	eng := getTestEngine(t, collateral.NewOpenGate())
	a, _ := eng.Account("alice")
	b, _ := eng.Account("bob")

	eng.JoinCycle(a)
	eng.JoinCycle(b)
	// joining twice keeps one roster slot.
	eng.JoinCycle(a)
	require.Equal(t, 2, eng.RosterLen())
	assert.Same(t, a, eng.PartyAt(0))
	assert.Same(t, b, eng.PartyAt(1))

	eng.ClearRoster()
	assert.Zero(t, eng.RosterLen())
}

func TestFeeSinkAndBadDebt(t *testing.T) {
	ctx := context.Background()
	eng := getTestEngine(t, collateral.NewOpenGate())

	eng.AddFee(num.NewUint(10))
	eng.AddFee(num.NewUint(5))
	assert.Equal(t, "15", eng.FeeSink().String())

	amount, err := eng.WithdrawFees(ctx, "treasury")
	require.NoError(t, err)
	assert.Equal(t, "15", amount.String())
	assert.True(t, eng.FeeSink().IsZero())

	eng.AddBadDebt(num.NewUint(7))
	eng.AddBadDebt(num.NewUint(3))
	assert.Equal(t, "10", eng.BadDebt().String())
	eng.ResetBadDebt()
	assert.True(t, eng.BadDebt().IsZero())
}
