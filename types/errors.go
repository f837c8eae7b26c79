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

import "github.com/pkg/errors"

var (
	// ErrInvalidAmount signals a zero size or amount where a nonzero
	// one is required.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInsufficientBalance signals a withdrawal, or a fill, that
	// would drive a balance negative outside liquidation context.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrMarketNotLive signals there is no open cycle, or the current
	// cycle is past expiry.
	ErrMarketNotLive = errors.New("market not live")
	// ErrNotOwner signals a cancel attempt by a party that does not
	// own the order.
	ErrNotOwner = errors.New("not order owner")
	// ErrStillSolvent signals liquidate was called on a healthy account.
	ErrStillSolvent = errors.New("account still solvent")
	// ErrTickTooLarge signals a price that encodes beyond the 24 bit
	// tick space.
	ErrTickTooLarge = errors.New("tick too large")
	// ErrCycleAlreadyStarted signals startCycle while a cycle is live.
	ErrCycleAlreadyStarted = errors.New("cycle already started")
	// ErrPreviousCycleNotSettled signals startCycle before the expired
	// cycle finished settling.
	ErrPreviousCycleNotSettled = errors.New("previous cycle not settled")
	// ErrMaxOrdersReached signals the per-party resting order cap.
	ErrMaxOrdersReached = errors.New("max open orders reached")
	// ErrCycleAlreadySettled signals settlement of a settled cycle.
	ErrCycleAlreadySettled = errors.New("cycle already settled")
	// ErrNotExpired signals settlement before the cycle expiry.
	ErrNotExpired = errors.New("cycle not expired")
	// ErrNotEnrolled signals a trading operation from a party that has
	// not been admitted by the identity gate.
	ErrNotEnrolled = errors.New("party not enrolled")
	// ErrMarketPaused signals a trading operation while trading is
	// administratively paused.
	ErrMarketPaused = errors.New("market paused")
	// ErrNotAuthorised signals an administrative operation from a
	// party without the required role.
	ErrNotAuthorised = errors.New("not authorised")
	// ErrOrderNotFound signals an operation on an unknown order id.
	ErrOrderNotFound = errors.New("order not found")
	// ErrPositionUnderflow signals a counter transition that would go
	// negative. Position counters track in-flight and filled size
	// exactly, so this is an invariant violation.
	ErrPositionUnderflow = errors.New("position counter underflow")
)
