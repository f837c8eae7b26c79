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

	"github.com/google/uuid"
)

// Type distinguishes the kinds of events emitted on the bus.
type Type int

const (
	// All is used by subscribers that want every event, it has no
	// corresponding payload.
	All Type = iota
	CycleStartedEvent
	CycleSettledEvent
	DepositEvent
	WithdrawalEvent
	OrderPlacedEvent
	OrderFilledEvent
	OrderCancelledEvent
	TakerQueuedEvent
	LiquidationStartedEvent
	LiquidationFeePaidEvent
	TraderSettledEvent
	LossSocializationEvent
)

var eventStrings = map[Type]string{
	All:                     "ALL",
	CycleStartedEvent:       "CycleStarted",
	CycleSettledEvent:       "CycleSettled",
	DepositEvent:            "Deposit",
	WithdrawalEvent:         "Withdrawal",
	OrderPlacedEvent:        "OrderPlaced",
	OrderFilledEvent:        "OrderFilled",
	OrderCancelledEvent:     "OrderCancelled",
	TakerQueuedEvent:        "TakerQueued",
	LiquidationStartedEvent: "LiquidationStarted",
	LiquidationFeePaidEvent: "LiquidationFeePaid",
	TraderSettledEvent:      "TraderSettled",
	LossSocializationEvent:  "LossSocialization",
}

func (t Type) String() string {
	s, ok := eventStrings[t]
	if !ok {
		return "UNKNOWN"
	}
	return s
}

// Event is the common interface of everything sent over the broker.
type Event interface {
	Type() Type
	Context() context.Context
	TraceID() string
}

type traceIDKey int

const traceIDCtxKey traceIDKey = 0

// Base is the common denominator all bus events share.
type Base struct {
	ctx     context.Context
	traceID string
	et      Type
}

// WithTraceID derives a context carrying a fresh trace ID unless one
// is attached already. Engines call it once at each external entry
// point so every event the operation emits shares the same ID.
func WithTraceID(ctx context.Context) context.Context {
	if _, ok := ctx.Value(traceIDCtxKey).(string); ok {
		return ctx
	}
	return context.WithValue(ctx, traceIDCtxKey, uuid.NewString())
}

// newBase attaches a trace ID to the context if none is present yet, so
// all events emitted from a single external operation share one ID.
func newBase(ctx context.Context, t Type) *Base {
	traceID, ok := ctx.Value(traceIDCtxKey).(string)
	if !ok {
		traceID = uuid.NewString()
		ctx = context.WithValue(ctx, traceIDCtxKey, traceID)
	}
	return &Base{
		ctx:     ctx,
		traceID: traceID,
		et:      t,
	}
}

// Type returns the event type.
func (b Base) Type() Type {
	return b.et
}

// Context returns the context the event was created from.
func (b Base) Context() context.Context {
	return b.ctx
}

// TraceID returns the trace ID of the operation that emitted the event.
func (b Base) TraceID() string {
	return b.traceID
}
