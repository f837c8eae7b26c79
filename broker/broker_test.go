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

package broker_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.tickmarket.io/optix/broker"
	"code.tickmarket.io/optix/events"
	"code.tickmarket.io/optix/logging"
	"code.tickmarket.io/optix/types/num"
)

type recordingSub struct {
	types []events.Type
	got   []events.Event
}

func (s *recordingSub) Push(evts ...events.Event) {
	s.got = append(s.got, evts...)
}

func (s *recordingSub) Types() []events.Type {
	return s.types
}

func getTestBroker() *broker.Broker {
	return broker.New(logging.NewTestLogger(), broker.NewDefaultConfig())
}

func cycleEvent(ctx context.Context) events.Event {
	return events.NewCycleStartedEvent(ctx, time.Unix(1000, 0), num.NewUint(50_000))
}

func depositEvent(ctx context.Context) events.Event {
	return events.NewDepositEvent(ctx, "alice", num.NewUint(10), "ref")
}

func TestBrokerTypedSubscription(t *testing.T) {
	ctx := context.Background()
	bkr := getTestBroker()
	sub := &recordingSub{types: []events.Type{events.CycleStartedEvent}}
	bkr.Subscribe(sub)

	bkr.Send(cycleEvent(ctx))
	bkr.Send(depositEvent(ctx))

	require.Len(t, sub.got, 1)
	assert.Equal(t, events.CycleStartedEvent, sub.got[0].Type())
}

func TestBrokerAllSubscription(t *testing.T) {
	ctx := context.Background()
	bkr := getTestBroker()
	sub := &recordingSub{types: []events.Type{events.All}}
	bkr.Subscribe(sub)

	bkr.Send(cycleEvent(ctx))
	bkr.SendBatch([]events.Event{depositEvent(ctx), cycleEvent(ctx)})

	assert.Len(t, sub.got, 3)
}

func TestBrokerUnsubscribe(t *testing.T) {
	ctx := context.Background()
	bkr := getTestBroker()
	sub := &recordingSub{types: []events.Type{events.All}}
	key := bkr.Subscribe(sub)

	bkr.Send(cycleEvent(ctx))
	bkr.Unsubscribe(key)
	bkr.Send(cycleEvent(ctx))

	assert.Len(t, sub.got, 1)
}

func TestEventsShareTraceIDPerOperation(t *testing.T) {
	ctx := context.Background()
	first := cycleEvent(ctx)
	second := depositEvent(first.Context())
	other := cycleEvent(context.Background())

	assert.NotEmpty(t, first.TraceID())
	// events derived from the same operation context share an ID.
	assert.Equal(t, first.TraceID(), second.TraceID())
	assert.NotEqual(t, first.TraceID(), other.TraceID())
}
