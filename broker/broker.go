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

package broker

import (
	"sync"

	"code.tickmarket.io/optix/events"
	"code.tickmarket.io/optix/logging"
)

// Subscriber receives events pushed through the broker. Push is called
// on the engine's thread of control, implementations that do slow work
// should hand the events off internally.
type Subscriber interface {
	Push(evts ...events.Event)
	Types() []events.Type
}

// Interface is the event-sending surface engines depend on.
type Interface interface {
	Send(event events.Event)
	SendBatch(evts []events.Event)
}

// Broker is an in-process fan-out of engine events to subscribers,
// keyed by event type. Subscribing to events.All receives everything.
type Broker struct {
	log *logging.Logger
	cfg Config

	mu    sync.Mutex
	subs  map[int]Subscriber
	tSubs map[events.Type]map[int]Subscriber
	seq   int
}

// New creates a new broker.
func New(log *logging.Logger, cfg Config) *Broker {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Broker{
		log:   log,
		cfg:   cfg,
		subs:  map[int]Subscriber{},
		tSubs: map[events.Type]map[int]Subscriber{},
	}
}

// Subscribe registers a subscriber for the event types it declares,
// returning the key to unsubscribe with.
func (b *Broker) Subscribe(s Subscriber) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	k := b.seq
	b.subs[k] = s
	for _, t := range s.Types() {
		if _, ok := b.tSubs[t]; !ok {
			b.tSubs[t] = map[int]Subscriber{}
		}
		b.tSubs[t][k] = s
	}
	return k
}

// Unsubscribe removes a subscriber by key. Unknown keys are a no-op.
func (b *Broker) Unsubscribe(k int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.subs[k]
	if !ok {
		return
	}
	for _, t := range s.Types() {
		delete(b.tSubs[t], k)
	}
	delete(b.subs, k)
}

// Send pushes a single event to all matching subscribers.
func (b *Broker) Send(event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send(event)
}

// SendBatch pushes a batch of events, preserving their order.
func (b *Broker) SendBatch(evts []events.Event) {
	if len(evts) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range evts {
		b.send(e)
	}
}

func (b *Broker) send(event events.Event) {
	if b.log.IsDebug() {
		b.log.Debug("sending event",
			logging.String("type", event.Type().String()),
			logging.String("trace-id", event.TraceID()),
		)
	}
	for _, s := range b.tSubs[event.Type()] {
		s.Push(event)
	}
	for _, s := range b.tSubs[events.All] {
		s.Push(event)
	}
}
