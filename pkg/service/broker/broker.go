// Zaparoo Ambience
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Ambience.
//
// Zaparoo Ambience is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Ambience is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Ambience.  If not, see <http://www.gnu.org/licenses/>.

// Package broker fans API notifications out to any number of subscribers.
// Delivery never blocks: a subscriber whose buffer is full misses the
// notification and the drop is counted.
package broker

import (
	"context"
	"slices"
	"sync/atomic"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
)

// Subscription receives notifications on C until it is unsubscribed or the
// broker closes, at which point C is closed.
type Subscription struct {
	C       <-chan models.Notification
	ch      chan models.Notification
	methods []string
	id      uint64
}

func (s *Subscription) ID() uint64 {
	return s.id
}

func (s *Subscription) wants(method string) bool {
	return len(s.methods) == 0 || slices.Contains(s.methods, method)
}

type Broker struct {
	subs    map[uint64]*Subscription
	mu      syncutil.RWMutex
	nextID  uint64
	dropped atomic.Uint64
	closed  bool
}

func New() *Broker {
	return &Broker{subs: make(map[uint64]*Subscription)}
}

// Run publishes everything read from source until source closes or ctx is
// done, then closes the broker.
func (b *Broker) Run(ctx context.Context, source <-chan models.Notification) {
	defer b.Close()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("broker: context done")
			return
		case n, ok := <-source:
			if !ok {
				log.Debug().Msg("broker: source closed")
				return
			}
			b.Publish(n)
		}
	}
}

// Publish delivers n to every subscriber interested in its method.
func (b *Broker) Publish(n models.Notification) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs {
		if !s.wants(n.Method) {
			continue
		}
		select {
		case s.ch <- n:
		default:
			b.dropped.Add(1)
			log.Warn().
				Uint64("subscriber", s.id).
				Str("method", n.Method).
				Msg("broker: subscriber full, dropping notification")
		}
	}
}

// Subscribe registers a subscriber with room for buffer queued
// notifications. With methods given only those are delivered. Subscribing
// to a closed broker returns an already closed subscription.
func (b *Broker) Subscribe(buffer int, methods ...string) *Subscription {
	ch := make(chan models.Notification, buffer)
	b.mu.Lock()
	defer b.mu.Unlock()

	s := &Subscription{C: ch, ch: ch, methods: methods, id: b.nextID}
	b.nextID++
	if b.closed {
		close(ch)
		return s
	}
	b.subs[s.id] = s
	log.Debug().Uint64("subscriber", s.id).Int("buffer", buffer).Msg("broker: subscribed")
	return s
}

// Unsubscribe removes s and closes its channel. Repeated calls are no-ops.
func (b *Broker) Unsubscribe(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[s.id]; !ok {
		return
	}
	delete(b.subs, s.id)
	close(s.ch)
}

// Close closes every subscription. Later subscriptions are closed at once.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, s := range b.subs {
		close(s.ch)
		delete(b.subs, id)
	}
}

// Len returns the number of live subscriptions.
func (b *Broker) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped returns how many deliveries were skipped because a subscriber was
// full.
func (b *Broker) Dropped() uint64 {
	return b.dropped.Load()
}
