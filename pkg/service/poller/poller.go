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

// Package poller runs the shared background loop which drives fades and
// end-of-playback detection for every sounding playlist entry.
package poller

import (
	"context"
	"time"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// DefaultInterval is the nominal time between ticks.
const DefaultInterval = 100 * time.Millisecond

// TickFunc is called once per tick. Returning false unsubscribes it.
type TickFunc func() bool

// Poller calls every registered TickFunc once per interval on a single
// goroutine, so callbacks for one registrant never run concurrently.
type Poller struct {
	clock    clockwork.Clock
	cancel   context.CancelFunc
	done     chan struct{}
	active   []TickFunc
	pending  []TickFunc
	interval time.Duration
	mu       syncutil.Mutex
	// tickMu serializes Tick between the loop and manual callers.
	tickMu syncutil.Mutex
}

// New creates a stopped poller. A nil clock uses the real clock and a
// non-positive interval uses DefaultInterval.
func New(clock clockwork.Clock, interval time.Duration) *Poller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		clock:    clock,
		interval: interval,
	}
}

// Interval returns the nominal tick period.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Start launches the tick loop. Calling Start on a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		log.Warn().Msg("poller: already running")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx, p.done)

	log.Debug().Dur("interval", p.interval).Msg("poller: started")
}

// Stop ends the tick loop and waits for it to exit. Registrants are kept,
// so a restarted poller carries on where it left off.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	log.Debug().Msg("poller: stopped")
}

// Register adds fn to the next tick. Safe to call from any goroutine,
// including from inside a TickFunc.
func (p *Poller) Register(fn TickFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, fn)
}

// Len returns the number of registrants, including ones not yet ticked.
func (p *Poller) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.active) + len(p.pending)
}

// Tick runs one cycle synchronously: pending registrants are merged in,
// every registrant is called once, and those returning false are dropped.
func (p *Poller) Tick() {
	p.tickMu.Lock()
	defer p.tickMu.Unlock()

	p.mu.Lock()
	p.active = append(p.active, p.pending...)
	p.pending = nil
	fns := p.active
	p.mu.Unlock()

	kept := make([]TickFunc, 0, len(fns))
	for _, fn := range fns {
		if call(fn) {
			kept = append(kept, fn)
		}
	}

	p.mu.Lock()
	p.active = kept
	p.mu.Unlock()
}

// call runs fn, dropping it if it panics so one broken registrant cannot
// take down the loop for every other sound.
func call(fn TickFunc) (keep bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("poller: tick callback panicked, unsubscribing")
			keep = false
		}
	}()
	return fn()
}

func (p *Poller) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	for {
		start := p.clock.Now()
		p.Tick()

		wait := p.interval - p.clock.Since(start)
		if wait < 0 {
			wait = 0
		}

		select {
		case <-ctx.Done():
			return
		case <-p.clock.After(wait):
		}
	}
}
