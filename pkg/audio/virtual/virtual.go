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

// Package virtual provides a silent audio engine whose players advance on an
// injected clock. It backs headless mode and makes playback deterministic in
// tests.
package virtual

import (
	"fmt"
	"time"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/audio"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
)

// Option configures an Engine.
type Option func(*Engine)

// WithDefaultLength makes unknown paths playable with the given length.
func WithDefaultLength(d time.Duration) Option {
	return func(e *Engine) {
		e.defaultLength = d
	}
}

// Engine implements audio.Engine without producing sound.
type Engine struct {
	clock         clockwork.Clock
	lengths       map[string]time.Duration
	players       []*Player
	defaultLength time.Duration
	master        float64
	created       int
	mu            syncutil.Mutex
	paused        bool
}

// New returns an engine driven by clock. A nil clock uses the real clock.
func New(clock clockwork.Clock, opts ...Option) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	e := &Engine{
		clock:   clock,
		lengths: make(map[string]time.Duration),
		master:  1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddSound registers a playable path and its length.
func (e *Engine) AddSound(path string, length time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lengths[path] = length
}

// PlayerFor returns a paused player, or audio.ErrUnavailable for unknown
// paths when no default length is set.
func (e *Engine) PlayerFor(sound audio.Sound) (audio.Player, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	length, ok := e.lengths[sound.Path]
	if !ok {
		if e.defaultLength <= 0 {
			return nil, fmt.Errorf("%w: %s", audio.ErrUnavailable, sound.Path)
		}
		length = e.defaultLength
	}

	p := &Player{
		since:  e.clock.Now(),
		engine: e,
		path:   sound.Path,
		length: length,
		volume: 1,
		speed:  1,
	}
	e.players = append(e.players, p)
	e.created++
	return p, nil
}

// SetAllPaused freezes or releases every player's clock.
func (e *Engine) SetAllPaused(paused bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range e.players {
		p.advance()
	}
	e.paused = paused
}

// SetMasterVolume records the master volume.
func (e *Engine) SetMasterVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.master = audio.Clamp(v, 0, 1)
}

// MasterVolume returns the master volume.
func (e *Engine) MasterVolume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.master
}

// AllPaused reports whether the engine is paused.
func (e *Engine) AllPaused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// StopAll stops every live player.
func (e *Engine) StopAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range e.players {
		p.stopLocked()
	}
	e.players = nil
}

// Players returns the players which have not been stopped.
func (e *Engine) Players() []*Player {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Player, len(e.players))
	copy(out, e.players)
	return out
}

// Sounding returns the paths of players that are currently playing.
func (e *Engine) Sounding() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var paths []string
	for _, p := range e.players {
		p.advance()
		if p.playing && !p.finishedLocked() {
			paths = append(paths, p.path)
		}
	}
	return paths
}

// Created returns how many players the engine has handed out.
func (e *Engine) Created() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.created
}

func (e *Engine) remove(p *Player) {
	for i, other := range e.players {
		if other == p {
			e.players = append(e.players[:i], e.players[i+1:]...)
			return
		}
	}
}

// Player is a virtual audio.Player. All fields are guarded by the engine lock.
type Player struct {
	since    time.Time
	engine   *Engine
	path     string
	length   time.Duration
	position time.Duration
	volume   float64
	pan      float64
	speed    float64
	playing  bool
	stopped  bool
}

// Path returns the file the player was created for.
func (p *Player) Path() string {
	return p.path
}

// advance folds elapsed running time into the position.
func (p *Player) advance() {
	now := p.engine.clock.Now()
	if p.playing && !p.stopped && !p.engine.paused {
		elapsed := time.Duration(float64(now.Sub(p.since)) * p.speed)
		p.position += elapsed
		if p.position > p.length {
			p.position = p.length
		}
	}
	p.since = now
}

func (p *Player) finishedLocked() bool {
	return p.stopped || p.position >= p.length
}

func (p *Player) stopLocked() {
	p.advance()
	p.playing = false
	p.stopped = true
}

func (p *Player) Play() {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	if p.stopped {
		return
	}
	p.advance()
	p.playing = true
}

func (p *Player) Pause() {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	p.advance()
	p.playing = false
}

func (p *Player) Stop() {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopLocked()
	p.engine.remove(p)
}

// Playing reports whether the player is running.
func (p *Player) Playing() bool {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	return p.playing && !p.stopped
}

// Stopped reports whether Stop was called.
func (p *Player) Stopped() bool {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	return p.stopped
}

func (p *Player) Volume() float64 {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	return p.volume
}

func (p *Player) SetVolume(v float64) {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	p.volume = audio.Clamp(v, 0, 1)
}

func (p *Player) Pan() float64 {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	return p.pan
}

func (p *Player) SetPan(pan float64) {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	p.pan = audio.Clamp(pan, -1, 1)
}

func (p *Player) Finished() bool {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	p.advance()
	return p.finishedLocked()
}

func (p *Player) Position() time.Duration {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	p.advance()
	return p.position
}

func (p *Player) SetPosition(pos time.Duration) {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	p.advance()
	p.position = time.Duration(audio.Clamp(float64(pos), 0, float64(p.length)))
}

func (p *Player) Speed() float64 {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	return p.speed
}

func (p *Player) SetSpeed(s float64) {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	p.advance()
	if s < 0.01 {
		s = 0.01
	}
	p.speed = s
}

func (p *Player) Length() time.Duration {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	return p.length
}
