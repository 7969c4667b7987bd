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

package playlists

import (
	"fmt"
	"slices"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/audio"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/helpers/syncutil"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Entry is one slot of a playlist: a sound plus its repeat and chain flags,
// and the handles currently sounding it. During an overlap an entry can have
// two handles, or more when it repeats itself.
type Entry struct {
	playlist  *Playlist
	sound     audio.Sound
	handles   []*Handle
	id        uuid.UUID
	chainWith uuid.UUID
	mu        syncutil.Mutex
	repeat    bool
	disposed  bool
}

func newEntry(p *Playlist, id uuid.UUID, sound audio.Sound) *Entry {
	return &Entry{
		playlist: p,
		id:       id,
		sound:    sound,
	}
}

func (e *Entry) ID() uuid.UUID {
	return e.id
}

// Playlist returns the playlist which owns the entry.
func (e *Entry) Playlist() *Playlist {
	return e.playlist
}

func (e *Entry) Sound() audio.Sound {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sound
}

// SetSound replaces the entry's sound. Handles already sounding keep
// playing the old one.
func (e *Entry) SetSound(s audio.Sound) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("failed to set sound: %w", err)
	}
	e.mu.Lock()
	e.sound = s
	e.mu.Unlock()
	e.notify()
	return nil
}

func (e *Entry) Repeat() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.repeat
}

// SetRepeat makes the entry restart itself when it plays through. Repeat
// takes priority over the chain target.
func (e *Entry) SetRepeat(repeat bool) {
	e.mu.Lock()
	e.repeat = repeat
	e.mu.Unlock()
	e.notify()
}

// ChainWith returns the id of the entry started after this one, or uuid.Nil.
func (e *Entry) ChainWith() uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chainWith
}

// SetChainWith sets the entry to start after this one plays through,
// overriding the playlist order. uuid.Nil clears it. Cycles, including an
// entry chained to itself, are allowed.
func (e *Entry) SetChainWith(id uuid.UUID) {
	e.mu.Lock()
	e.chainWith = id
	e.mu.Unlock()
	e.notify()
}

func (e *Entry) clearChainTo(id uuid.UUID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.chainWith != id {
		return false
	}
	e.chainWith = uuid.Nil
	return true
}

// IsActive reports whether the entry has a handle which is not on its way
// out.
func (e *Entry) IsActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, h := range e.handles {
		if h.status != StatusStopping {
			return true
		}
	}
	return false
}

// Status summarizes the entry's handles, the most audible status winning.
func (e *Entry) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.statusLocked()
}

var statusRank = map[Status]int{
	StatusStopped:  0,
	StatusStopping: 1,
	StatusPaused:   2,
	StatusPausing:  3,
	StatusPlaying:  4,
}

func (e *Entry) statusLocked() Status {
	st := StatusStopped
	for _, h := range e.handles {
		if statusRank[h.status] > statusRank[st] {
			st = h.status
		}
	}
	return st
}

// Handles returns a snapshot of every handle of the entry.
func (e *Entry) Handles() []HandleState {
	e.mu.Lock()
	defer e.mu.Unlock()
	states := make([]HandleState, 0, len(e.handles))
	for _, h := range e.handles {
		states = append(states, h.state())
	}
	return states
}

// Play resumes the entry if it is active and starts it otherwise.
func (e *Entry) Play() {
	e.play()
	e.notify()
}

func (e *Entry) play() {
	if e.IsActive() {
		e.resume()
		return
	}
	e.startPlaying(0)
}

// startPlaying creates a new handle for the entry's sound. A sound the
// engine can't play is skipped as if it had played through; skips counts
// how many entries in a row were skipped so a playlist of unplayable
// sounds comes to an end.
func (e *Entry) startPlaying(skips int) {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	sound := e.sound
	e.mu.Unlock()

	p := e.playlist
	player, err := p.playerFor(sound)
	if err != nil {
		log.Warn().Err(err).Str("path", sound.Path).Msg("playlists: skipping unplayable sound")
		if skips < p.Len() {
			e.nextSound(skips + 1)
		}
		return
	}
	player = trim(player, sound)

	s := p.settings.Snapshot()
	h := newHandle(player, volumeFactor(s, p.intN))

	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		player.Stop()
		return
	}
	h.status = StatusPlaying
	h.applyVolume(s, player.Position())
	e.handles = append(e.handles, h)
	e.mu.Unlock()

	log.Debug().Str("path", sound.Path).Float64("factor", h.volumeFactor).
		Msg("playlists: starting sound")
	p.scheduler.Register(func() bool {
		return e.onTick(h)
	})
	player.Play()
}

// Pause fades out every playing handle and then pauses it.
func (e *Entry) Pause() {
	e.pause()
	e.notify()
}

func (e *Entry) pause() {
	s := e.playlist.settings.Snapshot()
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, h := range e.handles {
		if h.status != StatusPlaying {
			continue
		}
		h.retargetFadeOut(s, h.player.Position())
		h.status = StatusPausing
	}
}

// Stop fades out every handle and then stops it. Stopping a stopping
// handle changes nothing.
func (e *Entry) Stop() {
	e.stop()
	e.notify()
}

func (e *Entry) stop() {
	s := e.playlist.settings.Snapshot()
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, h := range e.handles {
		switch h.status {
		case StatusStopping:
			continue
		case StatusPaused:
			// already silent, let the next tick tear it down
			h.fadeOutEnd = h.player.Position()
		case StatusPausing:
			// keep the fade in progress
		default:
			h.retargetFadeOut(s, h.player.Position())
		}
		h.status = StatusStopping
	}
}

// Resume cancels pending fade-outs and fades paused handles back in.
func (e *Entry) Resume() {
	e.resume()
	e.notify()
}

func (e *Entry) resume() {
	s := e.playlist.settings.Snapshot()
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, h := range e.handles {
		if h.status != StatusPausing && h.status != StatusPaused {
			continue
		}
		pos := h.player.Position()
		h.fadeInBegin = pos
		h.fadeOutEnd = h.player.Length()
		h.status = StatusPlaying
		h.applyVolume(s, pos)
		h.player.Play()
	}
}

// onTick advances one handle: it starts the successor once the handle
// enters its overlap window, applies the fade, and finishes pauses and
// stops whose fade has reached silence. It returns false once the handle is
// gone.
func (e *Entry) onTick(h *Handle) bool {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return false
	}

	s := e.playlist.settings.Snapshot()
	pos := h.player.Position()
	finished := h.player.Finished()

	startNext := false
	if !h.nextStarted && h.status == StatusPlaying &&
		(finished || h.player.Length()-pos <= s.Overlap) {
		h.nextStarted = true
		startNext = true
	}

	vol := h.applyVolume(s, pos)

	changed := startNext
	keep := true
	if h.status == StatusPausing && vol <= 0 {
		h.player.Pause()
		h.status = StatusPaused
		changed = true
	}
	if (h.status == StatusStopping && vol <= 0) || finished {
		h.player.Stop()
		e.handles = slices.DeleteFunc(e.handles, func(other *Handle) bool {
			return other == h
		})
		changed = true
		keep = false
	}
	e.mu.Unlock()

	if startNext {
		e.nextSound(0)
	}
	if changed {
		e.notify()
	}
	return keep
}

// nextSound starts whatever follows the entry: itself when repeating, its
// chain target when that is still in the playlist, and otherwise the
// playlist's choice. Nothing may follow, which ends playback.
func (e *Entry) nextSound(skips int) {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	repeat := e.repeat
	chain := e.chainWith
	e.mu.Unlock()

	if repeat {
		e.startPlaying(skips)
		return
	}
	if chain != uuid.Nil {
		if next := e.playlist.Entry(chain); next != nil {
			next.startPlaying(skips)
			return
		}
	}
	if next := e.playlist.NextEntry(e.id); next != nil {
		next.startPlaying(skips)
		return
	}
	log.Debug().Str("playlist", e.playlist.ID().String()).Msg("playlists: no successor, playback ended")
}

// Dispose detaches the entry after removal. Its players are stopped at once
// and its tick callbacks unsubscribe on their next call.
func (e *Entry) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return
	}
	e.disposed = true
	for _, h := range e.handles {
		h.player.Stop()
	}
	e.handles = nil
}

// Disposed reports whether the entry was removed from its playlist.
func (e *Entry) Disposed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.disposed
}

func (e *Entry) notify() {
	e.playlist.notify()
}
