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

// Package playlists implements playback of ordered sound lists with
// crossfades, chaining, self-repeat and randomized order and volume.
//
// Fades and end-of-sound detection run on a shared poller: every sounding
// handle registers a tick callback which recomputes its volume and starts
// the entry's successor when the handle enters its overlap window.
package playlists

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/audio"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/service/poller"
	"github.com/google/uuid"
)

// Scheduler runs tick callbacks, usually a *poller.Poller.
type Scheduler interface {
	Register(fn poller.TickFunc)
}

// Observer is told about every change to a playlist: playback state,
// entries, flags and settings.
type Observer interface {
	PlaylistChanged(id uuid.UUID)
}

// ObserverFunc adapts a function to the Observer interface. Function values
// can't be compared, so adding the same ObserverFunc twice registers it
// twice.
type ObserverFunc func(id uuid.UUID)

func (f ObserverFunc) PlaylistChanged(id uuid.UUID) {
	f(id)
}

type Playlist struct {
	engine        audio.Engine
	scheduler     Scheduler
	settings      *Settings
	rng           *rand.Rand
	name          string
	entries       []*Entry
	observers     []Observer
	status        Status
	rngMu         syncutil.Mutex
	mu            syncutil.RWMutex
	id            uuid.UUID
	repeatList    bool
	randomize     bool
	stopAfterEach bool
	disposed      bool
}

type Option func(*Playlist)

// WithID sets the playlist id instead of generating one.
func WithID(id uuid.UUID) Option {
	return func(p *Playlist) {
		p.id = id
	}
}

func WithName(name string) Option {
	return func(p *Playlist) {
		p.name = name
	}
}

// WithSettings sets the initial playback settings.
func WithSettings(s PlaybackSettings) Option {
	return func(p *Playlist) {
		p.settings = NewSettings(s)
	}
}

// WithRand sets the source used for random order and volume.
func WithRand(r *rand.Rand) Option {
	return func(p *Playlist) {
		p.rng = r
	}
}

// New creates an empty playlist playing through engine, with its fades
// driven by scheduler.
func New(engine audio.Engine, scheduler Scheduler, opts ...Option) *Playlist {
	p := &Playlist{
		engine:    engine,
		scheduler: scheduler,
		id:        uuid.New(),
		status:    StatusStopped,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.settings == nil {
		p.settings = NewSettings(DefaultPlaybackSettings())
	}
	if p.rng == nil {
		seed := uint64(time.Now().UnixNano())
		p.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return p
}

func (p *Playlist) ID() uuid.UUID {
	return p.id
}

func (p *Playlist) Name() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.name
}

func (p *Playlist) SetName(name string) {
	p.mu.Lock()
	p.name = name
	p.mu.Unlock()
	p.notify()
}

func (p *Playlist) intN(n int) int {
	p.rngMu.Lock()
	defer p.rngMu.Unlock()
	return p.rng.IntN(n)
}

func (p *Playlist) playerFor(s audio.Sound) (audio.Player, error) {
	//nolint:wrapcheck // callers log the engine's error as is
	return p.engine.PlayerFor(s)
}

// Settings returns a snapshot of the playback settings.
func (p *Playlist) Settings() PlaybackSettings {
	return p.settings.Snapshot()
}

// SetSettings replaces all playback settings. Like the single setters it
// affects sounding handles from their next tick.
func (p *Playlist) SetSettings(s PlaybackSettings) {
	p.settings.replace(s)
	p.notify()
}

func (p *Playlist) SetFadeIn(d time.Duration) {
	p.settings.SetFadeIn(d)
	p.notify()
}

func (p *Playlist) SetFadeOut(d time.Duration) {
	p.settings.SetFadeOut(d)
	p.notify()
}

func (p *Playlist) SetOverlap(d time.Duration) {
	p.settings.SetOverlap(d)
	p.notify()
}

func (p *Playlist) SetVolume(v float64) {
	p.settings.SetVolume(v)
	p.notify()
}

func (p *Playlist) SetRandomizeVolumeFrom(v float64) {
	p.settings.SetRandomizeVolumeFrom(v)
	p.notify()
}

func (p *Playlist) SetRandomizeVolumeTo(v float64) {
	p.settings.SetRandomizeVolumeTo(v)
	p.notify()
}

func (p *Playlist) RepeatList() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.repeatList
}

// SetRepeatList makes sequential playback wrap to the first entry.
func (p *Playlist) SetRepeatList(b bool) {
	p.mu.Lock()
	p.repeatList = b
	p.mu.Unlock()
	p.notify()
}

func (p *Playlist) Randomize() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.randomize
}

// SetRandomize makes each successor a random entry other than the current
// one.
func (p *Playlist) SetRandomize(b bool) {
	p.mu.Lock()
	p.randomize = b
	p.mu.Unlock()
	p.notify()
}

func (p *Playlist) StopAfterEach() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stopAfterEach
}

// SetStopAfterEach makes playback end after every entry unless the entry
// repeats or chains.
func (p *Playlist) SetStopAfterEach(b bool) {
	p.mu.Lock()
	p.stopAfterEach = b
	p.mu.Unlock()
	p.notify()
}

// Status returns the transient Stopping or Pausing status while a stop or
// pause is fanned out, and otherwise the most audible entry status.
func (p *Playlist) Status() Status {
	p.mu.RLock()
	st := p.status
	entries := slices.Clone(p.entries)
	p.mu.RUnlock()
	if st != StatusStopped {
		return st
	}
	for _, e := range entries {
		if es := e.Status(); statusRank[es] > statusRank[st] {
			st = es
		}
	}
	return st
}

func (p *Playlist) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

// Entries returns the entries in playback order.
func (p *Playlist) Entries() []*Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.entries)
}

// Entry returns the entry with the given id, or nil.
func (p *Playlist) Entry(id uuid.UUID) *Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if i := p.indexLocked(id); i >= 0 {
		return p.entries[i]
	}
	return nil
}

// EntryAt returns the entry at index i, or nil when i is out of range.
func (p *Playlist) EntryAt(i int) *Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if i < 0 || i >= len(p.entries) {
		return nil
	}
	return p.entries[i]
}

// IDFromIndex returns the id of the entry at index i, or uuid.Nil.
func (p *Playlist) IDFromIndex(i int) uuid.UUID {
	if e := p.EntryAt(i); e != nil {
		return e.id
	}
	return uuid.Nil
}

// IndexOf returns the position of the entry with the given id, or -1.
func (p *Playlist) IndexOf(id uuid.UUID) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.indexLocked(id)
}

func (p *Playlist) indexLocked(id uuid.UUID) int {
	return slices.IndexFunc(p.entries, func(e *Entry) bool {
		return e.id == id
	})
}

// IsActive reports whether any entry is sounding and not being stopped.
func (p *Playlist) IsActive() bool {
	for _, e := range p.Entries() {
		if e.IsActive() {
			return true
		}
	}
	return false
}

// NextEntry returns the entry which follows the entry with the given id
// under the playlist's order flags, or nil when playback should end.
func (p *Playlist) NextEntry(id uuid.UUID) *Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopAfterEach || len(p.entries) == 0 {
		return nil
	}
	cur := p.indexLocked(id)
	n := len(p.entries)

	if p.randomize {
		switch {
		case n == 1:
			return p.entries[0]
		case cur < 0:
			return p.entries[p.intN(n)]
		}
		i := p.intN(n - 1)
		if i >= cur {
			i++
		}
		return p.entries[i]
	}

	if cur < 0 {
		return nil
	}
	if cur+1 < n {
		return p.entries[cur+1]
	}
	if p.repeatList {
		return p.entries[0]
	}
	return nil
}

// NextEntryID is NextEntry returning uuid.Nil when nothing follows.
func (p *Playlist) NextEntryID(id uuid.UUID) uuid.UUID {
	if e := p.NextEntry(id); e != nil {
		return e.id
	}
	return uuid.Nil
}

// Play resumes every active entry, so both sides of a crossfade carry on.
// With no active entry it starts the first entry.
func (p *Playlist) Play() {
	entries := p.Entries()
	resumed := false
	for _, e := range entries {
		if e.IsActive() {
			e.resume()
			resumed = true
		}
	}
	if !resumed && len(entries) > 0 {
		entries[0].startPlaying(0)
	}
	p.notify()
}

// PlayIndex stops every entry and starts the one at index i. It returns
// false without changing anything when i is out of range.
func (p *Playlist) PlayIndex(i int) bool {
	e := p.EntryAt(i)
	if e == nil {
		return false
	}
	p.playEntry(e)
	return true
}

// PlayEntry is PlayIndex by entry id.
func (p *Playlist) PlayEntry(id uuid.UUID) bool {
	e := p.Entry(id)
	if e == nil {
		return false
	}
	p.playEntry(e)
	return true
}

func (p *Playlist) playEntry(target *Entry) {
	for _, e := range p.Entries() {
		e.stop()
	}
	target.startPlaying(0)
	p.notify()
}

// Stop fades out every entry.
func (p *Playlist) Stop() {
	p.fanOut(StatusStopping, (*Entry).stop)
}

// Pause fades out and pauses every entry.
func (p *Playlist) Pause() {
	p.fanOut(StatusPausing, (*Entry).pause)
}

func (p *Playlist) fanOut(st Status, fn func(*Entry)) {
	p.mu.Lock()
	p.status = st
	entries := slices.Clone(p.entries)
	p.mu.Unlock()

	for _, e := range entries {
		fn(e)
	}
	p.notify()

	p.mu.Lock()
	p.status = StatusStopped
	p.mu.Unlock()
}

// Add appends a new entry for sound.
func (p *Playlist) Add(sound audio.Sound) (*Entry, error) {
	return p.Insert(-1, sound)
}

// Insert adds a new entry for sound at index i. An index outside the
// playlist appends.
func (p *Playlist) Insert(i int, sound audio.Sound) (*Entry, error) {
	return p.insert(i, uuid.New(), sound)
}

func (p *Playlist) insert(i int, id uuid.UUID, sound audio.Sound) (*Entry, error) {
	if err := sound.Validate(); err != nil {
		return nil, err //nolint:wrapcheck // already describes the sound
	}
	e := newEntry(p, id, sound)
	p.mu.Lock()
	p.insertLocked(i, e)
	p.mu.Unlock()
	p.notify()
	return e, nil
}

func (p *Playlist) insertLocked(i int, e *Entry) {
	if i < 0 || i > len(p.entries) {
		i = len(p.entries)
	}
	p.entries = slices.Insert(p.entries, i, e)
}

// Remove deletes the entry with the given id and disposes it. With scrub
// set, chain references from other entries to it are cleared. It returns
// false when no such entry exists.
func (p *Playlist) Remove(id uuid.UUID, scrub bool) bool {
	e := p.detach(id)
	if e == nil {
		return false
	}
	e.Dispose()
	if scrub {
		p.scrubChains(id)
	}
	p.notify()
	return true
}

func (p *Playlist) detach(id uuid.UUID) *Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.indexLocked(id)
	if i < 0 {
		return nil
	}
	e := p.entries[i]
	p.entries = slices.Delete(p.entries, i, i+1)
	return e
}

func (p *Playlist) scrubChains(id uuid.UUID) {
	for _, other := range p.Entries() {
		other.clearChainTo(id)
	}
}

// Move repositions the entry with the given id to index i, keeping its
// handles and every chain reference. An index outside the playlist moves it
// to the end.
func (p *Playlist) Move(id uuid.UUID, i int) bool {
	p.mu.Lock()
	from := p.indexLocked(id)
	if from < 0 {
		p.mu.Unlock()
		return false
	}
	e := p.entries[from]
	p.entries = slices.Delete(p.entries, from, from+1)
	p.insertLocked(i, e)
	p.mu.Unlock()
	p.notify()
	return true
}

// Transfer moves the entry with the given id into dst at index i. The entry
// is recreated in dst with the same id, sound and repeat flag; the original
// is disposed, which stops its handles. Chain references to it are cleared
// in this playlist and its own chain target is dropped.
func (p *Playlist) Transfer(id uuid.UUID, dst *Playlist, i int) *Entry {
	if dst == nil {
		return nil
	}
	if dst == p {
		if !p.Move(id, i) {
			return nil
		}
		return p.Entry(id)
	}
	e := p.detach(id)
	if e == nil {
		return nil
	}
	e.Dispose()
	p.scrubChains(id)
	p.notify()

	moved := newEntry(dst, id, e.Sound())
	moved.repeat = e.Repeat()
	dst.mu.Lock()
	dst.insertLocked(i, moved)
	dst.mu.Unlock()
	dst.notify()
	return moved
}

// AddObserver registers o. Adding an observer already registered does
// nothing.
func (p *Playlist) AddObserver(o Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.hasObserverLocked(o) {
		return
	}
	p.observers = append(p.observers, o)
}

func (p *Playlist) RemoveObserver(o Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = slices.DeleteFunc(p.observers, func(other Observer) bool {
		return sameObserver(other, o)
	})
}

func (p *Playlist) hasObserverLocked(o Observer) bool {
	return slices.ContainsFunc(p.observers, func(other Observer) bool {
		return sameObserver(other, o)
	})
}

// sameObserver compares observers without panicking on uncomparable
// dynamic types such as ObserverFunc.
func sameObserver(a, b Observer) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

func (p *Playlist) notify() {
	p.mu.RLock()
	if p.disposed {
		p.mu.RUnlock()
		return
	}
	observers := slices.Clone(p.observers)
	p.mu.RUnlock()
	for _, o := range observers {
		o.PlaylistChanged(p.id)
	}
}

// Dispose disposes every entry and drops all observers. The playlist must
// not be used afterwards.
func (p *Playlist) Dispose() {
	p.mu.Lock()
	entries := p.entries
	p.entries = nil
	p.observers = nil
	p.disposed = true
	p.mu.Unlock()
	for _, e := range entries {
		e.Dispose()
	}
}
