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

package scenes

import (
	"fmt"
	"slices"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/audio"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/proptree"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/service/playlists"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Library holds every scene and applies engine-wide controls. Playlists
// created or loaded through the library get its observers attached.
type Library struct {
	engine    audio.Engine
	scheduler playlists.Scheduler
	scenes    []*Scene
	observers []playlists.Observer
	defaults  playlists.PlaybackSettings
	master    float64
	mu        syncutil.RWMutex
	paused    bool
}

type Option func(*Library)

// WithObserver attaches o to every playlist of the library.
func WithObserver(o playlists.Observer) Option {
	return func(l *Library) {
		l.observers = append(l.observers, o)
	}
}

// WithDefaultSettings sets the playback settings of new playlists.
func WithDefaultSettings(s playlists.PlaybackSettings) Option {
	return func(l *Library) {
		l.defaults = s
	}
}

func NewLibrary(engine audio.Engine, scheduler playlists.Scheduler, opts ...Option) *Library {
	l := &Library{
		engine:    engine,
		scheduler: scheduler,
		defaults:  playlists.DefaultPlaybackSettings(),
		master:    1,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Library) attach(p *playlists.Playlist) {
	l.mu.RLock()
	observers := slices.Clone(l.observers)
	l.mu.RUnlock()
	for _, o := range observers {
		p.AddObserver(o)
	}
}

func (l *Library) playlistOptions() []playlists.Option {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return []playlists.Option{playlists.WithSettings(l.defaults)}
}

// DefaultSettings returns the settings new playlists start with.
func (l *Library) DefaultSettings() playlists.PlaybackSettings {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.defaults
}

// SetDefaultSettings changes the settings of playlists created from now on.
// Existing playlists keep theirs.
//
//nolint:gocritic // settings passed by value like the playlist setters
func (l *Library) SetDefaultSettings(s playlists.PlaybackSettings) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.defaults = s
}

// AddScene creates an empty scene at the end of the library.
func (l *Library) AddScene(name string) *Scene {
	s := NewScene(uuid.Nil, name)
	l.mu.Lock()
	l.scenes = append(l.scenes, s)
	l.mu.Unlock()
	return s
}

// RemoveScene removes the scene and disposes its playlists.
func (l *Library) RemoveScene(id uuid.UUID) bool {
	l.mu.Lock()
	i := l.sceneIndexLocked(id)
	if i < 0 {
		l.mu.Unlock()
		return false
	}
	s := l.scenes[i]
	l.scenes = slices.Delete(l.scenes, i, i+1)
	l.mu.Unlock()

	s.Dispose()
	return true
}

// Scene returns the scene with the given id, or nil.
func (l *Library) Scene(id uuid.UUID) *Scene {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.sceneIndexLocked(id); i >= 0 {
		return l.scenes[i]
	}
	return nil
}

func (l *Library) Scenes() []*Scene {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.scenes)
}

func (l *Library) sceneIndexLocked(id uuid.UUID) int {
	return slices.IndexFunc(l.scenes, func(s *Scene) bool {
		return s.id == id
	})
}

// NewPlaylist creates an empty playlist with the library's default settings
// in the given scene. It returns nil when the scene doesn't exist.
func (l *Library) NewPlaylist(sceneID uuid.UUID, name string) *playlists.Playlist {
	s := l.Scene(sceneID)
	if s == nil {
		return nil
	}
	opts := append(l.playlistOptions(), playlists.WithName(name))
	p := playlists.New(l.engine, l.scheduler, opts...)
	l.attach(p)
	s.AddPlaylist(p)
	return p
}

// FindPlaylist returns the playlist with the given id and the scene which
// holds it, or nils.
func (l *Library) FindPlaylist(id uuid.UUID) (*playlists.Playlist, *Scene) {
	for _, s := range l.Scenes() {
		if p := s.Playlist(id); p != nil {
			return p, s
		}
	}
	return nil, nil
}

// RemovePlaylist removes and disposes the playlist from whichever scene holds
// it.
func (l *Library) RemovePlaylist(id uuid.UUID) bool {
	_, s := l.FindPlaylist(id)
	if s == nil {
		return false
	}
	return s.RemovePlaylist(id)
}

// Playlists returns every playlist of every scene in library order.
func (l *Library) Playlists() []*playlists.Playlist {
	var all []*playlists.Playlist
	for _, s := range l.Scenes() {
		all = append(all, s.Playlists()...)
	}
	return all
}

// StopAll fades out every playlist.
func (l *Library) StopAll() {
	for _, s := range l.Scenes() {
		s.Stop()
	}
}

// SetAllPaused freezes or releases every player of the engine at once,
// without fades.
func (l *Library) SetAllPaused(paused bool) {
	l.mu.Lock()
	l.paused = paused
	l.mu.Unlock()
	l.engine.SetAllPaused(paused)
	log.Info().Bool("paused", paused).Msg("library: engine pause toggled")
}

func (l *Library) AllPaused() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.paused
}

// SetMasterVolume sets the engine master volume, clamped to [0, 1].
func (l *Library) SetMasterVolume(v float64) {
	v = audio.Clamp(v, 0, 1)
	l.mu.Lock()
	l.master = v
	l.mu.Unlock()
	l.engine.SetMasterVolume(v)
}

func (l *Library) MasterVolume() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.master
}

// ToTrees returns one tree per scene in library order.
func (l *Library) ToTrees() []proptree.Tree {
	scenes := l.Scenes()
	trees := make([]proptree.Tree, 0, len(scenes))
	for _, s := range scenes {
		trees = append(trees, s.ToTree())
	}
	return trees
}

// LoadScene rebuilds a scene from a tree and adds it, replacing any scene
// with the same id.
func (l *Library) LoadScene(t proptree.Tree) (*Scene, error) {
	s, err := SceneFromTree(t, l.engine, l.scheduler, l.playlistOptions()...)
	if err != nil {
		return nil, err
	}
	for _, p := range s.Playlists() {
		l.attach(p)
	}

	l.mu.Lock()
	var old *Scene
	if i := l.sceneIndexLocked(s.id); i >= 0 {
		old = l.scenes[i]
		l.scenes[i] = s
	} else {
		l.scenes = append(l.scenes, s)
	}
	l.mu.Unlock()

	if old != nil {
		old.Dispose()
	}
	return s, nil
}

// Load replaces every scene with the ones in trees. On error the library is
// left unchanged.
func (l *Library) Load(trees []proptree.Tree) error {
	opts := l.playlistOptions()
	loaded := make([]*Scene, 0, len(trees))
	for i, t := range trees {
		s, err := SceneFromTree(t, l.engine, l.scheduler, opts...)
		if err != nil {
			for _, done := range loaded {
				done.Dispose()
			}
			return fmt.Errorf("failed to load scene %d: %w", i, err)
		}
		loaded = append(loaded, s)
	}
	for _, s := range loaded {
		for _, p := range s.Playlists() {
			l.attach(p)
		}
	}

	l.mu.Lock()
	old := l.scenes
	l.scenes = loaded
	l.mu.Unlock()

	for _, s := range old {
		s.Dispose()
	}
	log.Info().Int("scenes", len(loaded)).Msg("library: loaded")
	return nil
}
