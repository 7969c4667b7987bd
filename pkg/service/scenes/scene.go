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

// Package scenes groups playlists into named scenes and keeps the library of
// every scene, together with the engine-wide playback controls.
package scenes

import (
	"fmt"
	"slices"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/audio"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/proptree"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/service/playlists"
	"github.com/google/uuid"
)

const (
	keyID        = "id"
	keyName      = "name"
	keyPlaylists = "playlists"
)

// Scene is a named group of playlists, typically everything that sounds
// together in one location of a game.
type Scene struct {
	name      string
	playlists []*playlists.Playlist
	mu        syncutil.RWMutex
	id        uuid.UUID
}

// NewScene returns an empty scene. A nil id is replaced by a new one.
func NewScene(id uuid.UUID, name string) *Scene {
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Scene{id: id, name: name}
}

func (s *Scene) ID() uuid.UUID {
	return s.id
}

func (s *Scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *Scene) Rename(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

// AddPlaylist appends p unless the scene already holds a playlist with the
// same id.
func (s *Scene) AddPlaylist(p *playlists.Playlist) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(p.ID()) >= 0 {
		return false
	}
	s.playlists = append(s.playlists, p)
	return true
}

// RemovePlaylist removes and disposes the playlist with the given id.
func (s *Scene) RemovePlaylist(id uuid.UUID) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	p := s.playlists[i]
	s.playlists = slices.Delete(s.playlists, i, i+1)
	s.mu.Unlock()

	p.Dispose()
	return true
}

// Playlist returns the playlist with the given id, or nil.
func (s *Scene) Playlist(id uuid.UUID) *playlists.Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.playlists[i]
	}
	return nil
}

func (s *Scene) Playlists() []*playlists.Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.playlists)
}

func (s *Scene) indexLocked(id uuid.UUID) int {
	return slices.IndexFunc(s.playlists, func(p *playlists.Playlist) bool {
		return p.ID() == id
	})
}

// Stop fades out every playlist of the scene.
func (s *Scene) Stop() {
	for _, p := range s.Playlists() {
		p.Stop()
	}
}

// Pause fades out and pauses every playlist of the scene.
func (s *Scene) Pause() {
	for _, p := range s.Playlists() {
		p.Pause()
	}
}

// IsActive reports whether any playlist of the scene is sounding.
func (s *Scene) IsActive() bool {
	return slices.ContainsFunc(s.Playlists(), (*playlists.Playlist).IsActive)
}

// Dispose disposes every playlist and empties the scene.
func (s *Scene) Dispose() {
	s.mu.Lock()
	pls := s.playlists
	s.playlists = nil
	s.mu.Unlock()
	for _, p := range pls {
		p.Dispose()
	}
}

func (s *Scene) ToTree() proptree.Tree {
	pls := s.Playlists()
	trees := make([]proptree.Tree, 0, len(pls))
	for _, p := range pls {
		trees = append(trees, p.ToTree())
	}
	return proptree.Tree{
		keyID:        s.id.String(),
		keyName:      s.Name(),
		keyPlaylists: trees,
	}
}

// SceneFromTree rebuilds a scene saved with ToTree. Every playlist is
// created with opts.
func SceneFromTree(
	t proptree.Tree,
	engine audio.Engine,
	scheduler playlists.Scheduler,
	opts ...playlists.Option,
) (*Scene, error) {
	id, err := t.UUID(keyID)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene id: %w", err)
	}
	name, err := t.String(keyName, "")
	if err != nil {
		return nil, fmt.Errorf("failed to read scene name: %w", err)
	}
	s := NewScene(id, name)

	trees, err := t.Trees(keyPlaylists)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene playlists: %w", err)
	}
	for i, pt := range trees {
		p, err := playlists.FromTree(pt, engine, scheduler, opts...)
		if err != nil {
			s.Dispose()
			return nil, fmt.Errorf("failed to read playlist %d of scene %q: %w", i, name, err)
		}
		if !s.AddPlaylist(p) {
			s.Dispose()
			return nil, fmt.Errorf("failed to read playlist %d of scene %q: duplicate id %s", i, name, p.ID())
		}
	}
	return s, nil
}
