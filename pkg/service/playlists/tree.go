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

	"github.com/ZaparooProject/zaparoo-ambience/pkg/audio"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/proptree"
	"github.com/google/uuid"
)

const (
	keyID            = "id"
	keyName          = "name"
	keyRepeatList    = "repeat_list"
	keyRandomize     = "randomize"
	keyStopAfterEach = "stop_after_each"
	keySettings      = "settings"
	keyEntries       = "entries"

	keyFadeIn   = "fade_in_ms"
	keyFadeOut  = "fade_out_ms"
	keyOverlap  = "overlap_ms"
	keyVolume   = "volume"
	keyRandFrom = "randomize_volume_from"
	keyRandTo   = "randomize_volume_to"

	keyPath      = "path"
	keyStart     = "start_ms"
	keyEnd       = "end_ms"
	keyRepeat    = "repeat"
	keyChainWith = "chain_with"
)

// ToTree returns the persistent state of the playlist: its flags, settings
// and entries in order. Playback state is not included.
func (p *Playlist) ToTree() proptree.Tree {
	s := p.Settings()
	settings := proptree.Tree{
		keyVolume:   s.Volume,
		keyRandFrom: s.RandomizeVolumeFrom,
		keyRandTo:   s.RandomizeVolumeTo,
	}
	settings.SetMillis(keyFadeIn, s.FadeIn)
	settings.SetMillis(keyFadeOut, s.FadeOut)
	settings.SetMillis(keyOverlap, s.Overlap)

	entries := p.Entries()
	entryTrees := make([]proptree.Tree, 0, len(entries))
	for _, e := range entries {
		entryTrees = append(entryTrees, e.ToTree())
	}

	return proptree.Tree{
		keyID:            p.id.String(),
		keyName:          p.Name(),
		keyRepeatList:    p.RepeatList(),
		keyRandomize:     p.Randomize(),
		keyStopAfterEach: p.StopAfterEach(),
		keySettings:      settings,
		keyEntries:       entryTrees,
	}
}

// ToTree returns the entry's sound, trim window and flags.
func (e *Entry) ToTree() proptree.Tree {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := proptree.Tree{
		keyID:     e.id.String(),
		keyPath:   e.sound.Path,
		keyRepeat: e.repeat,
	}
	t.SetMillis(keyStart, e.sound.Start)
	t.SetMillis(keyEnd, e.sound.End)
	t.SetUUID(keyChainWith, e.chainWith)
	return t
}

// FromTree rebuilds a playlist saved with ToTree. Missing fields take their
// defaults and a missing id is generated. Options are applied before the
// saved state, so an id or settings in the tree win over opts.
func FromTree(t proptree.Tree, engine audio.Engine, scheduler Scheduler, opts ...Option) (*Playlist, error) {
	p := New(engine, scheduler, opts...)

	id, err := t.UUID(keyID)
	if err != nil {
		return nil, fmt.Errorf("failed to read playlist id: %w", err)
	}
	if id != uuid.Nil {
		p.id = id
	}
	if p.name, err = t.String(keyName, p.name); err != nil {
		return nil, fmt.Errorf("failed to read playlist name: %w", err)
	}
	if p.repeatList, err = t.Bool(keyRepeatList, false); err != nil {
		return nil, fmt.Errorf("failed to read playlist flags: %w", err)
	}
	if p.randomize, err = t.Bool(keyRandomize, false); err != nil {
		return nil, fmt.Errorf("failed to read playlist flags: %w", err)
	}
	if p.stopAfterEach, err = t.Bool(keyStopAfterEach, false); err != nil {
		return nil, fmt.Errorf("failed to read playlist flags: %w", err)
	}

	if t.Has(keySettings) {
		st, err := t.Tree(keySettings)
		if err != nil {
			return nil, fmt.Errorf("failed to read playlist settings: %w", err)
		}
		s, err := settingsFromTree(st, p.Settings())
		if err != nil {
			return nil, fmt.Errorf("failed to read playlist settings: %w", err)
		}
		p.settings.replace(s)
	}

	entries, err := t.Trees(keyEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to read playlist entries: %w", err)
	}
	for i, et := range entries {
		e, err := entryFromTree(p, et)
		if err != nil {
			return nil, fmt.Errorf("failed to read entry %d: %w", i, err)
		}
		if p.indexLocked(e.id) >= 0 {
			return nil, fmt.Errorf("failed to read entry %d: duplicate id %s", i, e.id)
		}
		p.entries = append(p.entries, e)
	}
	return p, nil
}

func settingsFromTree(t proptree.Tree, def PlaybackSettings) (PlaybackSettings, error) {
	var s PlaybackSettings
	var err error
	if s.FadeIn, err = t.Millis(keyFadeIn, def.FadeIn); err != nil {
		return s, err //nolint:wrapcheck // wrapped by caller
	}
	if s.FadeOut, err = t.Millis(keyFadeOut, def.FadeOut); err != nil {
		return s, err //nolint:wrapcheck // wrapped by caller
	}
	if s.Overlap, err = t.Millis(keyOverlap, def.Overlap); err != nil {
		return s, err //nolint:wrapcheck // wrapped by caller
	}
	if s.Volume, err = t.Float(keyVolume, def.Volume); err != nil {
		return s, err //nolint:wrapcheck // wrapped by caller
	}
	if s.RandomizeVolumeFrom, err = t.Float(keyRandFrom, def.RandomizeVolumeFrom); err != nil {
		return s, err //nolint:wrapcheck // wrapped by caller
	}
	if s.RandomizeVolumeTo, err = t.Float(keyRandTo, def.RandomizeVolumeTo); err != nil {
		return s, err //nolint:wrapcheck // wrapped by caller
	}
	return s, nil
}

func entryFromTree(p *Playlist, t proptree.Tree) (*Entry, error) {
	id, err := t.UUID(keyID)
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by caller
	}
	if id == uuid.Nil {
		id = uuid.New()
	}
	path, err := t.String(keyPath, "")
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by caller
	}
	start, err := t.Millis(keyStart, 0)
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by caller
	}
	end, err := t.Millis(keyEnd, 0)
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by caller
	}
	sound, err := audio.NewSound(path, start, end)
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by caller
	}

	e := newEntry(p, id, sound)
	if e.repeat, err = t.Bool(keyRepeat, false); err != nil {
		return nil, err //nolint:wrapcheck // wrapped by caller
	}
	if e.chainWith, err = t.UUID(keyChainWith); err != nil {
		return nil, err //nolint:wrapcheck // wrapped by caller
	}
	return e, nil
}
