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
	"time"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/audio"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/helpers/syncutil"
)

// PlaybackSettings is a snapshot of a playlist's fade and volume settings.
type PlaybackSettings struct {
	FadeIn              time.Duration
	FadeOut             time.Duration
	Overlap             time.Duration
	Volume              float64
	RandomizeVolumeFrom float64
	RandomizeVolumeTo   float64
}

// DefaultPlaybackSettings returns the settings of a new playlist.
func DefaultPlaybackSettings() PlaybackSettings {
	return PlaybackSettings{
		Volume:              0.5,
		RandomizeVolumeFrom: 1.0,
		RandomizeVolumeTo:   1.0,
	}
}

// normalized clamps every field into its domain and orders the randomize
// range.
func (s PlaybackSettings) normalized() PlaybackSettings {
	s.FadeIn = max(s.FadeIn, 0)
	s.FadeOut = max(s.FadeOut, 0)
	s.Overlap = max(s.Overlap, 0)
	s.Volume = audio.Clamp(s.Volume, 0, 1)
	s.RandomizeVolumeFrom = audio.Clamp(s.RandomizeVolumeFrom, 0, 1)
	s.RandomizeVolumeTo = audio.Clamp(s.RandomizeVolumeTo, 0, 1)
	if s.RandomizeVolumeTo < s.RandomizeVolumeFrom {
		s.RandomizeVolumeTo = s.RandomizeVolumeFrom
	}
	return s
}

// Settings is the mutable settings holder shared by every entry of a
// playlist. Changes are picked up on the next tick of each sounding entry.
type Settings struct {
	vals PlaybackSettings
	mu   syncutil.RWMutex
}

// NewSettings returns a holder initialized with vals, clamped.
func NewSettings(vals PlaybackSettings) *Settings {
	return &Settings{vals: vals.normalized()}
}

// Snapshot returns the current values.
func (s *Settings) Snapshot() PlaybackSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vals
}

func (s *Settings) SetFadeIn(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vals.FadeIn = max(d, 0)
}

func (s *Settings) SetFadeOut(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vals.FadeOut = max(d, 0)
}

func (s *Settings) SetOverlap(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vals.Overlap = max(d, 0)
}

func (s *Settings) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vals.Volume = audio.Clamp(v, 0, 1)
}

// SetRandomizeVolumeFrom sets the lower bound of the per-start volume factor,
// raising the upper bound to match if it would end up below it.
func (s *Settings) SetRandomizeVolumeFrom(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v = audio.Clamp(v, 0, 1)
	s.vals.RandomizeVolumeFrom = v
	if s.vals.RandomizeVolumeTo < v {
		s.vals.RandomizeVolumeTo = v
	}
}

// SetRandomizeVolumeTo sets the upper bound of the per-start volume factor,
// lowering the lower bound to match if it would end up above it.
func (s *Settings) SetRandomizeVolumeTo(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v = audio.Clamp(v, 0, 1)
	s.vals.RandomizeVolumeTo = v
	if s.vals.RandomizeVolumeFrom > v {
		s.vals.RandomizeVolumeFrom = v
	}
}

// replace swaps in a complete set of values.
func (s *Settings) replace(vals PlaybackSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vals = vals.normalized()
}

// volumeFactorSteps is the granularity of the randomized volume factor.
const volumeFactorSteps = 100

// volumeFactor draws the randomized volume multiplier for one start. The
// range is quantized to hundredths with both ends inclusive; a range narrower
// than one step always yields the lower bound.
func volumeFactor(s PlaybackSettings, intN func(n int) int) float64 {
	// the epsilon keeps 0.9-0.3 from truncating to 59 steps
	steps := int((s.RandomizeVolumeTo-s.RandomizeVolumeFrom)*volumeFactorSteps + 1e-9)
	if steps <= 0 {
		return s.RandomizeVolumeFrom
	}
	f := s.RandomizeVolumeFrom + float64(intN(steps+1))/volumeFactorSteps
	return min(f, s.RandomizeVolumeTo)
}
