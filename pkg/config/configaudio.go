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

package config

import (
	"time"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/audio"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/service/playlists"
)

const (
	EngineMalgo   = "malgo"
	EngineVirtual = "virtual"

	DefaultTickInterval = 100 * time.Millisecond
	MinTickInterval     = 10 * time.Millisecond
)

type Audio struct {
	MasterVolume *float64 `toml:"master_volume,omitempty"`
	Engine       string   `toml:"engine"`
}

// Playback holds the settings new playlists start with. Unset fields fall
// back to the built-in playback defaults.
type Playback struct {
	TickIntervalMs      *int     `toml:"tick_interval_ms,omitempty"`
	FadeInMs            *int     `toml:"fade_in_ms,omitempty"`
	FadeOutMs           *int     `toml:"fade_out_ms,omitempty"`
	OverlapMs           *int     `toml:"overlap_ms,omitempty"`
	Volume              *float64 `toml:"volume,omitempty"`
	RandomizeVolumeFrom *float64 `toml:"randomize_volume_from,omitempty"`
	RandomizeVolumeTo   *float64 `toml:"randomize_volume_to,omitempty"`
}

func (c *Instance) AudioEngine() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Audio.Engine == EngineVirtual {
		return EngineVirtual
	}
	return EngineMalgo
}

func (c *Instance) MasterVolume() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Audio.MasterVolume == nil {
		return 1
	}
	return audio.Clamp(*c.vals.Audio.MasterVolume, 0, 1)
}

func (c *Instance) SetMasterVolume(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v = audio.Clamp(v, 0, 1)
	c.vals.Audio.MasterVolume = &v
}

// TickInterval returns the polling clock period, never below
// MinTickInterval.
func (c *Instance) TickInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Playback.TickIntervalMs == nil {
		return DefaultTickInterval
	}
	return max(time.Duration(*c.vals.Playback.TickIntervalMs)*time.Millisecond, MinTickInterval)
}

func millis(ms *int, def time.Duration) time.Duration {
	if ms == nil {
		return def
	}
	return time.Duration(*ms) * time.Millisecond
}

func float(f *float64, def float64) float64 {
	if f == nil {
		return def
	}
	return *f
}

// PlaybackDefaults returns the settings given to new playlists, clamped the
// same way the playlist setters clamp them.
func (c *Instance) PlaybackDefaults() playlists.PlaybackSettings {
	c.mu.RLock()
	pb := c.vals.Playback
	c.mu.RUnlock()

	def := playlists.DefaultPlaybackSettings()
	s := playlists.NewSettings(playlists.PlaybackSettings{
		FadeIn:              millis(pb.FadeInMs, def.FadeIn),
		FadeOut:             millis(pb.FadeOutMs, def.FadeOut),
		Overlap:             millis(pb.OverlapMs, def.Overlap),
		Volume:              float(pb.Volume, def.Volume),
		RandomizeVolumeFrom: float(pb.RandomizeVolumeFrom, def.RandomizeVolumeFrom),
		RandomizeVolumeTo:   float(pb.RandomizeVolumeTo, def.RandomizeVolumeTo),
	})
	return s.Snapshot()
}

// SetPlaybackDefaults stores s as the settings for new playlists.
//
//nolint:gocritic // settings passed by value like the playlist setters
func (c *Instance) SetPlaybackDefaults(s playlists.PlaybackSettings) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fadeIn := int(s.FadeIn.Milliseconds())
	fadeOut := int(s.FadeOut.Milliseconds())
	overlap := int(s.Overlap.Milliseconds())
	c.vals.Playback.FadeInMs = &fadeIn
	c.vals.Playback.FadeOutMs = &fadeOut
	c.vals.Playback.OverlapMs = &overlap
	c.vals.Playback.Volume = &s.Volume
	c.vals.Playback.RandomizeVolumeFrom = &s.RandomizeVolumeFrom
	c.vals.Playback.RandomizeVolumeTo = &s.RandomizeVolumeTo
}
