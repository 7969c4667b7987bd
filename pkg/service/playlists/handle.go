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
)

// Status is the lifecycle state of a handle, or the transient state of a
// playlist reported to observers.
type Status int

const (
	StatusStopped Status = iota
	StatusPlaying
	StatusPausing
	StatusPaused
	StatusStopping
)

func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusPlaying:
		return "playing"
	case StatusPausing:
		return "pausing"
	case StatusPaused:
		return "paused"
	case StatusStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Handle is one sounding instance of an entry. Its fields are guarded by the
// owning entry's lock.
type Handle struct {
	player       audio.Player
	volume       float64
	volumeFactor float64
	fadeInBegin  time.Duration
	fadeOutEnd   time.Duration
	status       Status
	nextStarted  bool
}

func newHandle(player audio.Player, volumeFactor float64) *Handle {
	return &Handle{
		player:       player,
		volumeFactor: volumeFactor,
		fadeOutEnd:   player.Length(),
		status:       StatusStopped,
	}
}

// computeVolume returns the faded volume at pos, before the volume factor.
// Fade-in ramps up from fadeInBegin, fade-out ramps down to fadeOutEnd, and
// where both ramps apply the quieter one wins.
func (h *Handle) computeVolume(s PlaybackSettings, pos time.Duration) float64 {
	if pos < h.fadeInBegin || pos > h.fadeOutEnd {
		return 0
	}

	v := s.Volume
	if s.FadeIn > 0 && pos < h.fadeInBegin+s.FadeIn {
		v = s.Volume * float64(pos-h.fadeInBegin) / float64(s.FadeIn)
	}
	if pos >= h.fadeOutEnd-s.FadeOut {
		out := 0.0
		if s.FadeOut > 0 {
			out = s.Volume * float64(h.fadeOutEnd-pos) / float64(s.FadeOut)
		}
		v = min(v, out)
	}
	return v
}

// applyVolume recomputes the volume at pos and pushes it to the player.
func (h *Handle) applyVolume(s PlaybackSettings, pos time.Duration) float64 {
	h.volume = h.computeVolume(s, pos)
	h.player.SetVolume(h.volume * h.volumeFactor)
	return h.volume
}

// retargetFadeOut moves the end of the fade-out so it starts at pos, which
// lets the regular fade-out ramp double as the pause and stop fade.
func (h *Handle) retargetFadeOut(s PlaybackSettings, pos time.Duration) {
	h.fadeOutEnd = min(pos+s.FadeOut, h.player.Length())
}

// HandleState is a read-only view of a handle for observers and tests.
type HandleState struct {
	Status       Status
	Volume       float64
	VolumeFactor float64
	Position     time.Duration
	Length       time.Duration
	NextStarted  bool
}

func (h *Handle) state() HandleState {
	return HandleState{
		Status:       h.status,
		Volume:       h.volume,
		VolumeFactor: h.volumeFactor,
		Position:     h.player.Position(),
		Length:       h.player.Length(),
		NextStarted:  h.nextStarted,
	}
}
