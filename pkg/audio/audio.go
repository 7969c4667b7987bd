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

// Package audio defines the sound descriptor and the player and engine
// capabilities consumed by the playlist engine, together with a beep/malgo
// backed engine that mixes any number of concurrently sounding players.
package audio

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// SupportedExtensions lists the file extensions the mixer engine decodes.
var SupportedExtensions = []string{".wav", ".mp3", ".ogg", ".flac"}

// IsSupported reports whether path has a decodable extension.
func IsSupported(path string) bool {
	return slices.Contains(SupportedExtensions, strings.ToLower(filepath.Ext(path)))
}

var (
	// ErrInvalidTrim is returned when a trim window is negative or empty.
	ErrInvalidTrim = errors.New("invalid trim window")
	// ErrUnsupportedFormat is returned for files the engine cannot decode.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrUnavailable is returned when an engine has no player for a sound.
	ErrUnavailable = errors.New("sound unavailable")
)

// Sound references a playable file and the part of it which should be heard.
// An End of zero means the sound plays to the end of the file.
type Sound struct {
	Path  string
	Start time.Duration
	End   time.Duration
}

// NewSound returns a validated sound descriptor.
func NewSound(path string, start, end time.Duration) (Sound, error) {
	s := Sound{Path: path, Start: start, End: end}
	if err := s.Validate(); err != nil {
		return Sound{}, err
	}
	return s, nil
}

// Validate checks the trim window.
func (s Sound) Validate() error {
	if s.Start < 0 {
		return fmt.Errorf("%w: start %s is negative", ErrInvalidTrim, s.Start)
	}
	if s.End != 0 && s.End <= s.Start {
		return fmt.Errorf("%w: end %s is not after start %s", ErrInvalidTrim, s.End, s.Start)
	}
	return nil
}

// Bounded reports whether the sound stops before the end of the file.
func (s Sound) Bounded() bool {
	return s.End > 0
}

// WithTrim returns a copy of the sound with a new trim window.
func (s Sound) WithTrim(start, end time.Duration) (Sound, error) {
	return NewSound(s.Path, start, end)
}

// Player controls one sounding instance of a sound. Volume is linear in
// [0, 1], pan is in [-1, 1] and speed is a playback rate multiplier.
type Player interface {
	Play()
	Pause()
	Stop()
	Volume() float64
	SetVolume(v float64)
	Pan() float64
	SetPan(p float64)
	Finished() bool
	Position() time.Duration
	SetPosition(pos time.Duration)
	Speed() float64
	SetSpeed(s float64)
	Length() time.Duration
}

// Engine creates players and applies engine-wide controls.
type Engine interface {
	PlayerFor(sound Sound) (Player, error)
	SetAllPaused(paused bool)
	SetMasterVolume(v float64)
	StopAll()
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
