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

// trimmedPlayer exposes only the sound's trim window of an engine player.
// Positions are relative to the window start and reaching the window end
// counts as finished.
type trimmedPlayer struct {
	audio.Player
	start time.Duration
	end   time.Duration
}

func trim(p audio.Player, s audio.Sound) audio.Player {
	if s.Start == 0 && !s.Bounded() {
		return p
	}
	t := &trimmedPlayer{Player: p, start: s.Start, end: s.End}
	if s.Start > 0 {
		p.SetPosition(s.Start)
	}
	return t
}

func (t *trimmedPlayer) rawEnd() time.Duration {
	length := t.Player.Length()
	if t.end > 0 && t.end < length {
		return t.end
	}
	return length
}

func (t *trimmedPlayer) Length() time.Duration {
	return max(t.rawEnd()-t.start, 0)
}

func (t *trimmedPlayer) Position() time.Duration {
	return max(t.Player.Position()-t.start, 0)
}

func (t *trimmedPlayer) SetPosition(pos time.Duration) {
	t.Player.SetPosition(t.start + pos)
}

func (t *trimmedPlayer) Finished() bool {
	return t.Player.Finished() || t.Player.Position() >= t.rawEnd()
}
