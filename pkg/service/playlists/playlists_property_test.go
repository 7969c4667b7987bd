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
	"math/rand/v2"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/audio"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/audio/virtual"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/service/poller"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func mustSound(t testing.TB, path string) audio.Sound {
	t.Helper()
	s, err := audio.NewSound(path, 0, 0)
	require.NoError(t, err)
	return s
}

// unitGen draws a value in [0, 1] in hundredths.
func unitGen() *rapid.Generator[float64] {
	return rapid.Custom(func(t *rapid.T) float64 {
		return float64(rapid.IntRange(0, 100).Draw(t, "hundredths")) / 100
	})
}

// TestPropertyRandomizeRangeOrdered verifies that any sequence of setter
// calls keeps From <= To.
func TestPropertyRandomizeRangeOrdered(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		s := NewSettings(DefaultPlaybackSettings())
		ops := rapid.SliceOfN(rapid.Bool(), 1, 20).Draw(t, "ops")
		for i, from := range ops {
			v := rapid.Float64Range(-0.5, 1.5).Draw(t, "v")
			if from {
				s.SetRandomizeVolumeFrom(v)
			} else {
				s.SetRandomizeVolumeTo(v)
			}
			got := s.Snapshot()
			if got.RandomizeVolumeFrom > got.RandomizeVolumeTo {
				t.Fatalf("op %d: from %v > to %v", i, got.RandomizeVolumeFrom, got.RandomizeVolumeTo)
			}
			if got.RandomizeVolumeFrom < 0 || got.RandomizeVolumeTo > 1 {
				t.Fatalf("op %d: range [%v, %v] outside [0, 1]", i, got.RandomizeVolumeFrom, got.RandomizeVolumeTo)
			}
		}
	})
}

// TestPropertyVolumeFactorInRange verifies the drawn factor never leaves the
// configured range.
func TestPropertyVolumeFactorInRange(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		a := unitGen().Draw(t, "a")
		b := unitGen().Draw(t, "b")
		s := PlaybackSettings{RandomizeVolumeFrom: min(a, b), RandomizeVolumeTo: max(a, b)}
		r := rand.New(rand.NewPCG(rapid.Uint64().Draw(t, "seed"), 1))
		f := volumeFactor(s, r.IntN)
		if f < s.RandomizeVolumeFrom-1e-9 || f > s.RandomizeVolumeTo+1e-9 {
			t.Fatalf("factor %v outside [%v, %v]", f, s.RandomizeVolumeFrom, s.RandomizeVolumeTo)
		}
	})
}

// TestPropertyComputeVolumeBounded verifies the computed volume stays within
// [0, volume] for any fades and position.
func TestPropertyComputeVolumeBounded(t *testing.T) {
	t.Parallel()
	engine := virtual.New(clockwork.NewFakeClock())
	engine.AddSound("a.ogg", 10*time.Second)
	player, err := engine.PlayerFor(mustSound(t, "a.ogg"))
	require.NoError(t, err)

	rapid.Check(t, func(t *rapid.T) {
		h := newHandle(player, 1)
		h.fadeInBegin = time.Duration(rapid.IntRange(0, 10_000).Draw(t, "begin")) * time.Millisecond
		s := PlaybackSettings{
			FadeIn:  time.Duration(rapid.IntRange(0, 5_000).Draw(t, "fadeIn")) * time.Millisecond,
			FadeOut: time.Duration(rapid.IntRange(0, 5_000).Draw(t, "fadeOut")) * time.Millisecond,
			Volume:  unitGen().Draw(t, "volume"),
		}
		pos := time.Duration(rapid.IntRange(0, 12_000).Draw(t, "pos")) * time.Millisecond
		v := h.computeVolume(s, pos)
		if v < 0 || v > s.Volume+1e-9 {
			t.Fatalf("volume %v outside [0, %v] at %s", v, s.Volume, pos)
		}
	})
}

// TestPropertyRandomSuccessorDiffers verifies randomized playlists never
// pick the current entry while another one exists.
func TestPropertyRandomSuccessorDiffers(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		clock := clockwork.NewFakeClock()
		p := New(virtual.New(clock), poller.New(clock, 0),
			WithRand(rand.New(rand.NewPCG(rapid.Uint64().Draw(t, "seed"), 7))))
		p.SetRandomize(true)
		n := rapid.IntRange(2, 20).Draw(t, "n")
		for range n {
			if _, err := p.Add(audio.Sound{Path: "x.ogg"}); err != nil {
				t.Fatal(err)
			}
		}
		cur := p.EntryAt(rapid.IntRange(0, n-1).Draw(t, "current"))
		next := p.NextEntry(cur.ID())
		if next == nil || next == cur {
			t.Fatalf("successor of %s was %v", cur.ID(), next)
		}
	})
}

// TestPropertySequentialSuccessor verifies sequential order with and
// without wrapping.
func TestPropertySequentialSuccessor(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		clock := clockwork.NewFakeClock()
		p := New(virtual.New(clock), poller.New(clock, 0))
		repeat := rapid.Bool().Draw(t, "repeat")
		p.SetRepeatList(repeat)
		n := rapid.IntRange(1, 20).Draw(t, "n")
		for range n {
			if _, err := p.Add(audio.Sound{Path: "x.ogg"}); err != nil {
				t.Fatal(err)
			}
		}
		i := rapid.IntRange(0, n-1).Draw(t, "index")
		next := p.NextEntry(p.IDFromIndex(i))
		switch {
		case i+1 < n:
			if next != p.EntryAt(i+1) {
				t.Fatalf("successor of %d is not %d", i, i+1)
			}
		case repeat:
			if next != p.EntryAt(0) {
				t.Fatalf("last entry did not wrap")
			}
		default:
			if next != nil {
				t.Fatalf("last entry has a successor without repeat")
			}
		}
	})
}
