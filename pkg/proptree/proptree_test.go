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

package proptree

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGettersDefaults(t *testing.T) {
	t.Parallel()

	tree := Tree{}
	s, err := tree.String("name", "untitled")
	require.NoError(t, err)
	assert.Equal(t, "untitled", s)

	b, err := tree.Bool("repeat", true)
	require.NoError(t, err)
	assert.True(t, b)

	n, err := tree.Int("count", 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	f, err := tree.Float("volume", 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, f, 1e-9)

	id, err := tree.UUID("id")
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, id)

	trees, err := tree.Trees("entries")
	require.NoError(t, err)
	assert.Nil(t, trees)

	_, err = tree.Tree("settings")
	require.ErrorIs(t, err, ErrMissingKey)
}

func TestGettersWrongType(t *testing.T) {
	t.Parallel()

	tree := Tree{"name": 3, "repeat": "yes", "count": 1.5, "id": "not-a-uuid", "entries": "x"}

	_, err := tree.String("name", "")
	require.ErrorIs(t, err, ErrWrongType)
	_, err = tree.Bool("repeat", false)
	require.ErrorIs(t, err, ErrWrongType)
	_, err = tree.Int("count", 0)
	require.ErrorIs(t, err, ErrWrongType)
	_, err = tree.UUID("id")
	require.ErrorIs(t, err, ErrWrongType)
	_, err = tree.Trees("entries")
	require.ErrorIs(t, err, ErrWrongType)
}

func TestMillisAndUUID(t *testing.T) {
	t.Parallel()

	tree := Tree{}
	tree.SetMillis("fade_in_ms", 1500*time.Millisecond)
	d, err := tree.Millis("fade_in_ms", 0)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, d)

	id := uuid.New()
	tree.SetUUID("chain_with", id)
	got, err := tree.UUID("chain_with")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	tree.SetUUID("chain_with", uuid.Nil)
	assert.False(t, tree.Has("chain_with"))
}

func TestDecodedTOML(t *testing.T) {
	t.Parallel()

	in := Tree{
		"name":     "Tavern",
		"volume":   0.8,
		"fade_ms":  int64(250),
		"settings": Tree{"overlap_ms": int64(500)},
		"entries":  []Tree{{"path": "a.ogg"}, {"path": "b.ogg"}},
	}
	data, err := toml.Marshal(map[string]any(in))
	require.NoError(t, err)

	var out Tree
	require.NoError(t, toml.Unmarshal(data, &out))

	name, err := out.String("name", "")
	require.NoError(t, err)
	assert.Equal(t, "Tavern", name)

	fade, err := out.Millis("fade_ms", 0)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, fade)

	settings, err := out.Tree("settings")
	require.NoError(t, err)
	overlap, err := settings.Int("overlap_ms", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(500), overlap)

	entries, err := out.Trees("entries")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	path, err := entries[1].String("path", "")
	require.NoError(t, err)
	assert.Equal(t, "b.ogg", path)
}

func TestDecodedJSONNumbers(t *testing.T) {
	t.Parallel()

	var out Tree
	require.NoError(t, json.Unmarshal([]byte(`{"start_ms": 1200, "entries": [{"repeat": true}]}`), &out))

	start, err := out.Millis("start_ms", 0)
	require.NoError(t, err)
	assert.Equal(t, 1200*time.Millisecond, start)

	entries, err := out.Trees("entries")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	repeat, err := entries[0].Bool("repeat", false)
	require.NoError(t, err)
	assert.True(t, repeat)
}
