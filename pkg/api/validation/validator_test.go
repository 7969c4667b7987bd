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

package validation

import (
	"encoding/json"
	"testing"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAndUnmarshal(t *testing.T) {
	t.Parallel()
	id := uuid.New()

	tests := []struct {
		wantErr  error
		name     string
		params   string
		contains string
	}{
		{name: "empty", params: "", wantErr: ErrMissingParams},
		{name: "bad json", params: `{"path":`, wantErr: ErrInvalidParams},
		{name: "wrong type", params: `{"path": 4}`, wantErr: ErrInvalidParams},
		{name: "bad uuid", params: `{"path":"a.ogg","playlistId":"nope"}`, wantErr: ErrInvalidParams},
		{
			name:     "missing playlist",
			params:   `{"path":"a.ogg"}`,
			contains: "playlistId is required",
		},
		{
			name:     "unsupported file",
			params:   `{"path":"a.txt","playlistId":"` + id.String() + `"}`,
			contains: `path "a.txt" is not a supported audio file`,
		},
		{
			name:     "negative start",
			params:   `{"path":"a.ogg","startMs":-1,"playlistId":"` + id.String() + `"}`,
			contains: "startMs must be at least 0",
		},
		{name: "valid", params: `{"path":"/s/A.OGG","endMs":500,"playlistId":"` + id.String() + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var p models.AddEntryParams
			err := ValidateAndUnmarshal(json.RawMessage(tt.params), &p)
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.contains != "":
				var ve *Error
				require.ErrorAs(t, err, &ve)
				assert.Contains(t, ve.Error(), tt.contains)
			default:
				require.NoError(t, err)
				assert.Equal(t, id, p.PlaylistID)
				assert.Equal(t, 500, p.EndMs)
			}
		})
	}
}

func TestValidateDocName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		valid bool
	}{
		{name: "campaign", valid: true},
		{name: "session 3.toml", valid: true},
		{name: "../up", valid: false},
		{name: "a/b", valid: false},
		{name: `a\b`, valid: false},
		{name: ".hidden", valid: false},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := v.Validate(&models.LibraryFileParams{Name: tt.name})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestVolumeRange(t *testing.T) {
	t.Parallel()
	v := NewValidator()
	require.NoError(t, v.Validate(&models.EngineVolumeParams{Volume: 0.4}))
	err := v.Validate(&models.EngineVolumeParams{Volume: 1.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "volume must be at most 1")

	over := 2.0
	err = v.Validate(&models.UpdateSettingsParams{
		Playback: &models.PlaybackParams{Volume: &over},
	})
	require.Error(t, err)
}
