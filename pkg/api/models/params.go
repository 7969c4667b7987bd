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

package models

import "github.com/google/uuid"

// PlaybackParams updates playback settings. Unset fields are left alone.
type PlaybackParams struct {
	FadeInMs            *int     `json:"fadeInMs" validate:"omitempty,min=0"`
	FadeOutMs           *int     `json:"fadeOutMs" validate:"omitempty,min=0"`
	OverlapMs           *int     `json:"overlapMs" validate:"omitempty,min=0"`
	Volume              *float64 `json:"volume" validate:"omitempty,min=0,max=1"`
	RandomizeVolumeFrom *float64 `json:"randomizeVolumeFrom" validate:"omitempty,min=0,max=1"`
	RandomizeVolumeTo   *float64 `json:"randomizeVolumeTo" validate:"omitempty,min=0,max=1"`
}

type UpdateSettingsParams struct {
	DebugLogging   *bool           `json:"debugLogging"`
	ErrorReporting *bool           `json:"errorReporting"`
	MasterVolume   *float64        `json:"masterVolume" validate:"omitempty,min=0,max=1"`
	Playback       *PlaybackParams `json:"playback"`
}

type NewSceneParams struct {
	Name string `json:"name" validate:"required,max=200"`
}

type IDParams struct {
	ID uuid.UUID `json:"id" validate:"required"`
}

type PlaylistsParams struct {
	SceneID *uuid.UUID `json:"sceneId"`
}

type NewPlaylistParams struct {
	Name    string    `json:"name" validate:"required,max=200"`
	SceneID uuid.UUID `json:"sceneId" validate:"required"`
}

// PlayParams starts a playlist. With neither Index nor EntryID set the
// playlist resumes or starts from the top.
type PlayParams struct {
	Index   *int       `json:"index" validate:"omitempty,min=0"`
	EntryID *uuid.UUID `json:"entryId"`
	ID      uuid.UUID  `json:"id" validate:"required"`
}

type UpdatePlaylistParams struct {
	Name          *string         `json:"name" validate:"omitempty,max=200"`
	RepeatList    *bool           `json:"repeatList"`
	Randomize     *bool           `json:"randomize"`
	StopAfterEach *bool           `json:"stopAfterEach"`
	Settings      *PlaybackParams `json:"settings"`
	ID            uuid.UUID       `json:"id" validate:"required"`
}

type SearchParams struct {
	MaxResults *int   `json:"maxResults" validate:"omitempty,min=1"`
	Query      string `json:"query" validate:"required"`
}

type AddEntryParams struct {
	Index      *int      `json:"index" validate:"omitempty,min=0"`
	Path       string    `json:"path" validate:"required,audiofile"`
	StartMs    int       `json:"startMs" validate:"min=0"`
	EndMs      int       `json:"endMs" validate:"min=0"`
	Repeat     bool      `json:"repeat"`
	PlaylistID uuid.UUID `json:"playlistId" validate:"required"`
}

type AddDirParams struct {
	Path       string    `json:"path" validate:"required"`
	PlaylistID uuid.UUID `json:"playlistId" validate:"required"`
}

// RemoveEntryParams removes an entry. Chains pointing at it are cleared
// unless KeepChains is set.
type RemoveEntryParams struct {
	KeepChains bool      `json:"keepChains"`
	PlaylistID uuid.UUID `json:"playlistId" validate:"required"`
	ID         uuid.UUID `json:"id" validate:"required"`
}

// MoveEntryParams reorders an entry, or transfers it to another playlist
// when ToPlaylistID is set.
type MoveEntryParams struct {
	ToPlaylistID *uuid.UUID `json:"toPlaylistId"`
	Index        int        `json:"index" validate:"min=0"`
	PlaylistID   uuid.UUID  `json:"playlistId" validate:"required"`
	ID           uuid.UUID  `json:"id" validate:"required"`
}

// UpdateEntryParams changes an entry. A ChainWith of the nil id clears the
// chain.
type UpdateEntryParams struct {
	Repeat     *bool      `json:"repeat"`
	ChainWith  *uuid.UUID `json:"chainWith"`
	StartMs    *int       `json:"startMs" validate:"omitempty,min=0"`
	EndMs      *int       `json:"endMs" validate:"omitempty,min=0"`
	PlaylistID uuid.UUID  `json:"playlistId" validate:"required"`
	ID         uuid.UUID  `json:"id" validate:"required"`
}

type EngineVolumeParams struct {
	Volume float64 `json:"volume" validate:"min=0,max=1"`
}

type EnginePauseParams struct {
	Paused bool `json:"paused"`
}

// LibraryFileParams names a scene document in the library directory.
type LibraryFileParams struct {
	Name  string `json:"name" validate:"required,docname"`
	Merge bool   `json:"merge"`
}
