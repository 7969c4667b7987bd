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

type VersionResponse struct {
	Version  string `json:"version"`
	Platform string `json:"platform"`
}

type PlaybackSettingsResponse struct {
	FadeInMs            int64   `json:"fadeInMs"`
	FadeOutMs           int64   `json:"fadeOutMs"`
	OverlapMs           int64   `json:"overlapMs"`
	Volume              float64 `json:"volume"`
	RandomizeVolumeFrom float64 `json:"randomizeVolumeFrom"`
	RandomizeVolumeTo   float64 `json:"randomizeVolumeTo"`
}

type SettingsResponse struct {
	AudioEngine    string                   `json:"audioEngine"`
	Playback       PlaybackSettingsResponse `json:"playback"`
	MasterVolume   float64                  `json:"masterVolume"`
	TickIntervalMs int64                    `json:"tickIntervalMs"`
	DebugLogging   bool                     `json:"debugLogging"`
	ErrorReporting bool                     `json:"errorReporting"`
}

type EntryResponse struct {
	ChainWith *uuid.UUID `json:"chainWith,omitempty"`
	Path      string     `json:"path"`
	Status    string     `json:"status"`
	StartMs   int64      `json:"startMs"`
	EndMs     int64      `json:"endMs"`
	ID        uuid.UUID  `json:"id"`
	Repeat    bool       `json:"repeat"`
}

type PlaylistResponse struct {
	Name          string                   `json:"name"`
	Status        string                   `json:"status"`
	Entries       []EntryResponse          `json:"entries"`
	Settings      PlaybackSettingsResponse `json:"settings"`
	ID            uuid.UUID                `json:"id"`
	SceneID       uuid.UUID                `json:"sceneId"`
	RepeatList    bool                     `json:"repeatList"`
	Randomize     bool                     `json:"randomize"`
	StopAfterEach bool                     `json:"stopAfterEach"`
}

type PlaylistsResponse struct {
	Playlists []PlaylistResponse `json:"playlists"`
}

type SceneResponse struct {
	Name      string      `json:"name"`
	Playlists []uuid.UUID `json:"playlists"`
	ID        uuid.UUID   `json:"id"`
	Active    bool        `json:"active"`
}

type ScenesResponse struct {
	Scenes []SceneResponse `json:"scenes"`
}

type SearchResult struct {
	Name       string    `json:"name"`
	SceneName  string    `json:"sceneName"`
	Similarity float32   `json:"similarity"`
	ID         uuid.UUID `json:"id"`
	SceneID    uuid.UUID `json:"sceneId"`
}

type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Total   int            `json:"total"`
}

type EntriesAddedResponse struct {
	IDs []uuid.UUID `json:"ids"`
}

type EngineResponse struct {
	Volume float64 `json:"volume"`
	Paused bool    `json:"paused"`
}

type LibraryExportResponse struct {
	Path string `json:"path"`
}

type LibraryImportResponse struct {
	Scenes int `json:"scenes"`
}

// PlaylistChanged is the payload of playlists.changed.
type PlaylistChanged struct {
	Status string    `json:"status"`
	ID     uuid.UUID `json:"id"`
}
