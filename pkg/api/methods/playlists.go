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

package methods

import (
	"fmt"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/models/requests"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/notifications"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/validation"
	"github.com/rs/zerolog/log"
)

const defaultMaxResults = 20

//nolint:gocritic // single-use parameter in API handler
func HandlePlaylists(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received playlists request")

	var params models.PlaylistsParams
	if len(env.Params) > 0 {
		if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
			return nil, err
		}
	}

	resp := models.PlaylistsResponse{Playlists: []models.PlaylistResponse{}}
	for _, s := range env.Library.Scenes() {
		if params.SceneID != nil && s.ID() != *params.SceneID {
			continue
		}
		for _, p := range s.Playlists() {
			resp.Playlists = append(resp.Playlists, playlistResponse(p, s.ID()))
		}
	}
	if params.SceneID != nil && env.Library.Scene(*params.SceneID) == nil {
		return nil, fmt.Errorf("scene %s: %w", *params.SceneID, ErrNotFound)
	}
	return resp, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleNewPlaylist(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received new playlist request")

	var params models.NewPlaylistParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	p := env.Library.NewPlaylist(params.SceneID, params.Name)
	if p == nil {
		return nil, fmt.Errorf("scene %s: %w", params.SceneID, ErrNotFound)
	}
	notifications.ScenesChanged(env.Notifications)
	return playlistResponse(p, params.SceneID), nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleDeletePlaylist(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received delete playlist request")

	var params models.IDParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	if !env.Library.RemovePlaylist(params.ID) {
		return nil, fmt.Errorf("playlist %s: %w", params.ID, ErrNotFound)
	}
	notifications.ScenesChanged(env.Notifications)
	return NoContent{}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandlePlay(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received play request")

	var params models.PlayParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	p, _, err := findPlaylist(env, params.ID)
	if err != nil {
		return nil, err
	}

	switch {
	case params.EntryID != nil:
		if !p.PlayEntry(*params.EntryID) {
			return nil, fmt.Errorf("entry %s: %w", *params.EntryID, ErrNotFound)
		}
	case params.Index != nil:
		if !p.PlayIndex(*params.Index) {
			return nil, fmt.Errorf("entry index %d: %w", *params.Index, ErrNotFound)
		}
	default:
		p.Play()
	}
	return NoContent{}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandlePause(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received pause request")

	var params models.IDParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	p, _, err := findPlaylist(env, params.ID)
	if err != nil {
		return nil, err
	}
	p.Pause()
	return NoContent{}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleStopPlaylist(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received stop playlist request")

	var params models.IDParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	p, _, err := findPlaylist(env, params.ID)
	if err != nil {
		return nil, err
	}
	p.Stop()
	return NoContent{}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleUpdatePlaylist(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received update playlist request")

	var params models.UpdatePlaylistParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	p, s, err := findPlaylist(env, params.ID)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		p.SetName(*params.Name)
	}
	if params.RepeatList != nil {
		p.SetRepeatList(*params.RepeatList)
	}
	if params.Randomize != nil {
		p.SetRandomize(*params.Randomize)
	}
	if params.StopAfterEach != nil {
		p.SetStopAfterEach(*params.StopAfterEach)
	}
	applyPlayback(params.Settings, p)

	return playlistResponse(p, s.ID()), nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleSearchPlaylists(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received playlist search request")

	var params models.SearchParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	maxResults := defaultMaxResults
	if params.MaxResults != nil {
		maxResults = *params.MaxResults
	}

	matches := env.Library.SearchPlaylists(params.Query)
	resp := models.SearchResponse{
		Results: make([]models.SearchResult, 0, min(len(matches), maxResults)),
		Total:   len(matches),
	}
	for _, m := range matches {
		if len(resp.Results) >= maxResults {
			break
		}
		resp.Results = append(resp.Results, models.SearchResult{
			ID:         m.Playlist.ID(),
			Name:       m.Playlist.Name(),
			SceneID:    m.Scene.ID(),
			SceneName:  m.Scene.Name(),
			Similarity: m.Similarity,
		})
	}
	return resp, nil
}
