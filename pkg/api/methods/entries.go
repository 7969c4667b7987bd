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
	"errors"
	"fmt"
	"time"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/models/requests"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/validation"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/audio"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/library"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrNoAudioFiles = errors.New("no audio files found")

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

//nolint:gocritic // single-use parameter in API handler
func HandleAddEntry(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received add entry request")

	var params models.AddEntryParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	p, _, err := findPlaylist(env, params.PlaylistID)
	if err != nil {
		return nil, err
	}

	sound, err := audio.NewSound(params.Path, ms(params.StartMs), ms(params.EndMs))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", validation.ErrInvalidParams, err)
	}

	index := -1
	if params.Index != nil {
		index = *params.Index
	}
	e, err := p.Insert(index, sound)
	if err != nil {
		return nil, fmt.Errorf("failed to add entry: %w", err)
	}
	if params.Repeat {
		e.SetRepeat(true)
	}
	return models.EntriesAddedResponse{IDs: []uuid.UUID{e.ID()}}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleAddDir(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received add directory request")

	var params models.AddDirParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	p, _, err := findPlaylist(env, params.PlaylistID)
	if err != nil {
		return nil, err
	}
	if env.Files == nil {
		return nil, fmt.Errorf("filesystem: %w", ErrUnavailable)
	}

	files, err := library.AudioFiles(env.Files, params.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoAudioFiles, params.Path)
	}

	resp := models.EntriesAddedResponse{IDs: make([]uuid.UUID, 0, len(files))}
	for _, f := range files {
		e, err := p.Add(audio.Sound{Path: f})
		if err != nil {
			log.Warn().Err(err).Str("path", f).Msg("skipping file")
			continue
		}
		resp.IDs = append(resp.IDs, e.ID())
	}
	log.Info().Int("count", len(resp.IDs)).Str("path", params.Path).Msg("added directory")
	return resp, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleRemoveEntry(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received remove entry request")

	var params models.RemoveEntryParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	p, _, err := findPlaylist(env, params.PlaylistID)
	if err != nil {
		return nil, err
	}
	if !p.Remove(params.ID, !params.KeepChains) {
		return nil, fmt.Errorf("entry %s: %w", params.ID, ErrNotFound)
	}
	return NoContent{}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleMoveEntry(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received move entry request")

	var params models.MoveEntryParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	p, _, err := findPlaylist(env, params.PlaylistID)
	if err != nil {
		return nil, err
	}

	if params.ToPlaylistID == nil || *params.ToPlaylistID == params.PlaylistID {
		if !p.Move(params.ID, params.Index) {
			return nil, fmt.Errorf("entry %s: %w", params.ID, ErrNotFound)
		}
		return NoContent{}, nil
	}

	dst, _, err := findPlaylist(env, *params.ToPlaylistID)
	if err != nil {
		return nil, err
	}
	if p.Transfer(params.ID, dst, params.Index) == nil {
		return nil, fmt.Errorf("entry %s: %w", params.ID, ErrNotFound)
	}
	return NoContent{}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleUpdateEntry(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received update entry request")

	var params models.UpdateEntryParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	p, _, err := findPlaylist(env, params.PlaylistID)
	if err != nil {
		return nil, err
	}
	e, err := findEntry(p, params.ID)
	if err != nil {
		return nil, err
	}

	if params.StartMs != nil || params.EndMs != nil {
		sound := e.Sound()
		start, end := sound.Start, sound.End
		if params.StartMs != nil {
			start = ms(*params.StartMs)
		}
		if params.EndMs != nil {
			end = ms(*params.EndMs)
		}
		trimmed, err := sound.WithTrim(start, end)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", validation.ErrInvalidParams, err)
		}
		if err := e.SetSound(trimmed); err != nil {
			return nil, fmt.Errorf("failed to update entry: %w", err)
		}
	}

	if params.ChainWith != nil {
		if *params.ChainWith != uuid.Nil && p.Entry(*params.ChainWith) == nil {
			return nil, fmt.Errorf("chain target %s: %w", *params.ChainWith, ErrNotFound)
		}
		e.SetChainWith(*params.ChainWith)
	}

	if params.Repeat != nil {
		e.SetRepeat(*params.Repeat)
	}

	return entryResponse(e), nil
}
