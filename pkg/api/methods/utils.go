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

// Package methods implements the JSON-RPC API methods. Handlers validate
// their params, act on the scene library and return a response model.
package methods

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/models/requests"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/config"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/service/playlists"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/service/scenes"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("not available")
)

// NoContent is returned by methods with nothing to report.
type NoContent struct{}

//nolint:gocritic // single-use parameter in API handler
func HandleVersion(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received version request")
	return models.VersionResponse{
		Version:  config.AppVersion,
		Platform: runtime.GOOS,
	}, nil
}

//nolint:gocritic // single-use parameter in API handler
func findPlaylist(env requests.RequestEnv, id uuid.UUID) (*playlists.Playlist, *scenes.Scene, error) {
	p, s := env.Library.FindPlaylist(id)
	if p == nil {
		return nil, nil, fmt.Errorf("playlist %s: %w", id, ErrNotFound)
	}
	return p, s, nil
}

func findEntry(p *playlists.Playlist, id uuid.UUID) (*playlists.Entry, error) {
	e := p.Entry(id)
	if e == nil {
		return nil, fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}
	return e, nil
}

// playbackSetter is implemented by playlists and by a bare settings
// holder, so the same params update either.
type playbackSetter interface {
	SetFadeIn(d time.Duration)
	SetFadeOut(d time.Duration)
	SetOverlap(d time.Duration)
	SetVolume(v float64)
	SetRandomizeVolumeFrom(v float64)
	SetRandomizeVolumeTo(v float64)
}

func applyPlayback(params *models.PlaybackParams, s playbackSetter) {
	if params == nil {
		return
	}
	if params.FadeInMs != nil {
		s.SetFadeIn(time.Duration(*params.FadeInMs) * time.Millisecond)
	}
	if params.FadeOutMs != nil {
		s.SetFadeOut(time.Duration(*params.FadeOutMs) * time.Millisecond)
	}
	if params.OverlapMs != nil {
		s.SetOverlap(time.Duration(*params.OverlapMs) * time.Millisecond)
	}
	if params.Volume != nil {
		s.SetVolume(*params.Volume)
	}
	if params.RandomizeVolumeFrom != nil {
		s.SetRandomizeVolumeFrom(*params.RandomizeVolumeFrom)
	}
	if params.RandomizeVolumeTo != nil {
		s.SetRandomizeVolumeTo(*params.RandomizeVolumeTo)
	}
}

//nolint:gocritic // settings are a small value type
func playbackResponse(s playlists.PlaybackSettings) models.PlaybackSettingsResponse {
	return models.PlaybackSettingsResponse{
		FadeInMs:            s.FadeIn.Milliseconds(),
		FadeOutMs:           s.FadeOut.Milliseconds(),
		OverlapMs:           s.Overlap.Milliseconds(),
		Volume:              s.Volume,
		RandomizeVolumeFrom: s.RandomizeVolumeFrom,
		RandomizeVolumeTo:   s.RandomizeVolumeTo,
	}
}

func entryResponse(e *playlists.Entry) models.EntryResponse {
	sound := e.Sound()
	resp := models.EntryResponse{
		ID:      e.ID(),
		Path:    sound.Path,
		StartMs: sound.Start.Milliseconds(),
		EndMs:   sound.End.Milliseconds(),
		Repeat:  e.Repeat(),
		Status:  e.Status().String(),
	}
	if chain := e.ChainWith(); chain != uuid.Nil {
		resp.ChainWith = &chain
	}
	return resp
}

func playlistResponse(p *playlists.Playlist, sceneID uuid.UUID) models.PlaylistResponse {
	entries := p.Entries()
	resp := models.PlaylistResponse{
		ID:            p.ID(),
		SceneID:       sceneID,
		Name:          p.Name(),
		Status:        p.Status().String(),
		RepeatList:    p.RepeatList(),
		Randomize:     p.Randomize(),
		StopAfterEach: p.StopAfterEach(),
		Settings:      playbackResponse(p.Settings()),
		Entries:       make([]models.EntryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, entryResponse(e))
	}
	return resp
}

func sceneResponse(s *scenes.Scene) models.SceneResponse {
	pls := s.Playlists()
	resp := models.SceneResponse{
		ID:        s.ID(),
		Name:      s.Name(),
		Active:    s.IsActive(),
		Playlists: make([]uuid.UUID, 0, len(pls)),
	}
	for _, p := range pls {
		resp.Playlists = append(resp.Playlists, p.ID())
	}
	return resp
}
