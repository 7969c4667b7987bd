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
	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/validation"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/service/playlists"
	"github.com/rs/zerolog/log"
)

//nolint:gocritic // single-use parameter in API handler
func HandleSettings(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received settings request")

	reporting, _ := env.Config.ErrorReporting()
	return models.SettingsResponse{
		AudioEngine:    env.Config.AudioEngine(),
		MasterVolume:   env.Library.MasterVolume(),
		TickIntervalMs: env.Config.TickInterval().Milliseconds(),
		DebugLogging:   env.Config.DebugLogging(),
		ErrorReporting: reporting,
		Playback:       playbackResponse(env.Library.DefaultSettings()),
	}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleSettingsUpdate(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received settings update request")

	var params models.UpdateSettingsParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	if params.DebugLogging != nil {
		log.Info().Bool("debugLogging", *params.DebugLogging).Msg("update")
		env.Config.SetDebugLogging(*params.DebugLogging)
	}

	if params.ErrorReporting != nil {
		log.Info().Bool("errorReporting", *params.ErrorReporting).Msg("update")
		env.Config.SetErrorReporting(*params.ErrorReporting)
	}

	if params.MasterVolume != nil {
		log.Info().Float64("masterVolume", *params.MasterVolume).Msg("update")
		env.Config.SetMasterVolume(*params.MasterVolume)
		env.Library.SetMasterVolume(*params.MasterVolume)
	}

	if params.Playback != nil {
		defaults := playlists.NewSettings(env.Library.DefaultSettings())
		applyPlayback(params.Playback, defaults)
		snapshot := defaults.Snapshot()
		log.Info().Interface("playback", snapshot).Msg("update")
		env.Config.SetPlaybackDefaults(snapshot)
		env.Library.SetDefaultSettings(snapshot)
	}

	if err := env.Config.Save(); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}
	return NoContent{}, nil
}
