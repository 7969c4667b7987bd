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
	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/models/requests"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/notifications"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/validation"
	"github.com/rs/zerolog/log"
)

func engineResponse(env *requests.RequestEnv) models.EngineResponse {
	return models.EngineResponse{
		Volume: env.Library.MasterVolume(),
		Paused: env.Library.AllPaused(),
	}
}

//nolint:gocritic // single-use parameter in API handler
func HandleEngineVolume(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received engine volume request")

	var params models.EngineVolumeParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	env.Library.SetMasterVolume(params.Volume)
	resp := engineResponse(&env)
	notifications.EngineChanged(env.Notifications, resp)
	return resp, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleEnginePause(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received engine pause request")

	var params models.EnginePauseParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	env.Library.SetAllPaused(params.Paused)
	resp := engineResponse(&env)
	notifications.EngineChanged(env.Notifications, resp)
	return resp, nil
}

// HandleStop fades out every playlist in every scene.
//
//nolint:gocritic // single-use parameter in API handler
func HandleStop(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received stop request")
	env.Library.StopAll()
	return NoContent{}, nil
}
