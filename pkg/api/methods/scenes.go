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

//nolint:gocritic // single-use parameter in API handler
func HandleScenes(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received scenes request")

	all := env.Library.Scenes()
	resp := models.ScenesResponse{Scenes: make([]models.SceneResponse, 0, len(all))}
	for _, s := range all {
		resp.Scenes = append(resp.Scenes, sceneResponse(s))
	}
	return resp, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleNewScene(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received new scene request")

	var params models.NewSceneParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	s := env.Library.AddScene(params.Name)
	notifications.ScenesChanged(env.Notifications)
	return sceneResponse(s), nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleDeleteScene(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received delete scene request")

	var params models.IDParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	if !env.Library.RemoveScene(params.ID) {
		return nil, fmt.Errorf("scene %s: %w", params.ID, ErrNotFound)
	}
	notifications.ScenesChanged(env.Notifications)
	return NoContent{}, nil
}
