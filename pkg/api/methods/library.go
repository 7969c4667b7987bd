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

// HandleLibrarySave writes every scene to the library database.
//
//nolint:gocritic // single-use parameter in API handler
func HandleLibrarySave(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received library save request")

	if env.DB == nil {
		return nil, fmt.Errorf("library database: %w", ErrUnavailable)
	}
	if err := env.DB.SaveScenes(env.Library.ToTrees()); err != nil {
		return nil, fmt.Errorf("failed to save library: %w", err)
	}
	return NoContent{}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleLibraryExport(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received library export request")

	var params models.LibraryFileParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}
	if env.Documents == nil {
		return nil, fmt.Errorf("document store: %w", ErrUnavailable)
	}

	path, err := env.Documents.Export(params.Name, env.Library.ToTrees())
	if err != nil {
		return nil, fmt.Errorf("failed to export library: %w", err)
	}
	return models.LibraryExportResponse{Path: path}, nil
}

// HandleLibraryImport loads a scene document. With merge set, each scene
// in the document is added or replaces the scene with the same id;
// otherwise the whole library is replaced.
//
//nolint:gocritic // single-use parameter in API handler
func HandleLibraryImport(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received library import request")

	var params models.LibraryFileParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}
	if env.Documents == nil {
		return nil, fmt.Errorf("document store: %w", ErrUnavailable)
	}

	trees, err := env.Documents.Import(params.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to import library: %w", err)
	}

	if params.Merge {
		for i, t := range trees {
			if _, err := env.Library.LoadScene(t); err != nil {
				return nil, fmt.Errorf("failed to load scene %d: %w", i, err)
			}
		}
	} else if err := env.Library.Load(trees); err != nil {
		return nil, fmt.Errorf("failed to load library: %w", err)
	}

	notifications.LibraryLoaded(env.Notifications, len(trees))
	return models.LibraryImportResponse{Scenes: len(trees)}, nil
}
