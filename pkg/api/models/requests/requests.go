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

package requests

import (
	"context"
	"encoding/json"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/config"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/library"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/proptree"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/service/scenes"
	"github.com/spf13/afero"
)

// SceneDB persists the scene library.
type SceneDB interface {
	SaveScenes(trees []proptree.Tree) error
	LoadScenes() ([]proptree.Tree, error)
}

type RequestEnv struct {
	Context       context.Context
	Config        *config.Instance
	Library       *scenes.Library
	DB            SceneDB
	Documents     *library.Store
	Files         afero.Fs
	Notifications chan<- models.Notification
	Params        json.RawMessage
	ID            models.RPCID
	IsLocal       bool
}
