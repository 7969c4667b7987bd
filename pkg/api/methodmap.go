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

package api

import (
	"errors"
	"fmt"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/methods"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/models/requests"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/helpers/syncutil"
)

var (
	ErrEmptyMethodName = errors.New("method name is empty")
	ErrMethodExists    = errors.New("method already registered")
)

type MethodFunc func(requests.RequestEnv) (any, error)

// MethodMap maps JSON-RPC method names to their handlers.
type MethodMap struct {
	methods map[string]MethodFunc
	mu      syncutil.RWMutex
}

var defaultMethods = map[string]MethodFunc{
	// settings
	models.MethodSettings:       methods.HandleSettings,
	models.MethodSettingsUpdate: methods.HandleSettingsUpdate,
	// scenes
	models.MethodScenes:       methods.HandleScenes,
	models.MethodScenesNew:    methods.HandleNewScene,
	models.MethodScenesDelete: methods.HandleDeleteScene,
	// playlists
	models.MethodPlaylists:       methods.HandlePlaylists,
	models.MethodPlaylistsNew:    methods.HandleNewPlaylist,
	models.MethodPlaylistsDelete: methods.HandleDeletePlaylist,
	models.MethodPlaylistsPlay:   methods.HandlePlay,
	models.MethodPlaylistsPause:  methods.HandlePause,
	models.MethodPlaylistsStop:   methods.HandleStopPlaylist,
	models.MethodPlaylistsUpdate: methods.HandleUpdatePlaylist,
	models.MethodPlaylistsSearch: methods.HandleSearchPlaylists,
	// entries
	models.MethodEntriesAdd:    methods.HandleAddEntry,
	models.MethodEntriesAddDir: methods.HandleAddDir,
	models.MethodEntriesRemove: methods.HandleRemoveEntry,
	models.MethodEntriesMove:   methods.HandleMoveEntry,
	models.MethodEntriesUpdate: methods.HandleUpdateEntry,
	// engine
	models.MethodEngineVolume: methods.HandleEngineVolume,
	models.MethodEnginePause:  methods.HandleEnginePause,
	models.MethodStop:         methods.HandleStop,
	// library
	models.MethodLibrarySave:   methods.HandleLibrarySave,
	models.MethodLibraryExport: methods.HandleLibraryExport,
	models.MethodLibraryImport: methods.HandleLibraryImport,
	// utils
	models.MethodVersion: methods.HandleVersion,
}

// NewMethodMap returns a map holding every built-in method.
func NewMethodMap() *MethodMap {
	m := &MethodMap{methods: make(map[string]MethodFunc, len(defaultMethods))}
	for name, fn := range defaultMethods {
		m.methods[name] = fn
	}
	return m
}

func (m *MethodMap) AddMethod(name string, fn MethodFunc) error {
	if name == "" {
		return ErrEmptyMethodName
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.methods[name]; ok {
		return fmt.Errorf("%w: %s", ErrMethodExists, name)
	}
	m.methods[name] = fn
	return nil
}

func (m *MethodMap) GetMethod(name string) (MethodFunc, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn, ok := m.methods[name]
	return fn, ok
}

func (m *MethodMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.methods)
}
