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

import (
	"encoding/json"
)

const (
	NotificationPlaylistsChanged = "playlists.changed"
	NotificationScenesChanged    = "scenes.changed"
	NotificationEngineChanged    = "engine.changed"
	NotificationLibraryLoaded    = "library.loaded"
)

const (
	MethodVersion         = "version"
	MethodSettings        = "settings"
	MethodSettingsUpdate  = "settings.update"
	MethodScenes          = "scenes"
	MethodScenesNew       = "scenes.new"
	MethodScenesDelete    = "scenes.delete"
	MethodPlaylists       = "playlists"
	MethodPlaylistsNew    = "playlists.new"
	MethodPlaylistsDelete = "playlists.delete"
	MethodPlaylistsPlay   = "playlists.play"
	MethodPlaylistsPause  = "playlists.pause"
	MethodPlaylistsStop   = "playlists.stop"
	MethodPlaylistsUpdate = "playlists.update"
	MethodPlaylistsSearch = "playlists.search"
	MethodEntriesAdd      = "entries.add"
	MethodEntriesAddDir   = "entries.addDir"
	MethodEntriesRemove   = "entries.remove"
	MethodEntriesMove     = "entries.move"
	MethodEntriesUpdate   = "entries.update"
	MethodEngineVolume    = "engine.volume"
	MethodEnginePause     = "engine.pause"
	MethodStop            = "stop"
	MethodLibrarySave     = "library.save"
	MethodLibraryExport   = "library.export"
	MethodLibraryImport   = "library.import"
)

// JSON-RPC 2.0 error codes.
const (
	ErrorCodeParse          = -32700
	ErrorCodeInvalidRequest = -32600
	ErrorCodeMethodNotFound = -32601
	ErrorCodeInvalidParams  = -32602
	ErrorCodeInternal       = -32603
	ErrorCodeServer         = -32000
)

type Notification struct {
	Method string
	Params json.RawMessage
}

// NotificationObject is a notification as sent over the wire.
type NotificationObject struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type RequestObject struct {
	ID      *RPCID          `json:"id,omitempty"`
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type ErrorObject struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type ResponseObject struct {
	Result  any          `json:"result"`
	Error   *ErrorObject `json:"error,omitempty"`
	JSONRPC string       `json:"jsonrpc"`
	ID      RPCID        `json:"id"`
}

// ResponseErrorObject omits the result field, which must be absent when
// an error is returned.
type ResponseErrorObject struct {
	Error   *ErrorObject `json:"error"`
	JSONRPC string       `json:"jsonrpc"`
	ID      RPCID        `json:"id"`
}
