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

// Package notifications sends API notifications without blocking the
// caller. Playback code notifies from poller ticks, so a full channel drops
// the notification instead of stalling the clock.
package notifications

import (
	"encoding/json"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/service/playlists"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func sendNotification(ns chan<- models.Notification, method string, payload any) {
	var params json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Error().Err(err).Str("method", method).Msg("notifications: failed to marshal payload")
			return
		}
		params = data
	}

	select {
	case ns <- models.Notification{Method: method, Params: params}:
	default:
		log.Warn().Str("method", method).Msg("notifications: channel full, dropping notification")
	}
}

func ScenesChanged(ns chan<- models.Notification) {
	sendNotification(ns, models.NotificationScenesChanged, nil)
}

func EngineChanged(ns chan<- models.Notification, payload models.EngineResponse) {
	sendNotification(ns, models.NotificationEngineChanged, payload)
}

func LibraryLoaded(ns chan<- models.Notification, scenes int) {
	sendNotification(ns, models.NotificationLibraryLoaded, models.LibraryImportResponse{Scenes: scenes})
}

func PlaylistChanged(ns chan<- models.Notification, id uuid.UUID, status string) {
	sendNotification(ns, models.NotificationPlaylistsChanged, models.PlaylistChanged{ID: id, Status: status})
}

// PlaylistObserver turns playlist change callbacks into playlists.changed
// notifications. Status looks up the playlist's current status by id and
// may be nil.
type PlaylistObserver struct {
	ns     chan<- models.Notification
	status func(uuid.UUID) string
}

var _ playlists.Observer = (*PlaylistObserver)(nil)

func NewPlaylistObserver(
	ns chan<- models.Notification,
	status func(uuid.UUID) string,
) *PlaylistObserver {
	return &PlaylistObserver{ns: ns, status: status}
}

func (o *PlaylistObserver) PlaylistChanged(id uuid.UUID) {
	status := ""
	if o.status != nil {
		status = o.status(id)
	}
	PlaylistChanged(o.ns, id, status)
}
