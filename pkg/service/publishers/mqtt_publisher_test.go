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

package publishers

import (
	"errors"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/config"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/service/broker"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func withClient(p *MQTTPublisher, c *fakeMQTTClient) *MQTTPublisher {
	p.newClient = func(*mqtt.ClientOptions) mqtt.Client { return c }
	return p
}

func TestPublisherForwardsToMethodTopics(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := broker.New()
	client := &fakeMQTTClient{}
	p := withClient(NewMQTTPublisher("localhost:1883", "ambience", nil), client)
	require.NoError(t, p.Start(b))
	require.ErrorIs(t, p.Start(b), ErrAlreadyStarted)

	b.Publish(models.Notification{Method: models.NotificationScenesChanged})
	b.Publish(models.Notification{
		Method: models.NotificationPlaylistsChanged,
		Params: []byte(`{"id":"x","status":"playing"}`),
	})

	require.Eventually(t, func() bool { return len(client.messages()) == 2 },
		time.Second, 5*time.Millisecond)
	msgs := client.messages()
	assert.Equal(t, "ambience/scenes.changed", msgs[0].topic)
	assert.Equal(t, []byte("null"), msgs[0].payload)
	assert.Equal(t, "ambience/playlists.changed", msgs[1].topic)
	assert.JSONEq(t, `{"id":"x","status":"playing"}`, string(msgs[1].payload.([]byte)))

	p.Stop()
	assert.Equal(t, 1, client.disconnects)
	assert.Equal(t, 0, b.Len())
	b.Close()
}

func TestPublisherFilter(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := broker.New()
	client := &fakeMQTTClient{}
	p := withClient(NewMQTTPublisher("h:1883", "t", []string{models.NotificationEngineChanged}), client)
	require.NoError(t, p.Start(b))

	b.Publish(models.Notification{Method: models.NotificationScenesChanged})
	b.Publish(models.Notification{Method: models.NotificationEngineChanged, Params: []byte(`{}`)})

	require.Eventually(t, func() bool { return len(client.messages()) == 1 },
		time.Second, 5*time.Millisecond)
	assert.Equal(t, "t/engine.changed", client.messages()[0].topic)
	p.Stop()
}

func TestPublisherConnectError(t *testing.T) {
	t.Parallel()
	b := broker.New()
	client := &fakeMQTTClient{connectError: errors.New("refused")}
	p := withClient(NewMQTTPublisher("h:1883", "t", nil), client)
	require.Error(t, p.Start(b))
	assert.Equal(t, 0, b.Len())
	p.Stop()
}

func TestPublisherPublishErrorKeepsRunning(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := broker.New()
	client := &fakeMQTTClient{publishError: errors.New("boom")}
	p := withClient(NewMQTTPublisher("h:1883", "t", nil), client)
	require.NoError(t, p.Start(b))
	b.Publish(models.Notification{Method: models.NotificationScenesChanged})
	b.Publish(models.Notification{Method: models.NotificationScenesChanged})
	p.Stop()
	assert.Empty(t, client.messages())
}

func TestPublisherStopsWhenBrokerCloses(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := broker.New()
	client := &fakeMQTTClient{}
	p := withClient(NewMQTTPublisher("h:1883", "t", nil), client)
	require.NoError(t, p.Start(b))
	b.Close()
	p.Stop()
}

func TestStartAllSkipsDisabledAndIncomplete(t *testing.T) {
	t.Parallel()
	off := false
	b := broker.New()
	defer b.Close()

	started := StartAll([]config.MQTTPublisher{
		{Enabled: &off, Broker: "h:1883", Topic: "t"},
		{Broker: "", Topic: "t"},
		{Broker: "h:1883", Topic: ""},
	}, b)
	assert.Empty(t, started)
	assert.Equal(t, 0, b.Len())
}
