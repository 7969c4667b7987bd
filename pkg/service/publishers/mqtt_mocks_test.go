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
	"time"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/helpers/syncutil"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type publishedMessage struct {
	payload any
	topic   string
}

// fakeMQTTClient records publishes in memory.
type fakeMQTTClient struct {
	connectError error
	publishError error
	published    []publishedMessage
	disconnects  int
	connected    bool
	mu           syncutil.Mutex
}

func (m *fakeMQTTClient) messages() []publishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]publishedMessage(nil), m.published...)
}

func (m *fakeMQTTClient) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *fakeMQTTClient) IsConnectionOpen() bool {
	return m.IsConnected()
}

func (m *fakeMQTTClient) Connect() mqtt.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.connectError != nil {
		return &fakeToken{err: m.connectError}
	}
	m.connected = true
	return &fakeToken{}
}

func (m *fakeMQTTClient) Disconnect(uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	m.disconnects++
}

func (m *fakeMQTTClient) Publish(topic string, _ byte, _ bool, payload any) mqtt.Token {
	if m.publishError != nil {
		return &fakeToken{err: m.publishError}
	}
	m.mu.Lock()
	m.published = append(m.published, publishedMessage{topic: topic, payload: payload})
	m.mu.Unlock()
	return &fakeToken{}
}

func (*fakeMQTTClient) Subscribe(string, byte, mqtt.MessageHandler) mqtt.Token {
	return &fakeToken{}
}

func (*fakeMQTTClient) SubscribeMultiple(map[string]byte, mqtt.MessageHandler) mqtt.Token {
	return &fakeToken{}
}

func (*fakeMQTTClient) Unsubscribe(...string) mqtt.Token {
	return &fakeToken{}
}

func (*fakeMQTTClient) AddRoute(string, mqtt.MessageHandler) {}

func (*fakeMQTTClient) OptionsReader() mqtt.ClientOptionsReader {
	return mqtt.ClientOptionsReader{}
}

// fakeToken is always complete.
type fakeToken struct {
	err error
}

func (*fakeToken) Wait() bool                     { return true }
func (*fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Error() error                 { return t.err }

func (*fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
