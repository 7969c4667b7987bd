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

// Package publishers forwards API notifications to external message
// brokers so home automation can react to what is playing.
package publishers

import (
	"errors"
	"fmt"
	"time"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/config"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/service/broker"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	subscriptionBuffer = 64
	connectTimeout     = 10 * time.Second
	publishTimeout     = 5 * time.Second
	disconnectQuiesce  = 250
)

var ErrAlreadyStarted = errors.New("publisher already started")

// MQTTPublisher publishes notifications to topic/<method> on an MQTT
// broker. The payload is the notification's params.
type MQTTPublisher struct {
	client    mqtt.Client
	newClient func(*mqtt.ClientOptions) mqtt.Client
	notifs    *broker.Broker
	sub       *broker.Subscription
	done      chan struct{}
	broker    string
	topic     string
	filter    []string
}

func NewMQTTPublisher(broker, topic string, filter []string) *MQTTPublisher {
	return &MQTTPublisher{
		broker:    broker,
		topic:     topic,
		filter:    filter,
		newClient: mqtt.NewClient,
	}
}

func (p *MQTTPublisher) options() *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker("tcp://" + p.broker)
	opts.SetClientID(config.AppName + "-" + uuid.NewString()[:8])
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(connectTimeout)
	opts.OnConnect = func(mqtt.Client) {
		log.Info().Str("broker", p.broker).Msg("mqtt publisher: connected")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", p.broker).Msg("mqtt publisher: connection lost")
	}
	return opts
}

// Start connects to the broker and forwards notifications from b until
// Stop is called or b closes.
func (p *MQTTPublisher) Start(b *broker.Broker) error {
	if p.done != nil {
		return ErrAlreadyStarted
	}

	p.client = p.newClient(p.options())
	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		log.Warn().Str("broker", p.broker).Msg("mqtt publisher: connect pending, retrying in background")
	} else if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	p.notifs = b
	p.sub = b.Subscribe(subscriptionBuffer, p.filter...)
	p.done = make(chan struct{})
	go p.forward()

	log.Info().Str("broker", p.broker).Str("topic", p.topic).Msg("mqtt publisher: started")
	return nil
}

// Stop unsubscribes, waits for the forwarder to exit and disconnects.
func (p *MQTTPublisher) Stop() {
	if p.done == nil {
		return
	}
	p.notifs.Unsubscribe(p.sub)
	<-p.done
	if p.client.IsConnected() {
		log.Debug().Msg("mqtt publisher: disconnecting")
		p.client.Disconnect(disconnectQuiesce)
	}
}

func (p *MQTTPublisher) forward() {
	defer close(p.done)
	for notif := range p.sub.C {
		payload := []byte(notif.Params)
		if len(payload) == 0 {
			payload = []byte("null")
		}
		topic := p.topic + "/" + notif.Method
		token := p.client.Publish(topic, 0, false, payload)
		if !token.WaitTimeout(publishTimeout) {
			log.Warn().Str("topic", topic).Msg("mqtt publisher: publish timed out")
			continue
		}
		if err := token.Error(); err != nil {
			log.Error().Err(err).Str("topic", topic).Msg("mqtt publisher: failed to publish")
			continue
		}
		log.Debug().Str("topic", topic).Msg("mqtt publisher: published")
	}
	log.Debug().Msg("mqtt publisher: stopped")
}

// StartAll starts a publisher for every enabled entry. Publishers which
// fail to connect are logged and skipped.
func StartAll(cfgs []config.MQTTPublisher, b *broker.Broker) []*MQTTPublisher {
	started := make([]*MQTTPublisher, 0, len(cfgs))
	for _, c := range cfgs {
		if !c.IsEnabled() {
			continue
		}
		if c.Broker == "" || c.Topic == "" {
			log.Warn().Str("broker", c.Broker).Str("topic", c.Topic).
				Msg("mqtt publisher: broker and topic required, skipping")
			continue
		}
		p := NewMQTTPublisher(c.Broker, c.Topic, c.Filter)
		if err := p.Start(b); err != nil {
			log.Error().Err(err).Str("broker", c.Broker).Msg("mqtt publisher: failed to start")
			continue
		}
		started = append(started, p)
	}
	return started
}
