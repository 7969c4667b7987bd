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

package mocks

import (
	"fmt"
	"time"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/audio"
	"github.com/stretchr/testify/mock"
)

// MockEngine is a testify mock of audio.Engine.
type MockEngine struct {
	mock.Mock
}

var _ audio.Engine = (*MockEngine)(nil)

func (m *MockEngine) PlayerFor(sound audio.Sound) (audio.Player, error) {
	args := m.Called(sound)
	if err := args.Error(1); err != nil {
		return nil, fmt.Errorf("mock engine player failed: %w", err)
	}
	p, ok := args.Get(0).(audio.Player)
	if !ok {
		return nil, fmt.Errorf("mock engine returned %T", args.Get(0))
	}
	return p, nil
}

func (m *MockEngine) SetAllPaused(paused bool) {
	m.Called(paused)
}

func (m *MockEngine) SetMasterVolume(v float64) {
	m.Called(v)
}

func (m *MockEngine) StopAll() {
	m.Called()
}

// MockPlayer is a testify mock of audio.Player.
type MockPlayer struct {
	mock.Mock
}

var _ audio.Player = (*MockPlayer)(nil)

// NewMockPlayer returns a player of the given length sitting at position
// zero. Setters and transport calls are accepted and recorded.
func NewMockPlayer(length time.Duration) *MockPlayer {
	m := &MockPlayer{}
	m.On("Length").Return(length).Maybe()
	m.On("Position").Return(time.Duration(0)).Maybe()
	m.On("Finished").Return(false).Maybe()
	m.On("SetVolume", mock.Anything).Return().Maybe()
	m.On("SetPosition", mock.Anything).Return().Maybe()
	m.On("Play").Return().Maybe()
	m.On("Pause").Return().Maybe()
	m.On("Stop").Return().Maybe()
	return m
}

func (m *MockPlayer) Play()  { m.Called() }
func (m *MockPlayer) Pause() { m.Called() }
func (m *MockPlayer) Stop()  { m.Called() }

func (m *MockPlayer) Volume() float64 {
	args := m.Called()
	return args.Get(0).(float64) //nolint:forcetypeassert // mock setup controls the type
}

func (m *MockPlayer) SetVolume(v float64) {
	m.Called(v)
}

func (m *MockPlayer) Pan() float64 {
	args := m.Called()
	return args.Get(0).(float64) //nolint:forcetypeassert // mock setup controls the type
}

func (m *MockPlayer) SetPan(p float64) {
	m.Called(p)
}

func (m *MockPlayer) Finished() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockPlayer) Position() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration) //nolint:forcetypeassert // mock setup controls the type
}

func (m *MockPlayer) SetPosition(pos time.Duration) {
	m.Called(pos)
}

func (m *MockPlayer) Speed() float64 {
	args := m.Called()
	return args.Get(0).(float64) //nolint:forcetypeassert // mock setup controls the type
}

func (m *MockPlayer) SetSpeed(s float64) {
	m.Called(s)
}

func (m *MockPlayer) Length() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration) //nolint:forcetypeassert // mock setup controls the type
}
