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

	"github.com/ZaparooProject/zaparoo-ambience/pkg/proptree"
	"github.com/stretchr/testify/mock"
)

// MockSceneDB is a testify mock of the API's scene persistence.
type MockSceneDB struct {
	mock.Mock
}

func (m *MockSceneDB) SaveScenes(trees []proptree.Tree) error {
	args := m.Called(trees)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock save scenes failed: %w", err)
	}
	return nil
}

func (m *MockSceneDB) LoadScenes() ([]proptree.Tree, error) {
	args := m.Called()
	if err := args.Error(1); err != nil {
		return nil, fmt.Errorf("mock load scenes failed: %w", err)
	}
	trees, _ := args.Get(0).([]proptree.Tree)
	return trees, nil
}
