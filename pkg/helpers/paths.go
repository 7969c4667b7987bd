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

package helpers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/config"
	"github.com/adrg/xdg"
)

// UserDir is the portable-install directory checked for next to the binary.
const UserDir = "user"

// Dirs are the directories the service keeps its files in.
type Dirs struct {
	Config string
	Data   string
	Log    string
}

// DefaultDirs returns the XDG directories for the service, or a "user"
// directory next to the executable when one exists.
func DefaultDirs() Dirs {
	if dir, ok := portableDir(); ok {
		return Dirs{
			Config: dir,
			Data:   dir,
			Log:    filepath.Join(dir, "logs"),
		}
	}
	return Dirs{
		Config: filepath.Join(xdg.ConfigHome, config.AppName),
		Data:   filepath.Join(xdg.DataHome, config.AppName),
		Log:    filepath.Join(xdg.StateHome, config.AppName),
	}
}

func portableDir() (string, bool) {
	exe, err := os.Executable()
	if err != nil {
		return "", false
	}
	dir := filepath.Join(filepath.Dir(exe), UserDir)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return dir, true
}

// Ensure creates every directory.
func (d Dirs) Ensure() error {
	for _, dir := range []string{d.Config, d.Data, d.Log} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

func (d Dirs) LibraryDB() string {
	return filepath.Join(d.Data, config.LibraryDBFile)
}

func (d Dirs) Library() string {
	return filepath.Join(d.Data, config.LibraryDir)
}
