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
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirsEnsure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		setupDirs bool
	}{
		{name: "creates missing directories", setupDirs: false},
		{name: "works when directories exist", setupDirs: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root := t.TempDir()
			dirs := Dirs{
				Config: filepath.Join(root, "config", "nested"),
				Data:   filepath.Join(root, "data"),
				Log:    filepath.Join(root, "log", "nested"),
			}
			if tt.setupDirs {
				require.NoError(t, os.MkdirAll(dirs.Config, 0o750))
			}

			require.NoError(t, dirs.Ensure())

			for _, dir := range []string{dirs.Config, dirs.Data, dirs.Log} {
				info, err := os.Stat(dir)
				require.NoError(t, err)
				assert.True(t, info.IsDir())
				if runtime.GOOS != "windows" && !tt.setupDirs {
					assert.Equal(t, os.FileMode(0o750), info.Mode().Perm())
				}
			}
		})
	}
}

func TestDirsFiles(t *testing.T) {
	t.Parallel()
	dirs := Dirs{Data: "/data"}
	assert.Equal(t, filepath.Join("/data", config.LibraryDBFile), dirs.LibraryDB())
	assert.Equal(t, filepath.Join("/data", config.LibraryDir), dirs.Library())
}

func TestDefaultDirsNamed(t *testing.T) {
	t.Parallel()
	dirs := DefaultDirs()
	assert.NotEmpty(t, dirs.Config)
	assert.NotEmpty(t, dirs.Data)
	assert.NotEmpty(t, dirs.Log)
}

//nolint:paralleltest // replaces the global logger
func TestInitLogging(t *testing.T) {
	dir := t.TempDir()
	var extra bytes.Buffer
	require.NoError(t, InitLogging(dir, &extra))
	t.Cleanup(func() { log.Logger = zerolog.Nop() })

	log.Info().Msg("poller: started")
	assert.Contains(t, extra.String(), "poller: started")

	_, err := LogWriter().Write([]byte("raw\n"))
	require.NoError(t, err)
	assert.Contains(t, extra.String(), "raw")

	data, err := os.ReadFile(filepath.Join(dir, config.LogFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "poller: started")
}
