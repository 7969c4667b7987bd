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

// Package library reads and writes scene documents: TOML files holding the
// property trees of one or more scenes, so a library can be shared between
// installs or kept under version control.
package library

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/audio"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/proptree"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	DocumentVersion = 1
	Extension       = ".toml"
)

var (
	ErrInvalidName     = errors.New("invalid document name")
	ErrDocumentVersion = errors.New("unsupported document version")
	ErrNotDirectory    = errors.New("not a directory")
)

type document struct {
	Scenes  []proptree.Tree `toml:"scenes"`
	Version int             `toml:"version"`
}

// Store keeps scene documents in one directory of a filesystem.
type Store struct {
	fs  afero.Fs
	dir string
}

func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

func (s *Store) Dir() string {
	return s.dir
}

// pathFor maps a document name to its file, refusing names that would
// escape the store directory.
func (s *Store) pathFor(name string) (string, error) {
	name = strings.TrimSuffix(name, Extension)
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name+Extension), nil
}

// Export writes trees as the named document, replacing any existing one,
// and returns the written path.
func (s *Store) Export(name string, trees []proptree.Tree) (string, error) {
	path, err := s.pathFor(name)
	if err != nil {
		return "", err
	}
	if trees == nil {
		trees = []proptree.Tree{}
	}
	data, err := toml.Marshal(document{Version: DocumentVersion, Scenes: trees})
	if err != nil {
		return "", fmt.Errorf("failed to encode scene document: %w", err)
	}
	if err := s.fs.MkdirAll(s.dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create library directory: %w", err)
	}
	if err := afero.WriteFile(s.fs, path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write scene document: %w", err)
	}
	log.Info().Str("path", path).Int("scenes", len(trees)).Msg("library: exported")
	return path, nil
}

// Import reads the named document.
func (s *Store) Import(name string) ([]proptree.Tree, error) {
	path, err := s.pathFor(name)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene document: %w", err)
	}
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode scene document %s: %w", path, err)
	}
	if doc.Version != DocumentVersion {
		return nil, fmt.Errorf("%w: %d", ErrDocumentVersion, doc.Version)
	}
	return doc.Scenes, nil
}

// List returns the names of the stored documents, sorted.
func (s *Store) List() ([]string, error) {
	infos, err := afero.ReadDir(s.fs, s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to list library directory: %w", err)
	}
	var names []string
	for _, info := range infos {
		if info.IsDir() || !strings.EqualFold(filepath.Ext(info.Name()), Extension) {
			continue
		}
		names = append(names, strings.TrimSuffix(info.Name(), filepath.Ext(info.Name())))
	}
	sort.Strings(names)
	return names, nil
}

// AudioFiles returns every decodable file under dir, ordered by path.
// Unreadable subdirectories are logged and skipped.
func AudioFiles(afs afero.Fs, dir string) ([]string, error) {
	info, err := afs.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	var files []string
	err = afero.Walk(afs, dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("library: skipping unreadable path")
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.IsDir() && audio.IsSupported(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}
	sort.Strings(files)
	return files, nil
}
