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

// Package librarydb stores the scene library in SQLite. Each scene is one
// row holding its property tree encoded as TOML.
package librarydb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/proptree"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

var (
	ErrNullSQL   = errors.New("library database is not connected")
	ErrMissingID = errors.New("scene has no id")
)

const sqliteConnParams = "?_journal_mode=WAL&_synchronous=FULL&_busy_timeout=5000"

type LibraryDB struct {
	ctx  context.Context
	sql  *sql.DB
	path string
}

// Open opens the database at path, creating and migrating it when needed.
func Open(ctx context.Context, path string) (*LibraryDB, error) {
	db := &LibraryDB{ctx: ctx, path: path}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create directory for database: %w", err)
	}
	sqlInstance, err := sql.Open("sqlite3", path+sqliteConnParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.sql = sqlInstance
	if err := db.MigrateUp(); err != nil {
		_ = sqlInstance.Close()
		return nil, err
	}
	log.Info().Str("path", path).Msg("librarydb: opened")
	return db, nil
}

func (db *LibraryDB) Path() string {
	return db.path
}

func (db *LibraryDB) MigrateUp() error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlMigrateUp(db.sql)
}

// SaveScenes replaces every stored scene with trees, keeping their order.
func (db *LibraryDB) SaveScenes(trees []proptree.Tree) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlSaveScenes(db.ctx, db.sql, trees)
}

// LoadScenes returns the stored scenes in order.
func (db *LibraryDB) LoadScenes() ([]proptree.Tree, error) {
	if db.sql == nil {
		return nil, ErrNullSQL
	}
	return sqlLoadScenes(db.ctx, db.sql)
}

// DeleteScene removes one scene. Deleting a missing scene is not an error.
func (db *LibraryDB) DeleteScene(id uuid.UUID) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlDeleteScene(db.ctx, db.sql, id)
}

func (db *LibraryDB) Close() error {
	if db.sql == nil {
		return nil
	}
	if err := db.sql.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// SetSQLForTesting injects a connection, such as an in-memory database or
// a sqlmock, without migrating it.
func (db *LibraryDB) SetSQLForTesting(ctx context.Context, sqlDB *sql.DB) {
	db.ctx = ctx
	db.sql = sqlDB
}
