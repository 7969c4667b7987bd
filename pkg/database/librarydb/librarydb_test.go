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

package librarydb

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/proptree"
	testsqlmock "github.com/ZaparooProject/zaparoo-ambience/pkg/testing/sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sceneTree(id uuid.UUID, name string) proptree.Tree {
	return proptree.Tree{
		"id":   id.String(),
		"name": name,
		"playlists": []proptree.Tree{{
			"id":   uuid.NewString(),
			"name": "Rain",
			"settings": proptree.Tree{
				"fade_in_ms": int64(1500),
				"volume":     0.75,
			},
			"entries": []proptree.Tree{
				{"id": uuid.NewString(), "path": "/sounds/rain.ogg", "repeat": true},
			},
		}},
	}
}

func newMockDB(t *testing.T) (*LibraryDB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	db := &LibraryDB{}
	db.SetSQLForTesting(context.Background(), sqlDB)
	return db, mock
}

func TestNullSQL(t *testing.T) {
	t.Parallel()
	db := &LibraryDB{}
	assert.ErrorIs(t, db.MigrateUp(), ErrNullSQL)
	assert.ErrorIs(t, db.SaveScenes(nil), ErrNullSQL)
	assert.ErrorIs(t, db.DeleteScene(uuid.New()), ErrNullSQL)
	_, err := db.LoadScenes()
	assert.ErrorIs(t, err, ErrNullSQL)
	assert.NoError(t, db.Close())
}

func TestSaveScenes(t *testing.T) {
	db, mock := newMockDB(t)
	orig := nowFunc
	nowFunc = func() time.Time { return time.Unix(1700000000, 0) }
	t.Cleanup(func() { nowFunc = orig })

	first, second := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`delete from Scenes`).WillReturnResult(sqlmock.NewResult(0, 3))
	prep := mock.ExpectPrepare(`insert into Scenes`)
	prep.ExpectExec().
		WithArgs(first.String(), "Tavern", 0, sqlmock.AnyArg(), int64(1700000000)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().
		WithArgs(second.String(), "Forest", 1, sqlmock.AnyArg(), int64(1700000000)).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := db.SaveScenes([]proptree.Tree{sceneTree(first, "Tavern"), sceneTree(second, "Forest")})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveScenesRollsBackOnError(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)

	id := uuid.New()
	mock.ExpectBegin()
	mock.ExpectExec(`delete from Scenes`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare(`insert into Scenes`).ExpectExec().
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := db.SaveScenes([]proptree.Tree{sceneTree(id, "Tavern")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveScenesRequiresID(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`delete from Scenes`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectPrepare(`insert into Scenes`)
	mock.ExpectRollback()

	err := db.SaveScenes([]proptree.Tree{{"name": "No id"}})
	require.ErrorIs(t, err, ErrMissingID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadScenes(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)

	id := uuid.New()
	data, err := encodeTree(sceneTree(id, "Tavern"))
	require.NoError(t, err)

	mock.ExpectQuery(`select ID, Tree from Scenes order by Position`).
		WillReturnRows(sqlmock.NewRows([]string{"ID", "Tree"}).AddRow(id.String(), data))

	trees, err := db.LoadScenes()
	require.NoError(t, err)
	require.Len(t, trees, 1)

	got, err := trees[0].UUID("id")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	playlists, err := trees[0].Trees("playlists")
	require.NoError(t, err)
	require.Len(t, playlists, 1)
	settings, err := playlists[0].Tree("settings")
	require.NoError(t, err)
	fadeIn, err := settings.Millis("fade_in_ms", 0)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, fadeIn)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadScenesBadTree(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)

	mock.ExpectQuery(`select ID, Tree from Scenes`).
		WillReturnRows(sqlmock.NewRows([]string{"ID", "Tree"}).AddRow("x", "= not toml"))

	_, err := db.LoadScenes()
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteScene(t *testing.T) {
	t.Parallel()
	db, mock := newMockDB(t)

	id := uuid.New()
	mock.ExpectExec(`delete from Scenes where ID = \?`).
		WithArgs(id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, db.DeleteScene(id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInMemoryRoundTrip(t *testing.T) {
	t.Parallel()
	sqlDB, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db := &LibraryDB{}
	db.SetSQLForTesting(context.Background(), sqlDB)
	require.NoError(t, db.MigrateUp())

	a, b := uuid.New(), uuid.New()
	require.NoError(t, db.SaveScenes([]proptree.Tree{sceneTree(a, "Tavern"), sceneTree(b, "Forest")}))

	trees, err := db.LoadScenes()
	require.NoError(t, err)
	require.Len(t, trees, 2)
	name, err := trees[1].String("name", "")
	require.NoError(t, err)
	assert.Equal(t, "Forest", name)

	require.NoError(t, db.DeleteScene(a))
	trees, err = db.LoadScenes()
	require.NoError(t, err)
	require.Len(t, trees, 1)

	// saving replaces the previous set
	require.NoError(t, db.SaveScenes(nil))
	trees, err = db.LoadScenes()
	require.NoError(t, err)
	assert.Empty(t, trees)
}

func TestOpenCreatesFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "library.db")
	db, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	assert.Equal(t, path, db.Path())
	assert.FileExists(t, path)
}
