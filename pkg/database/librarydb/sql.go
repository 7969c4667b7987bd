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
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/database"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/proptree"
	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// nowFunc is swapped in tests for stable timestamps.
var nowFunc = time.Now

func sqlMigrateUp(db *sql.DB) error {
	if err := database.MigrateUp(db, migrationFiles, "migrations"); err != nil {
		return fmt.Errorf("failed to run library database migrations: %w", err)
	}
	return nil
}

func encodeTree(t proptree.Tree) (string, error) {
	data, err := toml.Marshal(map[string]any(t))
	if err != nil {
		return "", fmt.Errorf("failed to encode scene tree: %w", err)
	}
	return string(data), nil
}

func decodeTree(data string) (proptree.Tree, error) {
	var t proptree.Tree
	if err := toml.Unmarshal([]byte(data), &t); err != nil {
		return nil, fmt.Errorf("failed to decode scene tree: %w", err)
	}
	return t, nil
}

func sqlSaveScenes(ctx context.Context, db *sql.DB, trees []proptree.Tree) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, rbErr)
			}
		}
	}()

	//goland:noinspection SqlWithoutWhere
	if _, err = tx.ExecContext(ctx, `delete from Scenes;`); err != nil {
		return fmt.Errorf("failed to clear scenes: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`insert into Scenes (ID, Name, Position, Tree, UpdatedAt) values (?, ?, ?, ?, ?);`)
	if err != nil {
		return fmt.Errorf("failed to prepare scene insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	updated := nowFunc().Unix()
	for i, t := range trees {
		id, idErr := t.UUID("id")
		if idErr != nil {
			err = fmt.Errorf("scene %d: %w", i, idErr)
			return err
		}
		if id == uuid.Nil {
			err = fmt.Errorf("scene %d: %w", i, ErrMissingID)
			return err
		}
		name, _ := t.String("name", "")
		data, encErr := encodeTree(t)
		if encErr != nil {
			err = encErr
			return err
		}
		if _, err = stmt.ExecContext(ctx, id.String(), name, i, data, updated); err != nil {
			return fmt.Errorf("failed to insert scene %s: %w", id, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit scenes: %w", err)
	}
	return nil
}

func sqlLoadScenes(ctx context.Context, db *sql.DB) ([]proptree.Tree, error) {
	rows, err := db.QueryContext(ctx, `select ID, Tree from Scenes order by Position asc;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var trees []proptree.Tree
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan scene: %w", err)
		}
		t, err := decodeTree(data)
		if err != nil {
			return nil, fmt.Errorf("scene %s: %w", id, err)
		}
		trees = append(trees, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read scenes: %w", err)
	}
	return trees, nil
}

func sqlDeleteScene(ctx context.Context, db *sql.DB, id uuid.UUID) error {
	if _, err := db.ExecContext(ctx, `delete from Scenes where ID = ?;`, id.String()); err != nil {
		return fmt.Errorf("failed to delete scene %s: %w", id, err)
	}
	return nil
}
