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

// Package proptree holds the generic nested key-value trees entities are
// persisted as. Trees are plain maps so they encode directly with TOML or
// JSON, and the getters accept the value types those decoders produce.
package proptree

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// ErrMissingKey is returned when a required key is absent.
var ErrMissingKey = errors.New("missing key")

// ErrWrongType is returned when a key holds a value of an unexpected type.
var ErrWrongType = errors.New("wrong value type")

type Tree map[string]any

func (t Tree) Has(key string) bool {
	_, ok := t[key]
	return ok
}

// String returns the string at key, or def when it is absent.
func (t Tree) String(key, def string) (string, error) {
	v, ok := t[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return def, fmt.Errorf("%w: %s is %T, not a string", ErrWrongType, key, v)
	}
	return s, nil
}

// Bool returns the bool at key, or def when it is absent.
func (t Tree) Bool(key string, def bool) (bool, error) {
	v, ok := t[key]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return def, fmt.Errorf("%w: %s is %T, not a bool", ErrWrongType, key, v)
	}
	return b, nil
}

// Int returns the integer at key, or def when it is absent. Floats without a
// fractional part are accepted since JSON decodes every number as float64.
func (t Tree) Int(key string, def int64) (int64, error) {
	v, ok := t[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint32:
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) {
			return def, fmt.Errorf("%w: %s is fractional", ErrWrongType, key)
		}
		return int64(n), nil
	default:
		return def, fmt.Errorf("%w: %s is %T, not an integer", ErrWrongType, key, v)
	}
}

// Float returns the number at key, or def when it is absent.
func (t Tree) Float(key string, def float64) (float64, error) {
	v, ok := t[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return def, fmt.Errorf("%w: %s is %T, not a number", ErrWrongType, key, v)
	}
}

// Millis returns the whole milliseconds at key as a duration.
func (t Tree) Millis(key string, def time.Duration) (time.Duration, error) {
	ms, err := t.Int(key, def.Milliseconds())
	if err != nil {
		return def, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// SetMillis stores d as whole milliseconds.
func (t Tree) SetMillis(key string, d time.Duration) {
	t[key] = d.Milliseconds()
}

// UUID returns the id at key, or uuid.Nil when it is absent or empty.
func (t Tree) UUID(key string) (uuid.UUID, error) {
	s, err := t.String(key, "")
	if err != nil || s == "" {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s: %w", ErrWrongType, key, err)
	}
	return id, nil
}

// SetUUID stores id as a string, omitting uuid.Nil.
func (t Tree) SetUUID(key string, id uuid.UUID) {
	if id == uuid.Nil {
		delete(t, key)
		return
	}
	t[key] = id.String()
}

// Tree returns the subtree at key. A missing key returns ErrMissingKey.
func (t Tree) Tree(key string) (Tree, error) {
	v, ok := t[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingKey, key)
	}
	sub, ok := asTree(v)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T, not a tree", ErrWrongType, key, v)
	}
	return sub, nil
}

// Trees returns the list of subtrees at key, or nil when it is absent.
func (t Tree) Trees(key string) ([]Tree, error) {
	v, ok := t[key]
	if !ok {
		return nil, nil
	}
	switch l := v.(type) {
	case []Tree:
		return l, nil
	case []map[string]any:
		trees := make([]Tree, 0, len(l))
		for _, m := range l {
			trees = append(trees, m)
		}
		return trees, nil
	case []any:
		trees := make([]Tree, 0, len(l))
		for i, item := range l {
			sub, ok := asTree(item)
			if !ok {
				return nil, fmt.Errorf("%w: %s[%d] is %T, not a tree", ErrWrongType, key, i, item)
			}
			trees = append(trees, sub)
		}
		return trees, nil
	default:
		return nil, fmt.Errorf("%w: %s is %T, not a list of trees", ErrWrongType, key, v)
	}
}

func asTree(v any) (Tree, bool) {
	switch m := v.(type) {
	case Tree:
		return m, true
	case map[string]any:
		return m, true
	default:
		return nil, false
	}
}
