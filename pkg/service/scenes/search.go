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

package scenes

import (
	"sort"
	"strings"
	"unicode"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/service/playlists"
	"github.com/hbollon/go-edlib"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MinSimilarity is the lowest Jaro-Winkler similarity a fuzzy match needs.
const MinSimilarity = 0.8

// Match is a search result. Exact name matches score 2 and prefix matches
// 1.5, above any fuzzy similarity.
type Match struct {
	Playlist   *playlists.Playlist
	Scene      *Scene
	Similarity float32
}

// foldName lowercases s and strips diacritics, so "Café" finds "cafe".
func foldName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		return folded
	}
	return s
}

// SearchPlaylists finds playlists by name, ignoring case and accents. Exact matches come
// first, then prefix matches, then fuzzy matches by descending similarity.
func (l *Library) SearchPlaylists(query string) []Match {
	query = foldName(query)
	if query == "" {
		return nil
	}

	var matches []Match
	for _, s := range l.Scenes() {
		for _, p := range s.Playlists() {
			name := foldName(p.Name())
			var sim float32
			switch {
			case name == query:
				sim = 2
			case strings.HasPrefix(name, query):
				sim = 1.5
			default:
				sim = edlib.JaroWinklerSimilarity(query, name)
				if sim < MinSimilarity {
					continue
				}
			}
			matches = append(matches, Match{Playlist: p, Scene: s, Similarity: sim})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	log.Debug().Str("query", query).Int("matches", len(matches)).Msg("library: playlist search")
	return matches
}
