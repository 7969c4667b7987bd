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

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/ZaparooProject/zaparoo-ambience/internal/telemetry"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/client"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/config"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/helpers"
	"github.com/rs/zerolog/log"
)

var (
	ErrMissingValue     = errors.New("flag requires a value")
	ErrPlaylistNotFound = errors.New("no playlist matches")
)

type Flags struct {
	set     *flag.FlagSet
	API     *string
	Play    *string
	Stop    *bool
	List    *bool
	Version *bool
	Daemon  *bool
}

// SetupFlags defines the flags on the default command line.
func SetupFlags() *Flags {
	return setupFlags(flag.CommandLine)
}

func setupFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		set: fs,
		API: fs.String(
			"api",
			"",
			"send method and params (method:json) to the API and print the response",
		),
		Play: fs.String(
			"play",
			"",
			"start the playlist best matching this name",
		),
		Stop: fs.Bool(
			"stop",
			false,
			"fade out every playing playlist",
		),
		List: fs.Bool(
			"list",
			false,
			"list playlists and their status",
		),
		Version: fs.Bool(
			"version",
			false,
			"print version and exit",
		),
		Daemon: fs.Bool(
			"daemon",
			false,
			"run the service in the foreground and log to stderr",
		),
	}
}

func (f *Flags) passed(name string) bool {
	found := false
	f.set.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})
	return found
}

// Pre parses the flags and handles the ones that need no setup.
func (f *Flags) Pre(args []string, out io.Writer) (exit bool, err error) {
	if err := f.set.Parse(args); err != nil {
		return true, fmt.Errorf("failed to parse flags: %w", err)
	}
	if *f.Version {
		_, _ = fmt.Fprintf(out, "Zaparoo Ambience v%s\n", config.AppVersion)
		return true, nil
	}
	return false, nil
}

// Post handles the flags which talk to a running service. It reports
// whether one was handled, in which case the caller should exit.
func (f *Flags) Post(ctx context.Context, api client.APIClient, out io.Writer) (bool, error) {
	switch {
	case f.passed("api"):
		if *f.API == "" {
			return true, fmt.Errorf("api: %w", ErrMissingValue)
		}
		method, params, _ := strings.Cut(*f.API, ":")
		resp, err := api.Call(ctx, method, params)
		if err != nil {
			return true, fmt.Errorf("error calling API: %w", err)
		}
		_, _ = fmt.Fprintln(out, resp)
		return true, nil
	case f.passed("play"):
		if *f.Play == "" {
			return true, fmt.Errorf("play: %w", ErrMissingValue)
		}
		return true, play(ctx, api, out, *f.Play)
	case *f.Stop:
		if _, err := api.Call(ctx, models.MethodStop, ""); err != nil {
			return true, fmt.Errorf("error stopping playback: %w", err)
		}
		return true, nil
	case *f.List:
		return true, list(ctx, api, out)
	}
	return false, nil
}

func play(ctx context.Context, api client.APIClient, out io.Writer, name string) error {
	one := 1
	params, err := json.Marshal(models.SearchParams{Query: name, MaxResults: &one})
	if err != nil {
		return fmt.Errorf("error encoding params: %w", err)
	}
	resp, err := api.Call(ctx, models.MethodPlaylistsSearch, string(params))
	if err != nil {
		return fmt.Errorf("error searching playlists: %w", err)
	}
	var search models.SearchResponse
	if err := json.Unmarshal([]byte(resp), &search); err != nil {
		return fmt.Errorf("error decoding search results: %w", err)
	}
	if len(search.Results) == 0 {
		return fmt.Errorf("%w %q", ErrPlaylistNotFound, name)
	}

	match := search.Results[0]
	params, err = json.Marshal(models.PlayParams{ID: match.ID})
	if err != nil {
		return fmt.Errorf("error encoding params: %w", err)
	}
	if _, err := api.Call(ctx, models.MethodPlaylistsPlay, string(params)); err != nil {
		return fmt.Errorf("error playing %s: %w", match.Name, err)
	}
	_, _ = fmt.Fprintf(out, "Playing %s (%s)\n", match.Name, match.SceneName)
	return nil
}

func list(ctx context.Context, api client.APIClient, out io.Writer) error {
	resp, err := api.Call(ctx, models.MethodScenes, "")
	if err != nil {
		return fmt.Errorf("error listing scenes: %w", err)
	}
	var scenes models.ScenesResponse
	if err := json.Unmarshal([]byte(resp), &scenes); err != nil {
		return fmt.Errorf("error decoding scenes: %w", err)
	}
	names := make(map[string]string, len(scenes.Scenes))
	for _, s := range scenes.Scenes {
		names[s.ID.String()] = s.Name
	}

	resp, err = api.Call(ctx, models.MethodPlaylists, "")
	if err != nil {
		return fmt.Errorf("error listing playlists: %w", err)
	}
	var pls models.PlaylistsResponse
	if err := json.Unmarshal([]byte(resp), &pls); err != nil {
		return fmt.Errorf("error decoding playlists: %w", err)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SCENE\tPLAYLIST\tSTATUS\tENTRIES")
	for _, p := range pls.Playlists {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", names[p.SceneID.String()], p.Name, p.Status, len(p.Entries))
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("error writing list: %w", err)
	}
	return nil
}

// Setup creates the directories, starts logging and loads the config.
// Error reporting is started when the config opts in.
//
//nolint:gocritic // config struct copied for immutability
func Setup(dirs helpers.Dirs, defaults config.Values, writers ...io.Writer) (*config.Instance, error) {
	if err := dirs.Ensure(); err != nil {
		return nil, fmt.Errorf("error creating directories: %w", err)
	}
	if err := helpers.InitLogging(dirs.Log, writers...); err != nil {
		return nil, fmt.Errorf("error initializing logging: %w", err)
	}

	cfg, err := config.NewConfig(dirs.Config, defaults)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	config.ApplyLogLevel(cfg.DebugLogging())

	if err := telemetry.Init(cfg); err != nil {
		log.Warn().Err(err).Msg("failed to initialize error reporting")
	}
	return cfg, nil
}

// Stderr is where daemon mode mirrors the log.
func Stderr(daemon bool) []io.Writer {
	if daemon {
		return []io.Writer{os.Stderr}
	}
	return nil
}
