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

package service

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/api"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/models/requests"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/notifications"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/audio"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/audio/virtual"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/config"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/database/librarydb"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/library"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/service/broker"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/service/discovery"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/service/poller"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/service/publishers"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/service/scenes"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

const notificationBuffer = 100

// Options override parts of the service for tests. The zero value runs
// the real thing.
type Options struct {
	Clock clockwork.Clock
	Files afero.Fs
	// Ready is called with the API address once it is listening.
	Ready func(net.Addr)
}

type closer interface {
	Close() error
}

// openEngine returns the configured engine. When the output device can't
// be opened the service keeps running on the virtual engine so the library
// can still be edited.
func openEngine(cfg *config.Instance, files afero.Fs, clock clockwork.Clock) audio.Engine {
	if cfg.AudioEngine() == config.EngineVirtual {
		log.Info().Msg("using virtual audio engine")
		return virtual.New(clock)
	}
	engine := audio.NewMixerEngine(files)
	if err := engine.Open(); err != nil {
		log.Error().Err(err).Msg("failed to open audio device, falling back to virtual engine")
		return virtual.New(clock)
	}
	return engine
}

func openLibraryDB(dirs helpers.Dirs, lib *scenes.Library) *librarydb.LibraryDB {
	// the library is saved during shutdown, after the service context is
	// cancelled
	db, err := librarydb.Open(context.Background(), dirs.LibraryDB())
	if err != nil {
		log.Error().Err(err).Msg("error opening library database, changes won't be saved")
		return nil
	}
	trees, err := db.LoadScenes()
	if err != nil {
		log.Error().Err(err).Msg("error loading scenes")
		return db
	}
	if err := lib.Load(trees); err != nil {
		log.Error().Err(err).Msg("error restoring scenes, starting with an empty library")
		return db
	}
	log.Info().Int("scenes", len(trees)).Msg("library loaded")
	return db
}

func Start(
	cfg *config.Instance,
	dirs helpers.Dirs,
	opts Options,
) (stop func() error, done <-chan struct{}, err error) {
	log.Info().Msgf("version: %s", config.AppVersion)

	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	files := opts.Files
	if files == nil {
		files = afero.NewOsFs()
	}

	ctx, cancel := context.WithCancel(context.Background())

	ns := make(chan models.Notification, notificationBuffer)
	notifBroker := broker.New()
	brokerDone := make(chan struct{})
	go func() {
		defer close(brokerDone)
		notifBroker.Run(ctx, ns)
	}()

	engine := openEngine(cfg, files, clock)

	log.Info().Dur("interval", cfg.TickInterval()).Msg("starting poller")
	ticker := poller.New(clock, cfg.TickInterval())
	ticker.Start(ctx)

	var lib *scenes.Library
	observer := notifications.NewPlaylistObserver(ns, func(id uuid.UUID) string {
		if p, _ := lib.FindPlaylist(id); p != nil {
			return p.Status().String()
		}
		return ""
	})
	lib = scenes.NewLibrary(engine, ticker,
		scenes.WithObserver(observer),
		scenes.WithDefaultSettings(cfg.PlaybackDefaults()),
	)
	lib.SetMasterVolume(cfg.MasterVolume())

	log.Info().Msg("opening library database")
	db := openLibraryDB(dirs, lib)
	var sceneDB requests.SceneDB
	if db != nil {
		sceneDB = db
	}

	server := api.NewServer(api.Deps{
		Config:        cfg,
		Library:       lib,
		DB:            sceneDB,
		Documents:     library.NewStore(files, dirs.Library()),
		Files:         files,
		Notifications: ns,
		Broker:        notifBroker,
		Clock:         clock,
	}, api.NewMethodMap())

	discoveryService := discovery.New(cfg, clock)

	log.Info().Msg("starting API service")
	var workers errgroup.Group
	workers.Go(func() error {
		err := server.Start(ctx, func(addr net.Addr) {
			if tcp, ok := addr.(*net.TCPAddr); ok {
				if err := discoveryService.Start(tcp.Port); err != nil {
					log.Error().Err(err).Msg("mDNS discovery failed to start (continuing without discovery)")
				}
			}
			if opts.Ready != nil {
				opts.Ready(addr)
			}
		})
		if err != nil {
			cancel()
			return err
		}
		return nil
	})

	log.Info().Msg("starting publishers")
	activePublishers := publishers.StartAll(cfg.MQTTPublishers(), notifBroker)

	workers.Go(func() error {
		err := cfg.Watch(ctx, func(c *config.Instance) {
			config.ApplyLogLevel(c.DebugLogging())
			lib.SetMasterVolume(c.MasterVolume())
			notifications.EngineChanged(ns, models.EngineResponse{
				Volume: lib.MasterVolume(),
				Paused: lib.AllPaused(),
			})
			log.Info().Msg("config reloaded")
		})
		if err != nil {
			log.Error().Err(err).Msg("config watcher stopped")
		}
		return nil
	})

	doneCh := make(chan struct{})
	go func() {
		<-ctx.Done()
		log.Info().Msg("service context cancelled, running cleanup")

		if err := workers.Wait(); err != nil {
			log.Error().Err(err).Msg("api server stopped unexpectedly")
		}
		discoveryService.Stop()
		for _, p := range activePublishers {
			p.Stop()
		}

		ticker.Stop()
		if db != nil {
			if err := db.SaveScenes(lib.ToTrees()); err != nil {
				log.Error().Err(err).Msg("error saving library")
			}
			if err := db.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing library database")
			}
		}
		engine.StopAll()
		if c, ok := engine.(closer); ok {
			if err := c.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing audio engine")
			}
		}
		<-brokerDone

		log.Info().Msg("service cleanup completed")
		close(doneCh)
	}()

	stop = func() error {
		cancel()
		<-doneCh
		return nil
	}
	return stop, doneCh, nil
}

// ErrAlreadyRunning is returned by Run when another service answers on
// the configured API port.
var ErrAlreadyRunning = errors.New("service already running")

// Run starts the service and blocks until ctx is done or the service
// stops by itself.
func Run(ctx context.Context, cfg *config.Instance, dirs helpers.Dirs, opts Options) error {
	if helpers.IsServiceRunning(cfg) {
		return ErrAlreadyRunning
	}
	stop, done, err := Start(cfg, dirs, opts)
	if err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	select {
	case <-ctx.Done():
		log.Info().Msg("stop requested")
	case <-done:
	}
	return stop()
}
