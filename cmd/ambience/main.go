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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZaparooProject/zaparoo-ambience/internal/telemetry"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/client"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/cli"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/config"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/service"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		telemetry.Flush()
		os.Exit(1)
	}
}

func run() (err error) {
	flags := cli.SetupFlags()
	exit, err := flags.Pre(os.Args[1:], os.Stdout)
	if exit || err != nil {
		return err
	}

	dirs := helpers.DefaultDirs()
	cfg, err := cli.Setup(dirs, config.BaseDefaults, cli.Stderr(*flags.Daemon)...)
	if err != nil {
		return err
	}
	defer telemetry.Close()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("service panicked")
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handled, err := flags.Post(ctx, client.NewLocalAPIClient(cfg), os.Stdout)
	if handled {
		return err
	}

	if !*flags.Daemon {
		_, _ = fmt.Printf("Zaparoo Ambience v%s listening on %s (ctrl-c to stop)\n",
			config.AppVersion, cfg.APIListen())
	}
	err = service.Run(ctx, cfg, dirs, service.Options{})
	if errors.Is(err, service.ErrAlreadyRunning) {
		return fmt.Errorf("%w on port %d", err, cfg.APIPort())
	}
	return err
}
