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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/service/playlists"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

func boolPtr(b bool) *bool { return &b }

func newTestConfig(t *testing.T, contents string) *Instance {
	t.Helper()
	dir := t.TempDir()
	if contents != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, CfgFile), []byte(contents), 0o600))
	}
	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)
	return cfg
}

func TestNewConfigWritesDefaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, CfgFile))
	assert.NotEmpty(t, cfg.DeviceID())
	assert.Equal(t, EngineMalgo, cfg.AudioEngine())
	assert.InDelta(t, 1.0, cfg.MasterVolume(), 0)
	assert.Equal(t, DefaultTickInterval, cfg.TickInterval())
	assert.Equal(t, playlists.DefaultPlaybackSettings(), cfg.PlaybackDefaults())
	assert.Equal(t, ":7498", cfg.APIListen())
	assert.True(t, cfg.DiscoveryEnabled())

	// the generated device id is persisted
	again, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)
	assert.Equal(t, cfg.DeviceID(), again.DeviceID())
}

func TestLoadValues(t *testing.T) {
	t.Parallel()
	cfg := newTestConfig(t, `
config_schema = 1
debug_logging = true
error_reporting = true
error_reporting_dsn = "https://key@example.com/1"

[audio]
engine = "virtual"
master_volume = 1.7

[playback]
tick_interval_ms = 1
fade_in_ms = 2000
overlap_ms = 500
volume = 0.8
randomize_volume_from = 0.9
randomize_volume_to = 0.2

[service]
api_port = 8000
allowed_ips = ["192.168.1.0/24"]

[service.discovery]
enabled = false
instance_name = "Game table"

[[service.publishers.mqtt]]
broker = "tcp://localhost:1883"
topic = "ambience"
filter = ["playlists.changed"]
`)

	assert.True(t, cfg.DebugLogging())
	enabled, dsn := cfg.ErrorReporting()
	assert.True(t, enabled)
	assert.Equal(t, "https://key@example.com/1", dsn)
	assert.Equal(t, EngineVirtual, cfg.AudioEngine())
	assert.InDelta(t, 1.0, cfg.MasterVolume(), 0)
	assert.Equal(t, MinTickInterval, cfg.TickInterval())

	pb := cfg.PlaybackDefaults()
	assert.Equal(t, 2*time.Second, pb.FadeIn)
	assert.Equal(t, time.Duration(0), pb.FadeOut)
	assert.Equal(t, 500*time.Millisecond, pb.Overlap)
	assert.InDelta(t, 0.8, pb.Volume, 0)
	assert.InDelta(t, 0.9, pb.RandomizeVolumeFrom, 0)
	assert.InDelta(t, 0.9, pb.RandomizeVolumeTo, 0)

	assert.Equal(t, 8000, cfg.APIPort())
	assert.Equal(t, ":8000", cfg.APIListen())
	assert.Equal(t, []string{"192.168.1.0/24"}, cfg.AllowedIPs())
	assert.False(t, cfg.DiscoveryEnabled())
	assert.Equal(t, "Game table", cfg.DiscoveryInstanceName())

	pubs := cfg.MQTTPublishers()
	require.Len(t, pubs, 1)
	assert.True(t, pubs[0].IsEnabled())
	assert.Equal(t, []string{"playlists.changed"}, pubs[0].Filter)
}

func TestSchemaMismatchKeepsValues(t *testing.T) {
	t.Parallel()
	cfg := newTestConfig(t, "config_schema = 1\ndebug_logging = true\n")
	require.True(t, cfg.DebugLogging())

	require.NoError(t, os.WriteFile(cfg.Path(), []byte("config_schema = 99\n"), 0o600))
	require.ErrorIs(t, cfg.Load(), ErrSchemaMismatch)
	assert.True(t, cfg.DebugLogging())
}

func TestInvalidTOML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, CfgFile), []byte("[audio"), 0o600))
	_, err := NewConfig(dir, BaseDefaults)
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()
	cfg := newTestConfig(t, "")

	cfg.SetMasterVolume(0.25)
	cfg.SetAPIPort(9000)
	cfg.SetPlaybackDefaults(playlists.PlaybackSettings{
		FadeIn:              time.Second,
		FadeOut:             1500 * time.Millisecond,
		Volume:              0.6,
		RandomizeVolumeFrom: 0.5,
		RandomizeVolumeTo:   1,
	})
	require.NoError(t, cfg.Save())

	loaded, err := NewConfig(filepath.Dir(cfg.Path()), BaseDefaults)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, loaded.MasterVolume(), 0)
	assert.Equal(t, 9000, loaded.APIPort())
	pb := loaded.PlaybackDefaults()
	assert.Equal(t, time.Second, pb.FadeIn)
	assert.Equal(t, 1500*time.Millisecond, pb.FadeOut)
	assert.InDelta(t, 0.6, pb.Volume, 0)
	assert.InDelta(t, 0.5, pb.RandomizeVolumeFrom, 0)
}

func TestErrorReportingNeedsDSN(t *testing.T) {
	t.Parallel()
	inst := &Instance{vals: Values{ErrorReporting: true}}
	enabled, _ := inst.ErrorReporting()
	assert.False(t, enabled)
}

func TestDiscoveryEnabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		enabled *bool
		name    string
		want    bool
	}{
		{name: "nil defaults to enabled", enabled: nil, want: true},
		{name: "true", enabled: boolPtr(true), want: true},
		{name: "false", enabled: boolPtr(false), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			inst := &Instance{vals: Values{Service: Service{Discovery: Discovery{Enabled: tt.enabled}}}}
			assert.Equal(t, tt.want, inst.DiscoveryEnabled())
		})
	}
}

func TestTickInterval(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ms   *int
		name string
		want time.Duration
	}{
		{name: "unset", ms: nil, want: DefaultTickInterval},
		{name: "custom", ms: intPtr(50), want: 50 * time.Millisecond},
		{name: "floored", ms: intPtr(0), want: MinTickInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			inst := &Instance{vals: Values{Playback: Playback{TickIntervalMs: tt.ms}}}
			assert.Equal(t, tt.want, inst.TickInterval())
		})
	}
}

func TestMasterVolumeClamped(t *testing.T) {
	t.Parallel()
	inst := &Instance{vals: Values{Audio: Audio{MasterVolume: floatPtr(-2)}}}
	assert.InDelta(t, 0.0, inst.MasterVolume(), 0)
	inst.SetMasterVolume(3)
	assert.InDelta(t, 1.0, inst.MasterVolume(), 0)
}

func TestWatchReloads(t *testing.T) {
	t.Parallel()
	cfg := newTestConfig(t, "config_schema = 1\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan bool, 4)
	done := make(chan error, 1)
	go func() {
		done <- cfg.Watch(ctx, func(c *Instance) { reloaded <- c.DebugLogging() })
	}()

	// keep writing until the watcher has been registered and picks one up
	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(2 * reloadDebounce)
	defer ticker.Stop()
	for {
		select {
		case debug := <-reloaded:
			assert.True(t, debug)
			cancel()
			require.NoError(t, <-done)
			return
		case <-ticker.C:
			require.NoError(t, os.WriteFile(cfg.Path(),
				[]byte("config_schema = 1\ndebug_logging = true\n"), 0o600))
		case <-deadline:
			t.Fatal("config was not reloaded")
		}
	}
}
