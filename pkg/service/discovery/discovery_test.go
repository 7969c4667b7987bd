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

package discovery

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/config"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	shutdowns int
}

func (f *fakeServer) Shutdown() {
	f.shutdowns++
}

type fakeRegistrar struct {
	server    *fakeServer
	instances []string
	ports     []int
	txt       []string
	mu        syncutil.Mutex
}

func (r *fakeRegistrar) register(instance string, port int, txt []string, _ []net.Interface) (shutdowner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances = append(r.instances, instance)
	r.ports = append(r.ports, port)
	r.txt = txt
	return r.server, nil
}

func (r *fakeRegistrar) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.instances)
}

var lan = net.Interface{Name: "eth0", Flags: net.FlagUp | net.FlagMulticast}

func newTestService(t *testing.T, cfgToml string) (*Service, *fakeRegistrar, *clockwork.FakeClock) {
	t.Helper()
	dir := t.TempDir()
	if cfgToml != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, config.CfgFile), []byte(cfgToml), 0o600))
	}
	cfg, err := config.NewConfig(dir, config.BaseDefaults)
	require.NoError(t, err)

	clock := clockwork.NewFakeClock()
	reg := &fakeRegistrar{server: &fakeServer{}}
	svc := New(cfg, clock)
	svc.register = reg.register
	svc.interfaces = func() ([]net.Interface, error) { return []net.Interface{lan}, nil }
	svc.hostname = func() (string, error) { return "tavern-pi", nil }
	return svc, reg, clock
}

func TestFilterInterfaces(t *testing.T) {
	t.Parallel()
	ifaces := []net.Interface{
		lan,
		{Name: "lo", Flags: net.FlagUp | net.FlagLoopback | net.FlagMulticast},
		{Name: "eth1", Flags: net.FlagMulticast},
		{Name: "ptp0", Flags: net.FlagUp},
		{Name: "docker0", Flags: net.FlagUp | net.FlagMulticast},
		{Name: "WG0", Flags: net.FlagUp | net.FlagMulticast},
		{Name: "wlan0", Flags: net.FlagUp | net.FlagMulticast},
	}
	got := filterInterfaces(ifaces)
	require.Len(t, got, 2)
	assert.Equal(t, "eth0", got[0].Name)
	assert.Equal(t, "wlan0", got[1].Name)
}

func TestStartRegisters(t *testing.T) {
	t.Parallel()
	svc, reg, _ := newTestService(t, "")

	require.NoError(t, svc.Start(7498))
	assert.Equal(t, "tavern-pi", svc.InstanceName())
	assert.Equal(t, []int{7498}, reg.ports)
	assert.Contains(t, reg.txt, "path="+config.APIPath)
	assert.Contains(t, reg.txt, "version="+config.AppVersion)

	svc.Stop()
	svc.Stop()
	assert.Equal(t, 1, reg.server.shutdowns)
}

func TestStartDisabled(t *testing.T) {
	t.Parallel()
	svc, reg, _ := newTestService(t, "config_schema = 1\n\n[service.discovery]\nenabled = false\n")
	require.NoError(t, svc.Start(7498))
	assert.Equal(t, 0, reg.calls())
	svc.Stop()
}

func TestInstanceNamePriority(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t, "config_schema = 1\n\n[service.discovery]\ninstance_name = 'Game Room'\n")
	assert.Equal(t, "Game Room", svc.resolveInstanceName())

	svc, _, _ = newTestService(t, "")
	svc.hostname = func() (string, error) { return "", errors.New("no hostname") }
	name := svc.resolveInstanceName()
	assert.True(t, strings.HasPrefix(name, fallbackName+"-"), name)
	assert.Len(t, name, len(fallbackName)+9)
}

func TestRetryUntilNetworkAppears(t *testing.T) {
	t.Parallel()
	svc, reg, clock := newTestService(t, "")

	var up syncutil.Mutex
	ready := false
	svc.interfaces = func() ([]net.Interface, error) {
		up.Lock()
		defer up.Unlock()
		if !ready {
			return nil, nil
		}
		return []net.Interface{lan}, nil
	}

	require.NoError(t, svc.Start(8000))
	assert.Equal(t, 0, reg.calls())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 2))

	up.Lock()
	ready = true
	up.Unlock()
	clock.Advance(retryInterval)

	require.Eventually(t, func() bool { return reg.calls() == 1 }, 2*time.Second, 5*time.Millisecond)
	svc.Stop()
}

func TestStopDuringRetry(t *testing.T) {
	t.Parallel()
	svc, reg, clock := newTestService(t, "")
	svc.interfaces = func() ([]net.Interface, error) { return nil, errors.New("no network") }

	require.NoError(t, svc.Start(8000))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 2))

	svc.Stop()
	clock.Advance(maxRetryDuration)
	assert.Equal(t, 0, reg.calls())
}
