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

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/models"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/api/models/requests"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/audio/virtual"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/config"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/library"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/service/broker"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/service/poller"
	"github.com/ZaparooProject/zaparoo-ambience/pkg/service/scenes"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *MethodMap, *broker.Broker) {
	t.Helper()

	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)
	cfg.SetAPIPort(0)

	clock := clockwork.NewFakeClock()
	lib := scenes.NewLibrary(
		virtual.New(clock, virtual.WithDefaultLength(time.Second)),
		poller.New(clock, 100*time.Millisecond),
	)
	files := afero.NewMemMapFs()
	b := broker.New()

	methodMap := NewMethodMap()
	require.NoError(t, methodMap.AddMethod("test.echo", func(env requests.RequestEnv) (any, error) {
		return map[string]any{"echo": string(env.Params), "local": env.IsLocal}, nil
	}))
	require.NoError(t, methodMap.AddMethod("test.error", func(_ requests.RequestEnv) (any, error) {
		return nil, errors.New("test error")
	}))

	s := NewServer(Deps{
		Config:    cfg,
		Library:   lib,
		Documents: library.NewStore(files, "/library"),
		Files:     files,
		Broker:    b,
		Clock:     clock,
	}, methodMap)
	return s, methodMap, b
}

func post(t *testing.T, s *Server, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, config.APIPath, strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func TestMethodMap(t *testing.T) {
	t.Parallel()
	m := NewMethodMap()
	assert.Equal(t, len(defaultMethods), m.Len())

	_, ok := m.GetMethod(models.MethodEntriesAddDir)
	assert.True(t, ok)
	_, ok = m.GetMethod("entries.adddir")
	assert.False(t, ok)

	require.ErrorIs(t, m.AddMethod(models.MethodVersion, nil), ErrMethodExists)
	require.ErrorIs(t, m.AddMethod("", nil), ErrEmptyMethodName)
}

func TestPostValidRequest(t *testing.T) {
	t.Parallel()
	s, _, _ := newTestServer(t)

	rr := post(t, s, "application/json", `{"jsonrpc":"2.0","id":7,"method":"test.echo","params":{"a":1}}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Result struct {
			Echo  string `json:"echo"`
			Local bool   `json:"local"`
		} `json:"result"`
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "2.0", resp.JSONRPC)
	assert.JSONEq(t, "7", string(resp.ID))
	assert.JSONEq(t, `{"a":1}`, resp.Result.Echo)
	assert.False(t, resp.Result.Local)
}

func TestPostErrors(t *testing.T) {
	t.Parallel()
	s, _, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "parse error", body: `{invalid json`, code: models.ErrorCodeParse},
		{name: "wrong version", body: `{"jsonrpc":"1.0","id":1,"method":"test.echo"}`, code: models.ErrorCodeInvalidRequest},
		{name: "object id", body: `{"jsonrpc":"2.0","id":{},"method":"test.echo"}`, code: models.ErrorCodeInvalidRequest},
		{name: "no method", body: `{"jsonrpc":"2.0","id":1}`, code: models.ErrorCodeInvalidRequest},
		{name: "unknown method", body: `{"jsonrpc":"2.0","id":1,"method":"nope"}`, code: models.ErrorCodeMethodNotFound},
		{name: "handler error", body: `{"jsonrpc":"2.0","id":1,"method":"test.error"}`, code: models.ErrorCodeServer},
		{
			name: "invalid params",
			body: `{"jsonrpc":"2.0","id":1,"method":"scenes.new","params":{"name":""}}`,
			code: models.ErrorCodeInvalidParams,
		},
		{
			name: "missing params",
			body: `{"jsonrpc":"2.0","id":1,"method":"engine.volume"}`,
			code: models.ErrorCodeInvalidParams,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rr := post(t, s, "application/json", tt.body)
			require.Equal(t, http.StatusOK, rr.Code)

			var resp models.ResponseErrorObject
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotContains(t, rr.Body.String(), `"result"`)
		})
	}
}

func TestPostContentType(t *testing.T) {
	t.Parallel()
	s, _, _ := newTestServer(t)

	rr := post(t, s, "text/plain", `{}`)
	assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)

	rr = post(t, s, "application/json; charset=utf-8", `{"jsonrpc":"2.0","id":"a","method":"version"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestPostNotificationGetsNoReply(t *testing.T) {
	t.Parallel()
	s, _, _ := newTestServer(t)

	rr := post(t, s, "application/json", `{"jsonrpc":"2.0","method":"scenes.new","params":{"name":"Quiet"}}`)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
	require.Len(t, s.deps.Library.Scenes(), 1)
	assert.Equal(t, "Quiet", s.deps.Library.Scenes()[0].Name())
}

func TestPostRequestTooLarge(t *testing.T) {
	t.Parallel()
	s, _, _ := newTestServer(t)
	body := `{"jsonrpc":"2.0","id":1,"method":"test.echo","params":"` +
		strings.Repeat("x", maxRequestSize) + `"}`
	rr := post(t, s, "application/json", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestIPFilterRejects(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	contents := fmt.Sprintf("config_schema = %d\n\n[service]\nallowed_ips = ['10.0.0.0/8']\n",
		config.SchemaVersion)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.CfgFile), []byte(contents), 0o600))
	cfg, err := config.NewConfig(dir, config.BaseDefaults)
	require.NoError(t, err)
	require.Equal(t, []string{"10.0.0.0/8"}, cfg.AllowedIPs())

	clock := clockwork.NewFakeClock()
	lib := scenes.NewLibrary(virtual.New(clock), poller.New(clock, time.Second))
	filtered := NewServer(Deps{Config: cfg, Library: lib, Clock: clock}, nil)

	rr := post(t, filtered, "application/json", `{"jsonrpc":"2.0","id":1,"method":"version"}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCheckOrigin(t *testing.T) {
	t.Parallel()
	s, _, _ := newTestServer(t)

	for origin, want := range map[string]bool{
		"":                        true,
		"http://localhost:5173":   true,
		"http://127.0.0.1:8080":   true,
		"https://evil.example":    false,
		"::not a url":             false,
		"http://tablet.lan:7498":  false,
		"capacitor://localhost":   true,
		"http://[::1]:3000":       true,
		"https://other.localhost": false,
	} {
		req := httptest.NewRequest(http.MethodGet, config.APIPath, http.NoBody)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		assert.Equal(t, want, s.checkOrigin(req), origin)
	}
}

func TestWebSocketSession(t *testing.T) {
	t.Parallel()
	s, _, b := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	addrCh := make(chan net.Addr, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start(ctx, func(addr net.Addr) { addrCh <- addr })
	}()

	var addr net.Addr
	select {
	case addr = <-addrCh:
	case err := <-errCh:
		t.Fatalf("server failed to start: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}
	port := addr.(*net.TCPAddr).Port

	url := fmt.Sprintf("ws://127.0.0.1:%d%s", port, config.APIPath)
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	defer func() { _ = conn.Close() }()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "pong", string(msg))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage,
		[]byte(`{"jsonrpc":"2.0","id":"v","method":"test.echo"}`)))
	_, msg, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), `"local":true`)
	assert.Contains(t, string(msg), `"id":"v"`)

	// give the broadcaster its subscription before publishing
	require.Eventually(t, func() bool { return b.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	b.Publish(models.Notification{Method: models.NotificationScenesChanged})
	_, msg, err = conn.ReadMessage()
	require.NoError(t, err)
	var notif models.NotificationObject
	require.NoError(t, json.Unmarshal(msg, &notif))
	assert.Equal(t, models.NotificationScenesChanged, notif.Method)
	assert.Equal(t, "2.0", notif.JSONRPC)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Equal(t, 0, b.Len())
}
