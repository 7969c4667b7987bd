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

package client

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-ambience/pkg/testing/helpers"
	"github.com/olahol/melody"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reply(t *testing.T, session *melody.Session, msg []byte, body map[string]any) {
	t.Helper()
	var request map[string]any
	if err := json.Unmarshal(msg, &request); err != nil {
		return
	}
	body["jsonrpc"] = "2.0"
	if _, ok := body["id"]; !ok {
		body["id"] = request["id"]
	}
	data, err := json.Marshal(body)
	if err != nil {
		return
	}
	_ = session.Write(data)
}

func unusedPort(t *testing.T) int {
	t.Helper()
	var lc net.ListenConfig
	listener, err := lc.Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())
	return port
}

func TestLocalClientValidRequest(t *testing.T) {
	t.Parallel()
	server := helpers.NewWebSocketTestServer(t, func(session *melody.Session, msg []byte) {
		reply(t, session, msg, map[string]any{"result": map[string]any{"status": "ok"}})
	})
	cfg := helpers.NewTestConfigWithPort(t, server.Port(t))

	result, err := LocalClient(context.Background(), cfg, "scenes", `{"key":"value"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, result)

	received := server.Received()
	require.Len(t, received, 1)
	var request map[string]any
	require.NoError(t, json.Unmarshal(received[0], &request))
	assert.Equal(t, "scenes", request["method"])
	assert.Equal(t, map[string]any{"key": "value"}, request["params"])
	assert.IsType(t, "", request["id"])
}

func TestLocalClientEmptyParams(t *testing.T) {
	t.Parallel()
	server := helpers.NewWebSocketTestServer(t, func(session *melody.Session, msg []byte) {
		reply(t, session, msg, map[string]any{"result": nil})
	})
	cfg := helpers.NewTestConfigWithPort(t, server.Port(t))

	result, err := LocalClient(context.Background(), cfg, "stop", "")
	require.NoError(t, err)
	assert.Equal(t, "null", result)

	var request map[string]any
	require.NoError(t, json.Unmarshal(server.Received()[0], &request))
	_, hasParams := request["params"]
	assert.False(t, hasParams)
}

func TestLocalClientInvalidParams(t *testing.T) {
	t.Parallel()
	cfg := helpers.NewTestConfigWithPort(t, unusedPort(t))
	_, err := LocalClient(context.Background(), cfg, "scenes", "{not json")
	require.ErrorIs(t, err, ErrInvalidParams)
}

func TestLocalClientErrorResponse(t *testing.T) {
	t.Parallel()
	server := helpers.NewWebSocketTestServer(t, func(session *melody.Session, msg []byte) {
		reply(t, session, msg, map[string]any{
			"error": map[string]any{"code": -32602, "message": "name is required"},
		})
	})
	cfg := helpers.NewTestConfigWithPort(t, server.Port(t))

	_, err := LocalClient(context.Background(), cfg, "scenes.new", `{}`)
	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32602, rpcErr.Code)
	assert.Equal(t, "name is required", rpcErr.Message)
}

func TestLocalClientIgnoresOtherMessages(t *testing.T) {
	t.Parallel()
	server := helpers.NewWebSocketTestServer(t, func(session *melody.Session, msg []byte) {
		reply(t, session, msg, map[string]any{"id": "someone-else", "result": "wrong"})
		_ = session.Write([]byte(`{"jsonrpc":"2.0","method":"scenes.changed"}`))
		_ = session.Write([]byte(`not json`))
		reply(t, session, msg, map[string]any{"result": "right"})
	})
	cfg := helpers.NewTestConfigWithPort(t, server.Port(t))

	result, err := LocalClient(context.Background(), cfg, "version", "")
	require.NoError(t, err)
	assert.Equal(t, `"right"`, result)
}

func TestLocalClientContextCancellation(t *testing.T) {
	t.Parallel()
	server := helpers.NewWebSocketTestServer(t, func(*melody.Session, []byte) {})
	cfg := helpers.NewTestConfigWithPort(t, server.Port(t))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	_, err := LocalClient(ctx, cfg, "version", "")
	require.ErrorIs(t, err, ErrRequestCancelled)
}

func TestLocalClientConnectionFailure(t *testing.T) {
	t.Parallel()
	cfg := helpers.NewTestConfigWithPort(t, unusedPort(t))
	_, err := LocalClient(context.Background(), cfg, "version", "")
	require.Error(t, err)
}

func TestWaitNotification(t *testing.T) {
	t.Parallel()
	server := helpers.NewWebSocketTestServer(t, nil)
	cfg := helpers.NewTestConfigWithPort(t, server.Port(t))

	go func() {
		// keep broadcasting until the waiting client has connected
		for range 100 {
			_ = server.Melody.Broadcast([]byte(`{"jsonrpc":"2.0","id":"x","method":"library.loaded"}`))
			_ = server.Melody.Broadcast([]byte(`{"jsonrpc":"2.0","method":"scenes.changed"}`))
			_ = server.Melody.Broadcast([]byte(`{"jsonrpc":"2.0","method":"library.loaded","params":{"scenes":3}}`))
			time.Sleep(20 * time.Millisecond)
		}
	}()

	params, err := WaitNotification(context.Background(), 5*time.Second, cfg, "library.loaded")
	require.NoError(t, err)
	assert.JSONEq(t, `{"scenes":3}`, params)
}

func TestWaitNotificationTimeout(t *testing.T) {
	t.Parallel()
	server := helpers.NewWebSocketTestServer(t, nil)
	cfg := helpers.NewTestConfigWithPort(t, server.Port(t))

	_, err := WaitNotification(context.Background(), 50*time.Millisecond, cfg, "library.loaded")
	require.ErrorIs(t, err, ErrRequestTimeout)
}

func TestLocalAPIClientWrapsErrors(t *testing.T) {
	t.Parallel()
	c := NewLocalAPIClient(helpers.NewTestConfigWithPort(t, unusedPort(t)))
	_, err := c.Call(context.Background(), "version", "")
	require.ErrorContains(t, err, "api call failed")
	_, err = c.WaitNotification(context.Background(), time.Millisecond, "scenes.changed")
	require.ErrorContains(t, err, "wait notification failed")
}
